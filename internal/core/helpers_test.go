package core

import (
	"context"
	"errors"
	"sync"

	"github.com/lchapon/salon-server/internal/proto"
)

type nopSender struct{}

func (nopSender) Send(context.Context, proto.Outbound) error { return nil }

// failSender simulates a peer whose connection is broken.
type failSender struct{}

func (failSender) Send(context.Context, proto.Outbound) error {
	return errors.New("connection reset")
}

// recordSender captures everything delivered to a client.
type recordSender struct {
	mu   sync.Mutex
	sent []proto.Outbound
}

func (r *recordSender) Send(_ context.Context, out proto.Outbound) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sent = append(r.sent, out)
	return nil
}

func (r *recordSender) envelopes() []proto.Outbound {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]proto.Outbound(nil), r.sent...)
}

func newTestClient(id, username string) *Client {
	return NewClient(id, username, nopSender{})
}

// deliveriesFor flattens the envelopes addressed to one client.
func deliveriesFor(c *Client, deliveries []Delivery) []proto.Outbound {
	var out []proto.Outbound
	for _, d := range deliveries {
		for _, rc := range d.Recipients {
			if rc.ID == c.ID {
				out = append(out, d.Envelope)
			}
		}
	}
	return out
}

func actionsFor(c *Client, deliveries []Delivery) []string {
	var out []string
	for _, env := range deliveriesFor(c, deliveries) {
		out = append(out, env.Action)
	}
	return out
}
