package core

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/lchapon/salon-server/internal/proto"
)

// Broadcaster fans deliveries out to their recipients. Each send is
// independent: a peer whose connection fails mid-send is unregistered and
// the fan-out continues, so one dead connection never blocks a room.
type Broadcaster struct {
	state       *State
	log         *zerolog.Logger
	sendTimeout time.Duration
}

// NewBroadcaster builds a broadcaster over the given registry. sendTimeout
// bounds each individual delivery; zero means no bound.
func NewBroadcaster(state *State, logger *zerolog.Logger, sendTimeout time.Duration) *Broadcaster {
	return &Broadcaster{state: state, log: logger, sendTimeout: sendTimeout}
}

// Deliver sends every delivery to every recipient. Failures never reach
// the caller. Sends run on their own deadline rather than the originating
// connection's context, so a sender closing mid-broadcast cannot abort
// deliveries to other peers.
func (b *Broadcaster) Deliver(deliveries []Delivery) {
	for _, d := range deliveries {
		for _, recipient := range d.Recipients {
			b.send(recipient, d.Envelope)
		}
	}
}

func (b *Broadcaster) send(c *Client, out proto.Outbound) {
	ctx := context.Background()
	if b.sendTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, b.sendTimeout)
		defer cancel()
	}

	if err := c.Send(ctx, out); err != nil {
		// Treat the peer as implicitly disconnected. Its own supervisor
		// will find the registry entry gone and skip the farewell.
		b.state.Unregister(c.ID)
		b.log.Warn().
			Err(err).
			Str("client_id", c.ID).
			Str("username", c.Username).
			Msg("dropping unreachable client")
	}
}
