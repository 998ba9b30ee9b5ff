package core

import (
	"context"

	"github.com/lchapon/salon-server/internal/proto"
)

// Sender delivers one outbound envelope to the peer behind a connection.
// Implementations must be safe for concurrent use: broadcasts run on the
// goroutines of other connections and write through the same Sender.
type Sender interface {
	Send(ctx context.Context, out proto.Outbound) error
}

// Client is one registered participant. The connection handle stays with
// the transport; the core only keeps the Sender needed to reach the peer.
type Client struct {
	ID       string
	Username string

	// room is the client's current room name. Guarded by the State mutex.
	room string

	sender Sender
}

// NewClient binds an identity to a delivery path. The client is not part
// of any room until State.Register enrolls it.
func NewClient(id, username string, sender Sender) *Client {
	return &Client{ID: id, Username: username, sender: sender}
}

// Send forwards one envelope to the peer.
func (c *Client) Send(ctx context.Context, out proto.Outbound) error {
	return c.sender.Send(ctx, out)
}
