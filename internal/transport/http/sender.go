package http

import (
	"context"
	"sync"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"

	"github.com/lchapon/salon-server/internal/proto"
)

// wsSender adapts a WebSocket connection to core.Sender. The mutex keeps
// envelopes from interleaving when broadcasts arrive from several
// goroutines at once.
type wsSender struct {
	mu   sync.Mutex
	conn *websocket.Conn
}

func newWSSender(conn *websocket.Conn) *wsSender {
	return &wsSender{conn: conn}
}

func (w *wsSender) Send(ctx context.Context, out proto.Outbound) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return wsjson.Write(ctx, w.conn, out)
}
