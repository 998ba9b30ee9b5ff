package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/lchapon/salon-server/internal/config"
	"github.com/lchapon/salon-server/internal/core"
	"github.com/lchapon/salon-server/internal/proto"
)

// Supervisor drives one WebSocket connection through its whole lifecycle:
// accept, registration handshake, receive loop, cleanup. Each connection
// runs on its own goroutine; all shared state lives behind core.State.
type Supervisor struct {
	state  *core.State
	router *core.Router
	caster *core.Broadcaster
	cfg    config.Config
	log    *zerolog.Logger
}

// NewSupervisor builds a supervisor over the shared core components.
func NewSupervisor(state *core.State, router *core.Router, caster *core.Broadcaster, cfg config.Config, logger *zerolog.Logger) *Supervisor {
	return &Supervisor{
		state:  state,
		router: router,
		caster: caster,
		cfg:    cfg,
		log:    logger,
	}
}

// Handle upgrades the request and serves the connection until it closes.
func (s *Supervisor) Handle(c *gin.Context) {
	conn, err := websocket.Accept(c.Writer, c.Request, &websocket.AcceptOptions{
		InsecureSkipVerify: true,
	})
	if err != nil {
		s.log.Error().Err(err).Msg("ws accept error")
		return
	}

	s.serve(c.Request.Context(), conn)
}

func (s *Supervisor) serve(ctx context.Context, conn *websocket.Conn) {
	defer conn.Close(websocket.StatusInternalError, "internal error")

	client, err := s.register(ctx, conn)
	if err != nil {
		s.log.Warn().Err(err).Msg("registration rejected")
		conn.Close(websocket.StatusPolicyViolation, "registration rejected")
		return
	}

	s.log.Info().
		Str("client_id", client.ID).
		Str("username", client.Username).
		Msg("client registered")

	s.caster.Deliver(s.router.Welcome(client))

	err = s.readLoop(ctx, conn, client)
	s.cleanup(client)

	status := websocket.StatusNormalClosure
	reason := "closing"
	if err != nil && !errors.Is(err, context.Canceled) {
		if errors.Is(err, io.EOF) {
			err = nil
		}
		if st := websocket.CloseStatus(err); st != -1 {
			status = st
		}
		if status == websocket.StatusNormalClosure || status == websocket.StatusGoingAway {
			err = nil
		}
		if err != nil {
			if status == websocket.StatusNormalClosure {
				status = websocket.StatusInternalError
			}
			reason = err.Error()
			s.log.Warn().Err(err).Str("client_id", client.ID).Msg("ws connection closed with error")
		}
	}

	conn.Close(status, reason)
}

// register reads the handshake message and enrolls the client. A missing
// or duplicate username gets an error envelope before the connection is
// rejected.
func (s *Supervisor) register(ctx context.Context, conn *websocket.Conn) (*core.Client, error) {
	var hello proto.Registration
	if err := wsjson.Read(ctx, conn, &hello); err != nil {
		return nil, fmt.Errorf("read registration: %w", err)
	}

	sender := newWSSender(conn)
	if hello.Username == "" {
		_ = sender.Send(ctx, proto.NewError("username is required"))
		return nil, errors.New("registration without username")
	}

	client := core.NewClient(uuid.NewString(), hello.Username, sender)
	if err := s.state.Register(client); err != nil {
		_ = sender.Send(ctx, proto.NewError(fmt.Sprintf("username %q is already taken", hello.Username)))
		return nil, fmt.Errorf("register %q: %w", hello.Username, err)
	}
	return client, nil
}

// readLoop processes envelopes one at a time: the deliveries produced by
// an envelope are flushed before the next one is read, which gives each
// connection FIFO semantics.
func (s *Supervisor) readLoop(ctx context.Context, conn *websocket.Conn, client *core.Client) error {
	limiter := rate.NewLimiter(rate.Limit(s.cfg.MessageRateLimit), s.cfg.MessageRateBurst)

	for {
		_, payload, err := conn.Read(ctx)
		if err != nil {
			return err
		}

		var in proto.Inbound
		if err := json.Unmarshal(payload, &in); err != nil {
			// Unparsable payload: report to the sender only, stay active.
			s.caster.Deliver([]core.Delivery{{
				Recipients: []*core.Client{client},
				Envelope:   proto.NewError("invalid message format"),
			}})
			continue
		}

		if !limiter.Allow() {
			s.caster.Deliver([]core.Delivery{{
				Recipients: []*core.Client{client},
				Envelope:   proto.NewError("too many messages, slow down"),
			}})
			continue
		}

		s.caster.Deliver(s.router.Route(client, in))
	}
}

// cleanup unregisters the client exactly once and announces the
// departure. A client already evicted by a failed broadcast is gone from
// the registry, so the farewell is skipped.
func (s *Supervisor) cleanup(client *core.Client) {
	removed, lastRoom := s.state.Unregister(client.ID)
	if removed == nil {
		return
	}

	s.log.Info().
		Str("client_id", removed.ID).
		Str("username", removed.Username).
		Str("room", lastRoom).
		Msg("client disconnected")

	s.caster.Deliver(s.router.Farewell(removed, lastRoom))
}
