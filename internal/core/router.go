package core

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/lchapon/salon-server/internal/proto"
)

// Delivery pairs one outbound envelope with the clients it must reach.
type Delivery struct {
	Recipients []*Client
	Envelope   proto.Outbound
}

// Router interprets inbound envelopes: it validates the payload, applies
// the matching State mutation, and derives the outbound deliveries. A
// validation failure yields a single error delivery addressed to the
// sender and never touches state.
type Router struct {
	state *State
	log   *zerolog.Logger
}

// NewRouter builds a router over the given registry.
func NewRouter(state *State, logger *zerolog.Logger) *Router {
	return &Router{state: state, log: logger}
}

// Route handles one envelope from sender.
func (r *Router) Route(sender *Client, in proto.Inbound) []Delivery {
	switch in.Kind() {
	case proto.KindCreateRoom:
		return r.createRoom(sender, in.Data)
	case proto.KindJoinRoom:
		return r.joinRoom(sender, in.Data)
	case proto.KindLeaveRoom:
		return r.leaveRoom(sender)
	case proto.KindSendMessage:
		return r.sendMessage(sender, in.Data)
	case proto.KindListRooms:
		return r.listRooms(sender)
	default:
		r.log.Warn().Str("username", sender.Username).Str("action", in.Action).Msg("unknown action")
		return errorTo(sender, "unknown action")
	}
}

// Welcome announces a freshly registered client: a greeting to the
// newcomer, a system notice to the default room, and a room-list update
// to every connection.
func (r *Router) Welcome(c *Client) []Delivery {
	deliveries := []Delivery{
		to(c, proto.NewSuccess(proto.SuccessData{
			Message: fmt.Sprintf("welcome, %s!", c.Username),
			Room:    DefaultRoom,
		})),
	}
	if members, err := r.state.MembersOf(DefaultRoom); err == nil {
		deliveries = append(deliveries, Delivery{
			Recipients: members,
			Envelope:   proto.NewSystem(c.Username + " joined the chat"),
		})
	}
	return append(deliveries, r.roomListUpdate())
}

// Farewell announces a departed client to the room it last occupied and
// refreshes the room list everywhere else.
func (r *Router) Farewell(c *Client, lastRoom string) []Delivery {
	var deliveries []Delivery
	if members, err := r.state.MembersOf(lastRoom); err == nil && len(members) > 0 {
		deliveries = append(deliveries, Delivery{
			Recipients: members,
			Envelope:   proto.NewSystem(c.Username + " left the chat"),
		})
	}
	return append(deliveries, r.roomListUpdate())
}

func (r *Router) createRoom(sender *Client, data json.RawMessage) []Delivery {
	var req proto.CreateRoomData
	if err := json.Unmarshal(data, &req); err != nil {
		return errorTo(sender, "invalid create_room payload")
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return errorTo(sender, "room name is required")
	}

	if err := r.state.CreateRoom(name); err != nil {
		return errorTo(sender, fmt.Sprintf("room %q already exists", name))
	}

	r.log.Info().Str("room", name).Str("username", sender.Username).Msg("room created")
	return []Delivery{
		to(sender, proto.NewSuccess(proto.SuccessData{
			Message: fmt.Sprintf("room %q created", name),
			Room:    name,
		})),
		r.roomListUpdate(),
	}
}

func (r *Router) joinRoom(sender *Client, data json.RawMessage) []Delivery {
	var req proto.JoinRoomData
	if err := json.Unmarshal(data, &req); err != nil {
		return errorTo(sender, "invalid join_room payload")
	}
	if req.Name == "" {
		return errorTo(sender, "room name is required")
	}
	return r.move(sender, req.Name)
}

func (r *Router) leaveRoom(sender *Client) []Delivery {
	current, err := r.state.RoomOf(sender.ID)
	if err != nil {
		return errorTo(sender, ErrNotRegistered.Error())
	}
	if current == DefaultRoom {
		return errorTo(sender, ErrAlreadyInDefaultRoom.Error())
	}
	return r.move(sender, DefaultRoom)
}

// move performs the join/leave room transition shared by both actions.
func (r *Router) move(sender *Client, target string) []Delivery {
	previous, err := r.state.MoveClient(sender.ID, target)
	if errors.Is(err, ErrRoomNotFound) {
		return errorTo(sender, fmt.Sprintf("room %q does not exist", target))
	}
	if err != nil {
		return errorTo(sender, err.Error())
	}

	r.log.Info().
		Str("username", sender.Username).
		Str("from", previous).
		Str("to", target).
		Msg("client moved")

	var deliveries []Delivery
	if members, err := r.state.MembersOf(target); err == nil {
		deliveries = append(deliveries, Delivery{
			Recipients: members,
			Envelope:   proto.NewSystem(sender.Username + " joined the room"),
		})
	}
	if previous != target {
		if members, err := r.state.MembersOf(previous); err == nil && len(members) > 0 {
			deliveries = append(deliveries, Delivery{
				Recipients: members,
				Envelope:   proto.NewSystem(sender.Username + " left the room"),
			})
		}
	}
	return append(deliveries, to(sender, proto.NewSuccess(proto.SuccessData{
		Message: fmt.Sprintf("you joined room %q", target),
		Room:    target,
	})))
}

func (r *Router) sendMessage(sender *Client, data json.RawMessage) []Delivery {
	var req proto.SendMessageData
	if err := json.Unmarshal(data, &req); err != nil {
		return errorTo(sender, "invalid send_message payload")
	}
	if strings.TrimSpace(req.Text) == "" {
		return errorTo(sender, "message text cannot be empty")
	}

	room, members, err := r.state.MembersOfClient(sender.ID)
	if err != nil {
		return errorTo(sender, ErrNotRegistered.Error())
	}

	r.log.Debug().Str("room", room).Str("username", sender.Username).Msg("chat message")
	return []Delivery{{
		Recipients: members,
		Envelope:   proto.NewReceiveMessage(sender.Username, req.Text, room),
	}}
}

func (r *Router) listRooms(sender *Client) []Delivery {
	rooms := r.state.ListRooms()
	return []Delivery{to(sender, proto.NewSuccess(proto.SuccessData{
		Message: fmt.Sprintf("%d room(s) available", len(rooms)),
		Rooms:   rooms,
	}))}
}

// roomListUpdate pushes the current listing to every connection.
func (r *Router) roomListUpdate() Delivery {
	return Delivery{
		Recipients: r.state.AllClients(),
		Envelope:   proto.NewRoomList(r.state.ListRooms()),
	}
}

func to(c *Client, out proto.Outbound) Delivery {
	return Delivery{Recipients: []*Client{c}, Envelope: out}
}

func errorTo(c *Client, msg string) []Delivery {
	return []Delivery{to(c, proto.NewError(msg))}
}
