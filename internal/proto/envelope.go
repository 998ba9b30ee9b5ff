package proto

import (
	"encoding/json"
	"time"
)

// Wire action tags. The first group is accepted from clients, the second
// group is only ever emitted by the server.
const (
	ActionCreateRoom  = "create_room"
	ActionJoinRoom    = "join_room"
	ActionLeaveRoom   = "leave_room"
	ActionSendMessage = "send_message"
	ActionListRooms   = "list_rooms"

	ActionReceiveMessage = "receive_message"
	ActionError          = "error"
	ActionSuccess        = "success"
	ActionSystem         = "system"
)

// Kind is the closed set of inbound actions. Wire strings outside the set
// decode to KindUnknown so the router can reject them uniformly.
type Kind int

const (
	KindUnknown Kind = iota
	KindCreateRoom
	KindJoinRoom
	KindLeaveRoom
	KindSendMessage
	KindListRooms
)

// Inbound is the envelope for messages coming from the client.
type Inbound struct {
	Action    string          `json:"action"`
	Data      json.RawMessage `json:"data,omitempty"`
	Timestamp time.Time       `json:"timestamp,omitzero"`
}

// Kind maps the wire action string onto the closed inbound action set.
func (in Inbound) Kind() Kind {
	switch in.Action {
	case ActionCreateRoom:
		return KindCreateRoom
	case ActionJoinRoom:
		return KindJoinRoom
	case ActionLeaveRoom:
		return KindLeaveRoom
	case ActionSendMessage:
		return KindSendMessage
	case ActionListRooms:
		return KindListRooms
	default:
		return KindUnknown
	}
}

// Outbound is the envelope for messages sent to the client. Timestamp is
// an ISO-8601 UTC instant.
type Outbound struct {
	Action    string    `json:"action"`
	Data      any       `json:"data,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// Registration is the first message a client sends on a fresh connection,
// before any envelope is accepted.
type Registration struct {
	Username string `json:"username"`
}

// CreateRoomData asks the server to create a new room.
type CreateRoomData struct {
	Name string `json:"name"`
}

// JoinRoomData asks the server to move the client into a room.
type JoinRoomData struct {
	Name string `json:"name"`
}

// SendMessageData is a chat message addressed to the client's current room.
type SendMessageData struct {
	Text string `json:"text"`
}

// ReceiveMessageData carries one chat message to a room member.
type ReceiveMessageData struct {
	Username string `json:"username"`
	Text     string `json:"text"`
	Room     string `json:"room,omitempty"`
}

// ErrorData reports a rejected action back to its sender.
type ErrorData struct {
	Message string `json:"message"`
}

// SuccessData confirms an accepted action, optionally with context.
type SuccessData struct {
	Message string     `json:"message"`
	Room    string     `json:"room,omitempty"`
	Rooms   []RoomInfo `json:"rooms,omitempty"`
}

// SystemData is a server-generated notice shown to room members.
type SystemData struct {
	Message string `json:"message"`
}

// RoomListData is the broadcast form of the room listing.
type RoomListData struct {
	Rooms []RoomInfo `json:"rooms"`
}

// RoomInfo is one row of the room listing.
type RoomInfo struct {
	Name    string `json:"name"`
	Members int    `json:"members"`
}

func outbound(action string, data any) Outbound {
	return Outbound{Action: action, Data: data, Timestamp: time.Now().UTC()}
}

// NewError builds an error envelope.
func NewError(msg string) Outbound {
	return outbound(ActionError, ErrorData{Message: msg})
}

// NewSuccess builds a success envelope.
func NewSuccess(data SuccessData) Outbound {
	return outbound(ActionSuccess, data)
}

// NewSystem builds a system notice envelope.
func NewSystem(msg string) Outbound {
	return outbound(ActionSystem, SystemData{Message: msg})
}

// NewReceiveMessage builds a chat message envelope.
func NewReceiveMessage(username, text, room string) Outbound {
	return outbound(ActionReceiveMessage, ReceiveMessageData{
		Username: username,
		Text:     text,
		Room:     room,
	})
}

// NewRoomList builds the room-list broadcast envelope.
func NewRoomList(rooms []RoomInfo) Outbound {
	return outbound(ActionListRooms, RoomListData{Rooms: rooms})
}
