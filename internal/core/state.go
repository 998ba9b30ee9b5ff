package core

import (
	"sort"
	"sync"

	"github.com/lchapon/salon-server/internal/proto"
)

// DefaultRoom exists from process start and is never removed, even when
// empty. Every client starts out in it.
const DefaultRoom = "general"

// State is the single source of truth for connected clients and chat
// rooms. One mutex covers both registries, so no caller can observe a
// client that is a member of zero rooms or of two rooms at once.
type State struct {
	mu      sync.Mutex
	clients map[string]*Client // keyed by client ID
	rooms   map[string]*Room
}

// NewState builds an empty registry holding only the default room.
func NewState() *State {
	s := &State{
		clients: make(map[string]*Client),
		rooms:   make(map[string]*Room),
	}
	s.rooms[DefaultRoom] = newRoom(DefaultRoom)
	return s
}

// Register adds a client to the registry and enrolls it in the default
// room. Usernames are compared by exact string equality; a duplicate
// leaves the registry untouched.
func (s *State) Register(c *Client) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.clients {
		if existing.Username == c.Username {
			return ErrDuplicateUsername
		}
	}

	c.room = DefaultRoom
	s.clients[c.ID] = c
	s.rooms[DefaultRoom].add(c)
	return nil
}

// Unregister removes a client from its room and from the registry, and
// reports the room it occupied. Unknown IDs are a no-op returning nil, so
// the transport and a failed broadcast can both race to clean up safely.
func (s *State) Unregister(id string) (*Client, string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.clients[id]
	if !ok {
		return nil, ""
	}
	delete(s.clients, id)
	if room, ok := s.rooms[c.room]; ok {
		room.remove(c)
	}
	return c, c.room
}

// CreateRoom adds an empty room. Rooms persist until process restart; an
// empty room is never garbage-collected.
func (s *State) CreateRoom(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.rooms[name]; exists {
		return ErrRoomExists
	}
	s.rooms[name] = newRoom(name)
	return nil
}

// MoveClient transfers a client from its current room to target in one
// atomic step and returns the previous room name. Moving into the current
// room is allowed and leaves the member sets unchanged.
func (s *State) MoveClient(id, target string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.clients[id]
	if !ok {
		return "", ErrNotRegistered
	}
	room, ok := s.rooms[target]
	if !ok {
		return "", ErrRoomNotFound
	}

	previous := c.room
	if previous != target {
		if prev, ok := s.rooms[previous]; ok {
			prev.remove(c)
		}
		room.add(c)
		c.room = target
	}
	return previous, nil
}

// RoomOf reports the client's current room.
func (s *State) RoomOf(id string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.clients[id]
	if !ok {
		return "", ErrNotRegistered
	}
	return c.room, nil
}

// MembersOf snapshots the member set of one room.
func (s *State) MembersOf(name string) ([]*Client, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	room, ok := s.rooms[name]
	if !ok {
		return nil, ErrRoomNotFound
	}
	return room.snapshot(), nil
}

// MembersOfClient snapshots the client's current room and its member set
// in one lock acquisition, so the recipient list is consistent with the
// room the client is in at that instant.
func (s *State) MembersOfClient(id string) (string, []*Client, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.clients[id]
	if !ok {
		return "", nil, ErrNotRegistered
	}
	room, ok := s.rooms[c.room]
	if !ok {
		return "", nil, ErrRoomNotFound
	}
	return c.room, room.snapshot(), nil
}

// AllClients snapshots every registered client.
func (s *State) AllClients() []*Client {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]*Client, 0, len(s.clients))
	for _, c := range s.clients {
		out = append(out, c)
	}
	return out
}

// ListRooms reports every room with its member count, sorted by name.
func (s *State) ListRooms() []proto.RoomInfo {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]proto.RoomInfo, 0, len(s.rooms))
	for name, room := range s.rooms {
		out = append(out, proto.RoomInfo{Name: name, Members: room.size()})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}
