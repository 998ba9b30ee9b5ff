package core

// Room groups the clients currently subscribed to one broadcast domain.
// All methods assume the State mutex is held.
type Room struct {
	Name    string
	members map[string]*Client
}

func newRoom(name string) *Room {
	return &Room{
		Name:    name,
		members: make(map[string]*Client),
	}
}

func (r *Room) add(c *Client) {
	r.members[c.ID] = c
}

func (r *Room) remove(c *Client) {
	delete(r.members, c.ID)
}

func (r *Room) size() int {
	return len(r.members)
}

// snapshot copies the member set so callers can iterate without the lock.
func (r *Room) snapshot() []*Client {
	out := make([]*Client, 0, len(r.members))
	for _, c := range r.members {
		out = append(out, c)
	}
	return out
}
