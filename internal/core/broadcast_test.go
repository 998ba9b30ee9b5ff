package core

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lchapon/salon-server/internal/log"
	"github.com/lchapon/salon-server/internal/proto"
)

func TestDeliverEvictsDeadRecipient(t *testing.T) {
	state := NewState()
	caster := NewBroadcaster(state, log.Nop(), time.Second)

	rec := &recordSender{}
	alive := NewClient("a", "alice", rec)
	dead := NewClient("b", "bob", failSender{})
	require.NoError(t, state.Register(alive))
	require.NoError(t, state.Register(dead))

	members, err := state.MembersOf(DefaultRoom)
	require.NoError(t, err)
	require.Len(t, members, 2)

	// Must not panic or abort: the live peer still gets the envelope.
	caster.Deliver([]Delivery{{
		Recipients: members,
		Envelope:   proto.NewSystem("hello"),
	}})

	require.Len(t, rec.envelopes(), 1)
	assert.Equal(t, proto.ActionSystem, rec.envelopes()[0].Action)

	// The dead peer was proactively unregistered.
	members, err = state.MembersOf(DefaultRoom)
	require.NoError(t, err)
	require.Len(t, members, 1)
	assert.Equal(t, "alice", members[0].Username)
	_, err = state.RoomOf("b")
	assert.ErrorIs(t, err, ErrNotRegistered)
}

func TestDeliverManyRecipientsOneDead(t *testing.T) {
	state := NewState()
	caster := NewBroadcaster(state, log.Nop(), time.Second)

	const n = 10
	records := make([]*recordSender, 0, n-1)
	for i := 0; i < n; i++ {
		var c *Client
		if i == n/2 {
			c = NewClient("dead", "ghost", failSender{})
		} else {
			rec := &recordSender{}
			records = append(records, rec)
			c = NewClient(string(rune('a'+i)), "user"+string(rune('a'+i)), rec)
		}
		require.NoError(t, state.Register(c))
	}

	members, err := state.MembersOf(DefaultRoom)
	require.NoError(t, err)
	caster.Deliver([]Delivery{{Recipients: members, Envelope: proto.NewSystem("fan out")}})

	for _, rec := range records {
		assert.Len(t, rec.envelopes(), 1, "every live recipient got exactly one envelope")
	}
	assert.Len(t, state.AllClients(), n-1)
}
