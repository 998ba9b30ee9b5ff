package core

import (
	"fmt"
	"testing"

	"github.com/lchapon/salon-server/internal/log"
	"github.com/lchapon/salon-server/internal/proto"
)

func benchmarkRoomBroadcast(b *testing.B, recipients int) {
	state := NewState()
	caster := NewBroadcaster(state, log.Nop(), 0)
	router := NewRouter(state, log.Nop())

	sender := newTestClient("sender", "sender")
	if err := state.Register(sender); err != nil {
		b.Fatal(err)
	}
	for i := 0; i < recipients; i++ {
		c := newTestClient(fmt.Sprintf("c%d", i), fmt.Sprintf("user%d", i))
		if err := state.Register(c); err != nil {
			b.Fatal(err)
		}
	}

	in := proto.Inbound{
		Action: proto.ActionSendMessage,
		Data:   []byte(`{"text":"payload"}`),
	}

	b.ReportAllocs()
	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		caster.Deliver(router.Route(sender, in))
	}
}

func BenchmarkRoomBroadcast_10(b *testing.B)  { benchmarkRoomBroadcast(b, 10) }
func BenchmarkRoomBroadcast_100(b *testing.B) { benchmarkRoomBroadcast(b, 100) }
func BenchmarkRoomBroadcast_500(b *testing.B) { benchmarkRoomBroadcast(b, 500) }
