package game

import "sync"

const (
	roomIdAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	roomIdLength   = 6
)

// RoomIdGenerator hands out short room tokens, collision-checked against the
// set of live rooms. Dispose releases a token once its room is torn down.
type RoomIdGenerator struct {
	live   map[string]struct{}
	rng    RandomSource
	locker sync.Mutex
}

func NewRoomIdGenerator(rng RandomSource) *RoomIdGenerator {
	return &RoomIdGenerator{
		live: make(map[string]struct{}),
		rng:  rng,
	}
}

func (g *RoomIdGenerator) Generate() string {
	g.locker.Lock()
	defer g.locker.Unlock()

	for {
		buf := make([]byte, roomIdLength)
		for i := range buf {
			buf[i] = roomIdAlphabet[g.rng.Intn(len(roomIdAlphabet))]
		}
		id := string(buf)
		if _, taken := g.live[id]; !taken {
			g.live[id] = struct{}{}
			return id
		}
	}
}

func (g *RoomIdGenerator) Dispose(id string) {
	g.locker.Lock()
	defer g.locker.Unlock()
	delete(g.live, id)
}
