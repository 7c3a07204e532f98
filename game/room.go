package game

import (
	"sync"
	"time"
)

// Pacing constants, counted in clock ticks (one tick per second).
const (
	ROUND_END_DELAY_TICKS   = 5  // pause between round end and the next word selection
	DISCONNECT_GRACE_TICKS  = 30 // how long a dropped participant keeps their seat
	EMPTY_ROOM_TICKS        = 60 // how long a room with no connected humans survives
	BOT_DRAWER_SELECT_TICKS = 2  // delay before an automated drawer picks a word
	WORD_OPTIONS_COUNT      = 3
)

// Registry is the lobby surface a room needs: publishing its description and
// asking for its own teardown.
type Registry interface {
	UpdateDescription(desc RoomDescription)
	RemoveRoom(roomId string)
}

type RoomDescription struct {
	RoomId          string `json:"roomId"`
	Participants    int    `json:"participants"`
	MaxParticipants int    `json:"maxParticipants"`
	Phase           string `json:"phase"`
}

type clientEnvelope struct {
	env  Envelope
	from *player
}

type joinRequest struct {
	player  *player
	errChan chan error
}

// room owns the session state of one game. All mutation happens on the
// GameLoop goroutine; everything else talks to it through channels.
type room struct {
	id      string
	hostId  string
	configs RoomConfigs

	phase           RoomPhase
	participants    []*participantState // insertion order defines turn rotation
	drawerIdx       int                 // index into participants, -1 when no drawer
	secretWord      string
	revealedPattern []byte
	timeRemaining   int
	roundNumber     int
	wordOptions     []string
	reveal          *revealScheduler
	// phaseTicksLeft drives delayed transitions (round-end pause, automated
	// drawer auto-select). Reset on every phase change, so a stale delay can
	// never fire into a new phase.
	phaseTicksLeft int
	drawHistory    [][]byte
	emptyTicks     int
	botCounter     int

	rng    RandomSource
	words  WordChooser
	parent Registry

	inbox       chan clientEnvelope
	ticks       chan time.Time
	joinReqs    chan joinRequest
	removals    chan *player
	pingPlayers chan struct{}
	done        chan struct{}
	closeOnce   sync.Once
}

func NewRoom(id string, host *player, configs RoomConfigs, words WordChooser, rng RandomSource) *room {
	r := &room{
		id:          id,
		hostId:      host.id,
		configs:     configs,
		phase:       PHASE_LOBBY,
		drawerIdx:   -1,
		rng:         rng,
		words:       words,
		inbox:       make(chan clientEnvelope, 1024),
		ticks:       make(chan time.Time, 24),
		joinReqs:    make(chan joinRequest, 16),
		removals:    make(chan *player, 64),
		pingPlayers: make(chan struct{}, 1),
		done:        make(chan struct{}),
	}
	host.room = r
	r.participants = append(r.participants, &participantState{
		Participant: Participant{Id: host.id, DisplayName: host.displayName},
		conn:        host,
	})
	return r
}

func (r *room) SetParentRegistry(parent Registry) {
	r.parent = parent
}

// Tick delivers one clock tick. It must never block the caller; a room that
// cannot keep up loses ticks rather than stalling the lobby.
func (r *room) Tick(now time.Time) {
	select {
	case r.ticks <- now:
	default:
	}
}

func (r *room) PingPlayers() {
	select {
	case r.pingPlayers <- struct{}{}:
	default:
	}
}

func (r *room) RequestJoin(req joinRequest) {
	select {
	case r.joinReqs <- req:
	case <-r.done:
		req.errChan <- ErrRoomNotFound
	}
}

func (r *room) RequestRemoval(p *player) {
	select {
	case r.removals <- p:
	case <-r.done:
	}
}

// CloseAndRelease stops the game loop and disconnects everyone. Safe to call
// from outside the actor; the loop performs the actual cleanup.
func (r *room) CloseAndRelease() {
	r.closeOnce.Do(func() {
		close(r.done)
	})
}

func (r *room) Description() RoomDescription {
	connected := 0
	for _, ps := range r.participants {
		if ps.connected() {
			connected++
		}
	}
	return RoomDescription{
		RoomId:          r.id,
		Participants:    connected,
		MaxParticipants: r.configs.MaxParticipants,
		Phase:           r.phase.String(),
	}
}
