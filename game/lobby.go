package game

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
)

type createRoomRequest struct {
	player   *player
	configs  RoomConfigs
	respChan chan string
}

type lobbyJoinRequest struct {
	roomId  string
	player  *player
	errChan chan error
}

// lobby is the registry actor: it owns the room map, drives the shared
// one-second clock into every live room and routes joins. Rooms never talk to
// each other; the lobby is the only place that sees them all.
type lobby struct {
	rooms        map[string]*room
	descriptions map[string]RoomDescription

	idGenerator   UniqueIdGenerator
	tickerCreator PeriodicTickerChannelCreator
	words         WordChooser
	rng           RandomSource

	createRoomChan  chan createRoomRequest
	joinRoomReq     chan lobbyJoinRequest
	removeRoomChan  chan string
	descUpdateChan  chan RoomDescription
	descriptionsReq chan chan []RoomDescription
}

func NewLobby(idgen UniqueIdGenerator, tickerCreator PeriodicTickerChannelCreator, words WordChooser, rng RandomSource) *lobby {
	return &lobby{
		rooms:           map[string]*room{},
		descriptions:    map[string]RoomDescription{},
		idGenerator:     idgen,
		tickerCreator:   tickerCreator,
		words:           words,
		rng:             rng,
		createRoomChan:  make(chan createRoomRequest, 32),
		joinRoomReq:     make(chan lobbyJoinRequest, 256),
		removeRoomChan:  make(chan string, 32),
		descUpdateChan:  make(chan RoomDescription, 256),
		descriptionsReq: make(chan chan []RoomDescription, 256),
	}
}

// CreateRoom builds a session with p as host and returns the room token.
func (l *lobby) CreateRoom(ctx context.Context, p *player, configs RoomConfigs) (string, error) {
	respChan := make(chan string, 1)
	select {
	case l.createRoomChan <- createRoomRequest{player: p, configs: configs, respChan: respChan}:
	case <-ctx.Done():
		return "", ctx.Err()
	}
	select {
	case id := <-respChan:
		return id, nil
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

// JoinRoom forwards p's join to the target session and waits for its verdict.
func (l *lobby) JoinRoom(ctx context.Context, roomId string, p *player) error {
	errChan := make(chan error, 1)
	select {
	case l.joinRoomReq <- lobbyJoinRequest{roomId: roomId, player: p, errChan: errChan}:
	case <-ctx.Done():
		return ctx.Err()
	}
	select {
	case err := <-errChan:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (l *lobby) GetRoomDescriptions(ctx context.Context) []RoomDescription {
	respChan := make(chan []RoomDescription, 1)
	select {
	case l.descriptionsReq <- respChan:
	case <-ctx.Done():
		return nil
	}
	select {
	case resp := <-respChan:
		return resp
	case <-ctx.Done():
		return nil
	}
}

// UpdateDescription is called from room actors; it must never block them.
func (l *lobby) UpdateDescription(desc RoomDescription) {
	select {
	case l.descUpdateChan <- desc:
	default:
	}
}

// RemoveRoom is best-effort for the same reason; an empty room re-requests
// teardown on every tick until it lands.
func (l *lobby) RemoveRoom(roomId string) {
	select {
	case l.removeRoomChan <- roomId:
	default:
	}
}

func (l *lobby) LobbyActor(started chan struct{}) {
	ticker := l.tickerCreator.Create(time.Second)
	pingTicker := l.tickerCreator.Create(time.Second * 30)

	close(started)

	for {
		select {
		case now := <-ticker:
			for _, r := range l.rooms {
				r.Tick(now)
			}
		case <-pingTicker:
			for _, r := range l.rooms {
				r.PingPlayers()
			}

		case req := <-l.createRoomChan:
			l.handleCreateRoom(req)

		case req := <-l.joinRoomReq:
			l.handleJoinRequest(req)

		case roomId := <-l.removeRoomChan:
			l.handleRemoveRoom(roomId)

		case desc := <-l.descUpdateChan:
			if _, live := l.rooms[desc.RoomId]; live {
				l.descriptions[desc.RoomId] = desc
			}

		case respChan := <-l.descriptionsReq:
			l.handleGetDescriptions(respChan)
		}
	}
}

func (l *lobby) handleCreateRoom(req createRoomRequest) {
	id := l.idGenerator.Generate()
	r := NewRoom(id, req.player, req.configs, l.words, l.rng)
	r.SetParentRegistry(l)

	l.rooms[id] = r
	l.descriptions[id] = r.Description()
	go r.GameLoop()

	log.Info().Str("room", id).Str("host", req.player.id).Msg("room created")
	req.respChan <- id
}

func (l *lobby) handleJoinRequest(req lobbyJoinRequest) {
	r, ok := l.rooms[req.roomId]
	if !ok {
		req.errChan <- ErrRoomNotFound
		return
	}
	r.RequestJoin(joinRequest{player: req.player, errChan: req.errChan})
}

func (l *lobby) handleRemoveRoom(roomId string) {
	r, ok := l.rooms[roomId]
	if !ok {
		return
	}
	delete(l.rooms, roomId)
	delete(l.descriptions, roomId)
	r.CloseAndRelease()
	l.idGenerator.Dispose(roomId)
	log.Info().Str("room", roomId).Msg("room removed")
}

func (l *lobby) handleGetDescriptions(respChan chan []RoomDescription) {
	descs := make([]RoomDescription, 0, len(l.descriptions))
	for _, desc := range l.descriptions {
		descs = append(descs, desc)
	}
	respChan <- descs
}
