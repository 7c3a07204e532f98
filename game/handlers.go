package game

import (
	"context"
	"encoding/json"
	"net/http"
	"slices"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

const handshakeTimeout = time.Second * 10

type GameHandler struct {
	lobby    *lobby
	upgrader websocket.Upgrader
}

func NewGameHandler(l *lobby, allowedOrigins []string) *GameHandler {
	return &GameHandler{
		lobby: l,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				return origin == "" || slices.Contains(allowedOrigins, origin)
			},
		},
	}
}

// WebsocketHandler upgrades the connection and waits for a single
// create_room or join_room envelope before the socket is handed to a session.
func (h *GameHandler) WebsocketHandler(ctx *gin.Context) {
	conn, err := h.upgrader.Upgrade(ctx.Writer, ctx.Request, nil)
	if err != nil {
		log.Debug().Err(err).Str("ip", ctx.ClientIP()).Msg("ws upgrade failed")
		return
	}

	socketConn := NewWebsocketConnection(conn)

	conn.SetReadDeadline(time.Now().Add(handshakeTimeout))
	data, err := socketConn.Read()
	if err != nil {
		socketConn.Close("handshake-timeout")
		return
	}

	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		h.rejectSocket(socketConn, ErrValidation)
		return
	}

	switch env.Type {
	case TypeCreateRoom:
		h.handleCreateRoom(ctx.Request.Context(), socketConn, env)
	case TypeJoinRoom:
		h.handleJoinRoom(ctx.Request.Context(), socketConn, env)
	default:
		h.rejectSocket(socketConn, ErrValidation)
	}
}

func (h *GameHandler) handleCreateRoom(ctx context.Context, socketConn NetworkSession, env Envelope) {
	payload, err := decodeCreateRoom(env.Payload)
	if err != nil {
		h.rejectSocket(socketConn, err)
		return
	}
	if payload.ParticipantId == "" {
		payload.ParticipantId = uuid.NewString()
	}

	p := newPlayer(payload.ParticipantId, payload.DisplayName, socketConn)

	reqCtx, cancel := context.WithTimeout(ctx, handshakeTimeout)
	defer cancel()

	roomId, err := h.lobby.CreateRoom(reqCtx, p, payload.Config)
	if err != nil {
		h.rejectSocket(socketConn, err)
		return
	}

	log.Debug().Str("room", roomId).Str("participant", p.id).Msg("socket bound to new room")
	go p.ReadPump()
	go p.WritePump()
}

func (h *GameHandler) handleJoinRoom(ctx context.Context, socketConn NetworkSession, env Envelope) {
	payload, err := decodeJoinRoom(env.Payload)
	if err != nil {
		h.rejectSocket(socketConn, err)
		return
	}
	if env.RoomId == "" {
		h.rejectSocket(socketConn, errConfig("roomId is required"))
		return
	}
	if payload.ParticipantId == "" {
		payload.ParticipantId = uuid.NewString()
	}

	p := newPlayer(payload.ParticipantId, payload.DisplayName, socketConn)

	reqCtx, cancel := context.WithTimeout(ctx, handshakeTimeout)
	defer cancel()

	if err := h.lobby.JoinRoom(reqCtx, env.RoomId, p); err != nil {
		h.rejectSocket(socketConn, err)
		return
	}

	log.Debug().Str("room", env.RoomId).Str("participant", p.id).Msg("socket joined room")
	go p.ReadPump()
	go p.WritePump()
}

// rejectSocket writes a single error envelope and drops the connection; the
// socket was never owned by a session so there is nobody else to tell.
func (h *GameHandler) rejectSocket(socketConn NetworkSession, err error) {
	data, marshalErr := marshalEnvelope(TypeError, "", ErrorPayload{Message: err.Error()})
	if marshalErr == nil {
		socketConn.Write(data)
	}
	socketConn.Close(err.Error())
}

// GetRoomsHandler lists joinable sessions.
func (h *GameHandler) GetRoomsHandler(ctx *gin.Context) {
	descs := h.lobby.GetRoomDescriptions(ctx.Request.Context())
	if descs == nil {
		descs = []RoomDescription{}
	}
	ctx.JSON(http.StatusOK, gin.H{"rooms": descs})
}
