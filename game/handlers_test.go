package game

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	gin.SetMode(gin.TestMode)

	rng := NewSystemRandom()
	l := NewLobby(NewRoomIdGenerator(rng), NewTickerGen(), NewWordBank(rng), rng)
	started := make(chan struct{})
	go l.LobbyActor(started)
	<-started

	handler := NewGameHandler(l, []string{"http://localhost"})

	engine := gin.New()
	engine.GET("/game/ws", handler.WebsocketHandler)
	engine.GET("/game/rooms", handler.GetRoomsHandler)

	srv := httptest.NewServer(engine)
	t.Cleanup(srv.Close)
	return srv
}

func dialWs(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/game/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func writeEnvelope(t *testing.T, conn *websocket.Conn, env Envelope) {
	t.Helper()
	data, err := json.Marshal(env)
	require.NoError(t, err)
	require.NoError(t, conn.WriteMessage(websocket.TextMessage, data))
}

// readEnvelopeOfType skips unrelated traffic until the wanted message type
// shows up.
func readEnvelopeOfType(t *testing.T, conn *websocket.Conn, msgType string) Envelope {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(time.Second * 2))
	for {
		_, data, err := conn.ReadMessage()
		require.NoError(t, err, "waiting for a %s envelope", msgType)
		var env Envelope
		require.NoError(t, json.Unmarshal(data, &env))
		if env.Type == msgType {
			return env
		}
	}
}

func createRoomOverWs(t *testing.T, conn *websocket.Conn, participantId, displayName string) string {
	t.Helper()
	writeEnvelope(t, conn, Envelope{
		Type:    TypeCreateRoom,
		Payload: mustJSON(t, CreateRoomPayload{ParticipantId: participantId, DisplayName: displayName}),
	})
	env := readEnvelopeOfType(t, conn, TypeSessionState)
	require.NotEmpty(t, env.RoomId)
	return env.RoomId
}

func TestWebsocketCreateRoom(t *testing.T) {
	t.Parallel()
	srv := newTestServer(t)
	conn := dialWs(t, srv)

	roomId := createRoomOverWs(t, conn, "alice", "Alice")

	assert.Len(t, roomId, roomIdLength)
}

func TestWebsocketJoinRoom(t *testing.T) {
	t.Parallel()
	srv := newTestServer(t)
	hostConn := dialWs(t, srv)
	roomId := createRoomOverWs(t, hostConn, "alice", "Alice")

	joinConn := dialWs(t, srv)
	writeEnvelope(t, joinConn, Envelope{
		Type:    TypeJoinRoom,
		RoomId:  roomId,
		Payload: mustJSON(t, JoinRoomPayload{ParticipantId: "bob", DisplayName: "Bob"}),
	})

	env := readEnvelopeOfType(t, joinConn, TypePlayerJoined)
	var payload PlayerJoinedPayload
	require.NoError(t, json.Unmarshal(env.Payload, &payload))
	assert.Equal(t, "bob", payload.NewParticipant.Id)

	// the host hears about the join too
	readEnvelopeOfType(t, hostConn, TypePlayerJoined)
}

func TestWebsocketJoinUnknownRoom(t *testing.T) {
	t.Parallel()
	srv := newTestServer(t)
	conn := dialWs(t, srv)

	writeEnvelope(t, conn, Envelope{
		Type:    TypeJoinRoom,
		RoomId:  "NOSUCH",
		Payload: mustJSON(t, JoinRoomPayload{ParticipantId: "bob", DisplayName: "Bob"}),
	})

	env := readEnvelopeOfType(t, conn, TypeError)
	var payload ErrorPayload
	require.NoError(t, json.Unmarshal(env.Payload, &payload))
	assert.Equal(t, ErrRoomNotFound.Error(), payload.Message)
}

func TestWebsocketRejectsBadHandshake(t *testing.T) {
	t.Parallel()
	srv := newTestServer(t)
	conn := dialWs(t, srv)

	// only create_room and join_room are valid opening messages
	writeEnvelope(t, conn, Envelope{Type: TypeGuess, Payload: mustJSON(t, GuessPayload{Guess: "elephant"})})

	env := readEnvelopeOfType(t, conn, TypeError)
	var payload ErrorPayload
	require.NoError(t, json.Unmarshal(env.Payload, &payload))
	assert.Equal(t, ErrValidation.Error(), payload.Message)
}

func TestWebsocketRejectsInvalidConfig(t *testing.T) {
	t.Parallel()
	srv := newTestServer(t)
	conn := dialWs(t, srv)

	writeEnvelope(t, conn, Envelope{
		Type: TypeCreateRoom,
		Payload: mustJSON(t, CreateRoomPayload{
			ParticipantId: "alice",
			DisplayName:   "Alice",
			Config:        RoomConfigs{RoundDurationSeconds: 5},
		}),
	})

	env := readEnvelopeOfType(t, conn, TypeError)
	var payload ErrorPayload
	require.NoError(t, json.Unmarshal(env.Payload, &payload))
	assert.Contains(t, payload.Message, ErrValidation.Error())
}

func TestGetRoomsListing(t *testing.T) {
	t.Parallel()
	srv := newTestServer(t)
	conn := dialWs(t, srv)
	roomId := createRoomOverWs(t, conn, "alice", "Alice")

	resp, err := http.Get(srv.URL + "/game/rooms")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body struct {
		Rooms []RoomDescription `json:"rooms"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	require.Len(t, body.Rooms, 1)
	assert.Equal(t, roomId, body.Rooms[0].RoomId)
	assert.Equal(t, PHASE_LOBBY.String(), body.Rooms[0].Phase)
}
