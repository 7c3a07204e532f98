package game

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// --- NetworkSession ---

type MockNetworkSession struct {
	mock.Mock
}

func (m *MockNetworkSession) Close(reason string) {
	m.Called(reason)
}

func (m *MockNetworkSession) Write(data []byte) error {
	args := m.Called(data)
	return args.Error(0)
}

func (m *MockNetworkSession) Read() ([]byte, error) {
	args := m.Called()
	return args.Get(0).([]byte), args.Error(1)
}

func (m *MockNetworkSession) Ping() error {
	args := m.Called()
	return args.Error(0)
}

// nopSocket backs players in session tests where the socket itself is never
// exercised; outbound traffic is observed on the player's send buffer instead.
type nopSocket struct{}

func (nopSocket) Close(reason string)   {}
func (nopSocket) Write(p []byte) error  { return nil }
func (nopSocket) Read() ([]byte, error) { return nil, ErrConnectionLost }
func (nopSocket) Ping() error           { return nil }

// --- WordChooser ---

type MockWordChooser struct {
	mock.Mock
}

func (m *MockWordChooser) ChooseOptions(n int) []string {
	args := m.Called(n)
	return args.Get(0).([]string)
}

// --- UniqueIdGenerator ---

type MockUniqueIdGenerator struct {
	mock.Mock
}

func (m *MockUniqueIdGenerator) Generate() string {
	args := m.Called()
	return args.String(0)
}

func (m *MockUniqueIdGenerator) Dispose(id string) {
	m.Called(id)
}

// --- PeriodicTickerChannelCreator ---

type MockPeriodicTickerChannelCreator struct {
	mock.Mock
}

func (m *MockPeriodicTickerChannelCreator) Create(duration time.Duration) <-chan time.Time {
	args := m.Called(duration)
	return args.Get(0).(chan time.Time)
}

// scriptedRandom replays a fixed sequence of draws; once exhausted it keeps
// returning zero so tests stay deterministic without scripting every call.
type scriptedRandom struct {
	values []int
}

func (s *scriptedRandom) Intn(n int) int {
	if len(s.values) == 0 {
		return 0
	}
	v := s.values[0]
	s.values = s.values[1:]
	return v % n
}

// --- helpers ---

func mustJSON(t *testing.T, v any) json.RawMessage {
	t.Helper()
	data, err := json.Marshal(v)
	require.NoError(t, err)
	return data
}

func newTestPlayer(id, name string) *player {
	return newPlayer(id, name, nopSocket{})
}

// drainEnvelopes empties a player's send buffer and decodes every queued
// envelope.
func drainEnvelopes(t *testing.T, p *player) []Envelope {
	t.Helper()
	envs := []Envelope{}
	for {
		select {
		case data := <-p.send:
			var env Envelope
			require.NoError(t, json.Unmarshal(data, &env))
			envs = append(envs, env)
		default:
			return envs
		}
	}
}

func envelopesOfType(envs []Envelope, msgType string) []Envelope {
	matched := []Envelope{}
	for _, env := range envs {
		if env.Type == msgType {
			matched = append(matched, env)
		}
	}
	return matched
}

func decodeSnapshot(t *testing.T, env Envelope) SessionSnapshot {
	t.Helper()
	var payload SessionStatePayload
	require.NoError(t, json.Unmarshal(env.Payload, &payload))
	return payload.SessionState
}

func clientMsg(p *player, msgType string, payload json.RawMessage) clientEnvelope {
	return clientEnvelope{env: Envelope{Type: msgType, Payload: payload}, from: p}
}
