package game

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newPumpFixture(t *testing.T, sock NetworkSession) (*room, *player) {
	t.Helper()
	words := &MockWordChooser{}
	words.On("ChooseOptions", WORD_OPTIONS_COUNT).Return([]string{"elephant", "pizza", "soccer"})

	host := newTestPlayer("alice", "Alice")
	configs := RoomConfigs{}
	(&configs).applyDefaults()
	r := NewRoom("ROOM01", host, configs, words, &scriptedRandom{})

	p := newPlayer("bob", "Bob", sock)
	p.room = r
	return r, p
}

func TestReadPumpForwardsEnvelopes(t *testing.T) {
	t.Parallel()
	sock := &MockNetworkSession{}
	sock.On("Read").Return([]byte(`{"type":"guess","payload":{"guess":"elephant"}}`), nil).Once()
	sock.On("Read").Return([]byte{}, ErrConnectionLost)
	sock.On("Close", mock.Anything).Return()

	r, p := newPumpFixture(t, sock)
	go p.ReadPump()

	select {
	case ce := <-r.inbox:
		assert.Equal(t, TypeGuess, ce.env.Type)
		assert.Same(t, p, ce.from)
	case <-time.After(time.Second):
		t.Fatal("envelope never reached the room inbox")
	}

	select {
	case removed := <-r.removals:
		assert.Same(t, p, removed)
	case <-time.After(time.Second):
		t.Fatal("read failure did not request removal")
	}
}

func TestReadPumpDropsHeartbeatsAndGarbage(t *testing.T) {
	t.Parallel()
	sock := &MockNetworkSession{}
	sock.On("Read").Return([]byte(`{"type":"heartbeat"}`), nil).Once()
	sock.On("Read").Return([]byte(`not json`), nil).Once()
	sock.On("Read").Return([]byte{}, ErrConnectionLost)
	sock.On("Close", mock.Anything).Return()

	r, p := newPumpFixture(t, sock)
	go p.ReadPump()

	select {
	case removed := <-r.removals:
		assert.Same(t, p, removed)
	case <-time.After(time.Second):
		t.Fatal("read pump never finished")
	}
	assert.Empty(t, r.inbox)
}

func TestReadPumpRateLimitsNonDrawTraffic(t *testing.T) {
	t.Parallel()
	sock := &MockNetworkSession{}
	for i := 0; i < 40; i++ {
		sock.On("Read").Return([]byte(`{"type":"guess","payload":{"guess":"x"}}`), nil).Once()
	}
	sock.On("Read").Return([]byte{}, ErrConnectionLost)
	sock.On("Close", mock.Anything).Return()

	r, p := newPumpFixture(t, sock)
	go p.ReadPump()

	select {
	case removed := <-r.removals:
		require.Same(t, p, removed)
	case <-time.After(time.Second * 2):
		t.Fatal("read pump never finished")
	}
	assert.Less(t, len(r.inbox), 40, "the burst must be throttled")
	assert.NotEmpty(t, r.inbox)
}

func TestReadPumpExemptsDrawTraffic(t *testing.T) {
	t.Parallel()
	sock := &MockNetworkSession{}
	for i := 0; i < 40; i++ {
		sock.On("Read").Return([]byte(`{"type":"draw","payload":{"x":1}}`), nil).Once()
	}
	sock.On("Read").Return([]byte{}, ErrConnectionLost)
	sock.On("Close", mock.Anything).Return()

	r, p := newPumpFixture(t, sock)
	go p.ReadPump()

	select {
	case <-r.removals:
	case <-time.After(time.Second * 2):
		t.Fatal("read pump never finished")
	}
	assert.Len(t, r.inbox, 40, "drawing traffic bypasses the limiter")
}

func TestWritePumpDrainsSendBuffer(t *testing.T) {
	t.Parallel()
	written := make(chan []byte, 8)
	sock := &MockNetworkSession{}
	sock.On("Write", mock.Anything).Run(func(args mock.Arguments) {
		written <- args.Get(0).([]byte)
	}).Return(nil)
	sock.On("Close", mock.Anything).Return()

	_, p := newPumpFixture(t, sock)
	go p.WritePump()
	defer p.shutdown("")

	p.trySend([]byte("hello"))

	select {
	case data := <-written:
		assert.Equal(t, []byte("hello"), data)
	case <-time.After(time.Second):
		t.Fatal("queued data never written")
	}
}

func TestTrySendDropsWhenBufferFull(t *testing.T) {
	t.Parallel()
	_, p := newPumpFixture(t, &MockNetworkSession{})

	for i := 0; i < playerSendBuffer; i++ {
		p.trySend([]byte("x"))
	}
	// the buffer is full and no write pump is draining; this must not block
	p.trySend([]byte("overflow"))
	assert.Len(t, p.send, playerSendBuffer)
}
