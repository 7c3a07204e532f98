package game

import (
	"encoding/json"
	"sync"

	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"
)

const playerSendBuffer = 256

// player is the connection-side actor for one human participant: a read pump
// feeding the session inbox and a write pump draining the send buffer. A slow
// or dead connection drops messages instead of stalling the session.
type player struct {
	id          string
	displayName string
	socket      NetworkSession
	limiter     *rate.Limiter
	send        chan []byte
	pingChan    chan struct{}
	room        *room
	done        chan struct{}
	closeOnce   sync.Once
}

func newPlayer(id, displayName string, socket NetworkSession) *player {
	return &player{
		id:          id,
		displayName: displayName,
		socket:      socket,
		limiter:     rate.NewLimiter(8, 16),
		send:        make(chan []byte, playerSendBuffer),
		pingChan:    make(chan struct{}, 1),
		done:        make(chan struct{}),
	}
}

func (p *player) shutdown(reason string) {
	p.closeOnce.Do(func() {
		close(p.done)
		p.socket.Close(reason)
	})
}

func (p *player) ReadPump() {
	r := p.room
	defer func() {
		r.RequestRemoval(p)
		p.shutdown("")
	}()

	for {
		data, err := p.socket.Read()
		if err != nil {
			log.Debug().Str("participant", p.id).Err(ErrConnectionLost).Msg("read pump closing")
			return
		}

		var env Envelope
		if err := json.Unmarshal(data, &env); err != nil {
			log.Warn().Str("participant", p.id).Err(err).Msg("malformed envelope dropped")
			continue
		}

		switch env.Type {
		case TypeHeartbeat:
			// keep-alive only, no state effect
			continue
		case TypeDraw, TypeClearCanvas:
			// drawing traffic is bursty; it bypasses the limiter
		default:
			if !p.limiter.Allow() {
				log.Warn().Str("participant", p.id).Str("type", env.Type).Msg("rate limit exceeded, message dropped")
				continue
			}
		}

		select {
		case r.inbox <- clientEnvelope{env: env, from: p}:
		case <-r.done:
			return
		case <-p.done:
			return
		}
	}
}

func (p *player) WritePump() {
	defer p.shutdown("")

	for {
		select {
		case <-p.done:
			return
		case data := <-p.send:
			if err := p.socket.Write(data); err != nil {
				log.Debug().Str("participant", p.id).Err(err).Msg("write pump closing")
				return
			}
		case <-p.pingChan:
			if err := p.socket.Ping(); err != nil {
				return
			}
		}
	}
}

// trySend queues data for the write pump without ever blocking the caller.
func (p *player) trySend(data []byte) {
	select {
	case p.send <- data:
	case <-p.done:
	default:
		log.Warn().Str("participant", p.id).Msg("send buffer full, message dropped")
	}
}

func (p *player) tryPing() {
	select {
	case p.pingChan <- struct{}{}:
	default:
	}
}
