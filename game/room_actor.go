package game

import (
	"encoding/json"
	"fmt"
	"slices"
	"strings"

	"github.com/rs/zerolog/log"
)

// GameLoop is the single writer of this room's session state. Client messages,
// clock ticks, joins and disconnects are all applied here, strictly in arrival
// order, so the rest of the file needs no locks.
func (r *room) GameLoop() {
	log.Info().Str("room", r.id).Msg("game loop started")

	// the host learns the room token from this first snapshot
	if len(r.participants) > 0 {
		r.sendTo(r.participants[0], TypeSessionState, SessionStatePayload{SessionState: r.snapshot(false)})
	}

	for {
		select {
		case <-r.done:
			r.shutdownPlayers()
			log.Info().Str("room", r.id).Msg("game loop stopped")
			return
		case ce := <-r.inbox:
			r.handleClientEnvelope(ce)
		case <-r.ticks:
			r.handleTick()
		case req := <-r.joinReqs:
			r.handleJoinRequest(req)
		case p := <-r.removals:
			r.handleDisconnect(p)
		case <-r.pingPlayers:
			for _, ps := range r.participants {
				if ps.connected() {
					ps.conn.tryPing()
				}
			}
		}
	}
}

func (r *room) handleClientEnvelope(ce clientEnvelope) {
	ps := r.findByConn(ce.from)
	if ps == nil {
		// sender was removed while this message was in flight
		return
	}

	switch ce.env.Type {
	case TypeStartGame:
		// inbound sessionState is never trusted; the server recomputes
		r.handleStartGame(ps)
	case TypeSelectWord:
		r.handleSelectWord(ps, ce.env.Payload)
	case TypeGuess:
		r.handleGuess(ps, ce.env.Payload)
	case TypeResetGame:
		r.handleResetGame(ps, ce.env.Payload)
	case TypeUpdatePlayerName:
		r.handleUpdatePlayerName(ps, ce.env.Payload)
	case TypeDraw, TypeClearCanvas:
		r.handleRelay(ps, ce)
	default:
		log.Warn().Str("room", r.id).Str("type", ce.env.Type).Msg("unknown message type ignored")
	}
}

// --- phase transitions ---

func (r *room) handleStartGame(ps *participantState) {
	if r.phase != PHASE_LOBBY {
		r.rejectAction(ps, ErrInvalidTransition)
		return
	}
	if ps.Id != r.hostId {
		r.rejectAction(ps, ErrNotAuthorized)
		return
	}

	if len(r.participants) < 2 {
		r.synthesizeBots(2 - len(r.participants))
	}

	r.roundNumber = 1
	r.drawerIdx = r.rng.Intn(len(r.participants))
	r.enterWordSelection(TypeStartGame)
}

func (r *room) handleSelectWord(ps *participantState, raw json.RawMessage) {
	payload, err := decodeSelectWord(raw)
	if err != nil {
		r.rejectAction(ps, err)
		return
	}
	if payload.ParticipantId != "" && payload.ParticipantId != ps.Id {
		r.rejectAction(ps, ErrNotAuthorized)
		return
	}
	if r.phase != PHASE_WORD_SELECTION {
		r.rejectAction(ps, ErrInvalidTransition)
		return
	}
	if !ps.IsDrawing {
		r.rejectAction(ps, ErrNotAuthorized)
		return
	}
	if !slices.Contains(r.wordOptions, payload.Word) {
		r.rejectAction(ps, fmt.Errorf("%w: word not among offered options", ErrValidation))
		return
	}

	r.enterDrawing(payload.Word)
}

func (r *room) handleGuess(ps *participantState, raw json.RawMessage) {
	payload, err := decodeGuess(raw)
	if err != nil {
		r.rejectAction(ps, err)
		return
	}
	if payload.ParticipantId != "" && payload.ParticipantId != ps.Id {
		r.rejectAction(ps, ErrNotAuthorized)
		return
	}
	if r.phase != PHASE_DRAWING {
		r.rejectAction(ps, ErrInvalidTransition)
		return
	}
	if ps.IsDrawing {
		r.rejectAction(ps, ErrNotAuthorized)
		return
	}

	r.applyGuess(ps, payload.Guess)
}

func (r *room) handleResetGame(ps *participantState, raw json.RawMessage) {
	var payload ResetGamePayload
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &payload); err != nil {
			r.rejectAction(ps, fmt.Errorf("%w: malformed reset_game payload", ErrValidation))
			return
		}
	}
	if payload.ParticipantId != "" && payload.ParticipantId != ps.Id {
		r.rejectAction(ps, ErrNotAuthorized)
		return
	}
	if r.phase == PHASE_LOBBY {
		r.rejectAction(ps, ErrInvalidTransition)
		return
	}

	for _, member := range r.participants {
		member.Score = 0
		member.IsDrawing = false
		member.guessedThisRound = false
		member.botGuessTicksLeft = 0
	}
	r.phase = PHASE_LOBBY
	r.drawerIdx = -1
	r.secretWord = ""
	r.revealedPattern = nil
	r.roundNumber = 0
	r.timeRemaining = 0
	r.wordOptions = nil
	r.reveal = nil
	r.phaseTicksLeft = 0
	r.drawHistory = nil

	log.Info().Str("room", r.id).Str("by", ps.Id).Msg("game reset")
	r.broadcast(TypeSessionState, SessionStatePayload{SessionState: r.snapshot(false)})
	r.publishDescription()
}

func (r *room) handleUpdatePlayerName(ps *participantState, raw json.RawMessage) {
	payload, err := decodeUpdatePlayerName(raw)
	if err != nil {
		r.rejectAction(ps, err)
		return
	}
	if payload.ParticipantId != "" && payload.ParticipantId != ps.Id {
		r.rejectAction(ps, ErrNotAuthorized)
		return
	}

	ps.DisplayName = payload.Name
	r.broadcast(TypePlayerUpdate, PlayerUpdatePayload{Participants: r.participantsView()})
}

// handleRelay forwards drawing traffic to everyone else without interpreting
// it. During the drawing phase the raw messages are retained so late joiners
// can replay the canvas.
func (r *room) handleRelay(ps *participantState, ce clientEnvelope) {
	data, err := marshalEnvelope(ce.env.Type, r.id, json.RawMessage(ce.env.Payload))
	if err != nil {
		return
	}
	switch ce.env.Type {
	case TypeDraw:
		if r.phase == PHASE_DRAWING {
			r.drawHistory = append(r.drawHistory, data)
		}
	case TypeClearCanvas:
		r.drawHistory = nil
	}
	for _, member := range r.participants {
		if member == ps || !member.connected() {
			continue
		}
		member.conn.trySend(data)
	}
}

func (r *room) enterWordSelection(announceType string) {
	r.phase = PHASE_WORD_SELECTION
	r.secretWord = ""
	r.revealedPattern = nil
	r.timeRemaining = 0
	r.reveal = nil
	r.phaseTicksLeft = 0
	r.drawHistory = nil

	for i, member := range r.participants {
		member.IsDrawing = i == r.drawerIdx
		member.guessedThisRound = false
		member.botGuessTicksLeft = 0
	}

	r.wordOptions = r.words.ChooseOptions(WORD_OPTIONS_COUNT)

	r.broadcast(announceType, SessionStatePayload{SessionState: r.snapshot(false)})

	drawer := r.participants[r.drawerIdx]
	log.Info().Str("room", r.id).Int("round", r.roundNumber).Str("drawer", drawer.Id).Msg("word selection started")
	if drawer.IsAutomated {
		r.phaseTicksLeft = BOT_DRAWER_SELECT_TICKS
	} else if drawer.connected() {
		r.sendTo(drawer, TypeWordOptions, WordOptionsPayload{Options: r.wordOptions})
	}
	r.publishDescription()
}

func (r *room) enterDrawing(word string) {
	r.phase = PHASE_DRAWING
	r.secretWord = word
	r.revealedPattern = maskWord(word)
	r.timeRemaining = r.configs.RoundDurationSeconds
	r.reveal = newRevealScheduler(r.configs.RoundDurationSeconds)
	r.wordOptions = nil
	r.phaseTicksLeft = 0

	r.scheduleBotGuesses()

	log.Info().Str("room", r.id).Int("round", r.roundNumber).Msg("drawing started")
	r.broadcast(TypeSessionState, SessionStatePayload{SessionState: r.snapshot(false)})
	drawer := r.participants[r.drawerIdx]
	if drawer.connected() {
		// only the drawer sees the secret
		r.sendTo(drawer, TypeSessionState, SessionStatePayload{SessionState: r.snapshot(true)})
	}
	r.publishDescription()
}

func (r *room) applyGuess(ps *participantState, rawGuess string) {
	if ps.guessedThisRound {
		// a correct guesser cannot score twice or re-trigger the early end
		return
	}

	if normalizeGuess(rawGuess) == normalizeGuess(r.secretWord) {
		ps.guessedThisRound = true
		award := onCorrectGuess()
		ps.Score += award.guesserDelta
		r.participants[r.drawerIdx].Score += award.drawerDelta

		log.Debug().Str("room", r.id).Str("participant", ps.Id).Msg("correct guess")
		r.broadcast(TypeCorrectGuess, CorrectGuessPayload{
			ParticipantId: ps.Id,
			Participants:  r.participantsView(),
		})

		if r.allNonDrawersGuessed() {
			r.endRound()
		}
		return
	}

	r.broadcast(TypeGuess, GuessBroadcastPayload{
		ParticipantId: ps.Id,
		Guess:         strings.TrimSpace(rawGuess),
	})
}

func (r *room) endRound() {
	r.phase = PHASE_ROUND_END
	r.revealedPattern = []byte(r.secretWord)
	r.phaseTicksLeft = ROUND_END_DELAY_TICKS
	for _, member := range r.participants {
		member.botGuessTicksLeft = 0
	}

	log.Info().Str("room", r.id).Int("round", r.roundNumber).Str("word", r.secretWord).Msg("round ended")
	r.broadcast(TypeRoundEnd, SessionStatePayload{SessionState: r.snapshot(true)})
	r.publishDescription()
}

func (r *room) advanceRound() {
	if r.roundNumber >= r.configs.TotalRounds {
		r.phase = PHASE_GAME_END
		r.phaseTicksLeft = 0
		// nobody is drawing once the game is over
		r.drawerIdx = -1
		for _, member := range r.participants {
			member.IsDrawing = false
		}
		log.Info().Str("room", r.id).Msg("game ended")
		r.broadcast(TypeGameEnd, SessionStatePayload{SessionState: r.snapshot(true)})
		r.publishDescription()
		return
	}

	if len(r.participants) == 0 {
		// roster drained mid-game; the empty-room sweep will tear us down
		return
	}

	r.roundNumber++
	// rotation is by round index, not a surviving pointer: deterministic even
	// when the roster shrank since last round
	r.drawerIdx = r.roundNumber % len(r.participants)
	r.enterWordSelection(TypeSessionState)
}

// --- clock ---

func (r *room) handleTick() {
	phaseBeforeSweep := r.phase
	r.sweepDisconnected()

	if r.countConnectedHumans() == 0 {
		r.emptyTicks++
		if r.emptyTicks >= EMPTY_ROOM_TICKS && r.parent != nil {
			log.Info().Str("room", r.id).Msg("room empty, requesting teardown")
			r.parent.RemoveRoom(r.id)
			return
		}
	} else {
		r.emptyTicks = 0
	}

	if r.phase != phaseBeforeSweep {
		// a sweep removal closed the phase; its successor starts counting on
		// the next tick
		return
	}

	switch r.phase {
	case PHASE_DRAWING:
		r.timeRemaining--
		for n := r.reveal.crossed(r.timeRemaining); n > 0; n-- {
			revealRandomPosition(r.secretWord, r.revealedPattern, r.rng)
		}
		r.fireDueBotGuesses()
		if r.phase != PHASE_DRAWING {
			// a bot guess ended the round
			return
		}
		if r.timeRemaining <= 0 {
			r.endRound()
			return
		}
		r.broadcast(TypeSessionState, SessionStatePayload{SessionState: r.snapshot(false)})

	case PHASE_WORD_SELECTION:
		if r.phaseTicksLeft > 0 {
			r.phaseTicksLeft--
			if r.phaseTicksLeft == 0 && len(r.wordOptions) > 0 {
				// automated drawer picks for itself
				r.enterDrawing(r.wordOptions[r.rng.Intn(len(r.wordOptions))])
			}
		}

	case PHASE_ROUND_END:
		if r.phaseTicksLeft > 0 {
			r.phaseTicksLeft--
		}
		if r.phaseTicksLeft == 0 {
			r.advanceRound()
		}
	}
}

// --- membership ---

func (r *room) handleJoinRequest(req joinRequest) {
	if existing := r.findById(req.player.id); existing != nil {
		if existing.connected() || existing.IsAutomated {
			req.errChan <- ErrParticipantIdTaken
			return
		}
		// reconnect within the grace period reclaims the seat
		existing.conn = req.player
		existing.graceTicksLeft = 0
		existing.DisplayName = req.player.displayName
		req.player.room = r
		req.errChan <- nil
		log.Info().Str("room", r.id).Str("participant", existing.Id).Msg("participant reconnected")
		r.resyncParticipant(existing)
		r.broadcast(TypePlayerUpdate, PlayerUpdatePayload{Participants: r.participantsView()})
		r.publishDescription()
		return
	}

	if len(r.participants) >= r.configs.MaxParticipants {
		req.errChan <- ErrRoomFull
		return
	}

	ps := &participantState{
		Participant: Participant{Id: req.player.id, DisplayName: req.player.displayName},
		conn:        req.player,
	}
	r.participants = append(r.participants, ps)
	req.player.room = r
	req.errChan <- nil

	log.Info().Str("room", r.id).Str("participant", ps.Id).Msg("participant joined")
	r.broadcast(TypePlayerJoined, PlayerJoinedPayload{
		Participants:   r.participantsView(),
		NewParticipant: ps.Participant,
	})
	if r.phase != PHASE_LOBBY {
		r.resyncParticipant(ps)
	}
	r.publishDescription()
}

// resyncParticipant brings a newly attached connection up to date: current
// session state plus the drawing history of the round in progress.
func (r *room) resyncParticipant(ps *participantState) {
	r.sendTo(ps, TypeSessionState, SessionStatePayload{SessionState: r.snapshot(ps.IsDrawing)})
	if ps.IsDrawing && r.phase == PHASE_WORD_SELECTION {
		r.sendTo(ps, TypeWordOptions, WordOptionsPayload{Options: r.wordOptions})
	}
	for _, data := range r.drawHistory {
		ps.conn.trySend(data)
	}
}

func (r *room) handleDisconnect(p *player) {
	ps := r.findByConn(p)
	if ps == nil {
		return
	}
	ps.conn = nil
	ps.graceTicksLeft = DISCONNECT_GRACE_TICKS
	log.Info().Str("room", r.id).Str("participant", ps.Id).Msg("participant disconnected, grace period started")
	r.broadcast(TypePlayerUpdate, PlayerUpdatePayload{Participants: r.participantsView()})
	r.publishDescription()
}

func (r *room) sweepDisconnected() {
	expired := make([]*participantState, 0)
	for _, ps := range r.participants {
		if ps.IsAutomated || ps.connected() || ps.graceTicksLeft == 0 {
			continue
		}
		ps.graceTicksLeft--
		if ps.graceTicksLeft == 0 {
			expired = append(expired, ps)
		}
	}
	for _, ps := range expired {
		r.removeParticipant(ps)
	}
}

func (r *room) removeParticipant(ps *participantState) {
	idx := slices.Index(r.participants, ps)
	if idx < 0 {
		return
	}
	r.participants = slices.Delete(r.participants, idx, idx+1)

	wasDrawer := idx == r.drawerIdx
	if idx < r.drawerIdx {
		r.drawerIdx--
	}
	if len(r.participants) == 0 {
		r.drawerIdx = -1
	} else if r.drawerIdx >= len(r.participants) {
		r.drawerIdx %= len(r.participants)
	}

	if ps.Id == r.hostId {
		r.promoteNewHost()
	}

	log.Info().Str("room", r.id).Str("participant", ps.Id).Msg("participant removed")
	r.broadcast(TypePlayerLeft, PlayerLeftPayload{
		ParticipantId: ps.Id,
		Participants:  r.participantsView(),
	})

	if wasDrawer && len(r.participants) > 0 {
		switch r.phase {
		case PHASE_DRAWING:
			// the drawer is gone; reveal the word and close the round
			r.endRound()
		case PHASE_WORD_SELECTION:
			r.enterWordSelection(TypeSessionState)
		}
	} else if r.phase == PHASE_DRAWING && len(r.participants) > 0 && r.allNonDrawersGuessed() {
		// the departed participant was the last one still guessing
		r.endRound()
	}
	r.publishDescription()
}

// promoteNewHost hands the host attribute to the next-oldest human in roster
// order.
func (r *room) promoteNewHost() {
	r.hostId = ""
	for _, member := range r.participants {
		if !member.IsAutomated {
			r.hostId = member.Id
			return
		}
	}
}

// --- small helpers ---

func (r *room) rejectAction(ps *participantState, err error) {
	log.Debug().Str("room", r.id).Str("participant", ps.Id).Err(err).Msg("action rejected")
	if ps.connected() {
		r.sendTo(ps, TypeError, ErrorPayload{Message: err.Error()})
	}
}

func (r *room) broadcast(msgType string, payload any) {
	data, err := marshalEnvelope(msgType, r.id, payload)
	if err != nil {
		log.Error().Str("room", r.id).Err(err).Msg("broadcast marshal failed")
		return
	}
	for _, member := range r.participants {
		if member.connected() {
			member.conn.trySend(data)
		}
	}
}

func (r *room) sendTo(ps *participantState, msgType string, payload any) {
	if !ps.connected() {
		return
	}
	data, err := marshalEnvelope(msgType, r.id, payload)
	if err != nil {
		return
	}
	ps.conn.trySend(data)
}

func (r *room) publishDescription() {
	if r.parent != nil {
		r.parent.UpdateDescription(r.Description())
	}
}

func (r *room) shutdownPlayers() {
	for _, member := range r.participants {
		if member.connected() {
			member.conn.shutdown("room-closed")
		}
	}
}

func (r *room) findByConn(p *player) *participantState {
	for _, member := range r.participants {
		if member.conn == p {
			return member
		}
	}
	return nil
}

func (r *room) findById(id string) *participantState {
	for _, member := range r.participants {
		if member.Id == id {
			return member
		}
	}
	return nil
}

func (r *room) participantsView() []Participant {
	view := make([]Participant, 0, len(r.participants))
	for _, member := range r.participants {
		view = append(view, member.Participant)
	}
	return view
}

func (r *room) countConnectedHumans() int {
	n := 0
	for _, member := range r.participants {
		if member.connected() {
			n++
		}
	}
	return n
}

func (r *room) allNonDrawersGuessed() bool {
	for i, member := range r.participants {
		if i == r.drawerIdx {
			continue
		}
		if !member.guessedThisRound {
			return false
		}
	}
	return true
}

func (r *room) winner() Participant {
	best := r.participants[0].Participant
	for _, member := range r.participants[1:] {
		// strictly greater keeps the earliest roster position on ties
		if member.Score > best.Score {
			best = member.Participant
		}
	}
	return best
}

func (r *room) snapshot(includeSecret bool) SessionSnapshot {
	s := SessionSnapshot{
		Phase:                r.phase.String(),
		Participants:         r.participantsView(),
		RevealedPattern:      string(r.revealedPattern),
		TimeRemainingSeconds: r.timeRemaining,
		RoundDurationSeconds: r.configs.RoundDurationSeconds,
		RoundNumber:          r.roundNumber,
		TotalRounds:          r.configs.TotalRounds,
		RoomId:               r.id,
		HostParticipantId:    r.hostId,
	}
	if r.drawerIdx >= 0 && r.drawerIdx < len(r.participants) {
		s.CurrentDrawerId = r.participants[r.drawerIdx].Id
	}
	if includeSecret {
		s.SecretWord = r.secretWord
	}
	if r.phase == PHASE_GAME_END && len(r.participants) > 0 {
		w := r.winner()
		s.Winner = &w
	}
	return s
}

func normalizeGuess(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
