package game

import (
	"fmt"
	"slices"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// Automated guess timing, in clock ticks: each bot fires once per drawing
// phase, somewhere in [15s, 35s) after the phase starts.
const (
	BOT_GUESS_MIN_TICKS    = 15
	BOT_GUESS_SPREAD_TICKS = 20
)

// decoyVocabulary feeds deliberately wrong bot guesses. None of these words
// appear in any word bank category, so a decoy can never match the secret.
var decoyVocabulary = []string{
	"house", "tree", "car", "ball", "dog", "cat", "boat",
	"table", "phone", "fork", "shoe", "lamp", "bridge", "cloud",
}

// synthesizeBots appends n automated participants so a game can start with a
// single human.
func (r *room) synthesizeBots(n int) {
	for i := 0; i < n; i++ {
		r.botCounter++
		bot := &participantState{
			Participant: Participant{
				Id:          "bot-" + uuid.NewString(),
				DisplayName: fmt.Sprintf("Bot %d", r.botCounter),
				IsAutomated: true,
			},
		}
		r.participants = append(r.participants, bot)
		log.Info().Str("room", r.id).Str("bot", bot.Id).Msg("bot synthesized")
		r.broadcast(TypePlayerJoined, PlayerJoinedPayload{
			Participants:   r.participantsView(),
			NewParticipant: bot.Participant,
		})
	}
}

// scheduleBotGuesses arms one randomized guess deadline per automated
// non-drawer. Deadlines are stored as tick countdowns on the participant, so
// any phase transition that clears them also cancels the pending guess.
func (r *room) scheduleBotGuesses() {
	for i, ps := range r.participants {
		if !ps.IsAutomated || i == r.drawerIdx {
			continue
		}
		ps.botGuessTicksLeft = BOT_GUESS_MIN_TICKS + r.rng.Intn(BOT_GUESS_SPREAD_TICKS)
	}
}

// fireDueBotGuesses advances every pending bot deadline by one tick and
// submits the guesses that came due. A fair coin decides between the exact
// secret word and a decoy.
func (r *room) fireDueBotGuesses() {
	for _, ps := range r.participants {
		if r.phase != PHASE_DRAWING {
			// an earlier bot guess closed the round
			return
		}
		if ps.botGuessTicksLeft == 0 {
			continue
		}
		ps.botGuessTicksLeft--
		if ps.botGuessTicksLeft > 0 {
			continue
		}

		guess := r.secretWord
		if r.rng.Intn(2) == 1 {
			guess = r.pickDecoy()
		}
		log.Debug().Str("room", r.id).Str("bot", ps.Id).Msg("bot guessing")
		r.applyGuess(ps, guess)
	}
}

// pickDecoy returns a guaranteed-incorrect guess.
func (r *room) pickDecoy() string {
	decoy := decoyVocabulary[r.rng.Intn(len(decoyVocabulary))]
	if normalizeGuess(decoy) == normalizeGuess(r.secretWord) {
		// cannot happen while the vocabularies stay disjoint, but a wrong
		// guess must stay wrong by construction
		decoy = decoyVocabulary[(slices.Index(decoyVocabulary, decoy)+1)%len(decoyVocabulary)]
	}
	return decoy
}
