package game

type RoomPhase int

// These constants define the different states a session can be in.
const (
	PHASE_LOBBY          RoomPhase = iota // Waiting for participants before the game starts.
	PHASE_WORD_SELECTION                  // The drawer is choosing a word to draw.
	PHASE_DRAWING                         // The drawer is drawing, everyone else is guessing.
	PHASE_ROUND_END                       // Word revealed, short pause before the next round.
	PHASE_GAME_END                        // All rounds played, final scores shown.
)

func (p RoomPhase) String() string {
	switch p {
	case PHASE_LOBBY:
		return "lobby"
	case PHASE_WORD_SELECTION:
		return "word-selection"
	case PHASE_DRAWING:
		return "drawing"
	case PHASE_ROUND_END:
		return "round-end"
	case PHASE_GAME_END:
		return "game-end"
	}
	return "unknown"
}
