package game

// Participant is the public view of one session member, bot or human.
type Participant struct {
	Id          string `json:"id"`
	DisplayName string `json:"displayName"`
	Score       int    `json:"score"`
	IsDrawing   bool   `json:"isDrawing"`
	IsAutomated bool   `json:"isAutomated"`
}

// participantState is the session-internal record behind a Participant. The
// conn pointer is nil for bots and while a human is disconnected.
type participantState struct {
	Participant
	conn *player

	guessedThisRound bool
	// graceTicksLeft counts down while the participant is disconnected; at
	// zero the participant is removed from the roster.
	graceTicksLeft int
	// botGuessTicksLeft counts down to a pending automated guess; zero means
	// none is scheduled.
	botGuessTicksLeft int
}

func (ps *participantState) connected() bool {
	return ps.conn != nil
}

// SessionSnapshot is the immutable view of session state that leaves the
// session actor. The secret word is included only in round_end / game_end
// broadcasts and in the drawer's private copy.
type SessionSnapshot struct {
	Phase                string        `json:"phase"`
	Participants         []Participant `json:"participants"`
	CurrentDrawerId      string        `json:"currentDrawerId,omitempty"`
	SecretWord           string        `json:"secretWord,omitempty"`
	RevealedPattern      string        `json:"revealedPattern"`
	TimeRemainingSeconds int           `json:"timeRemainingSeconds"`
	RoundDurationSeconds int           `json:"roundDurationSeconds"`
	RoundNumber          int           `json:"roundNumber"`
	TotalRounds          int           `json:"totalRounds"`
	RoomId               string        `json:"roomId,omitempty"`
	HostParticipantId    string        `json:"hostParticipantId,omitempty"`
	Winner               *Participant  `json:"winner,omitempty"`
}

// RoomConfigs is the per-room tunable configuration, supplied (optionally) in
// the create_room payload.
type RoomConfigs struct {
	RoundDurationSeconds int `json:"roundDurationSeconds"`
	TotalRounds          int `json:"totalRounds"`
	MaxParticipants      int `json:"maxParticipants"`
}

const (
	DEFAULT_ROUND_DURATION_SECONDS = 60
	DEFAULT_TOTAL_ROUNDS           = 3
	DEFAULT_MAX_PARTICIPANTS       = 8
)

func (c *RoomConfigs) applyDefaults() {
	if c.RoundDurationSeconds == 0 {
		c.RoundDurationSeconds = DEFAULT_ROUND_DURATION_SECONDS
	}
	if c.TotalRounds == 0 {
		c.TotalRounds = DEFAULT_TOTAL_ROUNDS
	}
	if c.MaxParticipants == 0 {
		c.MaxParticipants = DEFAULT_MAX_PARTICIPANTS
	}
}

func (c RoomConfigs) validate() error {
	if c.RoundDurationSeconds < 10 || c.RoundDurationSeconds > 300 {
		return errConfig("roundDurationSeconds must be between 10 and 300")
	}
	if c.TotalRounds < 1 || c.TotalRounds > 10 {
		return errConfig("totalRounds must be between 1 and 10")
	}
	if c.MaxParticipants < 2 || c.MaxParticipants > 20 {
		return errConfig("maxParticipants must be between 2 and 20")
	}
	return nil
}
