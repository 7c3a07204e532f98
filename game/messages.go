package game

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Message types recognized on the wire. Clients and server exchange a single
// envelope shape; the payload is decoded per type before it reaches the
// session actor.
const (
	TypeCreateRoom       = "create_room"
	TypeJoinRoom         = "join_room"
	TypePlayerJoined     = "player_joined"
	TypePlayerLeft       = "player_left"
	TypePlayerUpdate     = "player_update"
	TypeStartGame        = "start_game"
	TypeSelectWord       = "select_word"
	TypeWordOptions      = "word_options"
	TypeGuess            = "guess"
	TypeCorrectGuess     = "correct_guess"
	TypeSessionState     = "session_state"
	TypeRoundEnd         = "round_end"
	TypeGameEnd          = "game_end"
	TypeResetGame        = "reset_game"
	TypeUpdatePlayerName = "update_player_name"
	TypeDraw             = "draw"
	TypeClearCanvas      = "clear_canvas"
	TypeHeartbeat        = "heartbeat"
	TypeError            = "error"
)

type Envelope struct {
	Type    string          `json:"type"`
	RoomId  string          `json:"roomId,omitempty"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

func marshalEnvelope(msgType, roomId string, payload any) ([]byte, error) {
	var raw json.RawMessage
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("marshal %s payload: %w", msgType, err)
		}
		raw = data
	}
	return json.Marshal(Envelope{Type: msgType, RoomId: roomId, Payload: raw})
}

const (
	maxParticipantIdLength = 64
	maxDisplayNameLength   = 32
	maxGuessLength         = 128
)

// --- client -> server payloads ---

type CreateRoomPayload struct {
	ParticipantId string      `json:"participantId"`
	DisplayName   string      `json:"displayName"`
	Config        RoomConfigs `json:"config"`
}

type JoinRoomPayload struct {
	ParticipantId string `json:"participantId"`
	DisplayName   string `json:"displayName"`
}

type SelectWordPayload struct {
	Word          string `json:"word"`
	ParticipantId string `json:"participantId"`
}

type GuessPayload struct {
	Guess         string `json:"guess"`
	ParticipantId string `json:"participantId"`
}

type ResetGamePayload struct {
	ParticipantId string `json:"participantId"`
}

type UpdatePlayerNamePayload struct {
	ParticipantId string `json:"participantId"`
	Name          string `json:"name"`
}

// --- server -> client payloads ---

type PlayerJoinedPayload struct {
	Participants   []Participant `json:"participants"`
	NewParticipant Participant   `json:"newParticipant"`
}

type PlayerLeftPayload struct {
	ParticipantId string        `json:"participantId"`
	Participants  []Participant `json:"participants"`
}

type PlayerUpdatePayload struct {
	Participants []Participant `json:"participants"`
}

type SessionStatePayload struct {
	SessionState SessionSnapshot `json:"sessionState"`
}

type WordOptionsPayload struct {
	Options []string `json:"options"`
}

type CorrectGuessPayload struct {
	ParticipantId string        `json:"participantId"`
	Participants  []Participant `json:"participants"`
}

type GuessBroadcastPayload struct {
	ParticipantId string `json:"participantId"`
	Guess         string `json:"guess"`
}

type ErrorPayload struct {
	Message string `json:"message"`
}

func decodeCreateRoom(raw json.RawMessage) (CreateRoomPayload, error) {
	var p CreateRoomPayload
	if err := json.Unmarshal(raw, &p); err != nil {
		return p, fmt.Errorf("%w: malformed create_room payload", ErrValidation)
	}
	p.DisplayName = strings.TrimSpace(p.DisplayName)
	if err := validateIdentity(p.ParticipantId, p.DisplayName); err != nil {
		return p, err
	}
	p.Config.applyDefaults()
	if err := p.Config.validate(); err != nil {
		return p, err
	}
	return p, nil
}

func decodeJoinRoom(raw json.RawMessage) (JoinRoomPayload, error) {
	var p JoinRoomPayload
	if err := json.Unmarshal(raw, &p); err != nil {
		return p, fmt.Errorf("%w: malformed join_room payload", ErrValidation)
	}
	p.DisplayName = strings.TrimSpace(p.DisplayName)
	if err := validateIdentity(p.ParticipantId, p.DisplayName); err != nil {
		return p, err
	}
	return p, nil
}

func decodeSelectWord(raw json.RawMessage) (SelectWordPayload, error) {
	var p SelectWordPayload
	if err := json.Unmarshal(raw, &p); err != nil {
		return p, fmt.Errorf("%w: malformed select_word payload", ErrValidation)
	}
	if strings.TrimSpace(p.Word) == "" {
		return p, fmt.Errorf("%w: empty word", ErrValidation)
	}
	return p, nil
}

func decodeGuess(raw json.RawMessage) (GuessPayload, error) {
	var p GuessPayload
	if err := json.Unmarshal(raw, &p); err != nil {
		return p, fmt.Errorf("%w: malformed guess payload", ErrValidation)
	}
	if strings.TrimSpace(p.Guess) == "" {
		return p, fmt.Errorf("%w: empty guess", ErrValidation)
	}
	if len(p.Guess) > maxGuessLength {
		return p, fmt.Errorf("%w: guess too long", ErrValidation)
	}
	return p, nil
}

func decodeUpdatePlayerName(raw json.RawMessage) (UpdatePlayerNamePayload, error) {
	var p UpdatePlayerNamePayload
	if err := json.Unmarshal(raw, &p); err != nil {
		return p, fmt.Errorf("%w: malformed update_player_name payload", ErrValidation)
	}
	p.Name = strings.TrimSpace(p.Name)
	if p.Name == "" {
		return p, fmt.Errorf("%w: empty name", ErrValidation)
	}
	if len(p.Name) > maxDisplayNameLength {
		return p, fmt.Errorf("%w: name too long", ErrValidation)
	}
	return p, nil
}

func validateIdentity(participantId, displayName string) error {
	if len(participantId) > maxParticipantIdLength {
		return fmt.Errorf("%w: participant id too long", ErrValidation)
	}
	if displayName == "" {
		return fmt.Errorf("%w: empty display name", ErrValidation)
	}
	if len(displayName) > maxDisplayNameLength {
		return fmt.Errorf("%w: display name too long", ErrValidation)
	}
	return nil
}
