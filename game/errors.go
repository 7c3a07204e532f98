package game

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidTransition = errors.New("invalid-transition")
	ErrNotAuthorized     = errors.New("not-authorized")
	ErrRoomNotFound      = errors.New("room-not-found")
	ErrRoomFull          = errors.New("room-full")
	ErrValidation        = errors.New("validation-error")
	ErrConnectionLost    = errors.New("connection-lost")
)

var ErrParticipantIdTaken = errors.New("participant-id-taken")

func errConfig(msg string) error {
	return fmt.Errorf("%w: %s", ErrValidation, msg)
}
