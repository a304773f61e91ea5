package room

import "errors"

var (
	ErrRoomNotFound      = errors.New("room not found")
	ErrPlayerNotFound    = errors.New("player not in room")
	ErrForbidden         = errors.New("host-only action")
	ErrNotPlaying        = errors.New("round not in progress")
	ErrAttemptsExhausted = errors.New("guess attempts exhausted")
)
