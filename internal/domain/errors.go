package domain

import "errors"

var (
	// ErrRoomNotFound is returned when a live room has not been created.
	ErrRoomNotFound = errors.New("room not found")
	// ErrQuizNotFound indicates the quiz content could not be loaded.
	ErrQuizNotFound = errors.New("quiz not found")
	// ErrNotHost indicates a host-only command came from another user.
	ErrNotHost = errors.New("caller is not the room host")
	// ErrBadTransition indicates a command that is illegal in the room's
	// current status (start while in progress, advance while waiting, ...).
	ErrBadTransition = errors.New("illegal room state transition")
)
