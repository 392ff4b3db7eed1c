package service

import "errors"

// Sentinel errors mapped to HTTP statuses and WebSocket close codes by the
// handler and consumer layers.
var (
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrUnauthenticated    = errors.New("authentication required")
	ErrForbidden          = errors.New("forbidden")
	ErrNotParticipant     = errors.New("not a participant of this room")
	ErrNotFound           = errors.New("not found")
	ErrRoomFull           = errors.New("room participant limit reached")
	ErrValidation         = errors.New("invalid request")
)
