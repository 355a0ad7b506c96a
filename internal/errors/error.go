package errors

import "errors"

var (
	ErrGameFull           = errors.New("all seats are taken")
	ErrRegistrationClosed = errors.New("registration is closed")
	ErrUnknownColor       = errors.New("no player with this color")
	ErrNotRegistered      = errors.New("connection has not registered a player")
	ErrAlreadyRegistered  = errors.New("connection already registered a player")
	ErrMalformedMessage   = errors.New("malformed message")
	ErrUnknownMessage     = errors.New("unknown message type")
	ErrInternal           = errors.New("internal error")
)
