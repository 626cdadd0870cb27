package engine

import (
	"errors"

	"quantum-chess/qboard"
)

var (
	// ErrInvalidMove is returned when the source square holds no piece of
	// the mover or the destination holds one of its own pieces. The board
	// passed in is left as it was.
	ErrInvalidMove = errors.New("invalid move")

	// ErrMalformedState aliases the board package sentinel so callers can
	// test for it without importing qboard.
	ErrMalformedState = qboard.ErrMalformedState
)
