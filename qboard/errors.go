package qboard

import (
	"errors"
	"fmt"
)

var (
	ErrMalformedState  = errors.New("malformed board state")
	ErrSuperposedBoard = errors.New("board is in superposition")
	ErrInvalidFEN      = errors.New("invalid FEN")
)

// MalformedStateError describes a violated board invariant. Inside the
// engine it is raised with panic; decoders return it as an error.
type MalformedStateError struct {
	Reason string
}

func (e *MalformedStateError) Error() string { return "malformed board state: " + e.Reason }

func (e *MalformedStateError) Unwrap() error { return ErrMalformedState }

func malformed(format string, args ...any) *MalformedStateError {
	return &MalformedStateError{Reason: fmt.Sprintf(format, args...)}
}
