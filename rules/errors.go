package rules

import "errors"

var (
	// ErrNotClassical is returned for boards the classical rule engines
	// cannot read: superposed boards and boards missing a king.
	ErrNotClassical = errors.New("position is not classical")

	// ErrIllegalMove is returned when a move is not legal in chess terms.
	ErrIllegalMove = errors.New("illegal move")
)
