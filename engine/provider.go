package engine

import "quantum-chess/qboard"

// CheckStatus tells the search whether the side to move is in check, when
// the move source knows.
type CheckStatus uint8

const (
	CheckUnknown CheckStatus = iota
	InCheck
	NotInCheck
)

// MoveProvider supplies the candidate moves of a position. An empty list
// with NotInCheck is a stalemate; any other empty list is a loss for side.
type MoveProvider interface {
	Moves(b qboard.Board, side qboard.Color) ([]qboard.Move, CheckStatus)
}

// GeometryProvider generates moves from piece geometry alone. It never
// knows about check.
type GeometryProvider struct{}

// Moves implements MoveProvider.
func (GeometryProvider) Moves(b qboard.Board, side qboard.Color) ([]qboard.Move, CheckStatus) {
	return b.PseudoMoves(side), CheckUnknown
}
