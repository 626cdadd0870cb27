package rules

import (
	"fmt"

	"github.com/notnil/chess"

	"quantum-chess/qboard"
)

// Status classifies a position for the side to move.
type Status uint8

const (
	Ongoing Status = iota
	Checkmate
	Stalemate
	KingCaptured
	Superposed
)

var statusNames = [...]string{"ongoing", "checkmate", "stalemate", "king captured", "superposed"}

func (s Status) String() string {
	if int(s) < len(statusNames) {
		return statusNames[s]
	}
	return fmt.Sprintf("status(%d)", s)
}

// GameStatus reports whether the game is over from side's point of view.
// Superposed boards are not classified until they are measured.
func GameStatus(b qboard.Board, side qboard.Color) Status {
	if _, ok := b.KingSquare(qboard.White); !ok {
		return KingCaptured
	}
	if _, ok := b.KingSquare(qboard.Black); !ok {
		return KingCaptured
	}
	if !b.IsDefinite() {
		return Superposed
	}
	pos, err := position(b, side)
	if err != nil {
		return Ongoing
	}
	switch pos.Status() {
	case chess.Checkmate:
		return Checkmate
	case chess.Stalemate:
		return Stalemate
	}
	return Ongoing
}

// SAN renders m in standard algebraic notation. Boards the classical rules
// cannot read fall back to the long form.
func SAN(b qboard.Board, side qboard.Color, m qboard.Move) string {
	if !Classical(b) {
		return m.String()
	}
	pos, err := position(b, side)
	if err != nil {
		return m.String()
	}
	cm, err := chess.UCINotation{}.Decode(pos, m.String())
	if err != nil {
		return m.String()
	}
	return chess.AlgebraicNotation{}.Encode(pos, cm)
}

func position(b qboard.Board, side qboard.Color) (*chess.Position, error) {
	fen, err := b.FEN(side)
	if err != nil {
		return nil, err
	}
	opt, err := chess.FEN(fen)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotClassical, err)
	}
	return chess.NewGame(opt).Position(), nil
}
