package qboard

import "fmt"

// Move is a requested displacement. Promotion is NoKind unless a pawn reaches
// the last rank.
type Move struct {
	From      Square
	To        Square
	Promotion PieceKind
}

// NullMove is returned by the search when no move exists.
var NullMove = Move{From: NoSquare, To: NoSquare}

// IsNull reports whether m is the null move.
func (m Move) IsNull() bool { return m.From == NoSquare && m.To == NoSquare }

// String produces the coordinate form, e.g. "e2e4" or "e7e8q".
func (m Move) String() string {
	if m.IsNull() {
		return "0000"
	}
	str := m.From.String() + m.To.String()
	if m.Promotion != NoKind {
		str += string(Piece{Kind: m.Promotion, Color: Black}.Char())
	}
	return str
}

// ParseMove parses the coordinate form produced by String.
func ParseMove(str string) (Move, error) {
	if len(str) != 4 && len(str) != 5 {
		return NullMove, fmt.Errorf("invalid move %q", str)
	}
	from, err := ParseSquare(str[0:2])
	if err != nil {
		return NullMove, err
	}
	to, err := ParseSquare(str[2:4])
	if err != nil {
		return NullMove, err
	}
	m := Move{From: from, To: to}
	if len(str) == 5 {
		kind, ok := kindFromChar(str[4] | 0x20)
		if !ok || kind == Pawn || kind == King {
			return NullMove, fmt.Errorf("invalid promotion in %q", str)
		}
		m.Promotion = kind
	}
	return m, nil
}
