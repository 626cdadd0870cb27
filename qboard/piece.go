package qboard

import "fmt"

// Color is the side owning a piece.
type Color uint8

const (
	White Color = iota
	Black
)

// Opposite returns the other side.
func (c Color) Opposite() Color {
	if c == White {
		return Black
	}
	return White
}

func (c Color) String() string {
	if c == White {
		return "white"
	}
	return "black"
}

// ParseColor accepts "white"/"black" and the FEN letters "w"/"b".
func ParseColor(s string) (Color, error) {
	switch s {
	case "w", "white":
		return White, nil
	case "b", "black":
		return Black, nil
	}
	return White, fmt.Errorf("unknown color %q", s)
}

// PieceKind is a colorless piece type. NoKind marks an empty square.
type PieceKind uint8

const (
	NoKind PieceKind = iota
	Pawn
	Knight
	Bishop
	Rook
	Queen
	King
)

func (k PieceKind) String() string {
	switch k {
	case Pawn:
		return "pawn"
	case Knight:
		return "knight"
	case Bishop:
		return "bishop"
	case Rook:
		return "rook"
	case Queen:
		return "queen"
	case King:
		return "king"
	default:
		return "none"
	}
}

// Piece is a kind plus its owner.
type Piece struct {
	Kind  PieceKind
	Color Color
}

// NoPiece is the zero Piece.
var NoPiece = Piece{}

// IsNone reports whether p is the empty piece.
func (p Piece) IsNone() bool { return p.Kind == NoKind }

// index packs the piece into 0..12 for table lookups (0 = none).
func (p Piece) index() int {
	if p.Kind == NoKind {
		return 0
	}
	return int(p.Kind) + 6*int(p.Color)
}

// Char returns the FEN letter of the piece (upper case for white).
func (p Piece) Char() byte {
	var ch byte
	switch p.Kind {
	case Pawn:
		ch = 'p'
	case Knight:
		ch = 'n'
	case Bishop:
		ch = 'b'
	case Rook:
		ch = 'r'
	case Queen:
		ch = 'q'
	case King:
		ch = 'k'
	default:
		return '.'
	}
	if p.Color == White {
		ch -= 'a' - 'A'
	}
	return ch
}

func (p Piece) String() string {
	if p.IsNone() {
		return "none"
	}
	return p.Color.String() + " " + p.Kind.String()
}

// PieceFromChar converts a FEN letter to a Piece.
func PieceFromChar(ch byte) (Piece, bool) {
	color := Black
	if ch >= 'A' && ch <= 'Z' {
		color = White
		ch += 'a' - 'A'
	}
	kind, ok := kindFromChar(ch)
	if !ok {
		return NoPiece, false
	}
	return Piece{Kind: kind, Color: color}, true
}

func kindFromChar(ch byte) (PieceKind, bool) {
	switch ch {
	case 'p':
		return Pawn, true
	case 'n':
		return Knight, true
	case 'b':
		return Bishop, true
	case 'r':
		return Rook, true
	case 'q':
		return Queen, true
	case 'k':
		return King, true
	}
	return NoKind, false
}
