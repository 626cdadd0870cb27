package qboard

import "fmt"

// Square indexes the board as rank*8+file, a1 = 0 and h8 = 63.
type Square int8

// NoSquare is the sentinel for "no square".
const NoSquare Square = -1

// NewSquare builds a square from a file and rank in 0..7.
func NewSquare(file, rank int) Square { return Square(rank*8 + file) }

// File returns 0 (a) .. 7 (h).
func (s Square) File() int { return int(s) % 8 }

// Rank returns 0 (rank 1) .. 7 (rank 8).
func (s Square) Rank() int { return int(s) / 8 }

// Valid reports whether s is on the board.
func (s Square) Valid() bool { return s >= 0 && s < 64 }

func (s Square) String() string {
	if !s.Valid() {
		return "-"
	}
	return string([]byte{'a' + byte(s.File()), '1' + byte(s.Rank())})
}

// ParseSquare parses algebraic notation such as "e4".
func ParseSquare(str string) (Square, error) {
	if len(str) != 2 {
		return NoSquare, fmt.Errorf("invalid square %q", str)
	}
	file, rank := int(str[0]-'a'), int(str[1]-'1')
	if file < 0 || file > 7 || rank < 0 || rank > 7 {
		return NoSquare, fmt.Errorf("invalid square %q", str)
	}
	return NewSquare(file, rank), nil
}

// Chebyshev returns the king-move distance between two squares.
func Chebyshev(a, b Square) int {
	df := abs(a.File() - b.File())
	dr := abs(a.Rank() - b.Rank())
	if df > dr {
		return df
	}
	return dr
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
