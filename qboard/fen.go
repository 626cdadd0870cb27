package qboard

import (
	"fmt"
	"strings"
)

// FENStartPos is the FEN string for the standard initial chess position.
const FENStartPos = "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1"

// ParseFEN reads the placement and side-to-move fields of a FEN string.
// Castling, en passant and the clocks are accepted but not modelled.
func ParseFEN(fen string) (Board, Color, error) {
	fields := strings.Fields(fen)
	if len(fields) < 2 {
		return Board{}, White, fmt.Errorf("%w: not enough fields", ErrInvalidFEN)
	}

	ranks := strings.Split(fields[0], "/")
	if len(ranks) != 8 {
		return Board{}, White, fmt.Errorf("%w: incorrect number of ranks", ErrInvalidFEN)
	}

	board := Empty()
	for i, rankStr := range ranks {
		rank := 7 - i
		file := 0
		for j := 0; j < len(rankStr); j++ {
			ch := rankStr[j]
			if ch >= '1' && ch <= '8' {
				file += int(ch - '0')
				continue
			}
			piece, ok := PieceFromChar(ch)
			if !ok {
				return Board{}, White, fmt.Errorf("%w: unrecognized piece character %q", ErrInvalidFEN, ch)
			}
			if file >= 8 {
				return Board{}, White, fmt.Errorf("%w: too many squares in rank %d", ErrInvalidFEN, rank+1)
			}
			board.cells[NewSquare(file, rank)] = cell{piece: piece}
			file++
		}
		if file != 8 {
			return Board{}, White, fmt.Errorf("%w: rank %d does not have 8 columns", ErrInvalidFEN, rank+1)
		}
	}

	toMove, err := ParseColor(fields[1])
	if err != nil {
		return Board{}, White, fmt.Errorf("%w: side to move must be 'w' or 'b'", ErrInvalidFEN)
	}
	return board, toMove, nil
}

// FEN renders a definite board. Castling and en passant are always "-".
func (b Board) FEN(toMove Color) (string, error) {
	if !b.IsDefinite() {
		return "", ErrSuperposedBoard
	}
	var sb strings.Builder
	for rank := 7; rank >= 0; rank-- {
		empty := 0
		for file := 0; file < 8; file++ {
			p := b.cells[NewSquare(file, rank)].piece
			if p.IsNone() {
				empty++
				continue
			}
			if empty > 0 {
				sb.WriteByte('0' + byte(empty))
				empty = 0
			}
			sb.WriteByte(p.Char())
		}
		if empty > 0 {
			sb.WriteByte('0' + byte(empty))
		}
		if rank > 0 {
			sb.WriteByte('/')
		}
	}
	if toMove == White {
		sb.WriteString(" w")
	} else {
		sb.WriteString(" b")
	}
	sb.WriteString(" - - 0 1")
	return sb.String(), nil
}
