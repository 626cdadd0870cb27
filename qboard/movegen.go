package qboard

var knightOffsets = [8][2]int{
	{2, 1}, {2, -1}, {-2, 1}, {-2, -1},
	{1, 2}, {1, -2}, {-1, 2}, {-1, -2},
}

var kingOffsets = [8][2]int{
	{1, 0}, {-1, 0}, {0, 1}, {0, -1},
	{1, 1}, {1, -1}, {-1, 1}, {-1, -1},
}

var rookDirections = [4][2]int{{1, 0}, {-1, 0}, {0, 1}, {0, -1}}
var bishopDirections = [4][2]int{{1, 1}, {1, -1}, {-1, 1}, {-1, -1}}

var promotionKinds = [4]PieceKind{Queen, Rook, Bishop, Knight}

// Neighbours returns the king-adjacent squares of sq in ascending order.
func Neighbours(sq Square) []Square {
	out := make([]Square, 0, 8)
	for dr := -1; dr <= 1; dr++ {
		for df := -1; df <= 1; df++ {
			if dr == 0 && df == 0 {
				continue
			}
			if t, ok := offset(sq, df, dr); ok {
				out = append(out, t)
			}
		}
	}
	return out
}

func offset(sq Square, df, dr int) (Square, bool) {
	f, r := sq.File()+df, sq.Rank()+dr
	if f < 0 || f > 7 || r < 0 || r > 7 {
		return NoSquare, false
	}
	return NewSquare(f, r), true
}

// Destinations lists the squares the piece on sq can reach by its movement
// geometry: empty squares and squares held by the other side. A hypothesis
// counts as occupation by its owner. Check is not considered.
func (b Board) Destinations(sq Square) []Square {
	p, ok := b.PieceAt(sq)
	if !ok {
		return nil
	}
	out := make([]Square, 0, 16)
	add := func(t Square) bool {
		c, occupied := b.Occupied(t)
		if !occupied {
			out = append(out, t)
			return true
		}
		if c != p.Color {
			out = append(out, t)
		}
		return false
	}

	switch p.Kind {
	case Pawn:
		dir, start := 1, 1
		if p.Color == Black {
			dir, start = -1, 6
		}
		if one, ok := offset(sq, 0, dir); ok {
			if _, occupied := b.Occupied(one); !occupied {
				out = append(out, one)
				if sq.Rank() == start {
					if two, ok := offset(sq, 0, 2*dir); ok {
						if _, occupied := b.Occupied(two); !occupied {
							out = append(out, two)
						}
					}
				}
			}
		}
		for _, df := range [2]int{-1, 1} {
			if t, ok := offset(sq, df, dir); ok {
				if c, occupied := b.Occupied(t); occupied && c != p.Color {
					out = append(out, t)
				}
			}
		}
	case Knight:
		for _, o := range knightOffsets {
			if t, ok := offset(sq, o[1], o[0]); ok {
				add(t)
			}
		}
	case King:
		for _, o := range kingOffsets {
			if t, ok := offset(sq, o[1], o[0]); ok {
				add(t)
			}
		}
	case Bishop:
		slide(sq, bishopDirections[:], add)
	case Rook:
		slide(sq, rookDirections[:], add)
	case Queen:
		slide(sq, rookDirections[:], add)
		slide(sq, bishopDirections[:], add)
	}
	return out
}

// slide walks each direction until add reports a blocked square.
func slide(sq Square, dirs [][2]int, add func(Square) bool) {
	for _, d := range dirs {
		t := sq
		for {
			next, ok := offset(t, d[1], d[0])
			if !ok || !add(next) {
				break
			}
			t = next
		}
	}
}

// PseudoMoves generates geometry moves for c; promotions are to a queen.
func (b Board) PseudoMoves(c Color) []Move {
	return b.pseudoMoves(c, false)
}

// PseudoMovesAllPromotions is PseudoMoves with under-promotions included.
func (b Board) PseudoMovesAllPromotions(c Color) []Move {
	return b.pseudoMoves(c, true)
}

func (b Board) pseudoMoves(c Color, allPromotions bool) []Move {
	moves := make([]Move, 0, 48)
	for _, from := range b.Squares(c) {
		p := b.cells[from].piece
		for _, to := range b.Destinations(from) {
			if p.Kind == Pawn && (to.Rank() == 0 || to.Rank() == 7) {
				if !allPromotions {
					moves = append(moves, Move{From: from, To: to, Promotion: Queen})
					continue
				}
				for _, k := range promotionKinds {
					moves = append(moves, Move{From: from, To: to, Promotion: k})
				}
				continue
			}
			moves = append(moves, Move{From: from, To: to})
		}
	}
	return moves
}
