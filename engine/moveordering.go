package engine

import (
	"sort"

	"quantum-chess/qboard"
)

// Most Valuable Victim - Least Valuable Aggressor; used to score & sort captures
var mvvLva = [7][7]uint16{
	{0, 0, 0, 0, 0, 0, 0},
	{0, 15, 14, 13, 12, 11, 10}, // victim Pawn
	{0, 25, 24, 23, 22, 21, 20}, // victim Knight
	{0, 35, 34, 33, 32, 31, 30}, // victim Bishop
	{0, 45, 44, 43, 42, 41, 40}, // victim Rook
	{0, 55, 54, 53, 52, 51, 50}, // victim Queen
	{0, 65, 64, 63, 62, 61, 60}, // victim King
}

// The move kept from the transposition table or the previous iteration goes
// first, then promotions, then captures. Captures of hypotheses are scored
// below definite captures of the same victim.
const (
	pvOffset        uint16 = 25000
	promotionOffset uint16 = 20000
	captureOffset   uint16 = 15000
	hypothesisMalus uint16 = 5
)

type scoredMove struct {
	move  qboard.Move
	score uint16
}

// orderMoves sorts moves in place, best candidates first. Equal scores keep
// their generation order.
func orderMoves(b qboard.Board, moves []qboard.Move, pv qboard.Move) {
	scored := make([]scoredMove, len(moves))
	for i, m := range moves {
		scored[i] = scoredMove{move: m, score: scoreMove(b, m, pv)}
	}
	sort.SliceStable(scored, func(i, j int) bool { return scored[i].score > scored[j].score })
	for i := range scored {
		moves[i] = scored[i].move
	}
}

func scoreMove(b qboard.Board, m, pv qboard.Move) uint16 {
	if m == pv {
		return pvOffset
	}
	var score uint16
	if m.Promotion != qboard.NoKind {
		score += promotionOffset + uint16(m.Promotion)
	}
	if victim, ok := b.PieceAt(m.To); ok {
		attacker, _ := b.PieceAt(m.From)
		v := mvvLva[victim.Kind][attacker.Kind]
		if b.IsSuperposed(m.To) && v > hypothesisMalus {
			v -= hypothesisMalus
		}
		score += captureOffset + v
	}
	return score
}
