package rules

import (
	"fmt"

	"github.com/dylhunn/dragontoothmg"

	"quantum-chess/engine"
	"quantum-chess/qboard"
)

// Oracle is an engine.MoveProvider backed by dragontoothmg. Classical
// positions get check-aware legal moves; superposed positions fall back to
// piece geometry.
type Oracle struct{}

// Moves implements engine.MoveProvider.
func (Oracle) Moves(b qboard.Board, side qboard.Color) ([]qboard.Move, engine.CheckStatus) {
	if !Classical(b) {
		return b.PseudoMoves(side), engine.CheckUnknown
	}
	// A king left en prise is taken; dragontoothmg assumes it never is.
	if caps := kingCaptures(b, side); len(caps) > 0 {
		return caps, engine.CheckUnknown
	}
	db, err := toDragontooth(b, side)
	if err != nil {
		return b.PseudoMoves(side), engine.CheckUnknown
	}
	moves := fromDragontooth(db.GenerateLegalMoves())
	if db.OurKingInCheck() {
		return moves, engine.InCheck
	}
	return moves, engine.NotInCheck
}

// Classical reports whether b is definite and holds both kings.
func Classical(b qboard.Board) bool {
	if !b.IsDefinite() {
		return false
	}
	_, white := b.KingSquare(qboard.White)
	_, black := b.KingSquare(qboard.Black)
	return white && black
}

// LegalMoves lists the legal moves of side in a classical position.
func LegalMoves(b qboard.Board, side qboard.Color) ([]qboard.Move, error) {
	db, err := toDragontooth(b, side)
	if err != nil {
		return nil, err
	}
	return fromDragontooth(db.GenerateLegalMoves()), nil
}

// InCheck reports whether side's king is attacked in a classical position.
func InCheck(b qboard.Board, side qboard.Color) (bool, error) {
	db, err := toDragontooth(b, side)
	if err != nil {
		return false, err
	}
	return db.OurKingInCheck(), nil
}

// CheckLegal returns an error wrapping ErrIllegalMove when m is not among
// the moves Oracle offers side. Non-classical boards accept any move.
func CheckLegal(b qboard.Board, side qboard.Color, m qboard.Move) error {
	if !Classical(b) {
		return nil
	}
	legal := kingCaptures(b, side)
	if len(legal) == 0 {
		var err error
		if legal, err = LegalMoves(b, side); err != nil {
			return err
		}
	}
	for _, l := range legal {
		if sameMove(l, m) {
			return nil
		}
	}
	return fmt.Errorf("%w: %v", ErrIllegalMove, m)
}

// sameMove matches an unspecified promotion against the queen promotion.
func sameMove(l, m qboard.Move) bool {
	if l == m {
		return true
	}
	return l.From == m.From && l.To == m.To && m.Promotion == qboard.NoKind && l.Promotion == qboard.Queen
}

// Perft counts the leaf nodes of the legal move tree to depth.
func Perft(b qboard.Board, side qboard.Color, depth int) (int64, error) {
	db, err := toDragontooth(b, side)
	if err != nil {
		return 0, err
	}
	return perft(&db, depth), nil
}

func perft(b *dragontoothmg.Board, depth int) int64 {
	if depth == 0 {
		return 1
	}
	moves := b.GenerateLegalMoves()
	if depth == 1 {
		return int64(len(moves))
	}
	var nodes int64
	for _, m := range moves {
		unapply := b.Apply(m)
		nodes += perft(b, depth-1)
		unapply()
	}
	return nodes
}

func toDragontooth(b qboard.Board, side qboard.Color) (dragontoothmg.Board, error) {
	if !Classical(b) {
		return dragontoothmg.Board{}, ErrNotClassical
	}
	fen, err := b.FEN(side)
	if err != nil {
		return dragontoothmg.Board{}, fmt.Errorf("%w: %v", ErrNotClassical, err)
	}
	return dragontoothmg.ParseFen(fen), nil
}

var promotionKinds = map[dragontoothmg.Piece]qboard.PieceKind{
	dragontoothmg.Knight: qboard.Knight,
	dragontoothmg.Bishop: qboard.Bishop,
	dragontoothmg.Rook:   qboard.Rook,
	dragontoothmg.Queen:  qboard.Queen,
}

func fromDragontooth(moves []dragontoothmg.Move) []qboard.Move {
	out := make([]qboard.Move, 0, len(moves))
	for i := range moves {
		m := &moves[i]
		out = append(out, qboard.Move{
			From:      qboard.Square(m.From()),
			To:        qboard.Square(m.To()),
			Promotion: promotionKinds[m.Promote()],
		})
	}
	return out
}

// kingCaptures returns the geometry moves of side that take the enemy king.
func kingCaptures(b qboard.Board, side qboard.Color) []qboard.Move {
	king, ok := b.KingSquare(side.Opposite())
	if !ok {
		return nil
	}
	var out []qboard.Move
	for _, m := range b.PseudoMoves(side) {
		if m.To == king {
			out = append(out, m)
		}
	}
	return out
}
