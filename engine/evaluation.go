package engine

import "quantum-chess/qboard"

var pieceValues = [...]float64{
	qboard.NoKind: 0,
	qboard.Pawn:   1,
	qboard.Knight: 3,
	qboard.Bishop: 3,
	qboard.Rook:   5,
	qboard.Queen:  9,
	qboard.King:   0,
}

const (
	pawnAdvanceBonus   = 0.01
	centreBonus        = 0.05
	extendedCentre     = 0.02
	maxPositional      = 0.9
	uncertaintyBonus   = 0.1
	maxUncertaintySide = 0.5
)

// Annotation marks a piece that was superposed before the position was
// measured for scoring.
type Annotation struct {
	Piece  qboard.Piece
	Square qboard.Square
}

// Annotate lists one annotation per superposition group of b, placed on the
// group's most likely square.
func Annotate(b qboard.Board) []Annotation {
	groups := b.Groups()
	if len(groups) == 0 {
		return nil
	}
	out := make([]Annotation, 0, len(groups))
	for _, g := range groups {
		best := g.Hypotheses[0]
		for _, h := range g.Hypotheses[1:] {
			if h.Probability > best.Probability {
				best = h
			}
		}
		out = append(out, Annotation{Piece: g.Piece, Square: best.Square})
	}
	return out
}

// Breakdown splits a score into its terms. All terms favour white when
// positive.
type Breakdown struct {
	Material    float64
	Positional  float64
	Uncertainty float64
}

// Total is the score the search uses.
func (e Breakdown) Total() float64 { return e.Material + e.Positional + e.Uncertainty }

// Evaluate scores b from white's point of view. A board that still holds
// superpositions is measured first with a seed taken from its hash.
func Evaluate(b qboard.Board, annotations []Annotation) float64 {
	return EvaluateDetailed(b, annotations).Total()
}

// EvaluateDetailed is Evaluate with the individual terms kept apart.
func EvaluateDetailed(b qboard.Board, annotations []Annotation) Breakdown {
	if !b.IsDefinite() {
		b = Measure(b, b.Hash())
	}
	var material, positional [2]float64
	for sq := qboard.Square(0); sq < 64; sq++ {
		p, ok := b.PieceAt(sq)
		if !ok {
			continue
		}
		material[p.Color] += pieceValues[p.Kind]
		positional[p.Color] += squareBonus(p, sq)
	}

	var uncertainty [2]float64
	for _, a := range annotations {
		uncertainty[a.Piece.Color] += uncertaintyBonus
	}
	for c := range uncertainty {
		uncertainty[c] = Min(uncertainty[c], maxUncertaintySide)
	}

	return Breakdown{
		Material:    material[qboard.White] - material[qboard.Black],
		Positional:  Clamp(positional[qboard.White]-positional[qboard.Black], -maxPositional, maxPositional),
		Uncertainty: uncertainty[qboard.White] - uncertainty[qboard.Black],
	}
}

func squareBonus(p qboard.Piece, sq qboard.Square) float64 {
	var bonus float64
	if p.Kind == qboard.Pawn {
		advanced := sq.Rank() - 1
		if p.Color == qboard.Black {
			advanced = 6 - sq.Rank()
		}
		bonus += float64(Max(advanced, 0)) * pawnAdvanceBonus
	}
	if p.Kind == qboard.King {
		return bonus
	}
	f, r := sq.File(), sq.Rank()
	switch {
	case f >= 3 && f <= 4 && r >= 3 && r <= 4:
		bonus += centreBonus
	case f >= 2 && f <= 5 && r >= 2 && r <= 5:
		bonus += extendedCentre
	}
	return bonus
}
