package engine

import (
	"math"
	"testing"

	"quantum-chess/qboard"
)

func square(coord string) qboard.Square {
	sq, err := qboard.ParseSquare(coord)
	if err != nil {
		panic("invalid coordinate")
	}
	return sq
}

func move(uci string) qboard.Move {
	m, err := qboard.ParseMove(uci)
	if err != nil {
		panic(err)
	}
	return m
}

func boardFromFEN(t *testing.T, fen string) qboard.Board {
	t.Helper()
	b, _, err := qboard.ParseFEN(fen)
	if err != nil {
		t.Fatalf("parse FEN: %v", err)
	}
	return b
}

func hyps(pairs ...any) []qboard.Hypothesis {
	out := make([]qboard.Hypothesis, 0, len(pairs)/2)
	for i := 0; i+1 < len(pairs); i += 2 {
		out = append(out, qboard.Hypothesis{Square: square(pairs[i].(string)), Probability: pairs[i+1].(float64)})
	}
	return out
}

// superpose lifts the definite piece on from into a group over the given
// hypotheses.
func superpose(b qboard.Board, from string, h []qboard.Hypothesis) qboard.Board {
	return b.CloneWithChange(func(e *qboard.Editor) {
		p := e.Remove(square(from))
		e.Superpose(p, h)
	})
}

func checkNormalized(t *testing.T, b qboard.Board) {
	t.Helper()
	for _, g := range b.Groups() {
		var sum float64
		for _, h := range g.Hypotheses {
			sum += h.Probability
		}
		if math.Abs(sum-1) > qboard.ProbabilityTolerance {
			t.Fatalf("group %d sums to %v", g.ID, sum)
		}
	}
}
