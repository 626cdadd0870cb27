package qboard

import (
	"errors"
	"math"
	"testing"
)

func sq(t *testing.T, s string) Square {
	t.Helper()
	out, err := ParseSquare(s)
	if err != nil {
		t.Fatalf("parse square %q: %v", s, err)
	}
	return out
}

func groupSum(g Group) float64 {
	var sum float64
	for _, h := range g.Hypotheses {
		sum += h.Probability
	}
	return sum
}

func TestStartPosition(t *testing.T) {
	b := StartPosition()
	if !b.IsDefinite() {
		t.Fatalf("start position should be definite")
	}
	p, ok := b.PieceAt(sq(t, "e1"))
	if !ok || p != (Piece{Kind: King, Color: White}) {
		t.Fatalf("expected white king on e1, got %v", p)
	}
	if _, ok := b.PieceAt(sq(t, "e4")); ok {
		t.Fatalf("expected e4 to be empty")
	}
	if n := len(b.Squares(Black)); n != 16 {
		t.Fatalf("expected 16 black pieces, got %d", n)
	}
}

func TestCloneWithChangeLeavesReceiverAlone(t *testing.T) {
	b := StartPosition()
	before := b.Hash()
	nb := b.CloneWithChange(func(e *Editor) {
		e.Move(sq(t, "g1"), sq(t, "f3"))
	})
	if b.Hash() != before {
		t.Fatalf("receiver changed")
	}
	if _, ok := nb.PieceAt(sq(t, "f3")); !ok {
		t.Fatalf("expected knight on f3 in the new board")
	}
	if nb.Hash() == before {
		t.Fatalf("expected different hash after the move")
	}
}

func TestSuperposeAndCaptureRenormalizes(t *testing.T) {
	knight := Piece{Kind: Knight, Color: Black}
	b := Empty().CloneWithChange(func(e *Editor) {
		e.Superpose(knight, []Hypothesis{
			{Square: sq(t, "c6"), Probability: 0.5},
			{Square: sq(t, "d4"), Probability: 0.3},
			{Square: sq(t, "e5"), Probability: 0.2},
		})
	})
	if !b.IsSuperposed(sq(t, "d4")) {
		t.Fatalf("expected d4 superposed")
	}
	id, _ := b.GroupAt(sq(t, "d4"))

	captured := b.CloneWithChange(func(e *Editor) {
		e.CaptureHypothesis(sq(t, "d4"))
	})
	g, ok := captured.Group(id)
	if !ok {
		t.Fatalf("group should survive with two hypotheses")
	}
	if len(g.Hypotheses) != 2 {
		t.Fatalf("expected 2 hypotheses, got %d", len(g.Hypotheses))
	}
	if math.Abs(groupSum(g)-1) > ProbabilityTolerance {
		t.Fatalf("probabilities sum to %v", groupSum(g))
	}
	if math.Abs(g.Probability(sq(t, "c6"))-0.5/0.7) > 1e-9 {
		t.Fatalf("c6 weight %v, want %v", g.Probability(sq(t, "c6")), 0.5/0.7)
	}
	if len(g.Pending) != 1 || g.Pending[0].Square != sq(t, "d4") {
		t.Fatalf("expected pending capture on d4, got %+v", g.Pending)
	}

	// A second capture leaves one hypothesis, which dissolves the group.
	single := captured.CloneWithChange(func(e *Editor) {
		e.CaptureHypothesis(sq(t, "e5"))
	})
	if !single.IsDefinite() {
		t.Fatalf("expected definite board after second capture")
	}
	if p, ok := single.PieceAt(sq(t, "c6")); !ok || p != knight {
		t.Fatalf("expected definite knight on c6, got %v", p)
	}
}

func TestKingCannotBeSuperposed(t *testing.T) {
	defer func() {
		r := recover()
		err, ok := r.(error)
		if !ok || !errors.Is(err, ErrMalformedState) {
			t.Fatalf("expected malformed state panic, got %v", r)
		}
	}()
	Empty().CloneWithChange(func(e *Editor) {
		e.Superpose(Piece{Kind: King, Color: White}, []Hypothesis{
			{Square: 0, Probability: 0.5},
			{Square: 1, Probability: 0.5},
		})
	})
}

func TestUnnormalizedGroupPanics(t *testing.T) {
	defer func() {
		if r := recover(); r == nil {
			t.Fatalf("expected panic for probabilities summing to 0.9")
		}
	}()
	Empty().CloneWithChange(func(e *Editor) {
		e.Superpose(Piece{Kind: Rook, Color: White}, []Hypothesis{
			{Square: 0, Probability: 0.6},
			{Square: 1, Probability: 0.3},
		})
	})
}

func TestLinkAndCollapseRemovesLink(t *testing.T) {
	var a, c GroupID
	b := Empty().CloneWithChange(func(e *Editor) {
		a = e.Superpose(Piece{Kind: Rook, Color: White}, []Hypothesis{{Square: 0, Probability: 0.7}, {Square: 8, Probability: 0.3}})
		c = e.Superpose(Piece{Kind: Bishop, Color: Black}, []Hypothesis{{Square: 20, Probability: 0.6}, {Square: 29, Probability: 0.4}})
		e.Link(c, a)
	})
	if partner, ok := b.Partner(a); !ok || partner != c {
		t.Fatalf("expected %d linked to %d", a, c)
	}
	if l := b.Links(); len(l) != 1 || l[0].A != a || l[0].B != c {
		t.Fatalf("unexpected links %+v", l)
	}
	nb := b.CloneWithChange(func(e *Editor) { e.Collapse(a, 8) })
	if len(nb.Links()) != 0 {
		t.Fatalf("collapse should remove the link")
	}
	if nb.GroupCount() != 1 {
		t.Fatalf("expected one group left, got %d", nb.GroupCount())
	}
	if p, _ := nb.PieceAt(8); p.Kind != Rook || nb.IsSuperposed(8) {
		t.Fatalf("expected definite rook on a2")
	}
}

func TestHashIgnoresGroupNumbering(t *testing.T) {
	build := func(extra bool) Board {
		return Empty().CloneWithChange(func(e *Editor) {
			if extra {
				id := e.Superpose(Piece{Kind: Pawn, Color: White}, []Hypothesis{{Square: 40, Probability: 0.5}, {Square: 41, Probability: 0.5}})
				e.Collapse(id, 40)
				e.Remove(40)
			}
			e.Superpose(Piece{Kind: Queen, Color: White}, []Hypothesis{{Square: 3, Probability: 0.75}, {Square: 27, Probability: 0.25}})
		})
	}
	x, y := build(false), build(true)
	if x.Equal(y) {
		t.Fatalf("boards should differ in group ids")
	}
	if x.Hash() != y.Hash() {
		t.Fatalf("hash should not depend on group ids")
	}
}

func TestSummarize(t *testing.T) {
	b := Empty().CloneWithChange(func(e *Editor) {
		a := e.Superpose(Piece{Kind: Rook, Color: White}, []Hypothesis{{Square: 0, Probability: 0.5}, {Square: 8, Probability: 0.5}})
		c := e.Superpose(Piece{Kind: Rook, Color: Black}, []Hypothesis{{Square: 63, Probability: 0.5}, {Square: 55, Probability: 0.5}})
		e.Link(a, c)
	})
	s := b.Summarize()
	if s.Superpositions != 2 || s.Entanglements != 1 || s.Qubits != 20 || s.CircuitDepth != 4 || s.GateCount != 28 {
		t.Fatalf("unexpected summary %+v", s)
	}
}
