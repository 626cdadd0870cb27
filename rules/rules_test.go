package rules

import (
	"errors"
	"testing"
	"time"

	"quantum-chess/engine"
	"quantum-chess/qboard"
)

func boardFromFEN(t *testing.T, fen string) (qboard.Board, qboard.Color) {
	t.Helper()
	b, side, err := qboard.ParseFEN(fen)
	if err != nil {
		t.Fatalf("parse FEN: %v", err)
	}
	return b, side
}

func move(t *testing.T, s string) qboard.Move {
	t.Helper()
	m, err := qboard.ParseMove(s)
	if err != nil {
		t.Fatalf("parse move: %v", err)
	}
	return m
}

func TestOracleStartPosition(t *testing.T) {
	moves, check := Oracle{}.Moves(qboard.StartPosition(), qboard.White)
	if len(moves) != 20 {
		t.Fatalf("expected 20 legal moves, got %d", len(moves))
	}
	if check != engine.NotInCheck {
		t.Fatalf("expected not in check, got %v", check)
	}
}

func TestOracleFallsBackForSuperposedBoards(t *testing.T) {
	b := qboard.StartPosition().CloneWithChange(func(e *qboard.Editor) {
		p := e.Remove(qboard.Square(1))
		e.Superpose(p, []qboard.Hypothesis{{Square: qboard.Square(16), Probability: 0.5}, {Square: qboard.Square(18), Probability: 0.5}})
	})
	moves, check := Oracle{}.Moves(b, qboard.White)
	if check != engine.CheckUnknown {
		t.Fatalf("expected unknown check status")
	}
	if len(moves) != len(b.PseudoMoves(qboard.White)) {
		t.Fatalf("expected geometry moves")
	}
}

func TestOracleOffersKingCapture(t *testing.T) {
	b, side := boardFromFEN(t, "k7/8/8/8/8/8/8/R3K3 w - - 0 1")
	moves, _ := Oracle{}.Moves(b, side)
	if len(moves) != 1 || moves[0] != move(t, "a1a8") {
		t.Fatalf("expected only the king capture, got %v", moves)
	}
}

func TestStalemateAndMate(t *testing.T) {
	cases := []struct {
		fen    string
		status Status
		check  engine.CheckStatus
	}{
		{"7k/5Q2/6K1/8/8/8/8/8 b - - 0 1", Stalemate, engine.NotInCheck},
		{"7k/6Q1/6K1/8/8/8/8/8 b - - 0 1", Checkmate, engine.InCheck},
	}
	for _, tc := range cases {
		b, side := boardFromFEN(t, tc.fen)
		if got := GameStatus(b, side); got != tc.status {
			t.Fatalf("%s: expected %v, got %v", tc.fen, tc.status, got)
		}
		moves, check := Oracle{}.Moves(b, side)
		if len(moves) != 0 || check != tc.check {
			t.Fatalf("%s: expected no moves with %v, got %d moves and %v", tc.fen, tc.check, len(moves), check)
		}
	}
}

func TestSearchScoresStalemateAsDraw(t *testing.T) {
	b, side := boardFromFEN(t, "7k/5Q2/6K1/8/8/8/8/8 b - - 0 1")
	s := engine.NewSearcher(engine.Options{Moves: Oracle{}})
	res := s.Search(b, side, 2, time.Time{})
	if !res.Move.IsNull() || res.ExpectedScore != engine.DrawScore {
		t.Fatalf("expected a drawn terminal, got %+v", res)
	}
}

func TestSearchFindsMateInOne(t *testing.T) {
	b, side := boardFromFEN(t, "6k1/5ppp/8/8/8/8/8/R5K1 w - - 0 1")
	s := engine.NewSearcher(engine.Options{Moves: Oracle{}})
	res := s.Search(b, side, 2, time.Time{})
	if res.Move != move(t, "a1a8") {
		t.Fatalf("expected a1a8, got %v", res.Move)
	}
	if res.ExpectedScore < engine.Mate {
		t.Fatalf("expected a mate score, got %v", res.ExpectedScore)
	}
}

func TestPerftMatchesKnownCounts(t *testing.T) {
	want := []int64{1, 20, 400, 8902}
	for depth, n := range want {
		got, err := Perft(qboard.StartPosition(), qboard.White, depth)
		if err != nil {
			t.Fatalf("perft: %v", err)
		}
		if got != n {
			t.Fatalf("perft(%d): expected %d, got %d", depth, n, got)
		}
	}
}

func TestCheckLegal(t *testing.T) {
	b := qboard.StartPosition()
	if err := CheckLegal(b, qboard.White, move(t, "e2e4")); err != nil {
		t.Fatalf("e2e4 should be legal: %v", err)
	}
	if err := CheckLegal(b, qboard.White, move(t, "e2e5")); !errors.Is(err, ErrIllegalMove) {
		t.Fatalf("expected ErrIllegalMove, got %v", err)
	}
	kb, side := boardFromFEN(t, "k7/8/8/8/8/8/8/R3K3 w - - 0 1")
	if err := CheckLegal(kb, side, move(t, "a1a8")); err != nil {
		t.Fatalf("king capture a1a8 should be accepted: %v", err)
	}
	if err := CheckLegal(kb, side, move(t, "e1d1")); !errors.Is(err, ErrIllegalMove) {
		t.Fatalf("expected ErrIllegalMove while the king can be taken, got %v", err)
	}
	if _, err := LegalMoves(qboard.Empty(), qboard.White); !errors.Is(err, ErrNotClassical) {
		t.Fatalf("expected ErrNotClassical, got %v", err)
	}
}

func TestSAN(t *testing.T) {
	b := qboard.StartPosition()
	if got := SAN(b, qboard.White, move(t, "g1f3")); got != "Nf3" {
		t.Fatalf("expected Nf3, got %q", got)
	}
	if got := SAN(b, qboard.White, move(t, "e2e4")); got != "e4" {
		t.Fatalf("expected e4, got %q", got)
	}
}
