package qboard

import "testing"

func play(b Board, m Move) Board {
	return b.CloneWithChange(func(e *Editor) {
		e.Move(m.From, m.To)
		if m.Promotion != NoKind {
			p, _ := e.PieceAt(m.To)
			e.Put(m.To, Piece{Kind: m.Promotion, Color: p.Color})
		}
	})
}

func perft(b Board, c Color, depth int) uint64 {
	if depth == 0 {
		return 1
	}
	var nodes uint64
	for _, m := range b.PseudoMoves(c) {
		nodes += perft(play(b, m), c.Opposite(), depth-1)
	}
	return nodes
}

func TestPseudoMovesInitial(t *testing.T) {
	b := StartPosition()
	if n := len(b.PseudoMoves(White)); n != 20 {
		t.Fatalf("initial position: expected 20 moves, got %d", n)
	}
	if n := perft(b, White, 2); n != 400 {
		t.Fatalf("perft(2): expected 400, got %d", n)
	}
	if n := perft(b, White, 3); n != 8902 {
		t.Fatalf("perft(3): expected 8902, got %d", n)
	}
}

func TestDestinationsRespectHypotheses(t *testing.T) {
	b, _, err := ParseFEN("4k3/8/8/8/8/8/8/R3K3 w - - 0 1")
	if err != nil {
		t.Fatal(err)
	}
	b = b.CloneWithChange(func(e *Editor) {
		e.Superpose(Piece{Kind: Knight, Color: Black}, []Hypothesis{{Square: 24, Probability: 0.5}, {Square: 42, Probability: 0.5}})
	})
	// The rook on a1 slides up the a-file and stops on the black hypothesis on a4.
	var upFile []Square
	for _, d := range b.Destinations(0) {
		if d.File() == 0 {
			upFile = append(upFile, d)
		}
	}
	if len(upFile) != 3 || upFile[2] != 24 {
		t.Fatalf("expected a2,a3,a4 on the a-file, got %v", upFile)
	}
}

func TestPromotionGeneration(t *testing.T) {
	b, _, err := ParseFEN("4k3/P7/8/8/8/8/8/4K3 w - - 0 1")
	if err != nil {
		t.Fatal(err)
	}
	count := func(moves []Move) int {
		n := 0
		for _, m := range moves {
			if m.Promotion != NoKind {
				n++
			}
		}
		return n
	}
	if n := count(b.PseudoMoves(White)); n != 1 {
		t.Fatalf("expected one queen promotion, got %d", n)
	}
	if n := count(b.PseudoMovesAllPromotions(White)); n != 4 {
		t.Fatalf("expected four promotions, got %d", n)
	}
}

func TestParseMove(t *testing.T) {
	for _, s := range []string{"e2e4", "a7a8q", "h2h1n"} {
		m, err := ParseMove(s)
		if err != nil {
			t.Fatalf("ParseMove(%q): %v", s, err)
		}
		if m.String() != s {
			t.Fatalf("ParseMove(%q).String() = %q", s, m.String())
		}
	}
	for _, s := range []string{"", "e2", "e2e9", "e7e8k", "i1a1"} {
		if _, err := ParseMove(s); err == nil {
			t.Errorf("ParseMove(%q) should fail", s)
		}
	}
}
