package bench

import (
	"testing"

	"quantum-chess/engine"
	"quantum-chess/qboard"
)

const (
	kiwipete = "r3k2r/p1ppqpb1/bn2pnp1/3PN3/1p2P3/2N2Q1p/PPPBBPPP/R3K2R w - - 0 1"
	pos6     = "r4rk1/1pp1qppp/p1np1n2/2b1p3/2B1P3/2NP1N2/PPP1QPPP/R4RK1 w - - 0 10"
)

func parse(b *testing.B, fen string) (qboard.Board, qboard.Color) {
	board, side, err := qboard.ParseFEN(fen)
	if err != nil {
		b.Fatalf("ParseFEN: %v", err)
	}
	return board, side
}

// quantumBoard superposes the queens and links them.
func quantumBoard(b *testing.B) (qboard.Board, qboard.Color) {
	board, side := parse(b, kiwipete)
	return board.CloneWithChange(func(e *qboard.Editor) {
		wq := e.Remove(qboard.Square(21)) // f3
		a := e.Superpose(wq, []qboard.Hypothesis{{Square: 21, Probability: 0.7}, {Square: 22, Probability: 0.3}})
		bq := e.Remove(qboard.Square(52)) // e7
		c := e.Superpose(bq, []qboard.Hypothesis{{Square: 52, Probability: 0.6}, {Square: 43, Probability: 0.4}})
		e.Link(a, c)
	}), side
}

func benchPseudoMoves(b *testing.B, board qboard.Board, side qboard.Color) {
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = board.PseudoMoves(side)
	}
}

func BenchmarkPseudoMoves_Initial(b *testing.B) {
	board, side := parse(b, qboard.FENStartPos)
	benchPseudoMoves(b, board, side)
}

func BenchmarkPseudoMoves_Kiwipete(b *testing.B) {
	board, side := parse(b, kiwipete)
	benchPseudoMoves(b, board, side)
}

func BenchmarkPseudoMoves_Pos6(b *testing.B) {
	board, side := parse(b, pos6)
	benchPseudoMoves(b, board, side)
}

func BenchmarkPseudoMoves_Superposed(b *testing.B) {
	board, side := quantumBoard(b)
	benchPseudoMoves(b, board, side)
}

func BenchmarkApplyMove_Quantum(b *testing.B) {
	board, side := quantumBoard(b)
	moves := board.PseudoMoves(side)
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		m := moves[i%len(moves)]
		if _, err := engine.ApplyMove(board, m, side, 1.0, uint64(i)); err != nil {
			b.Fatalf("apply %v: %v", m, err)
		}
	}
}

func BenchmarkMeasure(b *testing.B) {
	board, _ := quantumBoard(b)
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = engine.Measure(board, uint64(i))
	}
}

func BenchmarkHash(b *testing.B) {
	board, _ := quantumBoard(b)
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = board.Hash()
	}
}
