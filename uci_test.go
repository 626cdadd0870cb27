package main

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"quantum-chess/config"
	"quantum-chess/qboard"
)

func run(t *testing.T, cfg config.Config, input string) (*session, string) {
	t.Helper()
	var out bytes.Buffer
	s := newSession(cfg, &out, zerolog.Nop())
	s.loop(strings.NewReader(input))
	return s, out.String()
}

func TestHandshakeAndSearch(t *testing.T) {
	cfg := config.Default()
	cfg.Engine.Depth = 1
	_, out := run(t, cfg, "uci\nisready\nposition startpos moves e2e4 e7e5\ngo depth 2\nquit\n")
	for _, want := range []string{"uciok", "readyok", "info depth 2", "bestmove "} {
		if !strings.Contains(out, want) {
			t.Fatalf("missing %q in output:\n%s", want, out)
		}
	}
}

func TestPositionRejectsIllegalMove(t *testing.T) {
	s, out := run(t, config.Default(), "position startpos moves e2e5\n")
	if !strings.Contains(out, "rejected") {
		t.Fatalf("expected a rejection, got %q", out)
	}
	if s.ply != 0 || s.toMove != qboard.White {
		t.Fatalf("board should not advance")
	}
}

func TestPositionFenAndDisplay(t *testing.T) {
	cfg := config.Default()
	cfg.Engine.QuantumProbability = 0
	s, out := run(t, cfg, "position fen 4k3/8/8/8/8/8/8/4K2R w - - 0 1 moves h1h8\nd\n")
	if s.toMove != qboard.Black {
		t.Fatalf("expected black to move")
	}
	if !strings.Contains(out, "Moves: Rh8+") {
		t.Fatalf("expected SAN history, got:\n%s", out)
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	cfg := config.Default()
	cfg.Engine.QuantumProbability = 1
	path := filepath.Join(t.TempDir(), "board.json")
	s, _ := run(t, cfg, "position startpos moves g1f3 b8c6 e2e4\nsave "+path+"\n")
	saved := s.board
	s.loop(strings.NewReader("ucinewgame\nload " + path + " b\n"))
	if !s.board.Equal(saved) || s.toMove != qboard.Black {
		t.Fatalf("loaded board differs from saved board")
	}
}

func TestMeasureAndOptions(t *testing.T) {
	cfg := config.Default()
	s, out := run(t, cfg, "setoption name QuantumProbability value 1\nsetoption name Seed value 7\nposition startpos moves g1f3 g8f6 b1c3\nmeasure\nsummary\nsetoption name Threads value 0\n")
	if s.cfg.Engine.QuantumProbability != 1 || s.cfg.Engine.Seed != 7 {
		t.Fatalf("options not applied: %+v", s.cfg.Engine)
	}
	if !s.board.IsDefinite() {
		t.Fatalf("measure should collapse the board")
	}
	if !strings.Contains(out, "superpositions 0") || !strings.Contains(out, "Threads must be positive") {
		t.Fatalf("unexpected output:\n%s", out)
	}
}
