package main

import (
	"flag"
	"fmt"
	"os"
	"runtime/pprof"
	"sort"
	"time"

	"quantum-chess/engine"
	"quantum-chess/qboard"
	"quantum-chess/rules"
)

// geometryPerft walks the piece-geometry move tree, playing moves through
// the deterministic branch of the generator.
func geometryPerft(b qboard.Board, side qboard.Color, depth int) uint64 {
	if depth == 0 {
		return 1
	}
	moves := b.PseudoMovesAllPromotions(side)
	if depth == 1 {
		return uint64(len(moves))
	}
	var nodes uint64
	for _, m := range moves {
		branches, err := engine.ApplyMove(b, m, side, 0, 0)
		if err != nil {
			continue
		}
		nodes += geometryPerft(branches[0].Board, side.Opposite(), depth-1)
	}
	return nodes
}

func divide(b qboard.Board, side qboard.Color, depth int) map[qboard.Move]uint64 {
	out := map[qboard.Move]uint64{}
	for _, m := range b.PseudoMovesAllPromotions(side) {
		branches, err := engine.ApplyMove(b, m, side, 0, 0)
		if err != nil {
			continue
		}
		out[m] = geometryPerft(branches[0].Board, side.Opposite(), depth-1)
	}
	return out
}

func main() {
	fen := flag.String("fen", qboard.FENStartPos, "FEN string (defaults to initial position)")
	depth := flag.Int("depth", 0, "Perft depth (required)")
	divideFlag := flag.Bool("divide", false, "Print per-move node counts at root")
	repeat := flag.Int("repeat", 1, "Repeat perft N times and report aggregate (for steadier timings)")
	label := flag.String("label", "", "Optional label prefix for one-line output")
	compare := flag.Bool("compare", false, "Also count legal moves with dragontoothmg")
	cpuProf := flag.String("cpuprofile", "", "Write CPU profile to file during run")
	flag.Parse()

	if *depth <= 0 {
		fmt.Fprintln(os.Stderr, "-depth must be > 0")
		os.Exit(2)
	}

	board, side, err := qboard.ParseFEN(*fen)
	if err != nil {
		fmt.Fprintf(os.Stderr, "ParseFEN error: %v\n", err)
		os.Exit(2)
	}

	if *divideFlag {
		div := divide(board, side, *depth)
		moves := make([]qboard.Move, 0, len(div))
		var sum uint64
		for m, n := range div {
			moves = append(moves, m)
			sum += n
		}
		sort.Slice(moves, func(i, j int) bool { return moves[i].String() < moves[j].String() })
		for _, m := range moves {
			fmt.Printf("%s: %d\n", m, div[m])
		}
		fmt.Printf("Total: %d\n", sum)
		return
	}

	if *cpuProf != "" {
		f, err := os.Create(*cpuProf)
		if err != nil {
			fmt.Fprintf(os.Stderr, "creating cpuprofile: %v\n", err)
			os.Exit(2)
		}
		if err := pprof.StartCPUProfile(f); err != nil {
			fmt.Fprintf(os.Stderr, "start cpu profile: %v\n", err)
			os.Exit(2)
		}
		defer func() {
			pprof.StopCPUProfile()
			_ = f.Close()
		}()
	}

	var totalNodes uint64
	start := time.Now()
	for i := 0; i < *repeat; i++ {
		totalNodes += geometryPerft(board, side, *depth)
	}
	elapsed := time.Since(start)
	nps := float64(totalNodes) / elapsed.Seconds()

	// Single line: Depth Nodes Time NPS
	fmt.Printf("%s \t%d \t\t%d \t\t%s \t%.0f\n", *label, *depth, totalNodes, elapsed, nps)

	if *compare {
		legal, err := rules.Perft(board, side, *depth)
		if err != nil {
			fmt.Fprintf(os.Stderr, "legal perft: %v\n", err)
			os.Exit(2)
		}
		geometry := totalNodes / uint64(*repeat)
		fmt.Printf("legal \t%d \t\t%d \tgeometry-legal %d\n", *depth, legal, int64(geometry)-legal)
	}
}
