package main

import (
	"flag"
	"os"
	"runtime"
	"runtime/pprof"
	"time"

	"github.com/rs/zerolog/log"

	"quantum-chess/config"
	"quantum-chess/engine"
	"quantum-chess/qboard"
	"quantum-chess/rules"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("load configuration")
	}
	log.Logger = cfg.Logs.NewLogger(os.Stderr)

	// --- Flags ---
	depthFlag := flag.Int("depth", cfg.Engine.Depth, "search depth in plies")
	repeatFlag := flag.Int("repeat", 1, "number of searches to run")
	fenFlag := flag.String("fen", "", "FEN to search (empty = startpos)")
	probFlag := flag.Float64("p", cfg.Engine.QuantumProbability, "quantum probability")
	threadsFlag := flag.Int("threads", cfg.Engine.Threads, "root search workers")
	branchingFlag := flag.String("branching", cfg.Engine.Branching.String(), "sampled or expected")
	legalFlag := flag.Bool("legal", true, "use dragontoothmg legal moves on classical boards")
	cpuProfile := flag.String("cpuprofile", "", "write CPU profile to file")
	memProfile := flag.String("memprofile", "", "write memory profile (heap) to file")
	flag.Parse()

	if *depthFlag <= 0 {
		log.Fatal().Int("depth", *depthFlag).Msg("depth must be positive")
	}
	branching, err := engine.ParseBranching(*branchingFlag)
	if err != nil {
		log.Fatal().Err(err).Msg("bad branching flag")
	}

	// --- Optional CPU profiling setup ---
	if *cpuProfile != "" {
		cpuFile, err := os.Create(*cpuProfile)
		if err != nil {
			log.Fatal().Err(err).Msg("could not create CPU profile")
		}
		if err := pprof.StartCPUProfile(cpuFile); err != nil {
			log.Fatal().Err(err).Msg("could not start CPU profile")
		}
		defer func() {
			pprof.StopCPUProfile()
			cpuFile.Close()
		}()
	}

	fen := qboard.FENStartPos
	if *fenFlag != "" {
		fen = *fenFlag
	}
	board, side, err := qboard.ParseFEN(fen)
	if err != nil {
		log.Fatal().Err(err).Msg("bad FEN")
	}

	ecfg := cfg.Engine
	ecfg.QuantumProbability, ecfg.Threads, ecfg.Branching = *probFlag, *threadsFlag, branching
	var moves engine.MoveProvider = engine.GeometryProvider{}
	if *legalFlag {
		moves = rules.Oracle{}
	}

	log.Info().Str("fen", fen).Int("depth", *depthFlag).Int("repeat", *repeatFlag).Msg("searchbench")
	startAll := time.Now()
	for i := 0; i < *repeatFlag; i++ {
		// Fresh searcher for each run; the seed moves on so runs differ.
		opts := ecfg.SearcherOptions(log.Logger, moves)
		opts.Seed += uint64(i)
		s := engine.NewSearcher(opts)

		res := s.Search(board, side, *depthFlag, time.Time{})
		log.Info().
			Int("iteration", i+1).
			Stringer("bestmove", res.Move).
			Float64("score", res.ExpectedScore).
			Uint64("nodes", res.Nodes).
			Dur("time", res.Elapsed).
			Msg("search done")
	}
	log.Info().Dur("total", time.Since(startAll)).Msg("all searches done")

	// --- Optional heap profile at the end ---
	if *memProfile != "" {
		f, err := os.Create(*memProfile)
		if err != nil {
			log.Fatal().Err(err).Msg("could not create memory profile")
		}
		defer f.Close()

		runtime.GC() // get up-to-date heap info
		if err := pprof.WriteHeapProfile(f); err != nil {
			log.Fatal().Err(err).Msg("could not write memory profile")
		}
	}
}
