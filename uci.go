package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"quantum-chess/config"
	"quantum-chess/engine"
	"quantum-chess/qboard"
	"quantum-chess/rules"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	log.Logger = cfg.Logs.NewLogger(os.Stderr)
	newSession(cfg, os.Stdout, log.Logger).loop(os.Stdin)
}

// session is the state of one text-protocol conversation.
type session struct {
	cfg      config.Config
	out      io.Writer
	log      zerolog.Logger
	searcher *engine.Searcher

	board   qboard.Board
	toMove  qboard.Color
	ply     int
	history []string
}

func newSession(cfg config.Config, out io.Writer, logger zerolog.Logger) *session {
	s := &session{cfg: cfg, out: out, log: logger}
	s.resetSearcher()
	s.setBoard(qboard.StartPosition(), qboard.White)
	return s
}

func (s *session) resetSearcher() {
	s.searcher = engine.NewSearcher(s.cfg.Engine.SearcherOptions(s.log, rules.Oracle{}))
}

func (s *session) setBoard(b qboard.Board, toMove qboard.Color) {
	s.board, s.toMove, s.ply, s.history = b, toMove, 0, nil
}

func (s *session) println(a ...any) { fmt.Fprintln(s.out, a...) }

func (s *session) info(format string, a ...any) {
	fmt.Fprintf(s.out, "info string "+format+"\n", a...)
}

// loop reads commands until quit or end of input.
func (s *session) loop(in io.Reader) {
	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		line := scanner.Text()
		tokens := strings.Fields(line)
		if len(tokens) == 0 { // ignore blank lines
			continue
		}
		if !s.handle(tokens) {
			return
		}
	}
}

// handle runs one command and reports whether the loop should continue.
func (s *session) handle(tokens []string) bool {
	switch strings.ToLower(tokens[0]) {
	case "uci":
		s.println("id name QuantumChess 0.1")
		s.println("id author quantum-chess")
		s.println("option name QuantumProbability type string default", s.cfg.Engine.QuantumProbability)
		s.println("option name Seed type string default", s.cfg.Engine.Seed)
		s.println("option name Threads type spin default", s.cfg.Engine.Threads, "min 1 max 64")
		s.println("option name Branching type combo default", s.cfg.Engine.Branching, "var sampled var expected")
		s.println("uciok")
	case "isready":
		s.println("readyok")
	case "ucinewgame":
		s.setBoard(qboard.StartPosition(), qboard.White)
		s.searcher.ResetForNewGame()
	case "quit":
		return false
	case "position":
		s.position(tokens[1:])
	case "go":
		s.goCommand(tokens[1:])
	case "measure":
		s.measure()
	case "eval":
		e := engine.EvaluateDetailed(s.board, engine.Annotate(s.board))
		s.info("material %.2f positional %.2f uncertainty %.2f total %.2f", e.Material, e.Positional, e.Uncertainty, e.Total())
	case "d":
		s.display()
	case "summary":
		sum := s.board.Summarize()
		s.info("superpositions %d squares %d entanglements %d qubits %d depth %d gates %d",
			sum.Superpositions, sum.SuperposedSquares, sum.Entanglements, sum.Qubits, sum.CircuitDepth, sum.GateCount)
	case "status":
		s.info("%v", rules.GameStatus(s.board, s.toMove))
	case "save":
		if len(tokens) < 2 {
			s.info("Malformed save command")
			break
		}
		if err := s.save(tokens[1]); err != nil {
			s.info("save failed: %v", err)
		}
	case "load":
		if len(tokens) < 2 {
			s.info("Malformed load command")
			break
		}
		if err := s.load(tokens[1], tokens[2:]); err != nil {
			s.info("load failed: %v", err)
		}
	case "setoption":
		s.setOption(tokens[1:])
	default:
		s.info("Unknown command: %s", strings.Join(tokens, " "))
	}
	return true
}

func (s *session) position(args []string) {
	if len(args) == 0 {
		s.info("Malformed position command")
		return
	}
	rest := args[1:]
	switch strings.ToLower(args[0]) {
	case "startpos":
		s.setBoard(qboard.StartPosition(), qboard.White)
	case "fen":
		n := 0
		for n < len(rest) && strings.ToLower(rest[n]) != "moves" {
			n++
		}
		b, side, err := qboard.ParseFEN(strings.Join(rest[:n], " "))
		if err != nil {
			s.info("Invalid fen position: %v", err)
			return
		}
		s.setBoard(b, side)
		rest = rest[n:]
	default:
		s.info("Invalid position subcommand")
		return
	}
	if len(rest) == 0 || strings.ToLower(rest[0]) != "moves" {
		return
	}
	for _, str := range rest[1:] {
		if err := s.play(strings.ToLower(str)); err != nil {
			s.info("Move %s rejected: %v", str, err)
			return
		}
	}
}

// play applies one move through the branch generator.
func (s *session) play(str string) error {
	m, err := qboard.ParseMove(str)
	if err != nil {
		return err
	}
	if err := rules.CheckLegal(s.board, s.toMove, m); err != nil {
		return err
	}
	san := rules.SAN(s.board, s.toMove, m)
	seed := qboard.Mix(s.cfg.Engine.Seed ^ uint64(s.ply+1))
	branches, err := engine.ApplyMove(s.board, m, s.toMove, s.cfg.Engine.QuantumProbability, seed)
	if err != nil {
		return err
	}
	br := branches[0]
	s.log.Debug().Str("move", str).Stringer("label", br.Label).Int("ply", s.ply).Msg("move applied")
	if br.Label != engine.Deterministic {
		s.info("%s: %v", str, br.Label)
	}
	s.board, s.toMove = br.Board, s.toMove.Opposite()
	s.ply++
	s.history = append(s.history, san)
	return nil
}

func (s *session) goCommand(args []string) {
	depth := s.cfg.Engine.Depth
	var wClock, bClock engine.Clock
	moveTime := s.cfg.Engine.MoveTime
	for i := 0; i < len(args); i++ {
		name := strings.ToLower(args[i])
		if name == "infinite" {
			continue
		}
		if i+1 >= len(args) {
			s.info("Malformed go command option %s", name)
			return
		}
		i++
		n, err := strconv.Atoi(args[i])
		if err != nil {
			s.info("Malformed go command option; could not convert %s", name)
			return
		}
		ms := time.Duration(n) * time.Millisecond
		switch name {
		case "depth":
			depth = n
		case "movetime":
			moveTime = ms
		case "wtime":
			wClock.Remaining = ms
		case "btime":
			bClock.Remaining = ms
		case "winc":
			wClock.Increment = ms
		case "binc":
			bClock.Increment = ms
		default:
			s.info("Unknown go subcommand %s", name)
		}
	}

	clock := wClock
	if s.toMove == qboard.Black {
		clock = bClock
	}
	clock.MoveTime = moveTime
	deadline := engine.DeadlineFor(s.board, clock)

	res := s.searcher.Search(s.board, s.toMove, depth, deadline)
	pv := make([]string, len(res.PV))
	for i, m := range res.PV {
		pv[i] = m.String()
	}
	fmt.Fprintf(s.out, "info depth %d score %.3f nodes %d time %d pv %s\n",
		res.Depth, res.ExpectedScore, res.Nodes, res.Elapsed.Milliseconds(), strings.Join(pv, " "))
	if res.TimedOut {
		s.info("deadline reached")
	}
	if res.Move.IsNull() {
		s.info("no move: %v", rules.GameStatus(s.board, s.toMove))
	}
	s.println("bestmove", res.Move)
}

func (s *session) measure() {
	seed := qboard.Mix(s.cfg.Engine.Seed ^ s.board.Hash())
	b, report := engine.MeasureWithReport(s.board, engine.NewRand(seed))
	for _, c := range report.Collapses {
		s.info("group %d %v collapsed to %v", c.Group, c.Piece, c.Square)
	}
	for _, id := range report.ConfirmedGroups() {
		s.info("group %d confirmed %d capture(s)", id, len(report.Confirmed[id]))
	}
	s.board = b
}

func (s *session) display() {
	fmt.Fprint(s.out, s.board.String())
	if fen, err := s.board.FEN(s.toMove); err == nil {
		s.println("Fen:", fen)
	}
	s.println("To move:", s.toMove)
	for _, g := range s.board.Groups() {
		parts := make([]string, len(g.Hypotheses))
		for i, h := range g.Hypotheses {
			parts[i] = fmt.Sprintf("%v=%.3f", h.Square, h.Probability)
		}
		partner := ""
		if p, ok := s.board.Partner(g.ID); ok {
			partner = fmt.Sprintf(" linked %d", p)
		}
		s.println(fmt.Sprintf("Group %d %v: %s%s", g.ID, g.Piece, strings.Join(parts, " "), partner))
	}
	if len(s.history) > 0 {
		s.println("Moves:", strings.Join(s.history, " "))
	}
}

func (s *session) save(path string) error {
	data, err := json.MarshalIndent(s.board, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// load reads a saved board; an optional trailing "w" or "b" sets the side
// to move.
func (s *session) load(path string, args []string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	var b qboard.Board
	if err := json.Unmarshal(data, &b); err != nil {
		return err
	}
	side := qboard.White
	if len(args) > 0 {
		if side, err = qboard.ParseColor(args[0]); err != nil {
			return err
		}
	}
	s.setBoard(b, side)
	return nil
}

// setOption handles "setoption name <id> value <x>".
func (s *session) setOption(args []string) {
	if len(args) < 4 || strings.ToLower(args[0]) != "name" || strings.ToLower(args[2]) != "value" {
		s.info("Malformed setoption command")
		return
	}
	name, value := strings.ToLower(args[1]), args[3]
	switch name {
	case "quantumprobability":
		p, err := strconv.ParseFloat(value, 64)
		if err != nil || p < 0 || p > 1 {
			s.info("QuantumProbability must be in [0, 1]")
			return
		}
		s.cfg.Engine.QuantumProbability = p
		s.searcher.SetQuantumProbability(p)
	case "seed":
		seed, err := strconv.ParseUint(value, 0, 64)
		if err != nil {
			s.info("Seed must be an unsigned integer")
			return
		}
		s.cfg.Engine.Seed = seed
		s.searcher.SetSeed(seed)
	case "threads":
		n, err := strconv.Atoi(value)
		if err != nil || n < 1 {
			s.info("Threads must be positive")
			return
		}
		s.cfg.Engine.Threads = n
		s.resetSearcher()
	case "branching":
		b, err := engine.ParseBranching(value)
		if err != nil {
			s.info("%v", err)
			return
		}
		s.cfg.Engine.Branching = b
		s.resetSearcher()
	default:
		s.info("Unknown option %s", args[1])
	}
}
