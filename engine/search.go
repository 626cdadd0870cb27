package engine

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"quantum-chess/qboard"
)

// =============================================================================
// SCORE CONSTANTS
// =============================================================================
const (
	// Mate is the base magnitude of a lost position. The remaining depth is
	// added so that faster wins score higher.
	Mate      = 1000.0
	DrawScore = 0.0
)

var errSearchAborted = errors.New("search aborted")

// Branching selects how a move's outcomes enter the search.
type Branching uint8

const (
	// BranchSampled follows the single outcome ApplyMove draws.
	BranchSampled Branching = iota
	// BranchExpected averages over every outcome ExpandMove lists.
	BranchExpected
)

func (b Branching) String() string {
	if b == BranchExpected {
		return "expected"
	}
	return "sampled"
}

// ParseBranching accepts "sampled" or "expected".
func ParseBranching(s string) (Branching, error) {
	switch strings.ToLower(s) {
	case "", "sampled":
		return BranchSampled, nil
	case "expected":
		return BranchExpected, nil
	}
	return BranchSampled, fmt.Errorf("unknown branching mode %q", s)
}

// Options configures a Searcher. The zero value searches single threaded
// with geometry moves, sampled branching and no logging.
type Options struct {
	QuantumProbability float64
	Seed               uint64
	Threads            int
	Branching          Branching
	Generator          Generator
	Moves              MoveProvider
	TTSizeMB           int
	Logger             zerolog.Logger
}

// SearchResult is the outcome of one search. Move is NullMove when the side
// to move has no candidate moves or the requested depth is zero.
type SearchResult struct {
	Move          qboard.Move
	ExpectedScore float64
	Depth         int
	Nodes         uint64
	TimedOut      bool
	PV            []qboard.Move
	Elapsed       time.Duration
}

// PVLine is the principal variation below a node.
type PVLine struct {
	Moves []qboard.Move
}

// Clear empties the line.
func (pv *PVLine) Clear() { pv.Moves = pv.Moves[:0] }

// Update sets the line to m followed by child.
func (pv *PVLine) Update(m qboard.Move, child PVLine) {
	pv.Clear()
	pv.Moves = append(pv.Moves, m)
	pv.Moves = append(pv.Moves, child.Moves...)
}

// Clone copies the line.
func (pv PVLine) Clone() PVLine {
	return PVLine{Moves: append([]qboard.Move(nil), pv.Moves...)}
}

// GetPVMove returns the first move of the line, or NullMove.
func (pv PVLine) GetPVMove() qboard.Move {
	if len(pv.Moves) == 0 {
		return qboard.NullMove
	}
	return pv.Moves[0]
}

func (pv PVLine) String() string {
	parts := make([]string, len(pv.Moves))
	for i, m := range pv.Moves {
		parts[i] = m.String()
	}
	return strings.Join(parts, " ")
}

// Searcher runs expectiminimax searches. Its transposition table survives
// between searches until ResetForNewGame.
type Searcher struct {
	opts  Options
	tt    *TransTable
	log   zerolog.Logger
	stats CutStatistics
}

// NewSearcher applies defaults to opts and allocates the table.
func NewSearcher(opts Options) *Searcher {
	if opts.Threads < 1 {
		opts.Threads = 1
	}
	if opts.Moves == nil {
		opts.Moves = GeometryProvider{}
	}
	opts.Generator = opts.Generator.normalized()
	opts.QuantumProbability = Clamp(opts.QuantumProbability, 0, 1)
	return &Searcher{opts: opts, tt: NewTransTable(opts.TTSizeMB), log: opts.Logger}
}

// Options returns the effective options.
func (s *Searcher) Options() Options { return s.opts }

// SetQuantumProbability changes p for later searches.
func (s *Searcher) SetQuantumProbability(p float64) {
	s.opts.QuantumProbability = Clamp(p, 0, 1)
}

// SetSeed changes the root seed for later searches.
func (s *Searcher) SetSeed(seed uint64) { s.opts.Seed = seed }

// ResetForNewGame clears the transposition table.
func (s *Searcher) ResetForNewGame() {
	s.tt.Clear()
	s.stats = CutStatistics{}
}

// Stats returns the counters of the last search.
func (s *Searcher) Stats() CutStatistics { return s.stats }

// FindBestMove searches b for color to the given depth with a fresh
// Searcher. A zero deadline means no time limit.
func FindBestMove(b qboard.Board, color qboard.Color, depth int, deadline time.Time, p float64, seed uint64) SearchResult {
	return NewSearcher(Options{QuantumProbability: p, Seed: seed}).Search(b, color, depth, deadline)
}

// Search runs iterative deepening up to depth. On a deadline the result of
// the last completed iteration is returned with TimedOut set; if the first
// iteration did not finish, the best root move found so far is used.
// At depth 0 the score is Evaluate(Measure(b, seed), Annotate(b)) with the
// searcher's seed.
func (s *Searcher) Search(b qboard.Board, color qboard.Color, depth int, deadline time.Time) SearchResult {
	clock := newTimeHandler(deadline)
	salt := s.salt()
	s.stats = CutStatistics{}
	defer func() { s.stats.dump(s.log) }()

	res := SearchResult{Move: qboard.NullMove}
	w := s.newWorker(clock, salt)
	if score, ok := w.terminal(b, color, depth); ok {
		res.ExpectedScore, res.Nodes = score, 1
		return res
	}
	if depth <= 0 {
		res.ExpectedScore, res.Nodes = Evaluate(Measure(b, s.opts.Seed), Annotate(b)), 1
		return res
	}
	moves, check := s.opts.Moves.Moves(b, color)
	if len(moves) == 0 {
		res.ExpectedScore, res.Nodes = w.noMoves(color, check, depth), 1
		return res
	}

	prev := qboard.NullMove
	completed := false
	for d := 1; d <= depth; d++ {
		ordered := append([]qboard.Move(nil), moves...)
		orderMoves(b, ordered, prev)

		var it rootIteration
		if s.opts.Threads > 1 {
			it = s.rootParallel(b, color, d, ordered, clock, salt)
		} else {
			it = s.rootSequential(b, color, d, ordered, clock, salt)
		}
		res.Nodes += it.stats.Nodes
		s.stats.add(it.stats)

		if it.aborted {
			res.TimedOut = true
			if !completed {
				if it.found {
					res.Move, res.ExpectedScore, res.PV = it.move, it.score, it.pv.Moves
				} else {
					res.Move, res.ExpectedScore, res.PV = ordered[0], w.leaf(b, color), []qboard.Move{ordered[0]}
				}
			}
			s.log.Info().Int("depth", d).Dur("elapsed", clock.Elapsed()).Msg("search deadline reached")
			break
		}
		if !it.found {
			// every candidate was rejected by the generator
			res.ExpectedScore = w.noMoves(color, check, depth)
			break
		}

		completed = true
		prev = it.move
		res.Move, res.ExpectedScore, res.Depth, res.PV = it.move, it.score, d, it.pv.Moves
		s.log.Info().
			Int("depth", d).
			Float64("score", it.score).
			Uint64("nodes", res.Nodes).
			Dur("elapsed", clock.Elapsed()).
			Str("pv", it.pv.String()).
			Msg("iteration complete")
	}
	res.Elapsed = clock.Elapsed()
	return res
}

// salt mixes every option that changes node values into hashes and seeds.
func (s *Searcher) salt() uint64 {
	return deriveSeed(
		s.opts.Seed,
		math.Float64bits(s.opts.QuantumProbability),
		uint64(s.opts.Branching),
		math.Float64bits(s.opts.Generator.DestinationWeight),
		math.Float64bits(s.opts.Generator.NeighbourWeight),
	)
}

type rootIteration struct {
	move    qboard.Move
	score   float64
	pv      PVLine
	found   bool
	aborted bool
	stats   CutStatistics
}

// better reports whether score improves on best for color.
func better(color qboard.Color, score, best float64) bool {
	if color == qboard.White {
		return score > best
	}
	return score < best
}

func worst(color qboard.Color) float64 {
	if color == qboard.White {
		return math.Inf(-1)
	}
	return math.Inf(1)
}

func (s *Searcher) rootSequential(b qboard.Board, color qboard.Color, depth int, moves []qboard.Move, clock *TimeHandler, salt uint64) rootIteration {
	w := s.newWorker(clock, salt)
	it := rootIteration{score: worst(color)}
	alpha, beta := math.Inf(-1), math.Inf(1)
	for _, m := range moves {
		var line PVLine
		score, ok := w.moveValue(b, m, color, depth, alpha, beta, &line)
		if w.aborted {
			it.aborted = true
			break
		}
		if !ok {
			continue
		}
		if !it.found || better(color, score, it.score) {
			it.move, it.score, it.found = m, score, true
			it.pv.Update(m, line)
		}
		if color == qboard.White {
			alpha = Max(alpha, it.score)
		} else {
			beta = Min(beta, it.score)
		}
	}
	it.stats = w.stats
	return it
}

type rootMoveResult struct {
	score   float64
	pv      PVLine
	ok      bool
	aborted bool
	stats   CutStatistics
}

// rootParallel searches every root move with a full window on its own
// worker and combines the results in move order.
func (s *Searcher) rootParallel(b qboard.Board, color qboard.Color, depth int, moves []qboard.Move, clock *TimeHandler, salt uint64) rootIteration {
	results := make([]rootMoveResult, len(moves))
	g := errgroup.Group{}
	g.SetLimit(s.opts.Threads)
	for i, m := range moves {
		i, m := i, m
		g.Go(func() error {
			w := s.newWorker(clock, salt)
			var line PVLine
			score, ok := w.moveValue(b, m, color, depth, math.Inf(-1), math.Inf(1), &line)
			results[i] = rootMoveResult{score: score, pv: line, ok: ok, aborted: w.aborted, stats: w.stats}
			if w.aborted {
				return errSearchAborted
			}
			return nil
		})
	}
	err := g.Wait()

	it := rootIteration{score: worst(color), aborted: errors.Is(err, errSearchAborted)}
	for i, r := range results {
		it.stats.add(r.stats)
		if r.aborted || !r.ok {
			continue
		}
		if !it.found || better(color, r.score, it.score) {
			it.move, it.score, it.found = moves[i], r.score, true
			it.pv.Update(moves[i], r.pv)
		}
	}
	return it
}

// worker holds the per-goroutine state of a search.
type worker struct {
	s       *Searcher
	clock   *TimeHandler
	salt    uint64
	stats   CutStatistics
	aborted bool
}

func (s *Searcher) newWorker(clock *TimeHandler, salt uint64) *worker {
	return &worker{s: s, clock: clock, salt: salt}
}

func lossFor(c qboard.Color, depth int) float64 {
	score := Mate + float64(Max(depth, 0))
	if c == qboard.White {
		return -score
	}
	return score
}

// terminal scores positions where a king has been captured.
func (w *worker) terminal(b qboard.Board, side qboard.Color, depth int) (float64, bool) {
	if _, ok := b.KingSquare(side); !ok {
		return lossFor(side, depth), true
	}
	if _, ok := b.KingSquare(side.Opposite()); !ok {
		return lossFor(side.Opposite(), depth), true
	}
	return 0, false
}

func (w *worker) noMoves(side qboard.Color, check CheckStatus, depth int) float64 {
	w.stats.Terminals++
	if check == NotInCheck {
		return DrawScore
	}
	return lossFor(side, depth)
}

// leaf measures b with a seed drawn from its hash and scores the result,
// crediting the pieces that were superposed before the measurement.
func (w *worker) leaf(b qboard.Board, side qboard.Color) float64 {
	w.stats.Leaves++
	annotations := Annotate(b)
	if !b.IsDefinite() {
		b = Measure(b, deriveSeed(w.salt, b.Hash(), uint64(side)))
	}
	return Evaluate(b, annotations)
}

func (w *worker) key(b qboard.Board, side qboard.Color) uint64 {
	h := b.Hash() ^ w.salt
	if side == qboard.Black {
		h ^= qboard.SideKey
	}
	return h
}

// branches expands m with a seed derived from the node, never from the
// order in which nodes are visited.
func (w *worker) branches(b qboard.Board, m qboard.Move, side qboard.Color, depth int) ([]Branch, error) {
	rng := NewRand(deriveSeed(w.salt, b.Hash(), uint64(side), uint64(depth), moveKey(m)))
	opts := w.s.opts
	if opts.Branching == BranchExpected {
		return opts.Generator.Expand(b, m, side, opts.QuantumProbability, rng)
	}
	return opts.Generator.Apply(b, m, side, opts.QuantumProbability, rng)
}

// moveValue is the value of playing m: the child value for a single
// branch, otherwise the probability-weighted mean of full-window children.
// ok is false when the generator rejects the move.
func (w *worker) moveValue(b qboard.Board, m qboard.Move, side qboard.Color, depth int, alpha, beta float64, line *PVLine) (float64, bool) {
	line.Clear()
	branches, err := w.branches(b, m, side, depth)
	if err != nil {
		return 0, false
	}
	if len(branches) == 1 {
		return w.alphabeta(branches[0].Board, side.Opposite(), depth-1, alpha, beta, line), true
	}
	w.stats.ChanceNodes++
	var ev float64
	for _, br := range branches {
		var child PVLine
		v := w.alphabeta(br.Board, side.Opposite(), depth-1, math.Inf(-1), math.Inf(1), &child)
		if w.aborted {
			return 0, true
		}
		ev += br.Probability * v
	}
	return ev, true
}

func (w *worker) alphabeta(b qboard.Board, side qboard.Color, depth int, alpha, beta float64, pvLine *PVLine) float64 {
	w.stats.Nodes++
	pvLine.Clear()
	if score, ok := w.terminal(b, side, depth); ok {
		w.stats.Terminals++
		return score
	}
	if depth <= 0 {
		return w.leaf(b, side)
	}
	if w.clock.Expired() {
		w.aborted = true
		w.stats.DeadlineAborts++
		return 0
	}

	key := w.key(b, side)
	ttScore, usable, ttMove := w.s.tt.probe(key, int8(depth), alpha, beta)
	if usable {
		w.stats.TTCutoffs++
		return ttScore
	}

	moves, check := w.s.opts.Moves.Moves(b, side)
	orderMoves(b, moves, ttMove)

	alphaOrig, betaOrig := alpha, beta
	best := worst(side)
	bestMove := qboard.NullMove
	var childPVLine PVLine
	for _, m := range moves {
		score, ok := w.moveValue(b, m, side, depth, alpha, beta, &childPVLine)
		if w.aborted {
			return 0
		}
		if !ok {
			continue
		}
		if bestMove.IsNull() || better(side, score, best) {
			best, bestMove = score, m
			pvLine.Update(m, childPVLine)
		}
		if side == qboard.White {
			alpha = Max(alpha, best)
		} else {
			beta = Min(beta, best)
		}
		if alpha >= beta {
			w.stats.BetaCutoffs++
			break
		}
	}
	if bestMove.IsNull() {
		return w.noMoves(side, check, depth)
	}

	flag := int8(ExactFlag)
	if best <= alphaOrig {
		flag = AlphaFlag
	} else if best >= betaOrig {
		flag = BetaFlag
	}
	w.s.tt.store(key, int8(depth), bestMove, best, flag)
	return best
}
