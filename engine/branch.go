package engine

import (
	"fmt"

	"quantum-chess/qboard"
)

// Label names the outcome that produced a branch.
type Label uint8

const (
	Deterministic Label = iota
	SuperpositionCreated
	MeasurementTriggered
	EntanglementFormed
)

var labelNames = [...]string{"deterministic", "superposition_created", "measurement_triggered", "entanglement_formed"}

func (l Label) String() string {
	if int(l) < len(labelNames) {
		return labelNames[l]
	}
	return fmt.Sprintf("label(%d)", l)
}

// MarshalText renders the label in its wire form.
func (l Label) MarshalText() ([]byte, error) { return []byte(l.String()), nil }

// Branch is one possible result of a move with its probability.
type Branch struct {
	Board       qboard.Board
	Probability float64
	Label       Label
}

// Generator holds the weights used for quantum outcomes. DestinationWeight
// is the share of a new superposition kept on the target square;
// NeighbourWeight is the share a definite neighbour keeps on its own
// square when it is pulled into an entanglement. Weights are clamped to
// [MinWeight, MaxWeight]; the zero Generator means DefaultGenerator.
type Generator struct {
	DestinationWeight float64
	NeighbourWeight   float64
}

const (
	MinWeight = 0.5
	MaxWeight = 0.99
)

func (g Generator) normalized() Generator {
	if g == (Generator{}) {
		return DefaultGenerator
	}
	return Generator{
		DestinationWeight: Clamp(g.DestinationWeight, MinWeight, MaxWeight),
		NeighbourWeight:   Clamp(g.NeighbourWeight, MinWeight, MaxWeight),
	}
}

// DefaultGenerator is used by ApplyMove and ExpandMove.
var DefaultGenerator = Generator{DestinationWeight: 0.7, NeighbourWeight: 0.7}

// ApplyMove plays m for color and returns the single sampled branch. With
// probability p a quantum outcome is attempted; kings always move classically.
func ApplyMove(b qboard.Board, m qboard.Move, color qboard.Color, p float64, seed uint64) ([]Branch, error) {
	return DefaultGenerator.Apply(b, m, color, p, NewRand(seed))
}

// ExpandMove returns every outcome of m with its probability. Outcomes whose
// precondition fails are folded into the deterministic branch.
func ExpandMove(b qboard.Board, m qboard.Move, color qboard.Color, p float64, seed uint64) ([]Branch, error) {
	return DefaultGenerator.Expand(b, m, color, p, NewRand(seed))
}

// Apply is ApplyMove with explicit weights and random source.
func (g Generator) Apply(b qboard.Board, m qboard.Move, color qboard.Color, p float64, rng *Rand) ([]Branch, error) {
	g = g.normalized()
	mover, err := checkMove(b, m, color)
	if err != nil {
		return nil, err
	}
	m = normalizePromotion(m, mover)
	d := playDeterministic(b, m)
	det := []Branch{{Board: d, Probability: 1, Label: Deterministic}}

	if rng.Float64() >= p || mover.Kind == qboard.King {
		return det, nil
	}
	label := Label(1 + rng.Intn(3))
	if nb, ok := g.outcome(label, b, d, m, rng); ok {
		return []Branch{{Board: nb, Probability: 1, Label: label}}, nil
	}
	return det, nil
}

// Expand is ExpandMove with explicit weights and random source. The random
// source is only consumed by the measurement outcome.
func (g Generator) Expand(b qboard.Board, m qboard.Move, color qboard.Color, p float64, rng *Rand) ([]Branch, error) {
	g = g.normalized()
	mover, err := checkMove(b, m, color)
	if err != nil {
		return nil, err
	}
	m = normalizePromotion(m, mover)
	d := playDeterministic(b, m)
	p = Clamp(p, 0, 1)
	if p == 0 || mover.Kind == qboard.King {
		return []Branch{{Board: d, Probability: 1, Label: Deterministic}}, nil
	}

	detMass := 1 - p
	quantum := make([]Branch, 0, 3)
	for _, label := range [...]Label{SuperpositionCreated, MeasurementTriggered, EntanglementFormed} {
		if nb, ok := g.outcome(label, b, d, m, rng); ok {
			quantum = append(quantum, Branch{Board: nb, Probability: p / 3, Label: label})
		} else {
			detMass += p / 3
		}
	}
	out := make([]Branch, 0, 4)
	if detMass > qboard.ProbabilityTolerance {
		out = append(out, Branch{Board: d, Probability: detMass, Label: Deterministic})
	}
	return append(out, quantum...), nil
}

func (g Generator) outcome(label Label, b, d qboard.Board, m qboard.Move, rng *Rand) (qboard.Board, bool) {
	switch label {
	case SuperpositionCreated:
		return g.superpose(b, d, m)
	case MeasurementTriggered:
		return measureThenMove(b, m, rng)
	case EntanglementFormed:
		return g.entangle(b, d, m)
	}
	return qboard.Board{}, false
}

// checkMove validates m against b and returns the moving piece.
func checkMove(b qboard.Board, m qboard.Move, color qboard.Color) (qboard.Piece, error) {
	if !m.From.Valid() || !m.To.Valid() || m.From == m.To {
		return qboard.NoPiece, fmt.Errorf("%w: %v", ErrInvalidMove, m)
	}
	p, ok := b.PieceAt(m.From)
	if !ok || p.Color != color {
		return qboard.NoPiece, fmt.Errorf("%w: no %v piece on %v", ErrInvalidMove, color, m.From)
	}
	if c, occupied := b.Occupied(m.To); occupied && c == color {
		return qboard.NoPiece, fmt.Errorf("%w: %v holds a %v piece", ErrInvalidMove, m.To, color)
	}
	if m.Promotion != qboard.NoKind && (p.Kind != qboard.Pawn || !lastRank(m.To, color)) {
		return qboard.NoPiece, fmt.Errorf("%w: %v cannot promote", ErrInvalidMove, m)
	}
	if m.Promotion != qboard.NoKind && !promotable(m.Promotion) {
		return qboard.NoPiece, fmt.Errorf("%w: cannot promote to %d", ErrInvalidMove, m.Promotion)
	}
	return p, nil
}

func promotable(k qboard.PieceKind) bool {
	switch k {
	case qboard.Knight, qboard.Bishop, qboard.Rook, qboard.Queen:
		return true
	}
	return false
}

// normalizePromotion turns a pawn reaching the last rank into a queen when
// no promotion piece was named.
func normalizePromotion(m qboard.Move, mover qboard.Piece) qboard.Move {
	if mover.Kind == qboard.Pawn && m.Promotion == qboard.NoKind && lastRank(m.To, mover.Color) {
		m.Promotion = qboard.Queen
	}
	return m
}

func lastRank(sq qboard.Square, c qboard.Color) bool {
	if c == qboard.White {
		return sq.Rank() == 7
	}
	return sq.Rank() == 0
}

func playDeterministic(b qboard.Board, m qboard.Move) qboard.Board {
	return b.CloneWithChange(func(e *qboard.Editor) { play(e, m) })
}

// play moves the piece classically. A superposed mover is observed on its
// source square first; a hypothesis on the target is captured out of its
// group.
func play(e *qboard.Editor, m qboard.Move) {
	if id, ok := e.GroupAt(m.From); ok {
		e.Collapse(id, m.From)
	}
	if _, ok := e.GroupAt(m.To); ok {
		e.CaptureHypothesis(m.To)
	}
	e.Move(m.From, m.To)
	if m.Promotion != qboard.NoKind {
		p, _ := e.PieceAt(m.To)
		e.Put(m.To, qboard.Piece{Kind: m.Promotion, Color: p.Color})
	}
}

// alternative picks the second square of a new superposition: reachable by
// the mover from m.From on the pre-move board, empty after the move and
// nearest to m.To.
func alternative(b, d qboard.Board, m qboard.Move, exclude qboard.Square) qboard.Square {
	return nearestEmpty(d, b.Destinations(m.From), m.To, m.To, exclude)
}

// nearestEmpty returns the candidate closest to target that is empty in d
// and differs from both excluded squares.
func nearestEmpty(d qboard.Board, candidates []qboard.Square, target, x1, x2 qboard.Square) qboard.Square {
	best, bestDist := qboard.NoSquare, 99
	for _, sq := range candidates {
		if sq == x1 || sq == x2 {
			continue
		}
		if _, occupied := d.Occupied(sq); occupied {
			continue
		}
		if dist := qboard.Chebyshev(sq, target); dist < bestDist || (dist == bestDist && sq < best) {
			best, bestDist = sq, dist
		}
	}
	return best
}

func (g Generator) superpose(b, d qboard.Board, m qboard.Move) (qboard.Board, bool) {
	alt := alternative(b, d, m, qboard.NoSquare)
	if alt == qboard.NoSquare {
		return qboard.Board{}, false
	}
	w := g.DestinationWeight
	return d.CloneWithChange(func(e *qboard.Editor) {
		p := e.Remove(m.To)
		e.Superpose(p, []qboard.Hypothesis{{Square: m.To, Probability: w}, {Square: alt, Probability: 1 - w}})
	}), true
}

// measureThenMove measures every group except the mover's on the pre-move
// board and then plays the move on the result.
func measureThenMove(b qboard.Board, m qboard.Move, rng *Rand) (qboard.Board, bool) {
	pre := b
	if id, ok := b.GroupAt(m.From); ok {
		pre = b.CloneWithChange(func(e *qboard.Editor) { e.Collapse(id, m.From) })
	}
	if pre.IsDefinite() {
		return qboard.Board{}, false
	}
	measured, _ := MeasureWithReport(pre, rng)
	p, ok := measured.PieceAt(m.From)
	if !ok {
		return qboard.Board{}, false
	}
	if c, occupied := measured.Occupied(m.To); occupied && c == p.Color {
		return qboard.Board{}, false
	}
	return playDeterministic(measured, m), true
}

// entangle superposes the mover and the first non-king neighbour of m.To and
// links their groups. A neighbour that is already superposed joins with its
// existing group, provided that group is not linked yet.
func (g Generator) entangle(b, d qboard.Board, m qboard.Move) (qboard.Board, bool) {
	alt := alternative(b, d, m, qboard.NoSquare)
	if alt == qboard.NoSquare {
		return qboard.Board{}, false
	}
	for _, n := range qboard.Neighbours(m.To) {
		np, ok := d.PieceAt(n)
		if !ok || np.Kind == qboard.King || n == alt {
			continue
		}
		existing, superposed := d.GroupAt(n)
		nalt := qboard.NoSquare
		if superposed {
			if _, linked := d.Partner(existing); linked {
				continue
			}
		} else {
			nalt = nearestEmpty(d, d.Destinations(n), n, alt, m.To)
			if nalt == qboard.NoSquare {
				continue
			}
		}
		w, nw := g.DestinationWeight, g.NeighbourWeight
		return d.CloneWithChange(func(e *qboard.Editor) {
			p := e.Remove(m.To)
			a := e.Superpose(p, []qboard.Hypothesis{{Square: m.To, Probability: w}, {Square: alt, Probability: 1 - w}})
			other := existing
			if !superposed {
				q := e.Remove(n)
				other = e.Superpose(q, []qboard.Hypothesis{{Square: n, Probability: nw}, {Square: nalt, Probability: 1 - nw}})
			}
			e.Link(a, other)
		}), true
	}
	return qboard.Board{}, false
}
