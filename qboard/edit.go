package qboard

import (
	"math"
	"sort"
)

// Editor mutates a private copy of a board inside CloneWithChange. Misuse
// (placing over a hypothesis, superposing a king, linking a linked group)
// is a programming error and panics with a *MalformedStateError.
type Editor struct {
	b *Board
}

// CloneWithChange applies fn to a copy of b and returns the copy. The
// receiver is never modified. Groups left with a single hypothesis are
// dissolved into a definite piece. If the resulting board violates an
// invariant CloneWithChange panics.
func (b Board) CloneWithChange(fn func(e *Editor)) Board {
	nb := b.clone()
	fn(&Editor{b: &nb})
	nb.settle()
	if err := nb.validate(); err != nil {
		panic(err)
	}
	return nb
}

func (b Board) clone() Board {
	nb := b
	nb.groups = make([]Group, len(b.groups))
	for i, g := range b.groups {
		nb.groups[i] = g.clone()
	}
	nb.links = append([]Link(nil), b.links...)
	if nb.nextID == NoGroup {
		nb.nextID = 1
	}
	return nb
}

// PieceAt reads the square in the edited board.
func (e *Editor) PieceAt(sq Square) (Piece, bool) { return e.b.PieceAt(sq) }

// GroupAt reads the square in the edited board.
func (e *Editor) GroupAt(sq Square) (GroupID, bool) { return e.b.GroupAt(sq) }

// Group reads a group in the edited board.
func (e *Editor) Group(id GroupID) (Group, bool) { return e.b.Group(id) }

// Partner reads a link in the edited board.
func (e *Editor) Partner(id GroupID) (GroupID, bool) { return e.b.Partner(id) }

// Put places a definite piece on sq, replacing any definite piece there.
func (e *Editor) Put(sq Square, p Piece) {
	e.requireClassical(sq)
	if p.IsNone() {
		panic(malformed("put of empty piece on %v", sq))
	}
	e.b.cells[sq] = cell{piece: p}
}

// Remove clears the definite piece on sq and returns it.
func (e *Editor) Remove(sq Square) Piece {
	e.requireClassical(sq)
	p := e.b.cells[sq].piece
	e.b.cells[sq] = cell{}
	return p
}

// Move relocates the definite piece on from to to, overwriting to.
func (e *Editor) Move(from, to Square) {
	e.requireClassical(from)
	e.requireClassical(to)
	p := e.b.cells[from].piece
	if p.IsNone() {
		panic(malformed("move from empty square %v", from))
	}
	e.b.cells[from] = cell{}
	e.b.cells[to] = cell{piece: p}
}

// Superpose creates a group for p over the given squares, all of which must
// be empty. The probabilities must already sum to one.
func (e *Editor) Superpose(p Piece, hyps []Hypothesis) GroupID {
	if p.Kind == King {
		panic(malformed("king cannot be superposed"))
	}
	if p.IsNone() || len(hyps) < 2 {
		panic(malformed("superposition needs a piece and at least two squares"))
	}
	for _, h := range hyps {
		if !h.Square.Valid() || !e.b.cells[h.Square].piece.IsNone() {
			panic(malformed("superposition over occupied square %v", h.Square))
		}
	}
	id := e.b.nextID
	e.b.nextID++
	g := Group{ID: id, Piece: p, Hypotheses: append([]Hypothesis(nil), hyps...)}
	for _, h := range hyps {
		e.b.cells[h.Square] = cell{piece: p, group: id}
	}
	e.b.groups = append(e.b.groups, g)
	return id
}

// CaptureHypothesis deletes the hypothesis on sq from its group and
// renormalizes the remaining weights. The removed mass is kept as a pending
// capture until the group is measured.
func (e *Editor) CaptureHypothesis(sq Square) GroupID {
	id, ok := e.b.GroupAt(sq)
	if !ok {
		panic(malformed("no hypothesis on %v", sq))
	}
	g := &e.b.groups[e.b.groupIndex(id)]
	i := g.Index(sq)
	removed := g.Hypotheses[i]
	g.Hypotheses = append(g.Hypotheses[:i:i], g.Hypotheses[i+1:]...)
	g.Pending = append(g.Pending, removed)
	renormalize(g.Hypotheses)
	e.b.cells[sq] = cell{}
	return id
}

// Collapse resolves group id onto sq: the piece becomes definite there, the
// other hypotheses vanish and every link of the group is removed. It returns
// the pending captures of the group, which are now confirmed.
func (e *Editor) Collapse(id GroupID, sq Square) []Hypothesis {
	gi := e.b.groupIndex(id)
	if gi < 0 {
		panic(malformed("collapse of unknown group %d", id))
	}
	g := e.b.groups[gi]
	if g.Index(sq) < 0 {
		panic(malformed("group %d has no hypothesis on %v", id, sq))
	}
	for _, h := range g.Hypotheses {
		e.b.cells[h.Square] = cell{}
	}
	e.b.cells[sq] = cell{piece: g.Piece}
	e.b.groups = append(e.b.groups[:gi:gi], e.b.groups[gi+1:]...)
	e.Unlink(id)
	return g.Pending
}

// Link entangles two distinct, unlinked groups.
func (e *Editor) Link(a, b GroupID) {
	if a == b || e.b.groupIndex(a) < 0 || e.b.groupIndex(b) < 0 {
		panic(malformed("cannot link groups %d and %d", a, b))
	}
	if _, ok := e.b.Partner(a); ok {
		panic(malformed("group %d is already entangled", a))
	}
	if _, ok := e.b.Partner(b); ok {
		panic(malformed("group %d is already entangled", b))
	}
	e.b.links = append(e.b.links, newLink(a, b))
	sort.Slice(e.b.links, func(i, j int) bool {
		if e.b.links[i].A != e.b.links[j].A {
			return e.b.links[i].A < e.b.links[j].A
		}
		return e.b.links[i].B < e.b.links[j].B
	})
}

// Unlink removes any link that has id as a member.
func (e *Editor) Unlink(id GroupID) {
	kept := e.b.links[:0]
	for _, l := range e.b.links {
		if !l.Has(id) {
			kept = append(kept, l)
		}
	}
	e.b.links = kept
}

func (e *Editor) requireClassical(sq Square) {
	if !sq.Valid() {
		panic(malformed("square %d off the board", sq))
	}
	if e.b.cells[sq].group != NoGroup {
		panic(malformed("square %v holds a hypothesis", sq))
	}
}

// settle dissolves groups that were reduced to a single hypothesis.
func (b *Board) settle() {
	for i := 0; i < len(b.groups); {
		g := b.groups[i]
		if len(g.Hypotheses) != 1 {
			i++
			continue
		}
		(&Editor{b: b}).Collapse(g.ID, g.Hypotheses[0].Square)
	}
}

func renormalize(hyps []Hypothesis) {
	var sum float64
	for _, h := range hyps {
		sum += h.Probability
	}
	if sum <= 0 {
		return
	}
	for i := range hyps {
		hyps[i].Probability /= sum
	}
}

// validate checks every board invariant and reports the first violation.
func (b *Board) validate() error {
	seen := make(map[GroupID]bool, len(b.groups))
	for i, g := range b.groups {
		if g.ID <= NoGroup || g.ID >= b.nextID {
			return malformed("group id %d out of range", g.ID)
		}
		if i > 0 && b.groups[i-1].ID >= g.ID {
			return malformed("groups not ordered by id")
		}
		if g.Piece.IsNone() {
			return malformed("group %d has no piece", g.ID)
		}
		if g.Piece.Kind == King {
			return malformed("king in superposition group %d", g.ID)
		}
		if len(g.Hypotheses) < 2 {
			return malformed("group %d has %d hypotheses", g.ID, len(g.Hypotheses))
		}
		var sum float64
		for _, h := range g.Hypotheses {
			if !h.Square.Valid() {
				return malformed("group %d hypothesis off the board", g.ID)
			}
			if h.Probability <= 0 || h.Probability > 1 || math.IsNaN(h.Probability) {
				return malformed("group %d probability %v on %v", g.ID, h.Probability, h.Square)
			}
			c := b.cells[h.Square]
			if c.group != g.ID || c.piece != g.Piece {
				return malformed("square %v does not reference group %d", h.Square, g.ID)
			}
			sum += h.Probability
		}
		if math.Abs(sum-1) > ProbabilityTolerance {
			return malformed("group %d probabilities sum to %v", g.ID, sum)
		}
		seen[g.ID] = true
	}
	cells := make(map[GroupID]int, len(b.groups))
	for sq := Square(0); sq < 64; sq++ {
		c := b.cells[sq]
		if c.group == NoGroup {
			continue
		}
		if !seen[c.group] {
			return malformed("square %v references unknown group %d", sq, c.group)
		}
		if b.groups[b.groupIndex(c.group)].Index(sq) < 0 {
			return malformed("square %v missing from group %d", sq, c.group)
		}
		cells[c.group]++
	}
	for _, g := range b.groups {
		if cells[g.ID] != len(g.Hypotheses) {
			return malformed("group %d repeats a square", g.ID)
		}
	}
	linked := make(map[GroupID]bool, 2*len(b.links))
	for _, l := range b.links {
		if l.A >= l.B || !seen[l.A] || !seen[l.B] {
			return malformed("invalid link %d-%d", l.A, l.B)
		}
		if linked[l.A] || linked[l.B] {
			return malformed("group entangled twice in link %d-%d", l.A, l.B)
		}
		linked[l.A], linked[l.B] = true, true
	}
	return nil
}
