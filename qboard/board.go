package qboard

import (
	"math"
	"sort"
	"strings"
)

// ProbabilityTolerance bounds the drift allowed when a group's probabilities
// are summed.
const ProbabilityTolerance = 1e-6

// GroupID names a superposition group inside one board. Zero means "none".
type GroupID int32

// NoGroup is the zero GroupID.
const NoGroup GroupID = 0

// Hypothesis is one possible location of a superposed piece.
type Hypothesis struct {
	Square      Square
	Probability float64
}

// Group is the probability distribution of one piece over several squares.
// Pending holds hypotheses removed by captures; they are confirmed when the
// group is measured.
type Group struct {
	ID         GroupID
	Piece      Piece
	Hypotheses []Hypothesis
	Pending    []Hypothesis
}

// Index returns the position of sq in the hypothesis list, or -1.
func (g Group) Index(sq Square) int {
	for i, h := range g.Hypotheses {
		if h.Square == sq {
			return i
		}
	}
	return -1
}

// Probability returns the weight of sq in the group (0 when absent).
func (g Group) Probability(sq Square) float64 {
	if i := g.Index(sq); i >= 0 {
		return g.Hypotheses[i].Probability
	}
	return 0
}

func (g Group) clone() Group {
	out := g
	out.Hypotheses = append([]Hypothesis(nil), g.Hypotheses...)
	if len(g.Pending) > 0 {
		out.Pending = append([]Hypothesis(nil), g.Pending...)
	}
	return out
}

// Link is an unordered pair of entangled groups, stored with A < B.
type Link struct {
	A, B GroupID
}

// Has reports whether id is a member of the link.
func (l Link) Has(id GroupID) bool { return l.A == id || l.B == id }

func newLink(a, b GroupID) Link {
	if a > b {
		a, b = b, a
	}
	return Link{A: a, B: b}
}

type cell struct {
	piece Piece
	group GroupID
}

// Board is an immutable position: every square is empty, holds a definite
// piece, or holds one hypothesis of a superposition group. New boards are
// only produced by CloneWithChange and the constructors in this package.
type Board struct {
	cells  [64]cell
	groups []Group
	links  []Link
	nextID GroupID
}

// Empty returns a board with no pieces.
func Empty() Board {
	return Board{nextID: 1}
}

// StartPosition returns the standard initial position, every piece definite.
func StartPosition() Board {
	b, _, err := ParseFEN(FENStartPos)
	if err != nil {
		panic(err)
	}
	return b
}

// PieceAt returns the piece on sq. For a superposed square this is the piece
// of the group hypothesis there; callers that need correctness must read the
// full distribution through Group.
func (b Board) PieceAt(sq Square) (Piece, bool) {
	if !sq.Valid() {
		return NoPiece, false
	}
	c := b.cells[sq]
	return c.piece, !c.piece.IsNone()
}

// IsSuperposed reports whether sq holds a hypothesis.
func (b Board) IsSuperposed(sq Square) bool {
	return sq.Valid() && b.cells[sq].group != NoGroup
}

// GroupAt returns the group owning the hypothesis on sq.
func (b Board) GroupAt(sq Square) (GroupID, bool) {
	if !sq.Valid() || b.cells[sq].group == NoGroup {
		return NoGroup, false
	}
	return b.cells[sq].group, true
}

// Group returns a copy of the group with the given id.
func (b Board) Group(id GroupID) (Group, bool) {
	i := b.groupIndex(id)
	if i < 0 {
		return Group{}, false
	}
	return b.groups[i].clone(), true
}

// Groups returns copies of all groups in ascending id order.
func (b Board) Groups() []Group {
	out := make([]Group, len(b.groups))
	for i, g := range b.groups {
		out[i] = g.clone()
	}
	return out
}

// GroupCount returns the number of superposition groups.
func (b Board) GroupCount() int { return len(b.groups) }

// Links returns all entanglement links ordered by (A, B).
func (b Board) Links() []Link { return append([]Link(nil), b.links...) }

// Partner returns the group entangled with id.
func (b Board) Partner(id GroupID) (GroupID, bool) {
	for _, l := range b.links {
		if l.A == id {
			return l.B, true
		}
		if l.B == id {
			return l.A, true
		}
	}
	return NoGroup, false
}

// IsDefinite reports whether no square is superposed.
func (b Board) IsDefinite() bool { return len(b.groups) == 0 }

// KingSquare finds the king of color c. Kings are never superposed.
func (b Board) KingSquare(c Color) (Square, bool) {
	for sq := Square(0); sq < 64; sq++ {
		p := b.cells[sq].piece
		if p.Kind == King && p.Color == c {
			return sq, true
		}
	}
	return NoSquare, false
}

// Occupied reports who occupies sq, counting hypotheses as occupation.
func (b Board) Occupied(sq Square) (Color, bool) {
	p, ok := b.PieceAt(sq)
	return p.Color, ok
}

// Squares lists every square holding a definite piece or hypothesis of c.
func (b Board) Squares(c Color) []Square {
	out := make([]Square, 0, 16)
	for sq := Square(0); sq < 64; sq++ {
		p := b.cells[sq].piece
		if !p.IsNone() && p.Color == c {
			out = append(out, sq)
		}
	}
	return out
}

// Equal compares two boards including group ids.
func (b Board) Equal(o Board) bool {
	if b.cells != o.cells || len(b.groups) != len(o.groups) || len(b.links) != len(o.links) {
		return false
	}
	for i := range b.groups {
		g, h := b.groups[i], o.groups[i]
		if g.ID != h.ID || g.Piece != h.Piece || !sameHypotheses(g.Hypotheses, h.Hypotheses) || !sameHypotheses(g.Pending, h.Pending) {
			return false
		}
	}
	for i := range b.links {
		if b.links[i] != o.links[i] {
			return false
		}
	}
	return true
}

func sameHypotheses(a, b []Hypothesis) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i].Square != b[i].Square || math.Abs(a[i].Probability-b[i].Probability) > ProbabilityTolerance {
			return false
		}
	}
	return true
}

func (b Board) groupIndex(id GroupID) int {
	i := sort.Search(len(b.groups), func(i int) bool { return b.groups[i].ID >= id })
	if i < len(b.groups) && b.groups[i].ID == id {
		return i
	}
	return -1
}

// String draws the board from white's side. Superposed squares are shown in
// parentheses.
func (b Board) String() string {
	var sb strings.Builder
	sb.WriteString("  +------------------------+\n")
	for rank := 7; rank >= 0; rank-- {
		sb.WriteByte('1' + byte(rank))
		sb.WriteString(" |")
		for file := 0; file < 8; file++ {
			c := b.cells[NewSquare(file, rank)]
			switch {
			case c.piece.IsNone():
				sb.WriteString(" . ")
			case c.group != NoGroup:
				sb.WriteByte('(')
				sb.WriteByte(c.piece.Char())
				sb.WriteByte(')')
			default:
				sb.WriteByte(' ')
				sb.WriteByte(c.piece.Char())
				sb.WriteByte(' ')
			}
		}
		sb.WriteString("|\n")
	}
	sb.WriteString("  +------------------------+\n")
	sb.WriteString("    a  b  c  d  e  f  g  h\n")
	return sb.String()
}
