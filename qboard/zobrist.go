package qboard

import (
	"math"
	"math/rand"
)

var zobristPiece [13][64]uint64     // definite piece on a square
var zobristHypothesis [13][64]uint64 // hypothesis of a piece on a square
var zobristLink uint64

// SideKey is mixed into a hash when black is to move.
var SideKey uint64

func init() {
	initZobrist()
}

func initZobrist() {
	// Fixed seed so hashes are stable across runs.
	rnd := rand.New(rand.NewSource(0xC0DE))
	for p := 0; p < 13; p++ {
		for sq := 0; sq < 64; sq++ {
			zobristPiece[p][sq] = rnd.Uint64()
			zobristHypothesis[p][sq] = rnd.Uint64()
		}
	}
	zobristLink = rnd.Uint64()
	SideKey = rnd.Uint64()
}

// Mix is the splitmix64 finalizer, used to fold values into hashes and
// seeds.
func Mix(x uint64) uint64 {
	x += 0x9E3779B97F4A7C15
	x = (x ^ (x >> 30)) * 0xBF58476D1CE4E5B9
	x = (x ^ (x >> 27)) * 0x94D049BB133111EB
	return x ^ (x >> 31)
}

// Hash computes a Zobrist-style key over definite pieces, hypotheses with
// their weights and entanglement links. Group ids do not contribute, so two
// boards that differ only in id numbering hash alike.
func (b Board) Hash() uint64 {
	var key uint64
	for sq := 0; sq < 64; sq++ {
		c := b.cells[sq]
		if c.piece.IsNone() || c.group != NoGroup {
			continue
		}
		key ^= zobristPiece[c.piece.index()][sq]
	}
	for _, g := range b.groups {
		key ^= groupKey(g)
	}
	for _, l := range b.links {
		ga, _ := b.Group(l.A)
		gb, _ := b.Group(l.B)
		key ^= Mix(groupKey(ga) + groupKey(gb) + zobristLink)
	}
	return key
}

func groupKey(g Group) uint64 {
	var key uint64
	pi := g.Piece.index()
	for _, h := range g.Hypotheses {
		weight := uint64(math.Round(h.Probability * 1e6))
		key ^= Mix(zobristHypothesis[pi][h.Square] ^ weight)
	}
	return key
}
