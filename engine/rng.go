package engine

import (
	"encoding/binary"

	"lukechampine.com/frand"

	"quantum-chess/qboard"
)

// Rand is the explicitly seeded random source threaded through move
// generation and measurement. The same seed always yields the same stream.
type Rand struct {
	rng *frand.RNG
}

// NewRand expands seed into a ChaCha key.
func NewRand(seed uint64) *Rand {
	var key [32]byte
	x := seed
	for i := 0; i < 4; i++ {
		x = qboard.Mix(x + uint64(i))
		binary.LittleEndian.PutUint64(key[i*8:], x)
	}
	return &Rand{rng: frand.NewCustom(key[:], 256, 12)}
}

// Float64 returns a uniform value in [0, 1).
func (r *Rand) Float64() float64 {
	return float64(r.rng.Uint64n(1<<53)) / (1 << 53)
}

// Intn returns a uniform value in [0, n).
func (r *Rand) Intn(n int) int {
	return r.rng.Intn(n)
}

// deriveSeed folds values into one seed; order matters.
func deriveSeed(parts ...uint64) uint64 {
	var x uint64
	for _, p := range parts {
		x = qboard.Mix(x ^ p)
	}
	return x
}

func moveKey(m qboard.Move) uint64 {
	return uint64(uint8(m.From)) | uint64(uint8(m.To))<<8 | uint64(m.Promotion)<<16
}
