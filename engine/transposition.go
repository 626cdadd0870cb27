package engine

import (
	"sync"
	"unsafe"

	"quantum-chess/qboard"
)

const (
	// Flags
	AlphaFlag = iota
	BetaFlag
	ExactFlag

	// In MB
	DefaultTTSize = 16
	clusterSize   = 4
)

// TransTable caches search results. Entries are reused only at exactly the
// depth they were stored with, so a hit returns the value the search would
// have computed itself. It is safe for concurrent use.
type TransTable struct {
	mu           sync.Mutex
	entries      []TTEntry
	clusterCount uint64
}

type TTEntry struct {
	Hash  uint64
	Depth int8
	Move  qboard.Move
	Score float64
	Flag  int8
}

// NewTransTable allocates a table of roughly sizeMB megabytes.
func NewTransTable(sizeMB int) *TransTable {
	if sizeMB <= 0 {
		sizeMB = DefaultTTSize
	}
	entrySize := uint64(unsafe.Sizeof(TTEntry{}))
	clusterCount := uint64(sizeMB) * 1024 * 1024 / (entrySize * clusterSize)
	if clusterCount == 0 {
		clusterCount = 1
	}
	return &TransTable{
		entries:      make([]TTEntry, clusterCount*clusterSize),
		clusterCount: clusterCount,
	}
}

// Clear drops every entry.
func (tt *TransTable) Clear() {
	tt.mu.Lock()
	defer tt.mu.Unlock()
	clear(tt.entries)
}

// probe returns a score usable for the window, and the stored move when the
// hash matches at any depth.
func (tt *TransTable) probe(hash uint64, depth int8, alpha, beta float64) (score float64, usable bool, move qboard.Move) {
	move = qboard.NullMove
	if tt == nil {
		return 0, false, move
	}
	hash = nonZero(hash)
	tt.mu.Lock()
	defer tt.mu.Unlock()
	base := int(hash % tt.clusterCount * clusterSize)
	for i := 0; i < clusterSize; i++ {
		e := &tt.entries[base+i]
		if e.Hash != hash {
			continue
		}
		if e.Depth != depth {
			move = e.Move
			continue
		}
		move = e.Move
		switch e.Flag {
		case ExactFlag:
			return e.Score, true, move
		case AlphaFlag:
			if e.Score <= alpha {
				return e.Score, true, move
			}
		case BetaFlag:
			if e.Score >= beta {
				return e.Score, true, move
			}
		}
		return 0, false, move
	}
	return 0, false, move
}

// store keeps one entry per (hash, depth). When the cluster is full the
// shallowest entry is replaced.
func (tt *TransTable) store(hash uint64, depth int8, move qboard.Move, score float64, flag int8) {
	if tt == nil {
		return
	}
	hash = nonZero(hash)
	tt.mu.Lock()
	defer tt.mu.Unlock()
	base := int(hash % tt.clusterCount * clusterSize)
	target := -1
	for i := 0; i < clusterSize; i++ {
		if e := tt.entries[base+i]; e.Hash == hash && e.Depth == depth {
			target = base + i
			break
		}
	}
	if target == -1 {
		for i := 0; i < clusterSize; i++ {
			if tt.entries[base+i].Hash == 0 {
				target = base + i
				break
			}
		}
	}
	if target == -1 {
		target = base
		for i := 1; i < clusterSize; i++ {
			if tt.entries[base+i].Depth < tt.entries[target].Depth {
				target = base + i
			}
		}
	}
	tt.entries[target] = TTEntry{Hash: hash, Depth: depth, Move: move, Score: score, Flag: flag}
}

func nonZero(h uint64) uint64 {
	if h == 0 {
		return 1
	}
	return h
}
