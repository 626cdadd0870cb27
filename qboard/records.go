package qboard

import (
	"encoding/json"
	"fmt"
	"sort"
)

// SquareRecord is one entry of a saved board. Definite pieces carry only
// Square and Piece; hypotheses carry their group and probability. Pending
// marks a captured hypothesis that waits for measurement (its Square is
// where the capture happened).
type SquareRecord struct {
	GroupID     GroupID `json:"groupId,omitempty"`
	Square      string  `json:"square"`
	Piece       string  `json:"piece"`
	Probability float64 `json:"probability,omitempty"`
	Pending     bool    `json:"pending,omitempty"`
}

// EntanglementRecord saves one link.
type EntanglementRecord struct {
	GroupIDA GroupID `json:"groupIdA"`
	GroupIDB GroupID `json:"groupIdB"`
}

// Snapshot is the persisted layout of a board.
type Snapshot struct {
	Squares       []SquareRecord       `json:"squares"`
	Entanglements []EntanglementRecord `json:"entanglements"`
}

// Snapshot lists definite squares in square order followed by the
// hypotheses of each group in id order.
func (b Board) Snapshot() Snapshot {
	s := Snapshot{Squares: []SquareRecord{}, Entanglements: []EntanglementRecord{}}
	for sq := Square(0); sq < 64; sq++ {
		c := b.cells[sq]
		if c.piece.IsNone() || c.group != NoGroup {
			continue
		}
		s.Squares = append(s.Squares, SquareRecord{Square: sq.String(), Piece: string(c.piece.Char())})
	}
	for _, g := range b.groups {
		for _, h := range g.Hypotheses {
			s.Squares = append(s.Squares, SquareRecord{
				GroupID:     g.ID,
				Square:      h.Square.String(),
				Piece:       string(g.Piece.Char()),
				Probability: h.Probability,
			})
		}
		for _, h := range g.Pending {
			s.Squares = append(s.Squares, SquareRecord{
				GroupID:     g.ID,
				Square:      h.Square.String(),
				Piece:       string(g.Piece.Char()),
				Probability: h.Probability,
				Pending:     true,
			})
		}
	}
	for _, l := range b.links {
		s.Entanglements = append(s.Entanglements, EntanglementRecord{GroupIDA: l.A, GroupIDB: l.B})
	}
	return s
}

// FromSnapshot rebuilds a board. Any invariant violation is returned as an
// error wrapping ErrMalformedState.
func FromSnapshot(s Snapshot) (Board, error) {
	b := Empty()
	byID := map[GroupID]*Group{}
	for _, rec := range s.Squares {
		sq, err := ParseSquare(rec.Square)
		if err != nil {
			return Board{}, malformed("record %+v: %v", rec, err)
		}
		if len(rec.Piece) != 1 {
			return Board{}, malformed("record %+v: bad piece", rec)
		}
		piece, ok := PieceFromChar(rec.Piece[0])
		if !ok {
			return Board{}, malformed("record %+v: bad piece", rec)
		}
		if rec.GroupID == NoGroup {
			if rec.Pending || !b.cells[sq].piece.IsNone() {
				return Board{}, malformed("record %+v: square used twice", rec)
			}
			b.cells[sq] = cell{piece: piece}
			continue
		}
		g := byID[rec.GroupID]
		if g == nil {
			g = &Group{ID: rec.GroupID, Piece: piece}
			byID[rec.GroupID] = g
		}
		if g.Piece != piece {
			return Board{}, malformed("group %d mixes pieces", rec.GroupID)
		}
		h := Hypothesis{Square: sq, Probability: rec.Probability}
		if rec.Pending {
			g.Pending = append(g.Pending, h)
			continue
		}
		if !b.cells[sq].piece.IsNone() {
			return Board{}, malformed("record %+v: square used twice", rec)
		}
		g.Hypotheses = append(g.Hypotheses, h)
		b.cells[sq] = cell{piece: piece, group: rec.GroupID}
	}
	for id, g := range byID {
		b.groups = append(b.groups, *g)
		if id >= b.nextID {
			b.nextID = id + 1
		}
	}
	sort.Slice(b.groups, func(i, j int) bool { return b.groups[i].ID < b.groups[j].ID })
	for _, e := range s.Entanglements {
		b.links = append(b.links, newLink(e.GroupIDA, e.GroupIDB))
	}
	sort.Slice(b.links, func(i, j int) bool {
		if b.links[i].A != b.links[j].A {
			return b.links[i].A < b.links[j].A
		}
		return b.links[i].B < b.links[j].B
	})
	if err := b.validate(); err != nil {
		return Board{}, err
	}
	return b, nil
}

// MarshalJSON encodes the board as its Snapshot.
func (b Board) MarshalJSON() ([]byte, error) {
	return json.Marshal(b.Snapshot())
}

// UnmarshalJSON decodes a Snapshot and validates it.
func (b *Board) UnmarshalJSON(data []byte) error {
	var s Snapshot
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("decode board: %w", err)
	}
	nb, err := FromSnapshot(s)
	if err != nil {
		return err
	}
	*b = nb
	return nil
}
