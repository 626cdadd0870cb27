package qboard

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
)

func TestSnapshotRoundTrip(t *testing.T) {
	b := StartPosition().CloneWithChange(func(e *Editor) {
		n := e.Remove(6)
		a := e.Superpose(n, []Hypothesis{{Square: 21, Probability: 0.7}, {Square: 23, Probability: 0.3}})
		q := e.Remove(59)
		c := e.Superpose(q, []Hypothesis{{Square: 43, Probability: 0.6}, {Square: 35, Probability: 0.25}, {Square: 27, Probability: 0.15}})
		e.CaptureHypothesis(27)
		e.Link(a, c)
	})

	data, err := json.Marshal(b)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var got Board
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !got.Equal(b) {
		t.Fatalf("round trip changed the board:\n%s\nvs\n%s", got, b)
	}
	if !strings.Contains(string(data), `"groupIdA"`) {
		t.Fatalf("expected entanglement records in %s", data)
	}
}

func TestFromSnapshotRejectsBadProbabilities(t *testing.T) {
	s := Snapshot{
		Squares: []SquareRecord{
			{GroupID: 1, Square: "a1", Piece: "R", Probability: 0.5},
			{GroupID: 1, Square: "a2", Piece: "R", Probability: 0.4},
		},
	}
	if _, err := FromSnapshot(s); !errors.Is(err, ErrMalformedState) {
		t.Fatalf("expected ErrMalformedState, got %v", err)
	}
}

func TestFromSnapshotRejectsSuperposedKing(t *testing.T) {
	s := Snapshot{
		Squares: []SquareRecord{
			{GroupID: 3, Square: "e1", Piece: "K", Probability: 0.5},
			{GroupID: 3, Square: "e2", Piece: "K", Probability: 0.5},
		},
	}
	if _, err := FromSnapshot(s); !errors.Is(err, ErrMalformedState) {
		t.Fatalf("expected ErrMalformedState, got %v", err)
	}
}

func TestFromSnapshotRejectsDanglingLink(t *testing.T) {
	s := Snapshot{
		Squares:       []SquareRecord{{Square: "e1", Piece: "K"}},
		Entanglements: []EntanglementRecord{{GroupIDA: 1, GroupIDB: 2}},
	}
	if _, err := FromSnapshot(s); !errors.Is(err, ErrMalformedState) {
		t.Fatalf("expected ErrMalformedState, got %v", err)
	}
}
