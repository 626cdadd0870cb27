package engine

import (
	"sort"

	"golang.org/x/exp/maps"

	"quantum-chess/qboard"
)

// Collapse records how one group was resolved by a measurement.
type Collapse struct {
	Group  qboard.GroupID
	Piece  qboard.Piece
	Index  int
	Square qboard.Square
	Linked bool
}

// MeasureReport lists the collapses of one measurement in ascending group
// order together with the pending captures each group confirmed.
type MeasureReport struct {
	Collapses []Collapse
	Confirmed map[qboard.GroupID][]qboard.Hypothesis
}

// ConfirmedGroups returns the groups that had pending captures, ascending.
func (r MeasureReport) ConfirmedGroups() []qboard.GroupID {
	ids := maps.Keys(r.Confirmed)
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// Measure collapses every superposition group of b into a definite
// occupancy. A definite board is returned unchanged.
func Measure(b qboard.Board, seed uint64) qboard.Board {
	out, _ := MeasureWithReport(b, NewRand(seed))
	return out
}

// MeasureWithReport measures every group, drawing from rng.
func MeasureWithReport(b qboard.Board, rng *Rand) (qboard.Board, MeasureReport) {
	return measureGroups(b, b.Groups(), rng)
}

// MeasureGroup collapses only the group id and, when it is entangled, its
// partner. Unknown ids leave the board unchanged.
func MeasureGroup(b qboard.Board, id qboard.GroupID, rng *Rand) (qboard.Board, MeasureReport) {
	g, ok := b.Group(id)
	if !ok {
		return b, MeasureReport{}
	}
	targets := []qboard.Group{g}
	if pid, linked := b.Partner(id); linked {
		p, _ := b.Group(pid)
		targets = append(targets, p)
		sort.Slice(targets, func(i, j int) bool { return targets[i].ID < targets[j].ID })
	}
	return measureGroups(b, targets, rng)
}

// measureGroups resolves groups, which must be sorted by id. A linked pair
// consumes one draw at its lower id; the partner follows with i mod |B|.
func measureGroups(b qboard.Board, groups []qboard.Group, rng *Rand) (qboard.Board, MeasureReport) {
	report := MeasureReport{}
	if len(groups) == 0 {
		return b, report
	}
	byID := make(map[qboard.GroupID]qboard.Group, len(groups))
	for _, g := range groups {
		byID[g.ID] = g
	}
	done := make(map[qboard.GroupID]bool, len(groups))
	for _, g := range groups {
		if done[g.ID] {
			continue
		}
		i := categorical(g.Hypotheses, rng.Float64())
		pid, linked := b.Partner(g.ID)
		report.Collapses = append(report.Collapses, Collapse{
			Group: g.ID, Piece: g.Piece, Index: i, Square: g.Hypotheses[i].Square, Linked: linked,
		})
		done[g.ID] = true
		if !linked {
			continue
		}
		p, ok := byID[pid]
		if !ok {
			p, _ = b.Group(pid)
		}
		j := i % len(p.Hypotheses)
		report.Collapses = append(report.Collapses, Collapse{
			Group: p.ID, Piece: p.Piece, Index: j, Square: p.Hypotheses[j].Square, Linked: true,
		})
		done[p.ID] = true
	}
	sort.Slice(report.Collapses, func(i, j int) bool {
		return report.Collapses[i].Group < report.Collapses[j].Group
	})

	out := b.CloneWithChange(func(e *qboard.Editor) {
		for _, c := range report.Collapses {
			if pending := e.Collapse(c.Group, c.Square); len(pending) > 0 {
				if report.Confirmed == nil {
					report.Confirmed = make(map[qboard.GroupID][]qboard.Hypothesis)
				}
				report.Confirmed[c.Group] = pending
			}
		}
	})
	return out, report
}

// categorical picks the index whose cumulative weight first exceeds u.
func categorical(hyps []qboard.Hypothesis, u float64) int {
	var acc float64
	for i, h := range hyps {
		acc += h.Probability
		if u < acc {
			return i
		}
	}
	return len(hyps) - 1
}
