package engine

import (
	"time"

	"quantum-chess/qboard"
)

// TimeHandler tracks the deadline of one search. A zero deadline never
// expires.
type TimeHandler struct {
	start    time.Time
	deadline time.Time
}

func newTimeHandler(deadline time.Time) *TimeHandler {
	return &TimeHandler{start: time.Now(), deadline: deadline}
}

// Expired reports whether the deadline has passed.
func (th *TimeHandler) Expired() bool {
	return !th.deadline.IsZero() && !time.Now().Before(th.deadline)
}

// Elapsed is the time since the search started.
func (th *TimeHandler) Elapsed() time.Duration {
	return time.Since(th.start)
}

// Clock is the time control reported by a front end for one side.
type Clock struct {
	Remaining time.Duration
	Increment time.Duration
	MoveTime  time.Duration
}

// DeadlineFor turns a time control into an absolute deadline measured from
// now. A fixed move time wins over the clock; an empty clock has no deadline.
func DeadlineFor(b qboard.Board, c Clock) time.Time {
	budget := MoveBudget(b, c)
	if budget <= 0 {
		return time.Time{}
	}
	return time.Now().Add(budget)
}

// MoveBudget estimates how long to think about one move.
func MoveBudget(b qboard.Board, c Clock) time.Duration {
	const overhead = 30 * time.Millisecond // reserve for IO jitter
	const minMove = 5 * time.Millisecond   // never less than this
	const maxFrac = 0.7                    // never spend >70% of remaining time
	const panicThresh = time.Second
	const panicFrac = 0.90

	if c.MoveTime > 0 {
		return Max(c.MoveTime-overhead, minMove)
	}
	rem, inc := c.Remaining, c.Increment
	if rem <= 0 {
		return 0
	}

	movesLeft := estimateMovesRemaining(b)
	var moveTime time.Duration
	switch {
	case inc > 0 && rem < panicThresh:
		moveTime = time.Duration(float64(inc) * panicFrac)
	case inc > 0:
		moveTime = rem/time.Duration(movesLeft) + inc
	default:
		moveTime = rem / 40
	}

	moveTime = Max(moveTime, minMove)
	moveTime = Min(moveTime, time.Duration(float64(rem)*maxFrac))
	moveTime = Min(moveTime, rem-overhead)
	return Max(moveTime, minMove)
}

// estimateMovesRemaining interpolates between 20 moves with bare kings
// and 45 with all non-pawn material on the board.
func estimateMovesRemaining(b qboard.Board) int {
	phase := 0
	for sq := qboard.Square(0); sq < 64; sq++ {
		p, ok := b.PieceAt(sq)
		if !ok {
			continue
		}
		switch p.Kind {
		case qboard.Knight, qboard.Bishop:
			phase++
		case qboard.Rook:
			phase += 2
		case qboard.Queen:
			phase += 4
		}
	}
	phase = Min(phase, 24)
	return (phase*25)/24 + 20
}
