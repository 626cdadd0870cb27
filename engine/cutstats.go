package engine

import "github.com/rs/zerolog"

// CutStatistics collects counts for each cutoff and chance mechanism.
type CutStatistics struct {
	Nodes          uint64
	Leaves         uint64
	ChanceNodes    uint64
	Terminals      uint64
	TTCutoffs      uint64
	BetaCutoffs    uint64
	DeadlineAborts uint64
}

func (c *CutStatistics) add(o CutStatistics) {
	c.Nodes += o.Nodes
	c.Leaves += o.Leaves
	c.ChanceNodes += o.ChanceNodes
	c.Terminals += o.Terminals
	c.TTCutoffs += o.TTCutoffs
	c.BetaCutoffs += o.BetaCutoffs
	c.DeadlineAborts += o.DeadlineAborts
}

func (c CutStatistics) dump(log zerolog.Logger) {
	log.Debug().
		Uint64("nodes", c.Nodes).
		Uint64("leaves", c.Leaves).
		Uint64("chanceNodes", c.ChanceNodes).
		Uint64("terminals", c.Terminals).
		Uint64("ttCutoffs", c.TTCutoffs).
		Uint64("betaCutoffs", c.BetaCutoffs).
		Uint64("deadlineAborts", c.DeadlineAborts).
		Msg("cut statistics")
}
