package tracing

import (
	"log"

	"github.com/sarchlab/keepaway/sim"
)

// ConservationChecker panics if items are created or lost between rounds.
type ConservationChecker struct {
	total int
}

// NewConservationChecker remembers the current item total of reg.
func NewConservationChecker(reg *sim.Registry) *ConservationChecker {
	return &ConservationChecker{total: reg.TotalItems()}
}

// Func checks the total after every round.
func (c *ConservationChecker) Func(ctx sim.HookCtx) {
	if ctx.Pos != sim.HookPosAfterRound {
		return
	}

	s := ctx.Domain.(*sim.Scheduler)

	got := s.Registry().TotalItems()
	if got != c.total {
		log.Panicf("round %d: %d items in flight, expected %d",
			ctx.Item.(int), got, c.total)
	}
}
