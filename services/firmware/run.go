package firmware

import (
	"context"
	"time"

	"cp-periph-go/services/link"
)

// Run drives the core until ctx is cancelled. Ticks and inbound lines
// are strictly interleaved; a long command (calibration, contactor
// actuation) simply delays the next tick, which is acceptable at the
// loop's cadence. Lines from multiple transports share one channel, so
// cross-transport ordering within a tick is whatever the channel saw
// first.
func (c *Core) Run(ctx context.Context, lines <-chan link.Line) {
	tick := time.NewTicker(TickPeriod)
	defer tick.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-tick.C:
			c.Tick()
		case ln := <-lines:
			c.HandleLine(ln)
		}
	}
}
