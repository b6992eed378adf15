package timex

import "time"

// PeriodFromHz returns a nanosecond period for a requested frequency.
// freqHz==0 is coerced to 1 to avoid division by zero.
func PeriodFromHz(freqHz uint32) uint64 {
	if freqHz == 0 {
		freqHz = 1
	}
	return uint64(1_000_000_000 / uint64(freqHz))
}

// Clock abstracts wall time and blocking waits so that timing-sensitive
// logic (armed windows, keepalive, settle delays) is testable with a fake.
// Sleep has fixed-duration, no-early-wake semantics.
type Clock interface {
	NowMs() int64
	Sleep(d time.Duration)
}

type realClock struct{}

func (realClock) NowMs() int64          { return time.Now().UnixMilli() }
func (realClock) Sleep(d time.Duration) { time.Sleep(d) }

// Real returns the wall clock.
func Real() Clock { return realClock{} }
