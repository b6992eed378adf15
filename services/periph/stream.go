package periph

// streamPeriodMs is the push cadence for meter/temps streams.
const streamPeriodMs = 1000

// Stream gates a periodic telemetry push. The control tick polls Due;
// there is no timer behind it.
type Stream struct {
	on     bool
	lastMs int64
}

// Start enables the stream; the first push happens on the next due tick.
func (st *Stream) Start(nowMs int64) {
	st.on = true
	st.lastMs = nowMs
}

func (st *Stream) Stop() { st.on = false }

func (st *Stream) Active() bool { return st.on }

// Due reports whether a push is owed and, if so, advances the schedule.
func (st *Stream) Due(nowMs int64) bool {
	if !st.on || nowMs-st.lastMs < streamPeriodMs {
		return false
	}
	st.lastMs = nowMs
	return true
}
