package pilot

const historyLen = 6

// MaxHistory is a fixed ring of recent per-burst plateau values. Robust
// averages the two largest entries, giving the slower-moving telemetry
// figure reported as cp_mv_robust. It never drives state decisions.
type MaxHistory struct {
	vals [historyLen]int
	n    int
	idx  int
}

func (h *MaxHistory) Push(v int) {
	h.vals[h.idx] = v
	h.idx = (h.idx + 1) % historyLen
	if h.n < historyLen {
		h.n++
	}
}

func (h *MaxHistory) Robust() int {
	if h.n == 0 {
		return 0
	}
	top1, top2 := 0, 0
	for i := 0; i < h.n; i++ {
		v := h.vals[i]
		if v >= top1 {
			top2 = top1
			top1 = v
		} else if v > top2 {
			top2 = v
		}
	}
	if h.n == 1 {
		return top1
	}
	return (top1 + top2) / 2
}
