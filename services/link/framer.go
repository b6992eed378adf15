// Package link moves newline-delimited JSON between byte-stream
// transports and the command dispatcher. Each transport owns an
// independent Framer; outbound frames arrive over the bus on
// ("tx", <transport>) for replies and ("tx", "broadcast") for frames
// every connected host should see.
package link

// MaxLineLen bounds the line accumulation buffer. A line that exceeds
// it is discarded wholesale, including the remainder up to its
// newline; a binary or runaway stream must not grow memory or yield
// garbage frames.
const MaxLineLen = 240

// Framer splits a byte stream into lines. CR bytes are ignored so CRLF
// hosts work unmodified. Empty lines are not emitted.
type Framer struct {
	buf      [MaxLineLen]byte
	n        int
	overflow bool
}

// Feed consumes a chunk, invoking emit for every completed line.
func (f *Framer) Feed(p []byte, emit func(string)) {
	for _, b := range p {
		switch b {
		case '\r':
		case '\n':
			if f.overflow {
				f.overflow = false
			} else if f.n > 0 {
				emit(string(f.buf[:f.n]))
			}
			f.n = 0
		default:
			if f.overflow {
				continue
			}
			if f.n == MaxLineLen {
				f.n = 0
				f.overflow = true
				continue
			}
			f.buf[f.n] = b
			f.n++
		}
	}
}
