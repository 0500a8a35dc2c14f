package detect

// History is random access into a rolling series, counted back from the
// most recent sample. *series.Buffer satisfies it.
type History interface {
	Len() int
	At(offset int) (float64, bool)
}

// Samples adapts a plain slice (oldest first) to History.
type Samples []float64

func (s Samples) Len() int { return len(s) }

func (s Samples) At(offset int) (float64, bool) {
	if offset < 0 || offset >= len(s) {
		return 0, false
	}
	return s[len(s)-1-offset], true
}

// Delta returns the latest value minus the value window-1 samples before
// it, so the window includes the latest sample. It reports false when the
// history holds fewer than window samples.
func Delta(h History, window int) (float64, bool) {
	if window < 1 || h == nil || h.Len() < window {
		return 0, false
	}
	last, _ := h.At(0)
	first, _ := h.At(window - 1)
	return last - first, true
}

// RisingFast reports whether Delta over window is at least threshold.
// Insufficient history is never rising.
func RisingFast(h History, window int, threshold float64) bool {
	d, ok := Delta(h, window)
	return ok && d >= threshold
}
