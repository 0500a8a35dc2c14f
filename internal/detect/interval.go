// Package detect derives annotation intervals and rate-of-change facts
// from a rolling series.
package detect

// Interval is a maximal run of consecutive samples strictly above a limit.
// Start and End are inclusive indices into the scanned series.
type Interval struct {
	Start int
	End   int
	Peak  float64
}

// Len returns the number of samples covered.
func (iv Interval) Len() int {
	return iv.End - iv.Start + 1
}

// Contains reports whether index i falls inside the interval.
func (iv Interval) Contains(i int) bool {
	return i >= iv.Start && i <= iv.End
}

// Over returns the indices whose value is strictly greater than limit.
func Over(values []float64, limit float64) []int {
	var idx []int
	for i, v := range values {
		if v > limit {
			idx = append(idx, i)
		}
	}
	return idx
}

// Detect scans the whole series and returns the merged over-limit runs,
// sorted by start index, each with its peak value. A value equal to the
// limit is not over it.
func Detect(values []float64, limit float64) []Interval {
	idx := Over(values, limit)
	if len(idx) == 0 {
		return nil
	}

	var out []Interval
	start, prev := idx[0], idx[0]
	for _, i := range idx[1:] {
		if i != prev+1 {
			out = append(out, span(values, start, prev))
			start = i
		}
		prev = i
	}
	return append(out, span(values, start, prev))
}

func span(values []float64, start, end int) Interval {
	peak := values[start]
	for _, v := range values[start+1 : end+1] {
		if v > peak {
			peak = v
		}
	}
	return Interval{Start: start, End: end, Peak: peak}
}
