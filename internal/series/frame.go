package series

import (
	"math"
	"time"
)

// Frame holds one Buffer per channel and commits samples to all of them in
// lock-step, so index i refers to the same tick in every channel.
type Frame struct {
	names []string
	bufs  []*Buffer
}

// NewFrame creates a frame with the given capacity and channel names.
func NewFrame(capacity int, channels ...string) *Frame {
	f := &Frame{names: append([]string(nil), channels...)}
	for range channels {
		f.bufs = append(f.bufs, NewBuffer(capacity))
	}
	return f
}

// Commit pushes one tick. values must carry exactly one finite value per
// channel, in channel order; otherwise nothing is pushed and Commit
// returns false.
func (f *Frame) Commit(t time.Time, values ...float64) bool {
	if len(values) != len(f.bufs) {
		return false
	}
	for _, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	for i, v := range values {
		f.bufs[i].Push(v, t)
	}
	return true
}

// Channel returns the buffer for a channel name, or nil.
func (f *Frame) Channel(name string) *Buffer {
	for i, n := range f.names {
		if n == name {
			return f.bufs[i]
		}
	}
	return nil
}

// Channels returns the channel names in commit order.
func (f *Frame) Channels() []string {
	return append([]string(nil), f.names...)
}

// Len returns the number of ticks retained.
func (f *Frame) Len() int {
	if len(f.bufs) == 0 {
		return 0
	}
	return f.bufs[0].Len()
}
