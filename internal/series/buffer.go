// Package series provides the bounded rolling buffers that hold recent
// samples for each channel, and a Frame that keeps several channels
// index-aligned tick by tick.
package series

import (
	"math"
	"time"
)

// MaxPoints is the default number of samples retained per channel.
const MaxPoints = 201

// Point is a single sample in a rolling series.
type Point struct {
	Value float64
	Time  time.Time
}

// Buffer is a fixed-capacity rolling series. Pushing past capacity evicts
// the oldest samples first.
type Buffer struct {
	points []Point
	max    int
}

// NewBuffer creates a buffer retaining at most capacity samples.
func NewBuffer(capacity int) *Buffer {
	if capacity < 1 {
		capacity = 1
	}
	return &Buffer{
		points: make([]Point, 0, capacity),
		max:    capacity,
	}
}

// Push appends a sample to the tail, evicting from the head on overflow.
func (b *Buffer) Push(v float64, t time.Time) {
	p := Point{Value: v, Time: t}
	if len(b.points) >= b.max {
		copy(b.points, b.points[1:])
		b.points[len(b.points)-1] = p
	} else {
		b.points = append(b.points, p)
	}
}

// Len returns the number of retained samples. A nil buffer is empty.
func (b *Buffer) Len() int {
	if b == nil {
		return 0
	}
	return len(b.points)
}

// Cap returns the buffer capacity.
func (b *Buffer) Cap() int {
	return b.max
}

// Latest returns the most recently pushed value.
func (b *Buffer) Latest() (float64, bool) {
	return b.At(0)
}

// At returns the value offset positions back from the tail; At(0) is the
// latest sample.
func (b *Buffer) At(offset int) (float64, bool) {
	if offset < 0 || offset >= b.Len() {
		return 0, false
	}
	return b.points[len(b.points)-1-offset].Value, true
}

// Values returns a copy of the retained values, oldest first.
func (b *Buffer) Values() []float64 {
	if b.Len() == 0 {
		return nil
	}
	vals := make([]float64, len(b.points))
	for i, p := range b.points {
		vals[i] = p.Value
	}
	return vals
}

// Points returns a copy of the retained samples, oldest first.
func (b *Buffer) Points() []Point {
	if b.Len() == 0 {
		return nil
	}
	out := make([]Point, len(b.points))
	copy(out, b.points)
	return out
}

// LastNPoints returns the last n samples (with timestamps).
func (b *Buffer) LastNPoints(n int) []Point {
	if n <= 0 || b.Len() == 0 {
		return nil
	}
	start := len(b.points) - n
	if start < 0 {
		start = 0
	}
	out := make([]Point, len(b.points[start:]))
	copy(out, b.points[start:])
	return out
}

// Stats summarises the retained window.
type Stats struct {
	Min  float64
	Peak float64
	Avg  float64
}

// Stats returns min/peak/avg over the current window, or zero values when
// the buffer is empty.
func (b *Buffer) Stats() Stats {
	if b.Len() == 0 {
		return Stats{}
	}
	s := Stats{Min: math.MaxFloat64, Peak: -math.MaxFloat64}
	sum := 0.0
	for _, p := range b.points {
		if p.Value < s.Min {
			s.Min = p.Value
		}
		if p.Value > s.Peak {
			s.Peak = p.Value
		}
		sum += p.Value
	}
	s.Avg = sum / float64(len(b.points))
	return s
}
