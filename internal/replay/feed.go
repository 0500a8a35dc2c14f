// Package replay turns a static list of readings into a paced synthetic
// real-time feed.
package replay

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/luki/pulpwatch/internal/sensor"
)

// DefaultInterval is the delay between emitted rows.
const DefaultInterval = 700 * time.Millisecond

// Feed emits readings in order, stamping each with the emission time.
// A Feed is used by one consumer at a time.
type Feed struct {
	readings []sensor.Reading
	interval time.Duration
	pos      int
	now      func() time.Time
	log      *slog.Logger
}

// Option configures a Feed.
type Option func(*Feed)

// WithClock replaces time.Now for stamping readings.
func WithClock(now func() time.Time) Option {
	return func(f *Feed) {
		f.now = now
	}
}

// WithLogger sets the feed logger.
func WithLogger(l *slog.Logger) Option {
	return func(f *Feed) {
		if l != nil {
			f.log = l
		}
	}
}

// NewFeed creates a feed over readings. An interval of zero emits as fast
// as the consumer accepts.
func NewFeed(readings []sensor.Reading, interval time.Duration, opts ...Option) *Feed {
	if interval < 0 {
		interval = 0
	}
	f := &Feed{
		readings: readings,
		interval: interval,
		now:      time.Now,
		log:      slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, o := range opts {
		o(f)
	}
	return f
}

// Interval returns the pacing interval.
func (f *Feed) Interval() time.Duration {
	return f.interval
}

// Len returns the total number of readings.
func (f *Feed) Len() int {
	return len(f.readings)
}

// Pos returns how many readings have been emitted.
func (f *Feed) Pos() int {
	return f.pos
}

// Done reports whether every reading has been emitted.
func (f *Feed) Done() bool {
	return f.pos >= len(f.readings)
}

// Reset rewinds the feed to the first reading.
func (f *Feed) Reset() {
	f.pos = 0
}

// Next emits the next reading without pacing; the caller supplies the
// timing (for example a tea.Tick).
func (f *Feed) Next() (sensor.Reading, bool) {
	if f.Done() {
		return sensor.Reading{}, false
	}
	r := f.readings[f.pos]
	r.Time = f.now()
	f.pos++
	return r, true
}

// Run sends the remaining readings to out, one per interval, and closes
// out when the data is exhausted or ctx is cancelled.
func (f *Feed) Run(ctx context.Context, out chan<- sensor.Reading) error {
	defer close(out)

	f.log.Info("replay started", "rows", len(f.readings), "interval", f.interval)

	var tick <-chan time.Time
	if f.interval > 0 {
		ticker := time.NewTicker(f.interval)
		defer ticker.Stop()
		tick = ticker.C
	}

	for {
		if err := ctx.Err(); err != nil {
			f.log.Info("replay stopped", "rows", f.pos, "err", err)
			return err
		}
		r, ok := f.Next()
		if !ok {
			f.log.Info("replay finished", "rows", f.pos)
			return nil
		}
		select {
		case out <- r:
		case <-ctx.Done():
			f.log.Info("replay stopped", "rows", f.pos-1, "err", ctx.Err())
			return ctx.Err()
		}
		if tick == nil || f.Done() {
			continue
		}
		select {
		case <-tick:
		case <-ctx.Done():
			f.log.Info("replay stopped", "rows", f.pos, "err", ctx.Err())
			return ctx.Err()
		}
	}
}
