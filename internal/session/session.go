// Package session owns the rolling series of one simulated stream and
// recomputes the derived annotation intervals and alert state on every
// ingested tick.
package session

import (
	"io"
	"log/slog"

	"github.com/google/uuid"

	"github.com/luki/pulpwatch/internal/alert"
	"github.com/luki/pulpwatch/internal/detect"
	"github.com/luki/pulpwatch/internal/sensor"
	"github.com/luki/pulpwatch/internal/series"
)

// Config describes the channels of a stream and their limits.
type Config struct {
	MaxPoints int
	Pressure  bool // whether the stream carries a pressure channel
	Limits    alert.Limits
}

// DefaultConfig returns a temperature-only configuration with the default
// limits.
func DefaultConfig() Config {
	return Config{
		MaxPoints: series.MaxPoints,
		Limits:    alert.DefaultLimits(),
	}
}

// ChannelView is a read-only copy of one channel at a tick.
type ChannelView struct {
	Channel   sensor.Channel
	Limit     float64
	Points    []series.Point
	Intervals []detect.Interval
	Latest    float64
	Stats     series.Stats
}

// Values returns the channel values, oldest first.
func (c ChannelView) Values() []float64 {
	vals := make([]float64, len(c.Points))
	for i, p := range c.Points {
		vals[i] = p.Value
	}
	return vals
}

// Snapshot is the consistent state exposed after each tick.
type Snapshot struct {
	Tick     int // accepted ticks so far
	Temp     ChannelView
	Press    ChannelView
	HasPress bool
	Alert    alert.State
}

// Empty reports whether no tick has been accepted yet.
func (s Snapshot) Empty() bool {
	return s.Tick == 0
}

// Session is one independent stream. It is not safe for concurrent use;
// ticks must be ingested in arrival order from a single goroutine.
type Session struct {
	id      uuid.UUID
	cfg     Config
	frame   *series.Frame
	snap    Snapshot
	dropped int
	log     *slog.Logger
}

// Option configures a Session.
type Option func(*Session)

// WithLogger sets the logger used for dropped-tick diagnostics.
func WithLogger(l *slog.Logger) Option {
	return func(s *Session) {
		if l != nil {
			s.log = l
		}
	}
}

// WithID overrides the generated session id.
func WithID(id uuid.UUID) Option {
	return func(s *Session) {
		s.id = id
	}
}

// New creates a session for cfg.
func New(cfg Config, opts ...Option) *Session {
	if cfg.MaxPoints < 1 {
		cfg.MaxPoints = series.MaxPoints
	}
	channels := []string{string(sensor.Temperature)}
	if cfg.Pressure {
		channels = append(channels, string(sensor.Pressure))
	}

	s := &Session{
		id:    uuid.New(),
		cfg:   cfg,
		frame: series.NewFrame(cfg.MaxPoints, channels...),
		log:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, o := range opts {
		o(s)
	}
	s.log = s.log.With("session", s.id.String())
	s.snap = s.build(0)
	return s
}

// ID returns the session id.
func (s *Session) ID() uuid.UUID {
	return s.id
}

// Config returns the session configuration.
func (s *Session) Config() Config {
	return s.cfg
}

// Dropped returns the number of ticks rejected by Ingest.
func (s *Session) Dropped() int {
	return s.dropped
}

// Ingest commits one tick to every channel and recomputes the snapshot.
// A reading lacking a value for a configured channel is dropped whole and
// the previous snapshot is returned with false.
func (s *Session) Ingest(r sensor.Reading) (Snapshot, bool) {
	vals := []float64{r.Temp}
	if s.cfg.Pressure {
		if !r.HasPress {
			s.drop(r, "pressure missing")
			return s.snap, false
		}
		vals = append(vals, r.Press)
	}
	if !s.frame.Commit(r.Time, vals...) {
		s.drop(r, "not finite")
		return s.snap, false
	}
	s.snap = s.build(s.snap.Tick + 1)
	return s.snap, true
}

// Snapshot returns the state after the last accepted tick.
func (s *Session) Snapshot() Snapshot {
	return s.snap
}

func (s *Session) drop(r sensor.Reading, reason string) {
	s.dropped++
	s.log.Debug("tick dropped", "row", r.Index, "reason", reason)
}

func (s *Session) build(tick int) Snapshot {
	temp := s.frame.Channel(string(sensor.Temperature))
	snap := Snapshot{
		Tick: tick,
		Temp: view(sensor.Temperature, temp, s.cfg.Limits.Temp),
	}

	var press detect.History
	if s.cfg.Pressure {
		pb := s.frame.Channel(string(sensor.Pressure))
		snap.Press = view(sensor.Pressure, pb, s.cfg.Limits.Press)
		snap.HasPress = true
		press = pb
	}

	snap.Alert = alert.Classify(s.cfg.Limits, temp, press)
	return snap
}

func view(ch sensor.Channel, b *series.Buffer, limit float64) ChannelView {
	v := ChannelView{
		Channel: ch,
		Limit:   limit,
		Points:  b.Points(),
		Stats:   b.Stats(),
	}
	v.Latest, _ = b.Latest()
	v.Intervals = detect.Detect(b.Values(), limit)
	return v
}
