package main

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/luki/pulpwatch/internal/alert"
	"github.com/luki/pulpwatch/internal/replay"
	"github.com/luki/pulpwatch/internal/sensor"
	"github.com/luki/pulpwatch/internal/session"
)

// summary counts ticks per alert over a headless replay.
type summary struct {
	Rows        int
	Ticks       int
	Dropped     int
	TempOver    int
	PressOver   int
	PulpRisk    int
	Transitions int
	Interrupted bool
}

func (s *summary) observe(st alert.State) {
	s.Ticks++
	if st.TemperatureOver {
		s.TempOver++
	}
	if st.PressureOver {
		s.PressOver++
	}
	if st.PulpRisk {
		s.PulpRisk++
	}
}

func (s summary) log(log *slog.Logger) {
	log.Info("replay summary",
		"rows", s.Rows,
		"ticks", s.Ticks,
		"dropped", s.Dropped,
		"temp_over", s.TempOver,
		"press_over", s.PressOver,
		"pulp_risk", s.PulpRisk,
		"transitions", s.Transitions,
		"interrupted", s.Interrupted,
	)
}

// runHeadless replays readings through a session: the feed produces on a
// channel and a single consumer ingests in arrival order. Cancelling ctx
// stops the replay; the partial summary is still returned.
func runHeadless(ctx context.Context, readings []sensor.Reading, sc session.Config, interval time.Duration, log *slog.Logger) (summary, error) {
	feed := replay.NewFeed(readings, interval, replay.WithLogger(log))
	sess := session.New(sc, session.WithLogger(log))
	sum := summary{Rows: len(readings)}

	ch := make(chan sensor.Reading)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return feed.Run(gctx, ch)
	})
	g.Go(func() error {
		prev := sess.Snapshot().Alert
		for r := range ch {
			snap, ok := sess.Ingest(r)
			if !ok {
				continue
			}
			sum.observe(snap.Alert)
			if snap.Alert != prev {
				sum.Transitions++
				logTransition(log, prev, snap)
				prev = snap.Alert
			}
		}
		return nil
	})

	err := g.Wait()
	sum.Dropped = sess.Dropped()
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		sum.Interrupted = true
		err = nil
	}
	return sum, err
}

func logTransition(log *slog.Logger, prev alert.State, snap session.Snapshot) {
	next := snap.Alert
	attrs := []any{"tick", snap.Tick, "temp", snap.Temp.Latest}
	if snap.HasPress {
		attrs = append(attrs, "press", snap.Press.Latest)
	}

	edge := func(name string, was, is bool) {
		switch {
		case is && !was:
			log.Warn("alert raised", append([]any{"alert", name}, attrs...)...)
		case was && !is:
			log.Info("alert cleared", append([]any{"alert", name}, attrs...)...)
		}
	}
	edge("temperature", prev.TemperatureOver, next.TemperatureOver)
	edge("pressure", prev.PressureOver, next.PressureOver)
	edge("pulp", prev.PulpRisk, next.PulpRisk)

	if prev.Tool != next.Tool {
		log.Info("tool state", append([]any{"tool", next.Tool.String()}, attrs...)...)
	}
}
