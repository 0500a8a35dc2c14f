package session

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/luki/pulpwatch/internal/alert"
	"github.com/luki/pulpwatch/internal/detect"
	"github.com/luki/pulpwatch/internal/sensor"
)

func ingestTemps(t *testing.T, s *Session, temps ...float64) Snapshot {
	t.Helper()
	var snap Snapshot
	for _, v := range temps {
		var ok bool
		snap, ok = s.Ingest(sensor.Reading{Temp: v})
		require.True(t, ok)
	}
	return snap
}

func TestIngestPulpRisk(t *testing.T) {
	s := New(DefaultConfig())
	require.True(t, s.Snapshot().Empty())

	snap := ingestTemps(t, s, 30, 31, 32, 33, 34, 35)

	require.Equal(t, 6, snap.Tick)
	require.Equal(t, 35.0, snap.Temp.Latest)
	require.Equal(t, alert.State{
		TemperatureOver: true,
		PulpRisk:        true,
		Tool:            alert.ToolOn,
	}, snap.Alert)
	require.Equal(t, []detect.Interval{{Start: 3, End: 5, Peak: 35}}, snap.Temp.Intervals)
	require.False(t, snap.HasPress)
}

func TestSnapshotIdempotent(t *testing.T) {
	s := New(DefaultConfig())
	ingestTemps(t, s, 33, 34, 36, 35, 37)

	a, b := s.Snapshot(), s.Snapshot()
	require.Equal(t, a, b)
}

func TestTemperatureAtLimit(t *testing.T) {
	s := New(DefaultConfig())
	snap := ingestTemps(t, s, alert.TempLimit)
	require.False(t, snap.Alert.TemperatureOver)
	require.Empty(t, snap.Temp.Intervals)
	require.Equal(t, alert.ToolUnknown, snap.Alert.Tool)
}

func TestEvictionKeepsWindow(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MaxPoints = 4
	s := New(cfg)

	snap := ingestTemps(t, s, 40, 40, 10, 10, 10, 33)
	require.Len(t, snap.Temp.Points, 4)
	require.Equal(t, []float64{10, 10, 10, 33}, snap.Temp.Values())
	require.Equal(t, []detect.Interval{{Start: 3, End: 3, Peak: 33}}, snap.Temp.Intervals)
	require.Equal(t, 6, snap.Tick)
}

func TestTwoChannelAlignment(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Pressure = true
	cfg.MaxPoints = 50
	s := New(cfg)

	base := time.Date(2026, 10, 19, 9, 0, 0, 0, time.UTC)
	accepted := 0
	for i := 0; i < 120; i++ {
		r := sensor.Reading{
			Index: i,
			Time:  base.Add(time.Duration(i) * 700 * time.Millisecond),
			Temp:  float64(i),
		}
		if i%7 != 3 {
			r.Press = float64(1000 + i)
			r.HasPress = true
		}
		_, ok := s.Ingest(r)
		require.Equal(t, r.HasPress, ok, "tick %d", i)
		if ok {
			accepted++
		}
	}

	snap := s.Snapshot()
	require.Equal(t, accepted, snap.Tick)
	require.Equal(t, 120-accepted, s.Dropped())
	require.True(t, snap.HasPress)
	require.Len(t, snap.Temp.Points, 50)
	require.Len(t, snap.Press.Points, 50)
	for i := range snap.Temp.Points {
		tp, pp := snap.Temp.Points[i], snap.Press.Points[i]
		require.Equal(t, tp.Time, pp.Time, "index %d", i)
		require.Equal(t, tp.Value+1000, pp.Value, "index %d", i)
	}
}

func TestPressureAlert(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Pressure = true
	s := New(cfg)

	snap, ok := s.Ingest(sensor.Reading{Temp: 30, Press: 1051, HasPress: true})
	require.True(t, ok)
	require.True(t, snap.Alert.PressureOver)
	require.Equal(t, []detect.Interval{{Start: 0, End: 0, Peak: 1051}}, snap.Press.Intervals)

	snap, _ = s.Ingest(sensor.Reading{Temp: 30, Press: 1050, HasPress: true})
	require.False(t, snap.Alert.PressureOver)
}

func TestDroppedTickKeepsSnapshot(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Pressure = true
	s := New(cfg)

	before, ok := s.Ingest(sensor.Reading{Temp: 33, Press: 1000, HasPress: true})
	require.True(t, ok)

	after, ok := s.Ingest(sensor.Reading{Temp: 50})
	require.False(t, ok)
	require.Equal(t, before, after)
	require.Equal(t, 1, s.Dropped())
}

func TestIndependentSessions(t *testing.T) {
	id := uuid.MustParse("6f1d3c0e-8a55-4c39-9a41-0e3c2b7d9a10")
	a := New(DefaultConfig(), WithID(id))
	b := New(DefaultConfig())

	require.Equal(t, id, a.ID())
	require.NotEqual(t, a.ID(), b.ID())

	ingestTemps(t, a, 36, 37)
	require.True(t, b.Snapshot().Empty())
	require.Equal(t, 2, a.Snapshot().Tick)
}
