package replay

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/luki/pulpwatch/internal/sensor"
)

func readings(n int) []sensor.Reading {
	out := make([]sensor.Reading, n)
	for i := range out {
		out[i] = sensor.Reading{Index: i + 1, Temp: 30 + float64(i)}
	}
	return out
}

func TestNext(t *testing.T) {
	base := time.Date(2026, 10, 19, 9, 0, 0, 0, time.UTC)
	calls := 0
	clock := func() time.Time {
		calls++
		return base.Add(time.Duration(calls) * DefaultInterval)
	}

	f := NewFeed(readings(3), DefaultInterval, WithClock(clock))
	require.Equal(t, 3, f.Len())

	for i := 0; i < 3; i++ {
		r, ok := f.Next()
		require.True(t, ok)
		require.Equal(t, i+1, r.Index)
		require.Equal(t, base.Add(time.Duration(i+1)*DefaultInterval), r.Time)
	}
	require.True(t, f.Done())

	_, ok := f.Next()
	require.False(t, ok)

	f.Reset()
	require.Equal(t, 0, f.Pos())
	r, ok := f.Next()
	require.True(t, ok)
	require.Equal(t, 1, r.Index)
}

func TestRunUnpaced(t *testing.T) {
	f := NewFeed(readings(50), 0)
	out := make(chan sensor.Reading)

	errc := make(chan error, 1)
	go func() { errc <- f.Run(context.Background(), out) }()

	var got []sensor.Reading
	for r := range out {
		got = append(got, r)
	}
	require.NoError(t, <-errc)
	require.Len(t, got, 50)
	for i, r := range got {
		require.Equal(t, i+1, r.Index)
		require.False(t, r.Time.IsZero())
	}
}

func TestRunPaced(t *testing.T) {
	f := NewFeed(readings(3), 5*time.Millisecond)
	out := make(chan sensor.Reading, 3)

	start := time.Now()
	require.NoError(t, f.Run(context.Background(), out))
	require.GreaterOrEqual(t, time.Since(start), 10*time.Millisecond)
	require.Len(t, out, 3)
}

func TestRunCancel(t *testing.T) {
	f := NewFeed(readings(1000), time.Hour)
	out := make(chan sensor.Reading, 1)

	ctx, cancel := context.WithCancel(context.Background())
	errc := make(chan error, 1)
	go func() { errc <- f.Run(ctx, out) }()

	r := <-out
	require.Equal(t, 1, r.Index)
	cancel()

	err := <-errc
	require.True(t, errors.Is(err, context.Canceled))
	_, open := <-out
	require.False(t, open)
}
