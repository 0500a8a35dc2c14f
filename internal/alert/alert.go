// Package alert classifies the current rolling series into a discrete
// alert snapshot: over-temperature, over-pressure, pulp-chamber risk and
// inferred tool state.
package alert

import (
	"strings"

	"github.com/luki/pulpwatch/internal/detect"
)

// Default limits.
const (
	TempLimit          = 32.0
	PressLimit         = 1050.0
	PulpTempLimit      = 35.0
	RapidWindow        = 5
	RapidTempThreshold = 1.0
)

// Limits are the fixed thresholds used by Classify.
type Limits struct {
	Temp               float64
	Press              float64
	PulpTemp           float64
	RapidWindow        int
	RapidTempThreshold float64
}

// DefaultLimits returns the documented default limits.
func DefaultLimits() Limits {
	return Limits{
		Temp:               TempLimit,
		Press:              PressLimit,
		PulpTemp:           PulpTempLimit,
		RapidWindow:        RapidWindow,
		RapidTempThreshold: RapidTempThreshold,
	}
}

// ToolState is the equipment state inferred from the temperature trend.
type ToolState int

const (
	ToolUnknown ToolState = iota
	ToolOn
	ToolOff
)

func (t ToolState) String() string {
	switch t {
	case ToolOn:
		return "on"
	case ToolOff:
		return "off"
	default:
		return "unknown"
	}
}

// State is the alert snapshot for one tick.
type State struct {
	TemperatureOver bool
	PressureOver    bool
	PulpRisk        bool
	Tool            ToolState
}

// Active returns the names of the raised alerts, in a fixed order.
func (s State) Active() []string {
	var out []string
	if s.TemperatureOver {
		out = append(out, "temperature")
	}
	if s.PressureOver {
		out = append(out, "pressure")
	}
	if s.PulpRisk {
		out = append(out, "pulp")
	}
	return out
}

func (s State) String() string {
	active := s.Active()
	if len(active) == 0 {
		return "ok tool=" + s.Tool.String()
	}
	return strings.Join(active, ",") + " tool=" + s.Tool.String()
}

// Classify computes the alert state from the temperature history and an
// optional pressure history (nil when the pressure channel is absent).
// It is a pure function of its inputs.
func Classify(l Limits, temp, press detect.History) State {
	var s State

	if t, ok := latest(temp); ok {
		s.TemperatureOver = t > l.Temp
		s.PulpRisk = t >= l.PulpTemp &&
			detect.RisingFast(temp, l.RapidWindow, l.RapidTempThreshold)
	}
	if p, ok := latest(press); ok {
		s.PressureOver = p > l.Press
	}

	if d, ok := detect.Delta(temp, l.RapidWindow); ok {
		switch {
		case d > 0:
			s.Tool = ToolOn
		case d < 0:
			s.Tool = ToolOff
		}
	}
	return s
}

func latest(h detect.History) (float64, bool) {
	if h == nil {
		return 0, false
	}
	return h.At(0)
}
