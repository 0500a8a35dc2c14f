package alert

import (
	"reflect"
	"testing"

	"github.com/luki/pulpwatch/internal/detect"
)

func TestClassify(t *testing.T) {
	l := DefaultLimits()

	tests := []struct {
		name  string
		temp  []float64
		press []float64
		want  State
	}{
		{
			name: "pulp risk while rising",
			temp: []float64{31, 32, 33, 34, 35},
			want: State{TemperatureOver: true, PulpRisk: true, Tool: ToolOn},
		},
		{
			name: "at temperature limit",
			temp: []float64{32, 32, 32, 32, 32},
			want: State{Tool: ToolUnknown},
		},
		{
			name: "hot but falling",
			temp: []float64{38, 37, 37, 36, 36},
			want: State{TemperatureOver: true, Tool: ToolOff},
		},
		{
			name: "hot but slow rise",
			temp: []float64{35, 35, 35, 35, 35.5},
			want: State{TemperatureOver: true, Tool: ToolOn},
		},
		{
			name: "insufficient history",
			temp: []float64{36, 40},
			want: State{TemperatureOver: true, Tool: ToolUnknown},
		},
		{
			name:  "pressure over",
			temp:  []float64{30},
			press: []float64{1050.5},
			want:  State{PressureOver: true},
		},
		{
			name:  "pressure at limit",
			temp:  []float64{30},
			press: []float64{1050},
			want:  State{},
		},
		{
			name: "empty",
			want: State{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var press detect.History
			if tt.press != nil {
				press = detect.Samples(tt.press)
			}
			got := Classify(l, detect.Samples(tt.temp), press)
			if got != tt.want {
				t.Errorf("Classify: got %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestClassifyIdempotent(t *testing.T) {
	temp := detect.Samples{30, 31, 33, 34, 35}
	a := Classify(DefaultLimits(), temp, nil)
	b := Classify(DefaultLimits(), temp, nil)
	if a != b {
		t.Errorf("repeat classification differs: %+v vs %+v", a, b)
	}
}

func TestStateActive(t *testing.T) {
	s := State{TemperatureOver: true, PulpRisk: true, Tool: ToolOn}
	want := []string{"temperature", "pulp"}
	if got := s.Active(); !reflect.DeepEqual(got, want) {
		t.Errorf("Active: got %v, want %v", got, want)
	}
	if got := s.String(); got != "temperature,pulp tool=on" {
		t.Errorf("String: got %q", got)
	}
	if got := (State{}).String(); got != "ok tool=unknown" {
		t.Errorf("String: got %q", got)
	}
}
