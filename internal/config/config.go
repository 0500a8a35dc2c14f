// Package config holds the tunable thresholds, buffer size, pacing and
// dataset columns. Values come from defaults, then an optional YAML file,
// then command-line flags.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"

	"github.com/luki/pulpwatch/internal/alert"
	"github.com/luki/pulpwatch/internal/dataset"
	"github.com/luki/pulpwatch/internal/replay"
	"github.com/luki/pulpwatch/internal/series"
	"github.com/luki/pulpwatch/internal/session"
)

// ErrInvalid wraps validation failures.
var ErrInvalid = errors.New("invalid configuration")

// Config is the full runtime configuration.
type Config struct {
	MaxPoints          int           `yaml:"max_points" validate:"gte=2,lte=100000"`
	TempLimit          float64       `yaml:"temp_limit"`
	PressLimit         float64       `yaml:"press_limit" validate:"gt=0"`
	PulpTempLimit      float64       `yaml:"pulp_temp_limit"`
	RapidWindow        int           `yaml:"rapid_window" validate:"gte=2,ltefield=MaxPoints"`
	RapidTempThreshold float64       `yaml:"rapid_temp_threshold" validate:"gt=0"`
	Interval           time.Duration `yaml:"interval" validate:"gte=0"`
	TempColumn         string        `yaml:"temp_column"`
	PressColumn        string        `yaml:"press_column"`
	Pressure           string        `yaml:"pressure" validate:"oneof=auto on off"`
	Sheet              string        `yaml:"sheet"`
}

// Default returns the documented defaults.
func Default() Config {
	return Config{
		MaxPoints:          series.MaxPoints,
		TempLimit:          alert.TempLimit,
		PressLimit:         alert.PressLimit,
		PulpTempLimit:      alert.PulpTempLimit,
		RapidWindow:        alert.RapidWindow,
		RapidTempThreshold: alert.RapidTempThreshold,
		Interval:           replay.DefaultInterval,
		TempColumn:         dataset.DefaultTempColumn,
		Pressure:           "auto",
	}
}

// Load reads path (if not empty) over the defaults and validates.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, cfg.Validate()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, cfg.Validate()
}

var validate = validator.New()

// Validate checks field constraints.
func (c Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	return nil
}

// Limits returns the alert limits.
func (c Config) Limits() alert.Limits {
	return alert.Limits{
		Temp:               c.TempLimit,
		Press:              c.PressLimit,
		PulpTemp:           c.PulpTempLimit,
		RapidWindow:        c.RapidWindow,
		RapidTempThreshold: c.RapidTempThreshold,
	}
}

// DatasetOptions returns the loader options. Pressure "off" disables the
// pressure column.
func (c Config) DatasetOptions() dataset.Options {
	opts := dataset.Options{
		TempColumn:  c.TempColumn,
		PressColumn: c.PressColumn,
		Sheet:       c.Sheet,
	}
	if c.Pressure == "off" {
		opts.PressColumn = "-"
	}
	return opts
}

// Session returns the session configuration for a loaded dataset.
// Pressure "on" requires the dataset to carry a pressure column.
func (c Config) Session(ds *dataset.Dataset) (session.Config, error) {
	sc := session.Config{
		MaxPoints: c.MaxPoints,
		Limits:    c.Limits(),
	}
	switch c.Pressure {
	case "on":
		if !ds.HasPressure() {
			return sc, fmt.Errorf("%w: pressure enabled but %s has no pressure column", ErrInvalid, ds.Path)
		}
		sc.Pressure = true
	case "auto":
		sc.Pressure = ds.HasPressure()
	}
	return sc, nil
}

// Flags binds command-line overrides. Call Apply after parsing.
type Flags struct {
	fs  *pflag.FlagSet
	val Config
}

// BindFlags registers the override flags on fs.
func BindFlags(fs *pflag.FlagSet) *Flags {
	f := &Flags{fs: fs}
	d := Default()
	fs.IntVar(&f.val.MaxPoints, "max-points", d.MaxPoints, "samples kept per channel")
	fs.Float64Var(&f.val.TempLimit, "temp-limit", d.TempLimit, "temperature alert limit (°C, strict)")
	fs.Float64Var(&f.val.PressLimit, "press-limit", d.PressLimit, "pressure alert limit (hPa, strict)")
	fs.Float64Var(&f.val.PulpTempLimit, "pulp-temp-limit", d.PulpTempLimit, "pulp-chamber temperature (°C, inclusive)")
	fs.IntVar(&f.val.RapidWindow, "rapid-window", d.RapidWindow, "samples in the rapid-rise window")
	fs.Float64Var(&f.val.RapidTempThreshold, "rapid-threshold", d.RapidTempThreshold, "rise over the window that counts as rapid (°C)")
	fs.DurationVar(&f.val.Interval, "interval", d.Interval, "delay between replayed rows")
	fs.StringVar(&f.val.TempColumn, "temp-column", d.TempColumn, "temperature column header")
	fs.StringVar(&f.val.PressColumn, "press-column", d.PressColumn, "pressure column header")
	fs.StringVar(&f.val.Pressure, "pressure", d.Pressure, "pressure channel: auto, on or off")
	fs.StringVar(&f.val.Sheet, "sheet", d.Sheet, "workbook sheet (default first)")
	return f
}

// Apply copies every flag the user set onto cfg and revalidates.
func (f *Flags) Apply(cfg *Config) error {
	set := map[string]func(){
		"max-points":      func() { cfg.MaxPoints = f.val.MaxPoints },
		"temp-limit":      func() { cfg.TempLimit = f.val.TempLimit },
		"press-limit":     func() { cfg.PressLimit = f.val.PressLimit },
		"pulp-temp-limit": func() { cfg.PulpTempLimit = f.val.PulpTempLimit },
		"rapid-window":    func() { cfg.RapidWindow = f.val.RapidWindow },
		"rapid-threshold": func() { cfg.RapidTempThreshold = f.val.RapidTempThreshold },
		"interval":        func() { cfg.Interval = f.val.Interval },
		"temp-column":     func() { cfg.TempColumn = f.val.TempColumn },
		"press-column":    func() { cfg.PressColumn = f.val.PressColumn },
		"pressure":        func() { cfg.Pressure = f.val.Pressure },
		"sheet":           func() { cfg.Sheet = f.val.Sheet },
	}
	// Flags may be parsed through a child command's merged set, so check
	// Changed instead of relying on Visit.
	f.fs.VisitAll(func(fl *pflag.Flag) {
		if apply, ok := set[fl.Name]; ok && fl.Changed {
			apply()
		}
	})
	return cfg.Validate()
}
