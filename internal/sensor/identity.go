package sensor

import (
	"errors"
	"strings"
)

// Channel names a measured quantity.
type Channel string

const (
	Temperature Channel = "temperature"
	Pressure    Channel = "pressure"
)

// Unit returns the display unit of a channel.
func (c Channel) Unit() string {
	switch c {
	case Temperature:
		return "°C"
	case Pressure:
		return "hPa"
	default:
		return ""
	}
}

// columnIdentityMap maps header prefixes to channels.
var columnIdentityMap = []struct {
	prefix  string
	channel Channel
}{
	{"temperatura", Temperature},
	{"temperature", Temperature},
	{"temp", Temperature},
	{"ntc", Temperature},
	{"t (", Temperature},
	{"presiune", Pressure},
	{"pressure", Pressure},
	{"press", Pressure},
	{"pres", Pressure},
	{"p (", Pressure},
}

// Identify guesses the channel of a column header.
func Identify(header string) (Channel, bool) {
	lower := strings.ToLower(strings.TrimSpace(header))
	for _, entry := range columnIdentityMap {
		if strings.HasPrefix(lower, entry.prefix) {
			return entry.channel, true
		}
	}
	return "", false
}

// ErrNoTemperature is returned when no header resolves to temperature.
var ErrNoTemperature = errors.New("no temperature column")

// Columns holds resolved column positions; -1 means absent.
type Columns struct {
	Temp  int
	Press int
}

// ResolveColumns locates the temperature and pressure columns in a header
// row. An exact (case-insensitive) match on the configured name wins;
// otherwise the first header identified as that channel is used. A
// pressName of "-" disables the pressure column.
func ResolveColumns(header []string, tempName, pressName string) (Columns, error) {
	cols := Columns{
		Temp:  findColumn(header, tempName, Temperature),
		Press: -1,
	}
	if pressName != "-" {
		cols.Press = findColumn(header, pressName, Pressure)
	}
	if cols.Temp < 0 {
		return cols, ErrNoTemperature
	}
	if cols.Press == cols.Temp {
		cols.Press = -1
	}
	return cols, nil
}

func findColumn(header []string, name string, ch Channel) int {
	if name != "" {
		for i, h := range header {
			if strings.EqualFold(strings.TrimSpace(h), strings.TrimSpace(name)) {
				return i
			}
		}
	}
	for i, h := range header {
		if c, ok := Identify(h); ok && c == ch {
			return i
		}
	}
	return -1
}
