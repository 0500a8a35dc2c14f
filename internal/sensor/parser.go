package sensor

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

// ErrMalformed marks a row or line whose temperature is missing or not a
// finite number.
var ErrMalformed = errors.New("malformed reading")

var valueRe = regexp.MustCompile(`^([+-]?\d+(?:[.,]\d+)?(?:[eE][+-]?\d+)?)\s*(?:°C|°|C|hPa|mbar)?$`)

// ParseValue parses a single cell. Decimal commas and a trailing unit are
// accepted; empty cells, text, NaN and infinities are not.
func ParseValue(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	m := valueRe.FindStringSubmatch(s)
	if m == nil {
		return 0, false
	}
	v, err := strconv.ParseFloat(strings.Replace(m[1], ",", ".", 1), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

// ParseRow builds a reading from one spreadsheet row. The temperature cell
// is required; an unparsable pressure cell leaves HasPress false.
func ParseRow(row []string, cols Columns, index int) (Reading, error) {
	r := Reading{Index: index}

	if cols.Temp < 0 || cols.Temp >= len(row) {
		return r, fmt.Errorf("row %d: %w: temperature cell missing", index, ErrMalformed)
	}
	t, ok := ParseValue(row[cols.Temp])
	if !ok {
		return r, fmt.Errorf("row %d: %w: temperature %q", index, ErrMalformed, row[cols.Temp])
	}
	r.Temp = t

	if cols.Press >= 0 && cols.Press < len(row) {
		r.Press, r.HasPress = ParseValue(row[cols.Press])
	}
	return r, nil
}

// ParseLine parses a serial-style "temp[,press]" line.
func ParseLine(line string) (Reading, error) {
	fields := strings.Split(strings.TrimSpace(line), ",")
	cols := Columns{Temp: 0, Press: -1}
	if len(fields) > 1 {
		cols.Press = 1
	}
	return ParseRow(fields, cols, 0)
}
