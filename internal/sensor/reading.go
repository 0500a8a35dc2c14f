// Package sensor defines the reading produced by the replay feed and the
// parsing that turns raw spreadsheet cells or serial lines into readings.
// Anything that does not parse as a finite number is rejected here so it
// never reaches the rolling buffers.
package sensor

import (
	"fmt"
	"time"
)

// Reading is one tick of the synthetic feed.
type Reading struct {
	Index    int       // source row (1-based, header excluded)
	Time     time.Time // set when the feed emits the reading
	Temp     float64   // degrees Celsius
	Press    float64   // hPa, valid only when HasPress
	HasPress bool
}

func (r Reading) String() string {
	if r.HasPress {
		return fmt.Sprintf("#%d %.2f°C %.2fhPa", r.Index, r.Temp, r.Press)
	}
	return fmt.Sprintf("#%d %.2f°C", r.Index, r.Temp)
}
