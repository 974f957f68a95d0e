/*
Package weather holds the rendering relevant subset of a current weather
observation, and a small client for fetching it from OpenWeatherMap.
*/
package weather

import (
	"database/sql"
	"math"
	"time"
)

// MinWindMPH is the slowest wind speed worth drawing
const MinWindMPH = 2

// windFactor converts m/s to mph. The upstream field is already requested in
// metric units, so whether this converts once or twice depends on the
// provider; it is applied as-is.
const windFactor = 0.621371

// Snapshot is the last successfully fetched weather. A nil *Snapshot means no
// data has been fetched yet. Optional fields are independently absent.
type Snapshot struct {
	Temp      sql.NullInt64  // current temperature, °C
	FeelsLike sql.NullInt64  // apparent temperature, °C
	Icon      sql.NullString // provider icon code, e.g. "10d"
	WindMPH   int

	// Local time of the observation
	Hour    int // 0-23
	Minute  int // 0-59
	Weekday int // 0-6, Monday is 0
	Month   int // 1-12, 0 if unknown
	Day     int // 1-31, 0 if unknown
}

// SetUpdated fills the time fields from t, using t's location.
func (s *Snapshot) SetUpdated(t time.Time) {
	s.Hour = t.Hour()
	s.Minute = t.Minute()
	s.Weekday = (int(t.Weekday()) + 6) % 7
	s.Month = int(t.Month())
	s.Day = t.Day()
}

// Wind reports whether the wind is strong enough to draw.
func (s *Snapshot) Wind() bool {
	return s.WindMPH >= MinWindMPH
}

// HasDate reports whether the month and day are known.
func (s *Snapshot) HasDate() bool {
	return s.Month >= 1 && s.Month <= 12 && s.Day >= 1 && s.Day <= 31
}

// round rounds halves to even
func round(f float64) int64 {
	return int64(math.RoundToEven(f))
}

// WindMPH converts a reported wind speed using the literal device formula.
func WindMPH(speed float64) int {
	return int(round(speed * windFactor))
}

// Report mirrors the parts of the OpenWeatherMap current weather payload the
// display uses.
type Report struct {
	Main struct {
		Temp      *float64 `json:"temp"`
		FeelsLike *float64 `json:"feels_like"`
	} `json:"main"`
	Weather []struct {
		Icon        string `json:"icon"`
		Description string `json:"description"`
	} `json:"weather"`
	Wind struct {
		Speed float64 `json:"speed"`
	} `json:"wind"`
	Dt       int64  `json:"dt"`       // observation time, Unix seconds
	Timezone int64  `json:"timezone"` // seconds east of UTC
	Name     string `json:"name"`
}

// Snapshot converts the report. If the report carries no observation time,
// now is used instead.
func (r *Report) Snapshot(now time.Time) *Snapshot {
	s := &Snapshot{
		WindMPH: WindMPH(r.Wind.Speed),
	}
	if r.Main.Temp != nil {
		s.Temp = sql.NullInt64{Int64: round(*r.Main.Temp), Valid: true}
	}
	if r.Main.FeelsLike != nil {
		s.FeelsLike = sql.NullInt64{Int64: round(*r.Main.FeelsLike), Valid: true}
	}
	if len(r.Weather) > 0 && r.Weather[0].Icon != "" {
		s.Icon = sql.NullString{String: r.Weather[0].Icon, Valid: true}
	}

	dt := r.Dt
	if dt == 0 {
		dt = now.Unix()
	}
	s.SetUpdated(time.Unix(dt+r.Timezone, 0).UTC())

	return s
}
