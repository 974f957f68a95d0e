/*
Package compose lays out a weather snapshot and a battery reading as an
ordered list of glyph draws for the pinup panel.

Compositing performs no I/O and never blocks. Missing snapshot fields are
simply left out of the frame; only a glyph missing from the asset bundle is
an error.
*/
package compose

import (
	"fmt"
	"image"
	"math"
)

// Battery voltage range mapped onto the gauge
const (
	EmptyVolts = 2.9
	FullVolts  = 4.2
)

// Layout holds the fixed pixel positions of every widget. Stacked widgets
// are placed with a running offset from their anchor, so only the anchor of
// each group is configured.
type Layout struct {
	Size image.Point // panel size in pixels

	Icon      image.Point // weather icon
	Temp      image.Point // current temperature, large digits
	FeelsLike image.Point // apparent temperature, medium digits

	// Clock is the top of the weekday, hour, minute and date stack; ClockGap
	// separates each element of the stack.
	Clock    image.Point
	ClockGap int

	// Wind is the wind icon; the speed follows it WindGap pixels to the right.
	Wind    image.Point
	WindGap int

	// Battery is the top-left of the gauge case. Fill segments stack upwards
	// from BatteryBase pixels below it.
	Battery         image.Point
	BatteryBase     int
	BatterySegments int
}

// DefaultLayout is the pinup design for a 296x128 landscape panel.
var DefaultLayout = Layout{
	Size:            image.Pt(296, 128),
	Icon:            image.Pt(8, 12),
	Temp:            image.Pt(80, 10),
	FeelsLike:       image.Pt(88, 56),
	Clock:           image.Pt(226, 8),
	ClockGap:        3,
	Wind:            image.Pt(8, 92),
	WindGap:         4,
	Battery:         image.Pt(280, 36),
	BatteryBase:     54,
	BatterySegments: 16,
}

// BatteryFraction maps a battery voltage linearly onto [0, 1], empty at
// EmptyVolts and full at FullVolts.
func BatteryFraction(volts float64) float64 {
	return clamp((volts - EmptyVolts) / (FullVolts - EmptyVolts))
}

func clamp(f float64) float64 {
	switch {
	case math.IsNaN(f), f < 0:
		return 0
	case f > 1:
		return 1
	default:
		return f
	}
}

// Segments returns the number of fill segments drawn for fraction.
func (l Layout) Segments(fraction float64) int {
	return int(math.RoundToEven(float64(l.BatterySegments) * clamp(fraction)))
}

// LayoutError reports a glyph the layout needs but the bundle lacks. It is an
// asset problem, not a data problem.
type LayoutError struct {
	Table string
	Key   string
}

func (e *LayoutError) Error() string {
	if e.Key == "" {
		return fmt.Sprintf("compose: no table %q", e.Table)
	}
	return fmt.Sprintf("compose: table %q has no glyph %q", e.Table, e.Key)
}
