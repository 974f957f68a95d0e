/*
Package assets bundles the pinup artwork and the fixed symbol tables used to
slice it.

Every strip ships as an 8-bit paletted BMP. The marker and key lists below
are the authoritative description of each strip and must be kept in step
with the artwork.
*/
package assets

import (
	"embed"
	"fmt"
	"image"
	"io/fs"
	"sort"

	"github.com/machinelevel/sp433-pinup-weather/atlas"
)

//go:embed *.bmp
var files embed.FS

// Table names
const (
	LargeDigits  = "digits_large"
	MediumDigits = "digits_medium"
	SmallDigits  = "digits_small"
	Weekdays     = "weekday"
	Months       = "month"
	Battery      = "battery"
	Weather      = "weather"
)

// Icon names
const (
	Background = "background"
	Wind       = "wind"
)

// Battery keys
const (
	BatteryCase = "case"
	BatteryFill = "fill"
)

var digitKeys = []string{"0", "1", "2", "3", "4", "5", "6", "7", "8", "9", "-"}

// WeekdayKeys are in Monday-first order
var WeekdayKeys = []string{"Mon", "Tue", "Wed", "Thu", "Fri", "Sat", "Sun"}

// MonthKeys are in calendar order, January first
var MonthKeys = []string{"Jan", "Feb", "Mar", "Apr", "May", "Jun", "Jul", "Aug", "Sep", "Oct", "Nov", "Dec"}

// WeatherKeys name the distinct weather artwork, in strip order
var WeatherKeys = []string{
	"clear-day",
	"clear-night",
	"few-clouds-day",
	"few-clouds-night",
	"clouds",
	"rain",
	"thunderstorm",
	"snow",
	"mist",
}

func evenMarkers(n, size int) []int {
	m := make([]int, n+1)
	for i := range m {
		m[i] = i * size
	}
	return m
}

var strips = []atlas.Strip{
	{
		Name:    LargeDigits,
		Axis:    atlas.Columns,
		Markers: []int{0, 30, 50, 80, 110, 140, 170, 200, 230, 260, 290, 310},
		Keys:    digitKeys,
	},
	{
		Name:    MediumDigits,
		Axis:    atlas.Columns,
		Markers: []int{0, 18, 30, 48, 66, 84, 102, 120, 138, 156, 174, 186},
		Keys:    digitKeys,
	},
	{
		Name:    SmallDigits,
		Axis:    atlas.Columns,
		Markers: []int{0, 12, 20, 32, 44, 56, 68, 80, 92, 104, 116, 124},
		Keys:    digitKeys,
	},
	{
		Name:    Weekdays,
		Axis:    atlas.Rows,
		Markers: evenMarkers(len(WeekdayKeys), 16),
		Keys:    WeekdayKeys,
	},
	{
		Name:    Months,
		Axis:    atlas.Rows,
		Markers: evenMarkers(len(MonthKeys), 16),
		Keys:    MonthKeys,
	},
	{
		Name:    Battery,
		Axis:    atlas.Rows,
		Markers: []int{0, 56, 59},
		Keys:    []string{BatteryCase, BatteryFill},
	},
	{
		Name:    Weather,
		Axis:    atlas.Rows,
		Markers: evenMarkers(len(WeatherKeys), 64),
		Keys:    WeatherKeys,
	},
}

var icons = []string{Background, Wind}

// Strips returns the descriptions of every shipped strip.
func Strips() []atlas.Strip {
	return append([]atlas.Strip(nil), strips...)
}

// Bundle is the full set of decoded glyph tables and icons. It is built once
// and never modified, so it may be shared freely.
type Bundle struct {
	tables map[string]*atlas.Table
	icons  map[string]*atlas.Glyph
}

// Table returns the glyph table decoded from the named strip.
func (b *Bundle) Table(name string) (*atlas.Table, bool) {
	t, ok := b.tables[name]
	return t, ok
}

// Icon returns the named standalone icon.
func (b *Bundle) Icon(name string) (*atlas.Glyph, bool) {
	g, ok := b.icons[name]
	return g, ok
}

// Tables returns the names of every table, sorted
func (b *Bundle) Tables() []string {
	names := make([]string, 0, len(b.tables))
	for n := range b.tables {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

func read(fsys fs.FS, name string) (*image.Paletted, error) {
	f, err := fsys.Open(name + ".bmp")
	if err != nil {
		return nil, fmt.Errorf("assets: %w", err)
	}
	defer f.Close()

	return atlas.Read(name, f)
}

// LoadFS decodes every strip and icon found in fsys.
func LoadFS(fsys fs.FS) (*Bundle, error) {
	b := &Bundle{
		tables: make(map[string]*atlas.Table, len(strips)),
		icons:  make(map[string]*atlas.Glyph, len(icons)),
	}

	for _, s := range strips {
		m, err := read(fsys, s.Name)
		if err != nil {
			return nil, err
		}
		t, err := atlas.DecodeStrip(m, s)
		if err != nil {
			return nil, err
		}
		b.tables[s.Name] = t
	}

	for _, name := range icons {
		m, err := read(fsys, name)
		if err != nil {
			return nil, err
		}
		g, err := atlas.DecodeIcon(name, m)
		if err != nil {
			return nil, err
		}
		b.icons[name] = g
	}

	return b, nil
}

// Load decodes the embedded artwork.
func Load() (*Bundle, error) {
	return LoadFS(files)
}
