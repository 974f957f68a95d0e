package compose

import (
	"database/sql"
	"errors"
	"image"
	"testing"

	"github.com/machinelevel/sp433-pinup-weather/assets"
	"github.com/machinelevel/sp433-pinup-weather/atlas"
	"github.com/machinelevel/sp433-pinup-weather/weather"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func loadBundle(t *testing.T) *assets.Bundle {
	t.Helper()
	b, err := assets.Load()
	require.NoError(t, err)
	return b
}

// without hides tables or icons from a bundle
type without struct {
	*assets.Bundle
	tables map[string]bool
	icons  map[string]bool
}

func (w without) Table(name string) (*atlas.Table, bool) {
	if w.tables[name] {
		return nil, false
	}
	return w.Bundle.Table(name)
}

func (w without) Icon(name string) (*atlas.Glyph, bool) {
	if w.icons[name] {
		return nil, false
	}
	return w.Bundle.Icon(name)
}

type draw struct {
	source, key string
	at          image.Point
}

func draws(f *Frame) []draw {
	d := make([]draw, len(f.Commands))
	for i, c := range f.Commands {
		d[i] = draw{c.Source, c.Key, c.At}
	}
	return d
}

func sources(f *Frame) map[string]int {
	m := make(map[string]int)
	for _, c := range f.Commands {
		m[c.Source]++
	}
	return m
}

func scenario() *weather.Snapshot {
	return &weather.Snapshot{
		Temp:      sql.NullInt64{Int64: -8, Valid: true},
		FeelsLike: sql.NullInt64{Int64: -12, Valid: true},
		Icon:      sql.NullString{String: "10d", Valid: true},
		WindMPH:   5,
		Hour:      14,
		Minute:    5,
		Weekday:   2,
	}
}

func TestComposeScenario(t *testing.T) {
	b := loadBundle(t)

	f, err := Compose(scenario(), BatteryFraction(3.55), b)
	require.NoError(t, err)
	assert.Equal(t, image.Pt(296, 128), f.Size)

	want := []draw{
		{IconSource, assets.Background, image.Pt(0, 0)},
		// large digits, '-' is 20 wide
		{assets.LargeDigits, "-", image.Pt(80, 10)},
		{assets.LargeDigits, "8", image.Pt(100, 10)},
		// medium digits, '-' and '1' are 12 wide
		{assets.MediumDigits, "-", image.Pt(88, 56)},
		{assets.MediumDigits, "1", image.Pt(100, 56)},
		{assets.MediumDigits, "2", image.Pt(112, 56)},
		// weekday, then hour and minute each 16 tall with a 3 pixel gap
		{assets.Weekdays, "Wed", image.Pt(226, 8)},
		{assets.SmallDigits, "1", image.Pt(226, 27)},
		{assets.SmallDigits, "4", image.Pt(234, 27)},
		{assets.SmallDigits, "0", image.Pt(226, 46)},
		{assets.SmallDigits, "5", image.Pt(238, 46)},
		{assets.Weather, "rain", image.Pt(8, 12)},
		{IconSource, assets.Wind, image.Pt(8, 92)},
		{assets.MediumDigits, "5", image.Pt(36, 92)},
		{assets.Battery, assets.BatteryCase, image.Pt(280, 36)},
	}
	for y := 87; y >= 66; y -= 3 {
		want = append(want, draw{assets.Battery, assets.BatteryFill, image.Pt(280, y)})
	}

	assert.Equal(t, want, draws(f))
}

func TestComposeNoSnapshot(t *testing.T) {
	b := loadBundle(t)

	for _, volts := range []float64{0, 2.9, 3.55, 4.2, 5} {
		f, err := Compose(nil, BatteryFraction(volts), b)
		require.NoError(t, err)

		require.NotEmpty(t, f.Commands)
		assert.Equal(t, assets.Background, f.Commands[0].Key)

		got := sources(f)
		assert.Len(t, got, 2, "only background and battery")
		assert.Equal(t, 1, got[IconSource])
		assert.Equal(t, 1+DefaultLayout.Segments(BatteryFraction(volts)), got[assets.Battery])
	}
}

func TestComposeWindBoundary(t *testing.T) {
	b := loadBundle(t)

	hasWind := func(mph int) bool {
		s := scenario()
		s.WindMPH = mph
		f, err := Compose(s, 1, b)
		require.NoError(t, err)
		for _, c := range f.Commands {
			if c.Source == IconSource && c.Key == assets.Wind {
				return true
			}
		}
		return false
	}

	assert.False(t, hasWind(0))
	assert.False(t, hasWind(1))
	assert.True(t, hasWind(2))
	assert.True(t, hasWind(25))
}

func TestComposeUnknownIcon(t *testing.T) {
	b := loadBundle(t)

	unknown := scenario()
	unknown.Icon = sql.NullString{String: "99x", Valid: true}
	absent := scenario()
	absent.Icon = sql.NullString{}

	f1, err := Compose(unknown, 0.5, b)
	require.NoError(t, err)
	f2, err := Compose(absent, 0.5, b)
	require.NoError(t, err)

	assert.Equal(t, f2, f1)
	assert.Zero(t, sources(f1)[assets.Weather])
}

func TestComposeIconCodes(t *testing.T) {
	b := loadBundle(t)

	tables := []struct {
		code string
		key  string
	}{
		{"01d", "clear-day"},
		{"01n", "clear-night"},
		{"02d", "few-clouds-day"},
		{"02n", "few-clouds-night"},
		{"03n", "clouds"},
		{"04d", "clouds"},
		{"09n", "rain"},
		{"10n", "rain"},
		{"11d", "thunderstorm"},
		{"13n", "snow"},
		{"50d", "mist"},
	}

	for _, table := range tables {
		s := scenario()
		s.Icon = sql.NullString{String: table.code, Valid: true}
		f, err := Compose(s, 0, b)
		require.NoError(t, err)

		var found bool
		for _, c := range f.Commands {
			if c.Source == assets.Weather {
				assert.Equal(t, table.key, c.Key, table.code)
				found = true
			}
		}
		assert.True(t, found, table.code)
	}
	assert.Len(t, iconIndex, 18)
}

func TestComposePartialSnapshot(t *testing.T) {
	b := loadBundle(t)

	s := &weather.Snapshot{
		FeelsLike: sql.NullInt64{Int64: 3, Valid: true},
		Hour:      9,
		Minute:    30,
		Weekday:   6,
		Month:     1,
		Day:       24,
	}
	f, err := Compose(s, 0, b)
	require.NoError(t, err)

	got := sources(f)
	assert.Zero(t, got[assets.LargeDigits])
	assert.Equal(t, 1, got[assets.MediumDigits])
	assert.Zero(t, got[assets.Weather])
	assert.Equal(t, 1, got[IconSource], "no wind icon")
	assert.Equal(t, 1, got[assets.Months])

	d := draws(f)
	assert.Contains(t, d, draw{assets.Weekdays, "Sun", image.Pt(226, 8)})
	// hour is not padded, minute is
	assert.Contains(t, d, draw{assets.SmallDigits, "9", image.Pt(226, 27)})
	assert.Contains(t, d, draw{assets.SmallDigits, "3", image.Pt(226, 46)})
	assert.Contains(t, d, draw{assets.SmallDigits, "0", image.Pt(238, 46)})
	// date follows the minute row after a double gap
	assert.Contains(t, d, draw{assets.Months, "Jan", image.Pt(226, 68)})
	assert.Contains(t, d, draw{assets.SmallDigits, "2", image.Pt(226, 87)})
	assert.Contains(t, d, draw{assets.SmallDigits, "4", image.Pt(238, 87)})
}

func TestComposeStacksDoNotOverlap(t *testing.T) {
	b := loadBundle(t)

	s := scenario()
	s.Month, s.Day = 12, 31
	f, err := Compose(s, 1, b)
	require.NoError(t, err)

	// Skip the background, everything else must be disjoint and on the panel
	panel := image.Rectangle{Max: f.Size}
	cmds := f.Commands[1:]
	for i, a := range cmds {
		assert.True(t, a.Bounds().In(panel), "%s/%s at %v", a.Source, a.Key, a.At)
		for _, c := range cmds[i+1:] {
			if a.Source == assets.Battery && c.Source == assets.Battery {
				// fills sit inside the case
				continue
			}
			assert.False(t, a.Bounds().Overlaps(c.Bounds()), "%s/%s overlaps %s/%s", a.Source, a.Key, c.Source, c.Key)
		}
	}
}

func TestComposeLayoutErrors(t *testing.T) {
	b := loadBundle(t)

	tables := []struct {
		name   string
		glyphs Glyphs
		table  string
	}{
		{"background", without{Bundle: b, icons: map[string]bool{assets.Background: true}}, IconSource},
		{"battery", without{Bundle: b, tables: map[string]bool{assets.Battery: true}}, assets.Battery},
		{"large digits", without{Bundle: b, tables: map[string]bool{assets.LargeDigits: true}}, assets.LargeDigits},
		{"weekday", without{Bundle: b, tables: map[string]bool{assets.Weekdays: true}}, assets.Weekdays},
		{"weather", without{Bundle: b, tables: map[string]bool{assets.Weather: true}}, assets.Weather},
		{"wind", without{Bundle: b, icons: map[string]bool{assets.Wind: true}}, IconSource},
	}

	for _, table := range tables {
		t.Run(table.name, func(t *testing.T) {
			_, err := Compose(scenario(), 0.5, table.glyphs)
			var le *LayoutError
			require.True(t, errors.As(err, &le), "%v", err)
			assert.Equal(t, table.table, le.Table)
		})
	}

	// Without a snapshot only the background and battery are required
	_, err := Compose(nil, 0.5, without{Bundle: b, tables: map[string]bool{assets.LargeDigits: true}})
	assert.NoError(t, err)
}

func TestComposeMissingDigit(t *testing.T) {
	m := image.NewPaletted(image.Rect(0, 0, 4, 4), nil)
	m.Palette = append(m.Palette, image.Black.C)
	small, err := atlas.DecodeStrip(m, atlas.Strip{Name: assets.LargeDigits, Axis: atlas.Columns, Markers: []int{0, 4}, Keys: []string{"1"}})
	require.NoError(t, err)

	b := loadBundle(t)
	g := replaced{Bundle: b, name: assets.LargeDigits, table: small}

	_, err = Compose(scenario(), 0, g)
	var le *LayoutError
	require.True(t, errors.As(err, &le))
	assert.Equal(t, LayoutError{Table: assets.LargeDigits, Key: "-"}, *le)
	assert.Contains(t, le.Error(), `"-"`)
}

type replaced struct {
	*assets.Bundle
	name  string
	table *atlas.Table
}

func (r replaced) Table(name string) (*atlas.Table, bool) {
	if name == r.name {
		return r.table, true
	}
	return r.Bundle.Table(name)
}
