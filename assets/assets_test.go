package assets

import (
	"testing"
	"testing/fstest"

	"github.com/machinelevel/sp433-pinup-weather/palette"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	b, err := Load()
	require.NoError(t, err)

	assert.Equal(t, []string{Battery, LargeDigits, MediumDigits, SmallDigits, Months, Weather, Weekdays}, b.Tables())

	for _, s := range Strips() {
		table, ok := b.Table(s.Name)
		require.True(t, ok, s.Name)
		assert.Equal(t, len(s.Keys), table.Len(), s.Name)
		assert.Equal(t, s.Markers, table.Markers(), s.Name)
		assert.Equal(t, s.Keys, table.Keys(), s.Name)
	}
}

func TestLoadGlyphShapes(t *testing.T) {
	b, err := Load()
	require.NoError(t, err)

	tables := []struct {
		table string
		key   string
		w, h  int
	}{
		{LargeDigits, "0", 30, 40},
		{LargeDigits, "1", 20, 40},
		{LargeDigits, "-", 20, 40},
		{MediumDigits, "8", 18, 24},
		{SmallDigits, "5", 12, 16},
		{Weekdays, "Wed", 40, 16},
		{Months, "Dec", 40, 16},
		{Battery, BatteryCase, 12, 56},
		{Battery, BatteryFill, 12, 3},
		{Weather, "rain", 64, 64},
	}

	for _, table := range tables {
		tab, ok := b.Table(table.table)
		require.True(t, ok)
		g, ok := tab.Lookup(table.key)
		require.True(t, ok, "%s/%s", table.table, table.key)
		assert.Equal(t, table.w, g.Width(), "%s/%s", table.table, table.key)
		assert.Equal(t, table.h, g.Height(), "%s/%s", table.table, table.key)
	}

	bg, ok := b.Icon(Background)
	require.True(t, ok)
	assert.Equal(t, 296, bg.Width())
	assert.Equal(t, 128, bg.Height())

	wind, ok := b.Icon(Wind)
	require.True(t, ok)
	assert.Equal(t, 24, wind.Width())

	_, ok = b.Icon("missing")
	assert.False(t, ok)
}

func TestArtworkHasInk(t *testing.T) {
	b, err := Load()
	require.NoError(t, err)

	for _, name := range b.Tables() {
		table, _ := b.Table(name)
		for i := 0; i < table.Len(); i++ {
			g, _ := table.Glyph(i)
			key, _ := table.Key(i)

			var ink int
			for y := 0; y < g.Height(); y++ {
				for x := 0; x < g.Width(); x++ {
					if g.Level(x, y) != palette.Transparent {
						ink++
					}
				}
			}
			assert.NotZero(t, ink, "%s/%s is blank", name, key)
		}
	}
}

func TestLoadFSMissing(t *testing.T) {
	_, err := LoadFS(fstest.MapFS{})
	assert.Error(t, err)
}
