package compose

import (
	"fmt"
	"image"
	"strconv"

	"github.com/machinelevel/sp433-pinup-weather/assets"
	"github.com/machinelevel/sp433-pinup-weather/atlas"
	"github.com/machinelevel/sp433-pinup-weather/weather"
)

// Glyphs is the read-only source of glyph tables and icons. *assets.Bundle
// implements it.
type Glyphs interface {
	Table(name string) (*atlas.Table, bool)
	Icon(name string) (*atlas.Glyph, bool)
}

// iconIndex maps provider icon codes to weather strip ordinals. Several
// conditions share artwork.
var iconIndex = map[string]int{
	"01d": 0, "01n": 1, // clear sky
	"02d": 2, "02n": 3, // few clouds
	"03d": 4, "03n": 4, // scattered clouds
	"04d": 4, "04n": 4, // broken clouds
	"09d": 5, "09n": 5, // shower rain
	"10d": 5, "10n": 5, // rain
	"11d": 6, "11n": 6, // thunderstorm
	"13d": 7, "13n": 7, // snow
	"50d": 8, "50n": 8, // mist
}

// IconIndex returns the weather strip ordinal for a provider icon code.
func IconIndex(code string) (int, bool) {
	i, ok := iconIndex[code]
	return i, ok
}

// Compose lays out the frame using DefaultLayout.
func Compose(s *weather.Snapshot, fraction float64, g Glyphs) (*Frame, error) {
	return DefaultLayout.Compose(s, fraction, g)
}

// Compose lays out the frame for snapshot s, which may be nil if nothing has
// been fetched yet, and a battery fraction in [0, 1]. The background and the
// battery gauge are always drawn.
func (l Layout) Compose(s *weather.Snapshot, fraction float64, g Glyphs) (*Frame, error) {
	c := &composer{
		layout: l,
		glyphs: g,
		frame:  &Frame{Size: l.Size},
	}

	steps := []func(*weather.Snapshot) error{
		c.background,
		c.temperatures,
		c.clock,
		c.icon,
		c.wind,
	}
	for _, step := range steps {
		if err := step(s); err != nil {
			return nil, err
		}
	}
	if err := c.battery(fraction); err != nil {
		return nil, err
	}

	return c.frame, nil
}

type composer struct {
	layout Layout
	glyphs Glyphs
	frame  *Frame
}

func (c *composer) draw(source, key string, g *atlas.Glyph, at image.Point) {
	c.frame.Commands = append(c.frame.Commands, Command{
		Source: source,
		Key:    key,
		Glyph:  g,
		At:     at,
	})
}

func (c *composer) table(name string) (*atlas.Table, error) {
	t, ok := c.glyphs.Table(name)
	if !ok {
		return nil, &LayoutError{Table: name}
	}
	return t, nil
}

func (c *composer) iconGlyph(name string) (*atlas.Glyph, error) {
	g, ok := c.glyphs.Icon(name)
	if !ok {
		return nil, &LayoutError{Table: IconSource, Key: name}
	}
	return g, nil
}

// ordinal draws the i-th glyph of a table at at and returns the y just
// below it.
func (c *composer) ordinal(name string, i int, at image.Point) (int, error) {
	t, err := c.table(name)
	if err != nil {
		return 0, err
	}
	g, ok := t.Glyph(i)
	if !ok {
		return 0, &LayoutError{Table: name, Key: fmt.Sprintf("#%d", i)}
	}
	key, _ := t.Key(i)
	c.draw(name, key, g, at)
	return at.Y + g.Height(), nil
}

// text draws s left to right starting at at and returns the y just below the
// tallest glyph.
func (c *composer) text(name, s string, at image.Point) (int, error) {
	t, err := c.table(name)
	if err != nil {
		return 0, err
	}
	x, bottom := at.X, at.Y
	for _, r := range s {
		key := string(r)
		g, ok := t.Lookup(key)
		if !ok {
			return 0, &LayoutError{Table: name, Key: key}
		}
		c.draw(name, key, g, image.Pt(x, at.Y))
		x += g.Width()
		if y := at.Y + g.Height(); y > bottom {
			bottom = y
		}
	}
	return bottom, nil
}

func (c *composer) background(*weather.Snapshot) error {
	g, err := c.iconGlyph(assets.Background)
	if err != nil {
		return err
	}
	c.draw(IconSource, assets.Background, g, image.Point{})
	return nil
}

func (c *composer) temperatures(s *weather.Snapshot) error {
	if s == nil {
		return nil
	}
	if s.Temp.Valid {
		if _, err := c.text(assets.LargeDigits, strconv.FormatInt(s.Temp.Int64, 10), c.layout.Temp); err != nil {
			return err
		}
	}
	if s.FeelsLike.Valid {
		if _, err := c.text(assets.MediumDigits, strconv.FormatInt(s.FeelsLike.Int64, 10), c.layout.FeelsLike); err != nil {
			return err
		}
	}
	return nil
}

// clock stacks the weekday, hour, minute and, when known, the date.
func (c *composer) clock(s *weather.Snapshot) error {
	if s == nil {
		return nil
	}
	l := c.layout
	x, y := l.Clock.X, l.Clock.Y
	var err error

	if s.Weekday >= 0 && s.Weekday < 7 {
		if y, err = c.ordinal(assets.Weekdays, s.Weekday, image.Pt(x, y)); err != nil {
			return err
		}
		y += l.ClockGap
	}

	if y, err = c.text(assets.SmallDigits, strconv.Itoa(s.Hour), image.Pt(x, y)); err != nil {
		return err
	}
	y += l.ClockGap
	if y, err = c.text(assets.SmallDigits, fmt.Sprintf("%02d", s.Minute), image.Pt(x, y)); err != nil {
		return err
	}

	if !s.HasDate() {
		return nil
	}
	y += 2 * l.ClockGap
	if y, err = c.ordinal(assets.Months, s.Month-1, image.Pt(x, y)); err != nil {
		return err
	}
	y += l.ClockGap
	_, err = c.text(assets.SmallDigits, strconv.Itoa(s.Day), image.Pt(x, y))
	return err
}

// icon draws the weather icon. Unknown codes are common and are skipped.
func (c *composer) icon(s *weather.Snapshot) error {
	if s == nil || !s.Icon.Valid {
		return nil
	}
	i, ok := IconIndex(s.Icon.String)
	if !ok {
		return nil
	}
	_, err := c.ordinal(assets.Weather, i, c.layout.Icon)
	return err
}

func (c *composer) wind(s *weather.Snapshot) error {
	if s == nil || !s.Wind() {
		return nil
	}
	g, err := c.iconGlyph(assets.Wind)
	if err != nil {
		return err
	}
	at := c.layout.Wind
	c.draw(IconSource, assets.Wind, g, at)

	_, err = c.text(assets.MediumDigits, strconv.Itoa(s.WindMPH), image.Pt(at.X+g.Width()+c.layout.WindGap, at.Y))
	return err
}

// battery draws the case and then the fill segments, each one a glyph
// height above the last.
func (c *composer) battery(fraction float64) error {
	t, err := c.table(assets.Battery)
	if err != nil {
		return err
	}
	empty, ok := t.Lookup(assets.BatteryCase)
	if !ok {
		return &LayoutError{Table: assets.Battery, Key: assets.BatteryCase}
	}
	fill, ok := t.Lookup(assets.BatteryFill)
	if !ok {
		return &LayoutError{Table: assets.Battery, Key: assets.BatteryFill}
	}

	at := c.layout.Battery
	c.draw(assets.Battery, assets.BatteryCase, empty, at)

	y := at.Y + c.layout.BatteryBase
	for i := c.layout.Segments(fraction); i > 0; i-- {
		y -= fill.Height()
		c.draw(assets.Battery, assets.BatteryFill, fill, image.Pt(at.X, y))
	}
	return nil
}
