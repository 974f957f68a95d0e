/*
Package atlas implements the glyph atlas decoder used to build the pinup
glyph tables.

An atlas, or strip, is a single paletted bitmap holding several symbols laid
end to end along one axis. A marker sequence of n+1 strictly increasing
offsets into that axis delimits n symbols; symbol i occupies the half-open
interval [markers[i], markers[i+1]). Every decoded pixel is quantized to the
four level panel palette, so the source bitmap and its palette can be
discarded once a Table is built.
*/
package atlas

import (
	"fmt"
	"image"
	"image/color"

	"github.com/machinelevel/sp433-pinup-weather/palette"
)

// Axis selects the major axis a strip is sliced along.
type Axis int

const (
	// Rows slices along y; every glyph is as wide as the strip.
	Rows Axis = iota
	// Columns slices along x; every glyph is as tall as the strip.
	Columns
)

func (a Axis) String() string {
	switch a {
	case Rows:
		return "rows"
	case Columns:
		return "columns"
	default:
		return fmt.Sprintf("axis(%d)", int(a))
	}
}

// extent returns the length of r along the axis.
func (a Axis) extent(r image.Rectangle) int {
	if a == Columns {
		return r.Dx()
	}
	return r.Dy()
}

// MalformedAtlasError reports a strip whose markers or shape violate the
// atlas invariants. It always indicates a broken asset, never bad runtime data.
type MalformedAtlasError struct {
	Name   string
	Index  int // offending marker, or -1 if not marker specific
	Reason string
}

func (e *MalformedAtlasError) Error() string {
	if e.Index < 0 {
		return fmt.Sprintf("atlas: %s: %s", e.Name, e.Reason)
	}
	return fmt.Sprintf("atlas: %s: marker %d: %s", e.Name, e.Index, e.Reason)
}

func malformed(name string, index int, format string, a ...interface{}) error {
	return &MalformedAtlasError{
		Name:   name,
		Index:  index,
		Reason: fmt.Sprintf(format, a...),
	}
}

// Glyph is an immutable bitmap of palette levels.
type Glyph struct {
	w, h int
	pix  []palette.Level
}

func newGlyph(w, h int) *Glyph {
	return &Glyph{
		w:   w,
		h:   h,
		pix: make([]palette.Level, w*h),
	}
}

// Width returns the width of the glyph in pixels
func (g *Glyph) Width() int { return g.w }

// Height returns the height of the glyph in pixels
func (g *Glyph) Height() int { return g.h }

// Level returns the palette level at (x, y). Points outside the glyph are
// transparent.
func (g *Glyph) Level(x, y int) palette.Level {
	if x < 0 || y < 0 || x >= g.w || y >= g.h {
		return palette.Transparent
	}
	return g.pix[y*g.w+x]
}

// ColorModel implements image.Image.
func (g *Glyph) ColorModel() color.Model { return palette.Panel }

// Bounds implements image.Image.
func (g *Glyph) Bounds() image.Rectangle { return image.Rect(0, 0, g.w, g.h) }

// At implements image.Image.
func (g *Glyph) At(x, y int) color.Color { return g.Level(x, y).Color() }

// ColorIndexAt implements image.PalettedImage.
func (g *Glyph) ColorIndexAt(x, y int) uint8 { return uint8(g.Level(x, y)) }

// Table maps symbol keys and ordinals to the glyphs decoded from one strip.
// Both addressing modes share the same glyphs.
type Table struct {
	name   string
	axis   Axis
	origin int
	keys   []string
	index  map[string]int
	glyphs []*Glyph
}

// Name returns the name of the strip the table was decoded from
func (t *Table) Name() string { return t.name }

// Axis returns the axis the strip was sliced along
func (t *Table) Axis() Axis { return t.axis }

// Len returns the number of glyphs in the table
func (t *Table) Len() int { return len(t.glyphs) }

// Lookup returns the glyph registered under key.
func (t *Table) Lookup(key string) (*Glyph, bool) {
	i, ok := t.index[key]
	if !ok {
		return nil, false
	}
	return t.glyphs[i], true
}

// Glyph returns the i-th glyph in strip order.
func (t *Table) Glyph(i int) (*Glyph, bool) {
	if i < 0 || i >= len(t.glyphs) {
		return nil, false
	}
	return t.glyphs[i], true
}

// Key returns the key of the i-th glyph.
func (t *Table) Key(i int) (string, bool) {
	if i < 0 || i >= len(t.keys) {
		return "", false
	}
	return t.keys[i], true
}

// Keys returns the symbol keys in strip order
func (t *Table) Keys() []string {
	return append([]string(nil), t.keys...)
}

// Markers rebuilds the marker sequence from the glyph extents along the
// table's axis.
func (t *Table) Markers() []int {
	markers := make([]int, 0, len(t.glyphs)+1)
	offset := t.origin
	markers = append(markers, offset)
	for _, g := range t.glyphs {
		if t.axis == Columns {
			offset += g.w
		} else {
			offset += g.h
		}
		markers = append(markers, offset)
	}
	return markers
}
