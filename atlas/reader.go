package atlas

import (
	"image"
	"io"

	"github.com/machinelevel/sp433-pinup-weather/palette"
	"golang.org/x/image/bmp"
)

// Strip describes how a strip bitmap is sliced into symbols.
type Strip struct {
	Name    string
	Axis    Axis
	Markers []int
	Keys    []string
}

// validate checks the marker sequence against a strip whose major axis is
// extent pixels long.
func (s Strip) validate(extent int) error {
	if len(s.Keys) == 0 {
		return malformed(s.Name, -1, "no symbols")
	}
	if len(s.Markers) != len(s.Keys)+1 {
		return malformed(s.Name, -1, "%d markers for %d symbols", len(s.Markers), len(s.Keys))
	}
	if s.Markers[0] < 0 {
		return malformed(s.Name, 0, "negative offset %d", s.Markers[0])
	}
	for i := 1; i < len(s.Markers); i++ {
		switch {
		case s.Markers[i] == s.Markers[i-1]:
			return malformed(s.Name, i, "symbol %q has zero extent", s.Keys[i-1])
		case s.Markers[i] < s.Markers[i-1]:
			return malformed(s.Name, i, "offset %d is not after %d", s.Markers[i], s.Markers[i-1])
		}
	}
	if last := s.Markers[len(s.Markers)-1]; last > extent {
		return malformed(s.Name, len(s.Markers)-1, "offset %d exceeds %s extent %d", last, s.Axis, extent)
	}
	seen := make(map[string]struct{}, len(s.Keys))
	for _, k := range s.Keys {
		if _, ok := seen[k]; ok {
			return malformed(s.Name, -1, "duplicate key %q", k)
		}
		seen[k] = struct{}{}
	}
	return nil
}

type decoder struct {
	name   string
	m      *image.Paletted
	levels []palette.Level
}

func newDecoder(name string, m *image.Paletted) (*decoder, error) {
	if m == nil || m.Rect.Empty() {
		return nil, malformed(name, -1, "empty bitmap")
	}
	// Quantize each palette entry once rather than every pixel
	levels := make([]palette.Level, len(m.Palette))
	for i, c := range m.Palette {
		levels[i] = palette.QuantizeColor(c)
	}
	return &decoder{
		name:   name,
		m:      m,
		levels: levels,
	}, nil
}

// copy fills g from the source rectangle starting at (sx, sy), relative to
// the bitmap origin.
func (d *decoder) copy(g *Glyph, sx, sy int) error {
	o := d.m.Rect.Min
	for y := 0; y < g.h; y++ {
		for x := 0; x < g.w; x++ {
			i := d.m.ColorIndexAt(o.X+sx+x, o.Y+sy+y)
			if int(i) >= len(d.levels) {
				return malformed(d.name, -1, "invalid palette index %d at (%d, %d)", i, sx+x, sy+y)
			}
			g.pix[y*g.w+x] = d.levels[i]
		}
	}
	return nil
}

// DecodeStrip slices m into one glyph per symbol described by s and returns
// them as a Table addressable by key and by ordinal.
func DecodeStrip(m *image.Paletted, s Strip) (*Table, error) {
	d, err := newDecoder(s.Name, m)
	if err != nil {
		return nil, err
	}
	if err := s.validate(s.Axis.extent(m.Rect)); err != nil {
		return nil, err
	}

	t := &Table{
		name:   s.Name,
		axis:   s.Axis,
		origin: s.Markers[0],
		keys:   append([]string(nil), s.Keys...),
		index:  make(map[string]int, len(s.Keys)),
		glyphs: make([]*Glyph, 0, len(s.Keys)),
	}

	for i, key := range s.Keys {
		start, size := s.Markers[i], s.Markers[i+1]-s.Markers[i]

		var g *Glyph
		var sx, sy int
		switch s.Axis {
		case Columns:
			g, sx = newGlyph(size, m.Rect.Dy()), start
		default:
			g, sy = newGlyph(m.Rect.Dx(), size), start
		}
		if err := d.copy(g, sx, sy); err != nil {
			return nil, err
		}

		t.index[key] = i
		t.glyphs = append(t.glyphs, g)
	}

	return t, nil
}

// DecodeIcon quantizes the whole of m into a single glyph.
func DecodeIcon(name string, m *image.Paletted) (*Glyph, error) {
	d, err := newDecoder(name, m)
	if err != nil {
		return nil, err
	}
	g := newGlyph(m.Rect.Dx(), m.Rect.Dy())
	if err := d.copy(g, 0, 0); err != nil {
		return nil, err
	}
	return g, nil
}

// Read decodes a strip bitmap from r. Only paletted bitmaps are accepted.
func Read(name string, r io.Reader) (*image.Paletted, error) {
	m, err := bmp.Decode(r)
	if err != nil {
		return nil, err
	}
	pm, ok := m.(*image.Paletted)
	if !ok {
		return nil, malformed(name, -1, "not a paletted bitmap")
	}
	return pm, nil
}
