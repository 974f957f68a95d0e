package compose

import (
	"image"

	"github.com/machinelevel/sp433-pinup-weather/atlas"
	"github.com/machinelevel/sp433-pinup-weather/palette"
)

// IconSource is the Command source used for standalone icons
const IconSource = "icon"

// Command draws one glyph with its top-left corner at At.
type Command struct {
	Source string // table name, or IconSource
	Key    string // symbol key, or icon name
	Glyph  *atlas.Glyph
	At     image.Point
}

// Bounds returns the panel area covered by the command.
func (c Command) Bounds() image.Rectangle {
	return c.Glyph.Bounds().Add(c.At)
}

// Frame is an ordered list of draw commands, back to front.
type Frame struct {
	Size     image.Point
	Commands []Command
}

// Render rasterizes the frame. Transparent glyph pixels leave whatever was
// drawn beneath them; the canvas starts white.
func (f *Frame) Render() *image.Paletted {
	m := image.NewPaletted(image.Rectangle{Max: f.Size}, palette.Panel)
	for i := range m.Pix {
		m.Pix[i] = uint8(palette.White)
	}

	for _, c := range f.Commands {
		r := c.Bounds().Intersect(m.Rect)
		for y := r.Min.Y; y < r.Max.Y; y++ {
			for x := r.Min.X; x < r.Max.X; x++ {
				l := c.Glyph.Level(x-c.At.X, y-c.At.Y)
				if l == palette.Transparent {
					continue
				}
				m.SetColorIndex(x, y, uint8(l))
			}
		}
	}

	return m
}
