package atlas

import (
	"errors"
	"image"
	"image/color"
	"image/draw"
	"io"

	"github.com/ericpauley/go-quantize/quantize"
	"github.com/machinelevel/sp433-pinup-weather/palette"
	"golang.org/x/image/bmp"
)

// maxColors is the largest palette an 8-bit strip can carry
const maxColors = 256

var errEmpty = errors.New("atlas: image is empty")

// Encode writes m to w as a paletted strip bitmap. Images that are not
// already paletted are reduced to gray and then quantized to at most
// palette.Levels colors, so they decode to the same levels the panel shows.
func Encode(w io.Writer, m image.Image) error {
	b := m.Bounds()
	if b.Empty() {
		return errEmpty
	}

	pm, _ := m.(*image.Paletted)
	if pm == nil {
		if cp, ok := m.ColorModel().(color.Palette); ok && len(cp) <= maxColors {
			pm = image.NewPaletted(b, cp)
			for y := b.Min.Y; y < b.Max.Y; y++ {
				for x := b.Min.X; x < b.Max.X; x++ {
					pm.Set(x, y, cp.Convert(m.At(x, y)))
				}
			}
		}
	}

	if pm == nil || len(pm.Palette) > maxColors {
		gray := image.NewGray(b)
		draw.Draw(gray, b, m, b.Min, draw.Src)

		q := quantize.MedianCutQuantizer{}
		pm = image.NewPaletted(b, q.Quantize(make(color.Palette, 0, palette.Levels), gray))
		draw.Draw(pm, b, gray, b.Min, draw.Src)
	}

	// Adjust image so that top-left corner is at (0, 0)
	if pm.Rect.Min != (image.Point{}) {
		dup := *pm
		dup.Rect = dup.Rect.Sub(dup.Rect.Min)
		pm = &dup
	}

	return bmp.Encode(w, pm)
}
