/*
Package palette implements the four level grayscale palette used by the
pinup e-paper panel.

Source artwork is 8-bit grayscale stored in a paletted bitmap. Each sample is
bucketed into one of four levels; level 3 is white and is treated as
transparent when glyphs are drawn over the background artwork.
*/
package palette

import "image/color"

// Level is a quantized panel palette index.
type Level uint8

const (
	Black Level = iota
	DarkGray
	LightGray
	White

	// Levels is the number of distinct palette levels
	Levels = 4
)

// Transparent is the level skipped when a glyph is drawn over other glyphs.
const Transparent = White

// Lower bound of each band, inclusive
const (
	darkGrayMin  = 0x60
	lightGrayMin = 0x90
	whiteMin     = 0xff
)

// Panel is the rendering palette, indexed by Level.
var Panel = color.Palette{
	color.Gray{Y: 0x00},
	color.Gray{Y: 0x60},
	color.Gray{Y: 0x90},
	color.Gray{Y: 0xff},
}

// Quantize maps an 8-bit grayscale sample to a panel level.
func Quantize(sample uint8) Level {
	switch {
	case sample < darkGrayMin:
		return Black
	case sample < lightGrayMin:
		return DarkGray
	case sample < whiteMin:
		return LightGray
	default:
		return White
	}
}

// Sample resolves a source palette entry to its 8-bit grayscale sample.
// Only the low byte of the packed 0xRRGGBB value is used, which for gray
// artwork is the blue channel; alpha and the higher bytes are ignored.
func Sample(c color.Color) uint8 {
	switch c := c.(type) {
	case color.RGBA:
		return c.B
	case color.NRGBA:
		return c.B
	case color.Gray:
		return c.Y
	}
	return color.NRGBAModel.Convert(c).(color.NRGBA).B
}

// QuantizeColor is Quantize(Sample(c)).
func QuantizeColor(c color.Color) Level {
	return Quantize(Sample(c))
}

// Color returns the panel color for l.
func (l Level) Color() color.Color {
	return Panel[l&(Levels-1)]
}
