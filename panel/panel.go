/*
Package panel pushes composed frames to an output surface, either a physical
e-paper display or an image file.
*/
package panel

import (
	"context"
	"errors"
	"image"

	"github.com/machinelevel/sp433-pinup-weather/compose"
)

var (
	// ErrNotShown is returned by Refresh when no frame has been shown.
	ErrNotShown = errors.New("panel: no frame shown")
	// ErrTooSoon is returned by Refresh inside the minimum refresh interval.
	ErrTooSoon = errors.New("panel: refresh interval not elapsed")
)

// Panel accepts a frame, then makes it visible on Refresh.
type Panel interface {
	// Show stages a frame without updating the display.
	Show(*compose.Frame) error
	// Refresh pushes the staged frame.
	Refresh() error
	// Wait blocks until the panel may be refreshed again.
	Wait(context.Context) error
}

// Rotation is a clockwise rotation applied to the frame before it is pushed.
type Rotation int

const (
	Rotate0 Rotation = iota
	Rotate90
	Rotate180
	Rotate270
)

// ParseRotation converts a rotation in degrees.
func ParseRotation(degrees int) (Rotation, error) {
	switch degrees {
	case 0:
		return Rotate0, nil
	case 90:
		return Rotate90, nil
	case 180:
		return Rotate180, nil
	case 270:
		return Rotate270, nil
	}
	return 0, errors.New("panel: rotation must be 0, 90, 180 or 270")
}

// rotate returns m turned clockwise by r, with its origin at zero.
func rotate(m *image.Paletted, r Rotation) *image.Paletted {
	w, h := m.Rect.Dx(), m.Rect.Dy()
	if r == Rotate0 {
		return m
	}

	size := image.Pt(w, h)
	if r == Rotate90 || r == Rotate270 {
		size = image.Pt(h, w)
	}
	dst := image.NewPaletted(image.Rectangle{Max: size}, m.Palette)

	o := m.Rect.Min
	for y := 0; y < size.Y; y++ {
		for x := 0; x < size.X; x++ {
			var sx, sy int
			switch r {
			case Rotate90:
				sx, sy = y, h-1-x
			case Rotate180:
				sx, sy = w-1-x, h-1-y
			case Rotate270:
				sx, sy = w-1-y, x
			}
			dst.SetColorIndex(x, y, m.ColorIndexAt(o.X+sx, o.Y+sy))
		}
	}

	return dst
}
