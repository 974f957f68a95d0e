package panel

import (
	"context"
	"fmt"
	"image"
	"time"

	"github.com/machinelevel/sp433-pinup-weather/compose"
	"github.com/machinelevel/sp433-pinup-weather/palette"
	"periph.io/x/devices/v3/ssd1306/image1bit"
)

// DefaultInterval is the shortest time allowed between two e-paper refreshes.
const DefaultInterval = 180 * time.Second

// Drawer is a display device such as a periph waveshare2in13v4.Dev.
type Drawer interface {
	Bounds() image.Rectangle
	Draw(r image.Rectangle, src image.Image, sp image.Point) error
}

// A device that also implements these is put to sleep after each refresh
// and woken before the next one.
type sleeper interface {
	Sleep() error
}

type initer interface {
	Init() error
}

// EPD drives a black and white e-paper display. Dark gray and black pixels
// are drawn as ink, light gray and white as paper. Display area outside the
// frame is left as paper and a frame larger than the display is clipped at
// its right and bottom edges.
type EPD struct {
	dev      Drawer
	rotation Rotation
	interval time.Duration
	now      func() time.Time

	staged *image1bit.VerticalLSB
	last   time.Time
	asleep bool
}

// EPDOption configures an EPD.
type EPDOption func(*EPD)

// WithRotation sets the rotation applied before pushing.
func WithRotation(r Rotation) EPDOption {
	return func(e *EPD) {
		e.rotation = r
	}
}

// WithInterval overrides DefaultInterval.
func WithInterval(d time.Duration) EPDOption {
	return func(e *EPD) {
		e.interval = d
	}
}

func withClock(now func() time.Time) EPDOption {
	return func(e *EPD) {
		e.now = now
	}
}

// NewEPD returns an EPD drawing to dev.
func NewEPD(dev Drawer, options ...EPDOption) *EPD {
	e := &EPD{
		dev:      dev,
		interval: DefaultInterval,
		now:      time.Now,
	}
	for _, o := range options {
		o(e)
	}
	return e
}

// Show rasterizes and stages f.
func (e *EPD) Show(f *compose.Frame) error {
	m := rotate(f.Render(), e.rotation)

	b := e.dev.Bounds()
	r := m.Rect.Intersect(image.Rectangle{Max: b.Size()})

	img := image1bit.NewVerticalLSB(b)
	for i := range img.Pix {
		img.Pix[i] = 0xff
	}
	for y := 0; y < r.Dy(); y++ {
		for x := 0; x < r.Dx(); x++ {
			if palette.Level(m.ColorIndexAt(x, y)) < palette.LightGray {
				img.SetBit(b.Min.X+x, b.Min.Y+y, image1bit.Off)
			}
		}
	}

	e.staged = img
	return nil
}

// Refresh pushes the staged frame and puts the display to sleep.
func (e *EPD) Refresh() error {
	if e.staged == nil {
		return ErrNotShown
	}
	now := e.now()
	if !e.last.IsZero() && now.Sub(e.last) < e.interval {
		return ErrTooSoon
	}

	if d, ok := e.dev.(initer); ok && e.asleep {
		if err := d.Init(); err != nil {
			return fmt.Errorf("panel: wake: %w", err)
		}
		e.asleep = false
	}

	if err := e.dev.Draw(e.dev.Bounds(), e.staged, e.dev.Bounds().Min); err != nil {
		return fmt.Errorf("panel: draw: %w", err)
	}
	e.last = now

	if d, ok := e.dev.(sleeper); ok {
		if err := d.Sleep(); err != nil {
			return fmt.Errorf("panel: sleep: %w", err)
		}
		e.asleep = true
	}

	return nil
}

// Wait blocks until the minimum interval since the last refresh has passed.
func (e *EPD) Wait(ctx context.Context) error {
	if e.last.IsZero() {
		return ctx.Err()
	}
	d := e.interval - e.now().Sub(e.last)
	if d <= 0 {
		return ctx.Err()
	}

	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
