package panel

import (
	"context"
	"image"
	"image/png"
	"os"
	"path/filepath"

	"github.com/machinelevel/sp433-pinup-weather/compose"
)

// File writes each refreshed frame to a PNG file, replacing it atomically.
type File struct {
	name     string
	rotation Rotation
	staged   image.Image
}

// NewFile returns a File writing to name.
func NewFile(name string, rotation Rotation) *File {
	return &File{name: name, rotation: rotation}
}

func (f *File) Show(frame *compose.Frame) error {
	f.staged = rotate(frame.Render(), f.rotation)
	return nil
}

func (f *File) Refresh() error {
	if f.staged == nil {
		return ErrNotShown
	}

	tmp, err := os.CreateTemp(filepath.Dir(f.name), ".pinup-*.png")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if err := png.Encode(tmp, f.staged); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}

	return os.Rename(tmp.Name(), f.name)
}

// Wait returns immediately unless ctx is done.
func (f *File) Wait(ctx context.Context) error {
	return ctx.Err()
}
