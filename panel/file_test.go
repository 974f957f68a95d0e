package panel

import (
	"context"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFile(t *testing.T) {
	dir := t.TempDir()
	name := filepath.Join(dir, "frame.png")
	f := NewFile(name, Rotate270)

	assert.Equal(t, ErrNotShown, f.Refresh())
	require.NoError(t, f.Wait(context.Background()))

	require.NoError(t, f.Show(testFrame(t)))
	require.NoError(t, f.Refresh())

	r, err := os.Open(name)
	require.NoError(t, err)
	defer r.Close()

	m, err := png.Decode(r)
	require.NoError(t, err)
	assert.Equal(t, 2, m.Bounds().Dx())
	assert.Equal(t, 4, m.Bounds().Dy())
	assert.True(t, ink(m.At(0, 3)))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}
