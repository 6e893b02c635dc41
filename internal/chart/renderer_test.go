package chart

import (
	"bytes"
	"image/png"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/planbiir/gprofile/internal/errs"
)

func sampleInput(n int) Input {
	in := Input{
		Elevation: make([]float64, n),
		Speed:     make([]float64, n),
		Caption:   "Test Track",
	}
	for i := 0; i < n; i++ {
		in.Elevation[i] = 100 + 50*math.Sin(float64(i)/10)
		in.Speed[i] = 3 + math.Cos(float64(i)/7)
	}
	return in
}

func TestYRange(t *testing.T) {
	tests := []struct {
		name   string
		values []float64
		lo, hi float64
	}{
		{"positive series starts at zero", []float64{10, 20, 30}, -1.5, 31.5},
		{"negative series keeps its minimum", []float64{-40, -20}, -41, -19},
		{"flat zero series", []float64{0, 0, 0}, -1, 1},
		{"mixed", []float64{-10, 90}, -15, 95},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lo, hi := YRange(tt.values)
			assert.InDelta(t, tt.lo, lo, 1e-9)
			assert.InDelta(t, tt.hi, hi, 1e-9)
		})
	}
}

func TestRenderPNGSize(t *testing.T) {
	r := NewRenderer(DefaultOptions(), nil)

	var buf bytes.Buffer
	require.NoError(t, r.RenderPNG(&buf, sampleInput(200)))

	img, err := png.Decode(&buf)
	require.NoError(t, err)
	assert.Equal(t, DefaultWidth, img.Bounds().Dx())
	assert.Equal(t, DefaultHeight, img.Bounds().Dy())
}

func TestImageOddHeight(t *testing.T) {
	opts := DefaultOptions()
	opts.Width, opts.Height = 400, 301

	img, err := NewRenderer(opts, nil).Image(sampleInput(10))
	require.NoError(t, err)
	assert.Equal(t, 400, img.Bounds().Dx())
	assert.Equal(t, 301, img.Bounds().Dy())
}

func TestImageSinglePoint(t *testing.T) {
	_, err := NewRenderer(DefaultOptions(), nil).Image(Input{Elevation: []float64{12}, Speed: []float64{0}})
	assert.NoError(t, err)
}

func TestWriteFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "profile.png")

	require.NoError(t, NewRenderer(DefaultOptions(), nil).WriteFile(path, sampleInput(50)))

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	_, err = png.Decode(f)
	require.NoError(t, err)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temporary file must not be left behind")
}

func TestWriteFileInvalidInputWritesNothing(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "profile.png")
	r := NewRenderer(DefaultOptions(), nil)

	err := r.WriteFile(path, Input{Elevation: []float64{1, 2, 3}, Speed: []float64{1, 2}})
	assert.ErrorIs(t, err, errs.ErrInvalidParameter)

	err = r.WriteFile(path, Input{})
	assert.ErrorIs(t, err, errs.ErrInvalidParameter)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestWriteFileMissingDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nope", "profile.png")

	err := NewRenderer(DefaultOptions(), nil).WriteFile(path, sampleInput(10))
	assert.ErrorIs(t, err, errs.ErrIO)
}

func TestCanvasTooSmall(t *testing.T) {
	opts := DefaultOptions()
	opts.Height = 1

	_, err := NewRenderer(opts, nil).Image(sampleInput(10))
	assert.ErrorIs(t, err, errs.ErrInvalidParameter)
}
