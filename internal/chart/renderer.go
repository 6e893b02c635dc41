// Package chart draws elevation and speed profiles as a two-panel PNG.
package chart

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"io"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
	gochart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
	"gonum.org/v1/gonum/floats"

	"github.com/planbiir/gprofile/internal/errs"
)

const (
	DefaultWidth  = 1024
	DefaultHeight = 768

	ElevationLabel = "Elevation (m)"
	SpeedLabel     = "Speed (m/s)"
)

// Options controls the canvas.
type Options struct {
	Width  int
	Height int // total height, split evenly between the two panels

	ElevationColor drawing.Color
	SpeedColor     drawing.Color
}

// DefaultOptions returns a 1024×768 canvas with a red elevation line and a
// blue speed line.
func DefaultOptions() Options {
	return Options{
		Width:          DefaultWidth,
		Height:         DefaultHeight,
		ElevationColor: gochart.ColorRed,
		SpeedColor:     gochart.ColorBlue,
	}
}

// Input is what the renderer needs from a profile: two aligned series and an
// optional caption.
type Input struct {
	Elevation []float64
	Speed     []float64
	Caption   string
}

// Renderer draws profiles.
type Renderer struct {
	opts   Options
	logger logrus.FieldLogger
}

// NewRenderer creates a renderer. A nil logger discards output.
func NewRenderer(opts Options, logger logrus.FieldLogger) *Renderer {
	if logger == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		logger = l
	}
	return &Renderer{opts: opts, logger: logger}
}

func (r *Renderer) validate(in Input) error {
	if r.opts.Width <= 0 || r.opts.Height < 2 {
		return errs.InvalidParameter("render chart", "canvas %dx%d too small", r.opts.Width, r.opts.Height)
	}
	if len(in.Elevation) == 0 {
		return errs.InvalidParameter("render chart", "no samples to draw")
	}
	if len(in.Elevation) != len(in.Speed) {
		return errs.InvalidParameter("render chart", "series not aligned: %d elevation vs %d speed samples",
			len(in.Elevation), len(in.Speed))
	}
	return nil
}

// Image renders both panels and stacks them vertically, elevation on top.
func (r *Renderer) Image(in Input) (*image.RGBA, error) {
	if err := r.validate(in); err != nil {
		return nil, err
	}

	topHeight := r.opts.Height / 2
	bottomHeight := r.opts.Height - topHeight

	top, err := r.panel(in.Elevation, ElevationLabel, r.opts.ElevationColor, topHeight)
	if err != nil {
		return nil, fmt.Errorf("elevation panel: %w", err)
	}
	bottom, err := r.panel(in.Speed, SpeedLabel, r.opts.SpeedColor, bottomHeight)
	if err != nil {
		return nil, fmt.Errorf("speed panel: %w", err)
	}

	canvas := image.NewRGBA(image.Rect(0, 0, r.opts.Width, r.opts.Height))
	draw.Draw(canvas, canvas.Bounds(), image.White, image.Point{}, draw.Src)
	draw.Draw(canvas, image.Rect(0, 0, r.opts.Width, topHeight), top, top.Bounds().Min, draw.Src)
	draw.Draw(canvas, image.Rect(0, topHeight, r.opts.Width, r.opts.Height), bottom, bottom.Bounds().Min, draw.Src)

	if in.Caption != "" {
		drawCaption(canvas, in.Caption)
	}

	return canvas, nil
}

// RenderPNG encodes the stacked chart to w.
func (r *Renderer) RenderPNG(w io.Writer, in Input) error {
	img, err := r.Image(in)
	if err != nil {
		return err
	}
	return png.Encode(w, img)
}

// WriteFile renders the chart and writes it to path. The image is encoded
// into a temporary file next to path and renamed on success, so a failed
// render never leaves a partial file behind.
func (r *Renderer) WriteFile(path string, in Input) (err error) {
	img, err := r.Image(in)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".gprofile-*.png")
	if err != nil {
		return errs.IO("create image", path, err)
	}
	defer func() {
		if err != nil {
			_ = tmp.Close()
			_ = os.Remove(tmp.Name())
		}
	}()

	if err = png.Encode(tmp, img); err != nil {
		return errs.IO("encode image", path, err)
	}
	if err = tmp.Close(); err != nil {
		return errs.IO("close image", path, err)
	}
	if err = os.Rename(tmp.Name(), path); err != nil {
		return errs.IO("write image", path, err)
	}

	r.logger.WithFields(logrus.Fields{
		"path":   path,
		"width":  r.opts.Width,
		"height": r.opts.Height,
	}).Debug("Chart written")

	return nil
}

// panel renders one series as a line chart of the given height.
func (r *Renderer) panel(values []float64, label string, col drawing.Color, height int) (image.Image, error) {
	xs := make([]float64, len(values))
	for i := range xs {
		xs[i] = float64(i)
	}
	yMin, yMax := YRange(values)

	ch := gochart.Chart{
		Width:      r.opts.Width,
		Height:     height,
		Background: gochart.Style{Padding: gochart.Box{Top: 20, Left: 16, Right: 16, Bottom: 12}},
		XAxis: gochart.XAxis{
			Name:  "Sample",
			Range: &gochart.ContinuousRange{Min: 0, Max: float64(len(values))},
		},
		YAxis: gochart.YAxis{
			Name:  label,
			Range: &gochart.ContinuousRange{Min: yMin, Max: yMax},
		},
		Series: []gochart.Series{
			gochart.ContinuousSeries{
				Name:    label,
				XValues: xs,
				YValues: values,
				Style: gochart.Style{
					StrokeColor: col,
					StrokeWidth: 2,
				},
			},
		},
	}

	var buf bytes.Buffer
	if err := ch.Render(gochart.PNG, &buf); err != nil {
		return nil, err
	}
	return png.Decode(&buf)
}

// YRange returns the y-axis bounds for a series: from min(0, seriesMin) to
// seriesMax, padded by 5% of the span (or 1 when the span is zero).
func YRange(values []float64) (lo, hi float64) {
	lo = min(0, floats.Min(values))
	hi = floats.Max(values)

	margin := 0.05 * (hi - lo)
	if margin == 0 {
		margin = 1
	}
	return lo - margin, hi + margin
}

// drawCaption writes text in the top-left corner on a light backing box.
func drawCaption(img *image.RGBA, text string) {
	face := basicfont.Face7x13
	const pad = 4
	x, y := 8, 4+face.Metrics().Ascent.Ceil()

	tw := font.MeasureString(face, text).Ceil()
	bg := image.NewUniform(color.RGBA{R: 255, G: 255, B: 255, A: 220})
	rect := image.Rect(x-pad, y-face.Metrics().Ascent.Ceil()-pad, x+tw+pad, y+face.Metrics().Descent.Ceil()+pad)
	draw.Draw(img, rect, bg, image.Point{}, draw.Over)

	dr := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(color.Black),
		Face: face,
		Dot:  fixed.P(x, y),
	}
	dr.DrawString(text)
}
