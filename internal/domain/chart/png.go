package chart

import (
	"errors"
	"fmt"
	"image/color"
	"io"
	"strings"

	"golang.org/x/image/colornames"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"github.com/okian/peloton/internal/domain/model"
)

// ErrColor is returned when a style colour cannot be parsed for raster output.
var ErrColor = errors.New("unsupported colour")

// rasterDPI is the resolution vgimg uses for PNG canvases.
const rasterDPI = 96

// WritePNG draws the marks, axes and legend of c as a PNG image of the
// layout's pixel size. Tooltips are interactive only and are not drawn.
func WritePNG(w io.Writer, c Chart) error {
	p := plot.New()
	p.Title.Text = c.Style.Title
	p.X.Label.Text = "Year"
	p.Y.Label.Text = "Finish Time"

	series := seriesOf(c.Marks)
	for _, e := range c.Legend {
		pts := series[e.Allegation]
		sc, err := plotter.NewScatter(pts)
		if err != nil {
			return fmt.Errorf("scatter %q: %w", e.Label, err)
		}
		fill, err := ParseColor(e.Fill)
		if err != nil {
			return err
		}
		sc.GlyphStyle.Color = fill
		sc.GlyphStyle.Radius = vg.Points(c.Style.MarkRadius * 72 / rasterDPI)
		sc.GlyphStyle.Shape = draw.CircleGlyph{}
		p.Add(sc)
		p.Legend.Add(e.Label, sc)
	}
	p.Legend.Top = true

	x0, x1 := c.XDomain[0], c.XDomain[1]
	p.X.Min, p.X.Max = float64(x0.Year()), float64(x1.Year())
	xt := make([]plot.Tick, 0, len(c.XTicks))
	for _, t := range c.XTicks {
		var y int
		if _, err := fmt.Sscanf(t.Label, "%d", &y); err == nil {
			xt = append(xt, plot.Tick{Value: float64(y), Label: t.Label})
		}
	}
	p.X.Tick.Marker = plot.ConstantTicks(xt)

	// The raster y axis grows upward, so slower times sit higher as in SVG.
	y0, y1 := c.YDomain[0].Seconds(), c.YDomain[1].Seconds()
	p.Y.Min, p.Y.Max = minf(y0, y1), maxf(y0, y1)
	yt := make([]plot.Tick, 0, len(c.YTicks))
	for _, t := range c.YTicks {
		var mm, ss int
		if _, err := fmt.Sscanf(t.Label, "%d:%d", &mm, &ss); err == nil {
			yt = append(yt, plot.Tick{Value: float64(mm*60 + ss), Label: t.Label})
		}
	}
	p.Y.Tick.Marker = plot.ConstantTicks(yt)

	grid := plotter.NewGrid()
	grid.Vertical.Color = nil
	p.Add(grid)

	width := vg.Length(c.Layout.Width) * vg.Inch / rasterDPI
	height := vg.Length(c.Layout.Height) * vg.Inch / rasterDPI
	wt, err := p.WriterTo(width, height, "png")
	if err != nil {
		return fmt.Errorf("png canvas: %w", err)
	}
	_, err = wt.WriteTo(w)
	return err
}

// seriesOf groups mark positions by allegation.
func seriesOf(marks []Mark) map[model.Allegation]plotter.XYs {
	out := make(map[model.Allegation]plotter.XYs, 2)
	for _, m := range marks {
		a := m.Record.Allegation
		out[a] = append(out[a], plotter.XY{X: float64(m.Record.Year.Year()), Y: m.Record.Time.Seconds()})
	}
	return out
}

// ParseColor understands CSS colour names and rgb()/rgba() notation.
func ParseColor(s string) (color.Color, error) {
	s = strings.TrimSpace(strings.ToLower(s))
	if c, ok := colornames.Map[s]; ok {
		return c, nil
	}
	var r, g, b uint8
	var a float64 = 1
	switch {
	case strings.HasPrefix(s, "rgba("):
		if _, err := fmt.Sscanf(s, "rgba(%d, %d, %d, %g)", &r, &g, &b, &a); err != nil {
			return nil, fmt.Errorf("%w: %q", ErrColor, s)
		}
	case strings.HasPrefix(s, "rgb("):
		if _, err := fmt.Sscanf(s, "rgb(%d, %d, %d)", &r, &g, &b); err != nil {
			return nil, fmt.Errorf("%w: %q", ErrColor, s)
		}
	default:
		return nil, fmt.Errorf("%w: %q", ErrColor, s)
	}
	return color.NRGBA{R: r, G: g, B: b, A: uint8(a*255 + 0.5)}, nil
}

func minf(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}

func maxf(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}
