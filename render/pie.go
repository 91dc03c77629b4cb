package render

import (
	"fmt"
	"image/color"
	"math"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
)

// pieChart is a plot.Plotter that draws one wedge per positive value,
// starting at twelve o'clock and running clockwise. Non-positive values
// take no space.
type pieChart struct {
	values []float64
	colors []color.Color

	// legendWidth is the fraction of the canvas kept free on the right for
	// the legend.
	legendWidth float64
}

var _ plot.Plotter = (*pieChart)(nil)

func (pc *pieChart) total() float64 {
	var sum float64
	for _, v := range pc.values {
		if v > 0 {
			sum += v
		}
	}
	return sum
}

func (pc *pieChart) color(i int) color.Color {
	if len(pc.colors) == 0 {
		return color.Black
	}
	return pc.colors[i%len(pc.colors)]
}

// Plot implements plot.Plotter.
func (pc *pieChart) Plot(c draw.Canvas, _ *plot.Plot) {
	w := (c.Max.X - c.Min.X) * vg.Length(1-pc.legendWidth)
	h := c.Max.Y - c.Min.Y
	center := vg.Point{X: c.Min.X + w/2, Y: c.Min.Y + h/2}

	total := pc.total()
	if total == 0 {
		fillText(c, "no data", vg.Points(12), center, color.Gray{Y: 100}, draw.XCenter)
		return
	}

	radius := w
	if h < radius {
		radius = h
	}
	radius = radius / 2 * 0.9

	start := math.Pi / 2
	for i, v := range pc.values {
		if v <= 0 {
			continue
		}
		sweep := -2 * math.Pi * v / total

		var p vg.Path
		p.Move(center)
		p.Arc(center, radius, start, sweep)
		p.Close()
		c.SetColor(pc.color(i))
		c.Fill(p)

		share := v / total
		if share >= 0.03 {
			mid := start + sweep/2
			at := vg.Point{
				X: center.X + radius*0.65*vg.Length(math.Cos(mid)),
				Y: center.Y + radius*0.65*vg.Length(math.Sin(mid)),
			}
			fillText(c, fmt.Sprintf("%.1f%%", share*100), vg.Points(9), at, color.White, draw.XCenter)
		}
		start += sweep
	}
}

// swatch is a legend thumbnail filled with a single colour.
type swatch struct {
	color.Color
}

// Thumbnail implements plot.Thumbnailer.
func (s swatch) Thumbnail(c *draw.Canvas) {
	pts := []vg.Point{
		{X: c.Min.X, Y: c.Min.Y},
		{X: c.Min.X, Y: c.Max.Y},
		{X: c.Max.X, Y: c.Max.Y},
		{X: c.Max.X, Y: c.Min.Y},
	}
	c.FillPolygon(s.Color, pts)
}

func fillText(c draw.Canvas, txt string, size vg.Length, at vg.Point, clr color.Color, xalign draw.XAlignment) {
	sty := draw.TextStyle{
		Color:   clr,
		Font:    plot.DefaultFont,
		Handler: plot.DefaultTextHandler,
		XAlign:  xalign,
		YAlign:  draw.YCenter,
	}
	sty.Font.Size = size
	c.FillText(sty, at, txt)
}
