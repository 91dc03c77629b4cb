// Package render turns an agency metrics table into chart artifacts (SVG,
// PNG) and a multi-page PDF report.
package render

import (
	"errors"
	"fmt"
	"image/color"
	"io"
	"math"
	"strings"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"github.com/zalepa/agencydash/metrics"
)

// Default chart size used by the web page and the render command.
const (
	DefaultWidth  = 6 * vg.Inch
	DefaultHeight = 4.5 * vg.Inch
)

// Kind is the chart type directive.
type Kind string

const (
	Bar Kind = "bar"
	Pie Kind = "pie"
)

// Format is an image encoding supported by Chart.Encode.
type Format string

const (
	SVG Format = "svg"
	PNG Format = "png"
)

// ContentType returns the MIME type of f.
func (f Format) ContentType() string {
	switch f {
	case SVG:
		return "image/svg+xml"
	case PNG:
		return "image/png"
	}
	return "application/octet-stream"
}

// ParseFormat validates an image format name.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(s)); f {
	case SVG, PNG:
		return f, nil
	}
	return "", fmt.Errorf("unsupported image format %q (want svg or png)", s)
}

// ErrNoData is returned when a chart has nothing to show.
var ErrNoData = errors.New("no data to chart")

// Options controls chart construction.
type Options struct {
	// IncludeAggregateRow keeps the "Total" row as a bar / slice.
	IncludeAggregateRow bool
	// DistributionPie draws EHR Signed as a per-agency pie instead of bars.
	DistributionPie bool
	Theme           Theme
}

// Chart is a displayable artifact backed by a gonum plot.
type Chart struct {
	ID    string
	Title string
	Kind  Kind
	plot  *plot.Plot
}

// Plot exposes the underlying gonum plot.
func (c *Chart) Plot() *plot.Plot {
	return c.plot
}

// Encode writes the chart to w in the given format.
func (c *Chart) Encode(w io.Writer, f Format, width, height vg.Length) error {
	wt, err := c.plot.WriterTo(width, height, string(f))
	if err != nil {
		return fmt.Errorf("%s: %w", c.ID, err)
	}
	if _, err := wt.WriteTo(w); err != nil {
		return fmt.Errorf("%s: write %s: %w", c.ID, f, err)
	}
	return nil
}

// ChartID is the identifier of the per-agency chart for m, e.g. "da-unsigned".
func ChartID(m metrics.Metric) string {
	return strings.ReplaceAll(string(m), "_", "-")
}

// TotalsID identifies the "Total Summary" pie.
const TotalsID = "totals"

func newPlot(title string, theme Theme) *plot.Plot {
	p := plot.New()
	p.Title.Text = title
	p.Title.TextStyle.Font.Size = vg.Points(13)
	p.BackgroundColor = colorOf(theme.GraphBackground)
	return p
}

// BarChart draws one bar per agency for metric m.
func BarChart(t *metrics.Table, m metrics.Metric, opts Options) (*Chart, error) {
	if !t.Has(m) {
		return nil, fmt.Errorf("bar chart: table has no %s column", m)
	}
	names := t.Agencies(!opts.IncludeAggregateRow)
	if len(names) == 0 {
		return nil, fmt.Errorf("bar chart %s: %w", m, ErrNoData)
	}

	col := t.Column(m, !opts.IncludeAggregateRow)
	vals := make(plotter.Values, len(col))
	for i, v := range col {
		vals[i] = float64(v)
	}

	p := newPlot(m.ChartTitle(), opts.Theme)
	bars, err := plotter.NewBarChart(vals, vg.Points(14))
	if err != nil {
		return nil, fmt.Errorf("bar chart %s: %w", m, err)
	}
	bars.Color = colorOf(opts.Theme.Graph)
	bars.LineStyle.Width = 0
	p.Add(plotter.NewGrid(), bars)

	p.NominalX(names...)
	p.X.Tick.Label.Rotation = math.Pi / 4
	p.X.Tick.Label.XAlign = draw.XRight
	p.X.Tick.Label.YAlign = draw.YCenter
	p.X.Tick.Label.Font.Size = vg.Points(7)
	p.Y.Label.Text = m.AxisLabel()
	p.Y.Tick.Marker = countTicks{}
	p.Y.Min = math.Min(0, p.Y.Min)

	return &Chart{ID: ChartID(m), Title: m.ChartTitle(), Kind: Bar, plot: p}, nil
}

// TotalsPie draws the "Total Summary" pie of the category totals.
func TotalsPie(totals metrics.CategoryTotals, opts Options) (*Chart, error) {
	ordered := totals.Ordered()
	if len(ordered) == 0 {
		return nil, fmt.Errorf("totals pie: %w", ErrNoData)
	}
	labels := make([]string, len(ordered))
	values := make([]float64, len(ordered))
	for i, ct := range ordered {
		labels[i] = ct.Label
		values[i] = float64(ct.Total)
	}
	p := pie("Total Summary", labels, values, palette(opts.Theme.TotalsPalette), opts.Theme)
	return &Chart{ID: TotalsID, Title: "Total Summary", Kind: Pie, plot: p}, nil
}

// DistributionPie draws each agency's share of metric m.
func DistributionPie(t *metrics.Table, m metrics.Metric, opts Options) (*Chart, error) {
	if !t.Has(m) {
		return nil, fmt.Errorf("distribution pie: table has no %s column", m)
	}
	names := t.Agencies(!opts.IncludeAggregateRow)
	if len(names) == 0 {
		return nil, fmt.Errorf("distribution pie %s: %w", m, ErrNoData)
	}
	col := t.Column(m, !opts.IncludeAggregateRow)
	values := make([]float64, len(col))
	for i, v := range col {
		values[i] = float64(v)
	}
	title := m.Label() + " Distribution"
	p := pie(title, names, values, palette(opts.Theme.DistributionPalette), opts.Theme)
	return &Chart{ID: ChartID(m) + "-distribution", Title: title, Kind: Pie, plot: p}, nil
}

func pie(title string, labels []string, values []float64, colors []color.Color, theme Theme) *plot.Plot {
	p := newPlot(title, theme)
	p.HideAxes()

	pc := &pieChart{values: values, colors: colors, legendWidth: 0.35}
	p.Add(pc)

	p.Legend.Top = true
	p.Legend.TextStyle.Font.Size = vg.Points(8)
	for i, l := range labels {
		if values[i] <= 0 {
			continue
		}
		p.Legend.Add(fmt.Sprintf("%s (%s)", l, FormatCount(int64(values[i]))), swatch{pc.color(i)})
	}
	return p
}

// Dashboard builds the standard chart set in page order: DA Unsigned,
// DA Prepared, RPA, Total Summary, EHR Signed, DA Filed. Columns the table
// does not declare are skipped, and so are all per-agency charts when no
// agency rows remain after the aggregate-row policy is applied.
func Dashboard(t *metrics.Table, totals metrics.CategoryTotals, opts Options) ([]*Chart, error) {
	var charts []*Chart
	perAgency := len(t.Agencies(!opts.IncludeAggregateRow)) > 0
	addBar := func(m metrics.Metric) error {
		if !perAgency || !t.Has(m) {
			return nil
		}
		c, err := BarChart(t, m, opts)
		if err != nil {
			return err
		}
		charts = append(charts, c)
		return nil
	}

	for _, m := range []metrics.Metric{metrics.DAUnsigned, metrics.DAPrepared3M, metrics.RPAFound} {
		if err := addBar(m); err != nil {
			return nil, err
		}
	}

	if len(totals) > 0 {
		c, err := TotalsPie(totals, opts)
		if err != nil {
			return nil, err
		}
		charts = append(charts, c)
	}

	if opts.DistributionPie && perAgency && t.Has(metrics.EHRSigned) {
		c, err := DistributionPie(t, metrics.EHRSigned, opts)
		if err != nil {
			return nil, err
		}
		charts = append(charts, c)
	} else if err := addBar(metrics.EHRSigned); err != nil {
		return nil, err
	}

	if err := addBar(metrics.DAFiled); err != nil {
		return nil, err
	}
	return charts, nil
}

// countTicks labels the value axis with compact whole numbers and drops
// fractional ticks, which are meaningless for document counts.
type countTicks struct{}

func (countTicks) Ticks(min, max float64) []plot.Tick {
	ticks := plot.DefaultTicks{}.Ticks(min, max)
	out := ticks[:0]
	for _, t := range ticks {
		if t.Value != math.Trunc(t.Value) {
			continue
		}
		if t.Label != "" {
			t.Label = formatCompact(t.Value)
		}
		out = append(out, t)
	}
	return out
}
