package render

import (
	"fmt"
	"image/color"
	"io"

	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgpdf"

	"github.com/zalepa/agencydash/metrics"
)

const (
	pageWidth  = 8.5 * vg.Inch
	pageHeight = 11 * vg.Inch
	pdfMargin  = 0.75 * vg.Inch

	summaryRowHeight = 0.28 * vg.Inch
	agencyColWidth   = 2.6 * vg.Inch
)

// Report is the printable form of the dashboard.
type Report struct {
	Title  string
	Table  *metrics.Table
	Totals metrics.CategoryTotals
	Charts []*Chart
	Theme  Theme
}

// Write renders a letter-size PDF to w: one or more summary pages with the
// category totals and the per-agency table, followed by one page per chart.
func (r Report) Write(w io.Writer) error {
	c := vgpdf.New(pageWidth, pageHeight)

	r.drawSummaryPages(c)

	for _, ch := range r.Charts {
		c.NextPage()
		dc := draw.New(c)
		area := draw.Crop(dc, pdfMargin, -pdfMargin, pdfMargin, -pdfMargin)
		ch.plot.Draw(area)
	}

	if _, err := c.WriteTo(w); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	return nil
}

func (r Report) drawSummaryPages(c *vgpdf.Canvas) {
	t, title := r.Table, r.Title
	usableW := pageWidth - 2*pdfMargin
	fields := t.Fields()
	valueColWidth := usableW - agencyColWidth
	if len(fields) > 0 {
		valueColWidth /= vg.Length(len(fields))
	}

	rows := t.Rows()
	pageNum := 0
	rowIdx := 0
	for pageNum == 0 || rowIdx < len(rows) {
		if pageNum > 0 {
			c.NextPage()
		}
		pageNum++

		dc := draw.New(c)
		area := draw.Crop(dc, pdfMargin, -pdfMargin, pdfMargin, -pdfMargin)
		yTop := area.Max.Y

		if pageNum == 1 {
			fillText(area, title, vg.Points(16), vg.Point{X: area.Min.X, Y: yTop - vg.Points(10)}, color.Black, draw.XLeft)
			yTop -= 0.5 * vg.Inch

			for _, ct := range r.Totals.Ordered() {
				fillText(area, "Total "+ct.Label, vg.Points(11), vg.Point{X: area.Min.X, Y: yTop}, color.Gray{Y: 60}, draw.XLeft)
				fillText(area, FormatCount(ct.Total), vg.Points(11), vg.Point{X: area.Min.X + agencyColWidth, Y: yTop}, color.Black, draw.XLeft)
				yTop -= summaryRowHeight
			}
			yTop -= 0.25 * vg.Inch
		} else {
			fillText(area, title+" (continued)", vg.Points(10), vg.Point{X: area.Min.X, Y: yTop - vg.Points(8)}, color.Gray{Y: 100}, draw.XLeft)
			yTop -= 0.4 * vg.Inch
		}

		// Column headers.
		fillText(area, "Agency", vg.Points(9), vg.Point{X: area.Min.X, Y: yTop}, color.Gray{Y: 80}, draw.XLeft)
		for i, m := range fields {
			x := area.Min.X + agencyColWidth + vg.Length(i+1)*valueColWidth
			fillText(area, m.Label(), vg.Points(8), vg.Point{X: x, Y: yTop}, color.Gray{Y: 80}, draw.XRight)
		}
		sepY := yTop - vg.Points(8)
		strokeHLine(area, area.Min.X, area.Min.X+usableW, sepY, color.Gray{Y: 180})
		yTop = sepY - summaryRowHeight*0.6

		for rowIdx < len(rows) && yTop > area.Min.Y {
			row := rows[rowIdx]
			rowIdx++
			clr := color.Color(color.Black)
			if row.IsAggregate() {
				strokeHLine(area, area.Min.X, area.Min.X+usableW, yTop+summaryRowHeight*0.5, color.Gray{Y: 180})
				clr = colorOf(r.Theme.Graph)
			}
			fillText(area, truncate(row.Agency, 38), vg.Points(9), vg.Point{X: area.Min.X, Y: yTop}, clr, draw.XLeft)
			for i, m := range fields {
				x := area.Min.X + agencyColWidth + vg.Length(i+1)*valueColWidth
				fillText(area, FormatCount(row.Count(m)), vg.Points(9), vg.Point{X: x, Y: yTop}, clr, draw.XRight)
			}
			yTop -= summaryRowHeight
		}
	}
}

func strokeHLine(c draw.Canvas, x0, x1, y vg.Length, clr color.Color) {
	c.StrokeLine2(draw.LineStyle{
		Color: clr,
		Width: vg.Points(0.5),
	}, x0, y, x1, y)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	// The embedded PDF font has no ellipsis glyph.
	return string(r[:n-3]) + "..."
}
