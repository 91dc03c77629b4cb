package cmd

import (
	"fmt"
	"io"
	"math"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/zalepa/agencydash/metrics"
	"github.com/zalepa/agencydash/render"
)

const (
	defaultTermWidth = 100
	minBarWidth      = 10
	maxNameWidth     = 32
)

func newSummaryCmd(a *app) *cobra.Command {
	var (
		metricName string
		width      int
	)
	c := &cobra.Command{
		Use:   "summary",
		Short: "Print totals and a per-agency table to the terminal",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			m, ok := metrics.ParseMetric(metricName)
			if !ok {
				return fmt.Errorf("unknown metric %q", metricName)
			}
			t, err := a.loadTable(cmd.Context())
			if err != nil {
				return err
			}
			if !t.Has(m) {
				return fmt.Errorf("dataset has no %s column", m)
			}
			s := a.settings()
			out := cmd.OutOrStdout()
			if width <= 0 {
				width = terminalWidth(out)
			}
			totals := metrics.ComputeTotals(t, !s.IncludeAggregateRow)
			writeSummary(out, s.Title, t, totals, m, width, !s.IncludeAggregateRow)
			return nil
		},
	}
	c.Flags().StringVar(&metricName, "metric", string(metrics.DAUnsigned), "metric drawn as bars")
	c.Flags().IntVar(&width, "width", 0, "output width in columns (default: terminal width)")
	return c
}

func terminalWidth(w io.Writer) int {
	f, ok := w.(*os.File)
	if !ok || !term.IsTerminal(int(f.Fd())) {
		return defaultTermWidth
	}
	cols, _, err := term.GetSize(int(f.Fd()))
	if err != nil || cols <= 0 {
		return defaultTermWidth
	}
	return cols
}

// writeSummary prints the category totals followed by one line per agency
// with every declared count and a bar for m scaled to the largest value.
// The aggregate row never gets a bar when excludeAggregateRow is set.
func writeSummary(w io.Writer, title string, t *metrics.Table, totals metrics.CategoryTotals, m metrics.Metric, width int, excludeAggregateRow bool) {
	fmt.Fprintln(w, title)
	fmt.Fprintln(w)

	ordered := totals.Ordered()
	labelWidth := 0
	for _, ct := range ordered {
		labelWidth = max(labelWidth, len("Total "+ct.Label))
	}
	for _, ct := range ordered {
		fmt.Fprintf(w, "%-*s  %10s\n", labelWidth, "Total "+ct.Label, render.FormatCount(ct.Total))
	}
	if excludeAggregateRow {
		fmt.Fprintln(w, "(aggregate row excluded)")
	} else {
		fmt.Fprintln(w, "(aggregate row included)")
	}
	fmt.Fprintln(w)

	rows := t.Rows()
	fields := t.Fields()

	nameWidth := 10
	for _, r := range rows {
		nameWidth = max(nameWidth, len([]rune(r.Agency)))
	}
	nameWidth = min(nameWidth, maxNameWidth)

	colWidths := make([]int, len(fields))
	used := nameWidth
	for i, f := range fields {
		colWidths[i] = max(len(f.Label()), 7)
		used += 2 + colWidths[i]
	}
	barWidth := max(width-used-2, minBarWidth)

	var peak int64
	for _, r := range rows {
		if excludeAggregateRow && r.IsAggregate() {
			continue
		}
		peak = max(peak, r.Count(m))
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "%-*s", nameWidth, "Agency")
	for i, f := range fields {
		fmt.Fprintf(&sb, "  %*s", colWidths[i], f.Label())
	}
	fmt.Fprintf(&sb, "  %s", m.Label())
	fmt.Fprintln(w, sb.String())
	fmt.Fprintln(w, strings.Repeat("─", used+2+barWidth))

	for _, r := range rows {
		sb.Reset()
		fmt.Fprintf(&sb, "%-*s", nameWidth, clip(r.Agency, nameWidth))
		for i, f := range fields {
			fmt.Fprintf(&sb, "  %*s", colWidths[i], render.FormatCount(r.Count(f)))
		}
		if !(excludeAggregateRow && r.IsAggregate()) {
			fmt.Fprintf(&sb, "  %s", hbar(float64(r.Count(m)), float64(peak), barWidth))
		}
		fmt.Fprintln(w, strings.TrimRight(sb.String(), " "))
	}
}

// hbar draws v as a horizontal bar of at most width cells, using eighth
// blocks for the fractional cell. Non-positive values draw nothing.
func hbar(v, peak float64, width int) string {
	if v <= 0 || peak <= 0 || width <= 0 {
		return ""
	}
	partials := []rune(" ▏▎▍▌▋▊▉")
	eighths := int(math.Round(v / peak * float64(width*8)))
	eighths = min(eighths, width*8)
	full, rem := eighths/8, eighths%8

	var sb strings.Builder
	sb.WriteString(strings.Repeat("█", full))
	if rem > 0 {
		sb.WriteRune(partials[rem])
	}
	if sb.Len() == 0 {
		// Tiny but positive values stay visible.
		sb.WriteRune(partials[1])
	}
	return sb.String()
}

func clip(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}
