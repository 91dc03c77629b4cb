package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/zalepa/agencydash/render"
)

func newReportCmd(a *app) *cobra.Command {
	var out string
	c := &cobra.Command{
		Use:   "report",
		Short: "Write the dashboard as a multi-page PDF",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			t, totals, charts, err := a.dashboard(cmd.Context())
			if err != nil {
				return err
			}
			s := a.settings()
			report := render.Report{
				Title:  s.Title,
				Table:  t,
				Totals: totals,
				Charts: charts,
				Theme:  s.renderOptions().Theme,
			}
			if err := writeReport(out, report); err != nil {
				return err
			}

			info, err := render.InspectPDFFile(out)
			if err != nil {
				return fmt.Errorf("verify %s: %w", out, err)
			}
			if want := 1 + len(charts); info.Pages < want {
				return fmt.Errorf("verify %s: %d pages, want at least %d", out, info.Pages, want)
			}
			if empty := info.EmptyPages(); len(empty) > 0 {
				return fmt.Errorf("verify %s: empty pages %v", out, empty)
			}

			a.log.Info("report written", zap.String("path", out), zap.Int("pages", info.Pages))
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s (%d pages)\n", out, info.Pages)
			return nil
		},
	}
	c.Flags().StringVar(&out, "out", "agency-dashboard.pdf", "output PDF path")
	return c
}

func writeReport(path string, r render.Report) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer func() {
		if cerr := f.Close(); err == nil && cerr != nil {
			err = fmt.Errorf("close %s: %w", path, cerr)
		}
	}()
	return r.Write(f)
}
