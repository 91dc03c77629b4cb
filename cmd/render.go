package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/zalepa/agencydash/render"
)

func newRenderCmd(a *app) *cobra.Command {
	var (
		outDir string
		format string
	)
	c := &cobra.Command{
		Use:   "render",
		Short: "Write every dashboard chart as an image file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := render.ParseFormat(format)
			if err != nil {
				return err
			}
			_, _, charts, err := a.dashboard(cmd.Context())
			if err != nil {
				return err
			}
			if err := os.MkdirAll(outDir, 0o755); err != nil {
				return fmt.Errorf("create output dir: %w", err)
			}
			for _, ch := range charts {
				path := filepath.Join(outDir, ch.ID+"."+string(f))
				if err := writeChart(path, ch, f); err != nil {
					return err
				}
				a.log.Debug("wrote chart", zap.String("path", path))
				fmt.Fprintln(cmd.OutOrStdout(), path)
			}
			return nil
		},
	}
	c.Flags().StringVar(&outDir, "out", "charts", "output directory")
	c.Flags().StringVar(&format, "format", string(render.SVG), "image format: svg or png")
	return c
}

func writeChart(path string, ch *render.Chart, f render.Format) (err error) {
	out, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer func() {
		if cerr := out.Close(); err == nil && cerr != nil {
			err = fmt.Errorf("close %s: %w", path, cerr)
		}
	}()
	return ch.Encode(out, f, render.DefaultWidth, render.DefaultHeight)
}
