package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/zalepa/agencydash/dataset"
	"github.com/zalepa/agencydash/metrics"
)

func newExportCmd(a *app) *cobra.Command {
	var jsonOut, csvOut string
	c := &cobra.Command{
		Use:   "export",
		Short: "Write the validated table as JSON and/or CSV",
		Long: `Write the validated table as JSON and/or CSV. A path of "-" writes to
standard output. The exported files load back with --data.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if jsonOut == "" && csvOut == "" {
				return errors.New("nothing to export: pass --json and/or --csv")
			}
			t, err := a.loadTable(cmd.Context())
			if err != nil {
				return err
			}
			if jsonOut != "" {
				if err := exportTo(cmd.OutOrStdout(), jsonOut, t, dataset.WriteJSON); err != nil {
					return err
				}
			}
			if csvOut != "" {
				if err := exportTo(cmd.OutOrStdout(), csvOut, t, dataset.WriteCSV); err != nil {
					return err
				}
			}
			return nil
		},
	}
	c.Flags().StringVar(&jsonOut, "json", "", "JSON output path")
	c.Flags().StringVar(&csvOut, "csv", "", `CSV output path`)
	return c
}

func exportTo(stdout io.Writer, path string, t *metrics.Table, write func(io.Writer, *metrics.Table) error) (err error) {
	if path == "-" {
		return write(stdout, t)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer func() {
		if cerr := f.Close(); err == nil && cerr != nil {
			err = fmt.Errorf("close %s: %w", path, cerr)
		}
	}()
	if err := write(f, t); err != nil {
		return fmt.Errorf("export %s: %w", path, err)
	}
	return nil
}
