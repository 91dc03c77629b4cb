package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/zalepa/agencydash/render"
)

func newInspectCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "inspect FILE.pdf",
		Short: "Print page information for a PDF",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			info, err := render.InspectPDFFile(args[0])
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "%s: %d pages\n", args[0], info.Pages)
			for i, n := range info.ContentBytes {
				fmt.Fprintf(w, "  page %d: %s content bytes\n", i+1, render.FormatCount(int64(n)))
			}
			if empty := info.EmptyPages(); len(empty) > 0 {
				fmt.Fprintf(w, "empty pages: %v\n", empty)
			}
			return nil
		},
	}
}
