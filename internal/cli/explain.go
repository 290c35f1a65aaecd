package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/gkobilansky/sigcalc/internal/report"
)

func newExplainCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "explain",
		Short: "Explain the statistical concepts behind the result",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			for i, c := range report.Concepts(a.locale()) {
				if i > 0 {
					fmt.Fprintln(out)
				}
				fmt.Fprintln(out, c.Title)
				fmt.Fprintln(out, c.Body)
			}
			return nil
		},
	}
}
