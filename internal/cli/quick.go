package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newQuickCmd(st *state) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "quick FILE",
		Short: "Print word counts, status distribution and suggestions",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req, err := readRequest(args[0])
			if err != nil {
				return err
			}
			insights, err := st.analytics.QuickInsights(req)
			if err != nil {
				return fmt.Errorf("quick insights: %w", err)
			}
			return write(cmd.OutOrStdout(), output, insights)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", FormatJSON, "output format: json or yaml")
	return cmd
}
