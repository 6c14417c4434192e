package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

func newAnalyzeCmd(st *state) *cobra.Command {
	var (
		skipValidation bool
		output         string
	)

	cmd := &cobra.Command{
		Use:   "analyze FILE",
		Short: "Print the narrative profile of a story",
		Long: `Analyze runs the full narrative pipeline over the scenes in FILE.

Examples:
  narrative analyze draft.json
  narrative analyze draft.yaml --output yaml
  narrative analyze notes.json --skip-validation`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if output != FormatJSON && output != FormatYAML {
				return fmt.Errorf("unknown output format %q (use json or yaml)", output)
			}

			req, err := readRequest(args[0])
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			analyze := st.analytics.ValidateAndAnalyze
			if skipValidation {
				analyze = st.analytics.Analyze
			}
			profile, err := analyze(ctx, req)
			if err != nil {
				return fmt.Errorf("analyze: %w", err)
			}
			return write(cmd.OutOrStdout(), output, profile)
		},
	}

	cmd.Flags().BoolVar(&skipValidation, "skip-validation", false, "analyze even when the story is too short")
	cmd.Flags().StringVarP(&output, "output", "o", FormatJSON, "output format: json or yaml")
	return cmd
}
