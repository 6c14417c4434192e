package cli

import (
	"github.com/spf13/cobra"
)

func newLexiconCmd(st *state) *cobra.Command {
	return &cobra.Command{
		Use:   "lexicon",
		Short: "Print the active lexicon as YAML",
		Long: `Lexicon prints the keyword tables used for scoring. Save the output, edit it
and pass it back with --lexicon (or LEXICON_FILE) to tune the analysis.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return write(cmd.OutOrStdout(), FormatYAML, st.lexicon)
		},
	}
}
