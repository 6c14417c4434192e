// Package cli provides the command-line interface for narrative analysis.
package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/Corphon/NarrativeDNA/internal/lexicon"
	"github.com/Corphon/NarrativeDNA/internal/models"
	"github.com/Corphon/NarrativeDNA/internal/narrative"
	"github.com/Corphon/NarrativeDNA/internal/services"
	"github.com/Corphon/NarrativeDNA/internal/utils"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// Version is set at build time.
var Version = "1.0.0"

// Output formats.
const (
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// state is shared by the subcommands of one root command.
type state struct {
	lexiconFile  string
	minWordCount int
	verbose      bool

	lexicon   *lexicon.Lexicon
	analytics *services.AnalyticsService
}

// NewRootCmd builds the narrative command tree.
func NewRootCmd() *cobra.Command {
	st := &state{}

	root := &cobra.Command{
		Use:   "narrative",
		Short: "Narrative DNA analysis for story drafts",
		Long: `Narrative analyzes the scenes of a story draft and reports its emotional arc,
character development, theme consistency, pacing and comparative insights.

Input files are JSON or YAML (chosen by extension) holding "nodes" (scenes)
and an optional "project_info".`,
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return st.init()
		},
	}

	root.PersistentFlags().StringVar(&st.lexiconFile, "lexicon", os.Getenv("LEXICON_FILE"), "lexicon YAML file (default: embedded lexicon)")
	root.PersistentFlags().IntVar(&st.minWordCount, "min-words", services.DefaultMinWordCount, "minimum word count required for analysis")
	root.PersistentFlags().BoolVarP(&st.verbose, "verbose", "v", false, "verbose output")

	root.AddCommand(newAnalyzeCmd(st))
	root.AddCommand(newQuickCmd(st))
	root.AddCommand(newLexiconCmd(st))
	return root
}

// Execute runs the root command against os.Args.
func Execute() error {
	return NewRootCmd().Execute()
}

func (st *state) init() error {
	level := utils.ERROR
	if st.verbose {
		level = utils.DEBUG
	}
	// keep stdout for command output
	logger := utils.GetLogger()
	logger.SetOutput(os.Stderr)
	logger.SetLogLevel(level)

	st.lexicon = lexicon.Default()
	if st.lexiconFile != "" {
		lex, err := lexicon.Load(st.lexiconFile)
		if err != nil {
			return err
		}
		st.lexicon = lex
	}

	metrics := utils.NewAnalysisMetricsWith(utils.NewMetricsCollector(), logger)
	st.analytics = services.NewAnalyticsService(
		narrative.NewAnalyzer(narrative.WithLexicon(st.lexicon)),
		nil,
		metrics,
		services.AnalyticsOptions{MinWordCount: st.minWordCount, MaxConcurrent: 1},
	)
	return nil
}

// readRequest decodes an analysis request from a JSON or YAML file.
func readRequest(path string) (*models.AnalysisRequest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	var req models.AnalysisRequest
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &req)
	case ".json":
		err = json.Unmarshal(data, &req)
	default:
		return nil, fmt.Errorf("unsupported input format %q (use .json, .yaml or .yml)", filepath.Ext(path))
	}
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return &req, nil
}

// write encodes v to w in the requested format.
func write(w io.Writer, format string, v interface{}) error {
	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	default:
		return fmt.Errorf("unknown output format %q (use json or yaml)", format)
	}
}
