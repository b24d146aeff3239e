package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/cognicore/csinsight/pkg/csinsight"
)

// Output formats for analyze.
const (
	formatMarkdown = "markdown"
	formatJSON     = "json"
)

func newAnalyzeCmd(g *globalFlags) *cobra.Command {
	var (
		csvPath string
		prompt  string
		format  string
	)
	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Analyse a CSV of conversation summaries",
		Long: `Load the conversation_summary column of a CSV file and print the analysis
report as Markdown (default) or JSON.

An optional --prompt is echoed in the report header.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if format != formatMarkdown && format != formatJSON {
				return fmt.Errorf("unknown format %q (want markdown or json)", format)
			}
			s, err := loadSettings(g)
			if err != nil {
				return err
			}
			return runAnalyze(cmd.Context(), s, csvPath, prompt, format, cmd.OutOrStdout())
		},
	}
	cmd.Flags().StringVar(&csvPath, "csv", "", "CSV file to analyse (required)")
	cmd.Flags().StringVar(&prompt, "prompt", "", "finalized analysis prompt to echo in the report")
	cmd.Flags().StringVar(&format, "format", formatMarkdown, "output format: markdown or json")
	cmd.MarkFlagRequired("csv")
	return cmd
}

func runAnalyze(ctx context.Context, s *settings, csvPath, prompt, format string, out io.Writer) error {
	f, err := os.Open(csvPath)
	if err != nil {
		return err
	}
	defer f.Close()

	engine, cleanup, err := buildEngine(ctx, s)
	if err != nil {
		return err
	}
	defer cleanup()

	session := csinsight.NewSession()
	session.SetPrompt(prompt)
	if msg, err := engine.LoadDataset(ctx, session, filepath.Base(csvPath), f); err != nil {
		if msg != "" {
			return fmt.Errorf("%s: %w", msg, err)
		}
		return err
	}

	if format == formatJSON {
		rep, err := engine.AnalyzeReport(ctx, session)
		if err != nil {
			return err
		}
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(rep)
	}
	_, err = io.WriteString(out, engine.Analyze(ctx, session))
	return err
}
