package main

import (
	"github.com/spf13/cobra"
)

// globalFlags are shared by every subcommand.
type globalFlags struct {
	configPath string
	rulesPath  string
	logLevel   string
}

func newRootCmd() *cobra.Command {
	var g globalFlags
	root := &cobra.Command{
		Use:   "csinsight",
		Short: "Analyse customer service conversation summaries",
		Long: `csinsight categorises batches of customer service conversation summaries,
mines recurring issues, clusters near-duplicate complaints and renders a
structured report.

Run it once against a CSV file, or serve the chat and analysis API.`,
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&g.configPath, "config", "", "config file (default ./csinsight.yaml)")
	root.PersistentFlags().StringVar(&g.rulesPath, "rules", "", "category rules YAML file")
	root.PersistentFlags().StringVar(&g.logLevel, "log-level", "", "log level: debug, info, warn, error")

	root.AddCommand(
		newAnalyzeCmd(&g),
		newTopicsCmd(&g),
		newServeCmd(&g),
		newSchemaCmd(),
	)
	return root
}
