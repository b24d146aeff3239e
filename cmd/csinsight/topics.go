package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/cognicore/csinsight/pkg/csinsight/dataset"
	"github.com/cognicore/csinsight/pkg/csinsight/topics"
)

func newTopicsCmd(g *globalFlags) *cobra.Command {
	var (
		csvPath string
		top     int
	)
	cmd := &cobra.Command{
		Use:   "topics",
		Short: "List the most frequent issue phrases in a CSV",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := loadSettings(g)
			if err != nil {
				return err
			}
			f, err := os.Open(csvPath)
			if err != nil {
				return err
			}
			defer f.Close()
			ds, err := dataset.Load(f, filepath.Base(csvPath))
			if err != nil {
				return err
			}
			return printTopics(cmd.OutOrStdout(), s.miner().Mine(ds.Texts(), top))
		},
	}
	cmd.Flags().StringVar(&csvPath, "csv", "", "CSV file to mine (required)")
	cmd.Flags().IntVar(&top, "top", topics.DefaultTopN, "number of topics to print")
	cmd.MarkFlagRequired("csv")
	return cmd
}

func printTopics(out io.Writer, ts []topics.Topic) error {
	if len(ts) == 0 {
		_, err := fmt.Fprintln(out, "No recurring topics found.")
		return err
	}
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "PHRASE\tCOUNT")
	for _, t := range ts {
		fmt.Fprintf(w, "%s\t%d\n", t.Phrase, t.Count)
	}
	return w.Flush()
}
