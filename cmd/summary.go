package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/selimozcann/adtrace/internal/logger"
	"github.com/selimozcann/adtrace/internal/output"
	"github.com/selimozcann/adtrace/internal/store"
)

var (
	summaryTop   int
	summaryJSONL string
)

var summaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Print per-engine counts of an annotated corpus",
	RunE: func(cmd *cobra.Command, _ []string) error {
		names, err := engineNames()
		if err != nil {
			return err
		}
		c, err := store.Load(cfg.CorpusPath, names)
		if err != nil {
			return err
		}
		output.PrintSummary(cmd.OutOrStdout(), output.Summarize(c, summaryTop))
		if summaryJSONL == "" {
			return nil
		}

		f, err := os.Create(summaryJSONL)
		if err != nil {
			return err
		}
		defer f.Close()
		n, err := output.WriteJSONL(f, c)
		if err != nil {
			return err
		}
		log.Debug("records written", logger.String("path", summaryJSONL), logger.Int("records", n))
		return f.Close()
	},
}

func init() {
	summaryCmd.Flags().IntVar(&summaryTop, "top", 5, "most frequent navigation paths shown per engine")
	summaryCmd.Flags().StringVar(&summaryJSONL, "jsonl", "", "also write one JSON line per occurrence to this file")
	rootCmd.AddCommand(summaryCmd)
}
