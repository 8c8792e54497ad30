package cmd

import (
	"github.com/spf13/cobra"

	"github.com/selimozcann/adtrace/internal/logger"
	"github.com/selimozcann/adtrace/internal/store"
)

var (
	combineCrawlDir string
	combineOut      string
)

var combineCmd = &cobra.Command{
	Use:   "combine",
	Short: "Combine per-engine crawl files into one corpus",
	RunE: func(cmd *cobra.Command, _ []string) error {
		if cmd.Flags().Changed("crawl-dir") {
			cfg.CrawlDir = combineCrawlDir
		}
		if cmd.Flags().Changed("out") {
			cfg.CorpusPath = combineOut
		}
		names, err := engineNames()
		if err != nil {
			return err
		}
		c, err := store.Combine(cfg.CrawlDir, names, log)
		if err != nil {
			return err
		}
		if err := store.Save(cfg.CorpusPath, c); err != nil {
			return err
		}
		log.Info("corpus written", logger.String("path", cfg.CorpusPath))
		return nil
	},
}

func init() {
	combineCmd.Flags().StringVar(&combineCrawlDir, "crawl-dir", "", "directory holding <engine>.json crawl files")
	combineCmd.Flags().StringVarP(&combineOut, "out", "o", "", "corpus file to write")
	rootCmd.AddCommand(combineCmd)
}
