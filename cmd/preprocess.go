package cmd

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/selimozcann/adtrace/internal/detect"
	"github.com/selimozcann/adtrace/internal/dictionary"
	"github.com/selimozcann/adtrace/internal/logger"
	"github.com/selimozcann/adtrace/internal/pipeline"
	"github.com/selimozcann/adtrace/internal/runner"
	"github.com/selimozcann/adtrace/internal/store"
	"github.com/selimozcann/adtrace/internal/uid"
)

var (
	preprocessCorpus  string
	preprocessWorkers int
	noTrackers        bool
)

var preprocessCmd = &cobra.Command{
	Use:   "preprocess",
	Short: "Annotate every occurrence of the corpus and write it back",
	RunE: func(cmd *cobra.Command, _ []string) error {
		if cmd.Flags().Changed("corpus") {
			cfg.CorpusPath = preprocessCorpus
		}
		if cmd.Flags().Changed("workers") {
			cfg.Workers = preprocessWorkers
		}
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
		defer stop()
		return preprocess(ctx)
	},
}

func init() {
	preprocessCmd.Flags().StringVar(&preprocessCorpus, "corpus", "", "corpus file to annotate in place")
	preprocessCmd.Flags().IntVarP(&preprocessWorkers, "workers", "w", 0, "occurrences processed concurrently")
	preprocessCmd.Flags().BoolVar(&noTrackers, "no-trackers", false, "keep existing is_tracker flags")
	rootCmd.AddCommand(preprocessCmd)
}

func preprocess(ctx context.Context) error {
	tbl, err := cfg.EngineTable()
	if err != nil {
		return fmt.Errorf("engine table: %w", err)
	}
	corpus, err := store.Load(cfg.CorpusPath, tbl.Names())
	if err != nil {
		return err
	}

	log.Info("preprocessing corpus",
		logger.String("path", cfg.CorpusPath),
		logger.Strings("engines", tbl.Names()),
		logger.Int("workers", cfg.Workers),
		logger.Bool("trackers", !noTrackers))

	w := cfg.UID.TimestampWindow
	uids := uid.NewClassifier(loadDictionary(), uid.WithWindow(uid.Window{From: w.From, To: w.To}))
	opts := []pipeline.Option{pipeline.WithLogger(log)}
	if !noTrackers {
		m, err := detect.LoadFiles(cfg.TrackerLists...)
		if err != nil {
			return err
		}
		block, exception := m.Rules()
		log.Info("tracker lists loaded",
			logger.Int("block_rules", block), logger.Int("exception_rules", exception), logger.Int("skipped", m.Skipped()))
		opts = append(opts, pipeline.WithTrackers(m))
	}

	p := pipeline.New(tbl, uids, opts...)
	out, report, err := runner.New(runner.Config{Workers: cfg.Workers}, p, log).Run(ctx, corpus)
	if err != nil {
		return err
	}
	if err := store.Save(cfg.CorpusPath, out); err != nil {
		return err
	}
	log.Info("corpus annotated", logger.String("path", cfg.CorpusPath), logger.Int("failed", report.Failed()))
	return nil
}

// loadDictionary prefers the configured system word list and falls back
// to the embedded one.
func loadDictionary() *dictionary.Dictionary {
	d, err := dictionary.LoadFile(cfg.DictionaryPath)
	if err == nil {
		log.Debug("dictionary loaded", logger.String("path", cfg.DictionaryPath), logger.Int("words", d.Len()))
		return d
	}
	if errors.Is(err, fs.ErrNotExist) {
		log.Warn("word list not found, using embedded dictionary", logger.String("path", cfg.DictionaryPath))
	} else {
		log.Warn("word list unreadable, using embedded dictionary", logger.Error(err))
	}
	return dictionary.Embedded()
}
