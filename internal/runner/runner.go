package runner

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/selimozcann/adtrace/internal/logger"
	"github.com/selimozcann/adtrace/internal/model"
)

// Processor annotates one occurrence. Implementations must not modify
// their input and must be safe for concurrent use.
type Processor interface {
	Process(engineName string, index int, o model.Occurrence) (model.Occurrence, error)
}

// Config holds settings for the runner.
type Config struct {
	Workers int
}

// EngineReport counts the outcome of one engine's occurrences.
type EngineReport struct {
	Engine      string
	Occurrences int
	Failed      int
}

// Report summarizes a run, one entry per engine in corpus order.
type Report []EngineReport

// Failed returns the number of occurrences left unannotated.
func (r Report) Failed() int {
	n := 0
	for _, e := range r {
		n += e.Failed
	}
	return n
}

// Runner processes the occurrences of a corpus concurrently.
type Runner struct {
	cfg  Config
	proc Processor
	log  logger.Logger
}

// New creates a new Runner.
func New(cfg Config, proc Processor, log logger.Logger) *Runner {
	if cfg.Workers < 1 {
		cfg.Workers = 1
	}
	if log == nil {
		log = logger.NewNop()
	}
	return &Runner{cfg: cfg, proc: proc, log: log}
}

// Run processes every occurrence of every engine and returns a new corpus
// in the same order. A failing occurrence is logged and kept as returned
// by the processor; only cancellation of ctx aborts the run.
func (r *Runner) Run(ctx context.Context, corpus model.Corpus) (model.Corpus, Report, error) {
	out := make(model.Corpus, len(corpus))
	failed := make([][]bool, len(corpus))
	for e, et := range corpus {
		out[e] = model.EngineTrace{Engine: et.Engine, Occurrences: make([]model.Occurrence, len(et.Occurrences))}
		failed[e] = make([]bool, len(et.Occurrences))
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.cfg.Workers)
	for e, et := range corpus {
		for i := range et.Occurrences {
			if gctx.Err() != nil {
				break
			}
			g.Go(func() error {
				if err := gctx.Err(); err != nil {
					return err
				}
				res, err := r.proc.Process(et.Engine, i, et.Occurrences[i])
				if err != nil {
					r.log.Warn("occurrence failed",
						logger.String("engine", et.Engine), logger.Int("occurrence", i), logger.Error(err))
					failed[e][i] = true
				}
				out[e].Occurrences[i] = res
				return nil
			})
		}
	}
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}

	report := make(Report, len(corpus))
	for e, et := range corpus {
		report[e] = EngineReport{Engine: et.Engine, Occurrences: len(et.Occurrences)}
		for _, f := range failed[e] {
			if f {
				report[e].Failed++
			}
		}
		r.log.Info("engine processed",
			logger.String("engine", et.Engine),
			logger.Int("occurrences", report[e].Occurrences),
			logger.Int("failed", report[e].Failed))
	}
	return out, report, nil
}
