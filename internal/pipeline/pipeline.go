// Package pipeline runs the trace stages over one occurrence. Each stage
// reads the previous stage's copy and produces a new one; the input
// occurrence is never modified.
package pipeline

import (
	"errors"
	"fmt"

	"github.com/selimozcann/adtrace/internal/attribution"
	"github.com/selimozcann/adtrace/internal/detect"
	"github.com/selimozcann/adtrace/internal/engine"
	"github.com/selimozcann/adtrace/internal/jobid"
	"github.com/selimozcann/adtrace/internal/logger"
	"github.com/selimozcann/adtrace/internal/model"
	"github.com/selimozcann/adtrace/internal/segment"
	"github.com/selimozcann/adtrace/internal/trace"
	"github.com/selimozcann/adtrace/internal/uid"
)

// ErrPanic is returned when a stage panicked. The occurrence is passed
// through unannotated.
var ErrPanic = errors.New("stage panicked")

// Pipeline is safe for concurrent use as long as its classifiers are.
type Pipeline struct {
	engines  *engine.Table
	trackers detect.Classifier
	tracer   *trace.Tracer
	uids     *uid.Classifier
	log      logger.Logger
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithTrackers flags requests with c. Without it existing is_tracker
// values are kept.
func WithTrackers(c detect.Classifier) Option { return func(p *Pipeline) { p.trackers = c } }

// WithLogger sets the logger.
func WithLogger(l logger.Logger) Option { return func(p *Pipeline) { p.log = l } }

// New creates a pipeline for the engines of tbl.
func New(tbl *engine.Table, uids *uid.Classifier, opts ...Option) *Pipeline {
	p := &Pipeline{
		engines: tbl,
		tracer:  trace.New(tbl),
		uids:    uids,
		log:     logger.NewNop(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Process returns an annotated copy of the occurrence at index of the
// named engine's trace. On error the returned occurrence is an
// unannotated copy of o.
func (p *Pipeline) Process(engineName string, index int, o model.Occurrence) (out model.Occurrence, err error) {
	log := p.log.With(logger.String("engine", engineName), logger.Int("occurrence", index))

	e, err := p.engines.Lookup(engineName)
	if err != nil {
		return o.Clone(), err
	}

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", ErrPanic, r)
			log.Error("occurrence left unannotated", logger.Error(err))
			out = o.Clone()
		}
	}()

	out = o.Clone()
	out.Requests = p.orderRequests(log, out.Requests)
	if p.trackers != nil {
		out.Requests = detect.Annotate(p.trackers, out.Requests)
	}
	out.BeforeClicking = segment.BeforeClick(out)

	if !out.Clicked() {
		clearClickFields(&out)
		log.Debug("no ad clicked", logger.Int("requests", len(out.Requests)))
		return out, nil
	}

	out.Ads[0].LandingURL = e.NormalizeLandingURL(out.Ads[0].LandingURL)
	out.AfterClicking, out.AfterDestination = segment.AfterClick(out, e)
	out.FirstParties = attribution.Attribute(out.AfterClicking.Requests, e.Domain)

	var landing *model.Request
	if reqs := out.AfterDestination.Requests; len(reqs) > 0 {
		landing = &reqs[0]
	}
	nav := p.tracer.Trace(e, landing)
	out.Navigation = &nav

	tokens := p.uids.Extract(out.AfterClicking.Requests)
	out.AfterClicking.Requests = tokens.Requests
	out.CookieTokens = tokens.Cookies
	out.ParameterTokens = tokens.Parameters
	out.TokensExtracted = true

	log.Debug("occurrence annotated",
		logger.String("path", nav.Path),
		logger.Int("first_parties", len(out.FirstParties)),
		logger.Int("cookie_groups", len(out.CookieTokens)),
		logger.Int("parameter_groups", len(out.ParameterTokens)),
	)
	return out, nil
}

// orderRequests assigns job ids and drops the requests that have none.
func (p *Pipeline) orderRequests(log logger.Logger, reqs []model.Request) []model.Request {
	kept, dropped := jobid.Assign(reqs)
	for _, d := range dropped {
		fields := []logger.Field{logger.Int("request", d.Index), logger.String("url", d.URL), logger.Error(d.Err)}
		if errors.Is(d.Err, jobid.ErrNotIntercepted) {
			log.Debug("request dropped", fields...)
			continue
		}
		log.Warn("malformed request dropped", fields...)
	}
	return kept
}

func clearClickFields(o *model.Occurrence) {
	o.AfterClicking = nil
	o.AfterDestination = nil
	o.FirstParties = nil
	o.Navigation = nil
	o.CookieTokens = nil
	o.ParameterTokens = nil
	o.TokensExtracted = false
}
