package trace

import (
	"strings"

	"github.com/selimozcann/adtrace/internal/engine"
	"github.com/selimozcann/adtrace/internal/model"
	"github.com/selimozcann/adtrace/internal/util"
)

// Destination terminates every reported navigation path.
const Destination = "destination"

// PathSeparator joins the domains of a navigation path.
const PathSeparator = " - "

// Tracer reconstructs the navigation from a search engine to an ad's
// landing page out of the redirect chain the browser recorded for the
// first landing request.
type Tracer struct {
	engines *engine.Table
}

// New creates a Tracer using the infrastructure hosts of engines.
func New(engines *engine.Table) *Tracer { return &Tracer{engines: engines} }

// Trace builds the navigation for one occurrence of engine e. landing is
// the first request of the after-destination phase; nil yields an empty
// navigation.
func (t *Tracer) Trace(e engine.Engine, landing *model.Request) model.Navigation {
	if landing == nil {
		return model.Navigation{Redirectors: []string{}, RedirectingRequests: []string{}}
	}

	domains := make([]string, 0, len(landing.RedirectChain)+1)
	domains = append(domains, e.Domain)
	for _, hop := range landing.RedirectChain {
		domains = append(domains, util.Host(hop.URL))
	}
	// A same-host hop right before the landing request (http to https,
	// trailing slash) is the destination itself.
	if n := len(domains); n > 1 && domains[n-1] == util.Host(landing.URL) {
		domains = domains[:n-1]
	}
	domains = util.Dedup(domains)

	path := t.withoutInfrastructure(domains)
	return model.Navigation{
		Path:                strings.Join(append(path, Destination), PathSeparator),
		Redirectors:         t.withoutInfrastructure(domains[1:]),
		RedirectingRequests: t.redirectingRequests(e, landing),
	}
}

func (t *Tracer) withoutInfrastructure(domains []string) []string {
	out := make([]string, 0, len(domains))
	for _, d := range domains {
		if !t.engines.IsInfrastructure(d) {
			out = append(out, d)
		}
	}
	return out
}

// redirectingRequests lists the hop URLs that moved the browser towards
// the landing page. The first hop only counts when it is not the engine's
// own click endpoint.
func (t *Tracer) redirectingRequests(e engine.Engine, landing *model.Request) []string {
	out := []string{}
	chain := landing.RedirectChain
	if len(chain) > 0 {
		if host := util.Host(chain[0].URL); host != e.Domain && !t.engines.IsClickRedirector(host) {
			out = append(out, chain[0].URL)
		}
		for _, hop := range chain[1:] {
			out = append(out, hop.URL)
		}
	}
	for _, u := range out {
		if u == landing.URL {
			return out
		}
	}
	return append(out, landing.URL)
}
