// Package attribution works out which first party the browser considered
// the current page for each request after an ad click.
//
// Ad click chains move the top-level document through HTTP redirects that
// the trace does not record as navigations. A 3xx response with a Location
// header announces the next document; every later request whose URL
// contains that location opens a new run under the first party it names,
// until another redirect replaces it.
package attribution

import (
	"net/http"
	"strings"

	"github.com/selimozcann/adtrace/internal/model"
	"github.com/selimozcann/adtrace/internal/util"
)

// State is the attribution state after a prefix of the request stream.
type State struct {
	// FirstParty is the host of the page currently owning requests.
	FirstParty string
	// Location is the decoded target of the most recent redirect, "" until
	// one is seen.
	Location string
	// Buckets are the runs of requests per first party so far. The last
	// bucket is the open one.
	Buckets []model.FirstPartyBucket
}

// NewState starts attribution with the engine's result page as first party.
func NewState(seed string) State {
	return State{
		FirstParty: seed,
		Buckets:    []model.FirstPartyBucket{{FirstParty: seed, Requests: []model.Request{}}},
	}
}

// Step folds one request into the state. 404 responses are ignored. Step
// takes ownership of s; callers continue with the returned state only.
func (s State) Step(r model.Request) State {
	if r.Status == http.StatusNotFound {
		return s
	}
	decoded := util.DecodeReserved(r.URL)
	if s.Location != "" && strings.Contains(decoded, s.Location) {
		if host := util.Host(s.Location); host != "" {
			s.FirstParty = host
		}
		s.Buckets = append(s.Buckets, model.FirstPartyBucket{FirstParty: s.FirstParty, Requests: []model.Request{}})
	}
	open := &s.Buckets[len(s.Buckets)-1]
	open.Requests = append(open.Requests, r.Clone())

	if loc := r.ResponseHeaders["location"]; isRedirect(r.Status) && loc != "" {
		s.Location = util.DecodeReserved(loc)
	}
	return s
}

// Finish closes the fold. A redirect target that never produced a request
// of its own still becomes a final, empty bucket. Targets without a host
// (no redirect at all, or a relative location) add nothing.
func (s State) Finish() []model.FirstPartyBucket {
	if s.Location == "" {
		return s.Buckets
	}
	host := util.Host(s.Location)
	if host != "" && host != s.Buckets[len(s.Buckets)-1].FirstParty {
		s.Buckets = append(s.Buckets, model.FirstPartyBucket{FirstParty: host, Requests: []model.Request{}})
	}
	return s.Buckets
}

// Attribute splits reqs, in arrival order, into first-party buckets. The
// buckets concatenated give back reqs without its 404 responses.
func Attribute(reqs []model.Request, seed string) []model.FirstPartyBucket {
	s := NewState(seed)
	for _, r := range reqs {
		s = s.Step(r)
	}
	return s.Finish()
}

func isRedirect(status int) bool {
	return status >= 300 && status <= 399
}
