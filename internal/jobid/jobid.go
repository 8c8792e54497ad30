// Package jobid orders the requests of a crawl by the interception job
// number the browser assigned to them.
package jobid

import (
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/selimozcann/adtrace/internal/model"
	"github.com/selimozcann/adtrace/internal/util"
)

const prefix = "interception-job-"

var (
	// ErrNotIntercepted marks requests the browser never intercepted, such
	// as data: URLs. Dropping them is expected.
	ErrNotIntercepted = errors.New("request was not intercepted")
	// ErrMissingInterceptionID marks a network request without an
	// interception id.
	ErrMissingInterceptionID = errors.New("missing interception id")
	// ErrMalformedInterceptionID marks an interception id of another form.
	ErrMalformedInterceptionID = errors.New("malformed interception id")
)

// Dropped describes a request removed from an occurrence.
type Dropped struct {
	Index int
	URL   string
	Err   error
}

// Parse extracts the job number from an id like "interception-job-12.0".
func Parse(id string) (float64, error) {
	rest, ok := strings.CutPrefix(id, prefix)
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrMalformedInterceptionID, id)
	}
	n, err := strconv.ParseFloat(rest, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q: %w", ErrMalformedInterceptionID, id, err)
	}
	return n, nil
}

// Assign returns copies of reqs carrying their job id, sorted by it.
// Requests whose job id cannot be derived are returned in dropped.
func Assign(reqs []model.Request) (kept []model.Request, dropped []Dropped) {
	kept = make([]model.Request, 0, len(reqs))
	for i, r := range reqs {
		if r.InterceptionID == "" {
			err := ErrMissingInterceptionID
			if r.RequestID != "" && util.Host(r.URL) == "" {
				err = ErrNotIntercepted
			}
			dropped = append(dropped, Dropped{Index: i, URL: r.URL, Err: err})
			continue
		}
		id, err := Parse(r.InterceptionID)
		if err != nil {
			dropped = append(dropped, Dropped{Index: i, URL: r.URL, Err: err})
			continue
		}
		r = r.Clone()
		r.JobID = &id
		kept = append(kept, r)
	}
	slices.SortStableFunc(kept, func(a, b model.Request) int {
		switch {
		case *a.JobID < *b.JobID:
			return -1
		case *a.JobID > *b.JobID:
			return 1
		}
		return 0
	})
	return kept, dropped
}
