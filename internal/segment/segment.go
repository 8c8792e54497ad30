// Package segment splits the request timeline of an occurrence into the
// phases before the ad click, between the click and the landing page, and
// after the landing page was reached.
package segment

import (
	"github.com/selimozcann/adtrace/internal/engine"
	"github.com/selimozcann/adtrace/internal/model"
	"github.com/selimozcann/adtrace/internal/util"
)

// DomainFunc projects a request URL onto the domain recorded for it.
type DomainFunc func(url string) string

// NewPhase copies reqs into a phase with their domain projection and the
// subset flagged as trackers. Tracker domains are always network locations.
func NewPhase(reqs []model.Request, domain DomainFunc) *model.Phase {
	p := &model.Phase{
		Requests:        model.CloneRequests(reqs),
		Domains:         make([]string, 0, len(reqs)),
		TrackerRequests: []model.Request{},
		TrackerDomains:  []string{},
	}
	if p.Requests == nil {
		p.Requests = []model.Request{}
	}
	for _, r := range p.Requests {
		p.Domains = append(p.Domains, domain(r.URL))
		if r.IsTracker {
			p.TrackerRequests = append(p.TrackerRequests, r.Clone())
			p.TrackerDomains = append(p.TrackerDomains, util.Host(r.URL))
		}
	}
	return p
}

// SplitAtClick partitions requests into those sent before the click and
// those sent at or after it. Without a click time every request is
// pre-click. Order is preserved and the halves are disjoint.
func SplitAtClick(o model.Occurrence) (pre, post []model.Request) {
	if !o.HasClickTime() {
		return o.Requests, nil
	}
	click := *o.ClickingTime
	for _, r := range o.Requests {
		if r.Timestamp < click {
			pre = append(pre, r)
		} else {
			post = append(post, r)
		}
	}
	return pre, post
}

// BeforeClick returns the pre-click phase of an occurrence.
func BeforeClick(o model.Occurrence) *model.Phase {
	pre, _ := SplitAtClick(o)
	return NewPhase(pre, util.Host)
}

// LandingDomain returns the registrable domain of the clicked ad's landing
// page, or "" when the occurrence has no ad.
func LandingDomain(o model.Occurrence, e engine.Engine) string {
	if len(o.Ads) == 0 {
		return ""
	}
	return util.RegistrableDomain(e.NormalizeLandingURL(o.Ads[0].LandingURL))
}

// FindLanding returns the index of the first request that reached the
// landing domain, or len(reqs) when none did. An engine that prefetches
// landing pages only counts requests that carry response headers.
func FindLanding(reqs []model.Request, landing string, e engine.Engine) int {
	if landing == "" {
		return len(reqs)
	}
	for i, r := range reqs {
		if util.RegistrableDomain(r.URL) != landing {
			continue
		}
		if e.LandingNeedsHeaders && len(r.ResponseHeaders) == 0 {
			continue
		}
		return i
	}
	return len(reqs)
}

// AfterClick splits the post-click requests at the landing boundary. The
// boundary request opens the after-destination phase.
func AfterClick(o model.Occurrence, e engine.Engine) (afterClick, afterDestination *model.Phase) {
	_, post := SplitAtClick(o)
	cut := FindLanding(post, LandingDomain(o, e), e)
	return NewPhase(post[:cut], util.ETLDPlusSubdomain), NewPhase(post[cut:], util.ETLDPlusSubdomain)
}
