package model

import "maps"

// Clone returns a deep copy of the hop.
func (h Hop) Clone() Hop {
	h.ResponseHeaders = maps.Clone(h.ResponseHeaders)
	return h
}

// Clone returns a deep copy of the request.
func (r Request) Clone() Request {
	r.ResponseHeaders = maps.Clone(r.ResponseHeaders)
	if r.RedirectChain != nil {
		chain := make([]Hop, len(r.RedirectChain))
		for i, h := range r.RedirectChain {
			chain[i] = h.Clone()
		}
		r.RedirectChain = chain
	}
	if r.JobID != nil {
		id := *r.JobID
		r.JobID = &id
	}
	r.SetCookies = maps.Clone(r.SetCookies)
	r.Parameters = maps.Clone(r.Parameters)
	r.Extra = maps.Clone(r.Extra)
	return r
}

// CloneRequests deep copies a request list, keeping nil as nil.
func CloneRequests(reqs []Request) []Request {
	if reqs == nil {
		return nil
	}
	out := make([]Request, len(reqs))
	for i, r := range reqs {
		out[i] = r.Clone()
	}
	return out
}

func cloneStrings(s []string) []string {
	if s == nil {
		return nil
	}
	return append([]string(nil), s...)
}

// Clone returns a deep copy of the phase.
func (p *Phase) Clone() *Phase {
	if p == nil {
		return nil
	}
	return &Phase{
		Requests:        CloneRequests(p.Requests),
		Domains:         cloneStrings(p.Domains),
		TrackerRequests: CloneRequests(p.TrackerRequests),
		TrackerDomains:  cloneStrings(p.TrackerDomains),
	}
}

func cloneGroups(groups []TokenGroup) []TokenGroup {
	if groups == nil {
		return nil
	}
	out := make([]TokenGroup, len(groups))
	for i, g := range groups {
		out[i] = TokenGroup{Tokens: maps.Clone(g.Tokens), Domain: g.Domain}
	}
	return out
}

// Clone returns a deep copy of the occurrence, annotations included.
// Workers own their clone and may annotate it freely.
func (o Occurrence) Clone() Occurrence {
	out := o
	out.Requests = CloneRequests(o.Requests)
	if o.ClickingTime != nil {
		t := *o.ClickingTime
		out.ClickingTime = &t
	}
	if o.Ads != nil {
		out.Ads = make([]Ad, len(o.Ads))
		for i, a := range o.Ads {
			a.Extra = maps.Clone(a.Extra)
			out.Ads[i] = a
		}
	}
	out.BeforeClicking = o.BeforeClicking.Clone()
	out.AfterClicking = o.AfterClicking.Clone()
	out.AfterDestination = o.AfterDestination.Clone()
	if o.FirstParties != nil {
		out.FirstParties = make([]FirstPartyBucket, len(o.FirstParties))
		for i, b := range o.FirstParties {
			out.FirstParties[i] = FirstPartyBucket{FirstParty: b.FirstParty, Requests: CloneRequests(b.Requests)}
		}
	}
	if o.Navigation != nil {
		out.Navigation = &Navigation{
			Path:                o.Navigation.Path,
			Redirectors:         cloneStrings(o.Navigation.Redirectors),
			RedirectingRequests: cloneStrings(o.Navigation.RedirectingRequests),
		}
	}
	out.CookieTokens = cloneGroups(o.CookieTokens)
	out.ParameterTokens = cloneGroups(o.ParameterTokens)
	out.Extra = maps.Clone(o.Extra)
	return out
}
