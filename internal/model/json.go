package model

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strings"
)

// Extras keeps the JSON keys a type does not model so a load/save round
// trip does not lose crawl data.
type Extras map[string]json.RawMessage

func jsonKeys(t reflect.Type) map[string]struct{} {
	keys := make(map[string]struct{}, t.NumField())
	for i := range t.NumField() {
		tag := t.Field(i).Tag.Get("json")
		name, _, _ := strings.Cut(tag, ",")
		if name == "" || name == "-" {
			continue
		}
		keys[name] = struct{}{}
	}
	return keys
}

func splitExtras(data []byte, known map[string]struct{}) (Extras, error) {
	var all map[string]json.RawMessage
	if err := json.Unmarshal(data, &all); err != nil {
		return nil, err
	}
	var extra Extras
	for k, v := range all {
		if _, ok := known[k]; ok {
			continue
		}
		if extra == nil {
			extra = make(Extras)
		}
		extra[k] = v
	}
	return extra, nil
}

// mergeExtras adds extra keys to an encoded object. Keys already present in
// base win. Output keys are sorted, which keeps saves byte-stable.
func mergeExtras(base []byte, extra Extras) ([]byte, error) {
	if len(extra) == 0 {
		return base, nil
	}
	var all map[string]json.RawMessage
	if err := json.Unmarshal(base, &all); err != nil {
		return nil, err
	}
	for k, v := range extra {
		if _, ok := all[k]; !ok {
			all[k] = v
		}
	}
	return json.Marshal(all)
}

type requestAlias Request

var requestKeys = jsonKeys(reflect.TypeOf(requestAlias{}))

// UnmarshalJSON decodes a request and keeps unknown keys.
func (r *Request) UnmarshalJSON(data []byte) error {
	var a requestAlias
	if err := json.Unmarshal(data, &a); err != nil {
		return err
	}
	extra, err := splitExtras(data, requestKeys)
	if err != nil {
		return err
	}
	*r = Request(a)
	r.Extra = extra
	return nil
}

// MarshalJSON encodes a request with its unknown keys.
func (r Request) MarshalJSON() ([]byte, error) {
	a := requestAlias(r)
	if a.ResponseHeaders == nil {
		a.ResponseHeaders = map[string]string{}
	}
	if a.RedirectChain == nil {
		a.RedirectChain = []Hop{}
	}
	base, err := json.Marshal(a)
	if err != nil {
		return nil, err
	}
	return mergeExtras(base, r.Extra)
}

type adAlias Ad

var adKeys = jsonKeys(reflect.TypeOf(adAlias{}))

// UnmarshalJSON decodes an ad and keeps unknown keys.
func (a *Ad) UnmarshalJSON(data []byte) error {
	var v adAlias
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	extra, err := splitExtras(data, adKeys)
	if err != nil {
		return err
	}
	*a = Ad(v)
	a.Extra = extra
	return nil
}

// MarshalJSON encodes an ad with its unknown keys.
func (a Ad) MarshalJSON() ([]byte, error) {
	base, err := json.Marshal(adAlias(a))
	if err != nil {
		return nil, err
	}
	return mergeExtras(base, a.Extra)
}

// MarshalJSON encodes the bucket as a single-key object {firstParty: requests}.
func (b FirstPartyBucket) MarshalJSON() ([]byte, error) {
	reqs := b.Requests
	if reqs == nil {
		reqs = []Request{}
	}
	return json.Marshal(map[string][]Request{b.FirstParty: reqs})
}

// UnmarshalJSON decodes a single-key object into a bucket.
func (b *FirstPartyBucket) UnmarshalJSON(data []byte) error {
	var m map[string][]Request
	if err := json.Unmarshal(data, &m); err != nil {
		return err
	}
	if len(m) != 1 {
		return fmt.Errorf("first-party bucket: expected one key, got %d", len(m))
	}
	for k, v := range m {
		b.FirstParty = k
		b.Requests = v
	}
	return nil
}

// MarshalJSON encodes the group as a [tokens, domain] pair.
func (g TokenGroup) MarshalJSON() ([]byte, error) {
	tokens := g.Tokens
	if tokens == nil {
		tokens = map[string]string{}
	}
	return json.Marshal([]any{tokens, g.Domain})
}

// UnmarshalJSON decodes a [tokens, domain] pair.
func (g *TokenGroup) UnmarshalJSON(data []byte) error {
	var pair []json.RawMessage
	if err := json.Unmarshal(data, &pair); err != nil {
		return err
	}
	if len(pair) != 2 {
		return fmt.Errorf("token group: expected a pair, got %d items", len(pair))
	}
	if err := json.Unmarshal(pair[0], &g.Tokens); err != nil {
		return fmt.Errorf("token group tokens: %w", err)
	}
	if err := json.Unmarshal(pair[1], &g.Domain); err != nil {
		return fmt.Errorf("token group domain: %w", err)
	}
	return nil
}

// occurrenceWire is the persisted shape of an Occurrence. Annotation keys
// are pointers so that an occurrence a stage skipped keeps them absent.
type occurrenceWire struct {
	Requests     []Request `json:"requests"`
	ClickingTime *float64  `json:"clicking_time,omitempty"`
	Ads          []Ad      `json:"ads"`
	ClickedURL   string    `json:"clicked_url"`

	RequestsBeforeClicking        *[]Request `json:"requests_before_clicking,omitempty"`
	DomainsBeforeClicking         *[]string  `json:"domains_before_clicking,omitempty"`
	TrackerRequestsBeforeClicking *[]Request `json:"tracker_requests_before_clicking,omitempty"`
	TrackerDomainsBeforeClicking  *[]string  `json:"tracker_domains_before_clicking,omitempty"`

	RequestsAfterClicking        *[]Request `json:"requests_after_clicking,omitempty"`
	DomainsAfterClicking         *[]string  `json:"domains_after_clicking,omitempty"`
	TrackerRequestsAfterClicking *[]Request `json:"tracker_requests_after_clicking,omitempty"`
	TrackerDomainsAfterClicking  *[]string  `json:"tracker_domains_after_clicking,omitempty"`

	RequestsAfterDestination        *[]Request `json:"requests_after_reaching_destination,omitempty"`
	DomainsAfterDestination         *[]string  `json:"domains_after_reaching_destination,omitempty"`
	TrackerRequestsAfterDestination *[]Request `json:"tracker_requests_after_reaching_destination,omitempty"`
	TrackerDomainsAfterDestination  *[]string  `json:"tracker_domains_after_reaching_destination,omitempty"`

	FirstParties *[]FirstPartyBucket `json:"requests_by_first_parties,omitempty"`

	Path                *string         `json:"path,omitempty"`
	Redirectors         *[]string       `json:"redirectors,omitempty"`
	RedirectingRequests *lenientStrings `json:"redirecting_requests,omitempty"`

	CookieTokens    *[]TokenGroup `json:"set-cookies_after_clicking,omitempty"`
	ParameterTokens *[]TokenGroup `json:"parameters_after_clicking,omitempty"`
}

// lenientStrings also accepts a bare string, which older corpora store in
// place of an empty list.
type lenientStrings []string

func (l *lenientStrings) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		if s == "" {
			*l = lenientStrings{}
		} else {
			*l = lenientStrings{s}
		}
		return nil
	}
	var v []string
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*l = v
	return nil
}

var occurrenceKeys = jsonKeys(reflect.TypeOf(occurrenceWire{}))

func nonNil[T any](s []T) *[]T {
	if s == nil {
		s = []T{}
	}
	return &s
}

func derefPhase(reqs, tracker *[]Request, domains, trackerDomains *[]string) *Phase {
	if reqs == nil && domains == nil && tracker == nil && trackerDomains == nil {
		return nil
	}
	p := &Phase{}
	if reqs != nil {
		p.Requests = *reqs
	}
	if domains != nil {
		p.Domains = *domains
	}
	if tracker != nil {
		p.TrackerRequests = *tracker
	}
	if trackerDomains != nil {
		p.TrackerDomains = *trackerDomains
	}
	return p
}

// MarshalJSON encodes the occurrence with its annotations and unknown keys.
func (o Occurrence) MarshalJSON() ([]byte, error) {
	w := occurrenceWire{
		Requests:     o.Requests,
		ClickingTime: o.ClickingTime,
		Ads:          o.Ads,
		ClickedURL:   o.ClickedURL,
	}
	if w.Requests == nil {
		w.Requests = []Request{}
	}
	if w.Ads == nil {
		w.Ads = []Ad{}
	}
	if p := o.BeforeClicking; p != nil {
		w.RequestsBeforeClicking = nonNil(p.Requests)
		w.DomainsBeforeClicking = nonNil(p.Domains)
		w.TrackerRequestsBeforeClicking = nonNil(p.TrackerRequests)
		w.TrackerDomainsBeforeClicking = nonNil(p.TrackerDomains)
	}
	if p := o.AfterClicking; p != nil {
		w.RequestsAfterClicking = nonNil(p.Requests)
		w.DomainsAfterClicking = nonNil(p.Domains)
		w.TrackerRequestsAfterClicking = nonNil(p.TrackerRequests)
		w.TrackerDomainsAfterClicking = nonNil(p.TrackerDomains)
	}
	if p := o.AfterDestination; p != nil {
		w.RequestsAfterDestination = nonNil(p.Requests)
		w.DomainsAfterDestination = nonNil(p.Domains)
		w.TrackerRequestsAfterDestination = nonNil(p.TrackerRequests)
		w.TrackerDomainsAfterDestination = nonNil(p.TrackerDomains)
	}
	if o.FirstParties != nil {
		w.FirstParties = &o.FirstParties
	}
	if n := o.Navigation; n != nil {
		path := n.Path
		w.Path = &path
		w.Redirectors = nonNil(n.Redirectors)
		rr := lenientStrings(n.RedirectingRequests)
		if rr == nil {
			rr = lenientStrings{}
		}
		w.RedirectingRequests = &rr
	}
	if o.TokensExtracted {
		w.CookieTokens = nonNil(o.CookieTokens)
		w.ParameterTokens = nonNil(o.ParameterTokens)
	}
	base, err := json.Marshal(w)
	if err != nil {
		return nil, err
	}
	return mergeExtras(base, o.Extra)
}

// UnmarshalJSON decodes an occurrence, its annotations and unknown keys.
func (o *Occurrence) UnmarshalJSON(data []byte) error {
	var w occurrenceWire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	extra, err := splitExtras(data, occurrenceKeys)
	if err != nil {
		return err
	}
	*o = Occurrence{
		Requests:     w.Requests,
		ClickingTime: w.ClickingTime,
		Ads:          w.Ads,
		ClickedURL:   w.ClickedURL,
		Extra:        extra,
	}
	o.BeforeClicking = derefPhase(w.RequestsBeforeClicking, w.TrackerRequestsBeforeClicking,
		w.DomainsBeforeClicking, w.TrackerDomainsBeforeClicking)
	o.AfterClicking = derefPhase(w.RequestsAfterClicking, w.TrackerRequestsAfterClicking,
		w.DomainsAfterClicking, w.TrackerDomainsAfterClicking)
	o.AfterDestination = derefPhase(w.RequestsAfterDestination, w.TrackerRequestsAfterDestination,
		w.DomainsAfterDestination, w.TrackerDomainsAfterDestination)
	if w.FirstParties != nil {
		o.FirstParties = *w.FirstParties
	}
	if w.Path != nil || w.Redirectors != nil || w.RedirectingRequests != nil {
		n := &Navigation{}
		if w.Path != nil {
			n.Path = *w.Path
		}
		if w.Redirectors != nil {
			n.Redirectors = *w.Redirectors
		}
		if w.RedirectingRequests != nil {
			n.RedirectingRequests = []string(*w.RedirectingRequests)
		}
		o.Navigation = n
	}
	if w.CookieTokens != nil || w.ParameterTokens != nil {
		o.TokensExtracted = true
		if w.CookieTokens != nil {
			o.CookieTokens = *w.CookieTokens
		}
		if w.ParameterTokens != nil {
			o.ParameterTokens = *w.ParameterTokens
		}
	}
	return nil
}
