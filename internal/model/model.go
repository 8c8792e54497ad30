package model

// Hop is one request the browser followed automatically before the request
// that carries it in its redirect chain.
type Hop struct {
	URL             string            `json:"url"`
	Status          int               `json:"status,omitempty"`
	ResponseHeaders map[string]string `json:"responseHeaders,omitempty"`
	InterceptionID  string            `json:"interceptionId,omitempty"`
	RequestID       string            `json:"requestId,omitempty"`
}

// Request is one observed network exchange of a crawl.
type Request struct {
	URL             string            `json:"url"`
	Timestamp       float64           `json:"timestamp"`
	Status          int               `json:"status,omitempty"`
	ResponseHeaders map[string]string `json:"responseHeaders"`
	RedirectChain   []Hop             `json:"redirectChain"`
	InterceptionID  string            `json:"interceptionId,omitempty"`
	RequestID       string            `json:"requestId,omitempty"`
	JobID           *float64          `json:"job_id,omitempty"`
	IsTracker       bool              `json:"is_tracker"`

	// Set by the UID extraction on after-click requests.
	SetCookies map[string]string `json:"set_cookies,omitempty"`
	Parameters map[string]string `json:"parameters,omitempty"`

	Extra Extras `json:"-"`
}

// Ad is an advertisement observed on the result page.
type Ad struct {
	URL        string `json:"url,omitempty"`
	LandingURL string `json:"landing_url"`

	Extra Extras `json:"-"`
}

// Phase groups the requests of one temporal phase of an occurrence with
// their domain projections.
type Phase struct {
	Requests        []Request
	Domains         []string
	TrackerRequests []Request
	TrackerDomains  []string
}

// FirstPartyBucket is a contiguous run of requests attributed to the page
// the browser treated as its top-level document.
type FirstPartyBucket struct {
	FirstParty string
	Requests   []Request
}

// TokenGroup holds the UID tokens found in one response or request
// together with the domain that owned it.
type TokenGroup struct {
	Tokens map[string]string
	Domain string
}

// Navigation is the reconstructed route from the engine to the landing page.
type Navigation struct {
	Path                string
	Redirectors         []string
	RedirectingRequests []string
}

// Occurrence is one simulated search followed by an ad click.
type Occurrence struct {
	Requests     []Request
	ClickingTime *float64
	Ads          []Ad
	ClickedURL   string

	BeforeClicking   *Phase
	AfterClicking    *Phase
	AfterDestination *Phase

	FirstParties []FirstPartyBucket
	Navigation   *Navigation

	CookieTokens    []TokenGroup
	ParameterTokens []TokenGroup
	TokensExtracted bool

	Extra Extras
}

// Clicked reports whether an ad was clicked during the occurrence.
func (o *Occurrence) Clicked() bool {
	return o.ClickedURL != "" && len(o.Ads) > 0
}

// HasClickTime reports whether the click timestamp is usable.
func (o *Occurrence) HasClickTime() bool {
	return o.ClickingTime != nil && *o.ClickingTime > 0
}

// EngineTrace is the ordered collection of occurrences of one engine.
type EngineTrace struct {
	Engine      string
	Occurrences []Occurrence
}

// Corpus holds one trace per engine, in the canonical engine order.
type Corpus []EngineTrace
