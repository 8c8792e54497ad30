// Package engine holds the per-search-engine policy the trace stages
// consult: canonical domains, infrastructure redirectors and landing
// detection quirks.
package engine

import (
	"errors"
	"fmt"
	"strings"
)

// Engine describes one studied search engine.
type Engine struct {
	// Name is the short key used in the corpus engine order.
	Name string `yaml:"name"`
	// Domain is the host the engine serves results from. Navigation paths
	// start here and it is the first party right after the click.
	Domain string `yaml:"domain"`
	// Redirectors are hosts of the engine's own click infrastructure. They
	// are dropped from reported paths.
	Redirectors []string `yaml:"redirectors"`
	// ClickRedirector is the host that receives the ad click itself, if the
	// engine routes clicks through one. It never counts as a redirecting
	// request.
	ClickRedirector string `yaml:"click_redirector"`
	// LandingNeedsHeaders makes a landing-domain request count as arrival
	// only when it carries response headers. Bing prefetches the landing
	// page before navigating to it.
	LandingNeedsHeaders bool `yaml:"landing_needs_headers"`
	// BareDomainLanding is set when ads display the landing domain without
	// a scheme or path.
	BareDomainLanding bool `yaml:"bare_domain_landing"`
}

// Canonical engine names, in corpus order.
const (
	Bing       = "bing"
	Google     = "google"
	DuckDuckGo = "ddg"
	Startpage  = "startpage"
	Qwant      = "qwant"
)

var defaults = []Engine{
	{
		Name:                Bing,
		Domain:              "www.bing.com",
		Redirectors:         []string{"r.g.bing.com"},
		ClickRedirector:     "r.g.bing.com",
		LandingNeedsHeaders: true,
	},
	{Name: Google, Domain: "www.google.com"},
	{Name: DuckDuckGo, Domain: "duckduckgo.com", BareDomainLanding: true},
	{Name: Startpage, Domain: "www.startpage.com"},
	{Name: Qwant, Domain: "www.qwant.com", Redirectors: []string{"api.qwant.com", "qwa.qwant.com"}},
}

// ErrUnknownEngine is returned when a name is not in the table.
var ErrUnknownEngine = errors.New("unknown search engine")

// Table is an ordered, read-only set of engines. It is safe for concurrent use.
type Table struct {
	engines          []Engine
	byName           map[string]int
	infrastructure   map[string]struct{}
	clickRedirectors map[string]struct{}
}

// Default returns the table of the five studied engines.
func Default() *Table {
	t, err := NewTable(defaults)
	if err != nil {
		panic(err)
	}
	return t
}

// NewTable validates engines and builds a table in the given order.
func NewTable(engines []Engine) (*Table, error) {
	if len(engines) == 0 {
		return nil, errors.New("engine table is empty")
	}
	t := &Table{
		engines:          make([]Engine, 0, len(engines)),
		byName:           make(map[string]int, len(engines)),
		infrastructure:   make(map[string]struct{}),
		clickRedirectors: make(map[string]struct{}),
	}
	for _, e := range engines {
		e.Name = strings.TrimSpace(e.Name)
		if e.Name == "" {
			return nil, errors.New("engine with empty name")
		}
		if e.Domain == "" {
			return nil, fmt.Errorf("engine %q: empty domain", e.Name)
		}
		if _, dup := t.byName[e.Name]; dup {
			return nil, fmt.Errorf("engine %q listed twice", e.Name)
		}
		e.Redirectors = append([]string(nil), e.Redirectors...)
		t.byName[e.Name] = len(t.engines)
		t.engines = append(t.engines, e)
		// Infrastructure hosts apply to every engine.
		for _, r := range e.Redirectors {
			t.infrastructure[r] = struct{}{}
		}
		if e.ClickRedirector != "" {
			t.clickRedirectors[e.ClickRedirector] = struct{}{}
		}
	}
	return t, nil
}

// Names returns the engine names in corpus order.
func (t *Table) Names() []string {
	names := make([]string, len(t.engines))
	for i, e := range t.engines {
		names[i] = e.Name
	}
	return names
}

// Lookup returns the engine registered under name.
func (t *Table) Lookup(name string) (Engine, error) {
	i, ok := t.byName[name]
	if !ok {
		return Engine{}, fmt.Errorf("%w: %q", ErrUnknownEngine, name)
	}
	return t.engines[i], nil
}

// IsInfrastructure reports whether host belongs to any engine's click
// infrastructure.
func (t *Table) IsInfrastructure(host string) bool {
	_, ok := t.infrastructure[host]
	return ok
}

// IsClickRedirector reports whether host is an engine's click endpoint.
func (t *Table) IsClickRedirector(host string) bool {
	_, ok := t.clickRedirectors[host]
	return ok
}
