package trace_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/selimozcann/adtrace/internal/engine"
	"github.com/selimozcann/adtrace/internal/model"
	"github.com/selimozcann/adtrace/internal/trace"
)

func setup(t *testing.T, name string) (*trace.Tracer, engine.Engine) {
	t.Helper()
	tbl := engine.Default()
	e, err := tbl.Lookup(name)
	require.NoError(t, err)
	return trace.New(tbl), e
}

func chain(urls ...string) []model.Hop {
	hops := make([]model.Hop, len(urls))
	for i, u := range urls {
		hops[i] = model.Hop{URL: u}
	}
	return hops
}

func TestTraceBing(t *testing.T) {
	t.Parallel()
	tr, bing := setup(t, engine.Bing)
	landing := &model.Request{
		URL: "https://shop.example/?msclkid=1",
		RedirectChain: chain(
			"https://www.bing.com/aclk?ld=1",
			"https://r.g.bing.com/click?u=1",
			"https://clickserve.dartsearch.net/link/click?x=1",
			"https://ad.doubleclick.net/ddm/clk/1",
			"https://clickserve.dartsearch.net/link/click?x=2",
			"https://shop.example/",
		),
	}
	nav := tr.Trace(bing, landing)

	assert.Equal(t, "www.bing.com - clickserve.dartsearch.net - ad.doubleclick.net - destination", nav.Path)
	assert.Equal(t, []string{"clickserve.dartsearch.net", "ad.doubleclick.net"}, nav.Redirectors)
	assert.Equal(t, []string{
		"https://r.g.bing.com/click?u=1",
		"https://clickserve.dartsearch.net/link/click?x=1",
		"https://ad.doubleclick.net/ddm/clk/1",
		"https://clickserve.dartsearch.net/link/click?x=2",
		"https://shop.example/",
		"https://shop.example/?msclkid=1",
	}, nav.RedirectingRequests)
}

func TestTraceFirstHopCountsWhenNotEngine(t *testing.T) {
	t.Parallel()
	tr, google := setup(t, engine.Google)
	landing := &model.Request{
		URL:           "https://shop.example/",
		RedirectChain: chain("https://www.googleadservices.com/pagead/aclk?sa=L", "https://shop.example/"),
	}
	nav := tr.Trace(google, landing)
	assert.Equal(t, "www.google.com - www.googleadservices.com - destination", nav.Path)
	assert.Equal(t, []string{"https://www.googleadservices.com/pagead/aclk?sa=L", "https://shop.example/"}, nav.RedirectingRequests,
		"the landing URL is not repeated when the chain already holds it")
}

func TestTraceQwantInfrastructure(t *testing.T) {
	t.Parallel()
	tr, qwant := setup(t, engine.Qwant)
	landing := &model.Request{
		URL:           "https://shop.example/",
		RedirectChain: chain("https://api.qwant.com/v3/r?u=1", "https://qwa.qwant.com/redirect", "https://www.bing.com/aclk?x", "https://trk.example/c"),
	}
	nav := tr.Trace(qwant, landing)
	assert.Equal(t, "www.qwant.com - www.bing.com - trk.example - destination", nav.Path)
	assert.Equal(t, []string{"www.bing.com", "trk.example"}, nav.Redirectors)
}

func TestTraceDeduplicatesNonAdjacent(t *testing.T) {
	t.Parallel()
	tr, google := setup(t, engine.Google)
	landing := &model.Request{
		URL:           "https://shop.example/",
		RedirectChain: chain("https://a.example/", "https://b.example/", "https://a.example/2", "https://c.example/", "https://b.example/3"),
	}
	nav := tr.Trace(google, landing)
	assert.Equal(t, []string{"a.example", "b.example", "c.example"}, nav.Redirectors)
}

func TestTraceEngineDomainInChainIsDeduplicated(t *testing.T) {
	t.Parallel()
	tr, ddg := setup(t, engine.DuckDuckGo)
	landing := &model.Request{
		URL:           "https://shop.example/",
		RedirectChain: chain("https://duckduckgo.com/y.js?ad=1", "https://www.bing.com/aclick?x"),
	}
	nav := tr.Trace(ddg, landing)
	assert.True(t, strings.HasPrefix(nav.Path, "duckduckgo.com - "))
	assert.Equal(t, []string{"www.bing.com"}, nav.Redirectors)
	assert.Equal(t, []string{"https://www.bing.com/aclick?x", "https://shop.example/"}, nav.RedirectingRequests)
}

func TestTraceEmptyChain(t *testing.T) {
	t.Parallel()
	tr, google := setup(t, engine.Google)
	nav := tr.Trace(google, &model.Request{URL: "https://shop.example/"})
	assert.Equal(t, "www.google.com - destination", nav.Path)
	assert.Empty(t, nav.Redirectors)
	assert.Equal(t, []string{"https://shop.example/"}, nav.RedirectingRequests)
}

func TestTraceNoLanding(t *testing.T) {
	t.Parallel()
	tr, google := setup(t, engine.Google)
	nav := tr.Trace(google, nil)
	assert.Equal(t, "", nav.Path)
	assert.NotNil(t, nav.Redirectors)
	assert.Empty(t, nav.Redirectors)
	assert.Empty(t, nav.RedirectingRequests)
}

func TestPathShape(t *testing.T) {
	t.Parallel()
	for _, name := range engine.Default().Names() {
		tr, e := setup(t, name)
		nav := tr.Trace(e, &model.Request{URL: "https://shop.example/", RedirectChain: chain("https://x.example/")})
		assert.Truef(t, strings.HasPrefix(nav.Path, e.Domain+trace.PathSeparator), "%s path %q", name, nav.Path)
		assert.Truef(t, strings.HasSuffix(nav.Path, trace.PathSeparator+trace.Destination), "%s path %q", name, nav.Path)
	}
}
