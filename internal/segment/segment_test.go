package segment_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/selimozcann/adtrace/internal/engine"
	"github.com/selimozcann/adtrace/internal/model"
	"github.com/selimozcann/adtrace/internal/segment"
)

func ptr(f float64) *float64 { return &f }

func urls(reqs []model.Request) []string {
	out := make([]string, len(reqs))
	for i, r := range reqs {
		out[i] = r.URL
	}
	return out
}

func lookup(t *testing.T, name string) engine.Engine {
	t.Helper()
	e, err := engine.Default().Lookup(name)
	require.NoError(t, err)
	return e
}

func occurrence() model.Occurrence {
	return model.Occurrence{
		ClickingTime: ptr(100),
		ClickedURL:   "https://www.google.com/aclk?sa=l",
		Ads:          []model.Ad{{LandingURL: "https://www.shop.example > deals"}},
		Requests: []model.Request{
			{URL: "https://www.google.com/search?q=shoes", Timestamp: 10},
			{URL: "https://stats.g.doubleclick.net/collect", Timestamp: 50, IsTracker: true},
			{URL: "https://www.google.com/aclk?sa=l", Timestamp: 100, Status: 302},
			{URL: "https://ad.doubleclick.net/clk", Timestamp: 110, Status: 302, IsTracker: true},
			{URL: "https://www.shop.example/landing", Timestamp: 120, Status: 200},
			{URL: "https://cdn.shop.example/app.js", Timestamp: 130, Status: 200},
		},
	}
}

func TestSplitAtClickPartitionsInOrder(t *testing.T) {
	t.Parallel()
	o := occurrence()
	pre, post := segment.SplitAtClick(o)
	assert.Equal(t, []string{"https://www.google.com/search?q=shoes", "https://stats.g.doubleclick.net/collect"}, urls(pre))
	assert.Equal(t, urls(o.Requests), append(urls(pre), urls(post)...),
		"pre and post halves concatenate back to the request list")
}

func TestSplitWithoutClick(t *testing.T) {
	t.Parallel()
	for name, click := range map[string]*float64{"absent": nil, "zero": ptr(0)} {
		o := occurrence()
		o.ClickingTime = click
		pre, post := segment.SplitAtClick(o)
		assert.Len(t, pre, len(o.Requests), name)
		assert.Empty(t, post, name)
	}
}

func TestBeforeClick(t *testing.T) {
	t.Parallel()
	p := segment.BeforeClick(occurrence())
	assert.Equal(t, []string{"www.google.com", "stats.g.doubleclick.net"}, p.Domains)
	assert.Equal(t, []string{"https://stats.g.doubleclick.net/collect"}, urls(p.TrackerRequests))
	assert.Equal(t, []string{"stats.g.doubleclick.net"}, p.TrackerDomains)
}

func TestAfterClick(t *testing.T) {
	t.Parallel()
	o := occurrence()
	after, dest := segment.AfterClick(o, lookup(t, engine.Google))

	assert.Equal(t, []string{"https://www.google.com/aclk?sa=l", "https://ad.doubleclick.net/clk"}, urls(after.Requests))
	assert.Equal(t, []string{"www.google", "ad.doubleclick"}, after.Domains)
	assert.Equal(t, []string{"ad.doubleclick.net"}, after.TrackerDomains)

	assert.Equal(t, []string{"https://www.shop.example/landing", "https://cdn.shop.example/app.js"}, urls(dest.Requests))
	assert.Equal(t, []string{"www.shop", "cdn.shop"}, dest.Domains)
	assert.Empty(t, dest.TrackerRequests)
}

func TestAfterClickLandingNeverReached(t *testing.T) {
	t.Parallel()
	o := occurrence()
	o.Ads[0].LandingURL = "https://elsewhere.example/"
	after, dest := segment.AfterClick(o, lookup(t, engine.Google))
	assert.Len(t, after.Requests, 4)
	assert.Empty(t, dest.Requests)
	assert.NotNil(t, dest.Requests)
}

// Bing prefetches landing pages; only a landing request with response
// headers marks arrival there. Other engines accept the first match.
func TestBingLandingNeedsHeaders(t *testing.T) {
	t.Parallel()
	o := model.Occurrence{
		ClickingTime: ptr(100),
		ClickedURL:   "https://www.bing.com/aclk?ld=1",
		Ads:          []model.Ad{{LandingURL: "https://shop.example/"}},
		Requests: []model.Request{
			{URL: "https://shop.example/prefetch", Timestamp: 101},
			{URL: "https://r.g.bing.com/click", Timestamp: 102, ResponseHeaders: map[string]string{"location": "https://shop.example/"}},
			{URL: "https://shop.example/", Timestamp: 103, ResponseHeaders: map[string]string{"content-type": "text/html"}},
		},
	}
	after, dest := segment.AfterClick(o, lookup(t, engine.Bing))
	assert.Len(t, after.Requests, 2)
	assert.Equal(t, []string{"https://shop.example/"}, urls(dest.Requests))

	_, dest = segment.AfterClick(o, lookup(t, engine.Google))
	assert.Len(t, dest.Requests, 3, "without the Bing policy the prefetch counts as arrival")
}

func TestDuckDuckGoBareLandingDomain(t *testing.T) {
	t.Parallel()
	o := model.Occurrence{
		ClickingTime: ptr(1),
		ClickedURL:   "https://duckduckgo.com/y.js?ad=1",
		Ads:          []model.Ad{{LandingURL: "shop.example"}},
		Requests: []model.Request{
			{URL: "https://duckduckgo.com/y.js?ad=1", Timestamp: 2},
			{URL: "https://www.shop.example/", Timestamp: 3},
		},
	}
	assert.Equal(t, "shop", segment.LandingDomain(o, lookup(t, engine.DuckDuckGo)))
	_, dest := segment.AfterClick(o, lookup(t, engine.DuckDuckGo))
	assert.Len(t, dest.Requests, 1)
}

func TestEmptyLandingDomainNeverMatches(t *testing.T) {
	t.Parallel()
	reqs := []model.Request{{URL: "data:image/png;base64,AA"}}
	assert.Equal(t, 1, segment.FindLanding(reqs, "", engine.Engine{}))
}

func TestNewPhaseCopiesRequests(t *testing.T) {
	t.Parallel()
	reqs := []model.Request{{URL: "https://a.example/", ResponseHeaders: map[string]string{"x": "1"}}}
	p := segment.NewPhase(reqs, func(string) string { return "d" })
	p.Requests[0].ResponseHeaders["x"] = "2"
	assert.Equal(t, "1", reqs[0].ResponseHeaders["x"])
}
