package output_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/selimozcann/adtrace/internal/model"
	"github.com/selimozcann/adtrace/internal/output"
)

func annotated(path string) model.Occurrence {
	return model.Occurrence{
		Ads:              []model.Ad{{LandingURL: "https://shop.com/"}},
		ClickedURL:       "https://www.bing.com/aclk?ld=1",
		AfterClicking:    &model.Phase{},
		AfterDestination: &model.Phase{Requests: []model.Request{{URL: "https://shop.com/"}}},
		FirstParties: []model.FirstPartyBucket{
			{FirstParty: "www.bing.com"},
			{FirstParty: "shop.com"},
		},
		Navigation: &model.Navigation{Path: path, Redirectors: []string{"ad.tracker.com"}},
		CookieTokens: []model.TokenGroup{
			{Tokens: map[string]string{"a": "1", "b": "2"}, Domain: "shop"},
		},
		ParameterTokens: []model.TokenGroup{
			{Tokens: map[string]string{"gclid": "x"}, Domain: "shop"},
		},
		TokensExtracted: true,
	}
}

func corpus() model.Corpus {
	p1 := "www.bing.com - ad.tracker.com - destination"
	p2 := "www.bing.com - destination"
	return model.Corpus{
		{Engine: "bing", Occurrences: []model.Occurrence{annotated(p1), annotated(p2), annotated(p1), {}}},
		{Engine: "google", Occurrences: []model.Occurrence{}},
	}
}

func TestBuildRecord(t *testing.T) {
	t.Parallel()
	rec := output.BuildRecord("bing", 3, annotated("www.bing.com - destination"))
	assert.Equal(t, output.Record{
		Engine:             "bing",
		Index:              3,
		Clicked:            true,
		ClickedURL:         "https://www.bing.com/aclk?ld=1",
		ReachedDestination: true,
		Path:               "www.bing.com - destination",
		Redirectors:        []string{"ad.tracker.com"},
		FirstParties:       []string{"www.bing.com", "shop.com"},
		CookieUIDs:         2,
		ParameterUIDs:      1,
	}, rec)

	empty := output.BuildRecord("google", 0, model.Occurrence{})
	assert.False(t, empty.Clicked)
	assert.NotNil(t, empty.Redirectors)
	assert.NotNil(t, empty.FirstParties)
}

func TestWriteJSONL(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	n, err := output.WriteJSONL(&buf, corpus())
	require.NoError(t, err)
	assert.Equal(t, 4, n)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 4)
	var got output.Record
	require.NoError(t, json.Unmarshal([]byte(lines[3]), &got))
	assert.Equal(t, 3, got.Index)
	assert.False(t, got.Clicked)
	assert.Contains(t, lines[0], `"path":"www.bing.com - ad.tracker.com - destination"`)
}

func TestSummarize(t *testing.T) {
	t.Parallel()
	sums := output.Summarize(corpus(), 1)
	require.Len(t, sums, 2)

	bing := sums[0]
	assert.Equal(t, 4, bing.Occurrences)
	assert.Equal(t, 3, bing.Clicked)
	assert.Equal(t, 3, bing.ReachedDestination)
	assert.Equal(t, 6, bing.CookieUIDs)
	assert.Equal(t, 3, bing.ParameterUIDs)
	assert.Equal(t, []output.PathCount{{Path: "www.bing.com - ad.tracker.com - destination", Count: 2}}, bing.TopPaths)

	assert.Equal(t, output.EngineSummary{Engine: "google", TopPaths: []output.PathCount{}}, sums[1])
}

func TestPrintSummary(t *testing.T) {
	color.NoColor = true
	var buf bytes.Buffer
	output.PrintSummary(&buf, output.Summarize(corpus(), 5))
	output.PrintError(&buf, errors.New("corpus not found"))

	out := buf.String()
	assert.Contains(t, out, "[+] bing")
	assert.Contains(t, out, "clicked:              3")
	assert.Contains(t, out, "↪ www.bing.com - destination (1)")
	assert.Contains(t, out, "[!] corpus not found")
}
