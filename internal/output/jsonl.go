package output

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"

	"github.com/selimozcann/adtrace/internal/model"
)

// Record is one line of the JSONL summary, describing one occurrence.
type Record struct {
	Engine             string   `json:"engine"`
	Index              int      `json:"index"`
	Clicked            bool     `json:"clicked"`
	ClickedURL         string   `json:"clicked_url,omitempty"`
	ReachedDestination bool     `json:"reached_destination"`
	Path               string   `json:"path,omitempty"`
	Redirectors        []string `json:"redirectors"`
	FirstParties       []string `json:"first_parties"`
	CookieUIDs         int      `json:"cookie_uids"`
	ParameterUIDs      int      `json:"parameter_uids"`
}

// BuildRecord converts an annotated occurrence into a Record.
func BuildRecord(engineName string, index int, o model.Occurrence) Record {
	rec := Record{
		Engine:             engineName,
		Index:              index,
		Clicked:            o.Clicked(),
		ClickedURL:         o.ClickedURL,
		ReachedDestination: reachedDestination(o),
		Redirectors:        []string{},
		FirstParties:       []string{},
		CookieUIDs:         countTokens(o.CookieTokens),
		ParameterUIDs:      countTokens(o.ParameterTokens),
	}
	if o.Navigation != nil {
		rec.Path = o.Navigation.Path
		rec.Redirectors = append(rec.Redirectors, o.Navigation.Redirectors...)
	}
	for _, b := range o.FirstParties {
		rec.FirstParties = append(rec.FirstParties, b.FirstParty)
	}
	return rec
}

// BuildRecords converts every occurrence of the corpus, engine by engine.
func BuildRecords(c model.Corpus) []Record {
	var out []Record
	for _, et := range c {
		for i, o := range et.Occurrences {
			out = append(out, BuildRecord(et.Engine, i, o))
		}
	}
	return out
}

func reachedDestination(o model.Occurrence) bool {
	return o.AfterDestination != nil && len(o.AfterDestination.Requests) > 0
}

func countTokens(groups []model.TokenGroup) int {
	n := 0
	for _, g := range groups {
		n += len(g.Tokens)
	}
	return n
}

// WriteJSONL streams the records of c to w, one JSON object per line, in
// corpus order. It returns the number of lines written.
func WriteJSONL(w io.Writer, c model.Corpus) (int, error) {
	bw := bufio.NewWriter(w)
	enc := json.NewEncoder(bw)
	enc.SetEscapeHTML(false)
	n := 0
	for _, rec := range BuildRecords(c) {
		if err := enc.Encode(rec); err != nil {
			return n, fmt.Errorf("record %s/%d: %w", rec.Engine, rec.Index, err)
		}
		n++
	}
	return n, bw.Flush()
}
