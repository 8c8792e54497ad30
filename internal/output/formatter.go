package output

import (
	"cmp"
	"fmt"
	"io"
	"slices"

	"github.com/fatih/color"

	"github.com/selimozcann/adtrace/internal/model"
)

// PathCount is a navigation path and the number of occurrences that took it.
type PathCount struct {
	Path  string
	Count int
}

// EngineSummary aggregates the annotated occurrences of one engine.
type EngineSummary struct {
	Engine             string
	Occurrences        int
	Clicked            int
	ReachedDestination int
	CookieUIDs         int
	ParameterUIDs      int
	TopPaths           []PathCount
}

// Summarize aggregates every engine of the corpus, keeping the topN most
// frequent paths.
func Summarize(c model.Corpus, topN int) []EngineSummary {
	out := make([]EngineSummary, 0, len(c))
	for _, et := range c {
		s := EngineSummary{Engine: et.Engine, Occurrences: len(et.Occurrences)}
		paths := map[string]int{}
		for _, o := range et.Occurrences {
			if o.Clicked() {
				s.Clicked++
			}
			if reachedDestination(o) {
				s.ReachedDestination++
			}
			s.CookieUIDs += countTokens(o.CookieTokens)
			s.ParameterUIDs += countTokens(o.ParameterTokens)
			if o.Navigation != nil && o.Navigation.Path != "" {
				paths[o.Navigation.Path]++
			}
		}
		s.TopPaths = topPaths(paths, topN)
		out = append(out, s)
	}
	return out
}

func topPaths(paths map[string]int, n int) []PathCount {
	all := make([]PathCount, 0, len(paths))
	for p, c := range paths {
		all = append(all, PathCount{Path: p, Count: c})
	}
	slices.SortFunc(all, func(a, b PathCount) int {
		if c := cmp.Compare(b.Count, a.Count); c != 0 {
			return c
		}
		return cmp.Compare(a.Path, b.Path)
	})
	if n >= 0 && len(all) > n {
		all = all[:n]
	}
	return all
}

var (
	headerColor = color.New(color.FgCyan, color.Bold)
	countColor  = color.New(color.FgGreen)
	uidColor    = color.New(color.FgYellow)
	pathColor   = color.New(color.FgHiBlack)
	errorColor  = color.New(color.FgRed)
)

// PrintSummary writes the engine summaries in color.
func PrintSummary(w io.Writer, sums []EngineSummary) {
	for _, s := range sums {
		headerColor.Fprintf(w, "\n[+] %s\n", s.Engine)
		fmt.Fprintf(w, "  occurrences:          %s\n", countColor.Sprint(s.Occurrences))
		fmt.Fprintf(w, "  clicked:              %s\n", countColor.Sprint(s.Clicked))
		fmt.Fprintf(w, "  reached destination:  %s\n", countColor.Sprint(s.ReachedDestination))
		fmt.Fprintf(w, "  cookie UIDs:          %s\n", uidColor.Sprint(s.CookieUIDs))
		fmt.Fprintf(w, "  parameter UIDs:       %s\n", uidColor.Sprint(s.ParameterUIDs))
		for _, p := range s.TopPaths {
			fmt.Fprintf(w, "  ↪ %s %s\n", p.Path, pathColor.Sprintf("(%d)", p.Count))
		}
	}
}

// PrintError writes a failure line in red.
func PrintError(w io.Writer, err error) {
	errorColor.Fprintf(w, "  [!] %v\n", err)
}
