// Package detect flags requests to known trackers using Adblock-format
// filter lists such as EasyList and EasyPrivacy.
package detect

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	ahocorasick "github.com/cloudflare/ahocorasick"

	"github.com/selimozcann/adtrace/internal/model"
)

// Classifier decides whether a URL belongs to a known tracker.
type Classifier interface {
	IsTracker(url string) bool
}

// Matcher is a compiled filter list. Lookups are safe for concurrent use.
type Matcher struct {
	block     ruleSet
	exception ruleSet
	skipped   int
}

// ruleSet indexes rules by their longest literal so that a URL is only
// checked against rules whose literal occurs in it.
type ruleSet struct {
	mu       sync.Mutex // the automaton keeps per-match scratch state
	ac       *ahocorasick.Matcher
	keywords []string
	byKey    [][]rule
	always   []rule
}

func (s *ruleSet) build(rules []rule) {
	index := make(map[string]int)
	for _, r := range rules {
		if r.literal == "" {
			s.always = append(s.always, r)
			continue
		}
		i, ok := index[r.literal]
		if !ok {
			i = len(s.keywords)
			index[r.literal] = i
			s.keywords = append(s.keywords, r.literal)
			s.byKey = append(s.byKey, nil)
		}
		s.byKey[i] = append(s.byKey[i], r)
	}
	if len(s.keywords) > 0 {
		s.ac = ahocorasick.NewStringMatcher(s.keywords)
	}
}

func (s *ruleSet) match(url string) bool {
	for _, r := range s.always {
		if r.re.MatchString(url) {
			return true
		}
	}
	if s.ac == nil {
		return false
	}
	s.mu.Lock()
	hits := s.ac.Match([]byte(strings.ToLower(url)))
	s.mu.Unlock()
	for _, i := range hits {
		if i >= len(s.byKey) {
			continue
		}
		for _, r := range s.byKey[i] {
			if r.re.MatchString(url) {
				return true
			}
		}
	}
	return false
}

func (s *ruleSet) len() int {
	n := len(s.always)
	for _, rs := range s.byKey {
		n += len(rs)
	}
	return n
}

// NewMatcher compiles filter lines. Unsupported lines are counted, not
// reported as errors.
func NewMatcher(lines []string) *Matcher {
	m := &Matcher{}
	var block, exception []rule
	for _, line := range lines {
		r, ok := parseRule(line)
		if !ok {
			if t := strings.TrimSpace(line); t != "" && !strings.HasPrefix(t, "!") && !strings.HasPrefix(t, "[") {
				m.skipped++
			}
			continue
		}
		if r.exception {
			exception = append(exception, r)
		} else {
			block = append(block, r)
		}
	}
	m.block.build(block)
	m.exception.build(exception)
	return m
}

// Load reads filter lines from r.
func Load(r io.Reader) (*Matcher, error) {
	var lines []string
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		lines = append(lines, sc.Text())
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read filter list: %w", err)
	}
	return NewMatcher(lines), nil
}

// LoadFiles compiles the union of several filter list files.
func LoadFiles(paths ...string) (*Matcher, error) {
	var lines []string
	for _, p := range paths {
		data, err := os.ReadFile(p)
		if err != nil {
			return nil, fmt.Errorf("read filter list %s: %w", p, err)
		}
		lines = append(lines, strings.Split(string(data), "\n")...)
	}
	return NewMatcher(lines), nil
}

// IsTracker reports whether url matches a blocking filter and no
// exception filter. Malformed input simply does not match.
func (m *Matcher) IsTracker(url string) (blocked bool) {
	defer func() {
		if recover() != nil {
			blocked = false
		}
	}()
	if url == "" || !m.block.match(url) {
		return false
	}
	return !m.exception.match(url)
}

// Rules returns the number of blocking and exception filters compiled.
func (m *Matcher) Rules() (block, exception int) {
	return m.block.len(), m.exception.len()
}

// Skipped returns the number of filter lines that were not compiled.
func (m *Matcher) Skipped() int { return m.skipped }

// Annotate returns copies of reqs with IsTracker set by c.
func Annotate(c Classifier, reqs []model.Request) []model.Request {
	out := model.CloneRequests(reqs)
	for i := range out {
		out[i].IsTracker = c.IsTracker(out[i].URL)
	}
	return out
}
