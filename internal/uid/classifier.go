// Package uid decides which cookie and query parameter values observed
// after an ad click are likely persistent user identifiers.
package uid

import "github.com/selimozcann/adtrace/internal/util"

// Dictionary reports whether a token is a natural-language word.
type Dictionary interface {
	Contains(token string) bool
}

// Classifier runs the exclusion rules over (key, value) tokens. It holds
// no mutable state and is safe for concurrent use.
type Classifier struct {
	dict   Dictionary
	isURL  func(string) bool
	window Window
	rules  []Rule
}

// Option customizes a Classifier.
type Option func(*Classifier)

// WithWindow sets the timestamp exclusion window.
func WithWindow(w Window) Option { return func(c *Classifier) { c.window = w } }

// WithURLOracle replaces the well-formed URL check.
func WithURLOracle(f func(string) bool) Option { return func(c *Classifier) { c.isURL = f } }

// WithRules replaces the exclusion rules.
func WithRules(rules []Rule) Option { return func(c *Classifier) { c.rules = rules } }

// NewClassifier creates a classifier consulting dict for word checks.
func NewClassifier(dict Dictionary, opts ...Option) *Classifier {
	c := &Classifier{
		dict:   dict,
		isURL:  util.IsWellFormedURL,
		window: DefaultWindow,
		rules:  DefaultRules(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Classify reports whether the token is a UID candidate. When it is not,
// reason names the rule that rejected it.
func (c *Classifier) Classify(key, value string) (ok bool, reason string) {
	for _, r := range c.rules {
		if r.Reject(c, key, value) {
			return false, r.Name
		}
	}
	return true, ""
}

// IsUID reports whether the token is a UID candidate.
func (c *Classifier) IsUID(key, value string) bool {
	ok, _ := c.Classify(key, value)
	return ok
}

// Filter keeps the tokens of m that are UID candidates.
func (c *Classifier) Filter(m map[string]string) map[string]string {
	out := make(map[string]string)
	for k, v := range m {
		if c.IsUID(k, v) {
			out[k] = v
		}
	}
	return out
}
