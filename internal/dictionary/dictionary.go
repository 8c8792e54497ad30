// Package dictionary answers whether a token is an English word.
package dictionary

import (
	"bufio"
	_ "embed"
	"fmt"
	"io"
	"os"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

//go:embed words.txt
var embeddedWords string

// Dictionary is a read-only word set, safe for concurrent lookups.
type Dictionary struct {
	words map[string]struct{}
}

// New builds a dictionary from the given words.
func New(words ...string) *Dictionary {
	d := &Dictionary{words: make(map[string]struct{}, len(words))}
	for _, w := range words {
		d.add(w)
	}
	return d
}

// Embedded returns the small built-in word list used when no system word
// list is available.
func Embedded() *Dictionary {
	d, _ := Load(strings.NewReader(embeddedWords))
	return d
}

// Load reads one word per line. Blank lines and lines starting with '#'
// are skipped.
func Load(r io.Reader) (*Dictionary, error) {
	d := New()
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		d.add(line)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read word list: %w", err)
	}
	return d, nil
}

// LoadFile reads a word list file such as /usr/share/dict/words.
func LoadFile(path string) (*Dictionary, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open word list %s: %w", path, err)
	}
	defer f.Close()
	return Load(f)
}

func (d *Dictionary) add(w string) {
	if w = normalize(w); w != "" {
		d.words[w] = struct{}{}
	}
}

// Len returns the number of distinct normalized words.
func (d *Dictionary) Len() int { return len(d.words) }

// Contains reports whether token is a word. Matching ignores case and
// diacritics. Numbers count as words, as they do for spell checkers.
func (d *Dictionary) Contains(token string) bool {
	if isNumber(token) {
		return true
	}
	_, ok := d.words[normalize(token)]
	return ok
}

// normalize folds case and strips combining marks. Transformers carry
// state, so each call builds its own.
func normalize(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC, cases.Fold())
	out, _, err := transform.String(t, strings.TrimSpace(s))
	if err != nil {
		return strings.ToLower(strings.TrimSpace(s))
	}
	return out
}

func isNumber(s string) bool {
	digits := 0
	for i, c := range s {
		switch {
		case c >= '0' && c <= '9':
			digits++
		case (c == '.' || c == ',') && i > 0 && i < len(s)-1:
		default:
			return false
		}
	}
	return digits > 0
}
