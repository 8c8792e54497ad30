package detect

import (
	"regexp"
	"strings"
)

// rule is one network filter of an Adblock list.
type rule struct {
	raw       string
	exception bool
	re        *regexp.Regexp
	// literal is the longest fixed substring every match must contain,
	// lower-cased. Empty when the rule has none worth indexing.
	literal string
}

const minLiteral = 3

// parseRule compiles a filter line. ok is false for comments, cosmetic
// filters and filters carrying $options, which need request context
// (resource type, initiator) a recorded trace does not have.
func parseRule(line string) (r rule, ok bool) {
	line = strings.TrimSpace(line)
	if line == "" || strings.HasPrefix(line, "!") || strings.HasPrefix(line, "[") {
		return rule{}, false
	}
	if strings.Contains(line, "##") || strings.Contains(line, "#@#") ||
		strings.Contains(line, "#?#") || strings.Contains(line, "#$#") {
		return rule{}, false
	}
	r.raw = line
	if strings.HasPrefix(line, "@@") {
		r.exception = true
		line = line[2:]
	}
	if len(line) > 1 && strings.HasPrefix(line, "/") && strings.HasSuffix(line, "/") {
		re, err := regexp.Compile("(?i)" + line[1:len(line)-1])
		if err != nil {
			return rule{}, false
		}
		r.re = re
		return r, true
	}
	if i := strings.LastIndexByte(line, '$'); i >= 0 && looksLikeOptions(line[i+1:]) {
		return rule{}, false
	}
	if line == "" {
		return rule{}, false
	}
	re, err := regexp.Compile(toRegexp(line))
	if err != nil {
		return rule{}, false
	}
	r.re = re
	r.literal = longestLiteral(line)
	return r, true
}

func looksLikeOptions(s string) bool {
	if s == "" {
		return false
	}
	for _, c := range s {
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9':
		case strings.ContainsRune(",=~-_|.", c):
		default:
			return false
		}
	}
	return true
}

// separator matches the Adblock '^' placeholder: anything but a letter,
// digit or one of _ - . %, or the end of the address.
const separator = `(?:[^\w\-.%]|$)`

// toRegexp translates Adblock pattern syntax into a case-insensitive
// regular expression.
func toRegexp(p string) string {
	var b strings.Builder
	b.WriteString("(?i)")
	switch {
	case strings.HasPrefix(p, "||"):
		b.WriteString(`^(?:[^:/?#]+:)?(?://(?:[^/?#]*\.)?)?`)
		p = p[2:]
	case strings.HasPrefix(p, "|"):
		b.WriteString("^")
		p = p[1:]
	}
	anchoredEnd := false
	if strings.HasSuffix(p, "|") {
		anchoredEnd = true
		p = p[:len(p)-1]
	}
	p = strings.Trim(p, "*")
	for _, c := range p {
		switch c {
		case '*':
			b.WriteString(".*")
		case '^':
			b.WriteString(separator)
		default:
			b.WriteString(regexp.QuoteMeta(string(c)))
		}
	}
	if anchoredEnd {
		b.WriteString("$")
	}
	return b.String()
}

func longestLiteral(p string) string {
	p = strings.TrimPrefix(p, "||")
	best := ""
	for _, part := range strings.FieldsFunc(p, func(c rune) bool { return c == '*' || c == '^' || c == '|' }) {
		if len(part) > len(best) {
			best = part
		}
	}
	if len(best) < minLiteral {
		return ""
	}
	return strings.ToLower(best)
}
