package uid

import (
	"net/url"
	"strings"

	"github.com/selimozcann/adtrace/internal/util"
)

// ParseSetCookie turns a set-cookie header into name/value pairs. Several
// cookies are separated by newlines; attributes after the first ';' are
// ignored and the value keeps any '=' it contains.
func ParseSetCookie(header string) map[string]string {
	cookies := make(map[string]string)
	for _, line := range strings.Split(header, "\n") {
		pair, _, _ := strings.Cut(line, ";")
		name, value, _ := strings.Cut(pair, "=")
		cookies[name] = value
	}
	return cookies
}

// ParseQuery returns the query parameters of rawURL after decoding its
// reserved characters. Pairs are split on '&' only and cut at the first
// '='; pairs without '=' and blank values are dropped. Repeated values of a
// key are deduplicated in order and joined with spaces. Escapes that do not
// decode are kept as written.
func ParseQuery(rawURL string) map[string]string {
	s, _, _ := strings.Cut(util.DecodeReserved(rawURL), "#")
	_, query, ok := strings.Cut(s, "?")
	params := make(map[string]string)
	if !ok {
		return params
	}
	var order []string
	values := make(map[string][]string)
	for _, pair := range strings.Split(query, "&") {
		k, v, ok := strings.Cut(pair, "=")
		if !ok || v == "" {
			continue
		}
		k, v = unquote(k), unquote(v)
		if _, seen := values[k]; !seen {
			order = append(order, k)
		}
		values[k] = append(values[k], v)
	}
	for _, k := range order {
		params[k] = strings.Join(util.Dedup(values[k]), " ")
	}
	return params
}

// unquote decodes '+' and every well-formed %XX escape in s, leaving
// malformed escapes untouched.
func unquote(s string) string {
	if v, err := url.QueryUnescape(s); err == nil {
		return v
	}
	s = strings.ReplaceAll(s, "+", " ")
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		if s[i] == '%' && i+2 < len(s) && isHex(s[i+1]) && isHex(s[i+2]) {
			b.WriteByte(unhex(s[i+1])<<4 | unhex(s[i+2]))
			i += 2
			continue
		}
		b.WriteByte(s[i])
	}
	return strings.ToValidUTF8(b.String(), "\uFFFD")
}

func isHex(c byte) bool {
	return '0' <= c && c <= '9' || 'a' <= c && c <= 'f' || 'A' <= c && c <= 'F'
}

func unhex(c byte) byte {
	switch {
	case c >= 'a':
		return c - 'a' + 10
	case c >= 'A':
		return c - 'A' + 10
	}
	return c - '0'
}
