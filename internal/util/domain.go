package util

import (
	"net"
	"net/url"
	"strings"

	"golang.org/x/net/publicsuffix"
)

// businessListingPrefix marks Google Business listings, whose landing pages
// live under google.com but belong to the advertiser.
const businessListingPrefix = "https://business.google.com"

var reservedDecoder = strings.NewReplacer("%3A", ":", "%2F", "/", "%3F", "?", "%26", "&", "%3D", "=")

// DecodeReserved percent-decodes the reserved characters : / ? & = so that
// URLs nested inside query strings compare equal to their plain form.
func DecodeReserved(s string) string {
	return reservedDecoder.Replace(s)
}

// parse is url.Parse tolerant of scheme-less input such as "example.com/x"
// and of paths net/url rejects, such as "https://shop.example/100%_off".
func parse(raw string) *url.URL {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	u, err := url.Parse(raw)
	if err != nil {
		if !strings.Contains(raw, "://") && !strings.HasPrefix(raw, "/") {
			raw = "http://" + raw
		}
		return hostOnly(raw)
	}
	if u.Host == "" && u.Scheme == "" && !strings.HasPrefix(raw, "/") {
		if v, err := url.Parse("http://" + raw); err == nil {
			return v
		}
		return hostOnly("http://" + raw)
	}
	return u
}

func hostOnly(raw string) *url.URL {
	scheme, _, _ := strings.Cut(raw, ":")
	host := authority(raw)
	if host == "" {
		return nil
	}
	return &url.URL{Scheme: scheme, Host: host}
}

// authority cuts host[:port] out of "scheme://[userinfo@]host[:port]/..."
// without validating the rest of the URL.
func authority(raw string) string {
	scheme, rest, ok := strings.Cut(raw, "://")
	if !ok || scheme == "" || strings.ContainsAny(scheme, "/?#%") {
		return ""
	}
	if i := strings.IndexAny(rest, "/?#\\"); i >= 0 {
		rest = rest[:i]
	}
	if i := strings.LastIndex(rest, "@"); i >= 0 {
		rest = rest[i+1:]
	}
	for _, c := range rest {
		if !(c == '.' || c == '-' || c == '_' || c == ':' ||
			'a' <= c && c <= 'z' || 'A' <= c && c <= 'Z' || '0' <= c && c <= '9') {
			return ""
		}
	}
	return rest
}

// Host returns the network location (host and port) of a URL, or "" for
// relative or opaque URLs. The authority of a URL with an unparsable path
// is still recovered.
func Host(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return authority(raw)
	}
	return u.Host
}

// labels splits the hostname of a URL into subdomain, registrable label and
// public suffix, the way browsers group sites. Only ICANN suffixes count, so
// hosting platforms like cloudfront.net stay registrable names.
func labels(raw string) (sub, domain, suffix string) {
	u := parse(raw)
	if u == nil {
		return "", "", ""
	}
	host := strings.TrimSuffix(strings.ToLower(u.Hostname()), ".")
	if host == "" {
		return "", "", ""
	}
	if net.ParseIP(host) != nil {
		return "", host, ""
	}
	suffix, icann := publicsuffix.PublicSuffix(host)
	for !icann {
		_, rest, ok := strings.Cut(suffix, ".")
		if !ok {
			break
		}
		suffix, icann = publicsuffix.PublicSuffix(rest)
	}
	if host == suffix {
		return "", "", suffix
	}
	head := strings.TrimSuffix(host, "."+suffix)
	if i := strings.LastIndex(head, "."); i >= 0 {
		return head[:i], head[i+1:], suffix
	}
	return "", head, suffix
}

// RegistrableDomain returns the registrable label of a URL without its
// public suffix ("example" for https://www.example.co.uk/), lower-cased.
// Ads served on several country TLDs of one brand compare equal this way.
func RegistrableDomain(raw string) string {
	if strings.HasPrefix(raw, businessListingPrefix) {
		return "business.google"
	}
	_, domain, _ := labels(raw)
	return domain
}

// ETLDPlusSubdomain returns the subdomain and registrable label of a URL
// ("www.example" for https://www.example.co.uk/).
func ETLDPlusSubdomain(raw string) string {
	sub, domain, _ := labels(raw)
	if sub == "" {
		return domain
	}
	return sub + "." + domain
}
