package util

import (
	"net"
	"net/url"
	"regexp"
)

var wellFormedURL = regexp.MustCompile(`^(?i)(?:https?|ftp)://` +
	`(?:[^\s:@/]+(?::[^\s@/]*)?@)?` +
	`(?P<host>(?:\d{1,3}\.){3}\d{1,3}|(?:[\p{L}\p{N}](?:[\p{L}\p{N}-]*[\p{L}\p{N}])?\.)+\p{L}{2,})` +
	`(?::\d{2,5})?` +
	`(?:[/?#]\S*)?$`)

var hostGroup = wellFormedURL.SubexpIndex("host")

// IsWellFormedURL reports whether s is an absolute http(s) or ftp URL with a
// public-looking host: a dotted name ending in an alphabetic TLD, or an IPv4
// address. Relative references and bare domains are not URLs here.
func IsWellFormedURL(s string) bool {
	m := wellFormedURL.FindStringSubmatch(s)
	if m == nil {
		return false
	}
	host := m[hostGroup]
	if ip := net.ParseIP(host); ip == nil && isDottedQuad(host) {
		return false
	}
	_, err := url.Parse(s)
	return err == nil
}

func isDottedQuad(host string) bool {
	for _, c := range host {
		if (c < '0' || c > '9') && c != '.' {
			return false
		}
	}
	return true
}
