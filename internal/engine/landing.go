package engine

import "strings"

// NormalizeLandingURL turns the landing URL shown in an ad into a URL the
// domain helpers understand. Displayed breadcrumbs ("shop.example > deals")
// are cut at the first '>' and bare domains get a scheme. It is idempotent.
func (e Engine) NormalizeLandingURL(landing string) string {
	if before, _, ok := strings.Cut(landing, ">"); ok {
		landing = strings.ReplaceAll(before, " ", "")
	}
	if e.BareDomainLanding && landing != "" && !strings.Contains(landing, "://") {
		landing = "https://" + landing + "/"
	}
	return landing
}
