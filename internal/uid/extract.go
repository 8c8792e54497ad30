package uid

import (
	"maps"

	"github.com/selimozcann/adtrace/internal/model"
	"github.com/selimozcann/adtrace/internal/util"
)

// SetCookieHeader is the lower-cased response header carrying cookies.
const SetCookieHeader = "set-cookie"

// Result holds the UID tokens of one occurrence.
type Result struct {
	// Requests are copies of the input annotated with their surviving
	// cookies and parameters.
	Requests   []model.Request
	Cookies    []model.TokenGroup
	Parameters []model.TokenGroup
}

// Extract classifies the cookies set by and the query parameters sent
// with each request. Groups are owned by the request's eTLD plus
// subdomain and only non-empty groups are reported.
func (c *Classifier) Extract(reqs []model.Request) Result {
	res := Result{
		Requests:   make([]model.Request, 0, len(reqs)),
		Cookies:    []model.TokenGroup{},
		Parameters: []model.TokenGroup{},
	}
	for _, r := range reqs {
		r = r.Clone()
		domain := util.ETLDPlusSubdomain(util.DecodeReserved(r.URL))

		r.SetCookies = nil
		if header, ok := r.ResponseHeaders[SetCookieHeader]; ok {
			r.SetCookies = c.Filter(ParseSetCookie(header))
			if len(r.SetCookies) > 0 {
				res.Cookies = append(res.Cookies, model.TokenGroup{Tokens: maps.Clone(r.SetCookies), Domain: domain})
			}
		}

		r.Parameters = c.Filter(ParseQuery(r.URL))
		if len(r.Parameters) > 0 {
			res.Parameters = append(res.Parameters, model.TokenGroup{Tokens: maps.Clone(r.Parameters), Domain: domain})
		}
		res.Requests = append(res.Requests, r)
	}
	return res
}
