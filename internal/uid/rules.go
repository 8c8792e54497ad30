package uid

import (
	"strconv"
	"strings"
	"unicode/utf8"
)

// MinLength is the shortest value that can still be an identifier.
const MinLength = 8

// Values observed to carry no identifying information.
var literalValues = set("EUR", "en", "sc_b_locale=fr_FR", "set", "")

// Keys whose values stayed identical across repeated crawls.
var staticKeys = set(
	"et_keyword", "url", "utm_term", "utm_campaign", "utm_content", "u", "tuuid",
	"aw7735", "bId", "aw17547", "ds_k", "JPOP", "JPKW", "semnb", "ref", "keywords",
	"utm_custom1", "utm_ag", "asid", "ds_dest_url", "atc_content", "litb_from",
	"utm_source", "utm_medium", "m_pi", "m_cn", "m_ag", "m_ac", "cm_mmc", "oll",
	"ad_provider", "ad_domain", "dm", "d", "dsig", "blay", "sm", "ccpturl", "uule",
	"ei", "c1", "c2", "gclsrc",
)

// Values that stayed identical across repeated crawls.
var staticValues = set(
	"Event.ClientInst", "UserEvent", "zenaps.com", "w*HZeZhmD60",
	"sa360-au-new-goodscat", "p64736203151", "ppc|ga|1|||", "googdemozdesk-21",
	"A4768712791",
	"fr_pd_ppc_google_youmake2022_shop-HQ_marque-exact_hot_you-make_text_none_none",
	"pcmcat1563299784494", "421x11964043", "459x3096044", "duckduckgo.com",
	"zIv3CTTKCSOnGn", "googhydr0a8-21", "-oaymwEECHwQRg",
	"AIDcmm2yi7yuxb_SEM_{gclid}:G:s", "{gclid}:G:s",
	"tbn:ANd9GcSBFmzURVeYKqQuB2JbIhAOt40ZNwbh-7Z6X56HI8mQfw",
)

// Keyword, data and ad slot markers.
var constantPrefixes = set("kwd-", "dat-", "dsa-", "DevE", "SERP")

func set(items ...string) map[string]struct{} {
	m := make(map[string]struct{}, len(items))
	for _, it := range items {
		m[it] = struct{}{}
	}
	return m
}

func in(m map[string]struct{}, s string) bool {
	_, ok := m[s]
	return ok
}

// Rule is one exclusion of the classifier. Rules run in order and the
// first one that rejects a token decides.
type Rule struct {
	Name   string
	Reject func(c *Classifier, key, value string) bool
}

// Rule names reported by Classify.
const (
	RuleLiteralValue = "literal-value"
	RuleKeyDenylist  = "key-denylist"
	RuleStaticValue  = "static-value"
	RulePrefix       = "constant-prefix"
	RuleTooShort     = "too-short"
	RuleURL          = "url"
	RuleWords        = "dictionary-words"
	RuleTimestamp    = "timestamp"
)

// DefaultRules returns the exclusion rules in evaluation order.
func DefaultRules() []Rule {
	return []Rule{
		{RuleLiteralValue, func(_ *Classifier, _, v string) bool { return in(literalValues, v) }},
		{RuleKeyDenylist, func(_ *Classifier, k, _ string) bool { return k == "DATA" || in(staticKeys, k) }},
		{RuleStaticValue, func(_ *Classifier, _, v string) bool { return in(staticValues, v) }},
		{RulePrefix, func(_ *Classifier, _, v string) bool { return in(constantPrefixes, prefix(v, 4)) }},
		{RuleTooShort, func(_ *Classifier, _, v string) bool { return utf8.RuneCountInString(v) < MinLength }},
		{RuleURL, func(c *Classifier, _, v string) bool { return c.isURL(v) }},
		{RuleWords, func(c *Classifier, _, v string) bool { return c.onlyWords(v) }},
		{RuleTimestamp, func(c *Classifier, _, v string) bool { return c.window.containsDigits(v) }},
	}
}

func prefix(s string, n int) string {
	i := 0
	for j := range s {
		if i == n {
			return s[:j]
		}
		i++
	}
	return s
}

var wordSeparators = strings.NewReplacer("_", " ", "=", " ")

// onlyWords reports whether every token of v is a dictionary word.
func (c *Classifier) onlyWords(v string) bool {
	for _, tok := range strings.Split(wordSeparators.Replace(v), " ") {
		if tok != "" && !c.dict.Contains(tok) {
			return false
		}
	}
	return true
}

// Window is a closed range of Unix timestamps in seconds. Values in the
// same range expressed in milliseconds also fall inside it.
type Window struct {
	From int64 `yaml:"from"`
	To   int64 `yaml:"to"`
}

// DefaultWindow spans the measurement period, June 2022 to January 2023.
var DefaultWindow = Window{From: 1654034400, To: 1672527600}

func (w Window) containsDigits(v string) bool {
	if v == "" {
		return false
	}
	for i := 0; i < len(v); i++ {
		if v[i] < '0' || v[i] > '9' {
			return false
		}
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return false
	}
	return w.Contains(n)
}

// Contains reports whether n is inside the window as seconds or as
// milliseconds.
func (w Window) Contains(n int64) bool {
	return (n >= w.From && n <= w.To) || (n >= w.From*1000 && n <= w.To*1000)
}
