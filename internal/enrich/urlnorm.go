package enrich

import (
	"net/url"
	"strings"
)

// AbsoluteURL rewrites a relative URL against the page URL. A value is
// considered relative iff it does not start with "http"; anything already
// absolute (or unparseable) passes through unchanged, which makes the
// normalization idempotent.
func AbsoluteURL(raw, pageURL string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" || strings.HasPrefix(raw, "http") {
		return raw
	}
	base, err := url.Parse(pageURL)
	if err != nil {
		return raw
	}
	ref, err := url.Parse(raw)
	if err != nil {
		return raw
	}
	return base.ResolveReference(ref).String()
}
