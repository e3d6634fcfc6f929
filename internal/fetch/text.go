package fetch

import (
	"html"
	"net/url"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var stripPolicy = newStripPolicy()

func newStripPolicy() *bluemonday.Policy {
	policy := bluemonday.StrictPolicy()
	policy.AddSpaceWhenStrippingTag(true)
	return policy
}

// PlainText removes every tag from an HTML fragment, unescapes entities and collapses
// whitespace into single spaces.
func PlainText(fragment string) string {
	if strings.TrimSpace(fragment) == "" {
		return ""
	}
	text := html.UnescapeString(stripPolicy.Sanitize(fragment))
	return strings.Join(strings.Fields(text), " ")
}

// CleanURL drops the query string and fragment, which job boards use for tracking,
// except for the keep parameters that identify the job. Relative links are resolved
// against base when base is non-empty.
func CleanURL(raw, base string, keep ...string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}

	u, err := url.Parse(raw)
	if err != nil {
		if i := strings.IndexAny(raw, "?#"); i >= 0 {
			return raw[:i]
		}
		return raw
	}

	if !u.IsAbs() && base != "" {
		if b, err := url.Parse(base); err == nil {
			u = b.ResolveReference(u)
		}
	}

	query := u.Query()
	kept := url.Values{}
	for _, key := range keep {
		if value := query.Get(key); value != "" {
			kept.Set(key, value)
		}
	}
	u.RawQuery = kept.Encode()
	u.ForceQuery = false
	u.Fragment = ""
	u.RawFragment = ""
	return u.String()
}

// Clip cuts s to at most limit runes.
func Clip(s string, limit int) string {
	if limit <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit])
}
