// Package render converts raw reply text into safe, clickable markup.
//
// The pipeline contract is fixed: linkification runs first (absolute URLs,
// then internal site paths), and the allow-list sanitizer always runs last.
// No unsanitized text ever leaves this package.
package render

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var (
	urlPattern = regexp.MustCompile(`https?://[^\s<>"']+`)

	// Internal paths start with "/" followed by word segments, and must be
	// preceded by start-of-text, whitespace or an opening bracket so that
	// substrings inside other tokens (e.g. "and/or", URL paths) never match.
	internalPathPattern = regexp.MustCompile(`(^|[\s(])(/[A-Za-z][\w-]*(?:/[\w-]+)*)\b`)

	tagPattern = regexp.MustCompile(`<[^>]*>`)
)

// Renderer produces sanitized HTML from raw assistant or user text.
type Renderer struct {
	policy *bluemonday.Policy
}

// New builds a Renderer whose sanitizer allow-lists only anchors and
// text-level tags.
func New() *Renderer {
	p := bluemonday.NewPolicy()
	p.RequireParseableURLs(true)
	p.AllowRelativeURLs(true)
	p.AllowURLSchemes("http", "https")
	p.AllowElements("p", "br", "strong", "em", "b", "i", "ul", "ol", "li")
	p.AllowAttrs("href", "target", "rel").OnElements("a")
	p.AllowAttrs("data-internal").OnElements("a")
	return &Renderer{policy: p}
}

// Render linkifies the raw text and then sanitizes the result. Disallowed
// tags and attributes are stripped silently.
func (r *Renderer) Render(raw string) string {
	return r.policy.Sanitize(linkify(raw))
}

// linkify applies both linkification passes to the text between any tag
// spans already present in the raw input, so URLs inside attribute values
// are never rewritten. The tags themselves pass through untouched for the
// sanitizer to judge.
func linkify(s string) string {
	var b strings.Builder
	last := 0
	for _, span := range tagPattern.FindAllStringIndex(s, -1) {
		b.WriteString(linkifyText(s[last:span[0]]))
		b.WriteString(s[span[0]:span[1]])
		last = span[1]
	}
	b.WriteString(linkifyText(s[last:]))
	return b.String()
}

func linkifyText(s string) string {
	s = linkifyURLs(s)
	return linkifyInternalPaths(s)
}

// linkifyURLs wraps absolute URLs in anchors that open in a new context
// without leaking the opener or referrer.
func linkifyURLs(s string) string {
	return urlPattern.ReplaceAllStringFunc(s, func(match string) string {
		url := strings.TrimRight(match, ".,;:!?)")
		trailing := match[len(url):]
		return fmt.Sprintf(`<a href=%q target="_blank" rel="noopener noreferrer">%s</a>%s`, url, url, trailing)
	})
}

// linkifyInternalPaths wraps internal site paths in anchors tagged for
// client-side navigation.
func linkifyInternalPaths(s string) string {
	return internalPathPattern.ReplaceAllString(s, `${1}<a href="${2}" data-internal="true">${2}</a>`)
}
