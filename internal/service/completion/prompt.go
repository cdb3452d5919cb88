package completion

import (
	"fmt"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/solterra/assistant/internal/model/knowledge"
)

// Bounds applied when serialising the snapshot into the grounding prompt.
// They keep the prompt inside the completion service's input budget while
// staying deterministic: the same snapshot always yields the same prompt.
const (
	maxPromptFAQs       = 8
	serviceExcerptRunes = 160
	themeExcerptRunes   = 200
)

// personaPreamble is the fixed persona and style contract sent with every
// completion request. It is not negotiable at call time.
const personaPreamble = `You are the friendly website assistant for the Solterra Foundation, a non-profit organisation.

Follow these rules in every reply:
- Be concise: keep answers under roughly 120 words unless the question genuinely needs more.
- Only mention navigation paths that appear in the site content below; never invent a path.
- For high-effort, sensitive or ambiguous requests, direct the visitor to /contact so a member of staff can help.
- Use British English spelling consistently.`

// BuildSystemPrompt renders the persona preamble plus a bounded serialisation
// of each snapshot section.
func BuildSystemPrompt(snap knowledge.Snapshot) string {
	var b strings.Builder
	b.WriteString(personaPreamble)

	if len(snap.FAQs) > 0 {
		b.WriteString("\n\nFrequently asked questions:\n")
		faqs := snap.FAQs
		if len(faqs) > maxPromptFAQs {
			faqs = faqs[:maxPromptFAQs]
		}
		for _, faq := range faqs {
			fmt.Fprintf(&b, "Q: %s\nA: %s\n", faq.Question, faq.Answer)
		}
	}

	if len(snap.Services) > 0 {
		b.WriteString("\nServices:\n")
		for _, svc := range snap.Services {
			fmt.Fprintf(&b, "- %s (%s): %s\n", svc.Title, svc.Path, excerpt(svc.Description, serviceExcerptRunes))
		}
	}

	if len(snap.ImpactMetrics) > 0 {
		b.WriteString("\nImpact so far:\n")
		for _, metric := range snap.ImpactMetrics {
			fmt.Fprintf(&b, "%s: %s %s\n", metric.Title, metric.Value, metric.Unit)
		}
	}

	if len(snap.Themes) > 0 {
		b.WriteString("\nThematic goals:\n")
		ids := make([]string, 0, len(snap.Themes))
		for id := range snap.Themes {
			ids = append(ids, id)
		}
		sort.Strings(ids)
		for _, id := range ids {
			theme := snap.Themes[id]
			fmt.Fprintf(&b, "- %s: %s\n", theme.Title, excerpt(theme.Description, themeExcerptRunes))
		}
	}

	return b.String()
}

// excerpt truncates s to at most n runes, appending an ellipsis when cut.
func excerpt(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	runes := []rune(s)
	return strings.TrimSpace(string(runes[:n])) + "…"
}
