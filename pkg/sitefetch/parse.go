package sitefetch

import (
	"regexp"
	"strings"
)

var (
	headingPattern = regexp.MustCompile(`(?m)^#\s+(.+)$`)
	pricePattern   = regexp.MustCompile(`\$\s?\d[\d,]*(?:\.\d{2})?(?:\s?/\s?(?:mo|month|yr|year|session|visit))?`)
	imagePattern   = regexp.MustCompile(`!\[[^\]]*\]\(([^)\s]+)\)`)
	quotePattern   = regexp.MustCompile(`(?m)^>\s*(.{20,})$`)
)

// ctaPhrases match against lowercased link text and button-ish lines.
var ctaPhrases = []string{
	"book", "schedule", "call now", "call us", "get started", "sign up",
	"contact us", "free consultation", "free quote", "get a quote",
	"learn more", "request", "claim",
}

// parseContent distills markdown page content into a Snapshot. The heuristics
// are deliberately shallow: the profile only needs presence signals (prices
// visible, testimonials present), not a faithful extraction.
func parseContent(content string) *Snapshot {
	snap := &Snapshot{}
	if content == "" {
		return snap
	}

	if m := headingPattern.FindStringSubmatch(content); m != nil {
		snap.Headline = strings.TrimSpace(m[1])
	}

	snap.Prices = dedupe(pricePattern.FindAllString(content, 20))

	for _, m := range imagePattern.FindAllStringSubmatch(content, 50) {
		snap.Images = append(snap.Images, m[1])
	}

	for _, m := range quotePattern.FindAllStringSubmatch(content, 20) {
		snap.Testimonials = append(snap.Testimonials, strings.TrimSpace(m[1]))
	}

	var bodyLines []string
	for _, line := range strings.Split(content, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "#") || strings.HasPrefix(trimmed, ">") {
			continue
		}
		bodyLines = append(bodyLines, trimmed)

		lower := strings.ToLower(trimmed)
		if len(trimmed) <= 80 {
			for _, phrase := range ctaPhrases {
				if strings.Contains(lower, phrase) {
					snap.CTAs = append(snap.CTAs, trimmed)
					break
				}
			}
		}
	}
	snap.BodyText = strings.Join(bodyLines, "\n")
	snap.CTAs = dedupe(snap.CTAs)

	return snap
}

func dedupe(in []string) []string {
	if len(in) == 0 {
		return nil
	}
	seen := make(map[string]bool, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		if !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	return out
}
