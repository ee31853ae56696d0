// Package extract pulls structured profile facts out of free-form chat text.
// It sits behind a narrow interface so the scorer and gate stay independent
// of the parsing heuristics.
package extract

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/sells-group/leadflow-cli/internal/model"
)

// FactExtractor produces a typed partial-profile patch from a message.
type FactExtractor interface {
	Extract(message string) *model.ProfilePatch
}

var (
	emailPattern = regexp.MustCompile(`[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}`)
	phonePattern = regexp.MustCompile(`\+?[0-9][0-9()\-\s.]{7,}[0-9]`)
	// Money amounts near spend/budget wording: "$2,500", "2500 per month",
	// "spending about 3k".
	moneyPattern = regexp.MustCompile(`(?i)\$?\s*([0-9][0-9,]*(?:\.[0-9]+)?)\s*(k)?\b`)
	// Name introductions must be capitalized so "I'm struggling" doesn't
	// register a name.
	namePattern = regexp.MustCompile(`\b(?i:my name is|i am|i'm)\s+([A-Z][a-z]+(?:\s+[A-Z][a-z]+)?)`)
)

// spendCues mark a sentence as being about ad spend rather than revenue.
var spendCues = []string{"spend", "budget", "ads", "advertising", "per month", "monthly"}

// urgencyCues map phrases to urgency levels; checked in order so the
// strongest phrasing wins.
var urgencyCues = []struct {
	phrases []string
	level   model.Urgency
}{
	{[]string{"right now", "asap", "immediately", "urgent", "today"}, model.UrgencyImmediate},
	{[]string{"this week", "this month", "soon", "quickly"}, model.UrgencyHigh},
	{[]string{"this quarter", "next month", "few months"}, model.UrgencyMedium},
	{[]string{"someday", "eventually", "just looking", "exploring", "no rush"}, model.UrgencyLow},
}

// RegexExtractor is the default FactExtractor implementation.
type RegexExtractor struct{}

// NewRegexExtractor creates a RegexExtractor.
func NewRegexExtractor() *RegexExtractor {
	return &RegexExtractor{}
}

// Extract scans the message for contact details, spend figures, and urgency
// phrasing. Fields it finds nothing for stay nil.
func (e *RegexExtractor) Extract(message string) *model.ProfilePatch {
	patch := &model.ProfilePatch{}
	lower := strings.ToLower(message)

	if email := emailPattern.FindString(message); email != "" {
		v := strings.ToLower(email)
		patch.Email = &v
	}

	// Strip the email before phone matching so digits in addresses don't
	// register as numbers.
	phoneSource := emailPattern.ReplaceAllString(message, " ")
	if phone := phonePattern.FindString(phoneSource); phone != "" {
		v := strings.TrimSpace(phone)
		patch.Phone = &v
	}

	if m := namePattern.FindStringSubmatch(message); m != nil {
		v := m[1]
		patch.Name = &v
	}

	if amount, ok := extractSpend(message, lower); ok {
		patch.CurrentAdSpend = &amount
	}

	for _, cue := range urgencyCues {
		matched := false
		for _, phrase := range cue.phrases {
			if strings.Contains(lower, phrase) {
				level := cue.level
				patch.Urgency = &level
				matched = true
				break
			}
		}
		if matched {
			break
		}
	}

	return patch
}

// extractSpend returns a money amount only when the message talks about
// budget or ad spend.
func extractSpend(message, lower string) (float64, bool) {
	cued := false
	for _, cue := range spendCues {
		if strings.Contains(lower, cue) {
			cued = true
			break
		}
	}
	if !cued {
		return 0, false
	}

	for _, m := range moneyPattern.FindAllStringSubmatch(message, -1) {
		raw := strings.ReplaceAll(m[1], ",", "")
		amount, err := strconv.ParseFloat(raw, 64)
		if err != nil || amount <= 0 {
			continue
		}
		if strings.EqualFold(m[2], "k") {
			amount *= 1000
		}
		return amount, true
	}
	return 0, false
}
