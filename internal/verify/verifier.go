// Package verify classifies session visitors against the business record
// they claim to represent: the owner, a competitor doing research, or unknown.
package verify

import (
	"strings"

	"go.uber.org/zap"

	"github.com/sells-group/leadflow-cli/internal/config"
	"github.com/sells-group/leadflow-cli/internal/model"
)

// Competitor-signal weights. Signals are independent and additive, capped
// below owner-grade confidence.
const (
	suspiciousDomainSignal = 0.3
	industryDomainSignal   = 0.5
	genericNameSignal      = 0.4
	competitorSignalCap    = 0.9
	unknownConfidence      = 0.3
	domainMatchConfidence  = 0.9
)

// suspiciousDomainKeywords flag email domains typical of agencies and
// research accounts rather than the business itself.
var suspiciousDomainKeywords = []string{
	"agency", "marketing", "media", "consult", "research", "intel",
}

// genericNamePatterns match throwaway identities.
var genericNamePatterns = []string{
	"test", "asdf", "demo", "john doe", "jane doe", "qwerty",
}

// Verifier scores visitor identity claims.
type Verifier struct {
	cfg config.VerifyConfig
}

// NewVerifier creates a Verifier with the given thresholds.
func NewVerifier(cfg config.VerifyConfig) *Verifier {
	return &Verifier{cfg: cfg}
}

// Verify classifies a visitor against the business record.
func (v *Verifier) Verify(userName, userEmail string, record *model.BusinessRecord) model.Verification {
	if strings.TrimSpace(userName) == "" && strings.TrimSpace(userEmail) == "" {
		return model.Verification{
			Type:       model.VisitorUnknown,
			Confidence: 0,
			Reason:     "no identifying data provided",
		}
	}

	// Owner checks first: a strong name match or a matching email domain.
	if userName != "" && record != nil {
		best := 0.0
		for _, owner := range record.OwnerNames {
			if sim := NameSimilarity(userName, owner); sim > best {
				best = sim
			}
		}
		if best > v.cfg.NameSimilarityCutoff {
			return model.Verification{
				Type:       model.VisitorOwner,
				Confidence: best,
				Reason:     "name matches a known owner or team member",
			}
		}
	}

	emailDomain := domainOf(userEmail)
	if record != nil && emailDomain != "" && emailDomain == strings.ToLower(record.Domain) {
		return model.Verification{
			Type:       model.VisitorOwner,
			Confidence: domainMatchConfidence,
			Reason:     "email domain matches the business domain",
		}
	}

	if verdict, ok := v.competitorCheck(userName, emailDomain, record); ok {
		return verdict
	}

	return model.Verification{
		Type:       model.VisitorUnknown,
		Confidence: unknownConfidence,
		Reason:     "identity could not be established",
	}
}

// competitorCheck accumulates independent competitor signals and classifies
// the visitor as researching competition when they clear the cutoff.
func (v *Verifier) competitorCheck(userName, emailDomain string, record *model.BusinessRecord) (model.Verification, bool) {
	score := 0.0
	var reasons []string

	for _, kw := range suspiciousDomainKeywords {
		if emailDomain != "" && strings.Contains(emailDomain, kw) {
			score += suspiciousDomainSignal
			reasons = append(reasons, "suspicious email domain")
			break
		}
	}

	if record != nil && record.Industry != "" && emailDomain != "" &&
		emailDomain != strings.ToLower(record.Domain) &&
		strings.Contains(emailDomain, strings.ToLower(record.Industry)) {
		score += industryDomainSignal
		reasons = append(reasons, "same-industry email domain")
	}

	lowerName := strings.ToLower(strings.TrimSpace(userName))
	for _, pattern := range genericNamePatterns {
		if lowerName != "" && strings.Contains(lowerName, pattern) {
			score += genericNameSignal
			reasons = append(reasons, "generic or test name")
			break
		}
	}

	if score > competitorSignalCap {
		score = competitorSignalCap
	}

	if score <= v.cfg.CompetitorSignalCutoff {
		return model.Verification{}, false
	}

	zap.L().Debug("verify: competitor signals",
		zap.Float64("score", score),
		zap.Strings("signals", reasons),
	)
	return model.Verification{
		Type:       model.VisitorCompetitor,
		Confidence: score,
		Reason:     strings.Join(reasons, "; "),
	}, true
}

// domainOf extracts the lowercased domain part of an email address.
func domainOf(email string) string {
	at := strings.LastIndex(email, "@")
	if at < 0 || at == len(email)-1 {
		return ""
	}
	return strings.ToLower(strings.TrimSpace(email[at+1:]))
}
