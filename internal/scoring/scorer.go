// Package scoring computes lead scores and temperature labels from a profile.
// All functions are pure; the session engine recomputes on every mutation so
// derived fields are never stale.
package scoring

import "github.com/sells-group/leadflow-cli/internal/model"

// Bucket caps. The five buckets sum to 100 when every tier is maxed, so the
// final clamp only matters if the table is ever retuned.
const maxScore = 100

// Score computes a 0-100 lead score from the profile's current field values.
// Each bucket is a step function: only the highest matching tier counts.
func Score(p *model.LeadProfile) int {
	score := adSpendPoints(p.CurrentAdSpend) +
		urgencyPoints(p.Urgency) +
		engagementPoints(p.ConversationCount) +
		contactPoints(p) +
		maturityPoints(p)

	if score > maxScore {
		return maxScore
	}
	return score
}

func adSpendPoints(spend float64) int {
	switch {
	case spend > 5000:
		return 30
	case spend > 2000:
		return 20
	case spend > 500:
		return 10
	case spend > 0:
		return 5
	default:
		return 0
	}
}

func urgencyPoints(u model.Urgency) int {
	switch u {
	case model.UrgencyImmediate:
		return 20
	case model.UrgencyHigh:
		return 15
	case model.UrgencyMedium:
		return 10
	case model.UrgencyLow:
		return 5
	default:
		return 0
	}
}

func engagementPoints(turns int) int {
	switch {
	case turns > 5:
		return 20
	case turns > 3:
		return 15
	case turns > 1:
		return 10
	default:
		return 0
	}
}

func contactPoints(p *model.LeadProfile) int {
	points := 0
	if p.Email != "" {
		points += 5
	}
	if p.Phone != "" {
		points += 5
	}
	if p.Name != "" {
		points += 5
	}
	return points
}

func maturityPoints(p *model.LeadProfile) int {
	points := 0
	if p.HasWebsite {
		points += 5
	}
	if p.HasFacebookAds {
		points += 5
	}
	if p.HasGoogleAds {
		points += 5
	}
	return points
}
