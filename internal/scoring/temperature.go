package scoring

import "github.com/sells-group/leadflow-cli/internal/model"

// ClassifyTemperature maps a lead score to its temperature label.
// Thresholds are half-open: [0,40) cold, [40,60) warm, [60,80) hot,
// [80,100] on-fire.
func ClassifyTemperature(score int) model.Temperature {
	switch {
	case score >= 80:
		return model.TemperatureOnFire
	case score >= 60:
		return model.TemperatureHot
	case score >= 40:
		return model.TemperatureWarm
	default:
		return model.TemperatureCold
	}
}

// ReadyToBuy reports whether the profile clears the readiness gate: score
// above the threshold with both an email and a stated main challenge.
func ReadyToBuy(p *model.LeadProfile, score, threshold int) bool {
	return score > threshold && p.Email != "" && p.MainChallenge != ""
}

// Recompute refreshes the profile's derived fields in place.
func Recompute(p *model.LeadProfile, readyThreshold int) {
	p.LeadScore = Score(p)
	p.Temperature = ClassifyTemperature(p.LeadScore)
	p.ReadyToBuy = ReadyToBuy(p, p.LeadScore, readyThreshold)
}
