// Package qualify implements the qualification gate: the decision of whether
// a lead has disclosed enough mandatory information to be offered a call.
package qualify

import (
	"go.uber.org/zap"

	"github.com/sells-group/leadflow-cli/internal/config"
	"github.com/sells-group/leadflow-cli/internal/model"
)

// Completeness weights. Mandatory answers count double.
const (
	mandatoryWeight = 2.0
	optionalWeight  = 1.0
)

// Gate evaluates qualification data against the configured thresholds.
type Gate struct {
	cfg       config.QualifyConfig
	templates *TemplatePack
}

// NewGate creates a Gate. A nil template pack falls back to the defaults.
func NewGate(cfg config.QualifyConfig, templates *TemplatePack) *Gate {
	if templates == nil {
		templates = DefaultTemplates()
	}
	return &Gate{cfg: cfg, templates: templates}
}

// Evaluate runs the hard gates in order, short-circuiting on the first
// failure, then computes weighted completeness for qualified leads.
func (g *Gate) Evaluate(data *model.QualificationData) model.QualificationResult {
	if !data.OwnershipConfirmed() {
		return model.QualificationResult{
			Qualified:    false,
			Reason:       "not owner",
			Completeness: 0,
		}
	}

	if data.MonthlyAdSpend == nil || *data.MonthlyAdSpend < g.cfg.MinMonthlySpend {
		return model.QualificationResult{
			Qualified:    false,
			Reason:       "insufficient/undisclosed budget",
			Completeness: 25,
		}
	}

	result := model.QualificationResult{
		Qualified:    true,
		Reason:       "qualified",
		Completeness: completeness(data),
	}
	zap.L().Debug("qualify: gate passed",
		zap.Float64("monthly_spend", *data.MonthlyAdSpend),
		zap.Float64("completeness", result.Completeness),
	)
	return result
}

// MissingData lists the mandatory fields the lead has not answered yet.
// An empty result means the gate has enough to issue a real decision;
// "answered unfavorably" is not missing.
func (g *Gate) MissingData(data *model.QualificationData) []string {
	var missing []string
	if data.IsOwner == nil {
		missing = append(missing, "is_owner")
	}
	if data.MonthlyAdSpend == nil {
		missing = append(missing, "monthly_ad_spend")
	}
	return missing
}

// completeness is the weighted share of answered fields, in [0,100].
func completeness(data *model.QualificationData) float64 {
	type field struct {
		answered bool
		weight   float64
	}
	fields := []field{
		// Mandatory.
		{data.OwnershipConfirmed(), mandatoryWeight},
		{data.MonthlyAdSpend != nil, mandatoryWeight},
		// Valuable.
		{data.CostPerAcquisition != nil, optionalWeight},
		{data.ConversionRate != nil, optionalWeight},
		{data.TrafficSource != "", optionalWeight},
		{data.BiggestProblem != "", optionalWeight},
		{data.PriorAttempts != "", optionalWeight},
		// Bonus.
		{len(data.Competitors) > 0, optionalWeight},
		{data.CompetitorEnvy != "", optionalWeight},
		{data.UniqueAdvantage != "", optionalWeight},
		{data.UrgencyTimeline != "", optionalWeight},
		{data.AgencyHistory != "", optionalWeight},
	}

	total, answered := 0.0, 0.0
	for _, f := range fields {
		total += f.weight
		if f.answered {
			answered += f.weight
		}
	}
	return answered / total * 100
}

// NextQuestion returns the highest-priority unanswered question, or empty
// when the fixed priority order is exhausted. It never skips ahead.
func (g *Gate) NextQuestion(data *model.QualificationData) string {
	q := g.templates.Questions
	switch {
	case data.IsOwner == nil:
		return q.Ownership
	case data.MonthlyAdSpend == nil:
		return q.Budget
	case data.BiggestProblem == "":
		return q.BiggestProblem
	case data.CostPerAcquisition == nil:
		return q.CPA
	case data.TrafficSource == "":
		return q.TrafficSource
	case data.UrgencyTimeline == "":
		return q.UrgencyTimeline
	case len(data.Competitors) == 0:
		return q.Competitors
	default:
		return ""
	}
}

// CallOfferMessage selects the call-offer copy for the lead's disclosed
// spend bracket, checked in ascending order with first match winning. Leads
// with no disclosed spend fall through to the high-CPA template, then the
// generic one.
func (g *Gate) CallOfferMessage(data *model.QualificationData) string {
	o := g.templates.Offers

	if data.MonthlyAdSpend != nil {
		spend := *data.MonthlyAdSpend
		switch {
		case spend < 500:
			return o.SpendUnder500
		case spend < 2000:
			return o.SpendTo2000
		case spend < 5000:
			return o.SpendTo5000
		default:
			return o.SpendOver5000
		}
	}

	if data.CostPerAcquisition != nil && *data.CostPerAcquisition > g.cfg.HighCPAThreshold {
		return o.HighCPA
	}
	return o.Generic
}
