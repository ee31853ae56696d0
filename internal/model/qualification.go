package model

// QualificationData holds the explicit answers collected for the
// qualification gate. The mandatory fields are tri-state: nil means the
// question has not been answered yet.
type QualificationData struct {
	// Mandatory.
	IsOwner        *bool    `json:"is_owner,omitempty"`
	MonthlyAdSpend *float64 `json:"monthly_ad_spend,omitempty"`

	// Valuable.
	CostPerAcquisition *float64 `json:"cost_per_acquisition,omitempty"`
	ConversionRate     *float64 `json:"conversion_rate,omitempty"`
	TrafficSource      string   `json:"traffic_source,omitempty"`
	BiggestProblem     string   `json:"biggest_problem,omitempty"`
	PriorAttempts      string   `json:"prior_attempts,omitempty"`

	// Bonus.
	Competitors     []string `json:"competitors,omitempty"`
	CompetitorEnvy  string   `json:"competitor_envy,omitempty"`
	UniqueAdvantage string   `json:"unique_advantage,omitempty"`
	UrgencyTimeline string   `json:"urgency_timeline,omitempty"`
	AgencyHistory   string   `json:"agency_history,omitempty"`
}

// OwnershipConfirmed reports whether the lead explicitly confirmed ownership.
func (q *QualificationData) OwnershipConfirmed() bool {
	return q.IsOwner != nil && *q.IsOwner
}

// QualificationResult is the gate's decision.
type QualificationResult struct {
	Qualified    bool    `json:"qualified"`
	Reason       string  `json:"reason"`
	Completeness float64 `json:"completeness"` // percent, [0,100]
}
