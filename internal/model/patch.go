package model

// ProfilePatch is a partial LeadProfile produced by fact extraction or site
// analysis. Nil pointers mean "no new information"; patches never clear a
// previously learned value.
type ProfilePatch struct {
	Name           *string  `json:"name,omitempty"`
	Email          *string  `json:"email,omitempty"`
	Phone          *string  `json:"phone,omitempty"`
	BusinessType   *string  `json:"business_type,omitempty"`
	Domain         *string  `json:"domain,omitempty"`
	MainChallenge  *string  `json:"main_challenge,omitempty"`
	CurrentAdSpend *float64 `json:"current_ad_spend,omitempty"`
	MonthlyRevenue *float64 `json:"monthly_revenue,omitempty"`
	Urgency        *Urgency `json:"urgency,omitempty"`
	HasWebsite     *bool    `json:"has_website,omitempty"`
	HasFacebookAds *bool    `json:"has_facebook_ads,omitempty"`
	HasGoogleAds   *bool    `json:"has_google_ads,omitempty"`
}

// IsZero reports whether the patch carries no information at all.
func (p *ProfilePatch) IsZero() bool {
	return p == nil || *p == ProfilePatch{}
}

// Apply merges the patch into a profile, last writer wins.
func (p *ProfilePatch) Apply(profile *LeadProfile) {
	if p == nil {
		return
	}
	if p.Name != nil {
		profile.Name = *p.Name
	}
	if p.Email != nil {
		profile.Email = *p.Email
	}
	if p.Phone != nil {
		profile.Phone = *p.Phone
	}
	if p.BusinessType != nil {
		profile.BusinessType = *p.BusinessType
	}
	if p.Domain != nil {
		profile.Domain = *p.Domain
	}
	if p.MainChallenge != nil {
		profile.MainChallenge = *p.MainChallenge
	}
	if p.CurrentAdSpend != nil {
		profile.CurrentAdSpend = *p.CurrentAdSpend
	}
	if p.MonthlyRevenue != nil {
		profile.MonthlyRevenue = *p.MonthlyRevenue
	}
	if p.Urgency != nil {
		profile.Urgency = *p.Urgency
	}
	if p.HasWebsite != nil {
		profile.HasWebsite = *p.HasWebsite
	}
	if p.HasFacebookAds != nil {
		profile.HasFacebookAds = *p.HasFacebookAds
	}
	if p.HasGoogleAds != nil {
		profile.HasGoogleAds = *p.HasGoogleAds
	}
}

// ApplyQualification forwards the profile facts that double as qualification
// answers, so a spend or challenge disclosed mid-chat also moves the gate.
func (p *ProfilePatch) ApplyQualification(data *QualificationData) {
	if p == nil {
		return
	}
	if p.CurrentAdSpend != nil {
		spend := *p.CurrentAdSpend
		data.MonthlyAdSpend = &spend
	}
	if p.MainChallenge != nil && data.BiggestProblem == "" {
		data.BiggestProblem = *p.MainChallenge
	}
}
