package model

import "time"

// Temperature is the categorical urgency/value label derived from the lead score.
type Temperature string

const (
	TemperatureCold   Temperature = "cold"
	TemperatureWarm   Temperature = "warm"
	TemperatureHot    Temperature = "hot"
	TemperatureOnFire Temperature = "on-fire"
)

// Urgency describes how soon a lead wants to act.
type Urgency string

const (
	UrgencyImmediate Urgency = "immediate"
	UrgencyHigh      Urgency = "high"
	UrgencyMedium    Urgency = "medium"
	UrgencyLow       Urgency = "low"
)

// LeadProfile is the mutable aggregate built up over a conversation session.
// Score, Temperature and ReadyToBuy are derived fields: the engine recomputes
// them on every mutation and they are carried here only for serialization.
type LeadProfile struct {
	// Identity.
	Name  string `json:"name,omitempty"`
	Email string `json:"email,omitempty"`
	Phone string `json:"phone,omitempty"`

	// Business context.
	BusinessType  string `json:"business_type,omitempty"`
	Domain        string `json:"domain,omitempty"`
	MainChallenge string `json:"main_challenge,omitempty"`

	// Financial signals.
	CurrentAdSpend float64 `json:"current_ad_spend,omitempty"`
	MonthlyRevenue float64 `json:"monthly_revenue,omitempty"`
	Urgency        Urgency `json:"urgency,omitempty"`

	// Business maturity flags.
	HasWebsite     bool `json:"has_website,omitempty"`
	HasFacebookAds bool `json:"has_facebook_ads,omitempty"`
	HasGoogleAds   bool `json:"has_google_ads,omitempty"`

	// Engagement counters.
	ConversationCount int      `json:"conversation_count"`
	PagesViewed       []string `json:"pages_viewed,omitempty"`
	TotalTimeSpent    int      `json:"total_time_spent,omitempty"` // seconds

	// Derived.
	LeadScore   int         `json:"lead_score"`
	Temperature Temperature `json:"temperature"`
	ReadyToBuy  bool        `json:"ready_to_buy"`
}

// Role identifies the speaker of a conversation turn.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// ConversationType classifies an inbound message; it drives backend selection.
type ConversationType string

const (
	TypeGreeting      ConversationType = "greeting"
	TypeEmotional     ConversationType = "emotional"
	TypeTechnical     ConversationType = "technical"
	TypeClosing       ConversationType = "closing"
	TypeQualification ConversationType = "qualification"
)

// Backend identifies one of the two response-generation backends.
type Backend string

const (
	// BackendEmpathetic is the conversational model used for rapport building.
	BackendEmpathetic Backend = "empathetic"
	// BackendAnalytical is the data/analysis model, also the fallback target.
	BackendAnalytical Backend = "analytical"
)

// ConversationTurn is an immutable record of a single message in a session.
// Sequence ordering is insertion order and is semantically significant.
type ConversationTurn struct {
	Timestamp time.Time        `json:"timestamp"`
	Role      Role             `json:"role"`
	Text      string           `json:"text"`
	Type      ConversationType `json:"type,omitempty"` // inferred, user turns only
}

// Session ties a profile, its qualification answers and the turn history to
// an opaque session id. One profile per session, no sharing across sessions.
type Session struct {
	ID            string             `json:"id"`
	Profile       LeadProfile        `json:"profile"`
	Qualification QualificationData  `json:"qualification"`
	Turns         []ConversationTurn `json:"turns,omitempty"`
	AICost        float64            `json:"ai_cost"` // accumulated backend spend, USD
	CRMSynced     bool               `json:"crm_synced,omitempty"`
	CreatedAt     time.Time          `json:"created_at"`
	UpdatedAt     time.Time          `json:"updated_at"`
}

// History returns the turn texts in insertion order, for classification.
func (s *Session) History() []ConversationTurn {
	return s.Turns
}
