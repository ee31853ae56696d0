package model

// VisitorType classifies who is on the other end of a session.
type VisitorType string

const (
	VisitorOwner      VisitorType = "owner"
	VisitorCompetitor VisitorType = "competitor_researching"
	VisitorUnknown    VisitorType = "unknown"
)

// BusinessRecord is the known-good record a visitor identity is checked against.
type BusinessRecord struct {
	Name       string   `json:"name"`
	Domain     string   `json:"domain"`
	Industry   string   `json:"industry,omitempty"`
	OwnerNames []string `json:"owner_names,omitempty"` // owner plus known team members
}

// Verification is the identity verifier's decision.
type Verification struct {
	Type       VisitorType `json:"type"`
	Confidence float64     `json:"confidence"` // [0,1]
	Reason     string      `json:"reason"`
}
