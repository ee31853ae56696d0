package salesforce

import (
	"context"
	"fmt"
	"strings"

	"github.com/rotisserie/eris"
)

// Lead represents a Salesforce Lead record.
type Lead struct {
	ID            string  `json:"Id" salesforce:"Id"`
	FirstName     string  `json:"FirstName" salesforce:"FirstName"`
	LastName      string  `json:"LastName" salesforce:"LastName"`
	Company       string  `json:"Company" salesforce:"Company"`
	Email         string  `json:"Email" salesforce:"Email"`
	Phone         string  `json:"Phone" salesforce:"Phone"`
	Website       string  `json:"Website" salesforce:"Website"`
	LeadSource    string  `json:"LeadSource" salesforce:"LeadSource"`
	Rating        string  `json:"Rating" salesforce:"Rating"`
	Description   string  `json:"Description" salesforce:"Description"`
	AnnualRevenue float64 `json:"AnnualRevenue" salesforce:"AnnualRevenue"`
}

// leadFields are the SOQL fields selected for Lead queries.
var leadFields = []string{
	"Id", "FirstName", "LastName", "Company", "Email", "Phone",
	"Website", "LeadSource", "Rating", "Description", "AnnualRevenue",
}

// FindLeadByEmail queries Salesforce for a Lead matching the given email.
// Returns nil if no lead is found.
func FindLeadByEmail(ctx context.Context, c Client, email string) (*Lead, error) {
	soql := fmt.Sprintf(
		"SELECT %s FROM Lead WHERE Email = '%s' LIMIT 1",
		strings.Join(leadFields, ", "),
		escapeSoql(email),
	)

	var leads []Lead
	if err := c.Query(ctx, soql, &leads); err != nil {
		return nil, eris.Wrap(err, fmt.Sprintf("sf: find lead by email %s", email))
	}
	if len(leads) == 0 {
		return nil, nil
	}
	return &leads[0], nil
}

// UpsertLead updates the Lead matching fields["Email"] or creates a new one.
// Returns the Salesforce ID either way.
func UpsertLead(ctx context.Context, c Client, fields map[string]any) (string, error) {
	email, _ := fields["Email"].(string)
	if email == "" {
		return "", eris.New("sf: lead Email is required")
	}
	if fields["LastName"] == nil || fields["LastName"] == "" {
		return "", eris.New("sf: lead LastName is required")
	}
	if fields["Company"] == nil || fields["Company"] == "" {
		return "", eris.New("sf: lead Company is required")
	}

	existing, err := FindLeadByEmail(ctx, c, email)
	if err != nil {
		return "", err
	}
	if existing != nil {
		update := make(map[string]any, len(fields))
		for k, v := range fields {
			update[k] = v
		}
		if err := c.UpdateOne(ctx, "Lead", existing.ID, update); err != nil {
			return "", eris.Wrap(err, fmt.Sprintf("sf: update lead %s", existing.ID))
		}
		return existing.ID, nil
	}

	id, err := c.InsertOne(ctx, "Lead", fields)
	if err != nil {
		return "", eris.Wrap(err, "sf: create lead")
	}
	return id, nil
}

// escapeSoql escapes single quotes in SOQL string literals to prevent injection.
func escapeSoql(s string) string {
	return strings.ReplaceAll(s, "'", "\\'")
}
