// Package crm pushes qualified leads to Salesforce and Notion.
package crm

import (
	"context"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/leadflow-cli/internal/config"
	"github.com/sells-group/leadflow-cli/internal/model"
	"github.com/sells-group/leadflow-cli/pkg/notion"
	"github.com/sells-group/leadflow-cli/pkg/salesforce"
)

// SyncResult records which systems accepted the lead.
type SyncResult struct {
	SalesforceID string `json:"salesforce_id,omitempty"`
	NotionPageID string `json:"notion_page_id,omitempty"`
}

// Sync writes a qualified lead to both CRM systems concurrently. They are
// independent; a partial failure retries the laggard once before reporting.
type Sync struct {
	sf      salesforce.Client
	notion  notion.Client
	leadsDB string
}

// NewSync creates a Sync. Either client may be nil, which skips that system.
func NewSync(sf salesforce.Client, nc notion.Client, cfg config.NotionConfig) *Sync {
	return &Sync{sf: sf, notion: nc, leadsDB: cfg.LeadsDB}
}

// SyncLead pushes the session's lead to Salesforce and Notion. A lead without
// an email cannot be keyed in either system and is skipped with a warning.
func (s *Sync) SyncLead(ctx context.Context, session *model.Session) error {
	if session.Profile.Email == "" {
		zap.L().Warn("crm: lead has no email, skipping sync",
			zap.String("session_id", session.ID),
		)
		return nil
	}

	result := &SyncResult{}
	g, gCtx := errgroup.WithContext(ctx)

	var sfErr, notionErr error

	g.Go(func() error {
		if s.sf == nil {
			return nil
		}
		id, err := salesforce.UpsertLead(gCtx, s.sf, buildSFLead(session))
		if err != nil {
			sfErr = err
			zap.L().Error("crm: salesforce upsert failed",
				zap.String("session_id", session.ID),
				zap.Error(err),
			)
			return eris.Wrap(err, "crm: sf upsert")
		}
		result.SalesforceID = id
		return nil
	})

	g.Go(func() error {
		if s.notion == nil {
			return nil
		}
		pageID, err := notion.UpsertLead(gCtx, s.notion, s.leadsDB, buildNotionRow(session))
		if err != nil {
			notionErr = err
			zap.L().Warn("crm: notion upsert failed",
				zap.String("session_id", session.ID),
				zap.Error(err),
			)
		}
		result.NotionPageID = pageID
		return nil
	})

	if err := g.Wait(); err != nil {
		// Salesforce failed. Notion may still have landed; report the error
		// so the caller logs the partial state.
		return err
	}

	// Salesforce landed but Notion did not: retry Notion once with the
	// original context before giving up.
	if sfErr == nil && notionErr != nil && s.notion != nil {
		zap.L().Error("crm: salesforce updated but notion failed, retrying notion",
			zap.String("session_id", session.ID),
			zap.Error(notionErr),
		)
		pageID, retryErr := notion.UpsertLead(ctx, s.notion, s.leadsDB, buildNotionRow(session))
		if retryErr != nil {
			zap.L().Error("crm: notion retry also failed",
				zap.String("session_id", session.ID),
				zap.Error(retryErr),
			)
			return eris.Wrap(retryErr, "crm: notion upsert")
		}
		result.NotionPageID = pageID
	}

	zap.L().Info("crm: lead synced",
		zap.String("session_id", session.ID),
		zap.String("salesforce_id", result.SalesforceID),
		zap.String("notion_page_id", result.NotionPageID),
	)
	return nil
}

// buildSFLead maps a session onto Salesforce Lead fields.
func buildSFLead(session *model.Session) map[string]any {
	p := session.Profile
	first, last := splitName(p.Name)

	fields := map[string]any{
		"Email":      p.Email,
		"LastName":   last,
		"Company":    orFallback(p.BusinessType, "Unknown"),
		"LeadSource": "Website Chat",
		"Rating":     sfRating(p.Temperature),
	}
	if first != "" {
		fields["FirstName"] = first
	}
	if p.Phone != "" {
		fields["Phone"] = p.Phone
	}
	if p.Domain != "" {
		fields["Website"] = p.Domain
	}
	if p.MainChallenge != "" {
		fields["Description"] = p.MainChallenge
	}
	if p.MonthlyRevenue > 0 {
		fields["AnnualRevenue"] = p.MonthlyRevenue * 12
	}
	return fields
}

// buildNotionRow maps a session onto the leads database row.
func buildNotionRow(session *model.Session) notion.LeadRow {
	p := session.Profile
	row := notion.LeadRow{
		Name:           p.Name,
		Email:          p.Email,
		Phone:          p.Phone,
		Company:        p.BusinessType,
		Website:        p.Domain,
		Score:          p.LeadScore,
		Temperature:    string(p.Temperature),
		Qualified:      true,
		BiggestProblem: session.Qualification.BiggestProblem,
		AICost:         session.AICost,
	}
	if session.Qualification.MonthlyAdSpend != nil {
		row.MonthlyAdSpend = *session.Qualification.MonthlyAdSpend
	}
	return row
}

// sfRating maps lead temperature onto Salesforce's three-valued Rating.
func sfRating(t model.Temperature) string {
	switch t {
	case model.TemperatureOnFire, model.TemperatureHot:
		return "Hot"
	case model.TemperatureWarm:
		return "Warm"
	default:
		return "Cold"
	}
}

// splitName separates a display name into first and last. A single token
// becomes the last name since Salesforce requires one.
func splitName(name string) (first, last string) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", "Unknown"
	}
	parts := strings.Fields(name)
	if len(parts) == 1 {
		return "", parts[0]
	}
	return strings.Join(parts[:len(parts)-1], " "), parts[len(parts)-1]
}

func orFallback(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}
