package notion

import (
	"context"

	"github.com/jomei/notionapi"
	"github.com/rotisserie/eris"
)

// LeadRow is the flattened view of a lead written to the Notion database.
type LeadRow struct {
	Name           string
	Email          string
	Phone          string
	Company        string
	Website        string
	Score          int
	Temperature    string
	Qualified      bool
	MonthlyAdSpend float64
	BiggestProblem string
	AICost         float64
}

// UpsertLead creates or updates the row keyed by Email in the leads database
// and returns the page id.
func UpsertLead(ctx context.Context, c Client, dbID string, row LeadRow) (string, error) {
	if row.Email == "" {
		return "", eris.New("notion: lead email is required")
	}

	resp, err := c.QueryDatabase(ctx, dbID, &notionapi.DatabaseQueryRequest{
		Filter: notionapi.PropertyFilter{
			Property: "Email",
			RichText: &notionapi.TextFilterCondition{Equals: row.Email},
		},
		PageSize: 1,
	})
	if err != nil {
		return "", eris.Wrap(err, "notion: find lead")
	}

	props := buildLeadProperties(row)

	if len(resp.Results) > 0 {
		pageID := resp.Results[0].ID.String()
		if _, err := c.UpdatePage(ctx, pageID, &notionapi.PageUpdateRequest{Properties: props}); err != nil {
			return "", eris.Wrap(err, "notion: update lead")
		}
		return pageID, nil
	}

	page, err := c.CreatePage(ctx, &notionapi.PageCreateRequest{
		Parent:     notionapi.Parent{Type: notionapi.ParentTypeDatabaseID, DatabaseID: notionapi.DatabaseID(dbID)},
		Properties: props,
	})
	if err != nil {
		return "", eris.Wrap(err, "notion: create lead")
	}
	return page.ID.String(), nil
}

func buildLeadProperties(row LeadRow) notionapi.Properties {
	props := notionapi.Properties{
		"Name": notionapi.TitleProperty{
			Title: []notionapi.RichText{{Text: &notionapi.Text{Content: orUnnamed(row.Name)}}},
		},
		"Email": notionapi.RichTextProperty{
			RichText: []notionapi.RichText{{Text: &notionapi.Text{Content: row.Email}}},
		},
		"Score": notionapi.NumberProperty{
			Number: float64(row.Score),
		},
		"Qualified": notionapi.CheckboxProperty{
			Checkbox: row.Qualified,
		},
		"AI Cost": notionapi.NumberProperty{
			Number: row.AICost,
		},
	}

	if row.Phone != "" {
		props["Phone"] = notionapi.PhoneNumberProperty{PhoneNumber: row.Phone}
	}
	if row.Company != "" {
		props["Company"] = notionapi.RichTextProperty{
			RichText: []notionapi.RichText{{Text: &notionapi.Text{Content: row.Company}}},
		}
	}
	if row.Website != "" {
		props["Website"] = notionapi.URLProperty{URL: row.Website}
	}
	if row.Temperature != "" {
		props["Temperature"] = notionapi.SelectProperty{
			Select: notionapi.Option{Name: row.Temperature},
		}
	}
	if row.MonthlyAdSpend > 0 {
		props["Monthly Ad Spend"] = notionapi.NumberProperty{Number: row.MonthlyAdSpend}
	}
	if row.BiggestProblem != "" {
		props["Biggest Problem"] = notionapi.RichTextProperty{
			RichText: []notionapi.RichText{{Text: &notionapi.Text{Content: row.BiggestProblem}}},
		}
	}
	return props
}

func orUnnamed(name string) string {
	if name == "" {
		return "Unnamed lead"
	}
	return name
}
