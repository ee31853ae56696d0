package main

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tealeg/xlsx/v2"

	"github.com/sells-group/leadflow-cli/internal/model"
)

func TestWriteLeadsWorkbook(t *testing.T) {
	path := filepath.Join(t.TempDir(), "leads.xlsx")

	sessions := []*model.Session{
		{
			ID: "sess-1",
			Profile: model.LeadProfile{
				Name:           "Maria Garcia",
				Email:          "maria@garcia-dental.com",
				BusinessType:   "dental clinic",
				CurrentAdSpend: 3000,
				LeadScore:      80,
				Temperature:    model.TemperatureOnFire,
				ReadyToBuy:     true,
			},
			Turns:  []model.ConversationTurn{{Role: model.RoleUser, Text: "hi"}},
			AICost: 0.02,
		},
		{
			ID:      "sess-2",
			Profile: model.LeadProfile{Temperature: model.TemperatureCold},
		},
	}

	require.NoError(t, writeLeadsWorkbook(path, sessions))

	f, err := xlsx.OpenFile(path)
	require.NoError(t, err)
	require.Len(t, f.Sheets, 1)

	sheet := f.Sheets[0]
	assert.Equal(t, "Leads", sheet.Name)
	require.Len(t, sheet.Rows, 3) // header + 2 sessions

	assert.Equal(t, "Session ID", sheet.Rows[0].Cells[0].Value)
	assert.Equal(t, "sess-1", sheet.Rows[1].Cells[0].Value)
	assert.Equal(t, "maria@garcia-dental.com", sheet.Rows[1].Cells[2].Value)
	score, err := sheet.Rows[1].Cells[6].Int()
	require.NoError(t, err)
	assert.Equal(t, 80, score)
	assert.Equal(t, "on-fire", sheet.Rows[1].Cells[7].Value)
}

func TestWriteLeadsWorkbook_Empty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.xlsx")
	require.NoError(t, writeLeadsWorkbook(path, nil))

	f, err := xlsx.OpenFile(path)
	require.NoError(t, err)
	require.Len(t, f.Sheets[0].Rows, 1) // header only
}
