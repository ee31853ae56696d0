package main

import (
	"fmt"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"github.com/tealeg/xlsx/v2"
	"go.uber.org/zap"

	"github.com/sells-group/leadflow-cli/internal/model"
	"github.com/sells-group/leadflow-cli/internal/store"
)

var (
	exportOutput      string
	exportTemperature string
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export sessions to an XLSX workbook",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		if err := st.Migrate(ctx); err != nil {
			return eris.Wrap(err, "migrate store")
		}

		sessions, err := st.ListSessions(ctx, store.SessionFilter{
			Temperature: model.Temperature(exportTemperature),
		})
		if err != nil {
			return err
		}

		sessionPtrs := make([]*model.Session, len(sessions))
		for i := range sessions {
			sessionPtrs[i] = &sessions[i]
		}

		if err := writeLeadsWorkbook(exportOutput, sessionPtrs); err != nil {
			return err
		}

		zap.L().Info("export complete",
			zap.String("path", exportOutput),
			zap.Int("sessions", len(sessions)),
		)
		fmt.Fprintf(cmd.OutOrStdout(), "wrote %d sessions to %s\n", len(sessions), exportOutput)
		return nil
	},
}

var leadsHeader = []string{
	"Session ID", "Name", "Email", "Phone", "Business", "Domain",
	"Score", "Temperature", "Ready", "Ad Spend", "Challenge",
	"Turns", "AI Cost",
}

// writeLeadsWorkbook writes one row per session.
func writeLeadsWorkbook(path string, sessions []*model.Session) error {
	f := xlsx.NewFile()
	sheet, err := f.AddSheet("Leads")
	if err != nil {
		return eris.Wrap(err, "add sheet")
	}

	header := sheet.AddRow()
	for _, h := range leadsHeader {
		header.AddCell().Value = h
	}

	for _, s := range sessions {
		p := s.Profile
		row := sheet.AddRow()
		row.AddCell().Value = s.ID
		row.AddCell().Value = p.Name
		row.AddCell().Value = p.Email
		row.AddCell().Value = p.Phone
		row.AddCell().Value = p.BusinessType
		row.AddCell().Value = p.Domain
		row.AddCell().SetInt(p.LeadScore)
		row.AddCell().Value = string(p.Temperature)
		row.AddCell().SetBool(p.ReadyToBuy)
		row.AddCell().SetFloat(p.CurrentAdSpend)
		row.AddCell().Value = p.MainChallenge
		row.AddCell().SetInt(len(s.Turns))
		row.AddCell().SetFloat(s.AICost)
	}

	if err := f.Save(path); err != nil {
		return eris.Wrap(err, "save workbook")
	}
	return nil
}

func init() {
	exportCmd.Flags().StringVar(&exportOutput, "output", "leads.xlsx", "output file path")
	exportCmd.Flags().StringVar(&exportTemperature, "temperature", "", "filter by temperature")
	rootCmd.AddCommand(exportCmd)
}
