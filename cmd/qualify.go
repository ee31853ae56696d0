package main

import (
	"encoding/json"
	"io"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/leadflow-cli/internal/model"
	"github.com/sells-group/leadflow-cli/internal/qualify"
)

var qualifyFile string

var qualifyCmd = &cobra.Command{
	Use:   "qualify",
	Short: "Run the qualification gate on lead data",
	Long:  "Reads qualification data as JSON from --file or stdin and prints the gate decision with the next question or call offer.",
	RunE: func(cmd *cobra.Command, args []string) error {
		var r io.Reader = os.Stdin
		if qualifyFile != "" {
			f, err := os.Open(qualifyFile)
			if err != nil {
				return eris.Wrap(err, "open data file")
			}
			defer f.Close()
			r = f
		}

		var data model.QualificationData
		if err := json.NewDecoder(r).Decode(&data); err != nil {
			return eris.Wrap(err, "decode qualification data")
		}

		templates, err := initTemplates()
		if err != nil {
			return err
		}
		gate := qualify.NewGate(cfg.Qualify, templates)

		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")

		if missing := gate.MissingData(&data); len(missing) > 0 {
			return enc.Encode(map[string]any{
				"complete":      false,
				"missing":       missing,
				"next_question": gate.NextQuestion(&data),
			})
		}

		result := gate.Evaluate(&data)
		out := map[string]any{
			"qualified":    result.Qualified,
			"reason":       result.Reason,
			"completeness": result.Completeness,
		}
		if result.Qualified {
			out["call_offer"] = gate.CallOfferMessage(&data)
		} else {
			out["next_question"] = gate.NextQuestion(&data)
		}

		return enc.Encode(out)
	},
}

func init() {
	qualifyCmd.Flags().StringVar(&qualifyFile, "file", "", "qualification JSON file (default: stdin)")
	rootCmd.AddCommand(qualifyCmd)
}
