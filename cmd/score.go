package main

import (
	"encoding/json"
	"io"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/leadflow-cli/internal/model"
	"github.com/sells-group/leadflow-cli/internal/scoring"
)

var scoreFile string

var scoreCmd = &cobra.Command{
	Use:   "score",
	Short: "Score a lead profile",
	Long:  "Reads a lead profile as JSON from --file or stdin and prints the score, temperature and readiness.",
	RunE: func(cmd *cobra.Command, args []string) error {
		var r io.Reader = os.Stdin
		if scoreFile != "" {
			f, err := os.Open(scoreFile)
			if err != nil {
				return eris.Wrap(err, "open profile file")
			}
			defer f.Close()
			r = f
		}

		var profile model.LeadProfile
		if err := json.NewDecoder(r).Decode(&profile); err != nil {
			return eris.Wrap(err, "decode profile")
		}

		scoring.Recompute(&profile, cfg.Scoring.ReadyScoreThreshold)

		out := map[string]any{
			"score":        profile.LeadScore,
			"temperature":  profile.Temperature,
			"ready_to_buy": profile.ReadyToBuy,
		}
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	},
}

func init() {
	scoreCmd.Flags().StringVar(&scoreFile, "file", "", "profile JSON file (default: stdin)")
	rootCmd.AddCommand(scoreCmd)
}
