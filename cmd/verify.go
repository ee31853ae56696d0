package main

import (
	"encoding/json"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/leadflow-cli/internal/model"
	"github.com/sells-group/leadflow-cli/internal/verify"
)

var (
	verifyName   string
	verifyEmail  string
	verifyRecord string
)

var verifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Verify a visitor's identity against a business record",
	RunE: func(cmd *cobra.Command, args []string) error {
		if verifyRecord == "" {
			return eris.New("--record is required")
		}

		data, err := os.ReadFile(verifyRecord)
		if err != nil {
			return eris.Wrap(err, "read business record")
		}
		var record model.BusinessRecord
		if err := json.Unmarshal(data, &record); err != nil {
			return eris.Wrap(err, "decode business record")
		}

		verifier := verify.NewVerifier(cfg.Verify)
		result := verifier.Verify(verifyName, verifyEmail, &record)

		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	},
}

func init() {
	verifyCmd.Flags().StringVar(&verifyName, "name", "", "visitor's claimed name")
	verifyCmd.Flags().StringVar(&verifyEmail, "email", "", "visitor's email address")
	verifyCmd.Flags().StringVar(&verifyRecord, "record", "", "business record JSON file")
	rootCmd.AddCommand(verifyCmd)
}
