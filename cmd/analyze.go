package main

import (
	"encoding/json"

	"github.com/spf13/cobra"

	"github.com/sells-group/leadflow-cli/internal/analyze"
	"github.com/sells-group/leadflow-cli/pkg/adlibrary"
	"github.com/sells-group/leadflow-cli/pkg/sitefetch"
)

var (
	analyzeURL        string
	analyzeAdvertiser string
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Analyze a prospect's website and ad presence",
	RunE: func(cmd *cobra.Command, args []string) error {
		var fetcher sitefetch.Client
		if cfg.SiteFetch.Key != "" {
			fetcher = sitefetch.NewClient(cfg.SiteFetch.Key, sitefetch.WithBaseURL(cfg.SiteFetch.BaseURL))
		}
		var adsClient adlibrary.Client
		if cfg.AdLibrary.BaseURL != "" {
			adsClient = adlibrary.NewClient(cfg.AdLibrary.BaseURL)
		}

		result, err := analyze.New(fetcher, adsClient).Analyze(cmd.Context(), analyzeURL, analyzeAdvertiser)
		if err != nil {
			return err
		}

		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	},
}

func init() {
	analyzeCmd.Flags().StringVar(&analyzeURL, "url", "", "prospect website URL")
	analyzeCmd.Flags().StringVar(&analyzeAdvertiser, "advertiser", "", "advertiser name for the ad-library search")
	rootCmd.AddCommand(analyzeCmd)
}
