package main

import (
	"encoding/json"
	"fmt"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/leadflow-cli/internal/model"
	"github.com/sells-group/leadflow-cli/internal/store"
)

var (
	sessionsTemperature string
	sessionsLimit       int
)

var sessionsCmd = &cobra.Command{
	Use:   "sessions",
	Short: "Inspect stored conversation sessions",
}

var sessionsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List sessions",
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
			Temperature: model.Temperature(sessionsTemperature),
			Limit:       sessionsLimit,
		})
		if err != nil {
			return err
		}

		for _, s := range sessions {
			fmt.Fprintf(cmd.OutOrStdout(), "%s  score=%-3d temp=%-7s turns=%-3d %s\n",
				s.ID, s.Profile.LeadScore, s.Profile.Temperature, len(s.Turns), s.Profile.Email)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%d sessions\n", len(sessions))
		return nil
	},
}

var sessionsShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show one session as JSON",
	Args:  cobra.ExactArgs(1),
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

		session, err := st.GetSession(ctx, args[0])
		if err != nil {
			return err
		}
		if session == nil {
			return eris.Errorf("session %s not found", args[0])
		}

		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(session)
	},
}

var sessionsDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a session",
	Args:  cobra.ExactArgs(1),
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

		if err := st.DeleteSession(ctx, args[0]); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "deleted %s\n", args[0])
		return nil
	},
}

func init() {
	sessionsListCmd.Flags().StringVar(&sessionsTemperature, "temperature", "", "filter by temperature (cold, warm, hot, on-fire)")
	sessionsListCmd.Flags().IntVar(&sessionsLimit, "limit", 0, "max sessions to list")
	sessionsCmd.AddCommand(sessionsListCmd, sessionsShowCmd, sessionsDeleteCmd)
	rootCmd.AddCommand(sessionsCmd)
}
