package cli

import (
	"net/url"
	"strconv"

	"github.com/spf13/cobra"
)

func newLeaderboardCmd(a *app) *cobra.Command {
	var mode string
	var limit int

	cmd := &cobra.Command{
		Use:   "leaderboard",
		Short: "Show the top players for a mode",
		RunE: func(cmd *cobra.Command, args []string) error {
			query := url.Values{"mode": {mode}}
			if limit > 0 {
				query.Set("limit", strconv.Itoa(limit))
			}

			var entries []RankEntry
			if err := a.client.Get(cmd.Context(), "/leaderboard", query, &entries); err != nil {
				return err
			}

			a.out.Print(Leaderboard{Mode: mode, Entries: entries})
			return nil
		},
	}

	cmd.Flags().StringVar(&mode, "mode", "", "Game mode: sprint or blitz (required)")
	cmd.Flags().IntVar(&limit, "limit", 0, "Number of entries (server default 10)")
	_ = cmd.MarkFlagRequired("mode")

	return cmd
}
