package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newRegisterCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "register NAME",
		Short: "Register a user (no-op if already registered)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var result UserResult
			req := map[string]string{"name": args[0]}

			if err := a.client.Post(cmd.Context(), "/register", req, &result); err != nil {
				return err
			}

			a.out.Print(result)
			return nil
		},
	}
}

func newScoreCmd(a *app) *cobra.Command {
	var mode string
	var score float64

	cmd := &cobra.Command{
		Use:   "score NAME",
		Short: "Submit a game result",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if mode != "sprint" && mode != "blitz" {
				return fmt.Errorf("--mode must be sprint or blitz")
			}

			var result UserResult
			req := map[string]any{"name": args[0], "mode": mode, "score": score}

			if err := a.client.Post(cmd.Context(), "/score", req, &result); err != nil {
				return err
			}

			a.out.Print(result)
			return nil
		},
	}

	cmd.Flags().StringVar(&mode, "mode", "", "Game mode: sprint or blitz (required)")
	cmd.Flags().Float64Var(&score, "score", 0, "Score: elapsed time for sprint, points for blitz (required)")
	_ = cmd.MarkFlagRequired("mode")
	_ = cmd.MarkFlagRequired("score")

	return cmd
}

func newUsersCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "users",
		Short: "List registered users",
		RunE: func(cmd *cobra.Command, args []string) error {
			var result UserList

			if err := a.client.Get(cmd.Context(), "/users", nil, &result); err != nil {
				return err
			}

			a.out.Print(result)
			return nil
		},
	}
}

func newDumpCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "dump",
		Short: "Print every stored record",
		RunE: func(cmd *cobra.Command, args []string) error {
			var result Dump

			if err := a.client.Get(cmd.Context(), "/dump", nil, &result); err != nil {
				return err
			}

			a.out.Print(result)
			return nil
		},
	}
}
