package cli

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

// app carries state shared by every subcommand of one invocation
type app struct {
	cfg    *Config
	client *Client
	out    *Output
}

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	a := &app{cfg: DefaultConfig()}

	rootCmd := &cobra.Command{
		Use:   "scorectl",
		Short: "CLI tool for the scorekeeper API",
		Long: `scorectl talks to a scorekeeper server.

It registers users, submits sprint and blitz results, and prints
leaderboards and the raw ledger contents.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			switch a.cfg.Output {
			case "text", "json":
			default:
				return fmt.Errorf("unknown output format %q: must be text or json", a.cfg.Output)
			}
			if a.cfg.NoColor {
				color.NoColor = true
			}

			a.client = NewClient(a.cfg.ServerURL, a.cfg.Timeout)
			a.out = NewOutput(a.cfg.Output, cmd.OutOrStdout(), cmd.ErrOrStderr())
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags
	rootCmd.PersistentFlags().StringVar(&a.cfg.ServerURL, "server", a.cfg.ServerURL, "Server URL (env: SCOREKEEPER_SERVER)")
	rootCmd.PersistentFlags().StringVarP(&a.cfg.Output, "output", "o", a.cfg.Output, "Output format: text, json")
	rootCmd.PersistentFlags().DurationVar(&a.cfg.Timeout, "timeout", a.cfg.Timeout, "Request timeout")
	rootCmd.PersistentFlags().BoolVar(&a.cfg.NoColor, "no-color", a.cfg.NoColor, "Disable coloured output (env: NO_COLOR)")

	// Add subcommands
	rootCmd.AddCommand(newRegisterCmd(a))
	rootCmd.AddCommand(newScoreCmd(a))
	rootCmd.AddCommand(newLeaderboardCmd(a))
	rootCmd.AddCommand(newUsersCmd(a))
	rootCmd.AddCommand(newDumpCmd(a))
	rootCmd.AddCommand(newHealthCmd(a))

	return rootCmd
}

// Run executes the CLI with args and reports errors in the chosen format.
// It returns the process exit code.
func Run(args []string) int {
	cmd := NewRootCmd()
	cmd.SetArgs(args)
	if err := cmd.Execute(); err != nil {
		format := "text"
		if f := cmd.PersistentFlags().Lookup("output"); f != nil {
			format = f.Value.String()
		}
		NewOutput(format, cmd.OutOrStdout(), cmd.ErrOrStderr()).PrintError(err)
		return 1
	}
	return 0
}

// Execute runs the root command
func Execute() {
	os.Exit(Run(os.Args[1:]))
}
