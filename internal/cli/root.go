package cli

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/mcoot/aseguradoss/internal/client"
)

var (
	cfg *Config
	api *client.Client
)

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	cfg = DefaultConfig()

	rootCmd := &cobra.Command{
		Use:   "asegurados",
		Short: "CLI tool for the Aseguradoss game server",
		Long: `asegurados drives an Aseguradoss game server over its JSON API.

Start a game, roll the dice, answer insurance offers and event cards,
inspect the stored players and event catalog, and watch the live event
stream.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			api = client.New(cfg.ServerURL)
			return nil
		},
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVar(&cfg.ServerURL, "server", cfg.ServerURL, "Server URL (env: ASEG_SERVER)")
	rootCmd.PersistentFlags().StringVarP(&cfg.Output, "output", "o", cfg.Output, "Output format: text, json")

	rootCmd.AddCommand(newGameCmd())
	rootCmd.AddCommand(newPlayersCmd())
	rootCmd.AddCommand(newEventsCmd())
	rootCmd.AddCommand(newWatchCmd())
	rootCmd.AddCommand(newHealthCmd())

	return rootCmd
}

// Execute runs the root command
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
