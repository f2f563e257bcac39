package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

func newGameCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "game",
		Short: "Game commands",
	}

	cmd.AddCommand(newGameStartCmd())
	cmd.AddCommand(newGameStateCmd())
	cmd.AddCommand(newGameRollCmd())
	cmd.AddCommand(newGameDecideCmd())
	cmd.AddCommand(newGameResetCmd())

	return cmd
}

func newGameStartCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "start <name>...",
		Short: "Start a game with the given players",
		Long:  "Start a game with the given players. An existing game is kept unchanged.",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := api.StartGame(cmd.Context(), args)
			if err != nil {
				return err
			}
			NewOutput(cfg.Output, cmd.OutOrStdout()).Print(result)
			return nil
		},
	}
}

func newGameStateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "state",
		Short: "Show the current game",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := api.GameState(cmd.Context())
			if err != nil {
				return err
			}
			NewOutput(cfg.Output, cmd.OutOrStdout()).Print(result)
			return nil
		},
	}
}

func newGameRollCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "roll",
		Short: "Roll the dice for the current player",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := api.Roll(cmd.Context())
			if err != nil {
				return err
			}
			NewOutput(cfg.Output, cmd.OutOrStdout()).Print(result)
			return nil
		},
	}
}

func newGameDecideCmd() *cobra.Command {
	var id string

	cmd := &cobra.Command{
		Use:   "decide <buy|decline|next>",
		Short: "Answer the open decision",
		Long:  "Answer the open decision. Without --id the decision currently open on the server is answered.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if id == "" {
				state, err := api.GameState(cmd.Context())
				if err != nil {
					return err
				}
				if state.Decision == nil {
					return errors.New("no decision is open")
				}
				id = state.Decision.ID
			}

			result, err := api.Decide(cmd.Context(), id, args[0])
			if err != nil {
				return fmt.Errorf("decision %s: %w", id, err)
			}
			NewOutput(cfg.Output, cmd.OutOrStdout()).Print(result)
			return nil
		},
	}

	cmd.Flags().StringVar(&id, "id", "", "Decision id (default: the open decision)")

	return cmd
}

func newGameResetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reset",
		Short: "Reset the game, removing every player",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := api.ResetGame(cmd.Context()); err != nil {
				return err
			}
			NewOutput(cfg.Output, cmd.OutOrStdout()).PrintMessage("Game reset")
			return nil
		},
	}
}
