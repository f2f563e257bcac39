package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mcoot/aseguradoss/internal/api/response"
	"github.com/mcoot/aseguradoss/internal/services/catalog"
)

func newEventsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "events",
		Aliases: []string{"eventos"},
		Short:   "Event catalog commands",
	}

	cmd.AddCommand(newEventsListCmd())
	cmd.AddCommand(newEventsRandomCmd())
	cmd.AddCommand(newEventsSeedCmd())

	return cmd
}

func newEventsListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List the event catalog",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := api.ListEvents(cmd.Context())
			if err != nil {
				return err
			}
			NewOutput(cfg.Output, cmd.OutOrStdout()).Print(result)
			return nil
		},
	}
}

func newEventsRandomCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "random",
		Short: "Draw a random event",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := api.RandomEvent(cmd.Context())
			if err != nil {
				return err
			}
			NewOutput(cfg.Output, cmd.OutOrStdout()).Print(result)
			return nil
		},
	}
}

func newEventsSeedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed <file>",
		Short: "Replace the event catalog with the events in a JSON file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			events, err := catalog.ReadFile(args[0])
			if err != nil {
				return err
			}

			body := make([]response.Event, len(events))
			for i, e := range events {
				body[i] = response.EventFromModel(e)
			}
			if err := api.SeedEvents(cmd.Context(), body); err != nil {
				return err
			}
			NewOutput(cfg.Output, cmd.OutOrStdout()).PrintMessage(fmt.Sprintf("Seeded %d events", len(events)))
			return nil
		},
	}
}
