package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/mcoot/aseguradoss/internal/client"
)

func newWatchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Stream live game events",
		Long: `Connect to the game event stream and print events as they arrive.

Events include:
  - players-changed: a player record changed
  - turn-advanced: the turn passed to another player
  - dice-intermediate / dice-final: dice animation and result
  - decision-requested: a decision opened and awaits an answer
  - notice: a message for the players

Press Ctrl+C to disconnect.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			out := cmd.OutOrStdout()
			jsonOutput := cfg.Output == "json"
			if !jsonOutput {
				fmt.Fprintf(out, "Connected to %s\n", api.BaseURL())
			}

			err := api.Stream(ctx, func(e client.Event) {
				printEvent(out, e, time.Now(), jsonOutput)
			})
			if err != nil {
				return err
			}
			if !jsonOutput {
				fmt.Fprintln(out, "Disconnected")
			}
			return nil
		},
	}
}

// streamEvent is the JSON-lines form of a received event
type streamEvent struct {
	Time  time.Time       `json:"time"`
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

func printEvent(w io.Writer, e client.Event, now time.Time, jsonOutput bool) {
	if jsonOutput {
		data := json.RawMessage(e.Data)
		if !json.Valid(data) {
			data, _ = json.Marshal(e.Data)
		}
		line, _ := json.Marshal(streamEvent{Time: now, Event: e.Name, Data: data})
		fmt.Fprintln(w, string(line))
		return
	}

	display := strings.ReplaceAll(e.Data, "\n", " ")
	if len(display) > 100 {
		display = display[:100] + "..."
	}
	fmt.Fprintf(w, "[%s] %s: %s\n", now.Format("2006-01-02 15:04:05"), e.Name, display)
}
