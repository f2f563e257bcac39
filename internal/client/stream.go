package client

import (
	"bufio"
	"context"
	"fmt"
	"net/http"
	"strings"
)

// Event is one message received from the game event stream
type Event struct {
	Name string
	Data string
}

// Stream connects to the game event stream and calls fn for every event
// until ctx is cancelled or the server closes the stream. Cancellation is
// not an error.
func (c *Client) Stream(ctx context.Context, fn func(Event)) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/game/events", nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "text/event-stream")
	req.Header.Set("Cache-Control", "no-cache")

	// No timeout for the stream
	hc := *c.httpClient
	hc.Timeout = 0

	resp, err := hc.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil
		}
		return fmt.Errorf("connection failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status: %d", resp.StatusCode)
	}

	if err := readEvents(bufio.NewScanner(resp.Body), fn); err != nil && ctx.Err() == nil {
		return fmt.Errorf("stream error: %w", err)
	}
	return nil
}

// readEvents parses SSE frames. Comment lines are ignored.
func readEvents(scanner *bufio.Scanner, fn func(Event)) error {
	var name string
	var data []string

	for scanner.Scan() {
		line := scanner.Text()
		switch {
		case strings.HasPrefix(line, "event: "):
			name = strings.TrimPrefix(line, "event: ")
		case strings.HasPrefix(line, "data: "):
			data = append(data, strings.TrimPrefix(line, "data: "))
		case line == "":
			if name != "" {
				fn(Event{Name: name, Data: strings.Join(data, "\n")})
			}
			name = ""
			data = nil
		}
	}
	return scanner.Err()
}
