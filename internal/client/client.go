// Package client is a typed HTTP client for the game server's JSON API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/mcoot/aseguradoss/internal/api/apierr"
	"github.com/mcoot/aseguradoss/internal/api/request"
	"github.com/mcoot/aseguradoss/internal/api/response"
	"github.com/mcoot/aseguradoss/internal/model"
)

// DefaultTimeout bounds every non-streaming request
const DefaultTimeout = 30 * time.Second

// Client is an HTTP client for the API
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// Option configures a Client
type Option func(*Client)

// WithHTTPClient replaces the underlying http.Client
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// New creates a new API client for the server at baseURL
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{Timeout: DefaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the server URL the client talks to
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Error is an error response from the API. It unwraps to the matching
// model sentinel when the code has one.
type Error struct {
	Status  int
	Code    string
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s (%s)", e.Message, e.Code)
}

// Unwrap maps the error code back to its sentinel
func (e *Error) Unwrap() error {
	switch e.Code {
	case apierr.CodePlayerNotFound:
		return model.ErrPlayerNotFound
	case apierr.CodeNoPlayers:
		return model.ErrNoPlayers
	case apierr.CodeAlreadyInitialized:
		return model.ErrAlreadyInitialized
	case apierr.CodeInvalidPosition:
		return model.ErrInvalidPosition
	case apierr.CodeInvalidEvent:
		return model.ErrInvalidEvent
	case apierr.CodeCatalogUnavailable:
		return model.ErrCatalogUnavailable
	case apierr.CodeTurnInProgress:
		return model.ErrTurnInProgress
	case apierr.CodeNoEligiblePlayer:
		return model.ErrNoEligiblePlayer
	case apierr.CodeNoOpenDecision:
		return model.ErrNoOpenDecision
	case apierr.CodeDecisionMismatch:
		return model.ErrDecisionMismatch
	case apierr.CodeInvalidOutcome:
		return model.ErrInvalidOutcome
	case apierr.CodePersistenceFailure:
		return model.ErrPersistence
	}
	return nil
}

// Do performs an HTTP request, encoding body and decoding the response into result
func (c *Client) Do(ctx context.Context, method, path string, body, result any) error {
	var bodyReader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		bodyReader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bodyReader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode >= 400 {
		var errResp apierr.ErrorResponse
		if err := json.Unmarshal(respBody, &errResp); err == nil && errResp.Error.Code != "" {
			return &Error{Status: resp.StatusCode, Code: errResp.Error.Code, Message: errResp.Error.Message}
		}
		return &Error{Status: resp.StatusCode, Code: strconv.Itoa(resp.StatusCode), Message: strings.TrimSpace(string(respBody))}
	}

	if result != nil && len(respBody) > 0 {
		if err := json.Unmarshal(respBody, result); err != nil {
			return fmt.Errorf("failed to parse response: %w", err)
		}
	}
	return nil
}

// IsStatus reports whether err is an API error with the given HTTP status
func IsStatus(err error, status int) bool {
	var apiErr *Error
	return errors.As(err, &apiErr) && apiErr.Status == status
}

// Health checks the server
func (c *Client) Health(ctx context.Context) (response.Health, error) {
	var result response.Health
	err := c.Do(ctx, http.MethodGet, "/api/health", nil, &result)
	return result, err
}

// ListPlayers returns every stored player sorted by id
func (c *Client) ListPlayers(ctx context.Context) ([]response.Player, error) {
	var result []response.Player
	err := c.Do(ctx, http.MethodGet, "/api/players", nil, &result)
	return result, err
}

// GetPlayer returns one stored player
func (c *Client) GetPlayer(ctx context.Context, id int) (response.Player, error) {
	var result response.Player
	err := c.Do(ctx, http.MethodGet, "/api/players/"+strconv.Itoa(id), nil, &result)
	return result, err
}

// ReplacePlayers replaces the stored player collection
func (c *Client) ReplacePlayers(ctx context.Context, players []response.Player) error {
	return c.Do(ctx, http.MethodPost, "/api/players", players, nil)
}

// UpdatePlayer overwrites the fields of a stored player
func (c *Client) UpdatePlayer(ctx context.Context, id int, update request.PlayerUpdateRequest) (response.Player, error) {
	var result response.Player
	err := c.Do(ctx, http.MethodPut, "/api/players/"+strconv.Itoa(id), update, &result)
	return result, err
}

// UpdatePosition moves a stored player
func (c *Client) UpdatePosition(ctx context.Context, id, position int) error {
	pos := float64(position)
	return c.Do(ctx, http.MethodPatch, "/api/players/"+strconv.Itoa(id)+"/position",
		request.PositionRequest{Position: &pos}, nil)
}

// DeletePlayers clears the stored players
func (c *Client) DeletePlayers(ctx context.Context) error {
	return c.Do(ctx, http.MethodDelete, "/api/players", nil, nil)
}

// ListEvents returns the stored event catalog
func (c *Client) ListEvents(ctx context.Context) ([]response.Event, error) {
	var result []response.Event
	err := c.Do(ctx, http.MethodGet, "/api/eventos", nil, &result)
	return result, err
}

// RandomEvent draws one event from the server's catalog
func (c *Client) RandomEvent(ctx context.Context) (response.Event, error) {
	var result response.Event
	err := c.Do(ctx, http.MethodGet, "/api/eventos/random", nil, &result)
	return result, err
}

// SeedEvents replaces the stored event catalog
func (c *Client) SeedEvents(ctx context.Context, events []response.Event) error {
	return c.Do(ctx, http.MethodPost, "/api/eventos", events, nil)
}

// GameState returns the current game
func (c *Client) GameState(ctx context.Context) (response.GameState, error) {
	var result response.GameState
	err := c.Do(ctx, http.MethodGet, "/api/game", nil, &result)
	return result, err
}

// StartGame creates the players for a new game
func (c *Client) StartGame(ctx context.Context, names []string) (response.GameState, error) {
	var result response.GameState
	err := c.Do(ctx, http.MethodPost, "/api/game", request.StartGameRequest{Names: names}, &result)
	return result, err
}

// Roll rolls the dice for the current player
func (c *Client) Roll(ctx context.Context) (response.Roll, error) {
	var result response.Roll
	err := c.Do(ctx, http.MethodPost, "/api/game/roll", nil, &result)
	return result, err
}

// Decide answers the open decision
func (c *Client) Decide(ctx context.Context, id, outcome string) (response.GameState, error) {
	var result response.GameState
	err := c.Do(ctx, http.MethodPost, "/api/game/decisions/"+id, request.DecisionRequest{Outcome: outcome}, &result)
	return result, err
}

// ResetGame clears the game
func (c *Client) ResetGame(ctx context.Context) error {
	return c.Do(ctx, http.MethodDelete, "/api/game", nil, nil)
}
