package apierr

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/mcoot/aseguradoss/internal/model"
)

// APIError represents an API error response
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ErrorResponse wraps an APIError
type ErrorResponse struct {
	Error APIError `json:"error"`
}

// Common error codes
const (
	CodeInvalidRequest     = "INVALID_REQUEST"
	CodeInvalidPosition    = "INVALID_POSITION"
	CodeInvalidEvent       = "INVALID_EVENT"
	CodePlayerNotFound     = "PLAYER_NOT_FOUND"
	CodeNoPlayers          = "NO_PLAYERS"
	CodeCatalogUnavailable = "CATALOG_UNAVAILABLE"
	CodeTurnInProgress     = "TURN_IN_PROGRESS"
	CodeNoEligiblePlayer   = "NO_ELIGIBLE_PLAYER"
	CodeNoOpenDecision     = "NO_OPEN_DECISION"
	CodeDecisionMismatch   = "DECISION_MISMATCH"
	CodeInvalidOutcome     = "INVALID_OUTCOME"
	CodeAlreadyInitialized = "ALREADY_INITIALIZED"
	CodePersistenceFailure = "PERSISTENCE_FAILURE"
	CodeInternalError      = "INTERNAL_ERROR"
)

// httpError combines an HTTP status code with an APIError
type httpError struct {
	status   int
	apiError APIError
}

// Error implements error interface
func (e *httpError) Error() string {
	return e.apiError.Message
}

// WriteError writes an error response to the response writer
func WriteError(w http.ResponseWriter, err error) {
	he := toHTTPError(err)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(he.status)
	_ = json.NewEncoder(w).Encode(ErrorResponse{Error: he.apiError})
}

// Status returns the HTTP status an error maps to
func Status(err error) int {
	return toHTTPError(err).status
}

// toHTTPError converts an error to an httpError
func toHTTPError(err error) *httpError {
	var he *httpError
	if errors.As(err, &he) {
		return he
	}

	switch {
	case errors.Is(err, model.ErrPlayerNotFound):
		return &httpError{http.StatusNotFound, APIError{CodePlayerNotFound, "Jugador no encontrado"}}
	case errors.Is(err, model.ErrNoPlayers):
		return &httpError{http.StatusConflict, APIError{CodeNoPlayers, "No hay jugadores en la partida"}}
	case errors.Is(err, model.ErrAlreadyInitialized):
		return &httpError{http.StatusConflict, APIError{CodeAlreadyInitialized, "La partida ya tiene jugadores"}}
	case errors.Is(err, model.ErrInvalidPosition):
		return &httpError{http.StatusBadRequest, APIError{CodeInvalidPosition, "Posición inválida"}}
	case errors.Is(err, model.ErrInvalidEvent):
		return &httpError{http.StatusBadRequest, APIError{CodeInvalidEvent, err.Error()}}
	case errors.Is(err, model.ErrCatalogUnavailable):
		return &httpError{http.StatusNotFound, APIError{CodeCatalogUnavailable, "No hay eventos disponibles"}}
	case errors.Is(err, model.ErrTurnInProgress):
		return &httpError{http.StatusConflict, APIError{CodeTurnInProgress, "Ya hay un turno en curso"}}
	case errors.Is(err, model.ErrNoEligiblePlayer):
		return &httpError{http.StatusConflict, APIError{CodeNoEligiblePlayer, "Todos los jugadores pierden el turno"}}
	case errors.Is(err, model.ErrNoOpenDecision):
		return &httpError{http.StatusConflict, APIError{CodeNoOpenDecision, "No hay ninguna decisión abierta"}}
	case errors.Is(err, model.ErrDecisionMismatch):
		return &httpError{http.StatusConflict, APIError{CodeDecisionMismatch, "La decisión no es la abierta"}}
	case errors.Is(err, model.ErrInvalidOutcome):
		return &httpError{http.StatusBadRequest, APIError{CodeInvalidOutcome, "Respuesta no válida para esta decisión"}}
	case errors.Is(err, model.ErrPersistence):
		return &httpError{http.StatusServiceUnavailable, APIError{CodePersistenceFailure, "No se pudo guardar"}}

	default:
		return &httpError{http.StatusInternalServerError, APIError{CodeInternalError, "Internal server error"}}
	}
}

// NewInvalidRequestError creates an invalid request error
func NewInvalidRequestError(message string) error {
	return &httpError{http.StatusBadRequest, APIError{CodeInvalidRequest, message}}
}

// NewInternalError creates an internal server error
func NewInternalError() error {
	return &httpError{http.StatusInternalServerError, APIError{CodeInternalError, "Internal server error"}}
}
