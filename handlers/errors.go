package handlers

import (
	"net/http"

	"github.com/danielgtaylor/huma/v2"
)

// ErrorModel is the body of every error response: {"error": "..."}.
// Only the fixed message is rendered, wrapped errors never reach the client.
type ErrorModel struct {
	Status  int    `json:"-"`
	Message string `json:"error" example:"Person not found"`
}

func (e *ErrorModel) Error() string  { return e.Message }
func (e *ErrorModel) GetStatus() int { return e.Status }

// NewError replaces [huma.NewError] so that huma's own failures (validation,
// unparsable parameters or bodies) share the same body. Schema validation is
// reported as 400.
func NewError(status int, msg string, _ ...error) huma.StatusError {
	if status == http.StatusUnprocessableEntity {
		status = http.StatusBadRequest
	}
	return &ErrorModel{Status: status, Message: msg}
}

func init() { huma.NewError = NewError } //nolint: gochecknoinits // huma error hook
