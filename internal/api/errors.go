package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"chatguard/internal/service"
)

// Messages returned to clients.
const (
	msgNoMessage = "No message provided"
	msgBadBody   = "invalid request body"
)

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Error string `json:"error"`
}

// MapServiceError maps pipeline errors to an HTTP status, a message and the
// metrics kind label.
func MapServiceError(err error) (status int, message, kind string) {
	switch {
	case errors.Is(err, service.ErrEmptyInput):
		return http.StatusBadRequest, msgNoMessage, "empty_input"
	case errors.Is(err, service.ErrInferenceFailure):
		// The cause is returned as-is to help diagnose bad artifacts.
		return http.StatusInternalServerError, err.Error(), "inference_failure"
	default:
		return http.StatusInternalServerError, err.Error(), "internal"
	}
}

func respondError(c *gin.Context, status int, message string) {
	c.JSON(status, ErrorResponse{Error: message})
}
