package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/persistorai/actorweb/internal/httputil"
	"github.com/persistorai/actorweb/internal/metrics"
	"github.com/persistorai/actorweb/internal/models"
	"github.com/persistorai/actorweb/internal/session"
)

// Error code constants for standardized API responses.
const (
	ErrCodeInvalidRequest  = "invalid_request"
	ErrCodeNotFound        = "not_found"
	ErrCodeInternalError   = "internal_error"
	ErrCodeRateLimited     = "rate_limited"
	ErrCodeValidationError = "validation_error"
	ErrCodeSessionLimit    = "session_limit"
	ErrCodeSessionClosed   = "session_closed"
	ErrCodeTimeout         = "timeout"
)

// respondError writes a standardized JSON error response, pulling the request
// ID from the gin context (set by the request ID middleware).
func respondError(c *gin.Context, status int, code, message string) {
	metrics.ErrorsTotal.WithLabelValues(code).Inc()
	httputil.RespondError(c, status, code, message)
}

// respondServiceError maps sentinel errors to HTTP responses and logs the rest.
func respondServiceError(c *gin.Context, log *logrus.Logger, action string, err error) {
	switch {
	case errors.Is(err, models.ErrEntityNotFound):
		respondError(c, http.StatusNotFound, ErrCodeNotFound, "title not found")
	case errors.Is(err, models.ErrSessionNotFound):
		respondError(c, http.StatusNotFound, ErrCodeNotFound, "session not found")
	case errors.Is(err, models.ErrNodeNotFound):
		respondError(c, http.StatusNotFound, ErrCodeNotFound, "node not found")
	case errors.Is(err, models.ErrMissingKey),
		errors.Is(err, models.ErrInvalidEvent),
		errors.Is(err, models.ErrMissingCast),
		errors.Is(err, models.ErrMissingID),
		errors.Is(err, models.ErrTooLong):
		respondError(c, http.StatusBadRequest, ErrCodeValidationError, err.Error())
	case errors.Is(err, models.ErrSessionLimit):
		respondError(c, http.StatusServiceUnavailable, ErrCodeSessionLimit, "session limit reached")
	case errors.Is(err, session.ErrClosed):
		respondError(c, http.StatusGone, ErrCodeSessionClosed, "session closed")
	case errors.Is(err, context.DeadlineExceeded):
		respondError(c, http.StatusGatewayTimeout, ErrCodeTimeout, "request timed out")
	default:
		log.WithError(err).WithField("request_id", c.GetString("request_id")).Error(action)
		respondError(c, http.StatusInternalServerError, ErrCodeInternalError, "internal server error")
	}
}
