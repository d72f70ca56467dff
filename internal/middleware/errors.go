package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/persistorai/actorweb/internal/httputil"
	"github.com/persistorai/actorweb/internal/metrics"
)

// respondError counts the rejection by code and writes the standard error body.
func respondError(c *gin.Context, code int, errCode, message string) {
	metrics.ErrorsTotal.WithLabelValues(errCode).Inc()
	httputil.RespondError(c, code, errCode, message)
}
