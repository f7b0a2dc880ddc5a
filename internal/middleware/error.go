package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/medrecruit/onboard-api/internal/apperror"
)

// ErrorBody is the wire shape for failed requests. Kind is machine-stable;
// clients branch on it, not on the message.
type ErrorBody struct {
	Kind      string `json:"kind"`
	Message   string `json:"message"`
	RequestID string `json:"request_id,omitempty"`
}

// ErrorHandler turns errors collected on the gin context into the standard
// error body. Internal causes are logged, never returned.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 {
			return
		}

		requestID := c.GetString(ContextRequestID)
		err := c.Errors.Last().Err
		status := apperror.StatusOf(err)
		kind := apperror.KindOf(err)

		var evt *zerolog.Event
		if status >= 500 {
			evt = log.Error()
		} else {
			evt = log.Warn()
		}
		evt.Err(err).
			Str("request_id", requestID).
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", status).
			Msg("request failed")

		message := err.Error()
		if kind == apperror.KindInternal || kind == apperror.KindExternalService {
			message = "something went wrong"
		}

		c.JSON(status, ErrorBody{
			Kind:      string(kind),
			Message:   message,
			RequestID: requestID,
		})
	}
}
