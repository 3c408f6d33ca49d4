package logger

import (
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
)

const headerRequestID = echo.HeaderXRequestID

// EchoMiddleware attaches a request-scoped logger to the request context
// and logs each completed request with status, latency and actor.
func EchoMiddleware(logger zerolog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			req := c.Request()

			reqID := req.Header.Get(headerRequestID)
			if reqID == "" {
				reqID = uuid.NewString()
			}

			child := logger.With().
				Str(FieldRequestID, reqID).
				Str(FieldMethod, req.Method).
				Str(FieldPath, req.URL.Path).
				Str(FieldClientIP, c.RealIP()).
				Logger()

			c.Response().Header().Set(headerRequestID, reqID)
			c.SetRequest(req.WithContext(WithLogger(req.Context(), child)))

			err := next(c)
			if err != nil {
				// Let the error handler write the response so the logged status is final.
				c.Error(err)
			}

			status := c.Response().Status
			evt := child.Info()
			if status >= 500 {
				evt = child.Error().Err(err)
			}
			evt = evt.Int(FieldStatus, status).
				Float64(FieldLatency, float64(time.Since(start).Milliseconds()))

			if userID, ok := c.Get(FieldUserID).(string); ok {
				evt = evt.Str(FieldUserID, userID)
			}
			if scheme, ok := c.Get(FieldAuthScheme).(string); ok {
				evt = evt.Str(FieldAuthScheme, scheme)
			}

			evt.Msg("request completed")
			return nil
		}
	}
}
