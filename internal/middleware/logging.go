package middleware

import (
	"crypto/rand"
	"encoding/hex"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const TraceIDHeader = "X-Trace-ID"

// LoggingMiddleware logs every request with a trace ID attached. The trace
// ID is taken from the incoming header when present so a frontend can
// correlate its own logs, and echoed back on the response.
func LoggingMiddleware() fiber.Handler {
	return func(c fiber.Ctx) error {
		start := time.Now()
		method := c.Method()
		path := c.Path()

		traceID := c.Get(TraceIDHeader)
		if traceID == "" {
			traceID = generateTraceID()
		}

		logger := log.With().Str("trace_id", traceID).Logger()
		c.SetContext(logger.WithContext(c.Context()))
		c.Set(TraceIDHeader, traceID)

		err := c.Next()

		status := c.Response().StatusCode()
		var event *zerolog.Event
		if status >= 400 {
			event = logger.Error()
		} else {
			event = logger.Info()
		}
		event.
			Str("method", method).
			Str("path", path).
			Int("status", status).
			Dur("duration", time.Since(start)).
			Str("client_ip", c.IP()).
			Msg("HTTP request")

		return err
	}
}

func generateTraceID() string {
	b := make([]byte, 16)
	rand.Read(b)
	return hex.EncodeToString(b)
}
