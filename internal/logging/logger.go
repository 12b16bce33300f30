package logging

import (
	"os"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

// New builds the service logger: JSON lines in production, text otherwise.
func New(level string, production bool) *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(os.Stderr)
	if production {
		logger.SetFormatter(&logrus.JSONFormatter{TimestampFormat: time.RFC3339})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}

	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		lvl = logrus.InfoLevel
		logger.WithField("level", level).Warn("unknown LOG_LEVEL, using info")
	}
	logger.SetLevel(lvl)
	return logger
}

// RequestLogger logs one line per request once the handler chain returns.
func RequestLogger(logger logrus.FieldLogger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		status := c.Response().StatusCode()
		if err != nil {
			if fe, ok := err.(*fiber.Error); ok {
				status = fe.Code
			} else {
				status = fiber.StatusInternalServerError
			}
		}

		entry := logger.WithFields(logrus.Fields{
			"method":     c.Method(),
			"path":       c.OriginalURL(),
			"status":     status,
			"latency_ms": time.Since(start).Milliseconds(),
			"request_id": c.GetRespHeader(fiber.HeaderXRequestID),
		})
		if status >= fiber.StatusInternalServerError {
			entry.Error("request failed")
		} else {
			entry.Debug("request")
		}
		return err
	}
}
