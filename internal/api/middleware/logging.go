package middleware

import (
	"strconv"
	"time"

	"github.com/amaumene/cinesync/internal/metrics"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

// Logging logs every request and records its latency by route
func Logging(logger *logrus.Logger, m *metrics.Metrics) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()

		// Call next handler; errors go through the app error handler first
		chainErr := c.Next()
		if chainErr != nil {
			if err := c.App().ErrorHandler(c, chainErr); err != nil {
				_ = c.SendStatus(fiber.StatusInternalServerError)
			}
		}

		status := c.Response().StatusCode()
		duration := time.Since(start)
		route := c.Route().Path

		m.HTTPRequests.WithLabelValues(c.Method(), route, strconv.Itoa(status)).Inc()
		m.HTTPDuration.WithLabelValues(c.Method(), route).Observe(duration.Seconds())

		// Log request
		entry := logger.WithFields(logrus.Fields{
			"method":      c.Method(),
			"path":        c.Path(),
			"status":      status,
			"duration_ms": duration.Milliseconds(),
			"remote_addr": c.IP(),
		})
		if status >= fiber.StatusInternalServerError {
			entry.Warn("HTTP request")
		} else {
			entry.Info("HTTP request")
		}

		return nil
	}
}
