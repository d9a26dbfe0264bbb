package middleware

import (
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"

	"freelance-hub/internal/pkg/logger"
)

const HeaderRequestID = "X-Request-ID"

type AccessLogMiddleware struct {
	logger logger.Logger
}

func NewAccessLogMiddleware(l logger.Logger) *AccessLogMiddleware {
	return &AccessLogMiddleware{logger: logger.OrNop(l)}
}

func (m *AccessLogMiddleware) Middleware() fiber.Handler {
	return func(c fiber.Ctx) error {
		start := time.Now()

		rid := c.Get(HeaderRequestID)
		if rid == "" {
			rid = uuid.NewString()
		}
		c.Set(HeaderRequestID, rid)

		err := c.Next()

		status := c.Response().StatusCode()
		fields := logger.Fields{
			"request_id": rid,
			"ip":         c.IP(),
			"method":     c.Method(),
			"path":       c.OriginalURL(),
			"status":     status,
			"latency_ms": time.Since(start).Milliseconds(),
			"req_bytes":  c.Request().Header.ContentLength(),
			"resp_bytes": len(c.Response().Body()),
			"user_agent": c.Get("User-Agent"),
		}

		switch {
		case err != nil || status >= fiber.StatusInternalServerError:
			m.logger.Warn("http access", fields)
		default:
			m.logger.Info("http access", fields)
		}
		return err
	}
}
