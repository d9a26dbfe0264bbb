package handler

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v3"

	"freelance-hub/internal/pkg/response"
)

// Check pings one dependency. A nil error means healthy.
type Check func(ctx context.Context) error

type healthStatus struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

type HealthHandler struct {
	checks  map[string]Check
	timeout time.Duration
}

func NewHealthHandler(checks map[string]Check) *HealthHandler {
	return &HealthHandler{checks: checks, timeout: 2 * time.Second}
}

func (h *HealthHandler) RegisterRoutes(r fiber.Router) {
	if r == nil {
		return
	}
	r.Get("/health", h.Health)
}

func (h *HealthHandler) Health(c fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.Context(), h.timeout)
	defer cancel()

	out := healthStatus{Status: "ok"}
	if len(h.checks) > 0 {
		out.Checks = make(map[string]string, len(h.checks))
	}
	for name, check := range h.checks {
		if err := check(ctx); err != nil {
			out.Status = "degraded"
			out.Checks[name] = err.Error()
			continue
		}
		out.Checks[name] = "ok"
	}

	if out.Status != "ok" {
		return response.Error(c, fiber.StatusServiceUnavailable, response.MessageServiceUnavailable, out)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, out)
}
