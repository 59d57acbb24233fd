package basehdl

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v3"

	"github.com/scottcame/piet/internal/common"
	"github.com/scottcame/piet/internal/metrics"
)

// HealthTarget is what the health check probes
type HealthTarget interface {
	Ping(ctx context.Context) error
	Count(ctx context.Context) (int64, error)
}

// SystemHandler serves the operational endpoints
type SystemHandler struct {
	target  HealthTarget
	driver  string
	timeout time.Duration
}

// NewSystemHandler creates the handler; driver is reported as the store kind
func NewSystemHandler(target HealthTarget, driver string) *SystemHandler {
	return &SystemHandler{
		target:  target,
		driver:  driver,
		timeout: 2 * time.Second,
	}
}

// HandleHealth reports whether the document store answers.
// @Router /health [get]
func (h *SystemHandler) HandleHealth(c fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.Context(), h.timeout)
	defer cancel()

	store := fiber.Map{"driver": h.driver}
	healthData := fiber.Map{
		"status":    "healthy",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"services": fiber.Map{
			"api":   "ok",
			"store": store,
		},
	}

	if err := h.target.Ping(ctx); err != nil {
		healthData["status"] = "degraded"
		store["status"] = "error"
		store["error"] = err.Error()
		return JSONResponse(c, common.StatusServiceUnavailable, fiber.Map{
			"code":    common.StatusServiceUnavailable,
			"message": common.MsgServiceUnavailable,
			"data":    healthData,
			"status":  "error",
		})
	}
	store["status"] = "ok"

	if n, err := h.target.Count(ctx); err == nil {
		store["analyses"] = n
		metrics.AnalysisDocuments.Set(float64(n))
	}

	return JSONResponse(c, common.StatusOK, fiber.Map{
		"code":    common.StatusOK,
		"message": common.MsgSuccess,
		"data":    healthData,
		"status":  "success",
	})
}
