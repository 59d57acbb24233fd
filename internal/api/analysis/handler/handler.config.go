package analysishdl

import (
	"github.com/gofiber/fiber/v3"

	"github.com/scottcame/piet/config"
	basehdl "github.com/scottcame/piet/internal/api/base/handler"
	"github.com/scottcame/piet/internal/common"
)

// ConfigHandler serves the client configuration read at startup
type ConfigHandler struct {
	ui config.UIConfiguration
}

// NewConfigHandler copies ui; later changes to the source do not show
func NewConfigHandler(ui config.UIConfiguration) *ConfigHandler {
	return &ConfigHandler{ui: ui}
}

// HandleConfig returns the client configuration
// @Router /config [get]
func (h *ConfigHandler) HandleConfig(c fiber.Ctx) error {
	return basehdl.JSONResponse(c, common.StatusOK, h.ui)
}
