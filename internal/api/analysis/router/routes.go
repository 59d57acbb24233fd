// Package router registers the analysis and client configuration routes.
package router

import (
	"github.com/gofiber/fiber/v3"

	analysishdl "github.com/scottcame/piet/internal/api/analysis/handler"
	apirouter "github.com/scottcame/piet/internal/api/router"
)

// Register returns the RegisterFunc for the analysis endpoints
func Register(analyses *analysishdl.AnalysisHandler, cfg *analysishdl.ConfigHandler) apirouter.RegisterFunc {
	return func(r fiber.Router) error {
		apirouter.RegisterRouteWithMiddleware(r, "", fiber.MethodGet, "/config", nil, cfg.HandleConfig)
		apirouter.RegisterRouteWithMiddleware(r, "", fiber.MethodGet, "/analyses", nil, analyses.HandleList)
		apirouter.RegisterRouteWithMiddleware(r, "", fiber.MethodGet, "/analysis", nil, analyses.HandleGet)
		apirouter.RegisterRouteWithMiddleware(r, "", fiber.MethodPost, "/analysis", nil, analyses.HandleSave)
		apirouter.RegisterRouteWithMiddleware(r, "", fiber.MethodDelete, "/analysis/:id", nil, analyses.HandleDelete)
		return nil
	}
}
