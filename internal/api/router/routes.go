// Package router collects the routes of every domain onto the Fiber app.
package router

import (
	"github.com/gofiber/fiber/v3"
)

// RegisterFunc registers the routes of one domain
type RegisterFunc func(r fiber.Router) error

// RegisterRouteWithMiddleware registers handler on prefix+path. Middlewares are attached with
// Use on a group, so they only run for routes of that group.
func RegisterRouteWithMiddleware(router fiber.Router, prefix string, method string, path string, middlewares []fiber.Handler, handler fiber.Handler) {
	routeGroup := router
	if prefix != "" || len(middlewares) > 0 {
		routeGroup = router.Group(prefix)
	}
	for _, mw := range middlewares {
		routeGroup.Use(mw)
	}

	switch method {
	case fiber.MethodGet:
		routeGroup.Get(path, handler)
	case fiber.MethodPost:
		routeGroup.Post(path, handler)
	case fiber.MethodPut:
		routeGroup.Put(path, handler)
	case fiber.MethodDelete:
		routeGroup.Delete(path, handler)
	}
}

// SetupRoutes runs each domain's RegisterFunc against the root of app.
// The paths are fixed by the browser client, so there is no version prefix.
func SetupRoutes(app *fiber.App, regs ...RegisterFunc) error {
	for _, reg := range regs {
		if err := reg(app); err != nil {
			return err
		}
	}
	return nil
}
