package main

import (
	"errors"
	"strings"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/adaptor"
	"github.com/gofiber/fiber/v3/middleware/cors"
	"github.com/gofiber/fiber/v3/middleware/limiter"
	"github.com/gofiber/fiber/v3/middleware/recover"
	"github.com/gofiber/fiber/v3/middleware/requestid"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/scottcame/piet/config"
	analysishdl "github.com/scottcame/piet/internal/api/analysis/handler"
	analysisrouter "github.com/scottcame/piet/internal/api/analysis/router"
	analysissvc "github.com/scottcame/piet/internal/api/analysis/service"
	basehdl "github.com/scottcame/piet/internal/api/base/handler"
	apirouter "github.com/scottcame/piet/internal/api/router"
	"github.com/scottcame/piet/internal/common"
	"github.com/scottcame/piet/internal/logger"
	"github.com/scottcame/piet/internal/metrics"
)

// operational paths skipped by the limiter and the request metrics
func isSystemPath(path string) bool {
	return path == "/health" || path == "/metrics"
}

// statusOf returns the status an error returned from the chain is rendered with
func statusOf(c fiber.Ctx, err error) int {
	if err == nil {
		return c.Response().StatusCode()
	}
	var customErr *common.Error
	if errors.As(err, &customErr) {
		return customErr.StatusCode
	}
	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		return fiberErr.Code
	}
	return fiber.StatusInternalServerError
}

// InitFiberApp creates the Fiber app with its middleware stack and routes
func InitFiberApp(cfg *config.Configuration, service *analysissvc.AnalysisService) (*fiber.App, error) {
	app := fiber.New(fiber.Config{
		AppName:       "Piet",
		ServerHeader:  "Piet",
		StrictRouting: true,
		CaseSensitive: true,
		UnescapePath:  true,

		BodyLimit:       cfg.BodyLimitMB * 1024 * 1024,
		ReadBufferSize:  8192,
		WriteBufferSize: 4096,

		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,

		ErrorHandler: basehdl.ErrorHandler,
	})

	// =========================================
	// MIDDLEWARE STACK
	// =========================================

	// 1. Request ID
	app.Use(requestid.New(requestid.Config{
		Header:    logger.RequestIDHeader,
		Generator: uuid.NewString,
	}))

	// 2. Request metrics, labelled with the matched route
	app.Use(func(c fiber.Ctx) error {
		if isSystemPath(c.Path()) {
			return c.Next()
		}
		start := time.Now()
		err := c.Next()
		metrics.RecordHTTPRequest(c.Method(), c.Route().Path, statusOf(c, err), time.Since(start))
		return err
	})

	// 3. CORS, before anything that can reject a preflight
	var allowOrigins []string
	allowCredentials := cfg.CORS_AllowCredentials
	if cfg.CORS_Origins == "*" {
		allowOrigins = []string{"*"}
		// wildcard origins cannot be combined with credentials
		allowCredentials = false
	} else {
		for _, origin := range strings.Split(cfg.CORS_Origins, ",") {
			if origin = strings.TrimSpace(origin); origin != "" {
				allowOrigins = append(allowOrigins, origin)
			}
		}
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins:     allowOrigins,
		AllowMethods:     []string{"GET", "POST", "DELETE", "HEAD", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "X-Request-ID", "X-Requested-With"},
		AllowCredentials: allowCredentials,
		ExposeHeaders:    []string{"Content-Length", "X-Request-ID"},
		MaxAge:           24 * 60 * 60,
	}))

	// 4. Security headers
	app.Use(func(c fiber.Ctx) error {
		c.Set("X-Content-Type-Options", "nosniff")
		c.Set("X-Frame-Options", "DENY")
		c.Set("Referrer-Policy", "strict-origin-when-cross-origin")
		if cfg.EnableTLS {
			c.Set("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
		}
		return c.Next()
	})

	// 5. Rate limiting per IP
	log := logger.GetAppLogger()
	if cfg.RateLimit_Enabled && cfg.RateLimit_Max > 0 {
		app.Use(limiter.New(limiter.Config{
			Max:        cfg.RateLimit_Max,
			Expiration: time.Duration(cfg.RateLimit_Window) * time.Second,
			KeyGenerator: func(c fiber.Ctx) string {
				return c.IP()
			},
			LimitReached: func(c fiber.Ctx) error {
				return basehdl.JSONResponse(c, common.StatusTooManyRequests, fiber.Map{
					"code":    common.ErrCodeBusinessOperation.Code,
					"message": common.MsgTooManyRequests,
					"status":  "error",
				})
			},
			Next: func(c fiber.Ctx) bool {
				return isSystemPath(c.Path()) || c.Method() == fiber.MethodOptions
			},
		}))
		log.Infof("Rate limiting enabled: %d requests per %d seconds", cfg.RateLimit_Max, cfg.RateLimit_Window)
	} else {
		log.Info("Rate limiting disabled")
	}

	// 6. Recover
	app.Use(recover.New(recover.Config{
		EnableStackTrace: true,
		StackTraceHandler: func(c fiber.Ctx, e interface{}) {
			logger.ErrorWithRequest(c).WithField("panic", e).Error("Panic recovered")
		},
	}))

	// =========================================
	// ROUTES
	// =========================================

	system := basehdl.NewSystemHandler(service, cfg.StoreDriver)
	app.Get("/health", system.HandleHealth)
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	analyses := analysishdl.NewAnalysisHandler(service)
	uiConfig := analysishdl.NewConfigHandler(cfg.UI())
	if err := apirouter.SetupRoutes(app, analysisrouter.Register(analyses, uiConfig)); err != nil {
		return nil, err
	}

	return app, nil
}
