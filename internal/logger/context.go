package logger

import (
	"github.com/gofiber/fiber/v3"
	"github.com/sirupsen/logrus"
)

// RequestIDHeader carries the per-request trace id
const RequestIDHeader = "X-Request-ID"

// RequestID returns the id set by the requestid middleware, falling back to the headers
func RequestID(c fiber.Ctx) string {
	if rid, ok := c.Locals("requestid").(string); ok && rid != "" {
		return rid
	}
	if rid := c.Get(RequestIDHeader); rid != "" {
		return rid
	}
	return c.GetRespHeader(RequestIDHeader)
}

// WithRequest returns an app logger entry carrying request id, method, path and ip
func WithRequest(c fiber.Ctx) *logrus.Entry {
	return requestEntry(GetAppLogger(), c)
}

// ErrorWithRequest is WithRequest on the error logger, for failures answered with a 5xx
func ErrorWithRequest(c fiber.Ctx) *logrus.Entry {
	return requestEntry(GetErrorLogger(), c)
}

func requestEntry(l *logrus.Logger, c fiber.Ctx) *logrus.Entry {
	entry := l.WithFields(logrus.Fields{
		"method": c.Method(),
		"path":   c.Path(),
		"ip":     c.IP(),
	})
	if requestID := RequestID(c); requestID != "" {
		entry = entry.WithField("request_id", requestID)
	}
	return entry
}

// WithModule returns an app logger entry tagged with a module name (e.g. "analysis", "database")
func WithModule(module string) *logrus.Entry {
	return GetAppLogger().WithField("module", module)
}

// WithModuleAndCollection tags an entry with module and MongoDB collection
func WithModuleAndCollection(module, collection string) *logrus.Entry {
	return GetAppLogger().WithFields(logrus.Fields{
		"module":     module,
		"collection": collection,
	})
}
