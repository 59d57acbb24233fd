package global

import (
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"
)

// Store drivers accepted by the store_driver rule
const (
	StoreDriverMongoDB = "mongodb"
	StoreDriverMemory  = "memory"
)

// InitValidator creates Validate and registers the custom rules. Safe to call more than once.
func InitValidator() {
	validatorOnce.Do(func() {
		v := validator.New()

		_ = v.RegisterValidation("no_xss", validateNoXSS)
		_ = v.RegisterValidation("log_level", validateLogLevel)
		_ = v.RegisterValidation("store_driver", validateStoreDriver)

		Validate = v
	})
}

// validateNoXSS rejects markup that would execute when the client renders the value
func validateNoXSS(fl validator.FieldLevel) bool {
	value := strings.ToLower(fl.Field().String())
	dangerousPatterns := []string{
		"<script",
		"javascript:",
		"onerror=",
		"onload=",
		"onclick=",
		"onmouseover=",
		"eval(",
		"document.cookie",
		"document.write",
		"innerhtml",
		"<iframe",
		"<object",
		"<embed",
	}

	for _, pattern := range dangerousPatterns {
		if strings.Contains(value, pattern) {
			return false
		}
	}
	return true
}

// validateLogLevel accepts any level logrus can parse (trace .. panic)
func validateLogLevel(fl validator.FieldLevel) bool {
	_, err := logrus.ParseLevel(fl.Field().String())
	return err == nil
}

// validateStoreDriver accepts the document store backends the server can wire
func validateStoreDriver(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case StoreDriverMongoDB, StoreDriverMemory:
		return true
	}
	return false
}
