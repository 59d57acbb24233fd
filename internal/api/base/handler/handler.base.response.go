// Package basehdl holds the request parsing and response helpers shared by the HTTP handlers.
package basehdl

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"

	"github.com/gofiber/fiber/v3"

	"github.com/scottcame/piet/internal/common"
	"github.com/scottcame/piet/internal/global"
	"github.com/scottcame/piet/internal/logger"
)

// JSONResponse writes data as JSON with Content-Type: application/json; charset=utf-8
func JSONResponse(c fiber.Ctx, statusCode int, data interface{}) error {
	c.Set("Content-Type", "application/json; charset=utf-8")
	return c.Status(statusCode).JSON(data)
}

// EmptyResponse answers with statusCode and no body
func EmptyResponse(c fiber.Ctx, statusCode int) error {
	return c.Status(statusCode).Send(nil)
}

// ParseRequestBody decodes the JSON body into input and validates it.
// The body must hold exactly one JSON object; null, arrays and trailing data are malformed.
// Numbers are decoded with UseNumber so ids and counters keep their precision.
func ParseRequestBody(c fiber.Ctx, input interface{}) error {
	body := bytes.TrimSpace(c.Body())
	if len(body) == 0 {
		return common.Wrap(common.ErrMalformedPayload, errors.New("empty request body"))
	}
	if body[0] != '{' {
		return common.Wrap(common.ErrMalformedPayload, errors.New("request body must be a JSON object"))
	}

	decoder := json.NewDecoder(bytes.NewReader(body))
	decoder.UseNumber()
	if err := decoder.Decode(input); err != nil {
		return common.Wrap(common.ErrMalformedPayload, err)
	}
	if err := decoder.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return common.Wrap(common.ErrMalformedPayload, errors.New("unexpected data after JSON object"))
	}
	return ValidateInput(input)
}

// ValidateInput runs the struct validation rules of input
func ValidateInput(input interface{}) error {
	global.InitValidator()
	if err := global.Validate.Struct(input); err != nil {
		return common.NewError(common.ErrCodeValidationInput, common.MsgValidationError, common.StatusBadRequest, err)
	}
	return nil
}

// errorBody is the JSON envelope of every error response
func errorBody(code, message string, details interface{}) fiber.Map {
	body := fiber.Map{
		"code":    code,
		"message": message,
		"status":  "error",
	}
	if details != nil {
		if err, ok := details.(error); ok {
			details = err.Error()
		}
		body["details"] = details
	}
	return body
}

// WriteError renders err as the error envelope with the status of its kind.
// Errors that are not *common.Error become 500 SYS_001.
func WriteError(c fiber.Ctx, err error) error {
	var customErr *common.Error
	if errors.As(err, &customErr) {
		if customErr.StatusCode >= common.StatusInternalServerError {
			logger.ErrorWithRequest(c).WithError(err).WithField("code", customErr.Code.Code).Error("Request failed")
		}
		return JSONResponse(c, customErr.StatusCode, errorBody(customErr.Code.Code, customErr.Message, customErr.Details))
	}

	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		code := common.ErrCodeInternalServer.Code
		switch fiberErr.Code {
		case fiber.StatusBadRequest, fiber.StatusRequestEntityTooLarge, fiber.StatusUnprocessableEntity:
			code = common.ErrCodeValidationInput.Code
		case fiber.StatusNotFound, fiber.StatusMethodNotAllowed:
			code = common.ErrCodeValidationInput.Code
		case fiber.StatusTooManyRequests:
			code = common.ErrCodeBusinessOperation.Code
		}
		return JSONResponse(c, fiberErr.Code, errorBody(code, fiberErr.Message, nil))
	}

	logger.ErrorWithRequest(c).WithError(err).Error("Unhandled request error")
	return JSONResponse(c, common.StatusInternalServerError, errorBody(common.ErrCodeInternalServer.Code, common.MsgInternalError, nil))
}

// ErrorHandler is the fiber.Config ErrorHandler of the server
func ErrorHandler(c fiber.Ctx, err error) error {
	return WriteError(c, err)
}
