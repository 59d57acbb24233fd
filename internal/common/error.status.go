// Package common holds the error kinds and HTTP status constants shared by the store, service and HTTP layers.
package common

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/mongo"
)

// HTTP Status Code Constants
const (
	StatusOK        = 200
	StatusNoContent = 204

	StatusBadRequest      = 400
	StatusNotFound        = 404
	StatusConflict        = 409
	StatusTooManyRequests = 429

	StatusInternalServerError = 500
	StatusServiceUnavailable  = 503
)

// Response Messages
const (
	MsgSuccess = "Success"

	MsgBadRequest         = "Bad request"
	MsgNotFound           = "Resource not found"
	MsgTooManyRequests    = "Too many requests, please retry later"
	MsgInternalError      = "Internal server error"
	MsgServiceUnavailable = "Service unavailable"

	MsgValidationError  = "Invalid data"
	MsgMalformedPayload = "Malformed request payload"
	MsgStoreUnavailable = "Document store unavailable"
	MsgStoreWrite       = "Document store write failed"
	MsgDuplicate        = "Document already exists"
)

// ErrorCode is the machine readable part of an Error.
type ErrorCode struct {
	Code        string // e.g. DB_001
	Category    string // e.g. Database
	SubCategory string // e.g. Connection
	Description string
}

var (
	// System Errors (SYS_xxx)
	ErrCodeInternalServer = ErrorCode{
		Code:        "SYS_001",
		Category:    "System",
		SubCategory: "Internal",
		Description: "Internal system error",
	}

	// Validation Errors (VAL_xxx)
	ErrCodeValidationInput = ErrorCode{
		Code:        "VAL_001",
		Category:    "Validation",
		SubCategory: "Input",
		Description: "Invalid input data",
	}

	ErrCodeValidationFormat = ErrorCode{
		Code:        "VAL_002",
		Category:    "Validation",
		SubCategory: "Format",
		Description: "Payload could not be decoded",
	}

	// Database Errors (DB_xxx)
	ErrCodeDatabase = ErrorCode{
		Code:        "DB",
		Category:    "Database",
		SubCategory: "General",
		Description: "General database error",
	}

	ErrCodeDatabaseConnection = ErrorCode{
		Code:        "DB_001",
		Category:    "Database",
		SubCategory: "Connection",
		Description: "Database connection error",
	}

	ErrCodeDatabaseQuery = ErrorCode{
		Code:        "DB_002",
		Category:    "Database",
		SubCategory: "Query",
		Description: "Database query error",
	}

	// Rate limiting (BIZ_xxx)
	ErrCodeBusinessOperation = ErrorCode{
		Code:        "BIZ_002",
		Category:    "Business",
		SubCategory: "Operation",
		Description: "Operation rejected",
	}
)

// Error is the structured error propagated from the store up to the HTTP surface.
type Error struct {
	Code       ErrorCode // detailed code
	Message    string    // human readable message
	StatusCode int       // HTTP status the surface answers with
	Details    any       // optional extra information, usually the cause
}

// Error returns the message of the error
func (e *Error) Error() string {
	return e.Message
}

// Unwrap exposes the cause kept in Details so errors.Is/As can reach it.
func (e *Error) Unwrap() error {
	if cause, ok := e.Details.(error); ok {
		return cause
	}
	return nil
}

// Is matches two *Error values on code and message (supports errors.Is).
func (e *Error) Is(target error) bool {
	targetErr, ok := target.(*Error)
	if !ok || targetErr == nil {
		return false
	}
	return e.Code.Code == targetErr.Code.Code && e.Message == targetErr.Message
}

// NewError builds a new error with every field populated
func NewError(code ErrorCode, message string, statusCode int, details any) error {
	return &Error{
		Code:       code,
		Message:    message,
		StatusCode: statusCode,
		Details:    details,
	}
}

// Wrap returns a copy of kind carrying cause in Details, keeping errors.Is(err, kind) true.
func Wrap(kind error, cause error) error {
	var base *Error
	if !errors.As(kind, &base) {
		return kind
	}
	return &Error{
		Code:       base.Code,
		Message:    base.Message,
		StatusCode: base.StatusCode,
		Details:    cause,
	}
}

// Error kinds of the analysis service
var (
	ErrNotFound         = NewError(ErrCodeDatabaseQuery, MsgNotFound, StatusNotFound, nil)
	ErrStoreUnavailable = NewError(ErrCodeDatabaseConnection, MsgStoreUnavailable, StatusServiceUnavailable, nil)
	ErrMalformedPayload = NewError(ErrCodeValidationFormat, MsgMalformedPayload, StatusBadRequest, nil)
	ErrInvalidInput     = NewError(ErrCodeValidationInput, MsgValidationError, StatusBadRequest, nil)
	ErrStoreWrite       = NewError(ErrCodeDatabaseQuery, MsgStoreWrite, StatusInternalServerError, nil)
	ErrDuplicate        = NewError(ErrCodeDatabaseQuery, MsgDuplicate, StatusConflict, nil)
	ErrInternal         = NewError(ErrCodeInternalServer, MsgInternalError, StatusInternalServerError, nil)
)

// ConvertMongoError maps a driver error onto one of the error kinds above.
func ConvertMongoError(err error) error {
	if err == nil {
		return nil
	}

	// Already converted
	var known *Error
	if errors.As(err, &known) {
		return err
	}

	if errors.Is(err, mongo.ErrNoDocuments) {
		return ErrNotFound
	}
	if mongo.IsDuplicateKeyError(err) {
		return Wrap(ErrDuplicate, err)
	}
	if mongo.IsNetworkError(err) || mongo.IsTimeout(err) ||
		errors.Is(err, context.DeadlineExceeded) || errors.Is(err, mongo.ErrClientDisconnected) {
		return Wrap(ErrStoreUnavailable, err)
	}

	var srvErr mongo.ServerError
	if errors.As(err, &srvErr) {
		// 13 Unauthorized, 18 AuthenticationFailed, 91 ShutdownInProgress,
		// 189 PrimarySteppedDown: the store cannot serve us right now.
		for _, code := range []int{13, 18, 91, 189} {
			if srvErr.HasErrorCode(code) {
				return Wrap(ErrStoreUnavailable, err)
			}
		}
		return Wrap(ErrStoreWrite, err)
	}

	return NewError(ErrCodeDatabase, MsgInternalError, StatusInternalServerError, err)
}
