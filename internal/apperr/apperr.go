package apperr

import (
	"fmt"

	"github.com/gofiber/fiber/v2"
)

const (
	CodeInvalidRequest = "INVALID_REQUEST"
	CodeInternalError  = "INTERNAL_ERROR"
)

var (
	// ErrInvalidReq is returned when request parameters fail validation.
	ErrInvalidReq = New(fiber.StatusBadRequest, CodeInvalidRequest, "invalid request: some or all request parameters are invalid")

	// ErrInternalError is returned when an internal error occurs.
	ErrInternalError = New(fiber.StatusInternalServerError, CodeInternalError, "internal server error occurred")
)

type Extras map[string]interface{}

// Error is rendered as {"code", "message", ...extras} by the server's error handler.
type Error struct {
	StatusCode int
	ErrorCode  string
	Message    string
	Extras     *Extras
}

func New(statusCode int, errorCode string, message string) *Error {
	return &Error{
		StatusCode: statusCode,
		ErrorCode:  errorCode,
		Message:    message,
	}
}

func (e Error) Msg(format string, parts ...interface{}) *Error {
	e.Message = fmt.Sprintf(format, parts...)
	return &e
}

func (e Error) WithExtras(extras Extras) *Error {
	e.Extras = &extras
	return &e
}

func NewInvalidViolations(violations interface{}) *Error {
	return ErrInvalidReq.WithExtras(Extras{
		"violations": violations,
	})
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.ErrorCode, e.Message)
}
