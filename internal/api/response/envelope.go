// Package response defines the JSON envelope shared by every API response.
package response

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

// Envelope status values.
const (
	StatusSuccess         = "success"
	StatusError           = "error"
	StatusUnauthorized    = "unauthorized"
	StatusValidationError = "validation_error"
)

// Envelope wraps every response body, successful or not.
type Envelope struct {
	Status    string `json:"status"`
	Message   string `json:"message"`
	Data      any    `json:"data"`
	Code      int    `json:"code"`
	Timestamp int64  `json:"timestamp"`
}

// Now is the clock used for Timestamp.
var Now = time.Now

func New(status, message string, data any, code int) Envelope {
	return Envelope{
		Status:    status,
		Message:   message,
		Data:      data,
		Code:      code,
		Timestamp: Now().UnixMilli(),
	}
}

// OK writes a 200 success envelope.
func OK(c echo.Context, message string, data any) error {
	return c.JSON(http.StatusOK, New(StatusSuccess, message, data, http.StatusOK))
}

// Created writes a 201 success envelope.
func Created(c echo.Context, message string, data any) error {
	return c.JSON(http.StatusCreated, New(StatusSuccess, message, data, http.StatusCreated))
}

// Error builds a failure envelope; data carries field errors when present.
// The status value follows the code: 401 is "unauthorized", 400 is
// "validation_error", everything else "error".
func Error(code int, message string, data any) Envelope {
	status := StatusError
	switch code {
	case http.StatusUnauthorized:
		status = StatusUnauthorized
	case http.StatusBadRequest:
		status = StatusValidationError
	}
	return New(status, message, data, code)
}
