package api

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skryldev/employee-payroll/logger"
	"github.com/Skryldev/employee-payroll/payroll"
	"github.com/Skryldev/employee-payroll/service"
	"github.com/Skryldev/employee-payroll/spreadsheet"
)

// Response is the JSON envelope of every endpoint except the xlsx export.
type Response struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
	// Kind names the failure class, e.g. "InvalidAge" or "DuplicateEmail".
	Kind string `json:"kind,omitempty"`
}

func ResponseSuccess(c echo.Context, status int, message string, data any) error {
	return c.JSON(status, Response{Success: true, Message: message, Data: data})
}

func ResponseError(c echo.Context, status int, message string, err error) error {
	resp := Response{Message: message, Kind: kindOf(err)}
	if err != nil {
		resp.Error = err.Error()
	}
	if status >= http.StatusInternalServerError {
		logger.FromContext(c.Request().Context()).Error().Err(err).Int("status", status).Msg(message)
		// Storage details stay in the log.
		resp.Error = http.StatusText(status)
	}
	return c.JSON(status, resp)
}

// respondServiceError maps the service error kinds onto HTTP statuses.
func respondServiceError(c echo.Context, message string, err error) error {
	return ResponseError(c, statusOf(err), message, err)
}

func statusOf(err error) int {
	var rowErr *spreadsheet.RowError
	switch {
	case payroll.IsRuleError(err), errors.Is(err, service.ErrInvalidEmail), errors.As(err, &rowErr):
		return http.StatusBadRequest
	case errors.Is(err, service.ErrDuplicateEmail):
		return http.StatusConflict
	case errors.Is(err, service.ErrNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func kindOf(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, payroll.ErrInvalidName):
		return "InvalidName"
	case errors.Is(err, payroll.ErrInvalidAge):
		return "InvalidAge"
	case errors.Is(err, payroll.ErrInvalidSalary):
		return "InvalidSalary"
	case errors.Is(err, payroll.ErrInvalidWorkedHours):
		return "InvalidWorkedHours"
	case errors.Is(err, service.ErrInvalidEmail):
		return "InvalidEmail"
	case errors.Is(err, service.ErrDuplicateEmail):
		return "DuplicateEmail"
	case errors.Is(err, service.ErrNotFound):
		return "NotFound"
	case errors.Is(err, service.ErrStorage):
		return "StorageFailure"
	}
	return ""
}
