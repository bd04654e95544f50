package router

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/anonto42/spinforge/backend/internal/apperror"
	"github.com/labstack/echo/v4"
)

type errorBody struct {
	Error   string            `json:"error"`
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields,omitempty"`
}

// statusFor maps an AppError kind to its HTTP status and short code.
func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, apperror.ErrValidation):
		return http.StatusBadRequest, "validation_error"
	case errors.Is(err, apperror.ErrNotFound):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, apperror.ErrForbidden):
		return http.StatusForbidden, "forbidden"
	case errors.Is(err, apperror.ErrConflict):
		return http.StatusConflict, "conflict"
	case errors.Is(err, apperror.ErrUnauthorized):
		return http.StatusUnauthorized, "unauthorized"
	}
	return http.StatusInternalServerError, "internal_error"
}

// HTTPErrorHandler renders every error as {"error", "message", "fields"}.
// Unexpected errors are logged and answered with a generic 500.
func HTTPErrorHandler(logger *slog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		var (
			status int
			body   errorBody
		)

		var appErr *apperror.AppError
		var httpErr *echo.HTTPError
		switch {
		case errors.As(err, &appErr):
			status, body.Error = statusFor(appErr)
			body.Message = appErr.Message
			body.Fields = appErr.Fields
		case errors.As(err, &httpErr):
			status = httpErr.Code
			body.Error = codeForStatus(status)
			body.Message = fmt.Sprint(httpErr.Message)
		default:
			status = http.StatusInternalServerError
			body.Error = "internal_error"
			body.Message = "An unexpected error occurred."
		}

		if status >= http.StatusInternalServerError {
			logger.ErrorContext(c.Request().Context(), "request failed",
				slog.String("method", c.Request().Method),
				slog.String("path", c.Path()),
				slog.String("error", err.Error()))
		}

		var writeErr error
		if c.Request().Method == http.MethodHead {
			writeErr = c.NoContent(status)
		} else {
			writeErr = c.JSON(status, body)
		}
		if writeErr != nil {
			logger.ErrorContext(c.Request().Context(), "writing error response", slog.String("error", writeErr.Error()))
		}
	}
}

func codeForStatus(status int) string {
	switch status {
	case http.StatusBadRequest:
		return "validation_error"
	case http.StatusUnauthorized:
		return "unauthorized"
	case http.StatusForbidden:
		return "forbidden"
	case http.StatusNotFound:
		return "not_found"
	case http.StatusMethodNotAllowed:
		return "method_not_allowed"
	case http.StatusConflict:
		return "conflict"
	}
	if status >= http.StatusInternalServerError {
		return "internal_error"
	}
	return "error"
}
