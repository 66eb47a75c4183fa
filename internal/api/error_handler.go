package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/tasknexus/tasknexus-api/internal/api/metrics"
	"github.com/tasknexus/tasknexus-api/internal/api/response"
	"github.com/tasknexus/tasknexus-api/internal/core/domain"
)

// ErrorOptions tunes the failure mapping.
type ErrorOptions struct {
	// OwnershipStatus is sent for domain.ErrNotOwner. 403 unless set.
	OwnershipStatus int
}

// NewHTTPErrorHandler returns an echo.HTTPErrorHandler that:
//   - Maps known domain errors to their HTTP status codes.
//   - Logs unexpected errors internally without leaking details to the client.
//   - Renders the failure envelope, or no body for HEAD requests.
func NewHTTPErrorHandler(log zerolog.Logger, opts ErrorOptions) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		code, body := Resolve(err, opts)
		if code >= http.StatusInternalServerError {
			log.Error().
				Err(err).
				Str("method", c.Request().Method).
				Str("path", c.Path()).
				Str("request_id", c.Response().Header().Get(echo.HeaderXRequestID)).
				Msg("unhandled error")
		}
		if errors.Is(err, domain.ErrNotOwner) {
			metrics.AccessDeniedTotal.WithLabelValues("not_owner").Inc()
		}

		if c.Request().Method == http.MethodHead {
			_ = c.NoContent(code)
			return
		}
		_ = c.JSON(code, body)
	}
}

// Resolve maps err to a status code and envelope. Unknown errors become a
// generic 500 so internal detail never reaches the client.
func Resolve(err error, opts ErrorOptions) (int, response.Envelope) {
	var verr *domain.ValidationError
	if errors.As(err, &verr) {
		return http.StatusBadRequest, response.Error(http.StatusBadRequest, "validation failed", verr.Fields)
	}

	// Echo's own errors (router 404/405, bind failures, etc.)
	var he *echo.HTTPError
	if errors.As(err, &he) {
		msg := fmt.Sprintf("%v", he.Message)
		if he.Code >= http.StatusInternalServerError {
			msg = "internal server error"
		}
		return he.Code, response.Error(he.Code, msg, nil)
	}

	code, msg := status(err, opts)
	return code, response.Error(code, msg, nil)
}

func status(err error, opts ErrorOptions) (int, string) {
	switch {
	case errors.Is(err, domain.ErrUnauthenticated), domain.IsTokenError(err):
		return http.StatusUnauthorized, "Unauthorized: authentication required"
	case errors.Is(err, domain.ErrInvalidCredentials):
		return http.StatusUnauthorized, "Invalid username/email or password"
	case errors.Is(err, domain.ErrCredentialInactive):
		return http.StatusUnauthorized, "User account is inactive"
	case errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden, "Access denied"
	case errors.Is(err, domain.ErrNotOwner):
		code := opts.OwnershipStatus
		if code == 0 {
			code = http.StatusForbidden
		}
		return code, "You do not have access to this resource"
	case errors.Is(err, domain.ErrInvalidCurrentPassword):
		return http.StatusBadRequest, "Current password is incorrect"
	case errors.Is(err, domain.ErrInvalidInput):
		return http.StatusBadRequest, "invalid input"
	case errors.Is(err, domain.ErrTaskNotFound):
		return http.StatusNotFound, "Task not found"
	case errors.Is(err, domain.ErrUserNotFound):
		return http.StatusNotFound, "User not found"
	case errors.Is(err, domain.ErrEmailTaken):
		return http.StatusConflict, "Email is already registered"
	case errors.Is(err, domain.ErrUsernameTaken):
		return http.StatusConflict, "Username is already taken"
	case errors.Is(err, domain.ErrTooManyAttempts):
		return http.StatusTooManyRequests, "Too many login attempts, try again later"
	}
	return http.StatusInternalServerError, "internal server error"
}
