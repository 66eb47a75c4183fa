package middleware

import (
	"errors"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/tasknexus/tasknexus-api/internal/api/metrics"
	"github.com/tasknexus/tasknexus-api/internal/core/domain"
	"github.com/tasknexus/tasknexus-api/internal/core/ports"
)

const (
	bearerPrefix = "Bearer "
	principalKey = "principal"
)

// Authenticate turns a valid bearer token into a request principal.
//
// It never rejects a request: a missing header, a non-Bearer scheme or a
// token that fails validation all leave the request anonymous, and the
// access policy decides what an anonymous caller may reach.
func Authenticate(tokens ports.TokenValidator, log zerolog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			header := c.Request().Header.Get(echo.HeaderAuthorization)
			raw, ok := strings.CutPrefix(header, bearerPrefix)
			if !ok {
				return next(c)
			}

			claims, err := tokens.Validate(raw)
			if err != nil {
				reason := rejectionReason(err)
				metrics.TokenRejectionsTotal.WithLabelValues(reason).Inc()
				log.Warn().
					Str("reason", reason).
					Str("method", c.Request().Method).
					Str("path", c.Request().URL.Path).
					Str("request_id", c.Response().Header().Get(echo.HeaderXRequestID)).
					Msg("bearer token rejected, continuing anonymously")
				return next(c)
			}

			c.Set(principalKey, claims.Principal())
			return next(c)
		}
	}
}

// PrincipalFrom returns the principal attached by Authenticate, if any.
func PrincipalFrom(c echo.Context) (domain.Principal, bool) {
	p, ok := c.Get(principalKey).(domain.Principal)
	return p, ok
}

// SetPrincipal attaches p to the request. Used by tests and by callers that
// authenticate by other means.
func SetPrincipal(c echo.Context, p domain.Principal) {
	c.Set(principalKey, p)
}

func rejectionReason(err error) string {
	switch {
	case errors.Is(err, domain.ErrTokenExpired):
		return "expired"
	case errors.Is(err, domain.ErrTokenBadSignature):
		return "bad_signature"
	default:
		return "malformed"
	}
}
