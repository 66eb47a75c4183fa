package handler

import (
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/tasknexus/tasknexus-api/internal/api/middleware"
	"github.com/tasknexus/tasknexus-api/internal/core/domain"
)

// currentPrincipal returns the principal attached by the Authenticate
// middleware. The access policy normally guarantees one exists; a missing
// principal is still reported as unauthenticated rather than trusted.
func currentPrincipal(c echo.Context) (domain.Principal, error) {
	p, ok := middleware.PrincipalFrom(c)
	if !ok {
		return domain.Principal{}, domain.ErrUnauthenticated
	}
	return p, nil
}

// pathID parses a positive integer path parameter.
func pathID(c echo.Context, name string) (int64, error) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, domain.NewValidationError(name, name+" must be a positive integer")
	}
	return id, nil
}

// bindAndValidate decodes the request body into req and runs the struct
// validator on it.
func bindAndValidate(c echo.Context, req any) error {
	if err := c.Bind(req); err != nil {
		return domain.NewValidationError("body", "invalid payload")
	}
	return c.Validate(req)
}
