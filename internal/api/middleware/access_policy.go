package middleware

import (
	"errors"
	"net/http"
	"path"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/tasknexus/tasknexus-api/internal/api/metrics"
	"github.com/tasknexus/tasknexus-api/internal/core/domain"
)

// AccessRule is one row of the access table.
//
// Pattern is either a path.Match pattern ("/tasks/*") or a prefix ending in
// "/**" that matches the prefix itself and everything below it. Methods
// empty means any method. A rule that is not Public admits any
// authenticated principal when Roles is empty, otherwise only those roles.
type AccessRule struct {
	Methods []string
	Pattern string
	Public  bool
	Roles   []domain.Role
}

func (r AccessRule) matches(method, p string) bool {
	if len(r.Methods) > 0 {
		found := false
		for _, m := range r.Methods {
			if m == method {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return matchPattern(r.Pattern, p)
}

// AccessPolicy is an ordered access table; the first matching rule wins.
// Paths no rule matches require an authenticated principal of any role.
type AccessPolicy struct {
	rules []AccessRule
}

func NewAccessPolicy(rules ...AccessRule) *AccessPolicy {
	return &AccessPolicy{rules: rules}
}

// DefaultAccessPolicy is the route table served by the API.
func DefaultAccessPolicy() *AccessPolicy {
	anyRole := []domain.Role{domain.RoleAdmin, domain.RoleUser}
	get := []string{http.MethodGet, http.MethodHead}

	return NewAccessPolicy(
		AccessRule{Pattern: "/auth/**", Public: true},
		AccessRule{Pattern: "/docs/**", Public: true},
		AccessRule{Methods: get, Pattern: "/", Public: true},
		AccessRule{Methods: get, Pattern: "/health/**", Public: true},
		AccessRule{Methods: get, Pattern: "/metrics", Public: true},
		AccessRule{Pattern: "/tasks/**", Roles: anyRole},
		AccessRule{Pattern: "/analytics/**", Roles: anyRole},
		AccessRule{Pattern: "/users/**", Roles: anyRole},
	)
}

// Authorize decides whether p (nil for anonymous) may call method on
// rawPath. It returns nil, domain.ErrUnauthenticated or domain.ErrForbidden.
func (ap *AccessPolicy) Authorize(method, rawPath string, p *domain.Principal) error {
	rule, ok := ap.match(method, cleanPath(rawPath))
	if ok && rule.Public {
		return nil
	}
	if p == nil {
		return domain.ErrUnauthenticated
	}
	if ok && len(rule.Roles) > 0 && !p.HasRole(rule.Roles...) {
		return domain.ErrForbidden
	}
	return nil
}

func (ap *AccessPolicy) match(method, p string) (AccessRule, bool) {
	for _, r := range ap.rules {
		if r.matches(method, p) {
			return r, true
		}
	}
	return AccessRule{}, false
}

// Enforce applies ap to every request. It must run after Authenticate.
func Enforce(ap *AccessPolicy) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			var principal *domain.Principal
			if p, ok := PrincipalFrom(c); ok {
				principal = &p
			}

			if err := ap.Authorize(c.Request().Method, c.Request().URL.Path, principal); err != nil {
				reason := "forbidden"
				if errors.Is(err, domain.ErrUnauthenticated) {
					reason = "unauthenticated"
				}
				metrics.AccessDeniedTotal.WithLabelValues(reason).Inc()
				return err
			}
			return next(c)
		}
	}
}

func matchPattern(pattern, p string) bool {
	if prefix, ok := strings.CutSuffix(pattern, "/**"); ok {
		return prefix == "" || p == prefix || strings.HasPrefix(p, prefix+"/")
	}
	ok, err := path.Match(pattern, p)
	return err == nil && ok
}

// cleanPath resolves dot segments and trailing slashes so "/auth/../tasks"
// is judged as "/tasks".
func cleanPath(p string) string {
	if p == "" {
		return "/"
	}
	return path.Clean("/" + p)
}
