package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/tasknexus/tasknexus-api/internal/core/domain"
)

var (
	userPrincipal  = &domain.Principal{SubjectID: 1, Username: "alice", Role: domain.RoleUser}
	adminPrincipal = &domain.Principal{SubjectID: 2, Username: "root", Role: domain.RoleAdmin}
)

func TestDefaultAccessPolicy(t *testing.T) {
	ap := DefaultAccessPolicy()

	cases := []struct {
		name      string
		method    string
		path      string
		principal *domain.Principal
		want      error
	}{
		{"login is public", http.MethodPost, "/auth/login", nil, nil},
		{"register is public", http.MethodPost, "/auth/register", nil, nil},
		{"docs are public", http.MethodGet, "/docs/index.html", nil, nil},
		{"root is public", http.MethodGet, "/", nil, nil},
		{"health is public", http.MethodGet, "/health", nil, nil},
		{"readiness is public", http.MethodGet, "/health/ready", nil, nil},
		{"metrics is public", http.MethodGet, "/metrics", nil, nil},
		{"post to health is not public", http.MethodPost, "/health", nil, domain.ErrUnauthenticated},
		{"tasks need a token", http.MethodGet, "/tasks", nil, domain.ErrUnauthenticated},
		{"task item needs a token", http.MethodGet, "/tasks/42", nil, domain.ErrUnauthenticated},
		{"user may list tasks", http.MethodGet, "/tasks", userPrincipal, nil},
		{"admin may list tasks", http.MethodGet, "/tasks/42", adminPrincipal, nil},
		{"user may read analytics", http.MethodGet, "/analytics/dashboard", userPrincipal, nil},
		{"user may read profile", http.MethodGet, "/users/me", userPrincipal, nil},
		{"unmatched path needs a token", http.MethodGet, "/unknown", nil, domain.ErrUnauthenticated},
		{"unmatched path admits any role", http.MethodGet, "/unknown", userPrincipal, nil},
		{"dot segments are resolved", http.MethodGet, "/auth/../tasks", nil, domain.ErrUnauthenticated},
		{"trailing slash is ignored", http.MethodGet, "/tasks/", nil, domain.ErrUnauthenticated},
		{"prefix is not a path segment", http.MethodGet, "/authx/secret", nil, domain.ErrUnauthenticated},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := ap.Authorize(tc.method, tc.path, tc.principal)
			if !errors.Is(err, tc.want) || (tc.want == nil && err != nil) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
		})
	}
}

func TestAccessPolicy_RoleRestriction(t *testing.T) {
	ap := NewAccessPolicy(
		AccessRule{Pattern: "/admin/**", Roles: []domain.Role{domain.RoleAdmin}},
		AccessRule{Methods: []string{http.MethodGet}, Pattern: "/reports/*", Public: true},
	)

	if err := ap.Authorize(http.MethodGet, "/admin/users", userPrincipal); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
	if err := ap.Authorize(http.MethodGet, "/admin/users", adminPrincipal); err != nil {
		t.Fatalf("expected admin to pass, got %v", err)
	}
	if err := ap.Authorize(http.MethodGet, "/admin", nil); !errors.Is(err, domain.ErrUnauthenticated) {
		t.Fatalf("expected ErrUnauthenticated, got %v", err)
	}
	if err := ap.Authorize(http.MethodGet, "/reports/q1", nil); err != nil {
		t.Fatalf("expected single-segment wildcard to be public, got %v", err)
	}
	if err := ap.Authorize(http.MethodGet, "/reports/q1/raw", nil); !errors.Is(err, domain.ErrUnauthenticated) {
		t.Fatalf("single-segment wildcard must not match deeper paths, got %v", err)
	}
	if err := ap.Authorize(http.MethodDelete, "/reports/q1", nil); !errors.Is(err, domain.ErrUnauthenticated) {
		t.Fatalf("method-restricted rule must not match DELETE, got %v", err)
	}
}

func TestAccessPolicy_FirstMatchWins(t *testing.T) {
	ap := NewAccessPolicy(
		AccessRule{Pattern: "/tasks/public", Public: true},
		AccessRule{Pattern: "/tasks/**", Roles: []domain.Role{domain.RoleAdmin}},
	)
	if err := ap.Authorize(http.MethodGet, "/tasks/public", nil); err != nil {
		t.Fatalf("expected earlier public rule to win, got %v", err)
	}
	if err := ap.Authorize(http.MethodGet, "/tasks/7", userPrincipal); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
}

func TestEnforce(t *testing.T) {
	e := echo.New()
	mw := Enforce(DefaultAccessPolicy())

	run := func(path string, p *domain.Principal) (bool, error) {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		c := e.NewContext(req, httptest.NewRecorder())
		if p != nil {
			SetPrincipal(c, *p)
		}
		called := false
		err := mw(func(c echo.Context) error {
			called = true
			return nil
		})(c)
		return called, err
	}

	if called, err := run("/tasks", nil); called || !errors.Is(err, domain.ErrUnauthenticated) {
		t.Fatalf("expected ErrUnauthenticated and no handler call, got called=%v err=%v", called, err)
	}
	if called, err := run("/tasks", userPrincipal); !called || err != nil {
		t.Fatalf("expected handler call, got called=%v err=%v", called, err)
	}
	if called, err := run("/health", nil); !called || err != nil {
		t.Fatalf("expected public handler call, got called=%v err=%v", called, err)
	}
}
