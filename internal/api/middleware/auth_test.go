package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/tasknexus/tasknexus-api/internal/core/domain"
)

type stubValidator struct {
	claims *domain.Claims
	err    error
	seen   []string
}

func (v *stubValidator) Validate(token string) (*domain.Claims, error) {
	v.seen = append(v.seen, token)
	return v.claims, v.err
}

// runAuthenticate drives the middleware once and returns what next observed.
func runAuthenticate(t *testing.T, v *stubValidator, header string) (domain.Principal, bool) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/tasks", nil)
	if header != "" {
		req.Header.Set(echo.HeaderAuthorization, header)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	var (
		got    domain.Principal
		found  bool
		called bool
	)
	handler := Authenticate(v, zerolog.Nop())(func(c echo.Context) error {
		called = true
		got, found = PrincipalFrom(c)
		return c.NoContent(http.StatusOK)
	})

	if err := handler(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if !called {
		t.Fatalf("next not called: Authenticate must never reject")
	}
	return got, found
}

func TestAuthenticate_ValidToken(t *testing.T) {
	v := &stubValidator{claims: &domain.Claims{Subject: "alice", UserID: 1, Role: domain.RoleUser}}

	p, ok := runAuthenticate(t, v, "Bearer good-token")
	if !ok {
		t.Fatalf("expected principal")
	}
	if p.SubjectID != 1 || p.Username != "alice" || p.Role != domain.RoleUser {
		t.Fatalf("unexpected principal: %+v", p)
	}
	if len(v.seen) != 1 || v.seen[0] != "good-token" {
		t.Fatalf("expected prefix stripped, got %v", v.seen)
	}
}

func TestAuthenticate_MissingHeaderIsAnonymous(t *testing.T) {
	v := &stubValidator{}
	if _, ok := runAuthenticate(t, v, ""); ok {
		t.Fatalf("expected anonymous request")
	}
	if len(v.seen) != 0 {
		t.Fatalf("validator must not be called without a bearer token")
	}
}

func TestAuthenticate_OtherSchemeIsAnonymous(t *testing.T) {
	v := &stubValidator{}
	for _, header := range []string{"Token abc", "Basic YWxpY2U6c2VjcmV0", "bearer abc", "Bearer"} {
		if _, ok := runAuthenticate(t, v, header); ok {
			t.Fatalf("%q: expected anonymous request", header)
		}
	}
	if len(v.seen) != 0 {
		t.Fatalf("validator must not be called for other schemes, got %v", v.seen)
	}
}

func TestAuthenticate_InvalidTokenIsAnonymous(t *testing.T) {
	for _, err := range []error{domain.ErrTokenMalformed, domain.ErrTokenBadSignature, domain.ErrTokenExpired} {
		v := &stubValidator{err: err}
		if _, ok := runAuthenticate(t, v, "Bearer whatever"); ok {
			t.Fatalf("%v: expected anonymous request", err)
		}
	}
}

func TestRejectionReason(t *testing.T) {
	cases := map[error]string{
		domain.ErrTokenExpired:      "expired",
		domain.ErrTokenBadSignature: "bad_signature",
		domain.ErrTokenMalformed:    "malformed",
	}
	for err, want := range cases {
		if got := rejectionReason(err); got != want {
			t.Fatalf("%v: expected %q, got %q", err, want, got)
		}
	}
}
