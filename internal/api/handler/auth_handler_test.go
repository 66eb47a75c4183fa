package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/tasknexus/tasknexus-api/internal/core/domain"
	"github.com/tasknexus/tasknexus-api/internal/core/ports"
)

type stubAuthService struct {
	registerFn func(ctx context.Context, input ports.RegisterInput) (*domain.User, error)
	loginFn    func(ctx context.Context, identifier, password string) (*ports.LoginResult, error)
	emailFn    func(ctx context.Context, email string) (bool, error)
}

func (s *stubAuthService) Register(ctx context.Context, input ports.RegisterInput) (*domain.User, error) {
	return s.registerFn(ctx, input)
}

func (s *stubAuthService) Login(ctx context.Context, identifier, password string) (*ports.LoginResult, error) {
	return s.loginFn(ctx, identifier, password)
}

func (s *stubAuthService) EmailExists(ctx context.Context, email string) (bool, error) {
	return s.emailFn(ctx, email)
}

func (s *stubAuthService) UsernameExists(context.Context, string) (bool, error) {
	return false, nil
}

func newTestEcho() *echo.Echo {
	e := echo.New()
	e.Validator = NewValidator()
	return e
}

func jsonContext(e *echo.Echo, method, target, body string) (echo.Context, *httptest.ResponseRecorder) {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	return resp
}

func TestAuthHandler_Register_Success(t *testing.T) {
	e := newTestEcho()
	stub := &stubAuthService{
		registerFn: func(ctx context.Context, input ports.RegisterInput) (*domain.User, error) {
			if input.Username != "alice" || input.Email != "alice@example.com" || input.FullName != "Alice Liddell" {
				t.Fatalf("unexpected input: %+v", input)
			}
			return &domain.User{ID: 1, Username: input.Username, Email: input.Email, PasswordHash: "$2a$hash", Role: domain.RoleUser, Active: true}, nil
		},
	}
	handler := NewAuthHandler(stub)

	c, rec := jsonContext(e, http.MethodPost, "/auth/register",
		`{"email":"alice@example.com","username":"alice","password":"secret1","fullName":"Alice Liddell"}`)
	if err := handler.Register(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}

	resp := decodeEnvelope(t, rec)
	if resp["status"] != "success" || resp["code"] != float64(201) {
		t.Fatalf("unexpected envelope: %+v", resp)
	}
	user, ok := resp["data"].(map[string]any)
	if !ok {
		t.Fatalf("expected user in data")
	}
	if user["username"] != "alice" || user["role"] != "USER" || user["isActive"] != true {
		t.Fatalf("unexpected user payload: %+v", user)
	}
	if strings.Contains(rec.Body.String(), "$2a$hash") {
		t.Fatalf("password hash leaked: %s", rec.Body.String())
	}
}

func TestAuthHandler_Register_ShortPasswordRejectedBeforeService(t *testing.T) {
	e := newTestEcho()
	stub := &stubAuthService{
		registerFn: func(context.Context, ports.RegisterInput) (*domain.User, error) {
			t.Fatalf("service must not be called")
			return nil, nil
		},
	}
	handler := NewAuthHandler(stub)

	c, _ := jsonContext(e, http.MethodPost, "/auth/register",
		`{"email":"bob@example.com","username":"bob","password":"short","fullName":"Bob Builder"}`)
	err := handler.Register(c)

	var verr *domain.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if verr.Fields["password"] != "password must be at least 6 characters" {
		t.Fatalf("unexpected field errors: %v", verr.Fields)
	}
}

func TestAuthHandler_Register_InvalidPayload(t *testing.T) {
	e := newTestEcho()
	handler := NewAuthHandler(&stubAuthService{})

	c, _ := jsonContext(e, http.MethodPost, "/auth/register", `{"email":`)
	if err := handler.Register(c); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected invalid input, got %v", err)
	}
}

func TestAuthHandler_Register_PropagatesConflict(t *testing.T) {
	e := newTestEcho()
	stub := &stubAuthService{
		registerFn: func(context.Context, ports.RegisterInput) (*domain.User, error) {
			return nil, domain.ErrEmailTaken
		},
	}
	handler := NewAuthHandler(stub)

	c, _ := jsonContext(e, http.MethodPost, "/auth/register",
		`{"email":"bob@example.com","username":"bob","password":"secret1","fullName":"Bob Builder"}`)
	if err := handler.Register(c); !errors.Is(err, domain.ErrEmailTaken) {
		t.Fatalf("expected ErrEmailTaken, got %v", err)
	}
}

func TestAuthHandler_Login_Success(t *testing.T) {
	e := newTestEcho()
	stub := &stubAuthService{
		loginFn: func(ctx context.Context, identifier, password string) (*ports.LoginResult, error) {
			if identifier != "alice" || password != "secret1" {
				t.Fatalf("unexpected credentials: %s %s", identifier, password)
			}
			return &ports.LoginResult{UserID: 1, Username: "alice", Email: "alice@example.com", Token: "tkn"}, nil
		},
	}
	handler := NewAuthHandler(stub)

	c, rec := jsonContext(e, http.MethodPost, "/auth/login", `{"emailOrUsername":"alice","password":"secret1"}`)
	if err := handler.Login(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	data, _ := decodeEnvelope(t, rec)["data"].(map[string]any)
	if data["token"] != "tkn" || data["userId"] != float64(1) {
		t.Fatalf("unexpected login payload: %+v", data)
	}
	if v, ok := data["refreshToken"]; !ok || v != nil {
		t.Fatalf("expected explicit null refreshToken, got %+v", data)
	}
}

func TestAuthHandler_Login_InvalidCredentials(t *testing.T) {
	e := newTestEcho()
	stub := &stubAuthService{
		loginFn: func(context.Context, string, string) (*ports.LoginResult, error) {
			return nil, domain.ErrInvalidCredentials
		},
	}
	handler := NewAuthHandler(stub)

	c, _ := jsonContext(e, http.MethodPost, "/auth/login", `{"emailOrUsername":"alice","password":"nope"}`)
	if err := handler.Login(c); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestAuthHandler_CheckEmail(t *testing.T) {
	e := newTestEcho()
	stub := &stubAuthService{
		emailFn: func(_ context.Context, email string) (bool, error) {
			return email == "taken@example.com", nil
		},
	}
	handler := NewAuthHandler(stub)

	c, rec := jsonContext(e, http.MethodGet, "/auth/check-email/taken@example.com", "")
	c.SetParamNames("email")
	c.SetParamValues("taken@example.com")
	if err := handler.CheckEmail(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}

	resp := decodeEnvelope(t, rec)
	if resp["data"] != true || resp["message"] != "Email already registered" {
		t.Fatalf("unexpected response: %+v", resp)
	}
}

func TestLoginResult(t *testing.T) {
	cases := map[error]string{
		nil:                          "success",
		domain.ErrInvalidCredentials: "invalid_credentials",
		domain.ErrCredentialInactive: "inactive",
		domain.ErrTooManyAttempts:    "throttled",
		errors.New("boom"):           "error",
	}
	for err, want := range cases {
		if got := loginResult(err); got != want {
			t.Fatalf("%v: expected %q, got %q", err, want, got)
		}
	}
}
