package handler

import (
	"errors"

	"github.com/labstack/echo/v4"

	"github.com/tasknexus/tasknexus-api/internal/api/metrics"
	"github.com/tasknexus/tasknexus-api/internal/api/response"
	"github.com/tasknexus/tasknexus-api/internal/core/domain"
	"github.com/tasknexus/tasknexus-api/internal/core/ports"
)

type AuthHandler struct {
	authService ports.AuthService
}

func NewAuthHandler(authService ports.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

type registerRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Username string `json:"username" validate:"required,min=3,max=50"`
	Password string `json:"password" validate:"required,min=6,max=72"`
	FullName string `json:"fullName" validate:"required,min=2,max=100"`
}

type loginRequest struct {
	EmailOrUsername string `json:"emailOrUsername" validate:"required"`
	Password        string `json:"password" validate:"required"`
}

type loginResponse struct {
	UserID       int64   `json:"userId"`
	Username     string  `json:"username"`
	Email        string  `json:"email"`
	Token        string  `json:"token"`
	RefreshToken *string `json:"refreshToken"`
	Message      string  `json:"message"`
}

// Register creates a new user account with the USER role.
//
// @Summary      Register a new user
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      registerRequest  true  "User registration details"
// @Success      201   {object}  response.Envelope{data=domain.User}
// @Failure      400   {object}  response.Envelope
// @Failure      409   {object}  response.Envelope
// @Failure      500   {object}  response.Envelope
// @Router       /auth/register [post]
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	user, err := h.authService.Register(c.Request().Context(), ports.RegisterInput{
		Email:    req.Email,
		Username: req.Username,
		Password: req.Password,
		FullName: req.FullName,
	})
	if err != nil {
		return err
	}

	return response.Created(c, "User registered successfully", user)
}

// Login authenticates by email or username and returns a bearer token.
//
// @Summary      Login
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      loginRequest  true  "Login credentials"
// @Success      200   {object}  response.Envelope{data=loginResponse}
// @Failure      400   {object}  response.Envelope
// @Failure      401   {object}  response.Envelope
// @Failure      429   {object}  response.Envelope
// @Router       /auth/login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	result, err := h.authService.Login(c.Request().Context(), req.EmailOrUsername, req.Password)
	metrics.LoginsTotal.WithLabelValues(loginResult(err)).Inc()
	if err != nil {
		return err
	}

	return response.OK(c, "Login successful", loginResponse{
		UserID:       result.UserID,
		Username:     result.Username,
		Email:        result.Email,
		Token:        result.Token,
		RefreshToken: result.RefreshToken,
		Message:      "Login successful",
	})
}

// Logout acknowledges a logout. Tokens are stateless and stay valid until
// they expire; the client is expected to discard its copy.
//
// @Summary      Logout
// @Tags         auth
// @Produce      json
// @Success      200  {object}  response.Envelope
// @Router       /auth/logout [post]
func (h *AuthHandler) Logout(c echo.Context) error {
	return response.OK(c, "Logged out successfully", nil)
}

// CheckEmail reports whether an email is already registered.
//
// @Summary      Check email availability
// @Tags         auth
// @Produce      json
// @Param        email  path      string  true  "Email address"
// @Success      200    {object}  response.Envelope{data=bool}
// @Router       /auth/check-email/{email} [get]
func (h *AuthHandler) CheckEmail(c echo.Context) error {
	exists, err := h.authService.EmailExists(c.Request().Context(), c.Param("email"))
	if err != nil {
		return err
	}
	msg := "Email is available"
	if exists {
		msg = "Email already registered"
	}
	return response.OK(c, msg, exists)
}

// CheckUsername reports whether a username is already taken.
//
// @Summary      Check username availability
// @Tags         auth
// @Produce      json
// @Param        username  path      string  true  "Username"
// @Success      200       {object}  response.Envelope{data=bool}
// @Router       /auth/check-username/{username} [get]
func (h *AuthHandler) CheckUsername(c echo.Context) error {
	exists, err := h.authService.UsernameExists(c.Request().Context(), c.Param("username"))
	if err != nil {
		return err
	}
	msg := "Username is available"
	if exists {
		msg = "Username already taken"
	}
	return response.OK(c, msg, exists)
}

func loginResult(err error) string {
	switch {
	case err == nil:
		return "success"
	case errors.Is(err, domain.ErrInvalidCredentials):
		return "invalid_credentials"
	case errors.Is(err, domain.ErrCredentialInactive):
		return "inactive"
	case errors.Is(err, domain.ErrTooManyAttempts):
		return "throttled"
	default:
		return "error"
	}
}
