package handler

import (
	"github.com/labstack/echo/v4"

	"github.com/tasknexus/tasknexus-api/internal/api/response"
	"github.com/tasknexus/tasknexus-api/internal/core/ports"
)

// UserHandler serves the principal's own profile.
type UserHandler struct {
	service ports.UserService
}

func NewUserHandler(service ports.UserService) *UserHandler {
	return &UserHandler{service: service}
}

type updateProfileRequest struct {
	FullName        *string `json:"fullName" validate:"omitempty,min=2,max=100"`
	PhoneNumber     *string `json:"phoneNumber" validate:"omitempty,max=20"`
	ProfileImageURL *string `json:"profileImageUrl" validate:"omitempty,url"`
}

type changePasswordRequest struct {
	CurrentPassword string `json:"currentPassword" validate:"required"`
	NewPassword     string `json:"newPassword" validate:"required,min=6,max=72"`
}

// Me handles GET /users/me.
//
// @Summary      Current user profile
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  response.Envelope{data=domain.User}
// @Failure      401  {object}  response.Envelope
// @Router       /users/me [get]
func (h *UserHandler) Me(c echo.Context) error {
	p, err := currentPrincipal(c)
	if err != nil {
		return err
	}
	user, err := h.service.Me(c.Request().Context(), p)
	if err != nil {
		return err
	}
	return response.OK(c, "User profile fetched successfully", user)
}

// Get handles GET /users/:id. Only the principal's own id is served.
//
// @Summary      Get a user profile by id
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      int  true  "User ID"
// @Success      200  {object}  response.Envelope{data=domain.User}
// @Failure      403  {object}  response.Envelope
// @Failure      404  {object}  response.Envelope
// @Router       /users/{id} [get]
func (h *UserHandler) Get(c echo.Context) error {
	p, err := currentPrincipal(c)
	if err != nil {
		return err
	}
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	user, err := h.service.Get(c.Request().Context(), p, id)
	if err != nil {
		return err
	}
	return response.OK(c, "User fetched successfully", user)
}

// UpdateMe handles PUT /users/me.
//
// @Summary      Update the current user's profile
// @Tags         users
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      updateProfileRequest  true  "Profile fields to change"
// @Success      200   {object}  response.Envelope{data=domain.User}
// @Failure      400   {object}  response.Envelope
// @Router       /users/me [put]
func (h *UserHandler) UpdateMe(c echo.Context) error {
	p, err := currentPrincipal(c)
	if err != nil {
		return err
	}
	var req updateProfileRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	user, err := h.service.UpdateProfile(c.Request().Context(), p, ports.ProfileUpdate{
		FullName:        req.FullName,
		PhoneNumber:     req.PhoneNumber,
		ProfileImageURL: req.ProfileImageURL,
	})
	if err != nil {
		return err
	}
	return response.OK(c, "Profile updated successfully", user)
}

// ChangePassword handles PUT /users/me/password.
//
// @Summary      Change the current user's password
// @Tags         users
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      changePasswordRequest  true  "Current and new password"
// @Success      200   {object}  response.Envelope
// @Failure      400   {object}  response.Envelope
// @Router       /users/me/password [put]
func (h *UserHandler) ChangePassword(c echo.Context) error {
	p, err := currentPrincipal(c)
	if err != nil {
		return err
	}
	var req changePasswordRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	if err := h.service.ChangePassword(c.Request().Context(), p, req.CurrentPassword, req.NewPassword); err != nil {
		return err
	}
	return response.OK(c, "Password changed successfully", nil)
}

// Deactivate handles DELETE /users/me.
//
// @Summary      Deactivate the current account
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  response.Envelope
// @Router       /users/me [delete]
func (h *UserHandler) Deactivate(c echo.Context) error {
	p, err := currentPrincipal(c)
	if err != nil {
		return err
	}
	if err := h.service.Deactivate(c.Request().Context(), p); err != nil {
		return err
	}
	return response.OK(c, "Account deactivated successfully", nil)
}
