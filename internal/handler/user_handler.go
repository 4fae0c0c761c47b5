package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"foodgram/internal/auth"
	"foodgram/internal/service"
)

// UserHandler serves user profiles and avatars.
type UserHandler struct {
	svc   service.UserService
	pages Paginator
}

// NewUserHandler creates a handler layer.
func NewUserHandler(svc service.UserService, pages Paginator) *UserHandler {
	return &UserHandler{svc: svc, pages: pages}
}

// AvatarRequest carries a base64 data URI.
type AvatarRequest struct {
	Avatar string `json:"avatar" validate:"required"`
}

// UpdateProfileRequest is a partial profile update; omitted fields are kept.
type UpdateProfileRequest struct {
	Username  *string `json:"username" validate:"omitempty,max=150"`
	FirstName *string `json:"first_name" validate:"omitempty,max=150"`
	LastName  *string `json:"last_name" validate:"omitempty,max=150"`
}

// DeleteAccountRequest confirms account removal.
type DeleteAccountRequest struct {
	CurrentPassword string `json:"current_password" validate:"required"`
}

// AvatarResponse is the public URL of the stored avatar.
type AvatarResponse struct {
	Avatar string `json:"avatar"`
}

// ListUsers godoc
// @Summary List users
// @Tags users
// @Produce json
// @Param page query int false "Page number"
// @Param limit query int false "Page size"
// @Success 200 {object} PageResponse[service.UserView]
// @Router /users [get]
func (h *UserHandler) ListUsers(c echo.Context) error {
	page := h.pages.Page(c)
	users, total, err := h.svc.List(c.Request().Context(), page, auth.ViewerID(c))
	if err != nil {
		return fail(err)
	}
	return c.JSON(http.StatusOK, Envelope(c, page, total, users))
}

// GetUser godoc
// @Summary Get user by id
// @Tags users
// @Produce json
// @Param id path int true "User ID"
// @Success 200 {object} service.UserView
// @Failure 404 {object} errors.ErrorResponse
// @Router /users/{id} [get]
func (h *UserHandler) GetUser(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	user, err := h.svc.Get(c.Request().Context(), id, auth.ViewerID(c))
	if err != nil {
		return fail(err)
	}
	return c.JSON(http.StatusOK, user)
}

// Me godoc
// @Summary Current user profile
// @Tags users
// @Produce json
// @Security BearerAuth
// @Success 200 {object} service.UserView
// @Failure 401 {object} errors.ErrorResponse
// @Router /users/me [get]
func (h *UserHandler) Me(c echo.Context) error {
	viewer := auth.ViewerID(c)
	user, err := h.svc.Get(c.Request().Context(), viewer, viewer)
	if err != nil {
		return fail(err)
	}
	return c.JSON(http.StatusOK, user)
}

// UpdateMe godoc
// @Summary Update current user profile
// @Tags users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body UpdateProfileRequest true "Fields to change"
// @Success 200 {object} service.UserView
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Router /users/me [patch]
func (h *UserHandler) UpdateMe(c echo.Context) error {
	var req UpdateProfileRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	user, err := h.svc.UpdateProfile(c.Request().Context(), auth.ViewerID(c), service.ProfileInput{
		Username:  req.Username,
		FirstName: req.FirstName,
		LastName:  req.LastName,
	})
	if err != nil {
		return fail(err)
	}
	return c.JSON(http.StatusOK, user)
}

// DeleteMe godoc
// @Summary Delete current user account
// @Tags users
// @Accept json
// @Security BearerAuth
// @Param request body DeleteAccountRequest true "Current password"
// @Success 204
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Router /users/me [delete]
func (h *UserHandler) DeleteMe(c echo.Context) error {
	var req DeleteAccountRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	if err := h.svc.DeleteAccount(c.Request().Context(), auth.ViewerID(c), req.CurrentPassword); err != nil {
		return fail(err)
	}
	return c.NoContent(http.StatusNoContent)
}

// SetAvatar godoc
// @Summary Upload avatar
// @Tags users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body AvatarRequest true "Avatar as data URI"
// @Success 200 {object} AvatarResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Router /users/me/avatar [put]
func (h *UserHandler) SetAvatar(c echo.Context) error {
	var req AvatarRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	url, err := h.svc.SetAvatar(c.Request().Context(), auth.ViewerID(c), req.Avatar)
	if err != nil {
		return fail(err)
	}
	return c.JSON(http.StatusOK, AvatarResponse{Avatar: url})
}

// DeleteAvatar godoc
// @Summary Remove avatar
// @Tags users
// @Security BearerAuth
// @Success 204
// @Failure 401 {object} errors.ErrorResponse
// @Router /users/me/avatar [delete]
func (h *UserHandler) DeleteAvatar(c echo.Context) error {
	if err := h.svc.DeleteAvatar(c.Request().Context(), auth.ViewerID(c)); err != nil {
		return fail(err)
	}
	return c.NoContent(http.StatusNoContent)
}
