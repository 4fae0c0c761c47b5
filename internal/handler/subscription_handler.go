package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"foodgram/internal/auth"
	"foodgram/internal/service"
)

// SubscriptionHandler serves the follower graph endpoints.
type SubscriptionHandler struct {
	svc   service.SubscriptionService
	pages Paginator
}

// NewSubscriptionHandler creates a new subscription handler.
func NewSubscriptionHandler(svc service.SubscriptionService, pages Paginator) *SubscriptionHandler {
	return &SubscriptionHandler{svc: svc, pages: pages}
}

// List godoc
// @Summary Users the current user follows
// @Tags subscriptions
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page number"
// @Param limit query int false "Page size"
// @Param recipes_limit query int false "Recipes shown per user"
// @Success 200 {object} PageResponse[service.SubscriptionView]
// @Failure 401 {object} errors.ErrorResponse
// @Router /users/subscriptions [get]
func (h *SubscriptionHandler) List(c echo.Context) error {
	page := h.pages.Page(c)
	views, total, err := h.svc.List(c.Request().Context(), auth.ViewerID(c), page, queryInt(c, "recipes_limit", 0))
	if err != nil {
		return fail(err)
	}
	return c.JSON(http.StatusOK, Envelope(c, page, total, views))
}

// Subscribe godoc
// @Summary Follow a user
// @Tags subscriptions
// @Produce json
// @Security BearerAuth
// @Param id path int true "User ID"
// @Param recipes_limit query int false "Recipes shown"
// @Success 201 {object} service.SubscriptionView
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /users/{id}/subscribe [post]
func (h *SubscriptionHandler) Subscribe(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	view, err := h.svc.Subscribe(c.Request().Context(), auth.ViewerID(c), id, queryInt(c, "recipes_limit", 0))
	if err != nil {
		return fail(err)
	}
	return c.JSON(http.StatusCreated, view)
}

// Unsubscribe godoc
// @Summary Stop following a user
// @Tags subscriptions
// @Security BearerAuth
// @Param id path int true "User ID"
// @Success 204
// @Failure 401 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /users/{id}/subscribe [delete]
func (h *SubscriptionHandler) Unsubscribe(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	if err := h.svc.Unsubscribe(c.Request().Context(), auth.ViewerID(c), id); err != nil {
		return fail(err)
	}
	return c.NoContent(http.StatusNoContent)
}
