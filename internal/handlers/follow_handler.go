package handlers

import (
	"net/http"

	"github.com/anonto42/userdir/backend/internal/models"
	"github.com/anonto42/userdir/backend/internal/services"
	"github.com/labstack/echo/v4"
)

// FollowHandler handles follow/unfollow HTTP requests
type FollowHandler struct {
	followService *services.FollowService
}

// NewFollowHandler creates a new FollowHandler
func NewFollowHandler(followService *services.FollowService) *FollowHandler {
	return &FollowHandler{followService: followService}
}

// RegisterFollowRoutes registers follow-related routes
func (h *FollowHandler) RegisterFollowRoutes(g *echo.Group) {
	g.GET("/users/:id/follows", h.ListFollows)
	g.POST("/users/:id/follows", h.FollowUser)
	g.DELETE("/users/:id/follows", h.UnfollowUser)
}

// ListFollows returns the users followed by :id
func (h *FollowHandler) ListFollows(c echo.Context) error {
	users, err := h.followService.ListFollowedUsers(c.Request().Context(), c.Param("id"))
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, users)
}

// FollowUser makes :id follow the body's followId
func (h *FollowHandler) FollowUser(c echo.Context) error {
	var req models.FollowRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest).SetInternal(err)
	}

	if err := h.followService.Create(c.Request().Context(), c.Param("id"), req); err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, echo.Map{})
}

// UnfollowUser removes the :id -> ?followId= edge
func (h *FollowHandler) UnfollowUser(c echo.Context) error {
	err := h.followService.Delete(c.Request().Context(), c.Param("id"), c.QueryParam("followId"))
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, echo.Map{})
}
