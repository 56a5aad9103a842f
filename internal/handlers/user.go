package handlers

import (
	"net/http"

	"github.com/anonto42/userdir/backend/internal/models"
	"github.com/anonto42/userdir/backend/internal/services"
	"github.com/labstack/echo/v4"
)

// UserHandler handles HTTP requests related to users
type UserHandler struct {
	userService *services.UserService
}

// NewUserHandler creates a new UserHandler
func NewUserHandler(userService *services.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

// RegisterUserRoutes registers user routes on g
func (h *UserHandler) RegisterUserRoutes(g *echo.Group) {
	g.GET("/users", h.ListUsers)
	g.POST("/users", h.CreateUser)
	g.GET("/users/:id", h.GetUser)
	g.PUT("/users/"+services.LoginUserID, h.LoginUser) // static route wins over /users/:id
	g.PUT("/users/:id", h.UpdateUser)
	g.DELETE("/users/:id", h.DeleteUser)
}

// ListUsers returns all users, filtered by ?name= when present
func (h *UserHandler) ListUsers(c echo.Context) error {
	users, err := h.userService.List(c.Request().Context(), c.QueryParam("name"))
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, users)
}

// GetUser returns one user by id
func (h *UserHandler) GetUser(c echo.Context) error {
	user, err := h.userService.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, user)
}

// CreateUser creates a user from {name, avatarUrl}
func (h *UserHandler) CreateUser(c echo.Context) error {
	var req models.CreateUserRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest).SetInternal(err)
	}

	user, err := h.userService.Create(c.Request().Context(), req)
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, user)
}

// UpdateUser applies a partial update to the user with the given id
func (h *UserHandler) UpdateUser(c echo.Context) error {
	var req models.UpdateUserRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest).SetInternal(err)
	}

	user, err := h.userService.Update(c.Request().Context(), c.Param("id"), req)
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, user)
}

// LoginUser registers or refreshes the logged-in user, keyed by name
func (h *UserHandler) LoginUser(c echo.Context) error {
	var req models.LoginUserRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest).SetInternal(err)
	}

	user, err := h.userService.UpsertByName(c.Request().Context(), req)
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, user)
}

// DeleteUser deletes the user with the given id
func (h *UserHandler) DeleteUser(c echo.Context) error {
	if _, err := h.userService.Delete(c.Request().Context(), c.Param("id")); err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, echo.Map{})
}
