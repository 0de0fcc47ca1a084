package http

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/cosmiclibrary/core/internal/domain/entities"
	"github.com/cosmiclibrary/core/internal/infrastructure/logger"
	"github.com/cosmiclibrary/core/internal/ports"
)

// AuthHandler handles registration, login and the user directory
type AuthHandler struct {
	authService ports.AuthService
	logger      *logger.Logger
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(authService ports.AuthService, logger *logger.Logger) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		logger:      logger,
	}
}

// Register godoc
// @Summary Register a user
// @Tags auth
// @Accept json
// @Produce json
// @Param request body ports.RegisterRequest true "Credentials"
// @Success 200 {object} MessageResponse
// @Failure 400 {object} ErrorResponse
// @Router /register [post]
func (h *AuthHandler) Register(c echo.Context) error {
	var req ports.RegisterRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}

	if err := c.Validate(&req); err != nil {
		return toHTTPError(entities.ErrCredentialsRequired)
	}

	if err := h.authService.Register(c.Request().Context(), req); err != nil {
		h.logger.Warnw("Registration failed", "error", err, "username", req.Username)
		return toHTTPError(err)
	}

	return c.JSON(http.StatusOK, MessageResponse{
		Message: fmt.Sprintf("User %s registered", req.Username),
	})
}

// Login godoc
// @Summary Log in
// @Description Check credentials against the configured users, then the registered ones
// @Tags auth
// @Accept json
// @Produce json
// @Param request body ports.LoginRequest true "Credentials"
// @Success 200 {object} ports.LoginResponse
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Router /login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	var req ports.LoginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}

	if err := c.Validate(&req); err != nil {
		return toHTTPError(entities.ErrCredentialsRequired)
	}

	response, err := h.authService.Login(c.Request().Context(), req)
	if err != nil {
		if errors.Is(err, entities.ErrUnauthorized) {
			h.logger.LogSecurityEvent("login_failed", req.Username, c.RealIP(), map[string]interface{}{
				"reason": err.Error(),
			})
		}
		return toHTTPError(err)
	}

	return c.JSON(http.StatusOK, response)
}

// ListUsers godoc
// @Summary List users
// @Description List configured and registered usernames. Passwords are never returned.
// @Tags auth
// @Produce json
// @Success 200 {array} entities.DirectoryEntry
// @Router /users [get]
func (h *AuthHandler) ListUsers(c echo.Context) error {
	users, err := h.authService.ListUsers(c.Request().Context())
	if err != nil {
		h.logger.Errorw("List users failed", "error", err)
		return toHTTPError(err)
	}

	return c.JSON(http.StatusOK, users)
}

// CheckAdmin godoc
// @Summary Check admin
// @Tags auth
// @Produce json
// @Param username query string true "Username"
// @Success 200 {object} CheckAdminResponse
// @Failure 400 {object} ErrorResponse
// @Router /check-admin [get]
func (h *AuthHandler) CheckAdmin(c echo.Context) error {
	isAdmin, err := h.authService.IsAdmin(c.Request().Context(), c.QueryParam("username"))
	if err != nil {
		return toHTTPError(err)
	}

	return c.JSON(http.StatusOK, CheckAdminResponse{IsAdmin: isAdmin})
}
