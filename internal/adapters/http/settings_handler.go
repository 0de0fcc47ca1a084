package http

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/cosmiclibrary/core/internal/infrastructure/logger"
	"github.com/cosmiclibrary/core/internal/ports"
)

// SettingsHandler handles display settings requests
type SettingsHandler struct {
	settingsService ports.SettingsService
	logger          *logger.Logger
}

// NewSettingsHandler creates a new settings handler
func NewSettingsHandler(settingsService ports.SettingsService, logger *logger.Logger) *SettingsHandler {
	return &SettingsHandler{
		settingsService: settingsService,
		logger:          logger,
	}
}

// GetSettings godoc
// @Summary Get settings
// @Description Get the display settings and the selectable backgrounds
// @Tags settings
// @Produce json
// @Success 200 {object} ports.SettingsResponse
// @Router /settings [get]
func (h *SettingsHandler) GetSettings(c echo.Context) error {
	response, err := h.settingsService.GetSettings(c.Request().Context())
	if err != nil {
		h.logger.Errorw("Get settings failed", "error", err)
		return toHTTPError(err)
	}

	return c.JSON(http.StatusOK, response)
}

// SaveSettings godoc
// @Summary Save settings
// @Description Replace the display settings
// @Tags settings
// @Accept json
// @Produce json
// @Param request body ports.SaveSettingsRequest true "Settings"
// @Success 200 {object} SaveSettingsResponse
// @Router /settings [post]
func (h *SettingsHandler) SaveSettings(c echo.Context) error {
	var req ports.SaveSettingsRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}

	settings, err := h.settingsService.SaveSettings(c.Request().Context(), req)
	if err != nil {
		h.logger.Errorw("Save settings failed", "error", err)
		return toHTTPError(err)
	}

	return c.JSON(http.StatusOK, SaveSettingsResponse{
		Message:  "Settings saved",
		Settings: *settings,
	})
}
