package http

import (
	"errors"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"github.com/cosmiclibrary/core/internal/domain/entities"
	"github.com/cosmiclibrary/core/internal/infrastructure/logger"
)

// CustomValidator wraps the validator
type CustomValidator struct {
	validator *validator.Validate
}

// NewValidator creates the request validator used by echo
func NewValidator() *CustomValidator {
	v := validator.New()
	// notblank rejects empty and whitespace-only strings
	_ = v.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})
	return &CustomValidator{validator: v}
}

// Validate validates structs
func (cv *CustomValidator) Validate(i interface{}) error {
	return cv.validator.Struct(i)
}

// toHTTPError maps a domain error onto a status code. The client sees the
// domain message, never the wrapping context.
func toHTTPError(err error) *echo.HTTPError {
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he
	}

	code := http.StatusInternalServerError
	switch {
	case errors.Is(err, entities.ErrValidation), errors.Is(err, entities.ErrConflict):
		code = http.StatusBadRequest
	case errors.Is(err, entities.ErrNotFound):
		code = http.StatusNotFound
	case errors.Is(err, entities.ErrUnauthorized):
		code = http.StatusUnauthorized
	}

	msg := http.StatusText(code)
	var domainErr *entities.Error
	if errors.As(err, &domainErr) {
		msg = domainErr.Message
	} else if errors.Is(err, entities.ErrStorage) {
		msg = "failed to persist changes"
	}

	return echo.NewHTTPError(code, msg).SetInternal(err)
}

// ErrorHandler renders every error as {"error": "<message>"}
func ErrorHandler(logger *logger.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		he := toHTTPError(err)

		msg, ok := he.Message.(string)
		if !ok {
			msg = http.StatusText(he.Code)
		}

		if he.Code >= http.StatusInternalServerError {
			logger.Errorw("Internal server error", "error", err, "path", c.Request().URL.Path)
		}

		if c.Response().Committed {
			return
		}

		if c.Request().Method == http.MethodHead {
			err = c.NoContent(he.Code)
		} else {
			err = c.JSON(he.Code, ErrorResponse{Error: msg})
		}
		if err != nil {
			logger.Errorw("Error sending response", "error", err)
		}
	}
}

// Request/Response types

type MessageResponse struct {
	Message string `json:"message"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}

type SaveSettingsResponse struct {
	Message  string            `json:"message"`
	Settings entities.Settings `json:"settings"`
}

type CheckAdminResponse struct {
	IsAdmin bool `json:"isAdmin"`
}
