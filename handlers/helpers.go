package handlers

import (
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"github.com/classboard/backend/services"
	"github.com/classboard/backend/store"
)

var validate = validator.New()

// bind decodes and validates a request payload in one step.
func bind(c echo.Context, dst any) error {
	if err := c.Bind(dst); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, map[string]any{"error": "INVALID_PAYLOAD"})
	}
	if err := validate.Struct(dst); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, map[string]any{"error": "VALIDATION_FAILED", "detail": err.Error()})
	}
	return nil
}

// jsonError maps store/service errors onto HTTP statuses with the app's
// {"error": CODE} shape.
func jsonError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, store.ErrNotFound):
		return c.JSON(http.StatusNotFound, map[string]any{"error": "NOT_FOUND"})
	case errors.Is(err, store.ErrConstraintViolation):
		return c.JSON(http.StatusConflict, map[string]any{"error": "CONSTRAINT_VIOLATION", "detail": err.Error()})
	case errors.Is(err, services.ErrInvalidDate):
		return c.JSON(http.StatusBadRequest, map[string]any{"error": "INVALID_DATE"})
	case errors.Is(err, services.ErrStatusNotAllowed):
		return c.JSON(http.StatusBadRequest, map[string]any{"error": "STATUS_NOT_ALLOWED"})
	default:
		return c.JSON(http.StatusInternalServerError, map[string]any{"error": "STORAGE_ERROR"})
	}
}
