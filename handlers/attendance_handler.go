package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/classboard/backend/models"
	"github.com/classboard/backend/services"
)

type AttendanceHandler struct {
	attendance *services.AttendanceService
	reconciler *services.Reconciler
}

func NewAttendanceHandler(att *services.AttendanceService, rec *services.Reconciler) *AttendanceHandler {
	return &AttendanceHandler{attendance: att, reconciler: rec}
}

// POST /classes/:id/attendance/open
// Seeds the date with UNKNOWN for every roster member; re-opening is a no-op.
func (h *AttendanceHandler) Open(c echo.Context) error {
	var req struct {
		Date string `json:"date" validate:"required"`
	}
	if err := bind(c, &req); err != nil {
		return err
	}
	seeded, err := h.attendance.OpenDay(c.Request().Context(), c.Param("id"), req.Date)
	if err != nil {
		return jsonError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]any{"date": req.Date, "seeded": seeded})
}

// POST /classes/:id/attendance/mark
func (h *AttendanceHandler) Mark(c echo.Context) error {
	var req struct {
		StudentID string `json:"student_id" validate:"required"`
		Date      string `json:"date" validate:"required"`
		Status    string `json:"status" validate:"required"`
	}
	if err := bind(c, &req); err != nil {
		return err
	}
	err := h.attendance.SetStatus(c.Request().Context(), c.Param("id"), req.StudentID, req.Date,
		models.AttendanceStatus(req.Status))
	if err != nil {
		return jsonError(c, err)
	}
	sheet, err := h.reconciler.Sheet(c.Request().Context(), c.Param("id"), req.Date)
	if err != nil {
		return jsonError(c, err)
	}
	return c.JSON(http.StatusOK, sheet)
}

// GET /classes/:id/attendance/sheet?date=YYYY-MM-DD
func (h *AttendanceHandler) Sheet(c echo.Context) error {
	date := c.QueryParam("date")
	if date == "" {
		return c.JSON(http.StatusBadRequest, map[string]any{"error": "MISSING_DATE"})
	}
	sheet, err := h.reconciler.Sheet(c.Request().Context(), c.Param("id"), date)
	if err != nil {
		return jsonError(c, err)
	}
	return c.JSON(http.StatusOK, sheet)
}

// GET /classes/:id/attendance/history
func (h *AttendanceHandler) History(c echo.Context) error {
	sheets, err := h.reconciler.History(c.Request().Context(), c.Param("id"))
	if err != nil {
		return jsonError(c, err)
	}
	return c.JSON(http.StatusOK, sheets)
}

// GET /classes/:id/attendance/dates
func (h *AttendanceHandler) Dates(c echo.Context) error {
	dates, err := h.reconciler.AvailableDates(c.Request().Context(), c.Param("id"))
	if err != nil {
		return jsonError(c, err)
	}
	return c.JSON(http.StatusOK, dates)
}

// GET /classes/:id/attendance/statuses
// The options a teacher may pick when marking; UNKNOWN is deliberately absent.
func (h *AttendanceHandler) Statuses(c echo.Context) error {
	return c.JSON(http.StatusOK, models.EditableStatuses())
}
