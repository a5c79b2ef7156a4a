package handlers

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/classboard/backend/models"
	"github.com/classboard/backend/store"
)

type ClassHandler struct {
	store *store.Store
}

func NewClassHandler(st *store.Store) *ClassHandler { return &ClassHandler{store: st} }

type classPayload struct {
	Name    string `json:"name" validate:"required,max=120"`
	Color   string `json:"color" validate:"omitempty,max=20"`
	Degree  string `json:"degree" validate:"omitempty,max=60"`
	Career  string `json:"career" validate:"omitempty,max=120"`
	Section string `json:"section" validate:"omitempty,max=20"`
}

// GET /classes
func (h *ClassHandler) List(c echo.Context) error {
	rows, err := h.store.ListClasses(c.Request().Context())
	if err != nil {
		return jsonError(c, err)
	}
	return c.JSON(http.StatusOK, rows)
}

// GET /classes/:id
func (h *ClassHandler) Get(c echo.Context) error {
	cr, err := h.store.GetClass(c.Request().Context(), c.Param("id"))
	if err != nil {
		return jsonError(c, err)
	}
	return c.JSON(http.StatusOK, cr)
}

// POST /classes
func (h *ClassHandler) Create(c echo.Context) error {
	var req classPayload
	if err := bind(c, &req); err != nil {
		return err
	}
	cr := models.ClassRoom{
		ID:      uuid.NewString(),
		Name:    req.Name,
		Color:   req.Color,
		Degree:  req.Degree,
		Career:  req.Career,
		Section: req.Section,
	}
	if err := h.store.UpsertClass(c.Request().Context(), &cr); err != nil {
		return jsonError(c, err)
	}
	return c.JSON(http.StatusCreated, cr)
}

// PUT /classes/:id
func (h *ClassHandler) Update(c echo.Context) error {
	ctx := c.Request().Context()
	cr, err := h.store.GetClass(ctx, c.Param("id"))
	if err != nil {
		return jsonError(c, err)
	}
	var req classPayload
	if err := bind(c, &req); err != nil {
		return err
	}
	cr.Name = req.Name
	cr.Color = req.Color
	cr.Degree = req.Degree
	cr.Career = req.Career
	cr.Section = req.Section
	if err := h.store.UpsertClass(ctx, cr); err != nil {
		return jsonError(c, err)
	}
	return c.JSON(http.StatusOK, cr)
}

// DELETE /classes/:id
func (h *ClassHandler) Delete(c echo.Context) error {
	if err := h.store.DeleteClass(c.Request().Context(), c.Param("id")); err != nil {
		return jsonError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// GET /classes/:id/roster
func (h *ClassHandler) Roster(c echo.Context) error {
	ctx := c.Request().Context()
	if _, err := h.store.GetClass(ctx, c.Param("id")); err != nil {
		return jsonError(c, err)
	}
	rows, err := h.store.ListRoster(ctx, c.Param("id"))
	if err != nil {
		return jsonError(c, err)
	}
	return c.JSON(http.StatusOK, rows)
}

// POST /classes/:id/roster
func (h *ClassHandler) AddToRoster(c echo.Context) error {
	var req struct {
		StudentID string `json:"student_id" validate:"required"`
	}
	if err := bind(c, &req); err != nil {
		return err
	}
	if err := h.store.AddRosterMember(c.Request().Context(), c.Param("id"), req.StudentID); err != nil {
		return jsonError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// DELETE /classes/:id/roster/:studentId
func (h *ClassHandler) RemoveFromRoster(c echo.Context) error {
	if err := h.store.RemoveRosterMember(c.Request().Context(), c.Param("id"), c.Param("studentId")); err != nil {
		return jsonError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
