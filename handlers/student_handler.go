package handlers

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/classboard/backend/models"
	"github.com/classboard/backend/store"
)

type StudentHandler struct {
	store *store.Store
}

func NewStudentHandler(st *store.Store) *StudentHandler { return &StudentHandler{store: st} }

type studentPayload struct {
	Name          string `json:"name" validate:"required,max=120"`
	Email         string `json:"email" validate:"omitempty,email,max=120"`
	Number        string `json:"number" validate:"omitempty,max=20"`
	ControlNumber int    `json:"control_number" validate:"gte=0"`
}

// GET /students
func (h *StudentHandler) List(c echo.Context) error {
	rows, err := h.store.ListStudents(c.Request().Context())
	if err != nil {
		return jsonError(c, err)
	}
	return c.JSON(http.StatusOK, rows)
}

// GET /students/:id
func (h *StudentHandler) Get(c echo.Context) error {
	st, err := h.store.GetStudent(c.Request().Context(), c.Param("id"))
	if err != nil {
		return jsonError(c, err)
	}
	return c.JSON(http.StatusOK, st)
}

// POST /students
func (h *StudentHandler) Create(c echo.Context) error {
	var req studentPayload
	if err := bind(c, &req); err != nil {
		return err
	}
	st := models.Student{
		ID:            uuid.NewString(),
		Name:          req.Name,
		Email:         req.Email,
		Number:        req.Number,
		ControlNumber: req.ControlNumber,
	}
	if err := h.store.UpsertStudent(c.Request().Context(), &st); err != nil {
		return jsonError(c, err)
	}
	return c.JSON(http.StatusCreated, st)
}

// PUT /students/:id
func (h *StudentHandler) Update(c echo.Context) error {
	ctx := c.Request().Context()
	st, err := h.store.GetStudent(ctx, c.Param("id"))
	if err != nil {
		return jsonError(c, err)
	}
	var req studentPayload
	if err := bind(c, &req); err != nil {
		return err
	}
	st.Name = req.Name
	st.Email = req.Email
	st.Number = req.Number
	st.ControlNumber = req.ControlNumber
	if err := h.store.UpsertStudent(ctx, st); err != nil {
		return jsonError(c, err)
	}
	return c.JSON(http.StatusOK, st)
}

// DELETE /students/:id
func (h *StudentHandler) Delete(c echo.Context) error {
	if err := h.store.DeleteStudent(c.Request().Context(), c.Param("id")); err != nil {
		return jsonError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
