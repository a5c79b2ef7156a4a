package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/classboard/backend/models"
	"github.com/classboard/backend/store"
)

type AnnouncementHandler struct {
	store *store.Store
}

func NewAnnouncementHandler(st *store.Store) *AnnouncementHandler {
	return &AnnouncementHandler{store: st}
}

type announcementPayload struct {
	Title   string `json:"title" validate:"required,max=120"`
	Message string `json:"message" validate:"required"`
}

// GET /classes/:id/announcements
func (h *AnnouncementHandler) ListForClass(c echo.Context) error {
	ctx := c.Request().Context()
	if _, err := h.store.GetClass(ctx, c.Param("id")); err != nil {
		return jsonError(c, err)
	}
	rows, err := h.store.ListAnnouncementsForClass(ctx, c.Param("id"))
	if err != nil {
		return jsonError(c, err)
	}
	return c.JSON(http.StatusOK, rows)
}

// POST /classes/:id/announcements
func (h *AnnouncementHandler) Create(c echo.Context) error {
	var req announcementPayload
	if err := bind(c, &req); err != nil {
		return err
	}
	a := models.Announcement{
		ClassID:   c.Param("id"),
		Title:     req.Title,
		Message:   req.Message,
		Timestamp: time.Now(),
	}
	if err := h.store.UpsertAnnouncement(c.Request().Context(), &a); err != nil {
		return jsonError(c, err)
	}
	return c.JSON(http.StatusCreated, a)
}

// PUT /announcements/:id
func (h *AnnouncementHandler) Update(c echo.Context) error {
	id, err := parseUint(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]any{"error": "INVALID_ID"})
	}
	ctx := c.Request().Context()
	a, err := h.store.GetAnnouncement(ctx, id)
	if err != nil {
		return jsonError(c, err)
	}
	var req announcementPayload
	if err := bind(c, &req); err != nil {
		return err
	}
	a.Title = req.Title
	a.Message = req.Message
	if err := h.store.UpsertAnnouncement(ctx, a); err != nil {
		return jsonError(c, err)
	}
	return c.JSON(http.StatusOK, a)
}

// DELETE /announcements/:id
func (h *AnnouncementHandler) Delete(c echo.Context) error {
	id, err := parseUint(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]any{"error": "INVALID_ID"})
	}
	if err := h.store.DeleteAnnouncement(c.Request().Context(), id); err != nil {
		return jsonError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func parseUint(s string) (uint, error) {
	n, err := strconv.ParseUint(s, 10, 32)
	return uint(n), err
}
