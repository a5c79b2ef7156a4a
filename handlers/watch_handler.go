package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/classboard/backend/services"
)

type WatchHandler struct {
	reconciler *services.Reconciler
}

func NewWatchHandler(rec *services.Reconciler) *WatchHandler {
	return &WatchHandler{reconciler: rec}
}

// GET /classes/:id/watch
// Streams the reconciled class view over SSE: one JSON snapshot immediately,
// then one per change to the class, its roster, attendance or announcements.
// The stream ends when the client disconnects.
func (h *WatchHandler) ClassView(c echo.Context) error {
	ctx := c.Request().Context()
	if _, err := h.reconciler.View(ctx, c.Param("id")); err != nil {
		return jsonError(c, err)
	}

	res := c.Response()
	res.Header().Set(echo.HeaderContentType, "text/event-stream")
	res.Header().Set("Cache-Control", "no-cache")
	res.Header().Set("Connection", "keep-alive")
	res.WriteHeader(http.StatusOK)

	sub := h.reconciler.WatchView(ctx, c.Param("id"))
	defer sub.Cancel()

	for view := range sub.Updates() {
		data, err := json.Marshal(view)
		if err != nil {
			continue
		}
		if _, err := fmt.Fprintf(res, "data: %s\n\n", data); err != nil {
			return nil // client went away
		}
		res.Flush()
	}
	return nil
}
