package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/classboard/backend/models"
	"github.com/classboard/backend/services"
)

type StatsHandler struct {
	reconciler *services.Reconciler
}

func NewStatsHandler(rec *services.Reconciler) *StatsHandler {
	return &StatsHandler{reconciler: rec}
}

type dateStats struct {
	Date    string `json:"date"`
	Present int    `json:"present"`
	Absent  int    `json:"absent"`
	Tardy   int    `json:"tardy"`
	Unknown int    `json:"unknown"`
}

// GET /classes/:id/attendance/stats
// Status counts per available date, newest first. Counts come from the
// reconciled sheets, so roster members without a stored record count as
// UNKNOWN.
func (h *StatsHandler) ClassStats(c echo.Context) error {
	sheets, err := h.reconciler.History(c.Request().Context(), c.Param("id"))
	if err != nil {
		return jsonError(c, err)
	}
	out := make([]dateStats, 0, len(sheets))
	for _, sh := range sheets {
		st := dateStats{Date: sh.Date}
		for _, e := range sh.Entries {
			switch e.Status {
			case models.StatusPresent:
				st.Present++
			case models.StatusAbsent:
				st.Absent++
			case models.StatusTardy:
				st.Tardy++
			default:
				st.Unknown++
			}
		}
		out = append(out, st)
	}
	return c.JSON(http.StatusOK, out)
}
