package routes

import (
	"time"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/classboard/backend/config"
	"github.com/classboard/backend/handlers"
	"github.com/classboard/backend/middlewares"
	"github.com/classboard/backend/services"
	"github.com/classboard/backend/store"
)

type Deps struct {
	Cfg        *config.Config
	DB         *gorm.DB
	Store      *store.Store
	Reconciler *services.Reconciler
	Attendance *services.AttendanceService
}

// Register wires all HTTP routes.
func Register(e *echo.Echo, d Deps) {
	auth := handlers.NewAuthHandler(d.DB, d.Cfg.JWTSecret, time.Duration(d.Cfg.TokenTTLHours)*time.Hour)
	std := handlers.NewStudentHandler(d.Store)
	cls := handlers.NewClassHandler(d.Store)
	att := handlers.NewAttendanceHandler(d.Attendance, d.Reconciler)
	ann := handlers.NewAnnouncementHandler(d.Store)
	sts := handlers.NewStatsHandler(d.Reconciler)
	wch := handlers.NewWatchHandler(d.Reconciler)

	// ===== Public =====
	e.GET("/health", handlers.Health)
	e.POST("/auth/login", auth.Login)

	// ===== Staff (teacher or admin) =====
	authMW := middlewares.RequireAuth(d.Cfg.JWTSecret)
	staff := e.Group("", authMW, middlewares.RequireRole("teacher", "admin"))

	staff.GET("/students", std.List)
	staff.GET("/students/:id", std.Get)
	staff.POST("/students", std.Create)
	staff.PUT("/students/:id", std.Update)
	staff.DELETE("/students/:id", std.Delete)

	staff.GET("/classes", cls.List)
	staff.GET("/classes/:id", cls.Get)
	staff.POST("/classes", cls.Create)
	staff.PUT("/classes/:id", cls.Update)
	staff.DELETE("/classes/:id", cls.Delete)

	staff.GET("/classes/:id/roster", cls.Roster)
	staff.POST("/classes/:id/roster", cls.AddToRoster)
	staff.DELETE("/classes/:id/roster/:studentId", cls.RemoveFromRoster)

	staff.POST("/classes/:id/attendance/open", att.Open)
	staff.POST("/classes/:id/attendance/mark", att.Mark)
	staff.GET("/classes/:id/attendance/sheet", att.Sheet)
	staff.GET("/classes/:id/attendance/history", att.History)
	staff.GET("/classes/:id/attendance/dates", att.Dates)
	staff.GET("/classes/:id/attendance/statuses", att.Statuses)
	staff.GET("/classes/:id/attendance/stats", sts.ClassStats)

	staff.GET("/classes/:id/announcements", ann.ListForClass)
	staff.POST("/classes/:id/announcements", ann.Create)
	staff.PUT("/announcements/:id", ann.Update)
	staff.DELETE("/announcements/:id", ann.Delete)

	staff.GET("/classes/:id/watch", wch.ClassView)

	staff.PUT("/profile/password", auth.ChangePassword)

	// ===== Admin =====
	admin := e.Group("/admin", authMW, middlewares.RequireRole("admin"))
	admin.POST("/users", auth.CreateUser)
}
