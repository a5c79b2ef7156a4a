package main

import (
	"os"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"

	"github.com/classboard/backend/config"
	"github.com/classboard/backend/database"
	"github.com/classboard/backend/handlers"
	"github.com/classboard/backend/routes"
	"github.com/classboard/backend/services"
	"github.com/classboard/backend/store"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	log := zerolog.New(os.Stderr).With().Timestamp().Logger()
	if cfg.AppEnv == "dev" {
		log = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}

	// fail early if the database file is unusable
	db, err := database.Open(cfg.DSN())
	if err != nil {
		log.Fatal().Err(err).Msg("open database")
	}
	if err := handlers.EnsureAdmin(db, cfg.AdminUsername, cfg.AdminPassword); err != nil {
		log.Fatal().Err(err).Msg("bootstrap admin account")
	}

	st := store.New(db, log)
	deps := routes.Deps{
		Cfg:        cfg,
		DB:         db,
		Store:      st,
		Reconciler: services.NewReconciler(st),
		Attendance: services.NewAttendance(st, log),
	}

	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Recover())
	e.Use(middleware.Logger())
	e.Use(middleware.CORS())

	routes.Register(e, deps)

	addr := ":" + cfg.AppPort
	log.Info().Str("addr", addr).Str("db", cfg.DBPath).Msg("server listening")
	if err := e.Start(addr); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
}
