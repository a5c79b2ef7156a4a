package database

import (
	"fmt"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/classboard/backend/models"
)

// Open connects to the embedded SQLite file at dsn and migrates the schema.
// TranslateError is required so unique/FK violations surface as
// gorm.ErrDuplicatedKey / gorm.ErrForeignKeyViolated instead of raw driver
// errors.
func Open(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if err := db.AutoMigrate(
		&models.Student{},
		&models.ClassRoom{},
		&models.RosterMember{},
		&models.AttendanceRecord{},
		&models.Announcement{},
		&models.User{},
	); err != nil {
		return nil, fmt.Errorf("auto migrate: %w", err)
	}
	return db, nil
}
