package services

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/classboard/backend/models"
	"github.com/classboard/backend/store"
)

var (
	// ErrInvalidDate rejects anything that is not a YYYY-MM-DD calendar date.
	ErrInvalidDate = errors.New("invalid date")
	// ErrStatusNotAllowed rejects statuses a caller may not persist, in
	// particular UNKNOWN, which only day seeding writes.
	ErrStatusNotAllowed = errors.New("status not allowed")
)

// AttendanceStore is the slice of the persistence engine the day protocol
// writes through.
type AttendanceStore interface {
	GetClass(ctx context.Context, id string) (*models.ClassRoom, error)
	ListRoster(ctx context.Context, classID string) ([]models.Student, error)
	QueryAttendance(ctx context.Context, classID, date string) ([]models.AttendanceRecord, error)
	SeedAttendanceRecords(ctx context.Context, batch []models.AttendanceRecord) (int, error)
	UpsertAttendanceRecord(ctx context.Context, rec *models.AttendanceRecord) error
}

// AttendanceService is the write-side protocol for attendance days: opening
// (seeding) a day and marking individual students.
type AttendanceService struct {
	store AttendanceStore
	log   zerolog.Logger
}

func NewAttendance(st AttendanceStore, log zerolog.Logger) *AttendanceService {
	return &AttendanceService{store: st, log: log.With().Str("component", "attendance").Logger()}
}

// OpenDay seeds one UNKNOWN record per current roster member for (classID,
// date) in a single batch, which is what makes the date available. Re-opening
// an already seeded day is a no-op. An empty roster seeds nothing and the
// date stays unavailable. Returns the number of records seeded.
func (a *AttendanceService) OpenDay(ctx context.Context, classID, date string) (int, error) {
	if err := checkDate(date); err != nil {
		return 0, err
	}
	if _, err := a.store.GetClass(ctx, classID); err != nil {
		return 0, err
	}
	existing, err := a.store.QueryAttendance(ctx, classID, date)
	if err != nil {
		return 0, err
	}
	if len(existing) > 0 {
		return 0, nil
	}
	roster, err := a.store.ListRoster(ctx, classID)
	if err != nil {
		return 0, err
	}
	if len(roster) == 0 {
		return 0, nil
	}
	batch := make([]models.AttendanceRecord, 0, len(roster))
	for _, st := range roster {
		batch = append(batch, models.AttendanceRecord{
			ClassID:   classID,
			StudentID: st.ID,
			Date:      date,
			Status:    models.StatusUnknown,
		})
	}
	// The seed never replaces existing rows, so a status marked between the
	// existence check above and this write survives the seed.
	seeded, err := a.store.SeedAttendanceRecords(ctx, batch)
	if errors.Is(err, store.ErrStorageIO) {
		// One retry for a transient storage failure; the seed skips rows the
		// first attempt may have committed, so replaying it is harmless.
		// ConstraintViolation means a stale reference and is never retried.
		a.log.Warn().Err(err).Str("class_id", classID).Str("date", date).Msg("retrying day seeding")
		seeded, err = a.store.SeedAttendanceRecords(ctx, batch)
	}
	if err != nil {
		return 0, err
	}
	return seeded, nil
}

// SetStatus records one student's status for a date, replacing any prior
// record for the same (class, student, date). Marking before the day was
// opened is allowed and seeds just that record; callers should open the day
// first so the rest of the roster is represented.
func (a *AttendanceService) SetStatus(ctx context.Context, classID, studentID, date string, status models.AttendanceStatus) error {
	if err := checkDate(date); err != nil {
		return err
	}
	if status == models.StatusUnknown || !status.Valid() {
		return ErrStatusNotAllowed
	}
	rec := models.AttendanceRecord{
		ClassID:   classID,
		StudentID: studentID,
		Date:      date,
		Status:    status,
	}
	return a.store.UpsertAttendanceRecord(ctx, &rec)
}

func checkDate(date string) error {
	if _, err := time.Parse("2006-01-02", date); err != nil {
		return ErrInvalidDate
	}
	return nil
}
