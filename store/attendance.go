package store

import (
	"context"
	"fmt"

	"gorm.io/gorm/clause"

	"github.com/classboard/backend/models"
)

// attendanceConflict targets the natural key, not the surrogate id: writing
// a status for an existing (class, student, date) triple updates that row in
// place and the caller never needs to know the row id.
var attendanceConflict = clause.OnConflict{
	Columns: []clause.Column{
		{Name: "class_id"}, {Name: "student_id"}, {Name: "date"},
	},
	DoUpdates: clause.AssignmentColumns([]string{"status", "updated_at"}),
}

func (s *Store) UpsertAttendanceRecord(ctx context.Context, rec *models.AttendanceRecord) error {
	if err := s.checkAttendanceRecord(ctx, rec); err != nil {
		return err
	}
	s.mu.Lock()
	err := s.db.WithContext(ctx).Clauses(attendanceConflict).Create(rec).Error
	s.mu.Unlock()
	if err != nil {
		return translate(err)
	}
	s.hub.publish(AttendanceTopic(rec.ClassID))
	return nil
}

// UpsertAttendanceRecords writes the batch in a single all-or-nothing
// statement, replacing any existing rows on the natural key.
func (s *Store) UpsertAttendanceRecords(ctx context.Context, batch []models.AttendanceRecord) error {
	if len(batch) == 0 {
		return nil
	}
	for i := range batch {
		if err := s.checkAttendanceRecord(ctx, &batch[i]); err != nil {
			return err
		}
	}
	s.mu.Lock()
	err := s.db.WithContext(ctx).Clauses(attendanceConflict).Create(&batch).Error
	s.mu.Unlock()
	if err != nil {
		return translate(err)
	}
	seen := map[string]struct{}{}
	var topics []Topic
	for _, rec := range batch {
		if _, ok := seen[rec.ClassID]; !ok {
			seen[rec.ClassID] = struct{}{}
			topics = append(topics, AttendanceTopic(rec.ClassID))
		}
	}
	s.hub.publish(topics...)
	return nil
}

// SeedAttendanceRecords inserts the batch but never replaces: a triple that
// already has a record keeps it. Day seeding writes through here so a status
// marked concurrently with the seed can never be clobbered back to UNKNOWN.
// Returns the number of records actually inserted.
func (s *Store) SeedAttendanceRecords(ctx context.Context, batch []models.AttendanceRecord) (int, error) {
	if len(batch) == 0 {
		return 0, nil
	}
	for i := range batch {
		if err := s.checkAttendanceRecord(ctx, &batch[i]); err != nil {
			return 0, err
		}
	}
	s.mu.Lock()
	res := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{
				{Name: "class_id"}, {Name: "student_id"}, {Name: "date"},
			},
			DoNothing: true,
		}).
		Create(&batch)
	s.mu.Unlock()
	if res.Error != nil {
		return 0, translate(res.Error)
	}
	if res.RowsAffected > 0 {
		seen := map[string]struct{}{}
		var topics []Topic
		for _, rec := range batch {
			if _, ok := seen[rec.ClassID]; !ok {
				seen[rec.ClassID] = struct{}{}
				topics = append(topics, AttendanceTopic(rec.ClassID))
			}
		}
		s.hub.publish(topics...)
	}
	return int(res.RowsAffected), nil
}

func (s *Store) checkAttendanceRecord(ctx context.Context, rec *models.AttendanceRecord) error {
	if !rec.Status.Valid() {
		return fmt.Errorf("%w: invalid status %q", ErrConstraintViolation, rec.Status)
	}
	if rec.Date == "" {
		return fmt.Errorf("%w: date is empty", ErrConstraintViolation)
	}
	if _, err := s.GetClass(ctx, rec.ClassID); err != nil {
		return constraintIfMissing(err, "class", rec.ClassID)
	}
	if _, err := s.GetStudent(ctx, rec.StudentID); err != nil {
		return constraintIfMissing(err, "student", rec.StudentID)
	}
	return nil
}

// QueryAttendance returns the stored records for one class on one date.
// Roster members without a record are not represented here; the reconciler
// synthesizes those.
func (s *Store) QueryAttendance(ctx context.Context, classID, date string) ([]models.AttendanceRecord, error) {
	var out []models.AttendanceRecord
	err := s.db.WithContext(ctx).
		Where("class_id = ? AND date = ?", classID, date).
		Find(&out).Error
	if err != nil {
		return nil, translate(err)
	}
	return out, nil
}

// QueryAttendanceHistory returns every stored record for the class, all
// dates, unsorted.
func (s *Store) QueryAttendanceHistory(ctx context.Context, classID string) ([]models.AttendanceRecord, error) {
	var out []models.AttendanceRecord
	err := s.db.WithContext(ctx).
		Where("class_id = ?", classID).
		Find(&out).Error
	if err != nil {
		return nil, translate(err)
	}
	return out, nil
}

func (s *Store) WatchAttendance(ctx context.Context, classID string) *Subscription[[]models.AttendanceRecord] {
	return Watch(ctx, s, []Topic{AttendanceTopic(classID)},
		func(ctx context.Context) ([]models.AttendanceRecord, error) {
			return s.QueryAttendanceHistory(ctx, classID)
		})
}
