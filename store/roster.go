package store

import (
	"context"

	"gorm.io/gorm/clause"

	"github.com/classboard/backend/models"
)

// AddRosterMember enrolls a student in a class. Re-adding an existing pair is
// a no-op; referencing a missing class or student is a constraint violation.
func (s *Store) AddRosterMember(ctx context.Context, classID, studentID string) error {
	// SQLite only enforces the FK constraints with the pragma on, and the
	// join row carries no parent association GORM could check, so the
	// parents are verified explicitly inside the write lock.
	if _, err := s.GetClass(ctx, classID); err != nil {
		return constraintIfMissing(err, "class", classID)
	}
	if _, err := s.GetStudent(ctx, studentID); err != nil {
		return constraintIfMissing(err, "student", studentID)
	}
	m := models.RosterMember{ClassID: classID, StudentID: studentID}
	s.mu.Lock()
	res := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&m)
	s.mu.Unlock()
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected > 0 {
		s.hub.publish(RosterTopic(classID))
	}
	return nil
}

// RemoveRosterMember drops the membership row. The student's attendance
// records for the class are kept; only deleting the class or the student
// cascades onto them.
func (s *Store) RemoveRosterMember(ctx context.Context, classID, studentID string) error {
	s.mu.Lock()
	res := s.db.WithContext(ctx).
		Where("class_id = ? AND student_id = ?", classID, studentID).
		Delete(&models.RosterMember{})
	s.mu.Unlock()
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected > 0 {
		s.hub.publish(RosterTopic(classID))
	}
	return nil
}

// ListRoster returns the students enrolled in a class, joined through the
// membership rows, ordered by name.
func (s *Store) ListRoster(ctx context.Context, classID string) ([]models.Student, error) {
	var out []models.Student
	err := s.db.WithContext(ctx).Model(&models.Student{}).
		Joins("JOIN roster_members rm ON rm.student_id = students.id").
		Where("rm.class_id = ?", classID).
		Order("students.name ASC").
		Find(&out).Error
	if err != nil {
		return nil, translate(err)
	}
	return out, nil
}

func (s *Store) WatchRoster(ctx context.Context, classID string) *Subscription[[]models.Student] {
	return Watch(ctx, s, []Topic{RosterTopic(classID), StudentsTopic},
		func(ctx context.Context) ([]models.Student, error) {
			return s.ListRoster(ctx, classID)
		})
}
