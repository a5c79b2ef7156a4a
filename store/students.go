package store

import (
	"context"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/classboard/backend/models"
)

func (s *Store) UpsertStudent(ctx context.Context, st *models.Student) error {
	if st.ID == "" {
		return fmt.Errorf("%w: student id is empty", ErrConstraintViolation)
	}
	s.mu.Lock()
	err := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{UpdateAll: true}).
		Create(st).Error
	s.mu.Unlock()
	if err != nil {
		return translate(err)
	}
	s.hub.publish(s.studentTopics(ctx, st.ID)...)
	return nil
}

func (s *Store) UpsertStudents(ctx context.Context, batch []models.Student) error {
	if len(batch) == 0 {
		return nil
	}
	for _, st := range batch {
		if st.ID == "" {
			return fmt.Errorf("%w: student id is empty", ErrConstraintViolation)
		}
	}
	s.mu.Lock()
	err := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{UpdateAll: true}).
		Create(&batch).Error
	s.mu.Unlock()
	if err != nil {
		return translate(err)
	}
	topics := []Topic{StudentsTopic}
	for _, st := range batch {
		topics = append(topics, s.studentTopics(ctx, st.ID)[1:]...)
	}
	s.hub.publish(topics...)
	return nil
}

func (s *Store) GetStudent(ctx context.Context, id string) (*models.Student, error) {
	var st models.Student
	if err := s.db.WithContext(ctx).First(&st, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &st, nil
}

func (s *Store) ListStudents(ctx context.Context) ([]models.Student, error) {
	var out []models.Student
	if err := s.db.WithContext(ctx).Order("name ASC").Find(&out).Error; err != nil {
		return nil, translate(err)
	}
	return out, nil
}

func (s *Store) WatchStudents(ctx context.Context) *Subscription[[]models.Student] {
	return Watch(ctx, s, []Topic{StudentsTopic}, s.ListStudents)
}

// DeleteStudent removes the student and, in the same transaction, every
// roster membership and attendance record that references them.
func (s *Store) DeleteStudent(ctx context.Context, id string) error {
	var classIDs []string
	s.mu.Lock()
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// The affected classes are read inside the transaction so the topic
		// set matches exactly the rows this delete removes. A student taken
		// off a roster can still hold attendance rows in that class, so both
		// tables contribute.
		var memberIDs, attIDs []string
		if err := tx.Model(&models.RosterMember{}).
			Where("student_id = ?", id).
			Distinct().Pluck("class_id", &memberIDs).Error; err != nil {
			return err
		}
		if err := tx.Model(&models.AttendanceRecord{}).
			Where("student_id = ?", id).
			Distinct().Pluck("class_id", &attIDs).Error; err != nil {
			return err
		}
		seen := make(map[string]struct{}, len(memberIDs)+len(attIDs))
		classIDs = classIDs[:0]
		for _, cid := range append(memberIDs, attIDs...) {
			if _, ok := seen[cid]; !ok {
				seen[cid] = struct{}{}
				classIDs = append(classIDs, cid)
			}
		}
		if err := tx.Where("student_id = ?", id).Delete(&models.AttendanceRecord{}).Error; err != nil {
			return err
		}
		if err := tx.Where("student_id = ?", id).Delete(&models.RosterMember{}).Error; err != nil {
			return err
		}
		res := tx.Delete(&models.Student{}, "id = ?", id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
	s.mu.Unlock()
	if err != nil {
		return translate(err)
	}
	topics := []Topic{StudentsTopic}
	for _, cid := range classIDs {
		topics = append(topics, RosterTopic(cid), AttendanceTopic(cid))
	}
	s.hub.publish(topics...)
	return nil
}

// studentTopics is StudentsTopic plus the roster topic of every class the
// student belongs to, so open class views pick up profile edits.
func (s *Store) studentTopics(ctx context.Context, id string) []Topic {
	topics := []Topic{StudentsTopic}
	classIDs, err := s.classIDsForStudent(ctx, id)
	if err != nil {
		s.log.Warn().Err(err).Str("student_id", id).Msg("resolve student memberships")
		return topics
	}
	for _, cid := range classIDs {
		topics = append(topics, RosterTopic(cid))
	}
	return topics
}

func (s *Store) classIDsForStudent(ctx context.Context, id string) ([]string, error) {
	var classIDs []string
	err := s.db.WithContext(ctx).Model(&models.RosterMember{}).
		Where("student_id = ?", id).
		Distinct().Pluck("class_id", &classIDs).Error
	if err != nil {
		return nil, translate(err)
	}
	return classIDs, nil
}
