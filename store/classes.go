package store

import (
	"context"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/classboard/backend/models"
)

func (s *Store) UpsertClass(ctx context.Context, cr *models.ClassRoom) error {
	if cr.ID == "" {
		return fmt.Errorf("%w: class id is empty", ErrConstraintViolation)
	}
	s.mu.Lock()
	err := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{UpdateAll: true}).
		Create(cr).Error
	s.mu.Unlock()
	if err != nil {
		return translate(err)
	}
	s.hub.publish(ClassesTopic)
	return nil
}

func (s *Store) GetClass(ctx context.Context, id string) (*models.ClassRoom, error) {
	var cr models.ClassRoom
	if err := s.db.WithContext(ctx).First(&cr, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &cr, nil
}

func (s *Store) ListClasses(ctx context.Context) ([]models.ClassRoom, error) {
	var out []models.ClassRoom
	if err := s.db.WithContext(ctx).Order("name ASC").Find(&out).Error; err != nil {
		return nil, translate(err)
	}
	return out, nil
}

func (s *Store) WatchClasses(ctx context.Context) *Subscription[[]models.ClassRoom] {
	return Watch(ctx, s, []Topic{ClassesTopic}, s.ListClasses)
}

// DeleteClass removes the class and all dependent rows (roster memberships,
// attendance records, announcements) in one transaction: either every row
// disappears or none do.
func (s *Store) DeleteClass(ctx context.Context, id string) error {
	s.mu.Lock()
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("class_id = ?", id).Delete(&models.Announcement{}).Error; err != nil {
			return err
		}
		if err := tx.Where("class_id = ?", id).Delete(&models.AttendanceRecord{}).Error; err != nil {
			return err
		}
		if err := tx.Where("class_id = ?", id).Delete(&models.RosterMember{}).Error; err != nil {
			return err
		}
		res := tx.Delete(&models.ClassRoom{}, "id = ?", id)
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
	s.hub.publish(ClassesTopic, RosterTopic(id), AttendanceTopic(id), AnnouncementsTopic(id))
	return nil
}
