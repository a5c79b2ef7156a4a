package store

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/classboard/backend/models"
)

func (s *Store) UpsertAnnouncement(ctx context.Context, a *models.Announcement) error {
	if _, err := s.GetClass(ctx, a.ClassID); err != nil {
		return constraintIfMissing(err, "class", a.ClassID)
	}
	if a.Timestamp.IsZero() {
		a.Timestamp = time.Now()
	}
	s.mu.Lock()
	err := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{UpdateAll: true}).
		Create(a).Error
	s.mu.Unlock()
	if err != nil {
		return translate(err)
	}
	s.hub.publish(AnnouncementsTopic(a.ClassID))
	return nil
}

func (s *Store) GetAnnouncement(ctx context.Context, id uint) (*models.Announcement, error) {
	var a models.Announcement
	if err := s.db.WithContext(ctx).First(&a, id).Error; err != nil {
		return nil, translate(err)
	}
	return &a, nil
}

func (s *Store) ListAnnouncementsForClass(ctx context.Context, classID string) ([]models.Announcement, error) {
	var out []models.Announcement
	err := s.db.WithContext(ctx).
		Where("class_id = ?", classID).
		Order("timestamp DESC").
		Find(&out).Error
	if err != nil {
		return nil, translate(err)
	}
	return out, nil
}

func (s *Store) WatchAnnouncements(ctx context.Context, classID string) *Subscription[[]models.Announcement] {
	return Watch(ctx, s, []Topic{AnnouncementsTopic(classID)},
		func(ctx context.Context) ([]models.Announcement, error) {
			return s.ListAnnouncementsForClass(ctx, classID)
		})
}

func (s *Store) DeleteAnnouncement(ctx context.Context, id uint) error {
	a, err := s.GetAnnouncement(ctx, id)
	if err != nil {
		return err
	}
	s.mu.Lock()
	res := s.db.WithContext(ctx).Delete(&models.Announcement{}, id)
	s.mu.Unlock()
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return translate(gorm.ErrRecordNotFound)
	}
	s.hub.publish(AnnouncementsTopic(a.ClassID))
	return nil
}

func (s *Store) DeleteAnnouncementsForClass(ctx context.Context, classID string) error {
	s.mu.Lock()
	res := s.db.WithContext(ctx).
		Where("class_id = ?", classID).
		Delete(&models.Announcement{})
	s.mu.Unlock()
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected > 0 {
		s.hub.publish(AnnouncementsTopic(classID))
	}
	return nil
}
