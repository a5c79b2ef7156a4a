package models

import "time"

type Announcement struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	ClassID   string    `gorm:"size:36;not null;index" json:"class_id"`
	Title     string    `gorm:"size:120;not null" json:"title"`
	Message   string    `gorm:"type:text" json:"message"`
	Timestamp time.Time `gorm:"not null" json:"timestamp"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
