package models

import "time"

// RosterMember is the many-to-many join between ClassRoom and Student.
// The composite primary key makes re-adding an existing pair a conflict,
// which the store turns into a no-op.
type RosterMember struct {
	ClassID   string    `gorm:"primaryKey;size:36" json:"class_id"`
	StudentID string    `gorm:"primaryKey;size:36" json:"student_id"`
	CreatedAt time.Time `json:"created_at"`
}
