package models

import "time"

type AttendanceStatus string

const (
	StatusPresent AttendanceStatus = "PRESENT"
	StatusAbsent  AttendanceStatus = "ABSENT"
	StatusTardy   AttendanceStatus = "TARDY"
	// StatusUnknown means "no explicit record for this student on this date".
	// It is written only by day seeding and synthesized by reads; it is never
	// a status a teacher picks for an already-seeded record.
	StatusUnknown AttendanceStatus = "UNKNOWN"
)

func (s AttendanceStatus) Valid() bool {
	switch s {
	case StatusPresent, StatusAbsent, StatusTardy, StatusUnknown:
		return true
	}
	return false
}

// EditableStatuses are the values a caller may pass when marking a student.
func EditableStatuses() []AttendanceStatus {
	return []AttendanceStatus{StatusPresent, StatusAbsent, StatusTardy}
}

// AttendanceRecord is one student's status in one class on one calendar day.
// The surrogate ID exists for row identity only; all upserts key on the
// composite (class_id, student_id, date) unique index.
type AttendanceRecord struct {
	ID        uint             `gorm:"primaryKey" json:"id"`
	ClassID   string           `gorm:"size:36;not null;uniqueIndex:uniq_attendance_natural,priority:1;index" json:"class_id"`
	StudentID string           `gorm:"size:36;not null;uniqueIndex:uniq_attendance_natural,priority:2" json:"student_id"`
	Date      string           `gorm:"size:10;not null;uniqueIndex:uniq_attendance_natural,priority:3" json:"date"` // YYYY-MM-DD
	Status    AttendanceStatus `gorm:"size:10;not null" json:"status"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
