package models

import "time"

type Student struct {
	ID            string `gorm:"primaryKey;size:36" json:"id"`
	Name          string `gorm:"size:120;not null" json:"name"`
	Email         string `gorm:"size:120" json:"email"`
	Number        string `gorm:"size:20" json:"number"`
	ControlNumber int    `gorm:"not null;default:0" json:"control_number"` // institution-assigned, display only, not a key

	Memberships []RosterMember     `gorm:"foreignKey:StudentID;constraint:OnDelete:CASCADE" json:"-"`
	Attendance  []AttendanceRecord `gorm:"foreignKey:StudentID;constraint:OnDelete:CASCADE" json:"-"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
