package models

import "time"

type ClassRoom struct {
	ID      string `gorm:"primaryKey;size:36" json:"id"`
	Name    string `gorm:"size:120;not null" json:"name"`
	Color   string `gorm:"size:20" json:"color"` // accent color, e.g. "#7C4DFF"
	Degree  string `gorm:"size:60" json:"degree"`
	Career  string `gorm:"size:120" json:"career"`
	Section string `gorm:"size:20" json:"section"`

	Roster        []RosterMember     `gorm:"foreignKey:ClassID;constraint:OnDelete:CASCADE" json:"-"`
	Attendance    []AttendanceRecord `gorm:"foreignKey:ClassID;constraint:OnDelete:CASCADE" json:"-"`
	Announcements []Announcement     `gorm:"foreignKey:ClassID;constraint:OnDelete:CASCADE" json:"-"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
