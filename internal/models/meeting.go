package models

import "time"

// Meeting is a project meeting with its agenda and minutes.
type Meeting struct {
	ID              uint       `gorm:"primaryKey;autoIncrement"`
	ProjectID       uint       `gorm:"not null;index"`
	Title           string     `gorm:"size:255;not null"`
	Description     string     `gorm:"type:text"`
	MeetingDate     *time.Time `gorm:"type:date;not null"`
	StartTime       string     `gorm:"size:5"` // HH:MM
	EndTime         string     `gorm:"size:5"`
	DurationMinutes int
	Kind            string `gorm:"size:20;default:in_person"` // in_person, online, phone
	Link            string `gorm:"size:500"`
	Minutes         string `gorm:"type:text"`
	Participants    string `gorm:"type:json"`
	Status          string `gorm:"size:20;default:scheduled;index"`
	CreatedAt       time.Time
	UpdatedAt       time.Time

	Project Project `gorm:"foreignKey:ProjectID;constraint:OnDelete:CASCADE"`
}
