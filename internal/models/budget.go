package models

import "time"

// Budget is a quote sent to a client, optionally tied to a project.
type Budget struct {
	ID         uint       `gorm:"primaryKey;autoIncrement"`
	ClientID   uint       `gorm:"not null;index"`
	ProjectID  *uint      `gorm:"index"`
	Number     int        `gorm:"autoIncrement:false"`
	SentDate   *time.Time `gorm:"type:date"`
	ValidUntil *time.Time `gorm:"type:date"`
	TotalValue float64    `gorm:"type:decimal(12,2)"`
	Discount   float64    `gorm:"type:decimal(12,2);default:0"`
	FinalValue float64    `gorm:"type:decimal(12,2)"`
	Status     string     `gorm:"size:20;default:draft;index"`
	Notes      string     `gorm:"type:text"`
	CreatedAt  time.Time
	UpdatedAt  time.Time

	Client  Client   `gorm:"foreignKey:ClientID"`
	Project *Project `gorm:"foreignKey:ProjectID"`
}
