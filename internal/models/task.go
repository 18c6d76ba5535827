package models

import "time"

// Task is a unit of execution work, optionally tied to a scope leaf.
type Task struct {
	ID             uint       `gorm:"primaryKey;autoIncrement"`
	ProjectID      uint       `gorm:"not null;index"`
	ScopeNodeID    *uint      `gorm:"index"`
	Title          string     `gorm:"size:255;not null"`
	Description    string     `gorm:"type:text"`
	Status         string     `gorm:"size:20;default:not_started;index"`
	Priority       string     `gorm:"size:20;default:medium"`
	StartDate      *time.Time `gorm:"type:date"`
	TargetDate     *time.Time `gorm:"type:date"`
	CompletionDate *time.Time `gorm:"type:date"`
	EstimatedHours float64    `gorm:"type:decimal(10,2)"`
	WorkedHours    float64    `gorm:"type:decimal(10,2);default:0"`
	Assignee       string     `gorm:"size:255"`
	Notes          string     `gorm:"type:text"`
	CreatedAt      time.Time
	UpdatedAt      time.Time

	Project   Project    `gorm:"foreignKey:ProjectID;constraint:OnDelete:CASCADE"`
	ScopeNode *ScopeNode `gorm:"foreignKey:ScopeNodeID;constraint:OnDelete:SET NULL"`
}
