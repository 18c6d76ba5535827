package models

import "time"

// SchedulePhase is one numbered delivery phase of a project timeline.
type SchedulePhase struct {
	ID          uint       `gorm:"primaryKey;autoIncrement"`
	ProjectID   uint       `gorm:"not null;index"`
	PhaseNumber int        `gorm:"not null"`
	Name        string     `gorm:"size:255;not null"`
	Description string     `gorm:"type:text"`
	StartDate   *time.Time `gorm:"type:date"`
	TargetDate  *time.Time `gorm:"type:date"`
	Status      string     `gorm:"size:20;default:not_started"`
	Progress    float64    `gorm:"type:decimal(5,2);default:0"`
	CreatedAt   time.Time
	UpdatedAt   time.Time

	Project Project        `gorm:"foreignKey:ProjectID;constraint:OnDelete:CASCADE"`
	Items   []ScheduleItem `gorm:"foreignKey:PhaseID"`
}

// ScheduleItem places a scope node inside a delivery phase.
type ScheduleItem struct {
	ID          uint       `gorm:"primaryKey;autoIncrement"`
	PhaseID     uint       `gorm:"not null;index"`
	ScopeNodeID uint       `gorm:"not null;index"`
	StartDate   *time.Time `gorm:"type:date"`
	TargetDate  *time.Time `gorm:"type:date"`
	Status      string     `gorm:"size:20;default:not_started"`
	Order       int        `gorm:"column:ordering;default:0"`
	CreatedAt   time.Time
	UpdatedAt   time.Time

	Phase     SchedulePhase `gorm:"foreignKey:PhaseID;constraint:OnDelete:CASCADE"`
	ScopeNode ScopeNode     `gorm:"foreignKey:ScopeNodeID;constraint:OnDelete:CASCADE"`
}
