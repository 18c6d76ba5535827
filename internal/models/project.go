package models

import "time"

// Project is a client engagement tracked from first contact to delivery.
type Project struct {
	ID             uint       `gorm:"primaryKey;autoIncrement"`
	ClientID       uint       `gorm:"not null;index"`
	Name           string     `gorm:"size:255;not null"`
	Description    string     `gorm:"type:text"`
	Status         string     `gorm:"size:50;default:not_started;index"`
	StartDate      *time.Time `gorm:"type:date"`
	TargetDate     *time.Time `gorm:"type:date"`
	CompletionDate *time.Time `gorm:"type:date"`
	EstimatedHours float64    `gorm:"type:decimal(10,2)"`
	WorkedHours    float64    `gorm:"type:decimal(10,2);default:0"`
	EstimatedValue float64    `gorm:"type:decimal(12,2)"`
	Progress       float64    `gorm:"type:decimal(5,2);default:0"`
	Notes          string     `gorm:"type:text"`
	CreatedAt      time.Time
	UpdatedAt      time.Time

	Client       Client              `gorm:"foreignKey:ClientID"`
	Technologies []ProjectTechnology `gorm:"foreignKey:ProjectID"`
	Containers   []ScopeContainer    `gorm:"foreignKey:ProjectID"`
}

// Technology is a catalog entry of tools and stacks used across projects.
type Technology struct {
	ID          uint   `gorm:"primaryKey;autoIncrement"`
	Name        string `gorm:"size:100;not null"`
	Category    string `gorm:"size:50"`
	Version     string `gorm:"size:20"`
	Description string `gorm:"type:text"`
	ColorHex    string `gorm:"size:7"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// ProjectTechnology links a project to a technology, optionally pinning the
// version actually used.
type ProjectTechnology struct {
	ID           uint   `gorm:"primaryKey;autoIncrement"`
	ProjectID    uint   `gorm:"not null;index:idx_project_technology,unique"`
	TechnologyID uint   `gorm:"not null;index:idx_project_technology,unique"`
	VersionUsed  string `gorm:"size:20"`
	CreatedAt    time.Time

	Technology Technology `gorm:"foreignKey:TechnologyID"`
}
