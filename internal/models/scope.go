package models

import "time"

// ScopeType is one row of the externally seeded scope category catalog
// ("Frontend", "Backend", ...). At most one level-1 node per type may exist
// within a container.
type ScopeType struct {
	ID          uint   `gorm:"primaryKey;autoIncrement"`
	Name        string `gorm:"size:100;not null;uniqueIndex"`
	Description string `gorm:"type:text"`
	ColorHex    string `gorm:"size:7"`
	IconName    string `gorm:"size:50"`
	Order       int    `gorm:"column:ordering;default:0"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// ScopeContainer is a functional-scope grouping of a project, holding one
// forest of level 1-4 scope nodes.
type ScopeContainer struct {
	ID          uint   `gorm:"primaryKey;autoIncrement"`
	ProjectID   uint   `gorm:"not null;index"`
	Name        string `gorm:"size:255;not null"`
	Description string `gorm:"type:text"`
	Status      string `gorm:"size:20;default:planned"`
	Order       int    `gorm:"column:ordering;default:0"`
	CreatedAt   time.Time
	UpdatedAt   time.Time

	Project Project     `gorm:"foreignKey:ProjectID;constraint:OnDelete:CASCADE"`
	Nodes   []ScopeNode `gorm:"foreignKey:ContainerID"`
}

// ScopeNode is one entry in the 4-level scope hierarchy. Level 1 nodes carry
// a ScopeType reference instead of a free-text name; estimated hours are
// meaningful only on leaves.
type ScopeNode struct {
	ID             uint       `gorm:"primaryKey;autoIncrement"`
	ContainerID    uint       `gorm:"not null;index"`
	ParentID       *uint      `gorm:"index"`
	Level          int        `gorm:"not null"`
	ScopeTypeID    *uint      `gorm:"index"`
	Name           string     `gorm:"size:255"`
	Description    string     `gorm:"type:text"`
	Status         string     `gorm:"size:20;default:planned"`
	StartDate      *time.Time `gorm:"type:date"`
	TargetDate     *time.Time `gorm:"type:date"`
	EstimatedHours float64    `gorm:"type:decimal(10,2)"`
	Order          int        `gorm:"column:ordering;default:0"`
	CreatedAt      time.Time
	UpdatedAt      time.Time

	Container ScopeContainer `gorm:"foreignKey:ContainerID;constraint:OnDelete:CASCADE"`
	Parent    *ScopeNode     `gorm:"foreignKey:ParentID"`
	Children  []ScopeNode    `gorm:"foreignKey:ParentID;constraint:OnDelete:CASCADE"`
	ScopeType *ScopeType     `gorm:"foreignKey:ScopeTypeID"`
}
