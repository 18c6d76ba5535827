package models

import "time"

// Contract formalizes an approved budget. Installments are materialized as
// FinancialEntry rows by the finance package.
type Contract struct {
	ID            uint       `gorm:"primaryKey;autoIncrement"`
	ClientID      uint       `gorm:"not null;index"`
	ProjectID     *uint      `gorm:"index"`
	BudgetID      *uint      `gorm:"index"`
	Number        int        `gorm:"autoIncrement:false"`
	QuotedValue   float64    `gorm:"type:decimal(12,2)"`
	Discount      float64    `gorm:"type:decimal(12,2);default:0"`
	ContractValue float64    `gorm:"type:decimal(12,2)"`
	SignedDate    *time.Time `gorm:"type:date"`
	Installments  int        `gorm:"default:1"`
	Status        string     `gorm:"size:20;default:active;index"`
	Notes         string     `gorm:"type:text"`
	CreatedAt     time.Time
	UpdatedAt     time.Time

	Client  Client           `gorm:"foreignKey:ClientID"`
	Project *Project         `gorm:"foreignKey:ProjectID"`
	Budget  *Budget          `gorm:"foreignKey:BudgetID"`
	Entries []FinancialEntry `gorm:"foreignKey:ContractID"`
}

// ContractTemplate is an HTML body with placeholder variables used by the
// external document generator.
type ContractTemplate struct {
	ID        uint   `gorm:"primaryKey;autoIncrement"`
	Name      string `gorm:"size:255;not null"`
	BodyHTML  string `gorm:"type:text"`
	Variables string `gorm:"type:json"`
	Active    bool   `gorm:"default:true"`
	CreatedAt time.Time
	UpdatedAt time.Time
}
