package models

import "time"

// FinancialEntry is one money movement under a contract, either a whole
// payment or one installment of it.
type FinancialEntry struct {
	ID            uint       `gorm:"primaryKey;autoIncrement"`
	ContractID    uint       `gorm:"not null;index"`
	Direction     string     `gorm:"size:10;not null"` // income, expense
	Description   string     `gorm:"size:255;not null"`
	Amount        float64    `gorm:"type:decimal(12,2);not null"`
	PaymentMethod string     `gorm:"size:20"` // pix, credit_card, bank_slip, cash
	DueDate       *time.Time `gorm:"type:date"`
	PaidDate      *time.Time `gorm:"type:date"`
	Status        string     `gorm:"size:20;default:open;index"`
	Installment   int
	Notes         string `gorm:"type:text"`
	CreatedAt     time.Time
	UpdatedAt     time.Time

	Contract Contract `gorm:"foreignKey:ContractID"`
}
