package models

import "time"

// Client is a customer the agency bills, either an individual or a company.
type Client struct {
	ID           uint   `gorm:"primaryKey;autoIncrement"`
	PersonType   string `gorm:"size:2;not null"` // "PF" individual, "PJ" company
	CompanyName  string `gorm:"size:255"`
	FullName     string `gorm:"size:255"`
	LegalRep     string `gorm:"size:255"`
	TradeName    string `gorm:"size:255"`
	CPF          string `gorm:"size:14"`
	CNPJ         string `gorm:"size:18"`
	PostalCode   string `gorm:"size:10"`
	StreetNumber string `gorm:"size:20"`
	Address      string `gorm:"type:text"`
	City         string `gorm:"size:100"`
	State        string `gorm:"size:2"`
	Phone        string `gorm:"size:20"`
	Email        string `gorm:"size:255"`
	Notes        string `gorm:"type:text"`
	Active       bool   `gorm:"default:true"`
	CreatedAt    time.Time
	UpdatedAt    time.Time

	Projects []Project `gorm:"foreignKey:ClientID"`
}
