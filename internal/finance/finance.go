// Package finance provides financial entry operations: ad-hoc entries,
// contract installment generation and the overdue sweep.
package finance

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/synctech/synctech/internal/models"
)

// Entry statuses.
const (
	StatusOpen      = "open"
	StatusPaid      = "paid"
	StatusOverdue   = "overdue"
	StatusCancelled = "cancelled"
)

// Entry directions.
const (
	DirectionIncome  = "income"
	DirectionExpense = "expense"
)

// CreateOpts holds parameters for recording an ad-hoc financial entry.
type CreateOpts struct {
	ContractID    uint
	Direction     string
	Description   string
	Amount        float64
	PaymentMethod string
	DueDate       *time.Time
	Notes         string
}

// ListFilters holds optional filters for listing entries.
type ListFilters struct {
	ContractID uint
	Status     string
	Direction  string
}

// Create records one financial entry under a contract.
func Create(db *gorm.DB, opts CreateOpts) (*models.FinancialEntry, error) {
	if opts.Direction != DirectionIncome && opts.Direction != DirectionExpense {
		return nil, fmt.Errorf("finance: direction must be %s or %s, got %q", DirectionIncome, DirectionExpense, opts.Direction)
	}
	if strings.TrimSpace(opts.Description) == "" {
		return nil, fmt.Errorf("finance: description is required")
	}
	if opts.Amount <= 0 {
		return nil, fmt.Errorf("finance: amount must be positive")
	}
	var count int64
	if err := db.Model(&models.Contract{}).Where("id = ?", opts.ContractID).Count(&count).Error; err != nil {
		return nil, fmt.Errorf("finance: check contract %d: %w", opts.ContractID, err)
	}
	if count == 0 {
		return nil, fmt.Errorf("finance: contract not found: %d", opts.ContractID)
	}

	e := models.FinancialEntry{
		ContractID:    opts.ContractID,
		Direction:     opts.Direction,
		Description:   strings.TrimSpace(opts.Description),
		Amount:        opts.Amount,
		PaymentMethod: opts.PaymentMethod,
		DueDate:       opts.DueDate,
		Status:        StatusOpen,
		Notes:         opts.Notes,
	}
	if err := db.Create(&e).Error; err != nil {
		return nil, fmt.Errorf("finance: create: %w", err)
	}
	return &e, nil
}

// GenerateInstallments materializes a contract's payment plan as income
// entries, one per installment, due monthly starting at firstDue. The
// rounding remainder lands on the last installment so the sum always equals
// the contract value.
func GenerateInstallments(db *gorm.DB, contractID uint, firstDue time.Time) ([]models.FinancialEntry, error) {
	var c models.Contract
	if err := db.First(&c, contractID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("finance: contract not found: %d", contractID)
		}
		return nil, fmt.Errorf("finance: get contract %d: %w", contractID, err)
	}

	var existing int64
	err := db.Model(&models.FinancialEntry{}).
		Where("contract_id = ? AND installment > 0", contractID).
		Count(&existing).Error
	if err != nil {
		return nil, fmt.Errorf("finance: check installments of %d: %w", contractID, err)
	}
	if existing > 0 {
		return nil, fmt.Errorf("finance: contract %d already has installments", contractID)
	}

	n := c.Installments
	if n < 1 {
		n = 1
	}
	per := roundCents(c.ContractValue / float64(n))
	entries := make([]models.FinancialEntry, 0, n)
	for i := 1; i <= n; i++ {
		amount := per
		if i == n {
			amount = roundCents(c.ContractValue - per*float64(n-1))
		}
		due := firstDue.AddDate(0, i-1, 0)
		entries = append(entries, models.FinancialEntry{
			ContractID:  contractID,
			Direction:   DirectionIncome,
			Description: fmt.Sprintf("Contract %d installment %d/%d", c.Number, i, n),
			Amount:      amount,
			DueDate:     &due,
			Status:      StatusOpen,
			Installment: i,
		})
	}

	if err := db.Create(&entries).Error; err != nil {
		return nil, fmt.Errorf("finance: create installments of %d: %w", contractID, err)
	}
	return entries, nil
}

func roundCents(v float64) float64 {
	if v < 0 {
		return -roundCents(-v)
	}
	return float64(int64(v*100+0.5)) / 100
}

// Get retrieves an entry by ID.
func Get(db *gorm.DB, id uint) (*models.FinancialEntry, error) {
	var e models.FinancialEntry
	if err := db.First(&e, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("finance: not found: %d", id)
		}
		return nil, fmt.Errorf("finance: get %d: %w", id, err)
	}
	return &e, nil
}

// List returns entries matching the given filters, earliest due date first.
func List(db *gorm.DB, filters ListFilters) ([]models.FinancialEntry, error) {
	q := db.Model(&models.FinancialEntry{})

	if filters.ContractID != 0 {
		q = q.Where("contract_id = ?", filters.ContractID)
	}
	if filters.Status != "" {
		q = q.Where("status = ?", filters.Status)
	}
	if filters.Direction != "" {
		q = q.Where("direction = ?", filters.Direction)
	}

	var entries []models.FinancialEntry
	if err := q.Order("due_date ASC, id ASC").Find(&entries).Error; err != nil {
		return nil, fmt.Errorf("finance: list: %w", err)
	}
	return entries, nil
}

// MarkPaid settles an open or overdue entry.
func MarkPaid(db *gorm.DB, id uint, paidDate time.Time, method string) error {
	e, err := Get(db, id)
	if err != nil {
		return err
	}
	if e.Status != StatusOpen && e.Status != StatusOverdue {
		return fmt.Errorf("finance: entry %d is %s, only open or overdue entries can be paid", id, e.Status)
	}

	updates := map[string]interface{}{
		"status":    StatusPaid,
		"paid_date": paidDate,
	}
	if method != "" {
		updates["payment_method"] = method
	}
	if err := db.Model(&models.FinancialEntry{}).Where("id = ?", id).Updates(updates).Error; err != nil {
		return fmt.Errorf("finance: update %d: %w", id, err)
	}
	return nil
}

// Cancel voids an unpaid entry.
func Cancel(db *gorm.DB, id uint) error {
	e, err := Get(db, id)
	if err != nil {
		return err
	}
	if e.Status == StatusPaid {
		return fmt.Errorf("finance: entry %d is paid and cannot be cancelled", id)
	}
	if err := db.Model(&models.FinancialEntry{}).Where("id = ?", id).Update("status", StatusCancelled).Error; err != nil {
		return fmt.Errorf("finance: update %d: %w", id, err)
	}
	return nil
}

// MarkOverdue flags open entries whose due date has passed and returns how
// many were touched. Runs on the daily sweep schedule.
func MarkOverdue(db *gorm.DB, now time.Time) (int64, error) {
	res := db.Model(&models.FinancialEntry{}).
		Where("status = ? AND due_date IS NOT NULL AND due_date < ?", StatusOpen, now).
		Update("status", StatusOverdue)
	if res.Error != nil {
		return 0, fmt.Errorf("finance: mark overdue: %w", res.Error)
	}
	return res.RowsAffected, nil
}
