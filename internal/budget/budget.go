// Package budget provides budget (quote) lifecycle operations.
package budget

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/synctech/synctech/internal/models"
)

// Budget statuses.
const (
	StatusDraft    = "draft"
	StatusSent     = "sent"
	StatusApproved = "approved"
	StatusRejected = "rejected"
	StatusExpired  = "expired"
)

// ValidTransitions maps each budget status to its valid next statuses.
var ValidTransitions = map[string][]string{
	StatusDraft:   {StatusSent},
	StatusSent:    {StatusApproved, StatusRejected, StatusExpired},
	StatusExpired: {StatusSent},
}

// CreateOpts holds parameters for drafting a new budget.
type CreateOpts struct {
	ClientID   uint
	ProjectID  *uint
	TotalValue float64
	Discount   float64
	ValidUntil *time.Time
	Notes      string
}

// ListFilters holds optional filters for listing budgets.
type ListFilters struct {
	ClientID uint
	Status   string
}

// Create drafts a new budget with the next sequential number. The final
// value is always total minus discount, never stored independently.
func Create(db *gorm.DB, opts CreateOpts) (*models.Budget, error) {
	if opts.TotalValue <= 0 {
		return nil, fmt.Errorf("budget: total value must be positive")
	}
	if opts.Discount < 0 || opts.Discount > opts.TotalValue {
		return nil, fmt.Errorf("budget: discount %v outside 0..%v", opts.Discount, opts.TotalValue)
	}
	var count int64
	if err := db.Model(&models.Client{}).Where("id = ?", opts.ClientID).Count(&count).Error; err != nil {
		return nil, fmt.Errorf("budget: check client %d: %w", opts.ClientID, err)
	}
	if count == 0 {
		return nil, fmt.Errorf("budget: client not found: %d", opts.ClientID)
	}

	number, err := nextNumber(db)
	if err != nil {
		return nil, err
	}

	b := models.Budget{
		ClientID:   opts.ClientID,
		ProjectID:  opts.ProjectID,
		Number:     number,
		TotalValue: opts.TotalValue,
		Discount:   opts.Discount,
		FinalValue: opts.TotalValue - opts.Discount,
		ValidUntil: opts.ValidUntil,
		Status:     StatusDraft,
		Notes:      opts.Notes,
	}
	if err := db.Create(&b).Error; err != nil {
		return nil, fmt.Errorf("budget: create: %w", err)
	}
	return &b, nil
}

func nextNumber(db *gorm.DB) (int, error) {
	var max int
	err := db.Model(&models.Budget{}).
		Select("COALESCE(MAX(number), 0)").
		Scan(&max).Error
	if err != nil {
		return 0, fmt.Errorf("budget: next number: %w", err)
	}
	return max + 1, nil
}

// Get retrieves a budget by ID, preloading its client and project.
func Get(db *gorm.DB, id uint) (*models.Budget, error) {
	var b models.Budget
	if err := db.Preload("Client").Preload("Project").First(&b, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("budget: not found: %d", id)
		}
		return nil, fmt.Errorf("budget: get %d: %w", id, err)
	}
	return &b, nil
}

// List returns budgets matching the given filters, newest number first.
func List(db *gorm.DB, filters ListFilters) ([]models.Budget, error) {
	q := db.Model(&models.Budget{}).Preload("Client")

	if filters.ClientID != 0 {
		q = q.Where("client_id = ?", filters.ClientID)
	}
	if filters.Status != "" {
		q = q.Where("status = ?", filters.Status)
	}

	var budgets []models.Budget
	if err := q.Order("number DESC").Find(&budgets).Error; err != nil {
		return nil, fmt.Errorf("budget: list: %w", err)
	}
	return budgets, nil
}

// SetStatus moves a budget along its lifecycle. Sending a draft stamps the
// sent date.
func SetStatus(db *gorm.DB, id uint, status string) error {
	b, err := Get(db, id)
	if err != nil {
		return err
	}
	if !isValidTransition(b.Status, status) {
		return fmt.Errorf("budget: invalid status transition from %q to %q", b.Status, status)
	}

	updates := map[string]interface{}{"status": status}
	if status == StatusSent && b.SentDate == nil {
		updates["sent_date"] = time.Now()
	}
	if err := db.Model(&models.Budget{}).Where("id = ?", id).Updates(updates).Error; err != nil {
		return fmt.Errorf("budget: update %d: %w", id, err)
	}
	return nil
}

func isValidTransition(from, to string) bool {
	for _, v := range ValidTransitions[from] {
		if v == to {
			return true
		}
	}
	return false
}

// UpdateValues changes the money fields of a draft budget and recomputes the
// final value. Non-draft budgets are immutable.
func UpdateValues(db *gorm.DB, id uint, totalValue, discount float64) error {
	b, err := Get(db, id)
	if err != nil {
		return err
	}
	if b.Status != StatusDraft {
		return fmt.Errorf("budget: %d is %s, only drafts can be edited", id, b.Status)
	}
	if totalValue <= 0 {
		return fmt.Errorf("budget: total value must be positive")
	}
	if discount < 0 || discount > totalValue {
		return fmt.Errorf("budget: discount %v outside 0..%v", discount, totalValue)
	}

	updates := map[string]interface{}{
		"total_value": totalValue,
		"discount":    discount,
		"final_value": totalValue - discount,
	}
	if err := db.Model(&models.Budget{}).Where("id = ?", id).Updates(updates).Error; err != nil {
		return fmt.Errorf("budget: update %d: %w", id, err)
	}
	return nil
}

// ExpireStale marks sent budgets whose validity date has passed as expired
// and returns how many were touched.
func ExpireStale(db *gorm.DB, now time.Time) (int64, error) {
	res := db.Model(&models.Budget{}).
		Where("status = ? AND valid_until IS NOT NULL AND valid_until < ?", StatusSent, now).
		Update("status", StatusExpired)
	if res.Error != nil {
		return 0, fmt.Errorf("budget: expire stale: %w", res.Error)
	}
	return res.RowsAffected, nil
}
