// Package contract provides contract lifecycle operations, including
// promotion of approved budgets.
package contract

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/synctech/synctech/internal/budget"
	"github.com/synctech/synctech/internal/models"
)

// Contract statuses.
const (
	StatusActive    = "active"
	StatusCompleted = "completed"
	StatusCancelled = "cancelled"
)

// CreateOpts holds parameters for creating a contract directly.
type CreateOpts struct {
	ClientID     uint
	ProjectID    *uint
	QuotedValue  float64
	Discount     float64
	SignedDate   *time.Time
	Installments int
	Notes        string
}

// ListFilters holds optional filters for listing contracts.
type ListFilters struct {
	ClientID uint
	Status   string
}

// Create creates a contract with the next sequential number. The contract
// value is quoted value minus discount.
func Create(db *gorm.DB, opts CreateOpts) (*models.Contract, error) {
	if opts.QuotedValue <= 0 {
		return nil, fmt.Errorf("contract: quoted value must be positive")
	}
	if opts.Discount < 0 || opts.Discount > opts.QuotedValue {
		return nil, fmt.Errorf("contract: discount %v outside 0..%v", opts.Discount, opts.QuotedValue)
	}
	if opts.Installments < 1 {
		opts.Installments = 1
	}
	var count int64
	if err := db.Model(&models.Client{}).Where("id = ?", opts.ClientID).Count(&count).Error; err != nil {
		return nil, fmt.Errorf("contract: check client %d: %w", opts.ClientID, err)
	}
	if count == 0 {
		return nil, fmt.Errorf("contract: client not found: %d", opts.ClientID)
	}

	number, err := nextNumber(db)
	if err != nil {
		return nil, err
	}

	c := models.Contract{
		ClientID:      opts.ClientID,
		ProjectID:     opts.ProjectID,
		Number:        number,
		QuotedValue:   opts.QuotedValue,
		Discount:      opts.Discount,
		ContractValue: opts.QuotedValue - opts.Discount,
		SignedDate:    opts.SignedDate,
		Installments:  opts.Installments,
		Status:        StatusActive,
	}
	c.Notes = opts.Notes
	if err := db.Create(&c).Error; err != nil {
		return nil, fmt.Errorf("contract: create: %w", err)
	}
	return &c, nil
}

// FromBudget promotes an approved budget into a contract, carrying over its
// client, project and money fields.
func FromBudget(db *gorm.DB, budgetID uint, installments int, signedDate *time.Time) (*models.Contract, error) {
	b, err := budget.Get(db, budgetID)
	if err != nil {
		return nil, fmt.Errorf("contract: %w", err)
	}
	if b.Status != budget.StatusApproved {
		return nil, fmt.Errorf("contract: budget %d is %s, only approved budgets can be promoted", budgetID, b.Status)
	}

	c, err := Create(db, CreateOpts{
		ClientID:     b.ClientID,
		ProjectID:    b.ProjectID,
		QuotedValue:  b.TotalValue,
		Discount:     b.Discount,
		SignedDate:   signedDate,
		Installments: installments,
	})
	if err != nil {
		return nil, err
	}
	if err := db.Model(c).Update("budget_id", budgetID).Error; err != nil {
		return nil, fmt.Errorf("contract: link budget %d: %w", budgetID, err)
	}
	c.BudgetID = &budgetID
	return c, nil
}

func nextNumber(db *gorm.DB) (int, error) {
	var max int
	err := db.Model(&models.Contract{}).
		Select("COALESCE(MAX(number), 0)").
		Scan(&max).Error
	if err != nil {
		return 0, fmt.Errorf("contract: next number: %w", err)
	}
	return max + 1, nil
}

// Get retrieves a contract by ID, preloading its client, project and entries.
func Get(db *gorm.DB, id uint) (*models.Contract, error) {
	var c models.Contract
	err := db.Preload("Client").Preload("Project").Preload("Entries").First(&c, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("contract: not found: %d", id)
		}
		return nil, fmt.Errorf("contract: get %d: %w", id, err)
	}
	return &c, nil
}

// List returns contracts matching the given filters, newest number first.
func List(db *gorm.DB, filters ListFilters) ([]models.Contract, error) {
	q := db.Model(&models.Contract{}).Preload("Client")

	if filters.ClientID != 0 {
		q = q.Where("client_id = ?", filters.ClientID)
	}
	if filters.Status != "" {
		q = q.Where("status = ?", filters.Status)
	}

	var contracts []models.Contract
	if err := q.Order("number DESC").Find(&contracts).Error; err != nil {
		return nil, fmt.Errorf("contract: list: %w", err)
	}
	return contracts, nil
}

// SetStatus marks a contract completed or cancelled. Active is the only
// state a contract can leave.
func SetStatus(db *gorm.DB, id uint, status string) error {
	if status != StatusCompleted && status != StatusCancelled {
		return fmt.Errorf("contract: invalid target status %q", status)
	}
	c, err := Get(db, id)
	if err != nil {
		return err
	}
	if c.Status != StatusActive {
		return fmt.Errorf("contract: %d is %s, only active contracts change status", id, c.Status)
	}
	if err := db.Model(&models.Contract{}).Where("id = ?", id).Update("status", status).Error; err != nil {
		return fmt.Errorf("contract: update %d: %w", id, err)
	}
	return nil
}

// CreateTemplate stores a reusable contract document template.
func CreateTemplate(db *gorm.DB, name, bodyHTML, variables string) (*models.ContractTemplate, error) {
	if strings.TrimSpace(name) == "" {
		return nil, fmt.Errorf("contract: template name is required")
	}
	tpl := models.ContractTemplate{
		Name:      strings.TrimSpace(name),
		BodyHTML:  bodyHTML,
		Variables: variables,
		Active:    true,
	}
	if err := db.Create(&tpl).Error; err != nil {
		return nil, fmt.Errorf("contract: create template: %w", err)
	}
	return &tpl, nil
}

// ListTemplates returns active templates ordered by name.
func ListTemplates(db *gorm.DB) ([]models.ContractTemplate, error) {
	var tpls []models.ContractTemplate
	if err := db.Where("active = ?", true).Order("name ASC").Find(&tpls).Error; err != nil {
		return nil, fmt.Errorf("contract: list templates: %w", err)
	}
	return tpls, nil
}
