// Package client provides client registry operations.
package client

import (
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/synctech/synctech/internal/models"
)

// Person types.
const (
	PersonIndividual = "PF"
	PersonCompany    = "PJ"
)

// CreateOpts holds parameters for registering a new client.
type CreateOpts struct {
	PersonType   string // PF or PJ
	CompanyName  string
	FullName     string
	LegalRep     string
	TradeName    string
	CPF          string
	CNPJ         string
	PostalCode   string
	StreetNumber string
	Address      string
	City         string
	State        string
	Phone        string
	Email        string
	Notes        string
}

// ListFilters holds optional filters for listing clients.
type ListFilters struct {
	PersonType string
	Search     string // matches company name, full name or trade name
	ActiveOnly bool
}

// Create registers a new client. Individuals need a full name and CPF,
// companies need a company name and CNPJ.
func Create(db *gorm.DB, opts CreateOpts) (*models.Client, error) {
	if err := validate(opts); err != nil {
		return nil, err
	}

	c := models.Client{
		PersonType:   opts.PersonType,
		CompanyName:  strings.TrimSpace(opts.CompanyName),
		FullName:     strings.TrimSpace(opts.FullName),
		LegalRep:     opts.LegalRep,
		TradeName:    opts.TradeName,
		CPF:          opts.CPF,
		CNPJ:         opts.CNPJ,
		PostalCode:   opts.PostalCode,
		StreetNumber: opts.StreetNumber,
		Address:      opts.Address,
		City:         opts.City,
		State:        opts.State,
		Phone:        opts.Phone,
		Email:        opts.Email,
		Notes:        opts.Notes,
		Active:       true,
	}
	if err := db.Create(&c).Error; err != nil {
		return nil, fmt.Errorf("client: create: %w", err)
	}
	return &c, nil
}

func validate(opts CreateOpts) error {
	switch opts.PersonType {
	case PersonIndividual:
		if strings.TrimSpace(opts.FullName) == "" {
			return fmt.Errorf("client: full name is required for individuals")
		}
		if opts.CPF == "" {
			return fmt.Errorf("client: CPF is required for individuals")
		}
	case PersonCompany:
		if strings.TrimSpace(opts.CompanyName) == "" {
			return fmt.Errorf("client: company name is required for companies")
		}
		if opts.CNPJ == "" {
			return fmt.Errorf("client: CNPJ is required for companies")
		}
	default:
		return fmt.Errorf("client: person type must be %s or %s, got %q", PersonIndividual, PersonCompany, opts.PersonType)
	}
	return nil
}

// Get retrieves a client by ID.
func Get(db *gorm.DB, id uint) (*models.Client, error) {
	var c models.Client
	if err := db.First(&c, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("client: not found: %d", id)
		}
		return nil, fmt.Errorf("client: get %d: %w", id, err)
	}
	return &c, nil
}

// List returns clients matching the given filters, newest first.
func List(db *gorm.DB, filters ListFilters) ([]models.Client, error) {
	q := db.Model(&models.Client{})

	if filters.PersonType != "" {
		q = q.Where("person_type = ?", filters.PersonType)
	}
	if filters.ActiveOnly {
		q = q.Where("active = ?", true)
	}
	if filters.Search != "" {
		like := "%" + strings.ToLower(filters.Search) + "%"
		q = q.Where("LOWER(company_name) LIKE ? OR LOWER(full_name) LIKE ? OR LOWER(trade_name) LIKE ?", like, like, like)
	}

	var clients []models.Client
	if err := q.Order("created_at DESC").Find(&clients).Error; err != nil {
		return nil, fmt.Errorf("client: list: %w", err)
	}
	return clients, nil
}

// Update modifies client fields. A person type change is re-validated
// against the identity fields already stored.
func Update(db *gorm.DB, id uint, updates map[string]interface{}) error {
	c, err := Get(db, id)
	if err != nil {
		return err
	}

	if pt, ok := updates["person_type"].(string); ok && pt != c.PersonType {
		if pt != PersonIndividual && pt != PersonCompany {
			return fmt.Errorf("client: person type must be %s or %s, got %q", PersonIndividual, PersonCompany, pt)
		}
	}

	if err := db.Model(&models.Client{}).Where("id = ?", id).Updates(updates).Error; err != nil {
		return fmt.Errorf("client: update %d: %w", id, err)
	}
	return nil
}

// Deactivate soft-disables a client without touching its history.
func Deactivate(db *gorm.DB, id uint) error {
	res := db.Model(&models.Client{}).Where("id = ?", id).Update("active", false)
	if res.Error != nil {
		return fmt.Errorf("client: deactivate %d: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("client: not found: %d", id)
	}
	return nil
}

// DisplayName returns the name a client is shown under: company name for
// companies, full name for individuals.
func DisplayName(c *models.Client) string {
	if c.PersonType == PersonCompany {
		return c.CompanyName
	}
	return c.FullName
}
