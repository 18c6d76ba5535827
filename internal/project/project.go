// Package project provides project lifecycle and technology catalog
// operations.
package project

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/synctech/synctech/internal/models"
)

// Project statuses.
const (
	StatusNotStarted = "not_started"
	StatusInProgress = "in_progress"
	StatusPaused     = "paused"
	StatusDone       = "done"
	StatusCancelled  = "cancelled"
)

var validStatuses = map[string]bool{
	StatusNotStarted: true,
	StatusInProgress: true,
	StatusPaused:     true,
	StatusDone:       true,
	StatusCancelled:  true,
}

// CreateOpts holds parameters for creating a new project.
type CreateOpts struct {
	ClientID       uint
	Name           string
	Description    string
	StartDate      *time.Time
	TargetDate     *time.Time
	EstimatedHours float64
	EstimatedValue float64
	Notes          string
}

// ListFilters holds optional filters for listing projects.
type ListFilters struct {
	ClientID uint
	Status   string
	Search   string
}

// Create creates a new project for an existing client.
func Create(db *gorm.DB, opts CreateOpts) (*models.Project, error) {
	if strings.TrimSpace(opts.Name) == "" {
		return nil, fmt.Errorf("project: name is required")
	}
	var count int64
	if err := db.Model(&models.Client{}).Where("id = ?", opts.ClientID).Count(&count).Error; err != nil {
		return nil, fmt.Errorf("project: check client %d: %w", opts.ClientID, err)
	}
	if count == 0 {
		return nil, fmt.Errorf("project: client not found: %d", opts.ClientID)
	}

	p := models.Project{
		ClientID:       opts.ClientID,
		Name:           strings.TrimSpace(opts.Name),
		Description:    opts.Description,
		Status:         StatusNotStarted,
		StartDate:      opts.StartDate,
		TargetDate:     opts.TargetDate,
		EstimatedHours: opts.EstimatedHours,
		EstimatedValue: opts.EstimatedValue,
		Notes:          opts.Notes,
	}
	if err := db.Create(&p).Error; err != nil {
		return nil, fmt.Errorf("project: create: %w", err)
	}
	return &p, nil
}

// Get retrieves a project by ID, preloading its client and technologies.
func Get(db *gorm.DB, id uint) (*models.Project, error) {
	var p models.Project
	err := db.Preload("Client").
		Preload("Technologies.Technology").
		Preload("Containers").
		First(&p, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("project: not found: %d", id)
		}
		return nil, fmt.Errorf("project: get %d: %w", id, err)
	}
	return &p, nil
}

// List returns projects matching the given filters, newest first.
func List(db *gorm.DB, filters ListFilters) ([]models.Project, error) {
	q := db.Model(&models.Project{}).Preload("Client")

	if filters.ClientID != 0 {
		q = q.Where("client_id = ?", filters.ClientID)
	}
	if filters.Status != "" {
		q = q.Where("status = ?", filters.Status)
	}
	if filters.Search != "" {
		q = q.Where("LOWER(name) LIKE ?", "%"+strings.ToLower(filters.Search)+"%")
	}

	var projects []models.Project
	if err := q.Order("created_at DESC").Find(&projects).Error; err != nil {
		return nil, fmt.Errorf("project: list: %w", err)
	}
	return projects, nil
}

// Update modifies project fields. Moving to done stamps the completion date
// when none was provided.
func Update(db *gorm.DB, id uint, updates map[string]interface{}) error {
	var p models.Project
	if err := db.First(&p, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("project: not found: %d", id)
		}
		return fmt.Errorf("project: get %d for update: %w", id, err)
	}

	if status, ok := updates["status"].(string); ok {
		if !validStatuses[status] {
			return fmt.Errorf("project: invalid status %q", status)
		}
		if status == StatusDone {
			if _, set := updates["completion_date"]; !set {
				updates["completion_date"] = time.Now()
			}
		}
	}

	if err := db.Model(&models.Project{}).Where("id = ?", id).Updates(updates).Error; err != nil {
		return fmt.Errorf("project: update %d: %w", id, err)
	}
	return nil
}

// Delete removes a project. Meetings, tasks, scope containers and schedule
// rows go with it through the database cascade.
func Delete(db *gorm.DB, id uint) error {
	res := db.Delete(&models.Project{}, id)
	if res.Error != nil {
		return fmt.Errorf("project: delete %d: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("project: not found: %d", id)
	}
	return nil
}

// CreateTechnology adds an entry to the technology catalog.
func CreateTechnology(db *gorm.DB, name, category, version, colorHex string) (*models.Technology, error) {
	if strings.TrimSpace(name) == "" {
		return nil, fmt.Errorf("project: technology name is required")
	}
	tech := models.Technology{
		Name:     strings.TrimSpace(name),
		Category: category,
		Version:  version,
		ColorHex: colorHex,
	}
	if err := db.Create(&tech).Error; err != nil {
		return nil, fmt.Errorf("project: create technology: %w", err)
	}
	return &tech, nil
}

// ListTechnologies returns the whole technology catalog ordered by name.
func ListTechnologies(db *gorm.DB) ([]models.Technology, error) {
	var techs []models.Technology
	if err := db.Order("name ASC").Find(&techs).Error; err != nil {
		return nil, fmt.Errorf("project: list technologies: %w", err)
	}
	return techs, nil
}

// AttachTechnology links a technology to a project. Attaching the same pair
// twice is rejected by the unique index.
func AttachTechnology(db *gorm.DB, projectID, technologyID uint, versionUsed string) error {
	var count int64
	if err := db.Model(&models.Technology{}).Where("id = ?", technologyID).Count(&count).Error; err != nil {
		return fmt.Errorf("project: check technology %d: %w", technologyID, err)
	}
	if count == 0 {
		return fmt.Errorf("project: technology not found: %d", technologyID)
	}

	link := models.ProjectTechnology{
		ProjectID:    projectID,
		TechnologyID: technologyID,
		VersionUsed:  versionUsed,
	}
	if err := db.Create(&link).Error; err != nil {
		return fmt.Errorf("project: attach technology %d to %d: %w", technologyID, projectID, err)
	}
	return nil
}

// DetachTechnology removes a project/technology link.
func DetachTechnology(db *gorm.DB, projectID, technologyID uint) error {
	res := db.Where("project_id = ? AND technology_id = ?", projectID, technologyID).
		Delete(&models.ProjectTechnology{})
	if res.Error != nil {
		return fmt.Errorf("project: detach technology %d from %d: %w", technologyID, projectID, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("project: technology %d not attached to %d", technologyID, projectID)
	}
	return nil
}
