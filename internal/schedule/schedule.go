// Package schedule provides delivery timeline operations: numbered phases
// per project and scope nodes placed inside them.
package schedule

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/synctech/synctech/internal/models"
)

// Phase and item statuses.
const (
	StatusNotStarted = "not_started"
	StatusInProgress = "in_progress"
	StatusDone       = "done"
)

// PhaseOpts holds parameters for adding a phase to a project timeline.
type PhaseOpts struct {
	ProjectID   uint
	Name        string
	Description string
	StartDate   *time.Time
	TargetDate  *time.Time
}

// AddPhase appends a phase with the next number for its project.
func AddPhase(db *gorm.DB, opts PhaseOpts) (*models.SchedulePhase, error) {
	if strings.TrimSpace(opts.Name) == "" {
		return nil, fmt.Errorf("schedule: phase name is required")
	}
	var count int64
	if err := db.Model(&models.Project{}).Where("id = ?", opts.ProjectID).Count(&count).Error; err != nil {
		return nil, fmt.Errorf("schedule: check project %d: %w", opts.ProjectID, err)
	}
	if count == 0 {
		return nil, fmt.Errorf("schedule: project not found: %d", opts.ProjectID)
	}

	var max int
	err := db.Model(&models.SchedulePhase{}).
		Where("project_id = ?", opts.ProjectID).
		Select("COALESCE(MAX(phase_number), 0)").
		Scan(&max).Error
	if err != nil {
		return nil, fmt.Errorf("schedule: next phase number: %w", err)
	}

	phase := models.SchedulePhase{
		ProjectID:   opts.ProjectID,
		PhaseNumber: max + 1,
		Name:        strings.TrimSpace(opts.Name),
		Description: opts.Description,
		StartDate:   opts.StartDate,
		TargetDate:  opts.TargetDate,
		Status:      StatusNotStarted,
	}
	if err := db.Create(&phase).Error; err != nil {
		return nil, fmt.Errorf("schedule: create phase: %w", err)
	}
	return &phase, nil
}

// Phases returns a project's phases in number order, items included.
func Phases(db *gorm.DB, projectID uint) ([]models.SchedulePhase, error) {
	var phases []models.SchedulePhase
	err := db.Preload("Items").
		Where("project_id = ?", projectID).
		Order("phase_number ASC").
		Find(&phases).Error
	if err != nil {
		return nil, fmt.Errorf("schedule: phases of %d: %w", projectID, err)
	}
	return phases, nil
}

// PlaceNode puts a scope node into a phase at the next position. A node can
// sit in at most one phase of its project.
func PlaceNode(db *gorm.DB, phaseID, scopeNodeID uint) (*models.ScheduleItem, error) {
	var phase models.SchedulePhase
	if err := db.First(&phase, phaseID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("schedule: phase not found: %d", phaseID)
		}
		return nil, fmt.Errorf("schedule: get phase %d: %w", phaseID, err)
	}

	var node models.ScopeNode
	if err := db.First(&node, scopeNodeID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("schedule: scope node not found: %d", scopeNodeID)
		}
		return nil, fmt.Errorf("schedule: get scope node %d: %w", scopeNodeID, err)
	}

	var placed int64
	err := db.Model(&models.ScheduleItem{}).
		Joins("JOIN schedule_phases ON schedule_phases.id = schedule_items.phase_id").
		Where("schedule_items.scope_node_id = ? AND schedule_phases.project_id = ?", scopeNodeID, phase.ProjectID).
		Count(&placed).Error
	if err != nil {
		return nil, fmt.Errorf("schedule: check placement of node %d: %w", scopeNodeID, err)
	}
	if placed > 0 {
		return nil, fmt.Errorf("schedule: scope node %d already scheduled in project %d", scopeNodeID, phase.ProjectID)
	}

	var max int
	err = db.Model(&models.ScheduleItem{}).
		Where("phase_id = ?", phaseID).
		Select("COALESCE(MAX(ordering), 0)").
		Scan(&max).Error
	if err != nil {
		return nil, fmt.Errorf("schedule: next item position: %w", err)
	}

	item := models.ScheduleItem{
		PhaseID:     phaseID,
		ScopeNodeID: scopeNodeID,
		StartDate:   node.StartDate,
		TargetDate:  node.TargetDate,
		Status:      StatusNotStarted,
		Order:       max + 1,
	}
	if err := db.Create(&item).Error; err != nil {
		return nil, fmt.Errorf("schedule: place node %d: %w", scopeNodeID, err)
	}
	return &item, nil
}

// RemoveItem takes a scope node out of its phase.
func RemoveItem(db *gorm.DB, itemID uint) error {
	res := db.Delete(&models.ScheduleItem{}, itemID)
	if res.Error != nil {
		return fmt.Errorf("schedule: remove item %d: %w", itemID, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("schedule: item not found: %d", itemID)
	}
	return nil
}

// SetItemStatus updates one item and recomputes its phase's progress and
// status from the done ratio of all items.
func SetItemStatus(db *gorm.DB, itemID uint, status string) error {
	if status != StatusNotStarted && status != StatusInProgress && status != StatusDone {
		return fmt.Errorf("schedule: invalid status %q", status)
	}
	var item models.ScheduleItem
	if err := db.First(&item, itemID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("schedule: item not found: %d", itemID)
		}
		return fmt.Errorf("schedule: get item %d: %w", itemID, err)
	}
	if err := db.Model(&item).Update("status", status).Error; err != nil {
		return fmt.Errorf("schedule: update item %d: %w", itemID, err)
	}
	return recomputePhase(db, item.PhaseID)
}

func recomputePhase(db *gorm.DB, phaseID uint) error {
	var total, done, started int64
	if err := db.Model(&models.ScheduleItem{}).Where("phase_id = ?", phaseID).Count(&total).Error; err != nil {
		return fmt.Errorf("schedule: recompute phase %d: %w", phaseID, err)
	}
	if err := db.Model(&models.ScheduleItem{}).Where("phase_id = ? AND status = ?", phaseID, StatusDone).Count(&done).Error; err != nil {
		return fmt.Errorf("schedule: recompute phase %d: %w", phaseID, err)
	}
	if err := db.Model(&models.ScheduleItem{}).Where("phase_id = ? AND status <> ?", phaseID, StatusNotStarted).Count(&started).Error; err != nil {
		return fmt.Errorf("schedule: recompute phase %d: %w", phaseID, err)
	}

	progress := 0.0
	if total > 0 {
		progress = float64(done) / float64(total) * 100
	}
	status := StatusNotStarted
	switch {
	case total > 0 && done == total:
		status = StatusDone
	case started > 0:
		status = StatusInProgress
	}

	updates := map[string]interface{}{"progress": progress, "status": status}
	if err := db.Model(&models.SchedulePhase{}).Where("id = ?", phaseID).Updates(updates).Error; err != nil {
		return fmt.Errorf("schedule: update phase %d: %w", phaseID, err)
	}
	return nil
}
