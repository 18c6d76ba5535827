// Package task provides execution task operations, optionally linking tasks
// to scope leaves.
package task

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/synctech/synctech/internal/models"
)

// Task statuses.
const (
	StatusNotStarted = "not_started"
	StatusInProgress = "in_progress"
	StatusBlocked    = "blocked"
	StatusDone       = "done"
	StatusCancelled  = "cancelled"
)

// Task priorities.
const (
	PriorityLow    = "low"
	PriorityMedium = "medium"
	PriorityHigh   = "high"
	PriorityUrgent = "urgent"
)

var validStatuses = map[string]bool{
	StatusNotStarted: true,
	StatusInProgress: true,
	StatusBlocked:    true,
	StatusDone:       true,
	StatusCancelled:  true,
}

var validPriorities = map[string]bool{
	PriorityLow:    true,
	PriorityMedium: true,
	PriorityHigh:   true,
	PriorityUrgent: true,
}

// CreateOpts holds parameters for creating a task.
type CreateOpts struct {
	ProjectID      uint
	ScopeNodeID    *uint
	Title          string
	Description    string
	Priority       string
	StartDate      *time.Time
	TargetDate     *time.Time
	EstimatedHours float64
	Assignee       string
}

// ListFilters holds optional filters for listing tasks.
type ListFilters struct {
	ProjectID   uint
	ScopeNodeID uint
	Status      string
	Priority    string
	Assignee    string
}

// Create creates a task. A scope node link must point at an existing node of
// the same project.
func Create(db *gorm.DB, opts CreateOpts) (*models.Task, error) {
	if strings.TrimSpace(opts.Title) == "" {
		return nil, fmt.Errorf("task: title is required")
	}
	if opts.Priority == "" {
		opts.Priority = PriorityMedium
	}
	if !validPriorities[opts.Priority] {
		return nil, fmt.Errorf("task: invalid priority %q", opts.Priority)
	}
	var count int64
	if err := db.Model(&models.Project{}).Where("id = ?", opts.ProjectID).Count(&count).Error; err != nil {
		return nil, fmt.Errorf("task: check project %d: %w", opts.ProjectID, err)
	}
	if count == 0 {
		return nil, fmt.Errorf("task: project not found: %d", opts.ProjectID)
	}

	if opts.ScopeNodeID != nil {
		if err := checkScopeNode(db, opts.ProjectID, *opts.ScopeNodeID); err != nil {
			return nil, err
		}
	}

	task := models.Task{
		ProjectID:      opts.ProjectID,
		ScopeNodeID:    opts.ScopeNodeID,
		Title:          strings.TrimSpace(opts.Title),
		Description:    opts.Description,
		Status:         StatusNotStarted,
		Priority:       opts.Priority,
		StartDate:      opts.StartDate,
		TargetDate:     opts.TargetDate,
		EstimatedHours: opts.EstimatedHours,
		Assignee:       opts.Assignee,
	}
	if err := db.Create(&task).Error; err != nil {
		return nil, fmt.Errorf("task: create: %w", err)
	}
	return &task, nil
}

func checkScopeNode(db *gorm.DB, projectID, nodeID uint) error {
	var count int64
	err := db.Model(&models.ScopeNode{}).
		Joins("JOIN scope_containers ON scope_containers.id = scope_nodes.container_id").
		Where("scope_nodes.id = ? AND scope_containers.project_id = ?", nodeID, projectID).
		Count(&count).Error
	if err != nil {
		return fmt.Errorf("task: check scope node %d: %w", nodeID, err)
	}
	if count == 0 {
		return fmt.Errorf("task: scope node %d not found in project %d", nodeID, projectID)
	}
	return nil
}

// Get retrieves a task by ID.
func Get(db *gorm.DB, id uint) (*models.Task, error) {
	var task models.Task
	if err := db.First(&task, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("task: not found: %d", id)
		}
		return nil, fmt.Errorf("task: get %d: %w", id, err)
	}
	return &task, nil
}

// List returns tasks matching the given filters, most urgent first.
func List(db *gorm.DB, filters ListFilters) ([]models.Task, error) {
	q := db.Model(&models.Task{})

	if filters.ProjectID != 0 {
		q = q.Where("project_id = ?", filters.ProjectID)
	}
	if filters.ScopeNodeID != 0 {
		q = q.Where("scope_node_id = ?", filters.ScopeNodeID)
	}
	if filters.Status != "" {
		q = q.Where("status = ?", filters.Status)
	}
	if filters.Priority != "" {
		q = q.Where("priority = ?", filters.Priority)
	}
	if filters.Assignee != "" {
		q = q.Where("assignee = ?", filters.Assignee)
	}

	var tasks []models.Task
	err := q.Order("CASE priority WHEN 'urgent' THEN 0 WHEN 'high' THEN 1 WHEN 'medium' THEN 2 ELSE 3 END, created_at ASC").
		Find(&tasks).Error
	if err != nil {
		return nil, fmt.Errorf("task: list: %w", err)
	}
	return tasks, nil
}

// Update modifies task fields. Moving to done stamps the completion date
// when none was provided.
func Update(db *gorm.DB, id uint, updates map[string]interface{}) error {
	if _, err := Get(db, id); err != nil {
		return err
	}

	if status, ok := updates["status"].(string); ok {
		if !validStatuses[status] {
			return fmt.Errorf("task: invalid status %q", status)
		}
		if status == StatusDone {
			if _, set := updates["completion_date"]; !set {
				updates["completion_date"] = time.Now()
			}
		}
	}
	if priority, ok := updates["priority"].(string); ok && !validPriorities[priority] {
		return fmt.Errorf("task: invalid priority %q", priority)
	}

	if err := db.Model(&models.Task{}).Where("id = ?", id).Updates(updates).Error; err != nil {
		return fmt.Errorf("task: update %d: %w", id, err)
	}
	return nil
}

// LogHours adds worked hours to a task.
func LogHours(db *gorm.DB, id uint, hours float64) error {
	if hours <= 0 {
		return fmt.Errorf("task: hours must be positive")
	}
	res := db.Model(&models.Task{}).Where("id = ?", id).
		Update("worked_hours", gorm.Expr("worked_hours + ?", hours))
	if res.Error != nil {
		return fmt.Errorf("task: log hours on %d: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("task: not found: %d", id)
	}
	return nil
}

// Delete removes a task.
func Delete(db *gorm.DB, id uint) error {
	res := db.Delete(&models.Task{}, id)
	if res.Error != nil {
		return fmt.Errorf("task: delete %d: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("task: not found: %d", id)
	}
	return nil
}
