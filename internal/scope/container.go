package scope

import (
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/synctech/synctech/internal/models"
)

// Container statuses mirror node statuses.

// CreateContainer adds a named scope container to a project, appended after
// the project's existing containers.
func CreateContainer(db *gorm.DB, projectID uint, name, description string) (*models.ScopeContainer, error) {
	if strings.TrimSpace(name) == "" {
		return nil, fmt.Errorf("scope: container name is required")
	}
	var count int64
	if err := db.Model(&models.Project{}).Where("id = ?", projectID).Count(&count).Error; err != nil {
		return nil, fmt.Errorf("scope: check project %d: %w", projectID, err)
	}
	if count == 0 {
		return nil, fmt.Errorf("scope: project not found: %d", projectID)
	}

	var max int
	err := db.Model(&models.ScopeContainer{}).
		Where("project_id = ?", projectID).
		Select("COALESCE(MAX(ordering), 0)").
		Scan(&max).Error
	if err != nil {
		return nil, fmt.Errorf("scope: next container position: %w", err)
	}

	c := models.ScopeContainer{
		ProjectID:   projectID,
		Name:        strings.TrimSpace(name),
		Description: description,
		Status:      StatusPlanned,
		Order:       max + 1,
	}
	if err := db.Create(&c).Error; err != nil {
		return nil, fmt.Errorf("scope: create container: %w", err)
	}
	return &c, nil
}

// GetContainer retrieves a container by ID.
func GetContainer(db *gorm.DB, id uint) (*models.ScopeContainer, error) {
	var c models.ScopeContainer
	if err := db.First(&c, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("scope: container not found: %d", id)
		}
		return nil, fmt.Errorf("scope: get container %d: %w", id, err)
	}
	return &c, nil
}

// ListContainers returns a project's containers in display order.
func ListContainers(db *gorm.DB, projectID uint) ([]models.ScopeContainer, error) {
	var containers []models.ScopeContainer
	err := db.Where("project_id = ?", projectID).
		Order("ordering ASC, id ASC").
		Find(&containers).Error
	if err != nil {
		return nil, fmt.Errorf("scope: list containers of %d: %w", projectID, err)
	}
	return containers, nil
}

// DeleteContainer removes a container and its whole node forest via the
// database cascade.
func DeleteContainer(db *gorm.DB, id uint) error {
	// sqlite connections skip the declared cascade unless foreign_keys is
	// on, so child rows go first.
	if err := db.Where("container_id = ?", id).Delete(&models.ScopeNode{}).Error; err != nil {
		return fmt.Errorf("scope: delete nodes of container %d: %w", id, err)
	}
	res := db.Delete(&models.ScopeContainer{}, id)
	if res.Error != nil {
		return fmt.Errorf("scope: delete container %d: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("scope: container not found: %d", id)
	}
	return nil
}

// NodeUpdate carries the editable fields of a persisted scope node. Nil
// pointers leave the stored value untouched; empty date strings clear the
// date.
type NodeUpdate struct {
	Name           *string
	Description    *string
	Status         *string
	StartDate      *string
	TargetDate     *string
	EstimatedHours *float64
}

var validNodeStatuses = map[string]bool{
	StatusPlanned:    true,
	StatusInProgress: true,
	StatusDone:       true,
	StatusCancelled:  true,
}

// UpdateNode edits a persisted node in place, applying the same rules the
// editor enforces at commit: sibling name uniqueness below level 1, date
// format and ordering, known status.
func UpdateNode(db *gorm.DB, id uint, upd NodeUpdate) (*models.ScopeNode, error) {
	var node models.ScopeNode
	if err := db.First(&node, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("scope: node not found: %d", id)
		}
		return nil, fmt.Errorf("scope: get node %d: %w", id, err)
	}

	if upd.Name != nil {
		if node.Level == 1 {
			return nil, fmt.Errorf("scope: level-1 names derive from the scope type")
		}
		name := strings.TrimSpace(*upd.Name)
		if name == "" {
			return nil, fmt.Errorf("scope: name is required")
		}
		siblings := db.Model(&models.ScopeNode{}).
			Where("container_id = ? AND id <> ? AND LOWER(name) = LOWER(?)", node.ContainerID, node.ID, name)
		if node.ParentID == nil {
			siblings = siblings.Where("parent_id IS NULL")
		} else {
			siblings = siblings.Where("parent_id = ?", *node.ParentID)
		}
		var count int64
		if err := siblings.Count(&count).Error; err != nil {
			return nil, fmt.Errorf("scope: check siblings of %d: %w", id, err)
		}
		if count > 0 {
			return nil, fmt.Errorf("scope: an item named %q already exists at this level", name)
		}
		node.Name = name
	}
	if upd.Description != nil {
		node.Description = *upd.Description
	}
	if upd.Status != nil {
		if !validNodeStatuses[*upd.Status] {
			return nil, fmt.Errorf("scope: invalid status %q", *upd.Status)
		}
		node.Status = *upd.Status
	}
	if upd.StartDate != nil {
		t, err := parseDate(*upd.StartDate)
		if err != nil {
			return nil, fmt.Errorf("scope: invalid date %q: want YYYY-MM-DD", *upd.StartDate)
		}
		node.StartDate = t
	}
	if upd.TargetDate != nil {
		t, err := parseDate(*upd.TargetDate)
		if err != nil {
			return nil, fmt.Errorf("scope: invalid date %q: want YYYY-MM-DD", *upd.TargetDate)
		}
		node.TargetDate = t
	}
	if node.StartDate != nil && node.TargetDate != nil && node.TargetDate.Before(*node.StartDate) {
		return nil, fmt.Errorf("scope: target date %s before start date %s",
			formatDate(node.TargetDate), formatDate(node.StartDate))
	}
	if upd.EstimatedHours != nil {
		if *upd.EstimatedHours < 0 {
			return nil, fmt.Errorf("scope: estimated hours must not be negative")
		}
		node.EstimatedHours = *upd.EstimatedHours
	}

	if err := db.Save(&node).Error; err != nil {
		return nil, fmt.Errorf("scope: update node %d: %w", id, err)
	}
	return &node, nil
}

// DeleteSubtree removes a persisted node and all its descendants, returning
// how many rows were deleted. The editor calls this when a removal targets
// nodes that were already saved.
func DeleteSubtree(db *gorm.DB, nodeID uint) (int64, error) {
	var node models.ScopeNode
	if err := db.First(&node, nodeID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, fmt.Errorf("scope: node not found: %d", nodeID)
		}
		return 0, fmt.Errorf("scope: get node %d: %w", nodeID, err)
	}

	ids := []uint{nodeID}
	frontier := []uint{nodeID}
	for len(frontier) > 0 {
		var children []uint
		err := db.Model(&models.ScopeNode{}).
			Where("parent_id IN ?", frontier).
			Pluck("id", &children).Error
		if err != nil {
			return 0, fmt.Errorf("scope: collect subtree of %d: %w", nodeID, err)
		}
		ids = append(ids, children...)
		frontier = children
	}

	res := db.Delete(&models.ScopeNode{}, ids)
	if res.Error != nil {
		return 0, fmt.Errorf("scope: delete subtree of %d: %w", nodeID, res.Error)
	}
	return res.RowsAffected, nil
}
