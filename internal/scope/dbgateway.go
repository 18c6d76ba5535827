package scope

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/synctech/synctech/internal/models"
)

const dateLayout = "2006-01-02"

// DBGateway is the gorm-backed persistence gateway used by Editor.Save.
type DBGateway struct {
	DB *gorm.DB
}

func (g DBGateway) CreateNode(ctx context.Context, req CreateRequest) (uint, error) {
	row := models.ScopeNode{
		ContainerID:    req.ContainerID,
		ParentID:       req.ParentID,
		Level:          req.Level,
		ScopeTypeID:    req.TypeID,
		Name:           req.Name,
		Description:    req.Description,
		Status:         req.Status,
		EstimatedHours: req.EstimatedHours,
		Order:          req.Order,
	}

	var err error
	if row.StartDate, err = parseDate(req.StartDate); err != nil {
		return 0, fmt.Errorf("scope: start date: %w", err)
	}
	if row.TargetDate, err = parseDate(req.TargetDate); err != nil {
		return 0, fmt.Errorf("scope: target date: %w", err)
	}

	if err := g.DB.WithContext(ctx).Create(&row).Error; err != nil {
		return 0, fmt.Errorf("scope: create node: %w", err)
	}
	return row.ID, nil
}

func (g DBGateway) DeleteNode(ctx context.Context, id uint) error {
	if err := g.DB.WithContext(ctx).Delete(&models.ScopeNode{}, id).Error; err != nil {
		return fmt.Errorf("scope: delete node %d: %w", id, err)
	}
	return nil
}

// LoadEditor rebuilds an editor from the persisted nodes of a container.
// Every loaded node is committed and collapsed.
func LoadEditor(db *gorm.DB, catalog Catalog, containerID uint) (*Editor, error) {
	var rows []models.ScopeNode
	err := db.Where("container_id = ?", containerID).
		Order("level ASC, ordering ASC, id ASC").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("scope: load container %d: %w", containerID, err)
	}

	e := NewEditor(catalog, containerID)
	byDBID := make(map[uint]NodeID, len(rows))

	for _, row := range rows {
		n := &Node{
			ID:             NodeID(uuid.NewString()),
			PersistedID:    row.ID,
			Level:          row.Level,
			Name:           row.Name,
			Description:    row.Description,
			Status:         row.Status,
			StartDate:      formatDate(row.StartDate),
			TargetDate:     formatDate(row.TargetDate),
			EstimatedHours: row.EstimatedHours,
			Order:          row.Order,
		}
		if row.ScopeTypeID != nil {
			n.TypeID = *row.ScopeTypeID
		}

		e.nodes[n.ID] = n
		e.ui[n.ID] = &uiState{}
		byDBID[row.ID] = n.ID

		if row.ParentID == nil {
			e.roots = append(e.roots, n.ID)
			continue
		}
		pid, ok := byDBID[*row.ParentID]
		if !ok {
			// Rows come back level-ordered, so a missing parent means the
			// stored tree is inconsistent.
			return nil, fmt.Errorf("scope: node %d references unknown parent %d", row.ID, *row.ParentID)
		}
		e.parent[n.ID] = pid
		e.children[pid] = append(e.children[pid], n.ID)
	}
	return e, nil
}

func parseDate(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func formatDate(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(dateLayout)
}
