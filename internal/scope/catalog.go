// Package scope implements the hierarchical functional-scope editor: a
// 4-level tree of scope nodes with in-memory mutation, bottom-up hour and
// date aggregation, and a top-down persistence flow.
package scope

import (
	"fmt"

	"github.com/synctech/synctech/internal/models"
	"gorm.io/gorm"
)

// Type is one entry of the scope type catalog offered for level-1 nodes.
type Type struct {
	ID          uint
	Name        string
	Description string
	ColorHex    string
	IconName    string
}

// Catalog is an ordered, read-only set of scope types. It is injected into
// the editor at construction and never mutated by it.
type Catalog []Type

// LoadCatalog reads the scope type catalog from the database in display order.
func LoadCatalog(db *gorm.DB) (Catalog, error) {
	var rows []models.ScopeType
	if err := db.Order("ordering ASC, id ASC").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("scope: load catalog: %w", err)
	}
	cat := make(Catalog, len(rows))
	for i, r := range rows {
		cat[i] = Type{
			ID:          r.ID,
			Name:        r.Name,
			Description: r.Description,
			ColorHex:    r.ColorHex,
			IconName:    r.IconName,
		}
	}
	return cat, nil
}

// ByID returns the type with the given id, if present.
func (c Catalog) ByID(id uint) (Type, bool) {
	for _, t := range c {
		if t.ID == id {
			return t, true
		}
	}
	return Type{}, false
}

// Available returns the types not present in used, preserving catalog order.
// The editor calls this when offering level-1 choices so that categories
// already instantiated in the container are not offered again.
func (c Catalog) Available(used []uint) Catalog {
	usedSet := make(map[uint]bool, len(used))
	for _, id := range used {
		usedSet[id] = true
	}
	out := make(Catalog, 0, len(c))
	for _, t := range c {
		if !usedSet[t.ID] {
			out = append(out, t)
		}
	}
	return out
}
