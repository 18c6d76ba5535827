package db

import (
	"fmt"

	"github.com/synctech/synctech/internal/config"
	"github.com/synctech/synctech/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// AllModels returns the list of all GORM models for migration, ordered so
// that referenced tables are created before their dependents.
func AllModels() []interface{} {
	return []interface{}{
		&models.Client{},
		&models.Technology{},
		&models.Project{},
		&models.ProjectTechnology{},
		&models.Budget{},
		&models.Contract{},
		&models.ContractTemplate{},
		&models.FinancialEntry{},
		&models.Meeting{},
		&models.ScopeType{},
		&models.ScopeContainer{},
		&models.ScopeNode{},
		&models.SchedulePhase{},
		&models.ScheduleItem{},
		&models.Task{},
	}
}

// AutoMigrate creates or updates all tables.
func AutoMigrate(db *gorm.DB) error {
	if err := db.AutoMigrate(AllModels()...); err != nil {
		return fmt.Errorf("db: auto-migrate: %w", err)
	}
	return nil
}

// SeedScopeTypes upserts ScopeType rows from configuration, preserving the
// configured order.
func SeedScopeTypes(db *gorm.DB, types []config.ScopeTypeConfig) error {
	for i, tc := range types {
		st := models.ScopeType{
			Name:        tc.Name,
			Description: tc.Description,
			ColorHex:    tc.ColorHex,
			IconName:    tc.IconName,
			Order:       i,
		}

		result := db.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "name"}},
			DoUpdates: clause.AssignmentColumns([]string{"description", "color_hex", "icon_name", "ordering"}),
		}).Create(&st)
		if result.Error != nil {
			return fmt.Errorf("db: seed scope type %q: %w", tc.Name, result.Error)
		}
	}
	return nil
}
