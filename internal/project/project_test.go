package project

import (
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/synctech/synctech/internal/models"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	err = db.AutoMigrate(&models.Client{}, &models.Project{}, &models.Technology{}, &models.ProjectTechnology{}, &models.ScopeContainer{})
	if err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func seedClient(t *testing.T, db *gorm.DB) uint {
	t.Helper()
	c := models.Client{PersonType: "PJ", CompanyName: "Acme Ltda", CNPJ: "1", Active: true}
	if err := db.Create(&c).Error; err != nil {
		t.Fatalf("seed client: %v", err)
	}
	return c.ID
}

func TestCreate(t *testing.T) {
	db := openTestDB(t)
	clientID := seedClient(t, db)

	p, err := Create(db, CreateOpts{ClientID: clientID, Name: "  Portal  ", EstimatedHours: 120})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if p.Name != "Portal" {
		t.Errorf("Name = %q, want trimmed Portal", p.Name)
	}
	if p.Status != StatusNotStarted {
		t.Errorf("Status = %q, want %q", p.Status, StatusNotStarted)
	}

	if _, err := Create(db, CreateOpts{ClientID: clientID, Name: "  "}); err == nil {
		t.Errorf("blank name: expected error")
	}
	if _, err := Create(db, CreateOpts{ClientID: 999, Name: "Orphan"}); err == nil {
		t.Errorf("unknown client: expected error")
	}
}

func TestUpdate_StatusRules(t *testing.T) {
	db := openTestDB(t)
	p, err := Create(db, CreateOpts{ClientID: seedClient(t, db), Name: "Portal"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if err := Update(db, p.ID, map[string]interface{}{"status": "bogus"}); err == nil {
		t.Fatalf("invalid status: expected error")
	}

	if err := Update(db, p.ID, map[string]interface{}{"status": StatusDone}); err != nil {
		t.Fatalf("Update: %v", err)
	}
	got, err := Get(db, p.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Status != StatusDone {
		t.Errorf("Status = %q, want done", got.Status)
	}
	if got.CompletionDate == nil {
		t.Errorf("moving to done should stamp the completion date")
	}
}

func TestGet_PreloadsContainers(t *testing.T) {
	db := openTestDB(t)
	p, err := Create(db, CreateOpts{ClientID: seedClient(t, db), Name: "Portal"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	mvp := models.ScopeContainer{ProjectID: p.ID, Name: "MVP", Status: "planned", Order: 1}
	if err := db.Create(&mvp).Error; err != nil {
		t.Fatalf("seed container: %v", err)
	}

	got, err := Get(db, p.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if len(got.Containers) != 1 || got.Containers[0].Name != "MVP" {
		t.Errorf("Containers = %+v, want the seeded MVP container", got.Containers)
	}
}

func TestTechnologies(t *testing.T) {
	db := openTestDB(t)
	p, err := Create(db, CreateOpts{ClientID: seedClient(t, db), Name: "Portal"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	goTech, err := CreateTechnology(db, "Go", "backend", "1.26", "#00ADD8")
	if err != nil {
		t.Fatalf("CreateTechnology: %v", err)
	}

	if err := AttachTechnology(db, p.ID, goTech.ID, "1.26"); err != nil {
		t.Fatalf("AttachTechnology: %v", err)
	}
	if err := AttachTechnology(db, p.ID, goTech.ID, "1.26"); err == nil {
		t.Errorf("duplicate attach: expected unique index violation")
	}
	if err := AttachTechnology(db, p.ID, 999, ""); err == nil {
		t.Errorf("unknown technology: expected error")
	}

	got, err := Get(db, p.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if len(got.Technologies) != 1 || got.Technologies[0].Technology.Name != "Go" {
		t.Fatalf("Technologies = %+v, want one Go entry", got.Technologies)
	}

	if err := DetachTechnology(db, p.ID, goTech.ID); err != nil {
		t.Fatalf("DetachTechnology: %v", err)
	}
	if err := DetachTechnology(db, p.ID, goTech.ID); err == nil {
		t.Errorf("detach twice: expected error")
	}
}

func TestList_Filters(t *testing.T) {
	db := openTestDB(t)
	clientID := seedClient(t, db)
	otherID := seedClient(t, db)

	for _, name := range []string{"Portal", "Mobile App"} {
		if _, err := Create(db, CreateOpts{ClientID: clientID, Name: name}); err != nil {
			t.Fatalf("Create: %v", err)
		}
	}
	if _, err := Create(db, CreateOpts{ClientID: otherID, Name: "Intranet"}); err != nil {
		t.Fatalf("Create: %v", err)
	}

	byClient, err := List(db, ListFilters{ClientID: clientID})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(byClient) != 2 {
		t.Errorf("ClientID filter returned %d, want 2", len(byClient))
	}

	bySearch, err := List(db, ListFilters{Search: "intra"})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(bySearch) != 1 || bySearch[0].Name != "Intranet" {
		t.Errorf("Search filter returned %+v", bySearch)
	}
}
