package schedule

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
	err = db.AutoMigrate(
		&models.Client{}, &models.Project{}, &models.ScopeContainer{},
		&models.ScopeNode{}, &models.SchedulePhase{}, &models.ScheduleItem{},
	)
	if err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func seedProject(t *testing.T, db *gorm.DB) uint {
	t.Helper()
	c := models.Client{PersonType: "PJ", CompanyName: "Acme Ltda", CNPJ: "1", Active: true}
	if err := db.Create(&c).Error; err != nil {
		t.Fatalf("seed client: %v", err)
	}
	p := models.Project{ClientID: c.ID, Name: "Portal", Status: "in_progress"}
	if err := db.Create(&p).Error; err != nil {
		t.Fatalf("seed project: %v", err)
	}
	return p.ID
}

func seedNode(t *testing.T, db *gorm.DB, projectID uint, name string) uint {
	t.Helper()
	container := models.ScopeContainer{ProjectID: projectID, Name: "MVP"}
	if err := db.Create(&container).Error; err != nil {
		t.Fatalf("seed container: %v", err)
	}
	node := models.ScopeNode{ContainerID: container.ID, Level: 2, Name: name, Status: "planned"}
	if err := db.Create(&node).Error; err != nil {
		t.Fatalf("seed node: %v", err)
	}
	return node.ID
}

func TestAddPhase_Numbering(t *testing.T) {
	db := openTestDB(t)
	projectID := seedProject(t, db)

	for i, name := range []string{"Discovery", "Build", "Launch"} {
		phase, err := AddPhase(db, PhaseOpts{ProjectID: projectID, Name: name})
		if err != nil {
			t.Fatalf("AddPhase: %v", err)
		}
		if phase.PhaseNumber != i+1 {
			t.Errorf("PhaseNumber = %d, want %d", phase.PhaseNumber, i+1)
		}
	}

	other := seedProject(t, db)
	phase, err := AddPhase(db, PhaseOpts{ProjectID: other, Name: "Discovery"})
	if err != nil {
		t.Fatalf("AddPhase: %v", err)
	}
	if phase.PhaseNumber != 1 {
		t.Errorf("numbering should restart per project, got %d", phase.PhaseNumber)
	}

	if _, err := AddPhase(db, PhaseOpts{ProjectID: projectID, Name: " "}); err == nil {
		t.Errorf("blank name: expected error")
	}
	if _, err := AddPhase(db, PhaseOpts{ProjectID: 999, Name: "Orphan"}); err == nil {
		t.Errorf("unknown project: expected error")
	}
}

func TestPlaceNode_OncePerProject(t *testing.T) {
	db := openTestDB(t)
	projectID := seedProject(t, db)
	nodeID := seedNode(t, db, projectID, "Login screen")

	first, err := AddPhase(db, PhaseOpts{ProjectID: projectID, Name: "Build"})
	if err != nil {
		t.Fatalf("AddPhase: %v", err)
	}
	second, err := AddPhase(db, PhaseOpts{ProjectID: projectID, Name: "Polish"})
	if err != nil {
		t.Fatalf("AddPhase: %v", err)
	}

	item, err := PlaceNode(db, first.ID, nodeID)
	if err != nil {
		t.Fatalf("PlaceNode: %v", err)
	}
	if item.Order != 1 {
		t.Errorf("Order = %d, want 1", item.Order)
	}

	if _, err := PlaceNode(db, second.ID, nodeID); err == nil {
		t.Errorf("placing the same node twice in one project: expected error")
	}
	if _, err := PlaceNode(db, first.ID, 999); err == nil {
		t.Errorf("unknown node: expected error")
	}
	if _, err := PlaceNode(db, 999, nodeID); err == nil {
		t.Errorf("unknown phase: expected error")
	}
}

func TestSetItemStatus_RollsUpPhase(t *testing.T) {
	db := openTestDB(t)
	projectID := seedProject(t, db)
	phase, err := AddPhase(db, PhaseOpts{ProjectID: projectID, Name: "Build"})
	if err != nil {
		t.Fatalf("AddPhase: %v", err)
	}

	a, err := PlaceNode(db, phase.ID, seedNode(t, db, projectID, "Login"))
	if err != nil {
		t.Fatalf("PlaceNode: %v", err)
	}
	b, err := PlaceNode(db, phase.ID, seedNode(t, db, projectID, "Signup"))
	if err != nil {
		t.Fatalf("PlaceNode: %v", err)
	}

	if err := SetItemStatus(db, a.ID, StatusDone); err != nil {
		t.Fatalf("SetItemStatus: %v", err)
	}
	var got models.SchedulePhase
	if err := db.First(&got, phase.ID).Error; err != nil {
		t.Fatalf("load phase: %v", err)
	}
	if got.Status != StatusInProgress || got.Progress != 50 {
		t.Errorf("phase = %q %v%%, want in_progress 50%%", got.Status, got.Progress)
	}

	if err := SetItemStatus(db, b.ID, StatusDone); err != nil {
		t.Fatalf("SetItemStatus: %v", err)
	}
	if err := db.First(&got, phase.ID).Error; err != nil {
		t.Fatalf("load phase: %v", err)
	}
	if got.Status != StatusDone || got.Progress != 100 {
		t.Errorf("phase = %q %v%%, want done 100%%", got.Status, got.Progress)
	}

	if err := SetItemStatus(db, a.ID, "bogus"); err == nil {
		t.Errorf("invalid status: expected error")
	}
}
