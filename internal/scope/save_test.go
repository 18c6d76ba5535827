package scope

import (
	"context"
	"errors"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/synctech/synctech/internal/models"
)

// fakeGateway records creates and deletes and can fail the nth create.
type fakeGateway struct {
	nextID  uint
	created []CreateRequest
	ids     []uint
	deleted []uint
	failAt  int // 1-based create index to fail on, 0 = never
}

func (g *fakeGateway) CreateNode(_ context.Context, req CreateRequest) (uint, error) {
	if g.failAt != 0 && len(g.created)+1 == g.failAt {
		return 0, errors.New("boom")
	}
	g.nextID++
	g.created = append(g.created, req)
	g.ids = append(g.ids, g.nextID)
	return g.nextID, nil
}

func (g *fakeGateway) DeleteNode(_ context.Context, id uint) error {
	g.deleted = append(g.deleted, id)
	return nil
}

func TestSave_ThreadsParentIDs(t *testing.T) {
	e, root, auth := buildTree(t)
	gw := &fakeGateway{}
	if err := e.Save(context.Background(), gw); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if len(gw.created) != 5 {
		t.Fatalf("created %d nodes, want 5", len(gw.created))
	}

	// Roots go out first, with no parent and the container id attached.
	first := gw.created[0]
	if first.Level != 1 || first.ParentID != nil {
		t.Errorf("first create: level=%d parent=%v, want root", first.Level, first.ParentID)
	}
	if first.ContainerID != e.ContainerID() {
		t.Errorf("ContainerID = %d, want %d", first.ContainerID, e.ContainerID())
	}
	if first.TypeID == nil || *first.TypeID != 1 {
		t.Errorf("root create missing scope type id")
	}

	rn, _ := e.Node(root)
	an, _ := e.Node(auth)
	if rn.PersistedID == 0 || an.PersistedID == 0 {
		t.Fatalf("persisted ids not recorded: root=%d auth=%d", rn.PersistedID, an.PersistedID)
	}

	// Every non-root create must carry its parent's freshly assigned id.
	for i, req := range gw.created {
		if req.Level == 1 {
			continue
		}
		if req.ParentID == nil {
			t.Fatalf("create %d (level %d): nil parent id", i, req.Level)
		}
		var found bool
		for j := 0; j < i; j++ {
			if gw.ids[j] == *req.ParentID {
				if gw.created[j].Level != req.Level-1 {
					t.Errorf("create %d: parent level %d, want %d", i, gw.created[j].Level, req.Level-1)
				}
				found = true
			}
		}
		if !found {
			t.Errorf("create %d references parent id %d not created earlier", i, *req.ParentID)
		}
	}
}

func TestSave_SkipsPersistedNodes(t *testing.T) {
	e, root, _ := buildTree(t)
	gw := &fakeGateway{}
	if err := e.Save(context.Background(), gw); err != nil {
		t.Fatalf("first Save: %v", err)
	}

	rn, _ := e.Node(root)
	extra := addChild(t, e, root, "Settings", 3)

	gw2 := &fakeGateway{nextID: 100}
	if err := e.Save(context.Background(), gw2); err != nil {
		t.Fatalf("second Save: %v", err)
	}
	if len(gw2.created) != 1 {
		t.Fatalf("second save created %d nodes, want 1", len(gw2.created))
	}
	req := gw2.created[0]
	if req.Name != "Settings" {
		t.Errorf("created %q, want Settings", req.Name)
	}
	if req.ParentID == nil || *req.ParentID != rn.PersistedID {
		t.Errorf("new child should hang off the already persisted parent id %d", rn.PersistedID)
	}
	en, _ := e.Node(extra)
	if en.PersistedID != 101 {
		t.Errorf("PersistedID = %d, want 101", en.PersistedID)
	}
}

func TestSave_RejectsUncommittedEdits(t *testing.T) {
	e, root, _ := buildTree(t)
	mustAdd(t, e, root, 2) // still in edit mode

	gw := &fakeGateway{}
	if err := e.Save(context.Background(), gw); err == nil {
		t.Fatalf("Save with an editing node: expected error")
	}
	if len(gw.created) != 0 {
		t.Errorf("nothing should be written, got %d creates", len(gw.created))
	}
}

func TestSave_RollsBackOnFailure(t *testing.T) {
	e, _, _ := buildTree(t)
	gw := &fakeGateway{failAt: 3}

	if err := e.Save(context.Background(), gw); err == nil {
		t.Fatalf("Save: expected error")
	}
	if len(gw.created) != 2 {
		t.Fatalf("created %d before failure, want 2", len(gw.created))
	}
	if len(gw.deleted) != 2 {
		t.Fatalf("deleted %d, want 2", len(gw.deleted))
	}
	// Compensating deletes run newest-first.
	if gw.deleted[0] != gw.ids[1] || gw.deleted[1] != gw.ids[0] {
		t.Errorf("deletes %v not in reverse creation order %v", gw.deleted, gw.ids)
	}
	// Rolled-back nodes must look unsaved so a retry re-creates them.
	for id, n := range e.nodes {
		if n.PersistedID != 0 {
			t.Errorf("node %q kept PersistedID %d after rollback", id, n.PersistedID)
		}
	}

	retry := &fakeGateway{}
	if err := e.Save(context.Background(), retry); err != nil {
		t.Fatalf("retry Save: %v", err)
	}
	if len(retry.created) != e.Len() {
		t.Errorf("retry created %d nodes, want %d", len(retry.created), e.Len())
	}
}

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(&models.ScopeType{}, &models.ScopeContainer{}, &models.ScopeNode{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func TestDBGateway_RoundTrip(t *testing.T) {
	db := openTestDB(t)
	gw := DBGateway{DB: db}

	e, root, _ := buildTree(t)
	if err := e.Save(context.Background(), gw); err != nil {
		t.Fatalf("Save: %v", err)
	}

	loaded, err := LoadEditor(db, testCatalog(), e.ContainerID())
	if err != nil {
		t.Fatalf("LoadEditor: %v", err)
	}
	if loaded.Len() != e.Len() {
		t.Fatalf("loaded %d nodes, want %d", loaded.Len(), e.Len())
	}
	if len(loaded.Roots()) != 1 {
		t.Fatalf("loaded %d roots, want 1", len(loaded.Roots()))
	}

	lr := loaded.Roots()[0]
	ln, _ := loaded.Node(lr)
	rn, _ := e.Node(root)
	if ln.TypeID != rn.TypeID || ln.Name != rn.Name {
		t.Errorf("root round trip: got type=%d name=%q, want type=%d name=%q", ln.TypeID, ln.Name, rn.TypeID, rn.Name)
	}
	if loaded.IsEditing(lr) || loaded.IsExpanded(lr) {
		t.Errorf("loaded nodes should be committed and collapsed")
	}

	if got, want := loaded.TotalHours(lr), e.TotalHours(root); got != want {
		t.Errorf("TotalHours = %v, want %v", got, want)
	}
	if got, want := loaded.EarliestStart(lr), e.EarliestStart(root); got != want {
		t.Errorf("EarliestStart = %q, want %q", got, want)
	}
	if got, want := loaded.LatestTarget(lr), e.LatestTarget(root); got != want {
		t.Errorf("LatestTarget = %q, want %q", got, want)
	}
}

func TestDBGateway_DatesSurviveStorage(t *testing.T) {
	db := openTestDB(t)
	gw := DBGateway{DB: db}

	id, err := gw.CreateNode(context.Background(), CreateRequest{
		ContainerID: 1,
		Level:       2,
		Name:        "Login",
		Status:      StatusPlanned,
		StartDate:   "2026-01-10",
		TargetDate:  "2026-02-01",
	})
	if err != nil {
		t.Fatalf("CreateNode: %v", err)
	}

	var row models.ScopeNode
	if err := db.First(&row, id).Error; err != nil {
		t.Fatalf("load row: %v", err)
	}
	if got := formatDate(row.StartDate); got != "2026-01-10" {
		t.Errorf("StartDate = %q, want 2026-01-10", got)
	}
	if got := formatDate(row.TargetDate); got != "2026-02-01" {
		t.Errorf("TargetDate = %q, want 2026-02-01", got)
	}

	if _, err := gw.CreateNode(context.Background(), CreateRequest{Level: 2, Name: "Bad", StartDate: "nonsense"}); err == nil {
		t.Errorf("malformed date should be rejected")
	}
}
