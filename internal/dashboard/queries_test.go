package dashboard

import (
	"testing"
	"time"

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
		&models.Client{}, &models.Project{}, &models.Contract{},
		&models.FinancialEntry{}, &models.Meeting{}, &models.Task{},
	)
	if err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func seed(t *testing.T, db *gorm.DB) uint {
	t.Helper()
	c := models.Client{PersonType: "PJ", CompanyName: "Acme Ltda", CNPJ: "1", Active: true}
	if err := db.Create(&c).Error; err != nil {
		t.Fatalf("seed client: %v", err)
	}

	for _, status := range []string{"in_progress", "in_progress", "done", "not_started"} {
		p := models.Project{ClientID: c.ID, Name: "P " + status, Status: status}
		if err := db.Create(&p).Error; err != nil {
			t.Fatalf("seed project: %v", err)
		}
	}

	ct := models.Contract{ClientID: c.ID, Number: 1, QuotedValue: 1000, ContractValue: 1000, Status: "active"}
	if err := db.Create(&ct).Error; err != nil {
		t.Fatalf("seed contract: %v", err)
	}
	entries := []models.FinancialEntry{
		{ContractID: ct.ID, Direction: "income", Description: "a", Amount: 300, Status: "open"},
		{ContractID: ct.ID, Direction: "income", Description: "b", Amount: 200, Status: "overdue"},
		{ContractID: ct.ID, Direction: "income", Description: "c", Amount: 500, Status: "paid"},
		{ContractID: ct.ID, Direction: "expense", Description: "d", Amount: 50, Status: "paid"},
	}
	if err := db.Create(&entries).Error; err != nil {
		t.Fatalf("seed entries: %v", err)
	}
	return c.ID
}

func TestProjectSummary(t *testing.T) {
	db := openTestDB(t)
	seed(t, db)

	pc, err := ProjectSummary(db)
	if err != nil {
		t.Fatalf("ProjectSummary: %v", err)
	}
	if pc.Total != 4 || pc.InProgress != 2 || pc.Done != 1 || pc.NotStarted != 1 {
		t.Errorf("ProjectSummary = %+v", pc)
	}
}

func TestFinancePosition(t *testing.T) {
	db := openTestDB(t)
	seed(t, db)

	fs, err := FinancePosition(db)
	if err != nil {
		t.Fatalf("FinancePosition: %v", err)
	}
	if fs.OpenIncome != 300 || fs.OverdueIncome != 200 || fs.PaidIncome != 500 || fs.PaidExpense != 50 {
		t.Errorf("FinancePosition = %+v", fs)
	}
	if fs.OverdueCount != 1 {
		t.Errorf("OverdueCount = %d, want 1", fs.OverdueCount)
	}
}

func TestUpcomingMeetings(t *testing.T) {
	db := openTestDB(t)
	seed(t, db)

	var project models.Project
	if err := db.First(&project).Error; err != nil {
		t.Fatalf("load project: %v", err)
	}

	now := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
	dates := []struct {
		day    int
		status string
	}{
		{day: -3, status: "scheduled"}, // past, skipped
		{day: 2, status: "scheduled"},
		{day: 5, status: "cancelled"}, // not scheduled, skipped
		{day: 9, status: "scheduled"},
	}
	for _, d := range dates {
		date := now.AddDate(0, 0, d.day)
		m := models.Meeting{ProjectID: project.ID, Title: "Sync", MeetingDate: &date, StartTime: "10:00", Status: d.status}
		if err := db.Create(&m).Error; err != nil {
			t.Fatalf("seed meeting: %v", err)
		}
	}

	agenda, err := UpcomingMeetings(db, now, 5)
	if err != nil {
		t.Fatalf("UpcomingMeetings: %v", err)
	}
	if len(agenda) != 2 {
		t.Fatalf("agenda has %d entries, want 2", len(agenda))
	}
	if agenda[0].MeetingDate.After(agenda[1].MeetingDate) {
		t.Errorf("agenda not in date order")
	}
	if agenda[0].ProjectName == "" {
		t.Errorf("project name not joined in")
	}
}

func TestBuild(t *testing.T) {
	db := openTestDB(t)
	seed(t, db)

	var project models.Project
	if err := db.First(&project).Error; err != nil {
		t.Fatalf("load project: %v", err)
	}
	tasks := []models.Task{
		{ProjectID: project.ID, Title: "A", Status: "not_started", Priority: "urgent"},
		{ProjectID: project.ID, Title: "B", Status: "in_progress", Priority: "medium"},
		{ProjectID: project.ID, Title: "C", Status: "done", Priority: "high"},
	}
	if err := db.Create(&tasks).Error; err != nil {
		t.Fatalf("seed tasks: %v", err)
	}

	ov, err := Build(db, time.Now())
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if ov.Projects.Total != 4 {
		t.Errorf("Projects.Total = %d, want 4", ov.Projects.Total)
	}
	if ov.Tasks.Total != 2 || ov.Tasks.Urgent != 1 {
		t.Errorf("Tasks = %+v", ov.Tasks)
	}
	if ov.Finance == nil {
		t.Errorf("Build left the finance block nil")
	}
}
