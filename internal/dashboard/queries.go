// Package dashboard aggregates the landing-page metrics: project and task
// counts, the financial position and the upcoming agenda.
package dashboard

import (
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/synctech/synctech/internal/models"
)

// ProjectStatusCount holds project counts grouped by status.
type ProjectStatusCount struct {
	NotStarted int `json:"not_started"`
	InProgress int `json:"in_progress"`
	Paused     int `json:"paused"`
	Done       int `json:"done"`
	Cancelled  int `json:"cancelled"`
	Total      int `json:"total"`
}

// ProjectSummary returns project counts grouped by status.
func ProjectSummary(db *gorm.DB) (*ProjectStatusCount, error) {
	type row struct {
		Status string
		Count  int
	}
	var rows []row
	err := db.Model(&models.Project{}).
		Select("status, count(*) as count").
		Group("status").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("dashboard: project summary: %w", err)
	}

	var pc ProjectStatusCount
	for _, r := range rows {
		pc.Total += r.Count
		switch r.Status {
		case "not_started":
			pc.NotStarted += r.Count
		case "in_progress":
			pc.InProgress += r.Count
		case "paused":
			pc.Paused += r.Count
		case "done":
			pc.Done += r.Count
		case "cancelled":
			pc.Cancelled += r.Count
		}
	}
	return &pc, nil
}

// FinanceSummary holds the money position over open and paid entries.
type FinanceSummary struct {
	OpenIncome    float64 `json:"open_income"`
	OverdueIncome float64 `json:"overdue_income"`
	PaidIncome    float64 `json:"paid_income"`
	PaidExpense   float64 `json:"paid_expense"`
	OverdueCount  int     `json:"overdue_count"`
}

// FinancePosition sums financial entries by status and direction.
func FinancePosition(db *gorm.DB) (*FinanceSummary, error) {
	type row struct {
		Direction string
		Status    string
		Total     float64
		Count     int
	}
	var rows []row
	err := db.Model(&models.FinancialEntry{}).
		Select("direction, status, COALESCE(SUM(amount), 0) as total, count(*) as count").
		Group("direction, status").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("dashboard: finance position: %w", err)
	}

	var fs FinanceSummary
	for _, r := range rows {
		switch {
		case r.Direction == "income" && r.Status == "open":
			fs.OpenIncome += r.Total
		case r.Direction == "income" && r.Status == "overdue":
			fs.OverdueIncome += r.Total
			fs.OverdueCount += r.Count
		case r.Direction == "income" && r.Status == "paid":
			fs.PaidIncome += r.Total
		case r.Direction == "expense" && r.Status == "paid":
			fs.PaidExpense += r.Total
		case r.Direction == "expense" && r.Status == "overdue":
			fs.OverdueCount += r.Count
		}
	}
	return &fs, nil
}

// AgendaEntry is one upcoming meeting on the dashboard.
type AgendaEntry struct {
	MeetingID   uint      `json:"meeting_id"`
	ProjectName string    `json:"project_name"`
	Title       string    `json:"title"`
	MeetingDate time.Time `json:"meeting_date"`
	StartTime   string    `json:"start_time"`
}

// UpcomingMeetings returns the next scheduled meetings from now, capped at
// limit.
func UpcomingMeetings(db *gorm.DB, now time.Time, limit int) ([]AgendaEntry, error) {
	if limit <= 0 {
		limit = 5
	}
	var entries []AgendaEntry
	err := db.Model(&models.Meeting{}).
		Select("meetings.id as meeting_id, projects.name as project_name, meetings.title, meetings.meeting_date, meetings.start_time").
		Joins("JOIN projects ON projects.id = meetings.project_id").
		Where("meetings.status = ? AND meetings.meeting_date >= ?", "scheduled", now).
		Order("meetings.meeting_date ASC, meetings.start_time ASC").
		Limit(limit).
		Find(&entries).Error
	if err != nil {
		return nil, fmt.Errorf("dashboard: upcoming meetings: %w", err)
	}
	return entries, nil
}

// TaskLoad holds open task counts grouped by priority.
type TaskLoad struct {
	Urgent int `json:"urgent"`
	High   int `json:"high"`
	Medium int `json:"medium"`
	Low    int `json:"low"`
	Total  int `json:"total"`
}

// OpenTasks returns counts of unfinished tasks by priority.
func OpenTasks(db *gorm.DB) (*TaskLoad, error) {
	type row struct {
		Priority string
		Count    int
	}
	var rows []row
	err := db.Model(&models.Task{}).
		Select("priority, count(*) as count").
		Where("status NOT IN ?", []string{"done", "cancelled"}).
		Group("priority").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("dashboard: open tasks: %w", err)
	}

	var tl TaskLoad
	for _, r := range rows {
		tl.Total += r.Count
		switch r.Priority {
		case "urgent":
			tl.Urgent += r.Count
		case "high":
			tl.High += r.Count
		case "medium":
			tl.Medium += r.Count
		case "low":
			tl.Low += r.Count
		}
	}
	return &tl, nil
}

// Overview bundles every dashboard block into one payload.
type Overview struct {
	Projects *ProjectStatusCount `json:"projects"`
	Finance  *FinanceSummary     `json:"finance"`
	Tasks    *TaskLoad           `json:"tasks"`
	Agenda   []AgendaEntry       `json:"agenda"`
}

// Build assembles the full dashboard overview.
func Build(db *gorm.DB, now time.Time) (*Overview, error) {
	projects, err := ProjectSummary(db)
	if err != nil {
		return nil, err
	}
	finance, err := FinancePosition(db)
	if err != nil {
		return nil, err
	}
	tasks, err := OpenTasks(db)
	if err != nil {
		return nil, err
	}
	agenda, err := UpcomingMeetings(db, now, 5)
	if err != nil {
		return nil, err
	}
	return &Overview{Projects: projects, Finance: finance, Tasks: tasks, Agenda: agenda}, nil
}
