// Package meeting provides project meeting operations.
package meeting

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/synctech/synctech/internal/models"
)

// Meeting statuses.
const (
	StatusScheduled = "scheduled"
	StatusHeld      = "held"
	StatusCancelled = "cancelled"
)

// Meeting kinds.
const (
	KindInPerson = "in_person"
	KindOnline   = "online"
	KindPhone    = "phone"
)

// CreateOpts holds parameters for scheduling a meeting.
type CreateOpts struct {
	ProjectID    uint
	Title        string
	Description  string
	MeetingDate  time.Time
	StartTime    string // HH:MM
	EndTime      string // HH:MM
	Kind         string
	Link         string
	Participants string // JSON array of names
}

// ListFilters holds optional filters for listing meetings.
type ListFilters struct {
	ProjectID uint
	Status    string
	From      *time.Time
	To        *time.Time
}

// Create schedules a meeting. The duration in minutes is derived from the
// start and end times when both are given.
func Create(db *gorm.DB, opts CreateOpts) (*models.Meeting, error) {
	if strings.TrimSpace(opts.Title) == "" {
		return nil, fmt.Errorf("meeting: title is required")
	}
	var count int64
	if err := db.Model(&models.Project{}).Where("id = ?", opts.ProjectID).Count(&count).Error; err != nil {
		return nil, fmt.Errorf("meeting: check project %d: %w", opts.ProjectID, err)
	}
	if count == 0 {
		return nil, fmt.Errorf("meeting: project not found: %d", opts.ProjectID)
	}

	duration, err := Duration(opts.StartTime, opts.EndTime)
	if err != nil {
		return nil, err
	}
	if opts.Kind == "" {
		opts.Kind = KindInPerson
	}

	m := models.Meeting{
		ProjectID:       opts.ProjectID,
		Title:           strings.TrimSpace(opts.Title),
		Description:     opts.Description,
		MeetingDate:     &opts.MeetingDate,
		StartTime:       opts.StartTime,
		EndTime:         opts.EndTime,
		DurationMinutes: duration,
		Kind:            opts.Kind,
		Link:            opts.Link,
		Participants:    opts.Participants,
		Status:          StatusScheduled,
	}
	if err := db.Create(&m).Error; err != nil {
		return nil, fmt.Errorf("meeting: create: %w", err)
	}
	return &m, nil
}

// Duration returns the minutes between two HH:MM times, 0 when either is
// empty. Meetings never span midnight.
func Duration(start, end string) (int, error) {
	if start == "" || end == "" {
		return 0, nil
	}
	s, err := time.Parse("15:04", start)
	if err != nil {
		return 0, fmt.Errorf("meeting: invalid start time %q: want HH:MM", start)
	}
	e, err := time.Parse("15:04", end)
	if err != nil {
		return 0, fmt.Errorf("meeting: invalid end time %q: want HH:MM", end)
	}
	d := int(e.Sub(s).Minutes())
	if d <= 0 {
		return 0, fmt.Errorf("meeting: end time %s not after start time %s", end, start)
	}
	return d, nil
}

// Get retrieves a meeting by ID.
func Get(db *gorm.DB, id uint) (*models.Meeting, error) {
	var m models.Meeting
	if err := db.First(&m, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("meeting: not found: %d", id)
		}
		return nil, fmt.Errorf("meeting: get %d: %w", id, err)
	}
	return &m, nil
}

// List returns meetings matching the given filters in calendar order.
func List(db *gorm.DB, filters ListFilters) ([]models.Meeting, error) {
	q := db.Model(&models.Meeting{})

	if filters.ProjectID != 0 {
		q = q.Where("project_id = ?", filters.ProjectID)
	}
	if filters.Status != "" {
		q = q.Where("status = ?", filters.Status)
	}
	if filters.From != nil {
		q = q.Where("meeting_date >= ?", filters.From)
	}
	if filters.To != nil {
		q = q.Where("meeting_date <= ?", filters.To)
	}

	var meetings []models.Meeting
	if err := q.Order("meeting_date ASC, start_time ASC").Find(&meetings).Error; err != nil {
		return nil, fmt.Errorf("meeting: list: %w", err)
	}
	return meetings, nil
}

// RecordMinutes marks a meeting held and stores its minutes.
func RecordMinutes(db *gorm.DB, id uint, minutes string) error {
	m, err := Get(db, id)
	if err != nil {
		return err
	}
	if m.Status == StatusCancelled {
		return fmt.Errorf("meeting: %d is cancelled", id)
	}
	updates := map[string]interface{}{
		"status":  StatusHeld,
		"minutes": minutes,
	}
	if err := db.Model(&models.Meeting{}).Where("id = ?", id).Updates(updates).Error; err != nil {
		return fmt.Errorf("meeting: update %d: %w", id, err)
	}
	return nil
}

// Cancel calls off a scheduled meeting.
func Cancel(db *gorm.DB, id uint) error {
	m, err := Get(db, id)
	if err != nil {
		return err
	}
	if m.Status != StatusScheduled {
		return fmt.Errorf("meeting: %d is %s, only scheduled meetings can be cancelled", id, m.Status)
	}
	if err := db.Model(&models.Meeting{}).Where("id = ?", id).Update("status", StatusCancelled).Error; err != nil {
		return fmt.Errorf("meeting: update %d: %w", id, err)
	}
	return nil
}
