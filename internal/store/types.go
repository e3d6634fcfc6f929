package store

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Status is the tracking state of a stored job.
type Status string

const (
	StatusShortlisted  Status = "Shortlisted"
	StatusApplied      Status = "Applied"
	StatusInterviewing Status = "Interviewing"
	StatusRejected     Status = "Rejected"
	StatusArchived     Status = "Archived"
)

// Statuses lists every status in workflow order.
var Statuses = []Status{
	StatusShortlisted,
	StatusApplied,
	StatusInterviewing,
	StatusRejected,
	StatusArchived,
}

// ParseStatus matches s against the known statuses ignoring case.
func ParseStatus(s string) (Status, error) {
	s = strings.TrimSpace(s)
	for _, status := range Statuses {
		if strings.EqualFold(s, string(status)) {
			return status, nil
		}
	}
	return "", fmt.Errorf("unknown status %q", s)
}

// Job is a tracked posting together with its stored score.
type Job struct {
	ID             int64
	Title          string
	Company        string
	Location       string
	URL            string
	Platform       string
	EmploymentType string
	Description    string
	PostedDate     string

	FitScore       int
	RoleCategory   string
	RoleMatch      string
	MatchingSkills []string
	MissingSkills  []string
	KeyRequirement string
	Summary        string

	DateFound time.Time
	Status    Status
	Notified  bool
	Notes     string
	CreatedAt time.Time
}

// RunLog is one row of the run history.
type RunLog struct {
	RunID     uuid.UUID
	RunAt     time.Time
	Found     int
	Scored    int
	Kept      int
	EmailSent bool
}

type Stats struct {
	Total      int
	Today      int
	AvgScore   float64
	ByPlatform map[string]int
	LastRun    *RunLog
}

// ListOptions narrows List. Zero values disable the corresponding condition.
type ListOptions struct {
	Since    time.Time
	MinScore int
	Limit    int
}
