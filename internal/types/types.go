// Package types defines core data structures for the chainlink issue tracker.
package types

import (
	"fmt"
	"time"
)

// Issue represents a trackable work item
type Issue struct {
	ID          int64      `json:"id"`
	Title       string     `json:"title"`
	Description *string    `json:"description,omitempty"`
	Status      Status     `json:"status"`
	Priority    Priority   `json:"priority"`
	ParentID    *int64     `json:"parent_id,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	ClosedAt    *time.Time `json:"closed_at,omitempty"`
}

// IsSubissue reports whether the issue hangs off a parent issue.
func (i *Issue) IsSubissue() bool {
	return i.ParentID != nil
}

// Validate checks the field values and the closed_at invariant.
func (i *Issue) Validate() error {
	if len(i.Title) == 0 {
		return fmt.Errorf("title is required")
	}
	if !i.Priority.IsValid() {
		return fmt.Errorf("invalid priority %q", i.Priority)
	}
	if !i.Status.IsValid() {
		return fmt.Errorf("invalid status %q", i.Status)
	}
	// closed_at is set only while closed or archived
	if i.Status.IsDone() && i.ClosedAt == nil {
		return fmt.Errorf("%s issues must have closed_at timestamp", i.Status)
	}
	if i.Status == StatusOpen && i.ClosedAt != nil {
		return fmt.Errorf("open issues cannot have closed_at timestamp")
	}
	return nil
}

// Status represents the current state of an issue
type Status string

// Issue status constants
const (
	StatusOpen     Status = "open"
	StatusClosed   Status = "closed"
	StatusArchived Status = "archived"
)

// StatusAll is the list filter value that bypasses the status predicate.
const StatusAll = "all"

// IsValid checks if the status value is valid
func (s Status) IsValid() bool {
	switch s {
	case StatusOpen, StatusClosed, StatusArchived:
		return true
	}
	return false
}

// IsDone reports whether the issue no longer counts as outstanding work.
func (s Status) IsDone() bool {
	return s == StatusClosed || s == StatusArchived
}

// Priority is one of a fixed set of four names.
type Priority string

// Priority constants
const (
	PriorityLow      Priority = "low"
	PriorityMedium   Priority = "medium"
	PriorityHigh     Priority = "high"
	PriorityCritical Priority = "critical"
)

// DefaultPriority is applied when the caller does not choose one.
const DefaultPriority = PriorityMedium

// Priorities lists the valid priorities from lowest to highest.
var Priorities = []Priority{PriorityLow, PriorityMedium, PriorityHigh, PriorityCritical}

// IsValid is an exact, case-sensitive whitelist match. Input is never trimmed
// or folded: "High" and " high" are both rejected.
func (p Priority) IsValid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityCritical:
		return true
	}
	return false
}

// Weight ranks priorities for scoring. Unknown values weigh 0.
func (p Priority) Weight() int {
	switch p {
	case PriorityCritical:
		return 4
	case PriorityHigh:
		return 3
	case PriorityMedium:
		return 2
	case PriorityLow:
		return 1
	}
	return 0
}

// Comment is an append-only note attached to an issue
type Comment struct {
	ID        int64     `json:"id"`
	IssueID   int64     `json:"issue_id"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// Session is a bounded work period with optional handoff notes.
type Session struct {
	ID            int64      `json:"id"`
	StartedAt     time.Time  `json:"started_at"`
	EndedAt       *time.Time `json:"ended_at,omitempty"`
	ActiveIssueID *int64     `json:"active_issue_id,omitempty"`
	HandoffNotes  *string    `json:"handoff_notes,omitempty"`
}

// IsOpen reports whether the session has not been ended yet.
func (s *Session) IsOpen() bool {
	return s.EndedAt == nil
}

// TimeEntry is a completed stretch of tracked time on one issue.
type TimeEntry struct {
	ID              int64     `json:"id"`
	IssueID         int64     `json:"issue_id"`
	StartedAt       time.Time `json:"started_at"`
	EndedAt         time.Time `json:"ended_at"`
	DurationSeconds int64     `json:"duration_seconds"`
}

// TimerState reports the global timer: Idle when Running is false.
type TimerState struct {
	Running        bool      `json:"running"`
	IssueID        int64     `json:"issue_id,omitempty"`
	StartedAt      time.Time `json:"started_at,omitempty"`
	ElapsedSeconds int64     `json:"elapsed_seconds,omitempty"`
}

// TimerStop is the result of stopping the running timer.
type TimerStop struct {
	IssueID        int64 `json:"issue_id"`
	ElapsedSeconds int64 `json:"elapsed_seconds"`
	TotalSeconds   int64 `json:"total_seconds"`
}

// MilestoneStatus is the lifecycle of a milestone
type MilestoneStatus string

// Milestone status constants
const (
	MilestoneOpen   MilestoneStatus = "open"
	MilestoneClosed MilestoneStatus = "closed"
)

// Milestone groups issues for progress tracking.
type Milestone struct {
	ID          int64           `json:"id"`
	Name        string          `json:"name"`
	Description *string         `json:"description,omitempty"`
	Status      MilestoneStatus `json:"status"`
	CreatedAt   time.Time       `json:"created_at"`
	ClosedAt    *time.Time      `json:"closed_at,omitempty"`
}

// Progress counts finished work out of a total.
type Progress struct {
	Done  int `json:"done"`
	Total int `json:"total"`
}

// Started reports partially finished work: some, but not all, done.
func (p Progress) Started() bool {
	return p.Done > 0 && p.Done < p.Total
}

func (p Progress) String() string {
	return fmt.Sprintf("%d/%d", p.Done, p.Total)
}

// IssueFilter narrows ListIssues. Zero values mean "no predicate", except
// Status: empty lists every non-archived issue and StatusAll lists everything.
type IssueFilter struct {
	Status   string
	Label    string
	Priority Priority
}

// IssueUpdate is a patch: nil fields are left untouched.
type IssueUpdate struct {
	Title       *string
	Description *string
	Priority    *Priority
}

// IsEmpty reports whether the patch would change nothing.
func (u IssueUpdate) IsEmpty() bool {
	return u.Title == nil && u.Description == nil && u.Priority == nil
}

// TreeNode is one issue in a depth-first hierarchy walk.
type TreeNode struct {
	Issue *Issue `json:"issue"`
	Depth int    `json:"depth"`
}

// ScoredIssue is a ready issue with its recommendation score.
type ScoredIssue struct {
	Issue    *Issue    `json:"issue"`
	Score    int       `json:"score"`
	Progress *Progress `json:"progress,omitempty"` // nil when the issue has no subissues
}

// Recommendation is the output of the next-issue scorer.
type Recommendation struct {
	Top       ScoredIssue   `json:"top"`
	RunnersUp []ScoredIssue `json:"runners_up,omitempty"`
	// Fallback is set when every ready issue was a subissue and Top is
	// simply the first of them, unscored.
	Fallback bool `json:"fallback,omitempty"`
}
