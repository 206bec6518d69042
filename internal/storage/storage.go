// Package storage provides the storage contract and shared error taxonomy for
// the issue store.
//
// The concrete implementation lives in the sqlite sub-package. Consumers
// (cmd/chainlink, the recommend scorer, telemetry) depend on the Storage
// interface rather than the concrete type.
package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/chainlink-tracker/chainlink/internal/types"
)

// ErrNotFound is returned when a requested issue, milestone or session does not exist.
var ErrNotFound = errors.New("not found")

// ErrInvalidArgument is returned for well-typed but unacceptable input: a
// priority outside the fixed set, a self-referencing dependency, an empty
// update, or an illegal lifecycle transition.
var ErrInvalidArgument = errors.New("invalid argument")

// ErrConflict is returned when the operation clashes with current state,
// such as starting a timer while one is already running.
var ErrConflict = errors.New("conflict")

// ErrBusy is returned when another process holds the database write lock
// beyond the retry budget. Callers may retry with backoff.
var ErrBusy = errors.New("storage busy")

// ErrNoActiveTimer is returned when stopping the timer while it is idle.
var ErrNoActiveTimer = fmt.Errorf("no timer running: %w", ErrConflict)

// TimerConflictError is returned when starting a timer while one is running.
type TimerConflictError struct {
	ActiveIssueID int64
	SameIssue     bool
}

func (e *TimerConflictError) Error() string {
	if e.SameIssue {
		return fmt.Sprintf("timer already running for issue #%d", e.ActiveIssueID)
	}
	return fmt.Sprintf("timer already running for issue #%d; stop it first", e.ActiveIssueID)
}

// Unwrap lets errors.Is(err, ErrConflict) match.
func (e *TimerConflictError) Unwrap() error {
	return ErrConflict
}

// IsNotFound checks if an error is or wraps ErrNotFound
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsInvalidArgument checks if an error is or wraps ErrInvalidArgument
func IsInvalidArgument(err error) bool {
	return errors.Is(err, ErrInvalidArgument)
}

// IsConflict checks if an error is or wraps ErrConflict
func IsConflict(err error) bool {
	return errors.Is(err, ErrConflict)
}

// IsBusy checks if an error is or wraps ErrBusy
func IsBusy(err error) bool {
	return errors.Is(err, ErrBusy)
}

// Storage is the interface satisfied by *sqlite.SQLiteStorage.
//
// Boolean results follow one convention: false means the call was a harmless
// no-op (row absent, edge already present, issue already in that state).
// Anything else the caller must hear about comes back as an error.
type Storage interface {
	// Issue CRUD
	CreateIssue(ctx context.Context, title string, description *string, priority types.Priority) (int64, error)
	GetIssue(ctx context.Context, id int64) (*types.Issue, error)
	UpdateIssue(ctx context.Context, id int64, update types.IssueUpdate) (bool, error)
	ListIssues(ctx context.Context, filter types.IssueFilter) ([]*types.Issue, error)
	CloseIssue(ctx context.Context, id int64) (bool, error)
	ReopenIssue(ctx context.Context, id int64) (bool, error)
	DeleteIssue(ctx context.Context, id int64) (bool, error)

	// Hierarchy
	CreateSubissue(ctx context.Context, parentID int64, title string, description *string, priority types.Priority) (int64, error)
	GetSubissues(ctx context.Context, parentID int64) ([]*types.Issue, error)
	GetTree(ctx context.Context, status string) ([]*types.TreeNode, error)

	// Archive
	ArchiveIssue(ctx context.Context, id int64) (bool, error)
	UnarchiveIssue(ctx context.Context, id int64) (bool, error)
	ListArchivedIssues(ctx context.Context) ([]*types.Issue, error)
	ArchiveClosedBefore(ctx context.Context, cutoff time.Time) (int64, error)

	// Labels
	AddLabel(ctx context.Context, issueID int64, label string) (bool, error)
	RemoveLabel(ctx context.Context, issueID int64, label string) (bool, error)
	GetLabels(ctx context.Context, issueID int64) ([]string, error)

	// Comments
	AddComment(ctx context.Context, issueID int64, content string) (int64, error)
	GetComments(ctx context.Context, issueID int64) ([]*types.Comment, error)

	// Dependencies and readiness
	AddDependency(ctx context.Context, blockedID, blockerID int64) (bool, error)
	RemoveDependency(ctx context.Context, blockedID, blockerID int64) (bool, error)
	GetBlockers(ctx context.Context, issueID int64) ([]int64, error)
	GetBlocking(ctx context.Context, issueID int64) ([]int64, error)
	GetReadyIssues(ctx context.Context) ([]*types.Issue, error)
	GetBlockedIssues(ctx context.Context) ([]*types.Issue, error)

	// Relations
	AddRelation(ctx context.Context, issueID, relatedID int64) (bool, error)
	RemoveRelation(ctx context.Context, issueID, relatedID int64) (bool, error)
	GetRelatedIssues(ctx context.Context, issueID int64) ([]*types.Issue, error)

	// Time tracking
	StartTimer(ctx context.Context, issueID int64) error
	StopTimer(ctx context.Context) (*types.TimerStop, error)
	GetTimerState(ctx context.Context) (*types.TimerState, error)
	GetTotalTime(ctx context.Context, issueID int64) (int64, error)
	GetTimeEntries(ctx context.Context, issueID int64) ([]*types.TimeEntry, error)

	// Sessions
	StartSession(ctx context.Context) (int64, error)
	EndSession(ctx context.Context, id int64, notes *string) (bool, error)
	GetCurrentSession(ctx context.Context) (*types.Session, error)
	GetLastSession(ctx context.Context) (*types.Session, error)
	SetSessionIssue(ctx context.Context, sessionID, issueID int64) (bool, error)

	// Milestones
	CreateMilestone(ctx context.Context, name string, description *string) (int64, error)
	GetMilestone(ctx context.Context, id int64) (*types.Milestone, error)
	ListMilestones(ctx context.Context, status string) ([]*types.Milestone, error)
	AddIssueToMilestone(ctx context.Context, milestoneID, issueID int64) (bool, error)
	RemoveIssueFromMilestone(ctx context.Context, milestoneID, issueID int64) (bool, error)
	GetMilestoneIssues(ctx context.Context, milestoneID int64) ([]*types.Issue, error)
	GetMilestoneProgress(ctx context.Context, milestoneID int64) (*types.Progress, error)
	CloseMilestone(ctx context.Context, id int64) (bool, error)
	DeleteMilestone(ctx context.Context, id int64) (bool, error)

	// Lifecycle
	Path() string
	Close() error
}
