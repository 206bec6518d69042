package telemetry

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/chainlink-tracker/chainlink/internal/storage"
	"github.com/chainlink-tracker/chainlink/internal/types"
)

const storageScopeName = "github.com/chainlink-tracker/chainlink/storage"

var _ storage.Storage = (*InstrumentedStorage)(nil)

// InstrumentedStorage wraps storage.Storage with OTel tracing and metrics.
// Every method gets a span and is counted in chainlink.storage.* metrics.
// Use WrapStorage to create one; it returns the original store unchanged when
// telemetry is disabled.
type InstrumentedStorage struct {
	inner      storage.Storage
	tracer     trace.Tracer
	ops        metric.Int64Counter
	dur        metric.Float64Histogram
	errs       metric.Int64Counter
	readyGauge metric.Int64Gauge
}

// WrapStorage returns s decorated with OTel instrumentation.
// When telemetry is disabled, s is returned as-is with zero overhead.
func WrapStorage(s storage.Storage) storage.Storage {
	if !Enabled() {
		return s
	}
	return newInstrumentedStorage(s)
}

func newInstrumentedStorage(s storage.Storage) *InstrumentedStorage {
	m := Meter(storageScopeName)
	ops, _ := m.Int64Counter("chainlink.storage.operations",
		metric.WithDescription("Total storage operations executed"),
	)
	dur, _ := m.Float64Histogram("chainlink.storage.operation.duration",
		metric.WithDescription("Storage operation duration in milliseconds"),
		metric.WithUnit("ms"),
	)
	errs, _ := m.Int64Counter("chainlink.storage.errors",
		metric.WithDescription("Total storage operation errors"),
	)
	readyGauge, _ := m.Int64Gauge("chainlink.issue.ready",
		metric.WithDescription("Number of ready issues at the last readiness query"),
	)
	return &InstrumentedStorage{
		inner:      s,
		tracer:     Tracer(storageScopeName),
		ops:        ops,
		dur:        dur,
		errs:       errs,
		readyGauge: readyGauge,
	}
}

// op starts a span and records a metric for the named storage operation.
func (s *InstrumentedStorage) op(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span, time.Time) {
	all := append([]attribute.KeyValue{attribute.String("db.operation", name)}, attrs...)
	ctx, span := s.tracer.Start(ctx, "storage."+name,
		trace.WithAttributes(all...),
		trace.WithSpanKind(trace.SpanKindClient),
	)
	s.ops.Add(ctx, 1, metric.WithAttributes(all...))
	return ctx, span, time.Now()
}

// done ends the span, records duration and optional error.
func (s *InstrumentedStorage) done(ctx context.Context, span trace.Span, start time.Time, err error, attrs ...attribute.KeyValue) {
	ms := float64(time.Since(start).Milliseconds())
	s.dur.Record(ctx, ms, metric.WithAttributes(attrs...))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		s.errs.Add(ctx, 1, metric.WithAttributes(attrs...))
	}
	span.End()
}

func issueAttr(id int64) attribute.KeyValue {
	return attribute.Int64("chainlink.issue.id", id)
}

func milestoneAttr(id int64) attribute.KeyValue {
	return attribute.Int64("chainlink.milestone.id", id)
}

// ── Issue CRUD ────────────────────────────────────────────────────────────

func (s *InstrumentedStorage) CreateIssue(ctx context.Context, title string, description *string, priority types.Priority) (int64, error) {
	attrs := []attribute.KeyValue{attribute.String("chainlink.priority", string(priority))}
	ctx, span, t := s.op(ctx, "CreateIssue", attrs...)
	v, err := s.inner.CreateIssue(ctx, title, description, priority)
	s.done(ctx, span, t, err, attrs...)
	return v, err
}

func (s *InstrumentedStorage) GetIssue(ctx context.Context, id int64) (*types.Issue, error) {
	attrs := []attribute.KeyValue{issueAttr(id)}
	ctx, span, t := s.op(ctx, "GetIssue", attrs...)
	v, err := s.inner.GetIssue(ctx, id)
	s.done(ctx, span, t, err, attrs...)
	return v, err
}

func (s *InstrumentedStorage) UpdateIssue(ctx context.Context, id int64, update types.IssueUpdate) (bool, error) {
	attrs := []attribute.KeyValue{issueAttr(id)}
	ctx, span, t := s.op(ctx, "UpdateIssue", attrs...)
	v, err := s.inner.UpdateIssue(ctx, id, update)
	s.done(ctx, span, t, err, attrs...)
	return v, err
}

func (s *InstrumentedStorage) ListIssues(ctx context.Context, filter types.IssueFilter) ([]*types.Issue, error) {
	attrs := []attribute.KeyValue{attribute.String("chainlink.filter.status", filter.Status)}
	ctx, span, t := s.op(ctx, "ListIssues", attrs...)
	v, err := s.inner.ListIssues(ctx, filter)
	s.done(ctx, span, t, err, attrs...)
	return v, err
}

func (s *InstrumentedStorage) CloseIssue(ctx context.Context, id int64) (bool, error) {
	attrs := []attribute.KeyValue{issueAttr(id)}
	ctx, span, t := s.op(ctx, "CloseIssue", attrs...)
	v, err := s.inner.CloseIssue(ctx, id)
	s.done(ctx, span, t, err, attrs...)
	return v, err
}

func (s *InstrumentedStorage) ReopenIssue(ctx context.Context, id int64) (bool, error) {
	attrs := []attribute.KeyValue{issueAttr(id)}
	ctx, span, t := s.op(ctx, "ReopenIssue", attrs...)
	v, err := s.inner.ReopenIssue(ctx, id)
	s.done(ctx, span, t, err, attrs...)
	return v, err
}

func (s *InstrumentedStorage) DeleteIssue(ctx context.Context, id int64) (bool, error) {
	attrs := []attribute.KeyValue{issueAttr(id)}
	ctx, span, t := s.op(ctx, "DeleteIssue", attrs...)
	v, err := s.inner.DeleteIssue(ctx, id)
	s.done(ctx, span, t, err, attrs...)
	return v, err
}

// ── Hierarchy ─────────────────────────────────────────────────────────────

func (s *InstrumentedStorage) CreateSubissue(ctx context.Context, parentID int64, title string, description *string, priority types.Priority) (int64, error) {
	attrs := []attribute.KeyValue{attribute.Int64("chainlink.parent.id", parentID)}
	ctx, span, t := s.op(ctx, "CreateSubissue", attrs...)
	v, err := s.inner.CreateSubissue(ctx, parentID, title, description, priority)
	s.done(ctx, span, t, err, attrs...)
	return v, err
}

func (s *InstrumentedStorage) GetSubissues(ctx context.Context, parentID int64) ([]*types.Issue, error) {
	attrs := []attribute.KeyValue{attribute.Int64("chainlink.parent.id", parentID)}
	ctx, span, t := s.op(ctx, "GetSubissues", attrs...)
	v, err := s.inner.GetSubissues(ctx, parentID)
	s.done(ctx, span, t, err, attrs...)
	return v, err
}

func (s *InstrumentedStorage) GetTree(ctx context.Context, status string) ([]*types.TreeNode, error) {
	attrs := []attribute.KeyValue{attribute.String("chainlink.filter.status", status)}
	ctx, span, t := s.op(ctx, "GetTree", attrs...)
	v, err := s.inner.GetTree(ctx, status)
	s.done(ctx, span, t, err, attrs...)
	return v, err
}

// ── Archive ───────────────────────────────────────────────────────────────

func (s *InstrumentedStorage) ArchiveIssue(ctx context.Context, id int64) (bool, error) {
	attrs := []attribute.KeyValue{issueAttr(id)}
	ctx, span, t := s.op(ctx, "ArchiveIssue", attrs...)
	v, err := s.inner.ArchiveIssue(ctx, id)
	s.done(ctx, span, t, err, attrs...)
	return v, err
}

func (s *InstrumentedStorage) UnarchiveIssue(ctx context.Context, id int64) (bool, error) {
	attrs := []attribute.KeyValue{issueAttr(id)}
	ctx, span, t := s.op(ctx, "UnarchiveIssue", attrs...)
	v, err := s.inner.UnarchiveIssue(ctx, id)
	s.done(ctx, span, t, err, attrs...)
	return v, err
}

func (s *InstrumentedStorage) ListArchivedIssues(ctx context.Context) ([]*types.Issue, error) {
	ctx, span, t := s.op(ctx, "ListArchivedIssues")
	v, err := s.inner.ListArchivedIssues(ctx)
	s.done(ctx, span, t, err)
	return v, err
}

func (s *InstrumentedStorage) ArchiveClosedBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	ctx, span, t := s.op(ctx, "ArchiveClosedBefore")
	v, err := s.inner.ArchiveClosedBefore(ctx, cutoff)
	s.done(ctx, span, t, err)
	return v, err
}

// ── Labels and comments ───────────────────────────────────────────────────

func (s *InstrumentedStorage) AddLabel(ctx context.Context, issueID int64, label string) (bool, error) {
	attrs := []attribute.KeyValue{issueAttr(issueID)}
	ctx, span, t := s.op(ctx, "AddLabel", attrs...)
	v, err := s.inner.AddLabel(ctx, issueID, label)
	s.done(ctx, span, t, err, attrs...)
	return v, err
}

func (s *InstrumentedStorage) RemoveLabel(ctx context.Context, issueID int64, label string) (bool, error) {
	attrs := []attribute.KeyValue{issueAttr(issueID)}
	ctx, span, t := s.op(ctx, "RemoveLabel", attrs...)
	v, err := s.inner.RemoveLabel(ctx, issueID, label)
	s.done(ctx, span, t, err, attrs...)
	return v, err
}

func (s *InstrumentedStorage) GetLabels(ctx context.Context, issueID int64) ([]string, error) {
	attrs := []attribute.KeyValue{issueAttr(issueID)}
	ctx, span, t := s.op(ctx, "GetLabels", attrs...)
	v, err := s.inner.GetLabels(ctx, issueID)
	s.done(ctx, span, t, err, attrs...)
	return v, err
}

func (s *InstrumentedStorage) AddComment(ctx context.Context, issueID int64, content string) (int64, error) {
	attrs := []attribute.KeyValue{issueAttr(issueID)}
	ctx, span, t := s.op(ctx, "AddComment", attrs...)
	v, err := s.inner.AddComment(ctx, issueID, content)
	s.done(ctx, span, t, err, attrs...)
	return v, err
}

func (s *InstrumentedStorage) GetComments(ctx context.Context, issueID int64) ([]*types.Comment, error) {
	attrs := []attribute.KeyValue{issueAttr(issueID)}
	ctx, span, t := s.op(ctx, "GetComments", attrs...)
	v, err := s.inner.GetComments(ctx, issueID)
	s.done(ctx, span, t, err, attrs...)
	return v, err
}

// ── Dependencies and relations ────────────────────────────────────────────

func (s *InstrumentedStorage) AddDependency(ctx context.Context, blockedID, blockerID int64) (bool, error) {
	attrs := []attribute.KeyValue{
		issueAttr(blockedID),
		attribute.Int64("chainlink.blocker.id", blockerID),
	}
	ctx, span, t := s.op(ctx, "AddDependency", attrs...)
	v, err := s.inner.AddDependency(ctx, blockedID, blockerID)
	s.done(ctx, span, t, err, attrs...)
	return v, err
}

func (s *InstrumentedStorage) RemoveDependency(ctx context.Context, blockedID, blockerID int64) (bool, error) {
	attrs := []attribute.KeyValue{
		issueAttr(blockedID),
		attribute.Int64("chainlink.blocker.id", blockerID),
	}
	ctx, span, t := s.op(ctx, "RemoveDependency", attrs...)
	v, err := s.inner.RemoveDependency(ctx, blockedID, blockerID)
	s.done(ctx, span, t, err, attrs...)
	return v, err
}

func (s *InstrumentedStorage) GetBlockers(ctx context.Context, issueID int64) ([]int64, error) {
	attrs := []attribute.KeyValue{issueAttr(issueID)}
	ctx, span, t := s.op(ctx, "GetBlockers", attrs...)
	v, err := s.inner.GetBlockers(ctx, issueID)
	s.done(ctx, span, t, err, attrs...)
	return v, err
}

func (s *InstrumentedStorage) GetBlocking(ctx context.Context, issueID int64) ([]int64, error) {
	attrs := []attribute.KeyValue{issueAttr(issueID)}
	ctx, span, t := s.op(ctx, "GetBlocking", attrs...)
	v, err := s.inner.GetBlocking(ctx, issueID)
	s.done(ctx, span, t, err, attrs...)
	return v, err
}

func (s *InstrumentedStorage) GetReadyIssues(ctx context.Context) ([]*types.Issue, error) {
	ctx, span, t := s.op(ctx, "GetReadyIssues")
	v, err := s.inner.GetReadyIssues(ctx)
	if err == nil {
		s.readyGauge.Record(ctx, int64(len(v)))
	}
	s.done(ctx, span, t, err)
	return v, err
}

func (s *InstrumentedStorage) GetBlockedIssues(ctx context.Context) ([]*types.Issue, error) {
	ctx, span, t := s.op(ctx, "GetBlockedIssues")
	v, err := s.inner.GetBlockedIssues(ctx)
	s.done(ctx, span, t, err)
	return v, err
}

func (s *InstrumentedStorage) AddRelation(ctx context.Context, issueID, relatedID int64) (bool, error) {
	attrs := []attribute.KeyValue{issueAttr(issueID)}
	ctx, span, t := s.op(ctx, "AddRelation", attrs...)
	v, err := s.inner.AddRelation(ctx, issueID, relatedID)
	s.done(ctx, span, t, err, attrs...)
	return v, err
}

func (s *InstrumentedStorage) RemoveRelation(ctx context.Context, issueID, relatedID int64) (bool, error) {
	attrs := []attribute.KeyValue{issueAttr(issueID)}
	ctx, span, t := s.op(ctx, "RemoveRelation", attrs...)
	v, err := s.inner.RemoveRelation(ctx, issueID, relatedID)
	s.done(ctx, span, t, err, attrs...)
	return v, err
}

func (s *InstrumentedStorage) GetRelatedIssues(ctx context.Context, issueID int64) ([]*types.Issue, error) {
	attrs := []attribute.KeyValue{issueAttr(issueID)}
	ctx, span, t := s.op(ctx, "GetRelatedIssues", attrs...)
	v, err := s.inner.GetRelatedIssues(ctx, issueID)
	s.done(ctx, span, t, err, attrs...)
	return v, err
}

// ── Time tracking ─────────────────────────────────────────────────────────

func (s *InstrumentedStorage) StartTimer(ctx context.Context, issueID int64) error {
	attrs := []attribute.KeyValue{issueAttr(issueID)}
	ctx, span, t := s.op(ctx, "StartTimer", attrs...)
	err := s.inner.StartTimer(ctx, issueID)
	s.done(ctx, span, t, err, attrs...)
	return err
}

func (s *InstrumentedStorage) StopTimer(ctx context.Context) (*types.TimerStop, error) {
	ctx, span, t := s.op(ctx, "StopTimer")
	v, err := s.inner.StopTimer(ctx)
	s.done(ctx, span, t, err)
	return v, err
}

func (s *InstrumentedStorage) GetTimerState(ctx context.Context) (*types.TimerState, error) {
	ctx, span, t := s.op(ctx, "GetTimerState")
	v, err := s.inner.GetTimerState(ctx)
	s.done(ctx, span, t, err)
	return v, err
}

func (s *InstrumentedStorage) GetTotalTime(ctx context.Context, issueID int64) (int64, error) {
	attrs := []attribute.KeyValue{issueAttr(issueID)}
	ctx, span, t := s.op(ctx, "GetTotalTime", attrs...)
	v, err := s.inner.GetTotalTime(ctx, issueID)
	s.done(ctx, span, t, err, attrs...)
	return v, err
}

func (s *InstrumentedStorage) GetTimeEntries(ctx context.Context, issueID int64) ([]*types.TimeEntry, error) {
	attrs := []attribute.KeyValue{issueAttr(issueID)}
	ctx, span, t := s.op(ctx, "GetTimeEntries", attrs...)
	v, err := s.inner.GetTimeEntries(ctx, issueID)
	s.done(ctx, span, t, err, attrs...)
	return v, err
}

// ── Sessions ──────────────────────────────────────────────────────────────

func (s *InstrumentedStorage) StartSession(ctx context.Context) (int64, error) {
	ctx, span, t := s.op(ctx, "StartSession")
	v, err := s.inner.StartSession(ctx)
	s.done(ctx, span, t, err)
	return v, err
}

func (s *InstrumentedStorage) EndSession(ctx context.Context, id int64, notes *string) (bool, error) {
	attrs := []attribute.KeyValue{attribute.Int64("chainlink.session.id", id)}
	ctx, span, t := s.op(ctx, "EndSession", attrs...)
	v, err := s.inner.EndSession(ctx, id, notes)
	s.done(ctx, span, t, err, attrs...)
	return v, err
}

func (s *InstrumentedStorage) GetCurrentSession(ctx context.Context) (*types.Session, error) {
	ctx, span, t := s.op(ctx, "GetCurrentSession")
	v, err := s.inner.GetCurrentSession(ctx)
	s.done(ctx, span, t, err)
	return v, err
}

func (s *InstrumentedStorage) GetLastSession(ctx context.Context) (*types.Session, error) {
	ctx, span, t := s.op(ctx, "GetLastSession")
	v, err := s.inner.GetLastSession(ctx)
	s.done(ctx, span, t, err)
	return v, err
}

func (s *InstrumentedStorage) SetSessionIssue(ctx context.Context, sessionID, issueID int64) (bool, error) {
	attrs := []attribute.KeyValue{
		attribute.Int64("chainlink.session.id", sessionID),
		issueAttr(issueID),
	}
	ctx, span, t := s.op(ctx, "SetSessionIssue", attrs...)
	v, err := s.inner.SetSessionIssue(ctx, sessionID, issueID)
	s.done(ctx, span, t, err, attrs...)
	return v, err
}

// ── Milestones ────────────────────────────────────────────────────────────

func (s *InstrumentedStorage) CreateMilestone(ctx context.Context, name string, description *string) (int64, error) {
	ctx, span, t := s.op(ctx, "CreateMilestone")
	v, err := s.inner.CreateMilestone(ctx, name, description)
	s.done(ctx, span, t, err)
	return v, err
}

func (s *InstrumentedStorage) GetMilestone(ctx context.Context, id int64) (*types.Milestone, error) {
	attrs := []attribute.KeyValue{milestoneAttr(id)}
	ctx, span, t := s.op(ctx, "GetMilestone", attrs...)
	v, err := s.inner.GetMilestone(ctx, id)
	s.done(ctx, span, t, err, attrs...)
	return v, err
}

func (s *InstrumentedStorage) ListMilestones(ctx context.Context, status string) ([]*types.Milestone, error) {
	attrs := []attribute.KeyValue{attribute.String("chainlink.filter.status", status)}
	ctx, span, t := s.op(ctx, "ListMilestones", attrs...)
	v, err := s.inner.ListMilestones(ctx, status)
	s.done(ctx, span, t, err, attrs...)
	return v, err
}

func (s *InstrumentedStorage) AddIssueToMilestone(ctx context.Context, milestoneID, issueID int64) (bool, error) {
	attrs := []attribute.KeyValue{
		milestoneAttr(milestoneID),
		issueAttr(issueID),
	}
	ctx, span, t := s.op(ctx, "AddIssueToMilestone", attrs...)
	v, err := s.inner.AddIssueToMilestone(ctx, milestoneID, issueID)
	s.done(ctx, span, t, err, attrs...)
	return v, err
}

func (s *InstrumentedStorage) RemoveIssueFromMilestone(ctx context.Context, milestoneID, issueID int64) (bool, error) {
	attrs := []attribute.KeyValue{
		milestoneAttr(milestoneID),
		issueAttr(issueID),
	}
	ctx, span, t := s.op(ctx, "RemoveIssueFromMilestone", attrs...)
	v, err := s.inner.RemoveIssueFromMilestone(ctx, milestoneID, issueID)
	s.done(ctx, span, t, err, attrs...)
	return v, err
}

func (s *InstrumentedStorage) GetMilestoneIssues(ctx context.Context, milestoneID int64) ([]*types.Issue, error) {
	attrs := []attribute.KeyValue{milestoneAttr(milestoneID)}
	ctx, span, t := s.op(ctx, "GetMilestoneIssues", attrs...)
	v, err := s.inner.GetMilestoneIssues(ctx, milestoneID)
	s.done(ctx, span, t, err, attrs...)
	return v, err
}

func (s *InstrumentedStorage) GetMilestoneProgress(ctx context.Context, milestoneID int64) (*types.Progress, error) {
	attrs := []attribute.KeyValue{milestoneAttr(milestoneID)}
	ctx, span, t := s.op(ctx, "GetMilestoneProgress", attrs...)
	v, err := s.inner.GetMilestoneProgress(ctx, milestoneID)
	s.done(ctx, span, t, err, attrs...)
	return v, err
}

func (s *InstrumentedStorage) CloseMilestone(ctx context.Context, id int64) (bool, error) {
	attrs := []attribute.KeyValue{milestoneAttr(id)}
	ctx, span, t := s.op(ctx, "CloseMilestone", attrs...)
	v, err := s.inner.CloseMilestone(ctx, id)
	s.done(ctx, span, t, err, attrs...)
	return v, err
}

func (s *InstrumentedStorage) DeleteMilestone(ctx context.Context, id int64) (bool, error) {
	attrs := []attribute.KeyValue{milestoneAttr(id)}
	ctx, span, t := s.op(ctx, "DeleteMilestone", attrs...)
	v, err := s.inner.DeleteMilestone(ctx, id)
	s.done(ctx, span, t, err, attrs...)
	return v, err
}

// ── Lifecycle ────────────────────────────────────────────────────────────────

func (s *InstrumentedStorage) Path() string { return s.inner.Path() }

func (s *InstrumentedStorage) Close() error {
	ctx, span, t := s.op(context.Background(), "Close")
	err := s.inner.Close()
	s.done(ctx, span, t, err)
	return err
}
