package sqlite

import (
	"context"
	"strings"

	"github.com/chainlink-tracker/chainlink/internal/types"
)

// predicateKind enumerates the WHERE fragments an issue query may carry.
// Every fragment is a fixed string; caller-supplied values are always bound.
type predicateKind int

const (
	predStatus predicateKind = iota
	predNotArchived
	predPriority
	predLabel
	predParent
	predTopLevel
)

type predicate struct {
	kind  predicateKind
	value interface{}
}

func (p predicate) fragment() (string, bool) {
	switch p.kind {
	case predStatus:
		return "i.status = ?", true
	case predNotArchived:
		return "i.status != 'archived'", false
	case predPriority:
		return "i.priority = ?", true
	case predLabel:
		// EXISTS keeps one row per issue regardless of label count
		return "EXISTS (SELECT 1 FROM labels l WHERE l.issue_id = i.id AND l.label = ?)", true
	case predParent:
		return "i.parent_id = ?", true
	case predTopLevel:
		return "i.parent_id IS NULL", false
	}
	return "", false
}

// issueQuery assembles a SELECT over issues from typed predicates.
type issueQuery struct {
	preds  []predicate
	newest bool
}

func (q *issueQuery) where(kind predicateKind, value interface{}) *issueQuery {
	q.preds = append(q.preds, predicate{kind: kind, value: value})
	return q
}

// applyStatus encodes the listing convention: "" hides archived issues,
// "all" applies no status predicate, anything else matches exactly.
func (q *issueQuery) applyStatus(status string) *issueQuery {
	switch status {
	case "":
		return q.where(predNotArchived, nil)
	case types.StatusAll:
		return q
	default:
		return q.where(predStatus, status)
	}
}

func (q *issueQuery) build() (string, []interface{}) {
	var sb strings.Builder
	sb.WriteString("SELECT ")
	sb.WriteString(issueColumns)
	sb.WriteString(" FROM issues i")

	var (
		clauses []string
		args    []interface{}
	)
	for _, p := range q.preds {
		frag, bound := p.fragment()
		if frag == "" {
			continue
		}
		clauses = append(clauses, frag)
		if bound {
			args = append(args, p.value)
		}
	}
	if len(clauses) > 0 {
		sb.WriteString(" WHERE ")
		sb.WriteString(strings.Join(clauses, " AND "))
	}
	if q.newest {
		sb.WriteString(" ORDER BY i.id DESC")
	} else {
		sb.WriteString(" ORDER BY i.id ASC")
	}
	return sb.String(), args
}

func (s *SQLiteStorage) queryIssues(ctx context.Context, q dbExecer, iq *issueQuery) ([]*types.Issue, error) {
	query, args := iq.build()
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, wrapDBError("query issues", err)
	}
	return scanIssues(rows)
}

// ListIssues returns issues matching filter, newest first.
func (s *SQLiteStorage) ListIssues(ctx context.Context, filter types.IssueFilter) ([]*types.Issue, error) {
	iq := (&issueQuery{newest: true}).applyStatus(filter.Status)
	if filter.Label != "" {
		iq.where(predLabel, filter.Label)
	}
	if filter.Priority != "" {
		iq.where(predPriority, string(filter.Priority))
	}
	return s.queryIssues(ctx, s.db, iq)
}
