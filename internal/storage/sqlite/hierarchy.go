package sqlite

import (
	"context"

	"github.com/chainlink-tracker/chainlink/internal/types"
)

// CreateSubissue creates an open issue under parentID.
func (s *SQLiteStorage) CreateSubissue(ctx context.Context, parentID int64, title string, description *string, priority types.Priority) (int64, error) {
	return s.createIssue(ctx, title, description, priority, &parentID)
}

// GetSubissues returns the direct children of parentID in every status,
// ascending by id.
func (s *SQLiteStorage) GetSubissues(ctx context.Context, parentID int64) ([]*types.Issue, error) {
	iq := (&issueQuery{}).where(predParent, parentID)
	return s.queryIssues(ctx, s.db, iq)
}

// GetTree walks the issue forest depth first, pre-order.
//
// Roots are the top-level issues matching status under the ListIssues
// convention, newest first as ListIssues returns them. Children follow
// oldest first. Below a root every descendant is shown whatever its status,
// except archived ones, which never appear.
func (s *SQLiteStorage) GetTree(ctx context.Context, status string) ([]*types.TreeNode, error) {
	rootQuery := (&issueQuery{newest: true}).applyStatus(status).where(predTopLevel, nil)
	if status != "" {
		rootQuery.where(predNotArchived, nil)
	}
	roots, err := s.queryIssues(ctx, s.db, rootQuery)
	if err != nil {
		return nil, err
	}

	// Load the remaining forest once and index children by parent.
	children := make(map[int64][]*types.Issue)
	rest, err := s.queryIssues(ctx, s.db, (&issueQuery{}).where(predNotArchived, nil))
	if err != nil {
		return nil, err
	}
	for _, issue := range rest {
		if issue.ParentID != nil {
			children[*issue.ParentID] = append(children[*issue.ParentID], issue)
		}
	}

	var (
		nodes []*types.TreeNode
		stack []*types.TreeNode
		seen  = make(map[int64]bool)
	)
	// Push in reverse so nodes pop in query order.
	for i := len(roots) - 1; i >= 0; i-- {
		stack = append(stack, &types.TreeNode{Issue: roots[i], Depth: 0})
	}
	for len(stack) > 0 {
		node := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if seen[node.Issue.ID] {
			continue
		}
		seen[node.Issue.ID] = true
		nodes = append(nodes, node)

		kids := children[node.Issue.ID]
		for i := len(kids) - 1; i >= 0; i-- {
			stack = append(stack, &types.TreeNode{Issue: kids[i], Depth: node.Depth + 1})
		}
	}
	return nodes, nil
}
