// Package recommend ranks ready issues to pick what to work on next.
package recommend

import (
	"context"
	"fmt"
	"sort"

	"github.com/chainlink-tracker/chainlink/internal/types"
)

const (
	// priorityScale multiplies the priority weight so that the progress
	// bonus only breaks ties between issues of equal priority.
	priorityScale = 100

	// progressBonus is added to issues whose subissues are partly done.
	progressBonus = 50

	// MaxRunnersUp caps how many alternatives accompany the top pick.
	MaxRunnersUp = 3
)

// Source is the slice of the store the scorer reads.
type Source interface {
	GetReadyIssues(ctx context.Context) ([]*types.Issue, error)
	GetSubissues(ctx context.Context, parentID int64) ([]*types.Issue, error)
}

// Next scores the ready set and returns the best top-level issue plus up to
// MaxRunnersUp runners-up. When every ready issue is a subissue the first one
// is returned unscored with Fallback set. Returns nil when nothing is ready.
func Next(ctx context.Context, src Source) (*types.Recommendation, error) {
	ready, err := src.GetReadyIssues(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get ready issues: %w", err)
	}
	if len(ready) == 0 {
		return nil, nil
	}

	scored, err := Score(ctx, src, ready)
	if err != nil {
		return nil, err
	}

	if len(scored) == 0 {
		return &types.Recommendation{
			Top:      types.ScoredIssue{Issue: ready[0]},
			Fallback: true,
		}, nil
	}

	rec := &types.Recommendation{Top: scored[0]}
	rest := scored[1:]
	if len(rest) > MaxRunnersUp {
		rest = rest[:MaxRunnersUp]
	}
	if len(rest) > 0 {
		rec.RunnersUp = rest
	}
	return rec, nil
}

// Score ranks the top-level issues in ready by descending score. Subissues
// are dropped. Issues with equal scores keep their order in ready.
func Score(ctx context.Context, src Source, ready []*types.Issue) ([]types.ScoredIssue, error) {
	scored := make([]types.ScoredIssue, 0, len(ready))
	for _, issue := range ready {
		if issue.ParentID != nil {
			continue
		}

		progress, err := subissueProgress(ctx, src, issue.ID)
		if err != nil {
			return nil, err
		}

		score := issue.Priority.Weight() * priorityScale
		if progress != nil && progress.Started() {
			score += progressBonus
		}
		scored = append(scored, types.ScoredIssue{Issue: issue, Score: score, Progress: progress})
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})
	return scored, nil
}

// subissueProgress counts closed subissues. Archived ones count toward the
// total only. Returns nil for a leaf issue.
func subissueProgress(ctx context.Context, src Source, id int64) (*types.Progress, error) {
	subs, err := src.GetSubissues(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get subissues of #%d: %w", id, err)
	}
	if len(subs) == 0 {
		return nil, nil
	}

	p := &types.Progress{Total: len(subs)}
	for _, sub := range subs {
		if sub.Status == types.StatusClosed {
			p.Done++
		}
	}
	return p, nil
}
