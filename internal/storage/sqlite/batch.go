package sqlite

import (
	"context"
	"fmt"
	"strings"
)

// inBatchSize is the maximum number of ids bound into one IN list. A
// statement may repeat the list, so the bound parameter count stays well
// under what the WASM build of SQLite can prepare.
const inBatchSize = 200

// execInBatches runs queryTemplate once per chunk of ids and returns the
// total rows affected. Each %s in queryTemplate is replaced with the same
// placeholder list; prefix args are bound ahead of the ids.
//
// nolint:gosec // G201: queryTemplate %s is filled with ? placeholders only
func execInBatches(ctx context.Context, q dbExecer, ids []int64, queryTemplate string, prefix ...interface{}) (int64, error) {
	lists := strings.Count(queryTemplate, "%s")
	var total int64
	for i := 0; i < len(ids); i += inBatchSize {
		end := i + inBatchSize
		if end > len(ids) {
			end = len(ids)
		}
		inClause, batchArgs := buildSQLInClause(ids[i:end])

		fill := make([]interface{}, lists)
		args := append([]interface{}{}, prefix...)
		for j := range fill {
			fill[j] = inClause
			args = append(args, batchArgs...)
		}

		res, err := q.ExecContext(ctx, fmt.Sprintf(queryTemplate, fill...), args...)
		if err != nil {
			return total, err
		}
		n, err := res.RowsAffected()
		if err != nil {
			return total, err
		}
		total += n
	}
	return total, nil
}

// buildSQLInClause returns a placeholder list and matching args for ids.
func buildSQLInClause(ids []int64) (string, []interface{}) {
	placeholders := make([]string, len(ids))
	args := make([]interface{}, len(ids))
	for i, id := range ids {
		placeholders[i] = "?"
		args[i] = id
	}
	return strings.Join(placeholders, ","), args
}
