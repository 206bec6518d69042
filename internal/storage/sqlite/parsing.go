package sqlite

import (
	"database/sql"
	"time"
)

// Timestamps are stored as TEXT. Stores written by older versions used
// RFC 3339 with an offset; SQLite's CURRENT_TIMESTAMP format is accepted too.
var timeLayouts = []string{time.RFC3339Nano, time.RFC3339, "2006-01-02 15:04:05"}

// formatTime renders t for storage in a TEXT column.
func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

// now is the store's clock. Tests replace it to pin elapsed-time arithmetic.
var now = func() time.Time {
	return time.Now().UTC()
}

// parseTimeString parses a required timestamp column.
// Returns zero time if parsing fails.
func parseTimeString(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC()
		}
	}
	return time.Time{}
}

// parseNullableTimeString parses a nullable timestamp column.
func parseNullableTimeString(ns sql.NullString) *time.Time {
	if !ns.Valid || ns.String == "" {
		return nil
	}
	t := parseTimeString(ns.String)
	if t.IsZero() {
		return nil
	}
	return &t
}

func nullStringPtr(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	s := ns.String
	return &s
}

func nullInt64Ptr(ni sql.NullInt64) *int64 {
	if !ni.Valid {
		return nil
	}
	v := ni.Int64
	return &v
}
