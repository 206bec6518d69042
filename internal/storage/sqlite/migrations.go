package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/chainlink-tracker/chainlink/internal/debug"
	"github.com/chainlink-tracker/chainlink/internal/storage/sqlite/migrations"
)

// Migration is one ordered schema step. Version is the user_version the
// store reaches once Func has run.
type Migration struct {
	Version int
	Name    string
	Func    func(*sql.DB) error
}

// migrationsList is applied in order. Every Func is idempotent, so a step
// re-run after a crash between the change and the version bump is harmless.
var migrationsList = []Migration{
	{1, "parent_column", migrations.MigrateParentColumn},
	{2, "milestone_tables", migrations.MigrateMilestoneTables},
	{3, "relations_table", migrations.MigrateRelationsTable},
	{4, "active_timer_table", migrations.MigrateActiveTimerTable},
}

// CurrentSchemaVersion is the user_version of a fully migrated store.
var CurrentSchemaVersion = migrationsList[len(migrationsList)-1].Version

// ListMigrations returns the registered migrations in order.
func ListMigrations() []Migration {
	out := make([]Migration, len(migrationsList))
	copy(out, migrationsList)
	return out
}

// RunMigrations applies every migration above the stored user_version and
// stamps the new version after each step.
func RunMigrations(ctx context.Context, db *sql.DB) error {
	version, err := getUserVersion(ctx, db)
	if err != nil {
		return err
	}

	for _, m := range migrationsList {
		if m.Version <= version && version != legacyVersion {
			continue
		}
		if err := m.Func(db); err != nil {
			return fmt.Errorf("migration %03d_%s failed: %w", m.Version, m.Name, err)
		}
		if err := setUserVersion(ctx, db, m.Version); err != nil {
			return err
		}
		debug.Logf("applied migration %03d_%s\n", m.Version, m.Name)
	}
	return nil
}

// legacyVersion is what the previous on-disk format stamped. Its number
// overlaps this package's sequence without the tables 2-4 create, so a store
// at this version re-runs every step.
const legacyVersion = 3

func getUserVersion(ctx context.Context, db *sql.DB) (int, error) {
	var version int
	if err := db.QueryRowContext(ctx, `PRAGMA user_version`).Scan(&version); err != nil {
		return 0, wrapDBError("read schema version", err)
	}
	return version, nil
}

func setUserVersion(ctx context.Context, db *sql.DB, version int) error {
	// PRAGMA does not take bound parameters.
	if _, err := db.ExecContext(ctx, fmt.Sprintf("PRAGMA user_version = %d", version)); err != nil {
		return wrapDBError("write schema version", err)
	}
	return nil
}
