package db

import (
	"cmp"
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"
	"regexp"
	"slices"
	"strconv"
	"time"

	"github.com/colonyops/quill/internal/core/logging"
)

//go:embed migrations/*.sql
var migrationFiles embed.FS

var migrationName = regexp.MustCompile(`^(\d+)_([a-z0-9_]+)\.(up|down)\.sql$`)

// migration is one schema version with the SQL to apply and revert it.
type migration struct {
	version int
	name    string
	up      string
	down    string
	hasUp   bool
	hasDown bool
}

// parseMigrationName splits "0002_publish_log.up.sql" into its version, name
// and direction.
func parseMigrationName(file string) (int, string, string, error) {
	m := migrationName.FindStringSubmatch(file)
	if m == nil {
		return 0, "", "", fmt.Errorf("migration %q: want NNNN_name.up.sql or NNNN_name.down.sql", file)
	}

	version, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, "", "", fmt.Errorf("migration %q: bad version: %w", file, err)
	}
	if version == 0 {
		return 0, "", "", fmt.Errorf("migration %q: versions start at 1", file)
	}

	return version, m[2], m[3], nil
}

// readMigrations loads the embedded migrations in ascending version order.
// Every version needs exactly one up and one down file under a single name.
func readMigrations() ([]migration, error) {
	entries, err := fs.ReadDir(migrationFiles, "migrations")
	if err != nil {
		return nil, fmt.Errorf("read migrations: %w", err)
	}

	byVersion := make(map[int]*migration)
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}

		version, name, direction, err := parseMigrationName(entry.Name())
		if err != nil {
			return nil, err
		}

		data, err := migrationFiles.ReadFile("migrations/" + entry.Name())
		if err != nil {
			return nil, fmt.Errorf("read migration %s: %w", entry.Name(), err)
		}

		m, ok := byVersion[version]
		if !ok {
			m = &migration{version: version, name: name}
			byVersion[version] = m
		}
		if m.name != name {
			return nil, fmt.Errorf("migration version %04d is named both %q and %q", version, m.name, name)
		}

		switch direction {
		case "up":
			if m.hasUp {
				return nil, fmt.Errorf("migration %04d has two up files", version)
			}
			m.up, m.hasUp = string(data), true
		case "down":
			if m.hasDown {
				return nil, fmt.Errorf("migration %04d has two down files", version)
			}
			m.down, m.hasDown = string(data), true
		}
	}

	out := make([]migration, 0, len(byVersion))
	for _, m := range byVersion {
		if !m.hasUp || !m.hasDown {
			return nil, fmt.Errorf("migration %04d_%s needs both an up and a down file", m.version, m.name)
		}
		out = append(out, *m)
	}

	slices.SortFunc(out, func(a, b migration) int { return cmp.Compare(a.version, b.version) })
	return out, nil
}

// migrate applies every migration that is not yet recorded in
// schema_migrations, oldest first, each in its own transaction.
func migrate(ctx context.Context, conn *sql.DB) error {
	migrations, err := readMigrations()
	if err != nil {
		return err
	}

	applied, err := appliedVersions(ctx, conn)
	if err != nil {
		return err
	}

	logger := logging.Component("db")
	for _, m := range migrations {
		if applied[m.version] {
			continue
		}

		logger.Debug().Int("version", m.version).Str("name", m.name).Msg("applying migration")
		err := inTx(ctx, conn, func(tx *sql.Tx) error {
			if _, err := tx.ExecContext(ctx, m.up); err != nil {
				return err
			}
			_, err := tx.ExecContext(ctx,
				`INSERT INTO schema_migrations (version, name, applied_at) VALUES (?, ?, ?)`,
				m.version, m.name, time.Now().UnixNano(),
			)
			return err
		})
		if err != nil {
			return fmt.Errorf("apply migration %04d_%s: %w", m.version, m.name, err)
		}
	}

	return nil
}

// Rollback reverts the newest steps applied migrations.
func Rollback(ctx context.Context, conn *sql.DB, steps int) error {
	if steps < 1 {
		return fmt.Errorf("rollback steps must be at least 1, got %d", steps)
	}

	migrations, err := readMigrations()
	if err != nil {
		return err
	}

	applied, err := appliedVersions(ctx, conn)
	if err != nil {
		return err
	}

	var pending []migration
	for _, m := range slices.Backward(migrations) {
		if applied[m.version] {
			pending = append(pending, m)
		}
	}
	if steps > len(pending) {
		return fmt.Errorf("cannot roll back %d migrations, only %d applied", steps, len(pending))
	}

	logger := logging.Component("db")
	for _, m := range pending[:steps] {
		logger.Info().Int("version", m.version).Str("name", m.name).Msg("reverting migration")
		err := inTx(ctx, conn, func(tx *sql.Tx) error {
			if _, err := tx.ExecContext(ctx, m.down); err != nil {
				return err
			}
			_, err := tx.ExecContext(ctx, `DELETE FROM schema_migrations WHERE version = ?`, m.version)
			return err
		})
		if err != nil {
			return fmt.Errorf("revert migration %04d_%s: %w", m.version, m.name, err)
		}
	}

	return nil
}

// appliedVersions creates the schema_migrations table when missing and
// returns the versions recorded in it.
func appliedVersions(ctx context.Context, conn *sql.DB) (map[int]bool, error) {
	const ddl = `CREATE TABLE IF NOT EXISTS schema_migrations (
		version    INTEGER PRIMARY KEY,
		name       TEXT NOT NULL,
		applied_at INTEGER NOT NULL
	)`
	if _, err := conn.ExecContext(ctx, ddl); err != nil {
		return nil, fmt.Errorf("create schema_migrations: %w", err)
	}

	rows, err := conn.QueryContext(ctx, `SELECT version FROM schema_migrations`)
	if err != nil {
		return nil, fmt.Errorf("list applied migrations: %w", err)
	}
	defer func() { _ = rows.Close() }()

	applied := make(map[int]bool)
	for rows.Next() {
		var version int
		if err := rows.Scan(&version); err != nil {
			return nil, fmt.Errorf("scan migration version: %w", err)
		}
		applied[version] = true
	}
	return applied, rows.Err()
}
