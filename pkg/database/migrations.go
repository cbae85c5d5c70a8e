package database

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"go.uber.org/zap"
)

// migration is one versioned schema file, named NNN_description.sql
type migration struct {
	version int
	name    string
	sql     string
}

// Migrator applies the schema files under the migrations directory in
// version order, once each.
type Migrator struct {
	db     *DB
	logger *zap.Logger
}

// NewMigrator creates a migrator over the delivery store
func NewMigrator(db *DB, logger *zap.Logger) *Migrator {
	return &Migrator{db: db, logger: logger}
}

// RunMigrations applies every pending migration. Applied versions are
// tracked in schema_migrations and skipped on later runs.
func (m *Migrator) RunMigrations(dir string) error {
	if _, err := m.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			name TEXT NOT NULL,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`); err != nil {
		return fmt.Errorf("create schema_migrations: %w", err)
	}

	applied, err := m.appliedVersions()
	if err != nil {
		return err
	}

	migrations, err := loadMigrations(dir)
	if err != nil {
		return err
	}

	for _, mig := range migrations {
		if applied[mig.version] {
			continue
		}
		m.logger.Info("Applying schema migration",
			zap.Int("version", mig.version), zap.String("name", mig.name))
		if err := m.apply(mig); err != nil {
			return fmt.Errorf("migration %03d_%s: %w", mig.version, mig.name, err)
		}
	}
	return nil
}

func (m *Migrator) appliedVersions() (map[int]bool, error) {
	rows, err := m.db.Query("SELECT version FROM schema_migrations")
	if err != nil {
		return nil, fmt.Errorf("read schema_migrations: %w", err)
	}
	defer rows.Close()

	applied := make(map[int]bool)
	for rows.Next() {
		var v int
		if err := rows.Scan(&v); err != nil {
			return nil, err
		}
		applied[v] = true
	}
	return applied, rows.Err()
}

// apply runs one migration and records it inside a single transaction, so a
// half-applied schema file is rolled back rather than recorded.
func (m *Migrator) apply(mig migration) (err error) {
	var tx *sql.Tx
	if tx, err = m.db.Begin(); err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err = tx.Exec(mig.sql); err != nil {
		return err
	}
	if _, err = tx.Exec(
		"INSERT INTO schema_migrations (version, name) VALUES (?, ?)",
		mig.version, mig.name,
	); err != nil {
		return err
	}
	return tx.Commit()
}

func loadMigrations(dir string) ([]migration, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read migrations dir: %w", err)
	}

	var migrations []migration
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".sql") {
			continue
		}

		var version int
		if _, err := fmt.Sscanf(entry.Name(), "%d", &version); err != nil {
			return nil, fmt.Errorf("migration file %s does not start with a version number", entry.Name())
		}
		name := strings.TrimSuffix(entry.Name(), ".sql")
		if _, rest, found := strings.Cut(name, "_"); found {
			name = rest
		}

		content, err := os.ReadFile(filepath.Join(dir, entry.Name()))
		if err != nil {
			return nil, fmt.Errorf("read migration %s: %w", entry.Name(), err)
		}

		migrations = append(migrations, migration{version: version, name: name, sql: string(content)})
	}

	sort.Slice(migrations, func(i, j int) bool { return migrations[i].version < migrations[j].version })
	return migrations, nil
}
