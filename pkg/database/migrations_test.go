package database

import (
	"os"
	"path/filepath"
	"testing"
)

func writeMigration(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
}

func TestLoadMigrationsOrdersByVersion(t *testing.T) {
	dir := t.TempDir()
	writeMigration(t, dir, "002_add_indexes.sql", "CREATE INDEX x ON y(z);")
	writeMigration(t, dir, "001_initial_schema.sql", "CREATE TABLE y (z TEXT);")
	writeMigration(t, dir, "notes.txt", "ignored")

	migrations, err := loadMigrations(dir)
	if err != nil {
		t.Fatalf("loadMigrations: %v", err)
	}
	if len(migrations) != 2 {
		t.Fatalf("loaded %d migrations, want 2", len(migrations))
	}
	if migrations[0].version != 1 || migrations[0].name != "initial_schema" {
		t.Errorf("first migration = %d %q", migrations[0].version, migrations[0].name)
	}
	if migrations[1].version != 2 || migrations[1].name != "add_indexes" {
		t.Errorf("second migration = %d %q", migrations[1].version, migrations[1].name)
	}
	if migrations[0].sql != "CREATE TABLE y (z TEXT);" {
		t.Errorf("migration sql = %q", migrations[0].sql)
	}
}

func TestLoadMigrationsRejectsUnversionedFile(t *testing.T) {
	dir := t.TempDir()
	writeMigration(t, dir, "schema.sql", "CREATE TABLE y (z TEXT);")

	if _, err := loadMigrations(dir); err == nil {
		t.Error("unversioned migration file did not fail")
	}
}

func TestLoadMigrationsMissingDir(t *testing.T) {
	if _, err := loadMigrations(filepath.Join(t.TempDir(), "absent")); err == nil {
		t.Error("missing migrations directory did not fail")
	}
}
