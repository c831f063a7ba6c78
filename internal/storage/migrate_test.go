package storage

import (
	"path/filepath"
	"testing"
)

func TestSchemaVersion(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "schema.db")

	version, dirty, err := SchemaVersion(dbPath)
	if err != nil {
		t.Fatalf("SchemaVersion on empty db: %v", err)
	}
	if version != 0 || dirty {
		t.Fatalf("empty db version = %d dirty = %v, want 0 false", version, dirty)
	}

	if err := RunMigrations(dbPath); err != nil {
		t.Fatalf("RunMigrations: %v", err)
	}
	// a second run is a no-op
	if err := RunMigrations(dbPath); err != nil {
		t.Fatalf("RunMigrations again: %v", err)
	}

	version, dirty, err = SchemaVersion(dbPath)
	if err != nil {
		t.Fatalf("SchemaVersion: %v", err)
	}
	if version != 1 || dirty {
		t.Errorf("version = %d dirty = %v, want 1 false", version, dirty)
	}
}
