package shared

import (
	"strings"
	"testing"
)

func TestMigrationRunner(t *testing.T) {
	t.Run("loadMigrations", func(t *testing.T) {
		migrations, err := loadMigrations()
		if err != nil {
			t.Fatalf("failed to load migrations: %v", err)
		}

		if len(migrations) == 0 {
			t.Fatal("expected at least one migration")
		}

		for i, m := range migrations {
			if i > 0 && m.Version <= migrations[i-1].Version {
				t.Errorf("migrations not sorted: version %d comes after %d", m.Version, migrations[i-1].Version)
			}
			if m.Name == "" {
				t.Errorf("migration version %d has no name", m.Version)
			}
			if m.Up == "" || m.Down == "" {
				t.Errorf("migration %d_%s missing up or down SQL", m.Version, m.Name)
			}
		}

		if migrations[0].Name != "graph_cache" {
			t.Errorf("expected first migration named graph_cache, got %q", migrations[0].Name)
		}
	})

	t.Run("RunMigrations Applies And Reports Count", func(t *testing.T) {
		db, err := NewDatabase(":memory:")
		if err != nil {
			t.Fatalf("failed to create database: %v", err)
		}
		defer db.Close()

		applied, err := RunMigrations(db)
		if err != nil {
			t.Fatalf("failed to run migrations: %v", err)
		}
		if applied == 0 {
			t.Error("expected at least one migration to be applied")
		}

		if _, err := db.Exec("SELECT 1 FROM nodes LIMIT 1"); err != nil {
			t.Errorf("nodes table should exist after migrations: %v", err)
		}
		if _, err := db.Exec("SELECT 1 FROM edges LIMIT 1"); err != nil {
			t.Errorf("edges table should exist after migrations: %v", err)
		}

		version, err := SchemaVersion(db)
		if err != nil {
			t.Fatalf("failed to read schema version: %v", err)
		}
		if version == 0 {
			t.Error("expected non-zero schema version after migrations")
		}
	})

	t.Run("Reruns Are No-Ops", func(t *testing.T) {
		db, err := NewDatabase(":memory:")
		if err != nil {
			t.Fatalf("failed to create database: %v", err)
		}
		defer db.Close()

		if _, err := RunMigrations(db); err != nil {
			t.Fatalf("failed to run migrations first time: %v", err)
		}

		applied, err := RunMigrations(db)
		if err != nil {
			t.Fatalf("failed to run migrations second time: %v", err)
		}
		if applied != 0 {
			t.Errorf("expected rerun to apply nothing, applied %d", applied)
		}
	})

	t.Run("Rollback Reverts The Latest Version", func(t *testing.T) {
		db, err := NewDatabase(":memory:")
		if err != nil {
			t.Fatalf("failed to create database: %v", err)
		}
		defer db.Close()

		if _, err := RunMigrations(db); err != nil {
			t.Fatalf("failed to run migrations: %v", err)
		}
		before, err := SchemaVersion(db)
		if err != nil {
			t.Fatalf("failed to read schema version: %v", err)
		}

		if err := RollbackMigration(db); err != nil {
			t.Fatalf("failed to rollback migration: %v", err)
		}

		after, err := SchemaVersion(db)
		if err != nil {
			t.Fatalf("failed to read schema version after rollback: %v", err)
		}
		if after >= before {
			t.Errorf("expected schema version to drop below %d, got %d", before, after)
		}
	})

	t.Run("Rollback On Fresh Database", func(t *testing.T) {
		db, err := NewDatabase(":memory:")
		if err != nil {
			t.Fatalf("failed to create database: %v", err)
		}
		defer db.Close()

		err = RollbackMigration(db)
		if err == nil || !strings.Contains(err.Error(), "no migrations to rollback") {
			t.Errorf("expected no-migrations error, got %v", err)
		}
	})

	t.Run("SchemaVersion On Fresh Database", func(t *testing.T) {
		db, err := NewDatabase(":memory:")
		if err != nil {
			t.Fatalf("failed to create database: %v", err)
		}
		defer db.Close()

		version, err := SchemaVersion(db)
		if err != nil {
			t.Fatalf("SchemaVersion() error = %v", err)
		}
		if version != 0 {
			t.Errorf("expected version 0 on fresh database, got %d", version)
		}
	})
}

func TestStripComments(t *testing.T) {
	in := "CREATE TABLE t (\n  id TEXT -- primary key\n); -- done"
	got := stripComments(in)
	if strings.Contains(got, "--") {
		t.Errorf("expected comments stripped, got %q", got)
	}
	if !strings.Contains(got, "id TEXT") {
		t.Errorf("expected statement body kept, got %q", got)
	}
}
