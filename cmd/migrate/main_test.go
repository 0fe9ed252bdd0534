package main

import (
	"testing"

	bq "github.com/dvloznov/ledger-dashboard/internal/bigquery"
)

func TestPendingMigrations(t *testing.T) {
	migrations := []bq.Migration{
		{Version: 1, Name: "init_schema_migrations", Checksum: "aaa"},
		{Version: 2, Name: "create_ledger_tables", Checksum: "bbb"},
		{Version: 3, Name: "add_index", Checksum: "ccc"},
	}

	tests := []struct {
		name        string
		applied     []AppliedMigration
		wantPending []int
		wantChanged []int
	}{
		{
			name:        "fresh dataset",
			applied:     nil,
			wantPending: []int{1, 2, 3},
		},
		{
			name:        "partially applied",
			applied:     []AppliedMigration{{Version: 1, Checksum: "aaa"}},
			wantPending: []int{2, 3},
		},
		{
			name: "up to date with a changed file",
			applied: []AppliedMigration{
				{Version: 1, Checksum: "aaa"},
				{Version: 2, Checksum: "old"},
				{Version: 3},
			},
			wantChanged: []int{2},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pending, changed := pendingMigrations(migrations, tt.applied)
			assertVersions(t, "pending", pending, tt.wantPending)
			assertVersions(t, "changed", changed, tt.wantChanged)
		})
	}
}

func assertVersions(t *testing.T, label string, got []bq.Migration, want []int) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("%s: got %d migrations, want %d", label, len(got), len(want))
	}
	for i := range want {
		if got[i].Version != want[i] {
			t.Errorf("%s[%d] = %d, want %d", label, i, got[i].Version, want[i])
		}
	}
}

func TestEmbeddedMigrationsAreOrdered(t *testing.T) {
	migrations, err := bq.Migrations(bq.Dataset{ProjectID: "p", DatasetID: "d"})
	if err != nil {
		t.Fatalf("Migrations failed: %v", err)
	}
	if len(migrations) < 2 {
		t.Fatalf("expected embedded migrations, got %d", len(migrations))
	}
	for i, m := range migrations {
		if m.Version != i+1 {
			t.Errorf("migration %d has version %d", i, m.Version)
		}
	}
}
