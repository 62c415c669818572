package migrate_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/lucasfarrell/wavecrest-backend/pkg/migrate"
)

func TestAssignmentsMigrationContainsConstraints(t *testing.T) {
	matches, err := filepath.Glob(filepath.Join("migrations", "*_create_trip_assignments.sql"))
	if err != nil {
		t.Fatalf("glob migrations: %v", err)
	}
	if len(matches) == 0 {
		t.Fatalf("no trip assignments migration file found")
	}

	data, err := os.ReadFile(matches[0])
	if err != nil {
		t.Fatalf("read migration file: %v", err)
	}
	content := string(data)

	checks := []string{
		"CREATE TABLE IF NOT EXISTS trip_assignments",
		"FOREIGN KEY (trip_id) REFERENCES trips(id) ON DELETE CASCADE",
		"ux_trip_assignments_trip_guide ON trip_assignments(trip_id, guide_id)",
		"WHERE status IN ('pending_confirmation', 'confirmed')",
		"CHECK (fee_amount >= 0)",
		"DROP TABLE IF EXISTS trip_assignments",
	}

	for _, sub := range checks {
		if !strings.Contains(content, sub) {
			t.Errorf("missing expected statement %q", sub)
		}
	}
}

func TestSwapMigrationForbidsSelfSwap(t *testing.T) {
	matches, err := filepath.Glob(filepath.Join("migrations", "*_create_shift_swap_requests.sql"))
	if err != nil {
		t.Fatalf("glob migrations: %v", err)
	}
	if len(matches) == 0 {
		t.Fatalf("no shift swap migration file found")
	}

	data, err := os.ReadFile(matches[0])
	if err != nil {
		t.Fatalf("read migration file: %v", err)
	}
	content := string(data)

	checks := []string{
		"CREATE TABLE IF NOT EXISTS shift_swap_requests",
		"CHECK (from_guide_id <> to_guide_id)",
		"DROP TABLE IF EXISTS shift_swap_requests",
	}

	for _, sub := range checks {
		if !strings.Contains(content, sub) {
			t.Errorf("missing expected statement %q", sub)
		}
	}
}

func TestMigrationsDirValidates(t *testing.T) {
	if err := migrate.ValidateDir("migrations"); err != nil {
		t.Fatalf("validate migrations dir: %v", err)
	}
}
