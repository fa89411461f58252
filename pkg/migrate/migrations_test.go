package migrate_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/syncuphq/syncup-backend/pkg/migrate"
)

func TestMigrationsDirIsValid(t *testing.T) {
	if err := migrate.ValidateDir("migrations"); err != nil {
		t.Fatalf("validate migrations dir: %v", err)
	}
}

func TestValidateDirRejectsInvertedSections(t *testing.T) {
	dir := t.TempDir()
	bad := "-- +goose Down\nDROP TABLE widgets;\n-- +goose Up\nCREATE TABLE widgets (id uuid);\n"
	if err := os.WriteFile(filepath.Join(dir, "20250901120000_widgets.sql"), []byte(bad), 0o644); err != nil {
		t.Fatalf("write migration: %v", err)
	}
	if err := migrate.ValidateDir(dir); err == nil {
		t.Fatal("expected validation to reject Down before Up")
	}
}

func TestCreateSQLMigrationPassesValidation(t *testing.T) {
	dir := t.TempDir()
	path, err := migrate.CreateSQLMigration(dir, "Add widget index!")
	if err != nil {
		t.Fatalf("create migration: %v", err)
	}
	if !strings.HasSuffix(path, "_add_widget_index.sql") {
		t.Fatalf("unexpected filename %q", path)
	}
	if err := migrate.ValidateDir(dir); err != nil {
		t.Fatalf("generated migration should validate: %v", err)
	}
}

func TestOrganizationsMigrationContainsConstraints(t *testing.T) {
	matches, err := filepath.Glob(filepath.Join("migrations", "*_create_organizations.sql"))
	if err != nil {
		t.Fatalf("glob migrations: %v", err)
	}
	if len(matches) == 0 {
		t.Fatalf("no organizations migration file found")
	}

	data, err := os.ReadFile(matches[0])
	if err != nil {
		t.Fatalf("read migration file: %v", err)
	}
	content := string(data)

	checks := []string{
		"CREATE TABLE organization_members",
		"CREATE UNIQUE INDEX idx_org_member_user ON organization_members (organization_id, user_id)",
		"CREATE UNIQUE INDEX ux_org_roles_default",
		"WHERE status = 'pending'",
		"DROP TABLE organization_members",
	}

	for _, sub := range checks {
		if !strings.Contains(content, sub) {
			t.Errorf("missing expected statement %q", sub)
		}
	}
}

func TestPaymentsMigrationKeepsInvoiceUnique(t *testing.T) {
	matches, err := filepath.Glob(filepath.Join("migrations", "*_create_payments.sql"))
	if err != nil {
		t.Fatalf("glob migrations: %v", err)
	}
	if len(matches) == 0 {
		t.Fatalf("no payments migration file found")
	}

	data, err := os.ReadFile(matches[0])
	if err != nil {
		t.Fatalf("read migration file: %v", err)
	}
	if !strings.Contains(string(data), "CREATE UNIQUE INDEX ux_payments_invoice ON payments (invoice_id)") {
		t.Error("payments migration must keep invoice_id unique for webhook idempotency")
	}
}
