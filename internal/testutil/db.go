package testutil

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/codr1/Glansen/internal/db"
	dbgen "github.com/codr1/Glansen/internal/db/generated"
)

// NewTestDB creates a temporary SQLite database with migrations applied.
func NewTestDB(t *testing.T) *db.DB {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "test.db")
	database, err := db.New(dbPath)
	if err != nil {
		t.Fatalf("create test db: %v", err)
	}
	t.Cleanup(func() {
		_ = database.Close()
	})

	return database
}

// SeedOrganization inserts an organization with the given id and slug.
func SeedOrganization(t *testing.T, database *db.DB, id, slug, timezone string) {
	t.Helper()

	err := database.Queries.UpsertOrganization(context.Background(), dbgen.UpsertOrganizationParams{
		ID:       id,
		Name:     "Org " + slug,
		Slug:     slug,
		Timezone: timezone,
	})
	if err != nil {
		t.Fatalf("insert organization: %v", err)
	}
}
