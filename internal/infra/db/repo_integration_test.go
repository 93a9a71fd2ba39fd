//go:build integration

package db

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"squircle/internal/domain"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Run with:
//
//	POSTGRES_DSN_TEST="host=localhost user=postgres dbname=squircle_test sslmode=disable" \
//	  go test -tags integration ./internal/infra/db/...
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := os.Getenv("POSTGRES_DSN_TEST")
	if dsn == "" {
		t.Skip("POSTGRES_DSN_TEST not set")
	}
	gdb, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	if err := gdb.AutoMigrate(&IdeaModel{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	t.Cleanup(func() {
		gdb.Exec("DELETE FROM ideas")
	})
	return gdb
}

func TestIdeaRepositoryRoundTrip(t *testing.T) {
	repo := NewIdeaRepository(setupTestDB(t))
	ctx := context.Background()

	created, err := repo.Create(ctx, domain.Idea{
		Text:      "integration idea",
		Status:    domain.IdeaStatusPending,
		CreatorID: "member-1",
		TeamID:    "org-1",
		CreatedAt: time.Now().UTC(),
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if created.ID == 0 {
		t.Fatal("expected an assigned id")
	}

	ideas, err := repo.ListByTeam(ctx, "org-1")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(ideas) != 1 || ideas[0].Text != "integration idea" {
		t.Fatalf("unexpected listing: %+v", ideas)
	}

	deleted, err := repo.Delete(ctx, created.ID, "org-1")
	if err != nil {
		t.Fatalf("delete: %v", err)
	}
	if deleted.ID != created.ID {
		t.Fatalf("deleted id = %d, want %d", deleted.ID, created.ID)
	}
}

func TestIdeaRepositoryTeamScoping(t *testing.T) {
	repo := NewIdeaRepository(setupTestDB(t))
	ctx := context.Background()

	ours, err := repo.Create(ctx, domain.Idea{Text: "ours", Status: domain.IdeaStatusPending, CreatorID: "m1", TeamID: "org-1"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := repo.Create(ctx, domain.Idea{Text: "theirs", Status: domain.IdeaStatusApproved, CreatorID: "m2", TeamID: "org-2"}); err != nil {
		t.Fatalf("create: %v", err)
	}

	ideas, err := repo.ListByTeam(ctx, "org-1")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(ideas) != 1 || ideas[0].ID != ours.ID {
		t.Fatalf("listing leaked across teams: %+v", ideas)
	}

	if _, err := repo.Delete(ctx, ours.ID, "org-2"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound for cross-team delete", err)
	}
	remaining, err := repo.ListByTeam(ctx, "org-1")
	if err != nil {
		t.Fatalf("list after cross-team delete: %v", err)
	}
	if len(remaining) != 1 {
		t.Fatal("cross-team delete removed the record")
	}
}

func TestIdeaRepositoryDeleteGone(t *testing.T) {
	repo := NewIdeaRepository(setupTestDB(t))
	ctx := context.Background()

	created, err := repo.Create(ctx, domain.Idea{Text: "ephemeral", Status: domain.IdeaStatusPending, CreatorID: "m1", TeamID: "org-1"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := repo.Delete(ctx, created.ID, "org-1"); err != nil {
		t.Fatalf("delete: %v", err)
	}

	// The record is already gone; the single scoped statement affects zero
	// rows and must report not-found, not a stale success.
	if _, err := repo.Delete(ctx, created.ID, "org-1"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound for repeated delete", err)
	}
}

func TestIdeaRepositoryNilDB(t *testing.T) {
	repo := NewIdeaRepository(nil)

	if _, err := repo.ListByTeam(context.Background(), "org-1"); !errors.Is(err, domain.ErrUpstreamUnavailable) {
		t.Fatalf("err = %v, want ErrUpstreamUnavailable", err)
	}
}
