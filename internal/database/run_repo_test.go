package database

import (
	"context"
	"testing"
)

func TestRunRepository_CreateAndFinish(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	repo := NewRunRepository(db)
	ctx := context.Background()

	run := NewRun()
	run.BookPath = "/tmp/book.json"
	if err := repo.Create(ctx, run); err != nil {
		t.Fatalf("Failed to create run: %v", err)
	}

	retrieved, err := repo.GetByID(ctx, run.ID)
	if err != nil {
		t.Fatalf("Failed to retrieve run: %v", err)
	}
	if retrieved.FinishedAt != nil {
		t.Error("Expected unfinished run to have no finish time")
	}

	run.GameCount = 100
	run.LinkedCount = 7
	if err := repo.Finish(ctx, run); err != nil {
		t.Fatalf("Failed to finish run: %v", err)
	}

	retrieved, err = repo.GetByID(ctx, run.ID)
	if err != nil {
		t.Fatalf("Failed to retrieve finished run: %v", err)
	}
	if retrieved.FinishedAt == nil {
		t.Error("Expected finished run to have a finish time")
	}
	if retrieved.GameCount != 100 || retrieved.LinkedCount != 7 {
		t.Errorf("Counts = %d/%d, want 100/7", retrieved.GameCount, retrieved.LinkedCount)
	}
}

func TestRunRepository_GetByID_NotFound(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	repo := NewRunRepository(db)
	if _, err := repo.GetByID(context.Background(), "no-such-run"); err == nil {
		t.Error("Expected error for non-existent run, got nil")
	}
}
