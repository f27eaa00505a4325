package database

import (
	"context"
	"testing"

	"github.com/kdimtricp/chessbook/internal/models"
)

func testGameRecord(id int64) *models.GameRecord {
	return &models.GameRecord{
		GameID:                       id,
		GameURL:                      "https://www.chess.com/game/live/1111",
		PlayerUsername:               "danny",
		OpponentUsername:             "rival",
		PlayerColor:                  "White",
		TimeClass:                    "blitz",
		StartTime:                    1704103200,
		EndTime:                      1704103500,
		PlayerEndRating:              2500,
		OpponentEndRating:            2400,
		PlayerStartRating:            2490,
		EstimatedOpponentStartRating: 2410,
		DisplayNamePlayer:            "danny (2490)",
		DisplayNameOpponent:          "rival (2410)",
		PGN:                          "1. e4 e5 1-0",
	}
}

func TestGameRepository_InsertAndGet(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	repo := NewGameRepository(db)
	ctx := context.Background()

	game := testGameRecord(1111)
	if err := repo.Insert(ctx, game); err != nil {
		t.Fatalf("Failed to insert game: %v", err)
	}

	retrieved, err := repo.GetByID(ctx, 1111)
	if err != nil {
		t.Fatalf("Failed to retrieve game: %v", err)
	}
	if retrieved.PlayerUsername != game.PlayerUsername {
		t.Errorf("Expected username %s, got %s", game.PlayerUsername, retrieved.PlayerUsername)
	}
	if retrieved.DisplayNameOpponent != game.DisplayNameOpponent {
		t.Errorf("Expected opponent display %s, got %s", game.DisplayNameOpponent, retrieved.DisplayNameOpponent)
	}
	if retrieved.StartTime != game.StartTime {
		t.Errorf("Expected start time %d, got %d", game.StartTime, retrieved.StartTime)
	}
}

func TestGameRepository_GetByID_NotFound(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	repo := NewGameRepository(db)
	if _, err := repo.GetByID(context.Background(), 9999); err == nil {
		t.Error("Expected error for non-existent game, got nil")
	}
}

func TestGameRepository_InsertAll(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	repo := NewGameRepository(db)
	ctx := context.Background()

	games := []*models.GameRecord{testGameRecord(3), testGameRecord(1), testGameRecord(2)}
	if err := repo.InsertAll(ctx, games); err != nil {
		t.Fatalf("Failed to insert games: %v", err)
	}

	listed, err := repo.List(ctx)
	if err != nil {
		t.Fatalf("Failed to list games: %v", err)
	}
	if len(listed) != 3 {
		t.Fatalf("Expected 3 games, got %d", len(listed))
	}
	for i, want := range []int64{1, 2, 3} {
		if listed[i].GameID != want {
			t.Errorf("Expected game %d at position %d, got %d", want, i, listed[i].GameID)
		}
	}
}
