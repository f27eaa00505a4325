package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Run records one pipeline execution and its row counts.
type Run struct {
	ID               string
	StartedAt        time.Time
	FinishedAt       *time.Time
	GameCount        int
	ObservationCount int
	LinkedCount      int
	BookPath         string
}

func NewRun() *Run {
	return &Run{
		ID:        uuid.New().String(),
		StartedAt: time.Now().UTC(),
	}
}

type RunRepository struct {
	db *DB
}

func NewRunRepository(db *DB) *RunRepository {
	return &RunRepository{db: db}
}

func (r *RunRepository) Create(ctx context.Context, run *Run) error {
	query := `
		INSERT INTO runs (id, started_at, game_count, observation_count, linked_count, book_path)
		VALUES (?, ?, ?, ?, ?, ?)`

	_, err := r.db.conn.ExecContext(ctx, query,
		run.ID, run.StartedAt, run.GameCount, run.ObservationCount, run.LinkedCount, run.BookPath)
	if err != nil {
		return fmt.Errorf("failed to insert run: %w", err)
	}
	return nil
}

// Finish stamps the run as completed and saves the final counts.
func (r *RunRepository) Finish(ctx context.Context, run *Run) error {
	now := time.Now().UTC()
	run.FinishedAt = &now

	query := `
		UPDATE runs
		SET finished_at = ?, game_count = ?, observation_count = ?, linked_count = ?, book_path = ?
		WHERE id = ?`

	_, err := r.db.conn.ExecContext(ctx, query,
		run.FinishedAt, run.GameCount, run.ObservationCount, run.LinkedCount, run.BookPath, run.ID)
	if err != nil {
		return fmt.Errorf("failed to finish run: %w", err)
	}
	return nil
}

func (r *RunRepository) GetByID(ctx context.Context, id string) (*Run, error) {
	query := `
		SELECT id, started_at, finished_at, game_count, observation_count, linked_count, book_path
		FROM runs WHERE id = ?`

	run := &Run{}
	var bookPath sql.NullString
	err := r.db.conn.QueryRowContext(ctx, query, id).Scan(
		&run.ID, &run.StartedAt, &run.FinishedAt,
		&run.GameCount, &run.ObservationCount, &run.LinkedCount, &bookPath)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("run %s not found", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get run %s: %w", id, err)
	}
	run.BookPath = bookPath.String
	return run, nil
}
