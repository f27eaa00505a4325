package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/kdimtricp/chessbook/internal/correlate"
	"github.com/kdimtricp/chessbook/internal/ocr"
)

// LinkedGameRow is the persisted projection of a correlated game. The
// full GameRecord lives in the games table; this row carries the video
// linkage.
type LinkedGameRow struct {
	GameID         int64
	Source         string
	Time           float64
	VideoID        string
	PlaylistID     string
	Link           string
	SeriesName     string
	VersusLabel    string
	PlayerBox      ocr.Box
	OpponentBox    ocr.Box
	AggPlayerBox   [4][2]int
	AggOpponentBox [4][2]int
}

type LinkedGameRepository struct {
	db *DB
}

func NewLinkedGameRepository(db *DB) *LinkedGameRepository {
	return &LinkedGameRepository{db: db}
}

func (r *LinkedGameRepository) Insert(ctx context.Context, lg correlate.LinkedGame) error {
	return insertLinked(ctx, r.db.conn, lg)
}

func insertLinked(ctx context.Context, ex execer, lg correlate.LinkedGame) error {
	playerBox, err := json.Marshal(lg.PlayerBox)
	if err != nil {
		return fmt.Errorf("failed to marshal player box: %w", err)
	}
	opponentBox, err := json.Marshal(lg.OpponentBox)
	if err != nil {
		return fmt.Errorf("failed to marshal opponent box: %w", err)
	}
	aggPlayerBox, err := json.Marshal(lg.AggPlayerBox)
	if err != nil {
		return fmt.Errorf("failed to marshal aggregate player box: %w", err)
	}
	aggOpponentBox, err := json.Marshal(lg.AggOpponentBox)
	if err != nil {
		return fmt.Errorf("failed to marshal aggregate opponent box: %w", err)
	}

	query := `
		INSERT OR REPLACE INTO linked_games (
			game_id, source, time, video_id, playlist_id, link,
			series_name, versus_label, player_box, opponent_box,
			agg_player_box, agg_opponent_box
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err = ex.ExecContext(ctx, query,
		lg.Game.GameID,
		lg.Source,
		lg.Time,
		lg.VideoID,
		lg.PlaylistID,
		lg.Link,
		lg.SeriesName,
		lg.VersusLabel,
		string(playerBox),
		string(opponentBox),
		string(aggPlayerBox),
		string(aggOpponentBox),
	)
	if err != nil {
		return fmt.Errorf("failed to insert linked game %d: %w", lg.Game.GameID, err)
	}
	return nil
}

func (r *LinkedGameRepository) InsertAll(ctx context.Context, linked []correlate.LinkedGame) error {
	tx, err := r.db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, lg := range linked {
		if err := insertLinked(ctx, tx, lg); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func (r *LinkedGameRepository) GetByGameID(ctx context.Context, gameID int64) (*LinkedGameRow, error) {
	query := selectLinked + ` WHERE game_id = ?`

	row := r.db.conn.QueryRowContext(ctx, query, gameID)
	lg, err := scanLinked(row.Scan)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("linked game %d not found", gameID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get linked game %d: %w", gameID, err)
	}
	return lg, nil
}

func (r *LinkedGameRepository) List(ctx context.Context) ([]*LinkedGameRow, error) {
	query := selectLinked + ` ORDER BY game_id`

	rows, err := r.db.conn.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list linked games: %w", err)
	}
	defer rows.Close()

	var linked []*LinkedGameRow
	for rows.Next() {
		lg, err := scanLinked(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("failed to scan linked game: %w", err)
		}
		linked = append(linked, lg)
	}
	return linked, rows.Err()
}

const selectLinked = `
	SELECT game_id, source, time, video_id, playlist_id, link,
		   series_name, versus_label, player_box, opponent_box,
		   agg_player_box, agg_opponent_box
	FROM linked_games`

func scanLinked(scan func(dest ...interface{}) error) (*LinkedGameRow, error) {
	lg := &LinkedGameRow{}
	var playerBox, opponentBox, aggPlayerBox, aggOpponentBox string
	err := scan(
		&lg.GameID,
		&lg.Source,
		&lg.Time,
		&lg.VideoID,
		&lg.PlaylistID,
		&lg.Link,
		&lg.SeriesName,
		&lg.VersusLabel,
		&playerBox,
		&opponentBox,
		&aggPlayerBox,
		&aggOpponentBox,
	)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(playerBox), &lg.PlayerBox); err != nil {
		return nil, fmt.Errorf("failed to unmarshal player box: %w", err)
	}
	if err := json.Unmarshal([]byte(opponentBox), &lg.OpponentBox); err != nil {
		return nil, fmt.Errorf("failed to unmarshal opponent box: %w", err)
	}
	if err := json.Unmarshal([]byte(aggPlayerBox), &lg.AggPlayerBox); err != nil {
		return nil, fmt.Errorf("failed to unmarshal aggregate player box: %w", err)
	}
	if err := json.Unmarshal([]byte(aggOpponentBox), &lg.AggOpponentBox); err != nil {
		return nil, fmt.Errorf("failed to unmarshal aggregate opponent box: %w", err)
	}
	return lg, nil
}
