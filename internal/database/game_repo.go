package database

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/kdimtricp/chessbook/internal/models"
)

type GameRepository struct {
	db *DB
}

func NewGameRepository(db *DB) *GameRepository {
	return &GameRepository{db: db}
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
}

func (r *GameRepository) Insert(ctx context.Context, game *models.GameRecord) error {
	return insertGame(ctx, r.db.conn, game)
}

func insertGame(ctx context.Context, ex execer, game *models.GameRecord) error {
	query := `
		INSERT OR REPLACE INTO games (
			game_id, game_url, player_username, opponent_username, player_color,
			time_class, start_time, end_time, player_end_rating, opponent_end_rating,
			player_start_rating, estimated_opponent_start_rating,
			display_name_player, display_name_opponent, pgn
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err := ex.ExecContext(ctx, query,
		game.GameID,
		game.GameURL,
		game.PlayerUsername,
		game.OpponentUsername,
		game.PlayerColor,
		game.TimeClass,
		game.StartTime,
		game.EndTime,
		game.PlayerEndRating,
		game.OpponentEndRating,
		game.PlayerStartRating,
		game.EstimatedOpponentStartRating,
		game.DisplayNamePlayer,
		game.DisplayNameOpponent,
		game.PGN,
	)
	if err != nil {
		return fmt.Errorf("failed to insert game %d: %w", game.GameID, err)
	}
	return nil
}

func (r *GameRepository) InsertAll(ctx context.Context, games []*models.GameRecord) error {
	tx, err := r.db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, game := range games {
		if err := insertGame(ctx, tx, game); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func (r *GameRepository) GetByID(ctx context.Context, gameID int64) (*models.GameRecord, error) {
	query := `
		SELECT game_id, game_url, player_username, opponent_username, player_color,
			   time_class, start_time, end_time, player_end_rating, opponent_end_rating,
			   player_start_rating, estimated_opponent_start_rating,
			   display_name_player, display_name_opponent, pgn
		FROM games WHERE game_id = ?`

	game := &models.GameRecord{}
	err := r.db.conn.QueryRowContext(ctx, query, gameID).Scan(
		&game.GameID,
		&game.GameURL,
		&game.PlayerUsername,
		&game.OpponentUsername,
		&game.PlayerColor,
		&game.TimeClass,
		&game.StartTime,
		&game.EndTime,
		&game.PlayerEndRating,
		&game.OpponentEndRating,
		&game.PlayerStartRating,
		&game.EstimatedOpponentStartRating,
		&game.DisplayNamePlayer,
		&game.DisplayNameOpponent,
		&game.PGN,
	)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("game %d not found", gameID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get game %d: %w", gameID, err)
	}
	return game, nil
}

func (r *GameRepository) List(ctx context.Context) ([]*models.GameRecord, error) {
	query := `
		SELECT game_id, game_url, player_username, opponent_username, player_color,
			   time_class, start_time, end_time, player_end_rating, opponent_end_rating,
			   player_start_rating, estimated_opponent_start_rating,
			   display_name_player, display_name_opponent, pgn
		FROM games ORDER BY game_id`

	rows, err := r.db.conn.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list games: %w", err)
	}
	defer rows.Close()

	var games []*models.GameRecord
	for rows.Next() {
		game := &models.GameRecord{}
		err := rows.Scan(
			&game.GameID,
			&game.GameURL,
			&game.PlayerUsername,
			&game.OpponentUsername,
			&game.PlayerColor,
			&game.TimeClass,
			&game.StartTime,
			&game.EndTime,
			&game.PlayerEndRating,
			&game.OpponentEndRating,
			&game.PlayerStartRating,
			&game.EstimatedOpponentStartRating,
			&game.DisplayNamePlayer,
			&game.DisplayNameOpponent,
			&game.PGN,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan game: %w", err)
		}
		games = append(games, game)
	}
	return games, rows.Err()
}
