package database

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

type DB struct {
	conn *sql.DB
}

type Config struct {
	Path string
}

func NewDB(config Config) (*DB, error) {
	conn, err := sql.Open("sqlite3", config.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := conn.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	db := &DB{conn: conn}
	if err := db.createTables(); err != nil {
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return db, nil
}

func (db *DB) createTables() error {
	query := `
	CREATE TABLE IF NOT EXISTS games (
		game_id INTEGER PRIMARY KEY,
		game_url TEXT NOT NULL,
		player_username TEXT NOT NULL,
		opponent_username TEXT NOT NULL,
		player_color TEXT NOT NULL,
		time_class TEXT NOT NULL,
		start_time INTEGER NOT NULL,
		end_time INTEGER NOT NULL,
		player_end_rating INTEGER NOT NULL,
		opponent_end_rating INTEGER NOT NULL,
		player_start_rating INTEGER NOT NULL,
		estimated_opponent_start_rating INTEGER NOT NULL,
		display_name_player TEXT NOT NULL,
		display_name_opponent TEXT NOT NULL,
		pgn TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS linked_games (
		game_id INTEGER PRIMARY KEY,
		source TEXT NOT NULL,
		time REAL NOT NULL,
		video_id TEXT NOT NULL,
		playlist_id TEXT NOT NULL,
		link TEXT NOT NULL,
		series_name TEXT NOT NULL,
		versus_label TEXT NOT NULL,
		player_box TEXT NOT NULL,
		opponent_box TEXT NOT NULL,
		agg_player_box TEXT NOT NULL,
		agg_opponent_box TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		started_at DATETIME NOT NULL,
		finished_at DATETIME,
		game_count INTEGER NOT NULL DEFAULT 0,
		observation_count INTEGER NOT NULL DEFAULT 0,
		linked_count INTEGER NOT NULL DEFAULT 0,
		book_path TEXT
	);
	`

	_, err := db.conn.Exec(query)
	return err
}

func (db *DB) Close() error {
	return db.conn.Close()
}

func (db *DB) Conn() *sql.DB {
	return db.conn
}
