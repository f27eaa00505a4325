package archive

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/kdimtricp/chessbook/internal/models"
)

// RawGame is one entry of a chess.com monthly archive dump, limited to the
// fields the normalizer consumes.
type RawGame struct {
	InitialSetup string `json:"initial_setup"`
	Rules        string `json:"rules"`
	PGN          string `json:"pgn"`
	URL          string `json:"url"`
	TimeClass    string `json:"time_class"`
}

// LoadDir reads every <username>.json archive file in dir and returns the
// normalized game records for all users, with start ratings and display
// names resolved.
func LoadDir(dir string) ([]*models.GameRecord, error) {
	fnames, err := filepath.Glob(filepath.Join(dir, "*.json"))
	if err != nil {
		return nil, fmt.Errorf("globbing archive dir: %w", err)
	}

	byUser := make(map[string][]RawGame, len(fnames))
	for _, fname := range fnames {
		username := strings.TrimSuffix(filepath.Base(fname), filepath.Ext(fname))
		data, err := os.ReadFile(fname)
		if err != nil {
			return nil, fmt.Errorf("reading archive %s: %w", fname, err)
		}
		var games []RawGame
		if err := json.Unmarshal(data, &games); err != nil {
			return nil, fmt.Errorf("parsing archive %s: %w", fname, err)
		}
		log.Printf("[ARCHIVE] %s: %d raw games", username, len(games))
		byUser[username] = games
	}

	return Normalize(byUser)
}
