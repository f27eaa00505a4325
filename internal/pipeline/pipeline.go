package pipeline

import (
	"fmt"
	"log"

	"github.com/kdimtricp/chessbook/internal/archive"
	"github.com/kdimtricp/chessbook/internal/book"
	"github.com/kdimtricp/chessbook/internal/correlate"
	"github.com/kdimtricp/chessbook/internal/match"
	"github.com/kdimtricp/chessbook/internal/models"
	"github.com/kdimtricp/chessbook/internal/ocr"
)

// Config selects the pipeline inputs and matching parameters.
type Config struct {
	GamesDir        string
	OCRDir          string
	DataSourcesPath string
	Threshold       float64
	Last4Agree      bool
}

// Result carries every stage's output. Each stage is a pure
// transformation over the previous one; the whole corpus stays in memory
// for the run.
type Result struct {
	Games           []*models.GameRecord
	Observations    []ocr.Observation
	PlayerMatches   match.Table
	OpponentMatches match.Table
	Linked          []correlate.LinkedGame
	Book            *book.Document
}

// Run executes the five stages in order: normalize the game archive, load
// the OCR transcripts, match OCR strings to display names per role,
// correlate frames with games, and fold the linked games into the book.
func Run(cfg Config) (*Result, error) {
	games, err := archive.LoadDir(cfg.GamesDir)
	if err != nil {
		return nil, fmt.Errorf("loading game archive: %w", err)
	}
	log.Printf("[PIPELINE] %d games normalized", len(games))

	observations, err := ocr.LoadDir(cfg.OCRDir)
	if err != nil {
		return nil, fmt.Errorf("loading ocr transcripts: %w", err)
	}

	series, err := correlate.LoadSeriesMap(cfg.DataSourcesPath)
	if err != nil {
		return nil, fmt.Errorf("loading series mapping: %w", err)
	}

	ocrTexts := make([]string, len(observations))
	for i, obs := range observations {
		ocrTexts[i] = obs.Text
	}
	playerNames := make([]string, len(games))
	opponentNames := make([]string, len(games))
	for i, g := range games {
		playerNames[i] = g.DisplayNamePlayer
		opponentNames[i] = g.DisplayNameOpponent
	}

	opts := match.Options{Threshold: cfg.Threshold, Last4Agree: cfg.Last4Agree}
	playerMatches := match.BuildTable(ocrTexts, playerNames, opts)
	opponentMatches := match.BuildTable(ocrTexts, opponentNames, opts)

	linked := correlate.Correlate(observations, playerMatches, opponentMatches, games, series)

	doc, err := book.Build(linked)
	if err != nil {
		return nil, fmt.Errorf("building book: %w", err)
	}

	return &Result{
		Games:           games,
		Observations:    observations,
		PlayerMatches:   playerMatches,
		OpponentMatches: opponentMatches,
		Linked:          linked,
		Book:            doc,
	}, nil
}
