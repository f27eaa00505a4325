package pipeline

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const breyerPGN = `[Event "Live Chess"]
[Site "Chess.com"]
[White "danny"]
[Black "rival"]
[Result "1-0"]
[WhiteElo "2500"]
[BlackElo "2400"]
[UTCDate "2024.01.01"]
[StartTime "10:00:00"]
[EndDate "2024.01.01"]
[EndTime "10:05:00"]

1. e4 e5 2. Nf3 Nc6 3. Bb5 a6 4. Ba4 Nf6 5. O-O Be7 6. Re1 b5 7. Bb3 d6 8. c3 O-O 9. h3 Nb8 10. d4 Nbd7 1-0
`

const antiMarshallPGN = `[Event "Live Chess"]
[Site "Chess.com"]
[White "boss"]
[Black "danny"]
[Result "0-1"]
[WhiteElo "2600"]
[BlackElo "2510"]
[UTCDate "2024.01.01"]
[StartTime "11:00:00"]
[EndDate "2024.01.01"]
[EndTime "11:05:00"]

1. e4 e5 2. Nf3 Nc6 3. Bb5 a6 4. Ba4 Nf6 5. O-O Be7 6. d3 b5 7. Bb3 d6 8. a4 b4 9. Nbd2 O-O 10. c3 Rb8 0-1
`

const warmupPGN = `[Event "Live Chess"]
[Site "Chess.com"]
[White "danny"]
[Black "foo"]
[Result "1-0"]
[WhiteElo "2490"]
[BlackElo "2400"]
[UTCDate "2024.01.01"]
[StartTime "09:00:00"]
[EndDate "2024.01.01"]
[EndTime "09:05:00"]

1. e4 e5 2. Nf3 Nc6 1-0
`

var (
	testPlaylistID = "PL" + strings.Repeat("A", 32)
	testVideoID    = "dQw4w9WgXcQ"
	testTranscript = testPlaylistID + "_ss__" + testVideoID + ".done"
)

func writeFixtures(t *testing.T) Config {
	t.Helper()
	dir := t.TempDir()

	gamesDir := filepath.Join(dir, "games")
	ocrDir := filepath.Join(dir, "ocr")
	for _, d := range []string{gamesDir, ocrDir} {
		if err := os.Mkdir(d, 0o755); err != nil {
			t.Fatalf("Failed to create %s: %v", d, err)
		}
	}

	archive := []map[string]string{
		{
			"initial_setup": "",
			"rules":         "chess",
			"pgn":           warmupPGN,
			"url":           "https://www.chess.com/game/live/1000",
			"time_class":    "blitz",
		},
		{
			"initial_setup": "",
			"rules":         "chess",
			"pgn":           breyerPGN,
			"url":           "https://www.chess.com/game/live/1111",
			"time_class":    "blitz",
		},
		{
			"initial_setup": "",
			"rules":         "chess",
			"pgn":           antiMarshallPGN,
			"url":           "https://www.chess.com/game/live/2222",
			"time_class":    "blitz",
		},
		{
			// Odd starting position: filtered out before any checks.
			"initial_setup": "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR b KQkq - 0 1",
			"rules":         "chess960",
			"pgn":           warmupPGN,
			"url":           "https://www.chess.com/game/live/3000",
			"time_class":    "blitz",
		},
	}
	data, err := json.Marshal(archive)
	if err != nil {
		t.Fatalf("Failed to marshal archive: %v", err)
	}
	if err := os.WriteFile(filepath.Join(gamesDir, "danny.json"), data, 0o644); err != nil {
		t.Fatalf("Failed to write archive: %v", err)
	}

	box := func(x float64) [4][2]float64 {
		return [4][2]float64{{x, 20}, {x + 100, 20}, {x + 100, 40}, {x, 40}}
	}
	det := func(text string, b [4][2]float64) []interface{} {
		return []interface{}{b, []interface{}{text, 0.98}}
	}
	line := func(time float64, detections ...[]interface{}) string {
		payload, err := json.Marshal([]interface{}{detections})
		if err != nil {
			t.Fatalf("Failed to marshal detections: %v", err)
		}
		return fmt.Sprintf("%g %s", time, payload)
	}

	transcript := strings.Join([]string{
		// Noisy but recoverable first sighting of the Breyer game.
		line(5, det("danny(2490)", box(10)), det("rlval (2410)", box(200))),
		"7.5 [null]",
		// Clean repeat of the same game plus stream chrome.
		line(10.5, det("danny (2490)", box(12)), det("rival (2410)", box(202)), det("LIVE", box(400))),
		// The game danny played as Black.
		line(20, det("danny (2500)", box(10)), det("boss (2610)", box(200))),
	}, "\n") + "\n"
	if err := os.WriteFile(filepath.Join(ocrDir, testTranscript), []byte(transcript), 0o644); err != nil {
		t.Fatalf("Failed to write transcript: %v", err)
	}

	sources := "gm_username,playlist,series_name\n" +
		"danny,https://www.youtube.com/playlist?list=" + testPlaylistID + ",Danny Speedruns\n"
	sourcesPath := filepath.Join(dir, "data_sources.csv")
	if err := os.WriteFile(sourcesPath, []byte(sources), 0o644); err != nil {
		t.Fatalf("Failed to write data sources: %v", err)
	}

	return Config{
		GamesDir:        gamesDir,
		OCRDir:          ocrDir,
		DataSourcesPath: sourcesPath,
		Threshold:       80,
		Last4Agree:      true,
	}
}

func TestRun_EndToEnd(t *testing.T) {
	result, err := Run(writeFixtures(t))
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	// Three standard games survive normalization; the 960 game is filtered.
	if len(result.Games) != 3 {
		t.Fatalf("Expected 3 normalized games, got %d", len(result.Games))
	}

	if len(result.Linked) != 2 {
		t.Fatalf("Expected 2 linked games, got %d", len(result.Linked))
	}
	first, second := result.Linked[0], result.Linked[1]
	if first.Game.GameID != 1111 || second.Game.GameID != 2222 {
		t.Fatalf("Linked game ids = %d, %d", first.Game.GameID, second.Game.GameID)
	}

	// The Breyer game was first seen at t=5 via the noisy OCR strings.
	if first.Time != 5 {
		t.Errorf("Canonical time = %f, want 5", first.Time)
	}
	if first.Link != "https://youtu.be/"+testVideoID+"?t=5" {
		t.Errorf("Link = %q", first.Link)
	}
	if first.SeriesName != "Danny Speedruns" {
		t.Errorf("SeriesName = %q", first.SeriesName)
	}
	if first.VersusLabel != "danny (2490) vs rival (2410)" {
		t.Errorf("VersusLabel = %q", first.VersusLabel)
	}

	// The Black-side game orders the opponent first in the label.
	if second.VersusLabel != "boss (2610) vs danny (2500)" {
		t.Errorf("VersusLabel = %q", second.VersusLabel)
	}
	if second.Time != 20 {
		t.Errorf("Canonical time = %f, want 20", second.Time)
	}
}

func TestRun_ObservationsAndMatches(t *testing.T) {
	result, err := Run(writeFixtures(t))
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	// 2 + 3 + 2 detections across the three non-null frames.
	if len(result.Observations) != 7 {
		t.Errorf("Expected 7 observations, got %d", len(result.Observations))
	}

	if _, ok := result.PlayerMatches["danny(2490)"]; !ok {
		t.Error("Expected noisy OCR text to match the player role")
	}
	if m := result.PlayerMatches["danny(2490)"]; m.DisplayName != "danny (2490)" {
		t.Errorf("Noisy text matched %q", m.DisplayName)
	}
	if _, ok := result.OpponentMatches["rlval (2410)"]; !ok {
		t.Error("Expected noisy OCR text to match the opponent role")
	}
	if _, ok := result.PlayerMatches["LIVE"]; ok {
		t.Error("Stream chrome must not match the player role")
	}
	if _, ok := result.OpponentMatches["LIVE"]; ok {
		t.Error("Stream chrome must not match the opponent role")
	}
}

func TestRun_BookDocument(t *testing.T) {
	result, err := Run(writeFixtures(t))
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	doc := result.Book

	ids := doc.Series["Danny Speedruns"]
	if len(ids) != 2 || ids[0] != 1111 || ids[1] != 2222 {
		t.Errorf("Series = %v, want [1111 2222]", ids)
	}

	entry, ok := doc.Games["1111"]
	if !ok {
		t.Fatal("Expected game 1111 in games index")
	}
	if entry.Rating != 2490 {
		t.Errorf("Rating = %d, want 2490", entry.Rating)
	}

	if len(doc.White.GameIDs) != 1 || doc.White.GameIDs[0] != 1111 {
		t.Errorf("White root = %v, want [1111]", doc.White.GameIDs)
	}
	if len(doc.Black.GameIDs) != 1 || doc.Black.GameIDs[0] != 2222 {
		t.Errorf("Black root = %v, want [2222]", doc.Black.GameIDs)
	}
}

func TestRun_Idempotent(t *testing.T) {
	cfg := writeFixtures(t)

	first, err := Run(cfg)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	second, err := Run(cfg)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	a, err := json.Marshal(first.Book)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	b, err := json.Marshal(second.Book)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	if string(a) != string(b) {
		t.Error("Identical inputs produced different book documents")
	}
}

func TestRun_MissingSourcesFileFails(t *testing.T) {
	cfg := writeFixtures(t)
	cfg.DataSourcesPath = filepath.Join(t.TempDir(), "missing.csv")
	if _, err := Run(cfg); err == nil {
		t.Error("Expected error for missing data sources file")
	}
}
