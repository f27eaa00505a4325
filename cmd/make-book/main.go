package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"

	"github.com/kdimtricp/chessbook/internal/database"
	"github.com/kdimtricp/chessbook/internal/pipeline"
)

func main() {
	var (
		gamesDir    = flag.String("games", getEnv("GAMES_DIR", "./data/games"), "Directory of <username>.json archive files")
		ocrDir      = flag.String("ocr", getEnv("OCR_DIR", "./data/ocr"), "Directory of *.done OCR transcripts")
		dataSources = flag.String("sources", getEnv("DATA_SOURCES", "./data/data_sources.csv"), "Playlist/series CSV")
		bookPath    = flag.String("out", getEnv("BOOK_PATH", "./book.json"), "Output book path")
		dbPath      = flag.String("db", os.Getenv("DB_PATH"), "Optional sqlite path for persisting results")
		threshold   = flag.Float64("threshold", getEnvFloat("MATCH_THRESHOLD", 80), "Minimum name similarity (0-100)")
		last4Agree  = flag.Bool("last4", getEnvBool("LAST4_AGREE", true), "Require rating-suffix digit agreement")
	)
	flag.Parse()

	cfg := pipeline.Config{
		GamesDir:        *gamesDir,
		OCRDir:          *ocrDir,
		DataSourcesPath: *dataSources,
		Threshold:       *threshold,
		Last4Agree:      *last4Agree,
	}

	var (
		db  *database.DB
		run *database.Run
		err error
	)
	ctx := context.Background()
	if *dbPath != "" {
		db, err = database.NewDB(database.Config{Path: *dbPath})
		if err != nil {
			log.Fatal("Failed to open database:", err)
		}
		defer db.Close()

		run = database.NewRun()
		run.BookPath = *bookPath
		if err := database.NewRunRepository(db).Create(ctx, run); err != nil {
			log.Fatal("Failed to record run:", err)
		}
	}

	result, err := pipeline.Run(cfg)
	if err != nil {
		log.Fatal("Pipeline failed:", err)
	}

	if err := result.Book.WriteFile(*bookPath); err != nil {
		log.Fatal("Failed to write book:", err)
	}
	fmt.Printf("Wrote %s: %d linked games across %d series\n",
		*bookPath, len(result.Linked), len(result.Book.Series))

	if db != nil {
		if err := database.NewGameRepository(db).InsertAll(ctx, result.Games); err != nil {
			log.Fatal("Failed to persist games:", err)
		}
		if err := database.NewLinkedGameRepository(db).InsertAll(ctx, result.Linked); err != nil {
			log.Fatal("Failed to persist linked games:", err)
		}

		run.GameCount = len(result.Games)
		run.ObservationCount = len(result.Observations)
		run.LinkedCount = len(result.Linked)
		if err := database.NewRunRepository(db).Finish(ctx, run); err != nil {
			log.Fatal("Failed to finish run:", err)
		}
		fmt.Printf("Persisted run %s to %s\n", run.ID, *dbPath)
	}
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvFloat(key string, defaultVal float64) float64 {
	if val := os.Getenv(key); val != "" {
		if f, err := strconv.ParseFloat(val, 64); err == nil {
			return f
		}
	}
	return defaultVal
}

func getEnvBool(key string, defaultVal bool) bool {
	if val := os.Getenv(key); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			return b
		}
	}
	return defaultVal
}
