package api

import (
	"encoding/json"
	"log"
	"net/http"
	"os"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/kdimtricp/chessbook/internal/database"
)

type App struct {
	BookPath  string
	StaticDir string
	Games     *database.GameRepository
	Linked    *database.LinkedGameRepository
}

func PingHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("pong"))
}

// BookHandler serves the built book document as-is. The file is the
// pipeline's output; the server never reinterprets it.
func (app *App) BookHandler(w http.ResponseWriter, r *http.Request) {
	data, err := os.ReadFile(app.BookPath)
	if err != nil {
		log.Printf("[API] reading book %s: %v", app.BookPath, err)
		http.Error(w, "Book not available", http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Write(data)
}

func (app *App) ListGamesHandler(w http.ResponseWriter, r *http.Request) {
	linked, err := app.Linked.List(r.Context())
	if err != nil {
		log.Printf("[API] listing linked games: %v", err)
		http.Error(w, "Failed to list games", http.StatusInternalServerError)
		return
	}
	writeJSON(w, linked)
}

func (app *App) GetGameHandler(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		http.Error(w, "Invalid game id", http.StatusBadRequest)
		return
	}

	linked, err := app.Linked.GetByGameID(r.Context(), id)
	if err != nil {
		http.Error(w, "Game not found", http.StatusNotFound)
		return
	}

	game, err := app.Games.GetByID(r.Context(), id)
	if err != nil {
		http.Error(w, "Game not found", http.StatusNotFound)
		return
	}

	writeJSON(w, map[string]interface{}{
		"game":   game,
		"linked": linked,
	})
}

// SeriesHandler returns series name -> game ids from the linked store.
func (app *App) SeriesHandler(w http.ResponseWriter, r *http.Request) {
	linked, err := app.Linked.List(r.Context())
	if err != nil {
		log.Printf("[API] listing linked games: %v", err)
		http.Error(w, "Failed to list series", http.StatusInternalServerError)
		return
	}

	series := make(map[string][]int64)
	for _, lg := range linked {
		series[lg.SeriesName] = append(series[lg.SeriesName], lg.GameID)
	}
	writeJSON(w, series)
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("[API] encoding response: %v", err)
	}
}
