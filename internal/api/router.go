package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

func NewRouter(app *App) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Get("/ping", PingHandler)
	r.Get("/api/book", app.BookHandler)
	r.Get("/api/games", app.ListGamesHandler)
	r.Get("/api/games/{id}", app.GetGameHandler)
	r.Get("/api/series", app.SeriesHandler)

	fileServer := http.FileServer(http.Dir(app.StaticDir))
	r.Handle("/static/*", http.StripPrefix("/static", fileServer))

	return r
}
