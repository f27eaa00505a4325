package main

import (
	"log"
	"net/http"
	"os"

	"github.com/kdimtricp/chessbook/internal/api"
	"github.com/kdimtricp/chessbook/internal/database"
)

func main() {
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	bookPath := os.Getenv("BOOK_PATH")
	if bookPath == "" {
		bookPath = "./book.json"
	}

	staticDir := os.Getenv("STATIC_DIR")
	if staticDir == "" {
		staticDir = "./web/static"
	}

	dbPath := os.Getenv("DB_PATH")
	if dbPath == "" {
		dbPath = "./chessbook.db"
	}

	db, err := database.NewDB(database.Config{Path: dbPath})
	if err != nil {
		log.Fatal("Failed to initialize database:", err)
	}
	defer db.Close()

	app := &api.App{
		BookPath:  bookPath,
		StaticDir: staticDir,
		Games:     database.NewGameRepository(db),
		Linked:    database.NewLinkedGameRepository(db),
	}

	router := api.NewRouter(app)

	log.Printf("Server starting on port %s", port)
	log.Printf("Book path: %s", bookPath)
	log.Printf("Database path: %s", dbPath)

	if err := http.ListenAndServe(":"+port, router); err != nil {
		log.Fatal(err)
	}
}
