package models

import "fmt"

// DefaultStartRating is assumed for a player's first rated game in a time
// class, matching what chess.com seeds new accounts with.
const DefaultStartRating = 400

// GameRecord is one finished game from a player's archive, normalized so
// that the tracked player is always "player" regardless of color.
type GameRecord struct {
	GameID            int64
	GameURL           string
	PlayerUsername    string
	OpponentUsername  string
	PlayerColor       string // "White" or "Black"
	TimeClass         string
	StartTime         int64 // POSIX seconds
	EndTime           int64 // POSIX seconds
	PlayerEndRating   int
	OpponentEndRating int

	// Derived once by the normalizer, never revised.
	PlayerStartRating            int
	EstimatedOpponentStartRating int
	DisplayNamePlayer            string
	DisplayNameOpponent          string

	PGN string
}

// DisplayName synthesizes the "username (rating)" string displayed on the
// broadcast overlay, which is the join key against OCR-recognized text.
func DisplayName(username string, rating int) string {
	return fmt.Sprintf("%s (%d)", username, rating)
}

// VersusLabel renders the game as "white side vs black side" using the
// display names, with the White player always listed first.
func (g *GameRecord) VersusLabel() string {
	if g.PlayerColor == "White" {
		return g.DisplayNamePlayer + " vs " + g.DisplayNameOpponent
	}
	return g.DisplayNameOpponent + " vs " + g.DisplayNamePlayer
}
