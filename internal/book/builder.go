package book

import (
	"encoding/json"
	"fmt"
	"log"
	"math"
	"strconv"
	"strings"

	"github.com/notnil/chess"

	"github.com/kdimtricp/chessbook/internal/correlate"
)

// TTLPastUnique is how many plies a branch survives past the last position
// shared with another game in the corpus.
const TTLPastUnique = 6

// StartPseudoFEN is the pseudo-FEN of the standard starting position.
const StartPseudoFEN = "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq -"

// GameEntry is the per-game index record: [versus label, deep link,
// player start rating].
type GameEntry struct {
	Label  string
	Link   string
	Rating int
}

func (e GameEntry) MarshalJSON() ([]byte, error) {
	return json.Marshal([]interface{}{e.Label, e.Link, e.Rating})
}

// Document is the opening book as served to the front end.
type Document struct {
	Series              map[string][]int64   `json:"series"`
	Games               map[string]GameEntry `json:"games"`
	White               *Node                `json:"White"`
	Black               *Node                `json:"Black"`
	WhiteTranspositions map[string][]int64   `json:"White_transpositions"`
	BlackTranspositions map[string][]int64   `json:"Black_transpositions"`
}

// PositionCounts counts, across the whole linked corpus, how often each
// pseudo-FEN position was reached. Passed explicitly between the two
// build passes rather than kept as shared state.
type PositionCounts map[string]int

type ply struct {
	move string // UCI
	fen  string // pseudo-FEN after the move
}

// Build folds every linked game into the book document: a frequency pass
// over all reached positions, then a per-color tree fold where a branch's
// TTL drops by one per move and resets to TTLPastUnique whenever the
// position occurs in fewer than two games corpus-wide. The walk stops
// before recording the node at which TTL reaches zero.
func Build(linked []correlate.LinkedGame) (*Document, error) {
	counts := make(PositionCounts)
	replays := make([][]ply, len(linked))
	for i, lg := range linked {
		plies, err := replayGame(lg.Game.PGN)
		if err != nil {
			return nil, fmt.Errorf("game %d: %w", lg.Game.GameID, err)
		}
		replays[i] = plies
		for _, p := range plies {
			counts[p.fen]++
		}
	}

	doc := &Document{
		Series:              make(map[string][]int64),
		Games:               make(map[string]GameEntry),
		White:               NewNode(),
		Black:               NewNode(),
		WhiteTranspositions: make(map[string][]int64),
		BlackTranspositions: make(map[string][]int64),
	}

	for i, lg := range linked {
		id := lg.Game.GameID
		doc.Games[strconv.FormatInt(id, 10)] = GameEntry{
			Label:  lg.VersusLabel,
			Link:   lg.Link,
			Rating: lg.Game.PlayerStartRating,
		}
		doc.Series[lg.SeriesName] = append(doc.Series[lg.SeriesName], id)

		root, transpositions := doc.White, doc.WhiteTranspositions
		if lg.Game.PlayerColor == "Black" {
			root, transpositions = doc.Black, doc.BlackTranspositions
		}

		node, nodeFEN := root, StartPseudoFEN
		ttl := math.Inf(1)
		for _, p := range replays[i] {
			ttl--
			if counts[p.fen] < 2 {
				ttl = math.Min(ttl, TTLPastUnique)
			}
			if ttl == 0 {
				break
			}
			node.GameIDs = append(node.GameIDs, id)
			transpositions[nodeFEN] = append(transpositions[nodeFEN], id)
			node = node.child(p.move)
			nodeFEN = p.fen
		}
	}

	log.Printf("[BOOK] %d games, %d distinct positions, %d series",
		len(linked), len(counts), len(doc.Series))
	return doc, nil
}

func replayGame(pgn string) ([]ply, error) {
	game := chess.NewGame()
	if err := game.UnmarshalText([]byte(pgn)); err != nil {
		return nil, fmt.Errorf("parsing pgn: %w", err)
	}
	moves := game.Moves()
	positions := game.Positions()
	if len(positions) != len(moves)+1 {
		return nil, fmt.Errorf("replay mismatch: %d positions for %d moves", len(positions), len(moves))
	}
	plies := make([]ply, len(moves))
	for i, move := range moves {
		plies[i] = ply{move: move.String(), fen: PseudoFEN(positions[i+1].String())}
	}
	return plies, nil
}

// PseudoFEN strips the halfmove and fullmove counters from a FEN, leaving
// the four fields that identify the position for transposition purposes.
func PseudoFEN(fen string) string {
	fields := strings.Fields(fen)
	if len(fields) > 4 {
		fields = fields[:4]
	}
	return strings.Join(fields, " ")
}
