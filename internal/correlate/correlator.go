package correlate

import (
	"fmt"
	"log"
	"sort"

	"github.com/kdimtricp/chessbook/internal/match"
	"github.com/kdimtricp/chessbook/internal/models"
	"github.com/kdimtricp/chessbook/internal/ocr"
)

// LinkedGame is a game confirmed to appear in a video, anchored at its
// canonical (earliest) frame.
type LinkedGame struct {
	Game *models.GameRecord

	Time        float64
	Source      string
	VideoID     string
	PlaylistID  string
	Link        string
	SeriesName  string
	VersusLabel string

	// Boxes from the canonical frame.
	PlayerBox   ocr.Box
	OpponentBox ocr.Box
	// Enclosing boxes across every frame the game was seen in.
	AggPlayerBox   [4][2]int
	AggOpponentBox [4][2]int
}

type frameKey struct {
	source string
	time   float64
}

type candidate struct {
	game        *models.GameRecord
	source      string
	time        float64
	playerBox   ocr.Box
	opponentBox ocr.Box
}

// Correlate joins matched observations against game records. Every frame
// pairing of a player-matched and an opponent-matched text that agrees
// with a game's display names yields a candidate row; per game the row
// with the minimum time wins, the per-role boxes are aggregated across
// all rows, and games whose playlist has no series mapping are dropped.
func Correlate(
	observations []ocr.Observation,
	playerTable, opponentTable match.Table,
	games []*models.GameRecord,
	seriesByPlaylist map[string]string,
) []LinkedGame {
	gamesByPair := make(map[[2]string][]*models.GameRecord, len(games))
	for _, g := range games {
		key := [2]string{g.DisplayNamePlayer, g.DisplayNameOpponent}
		gamesByPair[key] = append(gamesByPair[key], g)
	}

	// Step 1: keep only observations whose text matched either role.
	frames := make(map[frameKey][]ocr.Observation)
	for _, obs := range observations {
		_, inPlayer := playerTable[obs.Text]
		_, inOpponent := opponentTable[obs.Text]
		if !inPlayer && !inOpponent {
			continue
		}
		key := frameKey{obs.Source, obs.Time}
		frames[key] = append(frames[key], obs)
	}

	keys := make([]frameKey, 0, len(frames))
	for key := range frames {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].source != keys[j].source {
			return keys[i].source < keys[j].source
		}
		return keys[i].time < keys[j].time
	})

	// Steps 2-4: ordered pairs of co-occurring detections, resolved
	// through the role tables and joined to games by display-name pair.
	var candidates []candidate
	for _, key := range keys {
		group := frames[key]
		for _, obsP := range group {
			pm, ok := playerTable[obsP.Text]
			if !ok {
				continue
			}
			for _, obsO := range group {
				om, ok := opponentTable[obsO.Text]
				if !ok {
					continue
				}
				for _, g := range gamesByPair[[2]string{pm.DisplayName, om.DisplayName}] {
					candidates = append(candidates, candidate{
						game:        g,
						source:      key.source,
						time:        key.time,
						playerBox:   obsP.Box,
						opponentBox: obsO.Box,
					})
				}
			}
		}
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].source != candidates[j].source {
			return candidates[i].source < candidates[j].source
		}
		if candidates[i].time != candidates[j].time {
			return candidates[i].time < candidates[j].time
		}
		return candidates[i].game.GameID < candidates[j].game.GameID
	})

	// Steps 6-7: per-game box aggregation and canonical-frame selection.
	playerBoxes := make(map[int64][]ocr.Box)
	opponentBoxes := make(map[int64][]ocr.Box)
	canonical := make(map[int64]candidate)
	for _, cand := range candidates {
		id := cand.game.GameID
		playerBoxes[id] = append(playerBoxes[id], cand.playerBox)
		opponentBoxes[id] = append(opponentBoxes[id], cand.opponentBox)
		best, seen := canonical[id]
		if !seen || cand.time < best.time {
			canonical[id] = cand
		}
	}

	gameIDs := make([]int64, 0, len(canonical))
	for id := range canonical {
		gameIDs = append(gameIDs, id)
	}
	sort.Slice(gameIDs, func(i, j int) bool { return gameIDs[i] < gameIDs[j] })

	// Steps 5, 8-9: provenance ids, deep link, label, series mapping.
	linked := make([]LinkedGame, 0, len(gameIDs))
	dropped := 0
	for _, id := range gameIDs {
		cand := canonical[id]
		playlistID := PlaylistID(cand.source)
		seriesName, ok := seriesByPlaylist[playlistID]
		if !ok {
			dropped++
			continue
		}
		videoID := VideoID(cand.source)
		linked = append(linked, LinkedGame{
			Game:           cand.game,
			Time:           cand.time,
			Source:         cand.source,
			VideoID:        videoID,
			PlaylistID:     playlistID,
			Link:           fmt.Sprintf("https://youtu.be/%s?t=%d", videoID, int(cand.time)),
			SeriesName:     seriesName,
			VersusLabel:    cand.game.VersusLabel(),
			PlayerBox:      cand.playerBox,
			OpponentBox:    cand.opponentBox,
			AggPlayerBox:   ocr.Enclose(playerBoxes[id]),
			AggOpponentBox: ocr.Enclose(opponentBoxes[id]),
		})
	}

	log.Printf("[CORRELATE] %d candidate rows, %d games linked, %d dropped without series mapping",
		len(candidates), len(linked), dropped)
	return linked
}
