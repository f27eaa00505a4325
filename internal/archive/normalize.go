package archive

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/notnil/chess"

	"github.com/kdimtricp/chessbook/internal/models"
)

// StartingFEN is the standard initial position; archives report it (or an
// empty string) for games that started from the normal setup.
const StartingFEN = "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1"

const pgnTimeLayout = "2006.01.02 15:04:05"

// Normalize turns per-user raw archives into GameRecords. Non-standard
// starting positions are skipped; a standard-setup game with a rules
// variant other than "chess", or whose PGN tags do not name the user on
// exactly one side, aborts the run.
func Normalize(byUser map[string][]RawGame) ([]*models.GameRecord, error) {
	usernames := make([]string, 0, len(byUser))
	for username := range byUser {
		usernames = append(usernames, username)
	}
	sort.Strings(usernames)

	var records []*models.GameRecord
	for _, username := range usernames {
		for _, raw := range byUser[username] {
			if raw.InitialSetup != "" && raw.InitialSetup != StartingFEN {
				continue
			}
			if raw.Rules != "chess" {
				return nil, fmt.Errorf("game %s: unexpected rules variant %q", raw.URL, raw.Rules)
			}
			rec, err := normalizeGame(username, raw)
			if err != nil {
				return nil, err
			}
			records = append(records, rec)
		}
	}

	applyStartRatings(records)
	for _, rec := range records {
		gain := rec.PlayerEndRating - rec.PlayerStartRating
		rec.EstimatedOpponentStartRating = rec.OpponentEndRating + gain
		rec.DisplayNamePlayer = models.DisplayName(rec.PlayerUsername, rec.PlayerStartRating)
		rec.DisplayNameOpponent = models.DisplayName(rec.OpponentUsername, rec.EstimatedOpponentStartRating)
	}
	return records, nil
}

func normalizeGame(username string, raw RawGame) (*models.GameRecord, error) {
	game := chess.NewGame()
	if err := game.UnmarshalText([]byte(raw.PGN)); err != nil {
		return nil, fmt.Errorf("game %s: parsing pgn: %w", raw.URL, err)
	}

	tags := make(map[string]string, 8)
	for _, name := range []string{"White", "Black", "WhiteElo", "BlackElo", "UTCDate", "StartTime", "EndDate", "EndTime"} {
		pair := game.GetTagPair(name)
		if pair == nil {
			return nil, fmt.Errorf("game %s: missing PGN tag %s", raw.URL, name)
		}
		tags[name] = pair.Value
	}

	if (tags["White"] == username) == (tags["Black"] == username) {
		return nil, fmt.Errorf("game %s: players %q/%q do not name %q on exactly one side",
			raw.URL, tags["White"], tags["Black"], username)
	}

	rec := &models.GameRecord{
		GameURL:        raw.URL,
		PlayerUsername: username,
		TimeClass:      raw.TimeClass,
		PGN:            raw.PGN,
	}

	segments := strings.Split(raw.URL, "/")
	gameID, err := strconv.ParseInt(segments[len(segments)-1], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("game %s: non-numeric game id: %w", raw.URL, err)
	}
	rec.GameID = gameID

	whiteElo, err := strconv.Atoi(tags["WhiteElo"])
	if err != nil {
		return nil, fmt.Errorf("game %s: bad WhiteElo: %w", raw.URL, err)
	}
	blackElo, err := strconv.Atoi(tags["BlackElo"])
	if err != nil {
		return nil, fmt.Errorf("game %s: bad BlackElo: %w", raw.URL, err)
	}

	if tags["White"] == username {
		rec.PlayerColor = "White"
		rec.PlayerEndRating = whiteElo
		rec.OpponentEndRating = blackElo
		rec.OpponentUsername = tags["Black"]
	} else {
		rec.PlayerColor = "Black"
		rec.PlayerEndRating = blackElo
		rec.OpponentEndRating = whiteElo
		rec.OpponentUsername = tags["White"]
	}

	start, err := time.ParseInLocation(pgnTimeLayout, tags["UTCDate"]+" "+tags["StartTime"], time.UTC)
	if err != nil {
		return nil, fmt.Errorf("game %s: bad start time: %w", raw.URL, err)
	}
	end, err := time.ParseInLocation(pgnTimeLayout, tags["EndDate"]+" "+tags["EndTime"], time.UTC)
	if err != nil {
		return nil, fmt.Errorf("game %s: bad end time: %w", raw.URL, err)
	}
	rec.StartTime = start.Unix()
	rec.EndTime = end.Unix()

	return rec, nil
}

type ratingGroup struct {
	username  string
	timeClass string
}

// applyStartRatings performs the backward as-of join: each game's start
// rating is the end rating of the most recent other game by the same user
// in the same time class whose end is at or before this game's start.
// Ties on end time break by game id; a game never matches itself; games
// with no earlier finish get the default rating.
func applyStartRatings(records []*models.GameRecord) {
	groups := make(map[ratingGroup][]*models.GameRecord)
	for _, rec := range records {
		key := ratingGroup{rec.PlayerUsername, rec.TimeClass}
		groups[key] = append(groups[key], rec)
	}

	for _, group := range groups {
		byEnd := append([]*models.GameRecord(nil), group...)
		sort.Slice(byEnd, func(i, j int) bool {
			if byEnd[i].EndTime != byEnd[j].EndTime {
				return byEnd[i].EndTime < byEnd[j].EndTime
			}
			return byEnd[i].GameID < byEnd[j].GameID
		})

		for _, rec := range group {
			rec.PlayerStartRating = models.DefaultStartRating
			cut := sort.Search(len(byEnd), func(i int) bool {
				return byEnd[i].EndTime > rec.StartTime
			})
			for i := cut - 1; i >= 0; i-- {
				if byEnd[i] == rec {
					continue
				}
				rec.PlayerStartRating = byEnd[i].PlayerEndRating
				break
			}
		}
	}
}
