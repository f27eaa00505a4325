package correlate

import (
	"encoding/csv"
	"fmt"
	"net/url"
	"os"
)

// LoadSeriesMap reads the playlist/series CSV and returns playlist id ->
// series name. The playlist id is the value of the `list` query parameter
// of the playlist URL; rows without one are skipped.
func LoadSeriesMap(path string) (map[string]string, error) {
	fp, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening data sources %s: %w", path, err)
	}
	defer fp.Close()

	reader := csv.NewReader(fp)
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parsing data sources %s: %w", path, err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("data sources %s: empty file", path)
	}

	playlistCol, seriesCol := -1, -1
	for i, name := range rows[0] {
		switch name {
		case "playlist":
			playlistCol = i
		case "series_name":
			seriesCol = i
		}
	}
	if playlistCol < 0 || seriesCol < 0 {
		return nil, fmt.Errorf("data sources %s: missing playlist/series_name columns", path)
	}

	series := make(map[string]string)
	for _, row := range rows[1:] {
		id := extractPlaylistID(row[playlistCol])
		if id == "" {
			continue
		}
		if _, ok := series[id]; !ok {
			series[id] = row[seriesCol]
		}
	}
	return series, nil
}

func extractPlaylistID(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	return u.Query().Get("list")
}
