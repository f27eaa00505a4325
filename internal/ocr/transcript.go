package ocr

import (
	"bufio"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
)

// Observation is one detected text region in one video frame. Several
// observations share (Time, Source) when a frame shows multiple regions.
type Observation struct {
	Time       float64
	Source     string
	Box        Box
	Text       string
	Confidence float64
}

// detection decodes one OCR tuple [bbox, [text, confidence]].
type detection struct {
	Box        Box
	Text       string
	Confidence float64
}

func (d *detection) UnmarshalJSON(data []byte) error {
	var parts []json.RawMessage
	if err := json.Unmarshal(data, &parts); err != nil {
		return err
	}
	if len(parts) != 2 {
		return fmt.Errorf("detection has %d elements, want 2", len(parts))
	}
	if err := json.Unmarshal(parts[0], &d.Box); err != nil {
		return fmt.Errorf("detection bbox: %w", err)
	}
	var pair []json.RawMessage
	if err := json.Unmarshal(parts[1], &pair); err != nil {
		return err
	}
	if len(pair) != 2 {
		return fmt.Errorf("detection text pair has %d elements, want 2", len(pair))
	}
	if err := json.Unmarshal(pair[0], &d.Text); err != nil {
		return fmt.Errorf("detection text: %w", err)
	}
	if err := json.Unmarshal(pair[1], &d.Confidence); err != nil {
		return fmt.Errorf("detection confidence: %w", err)
	}
	return nil
}

// LoadDir flattens every *.done transcript in dir into observations.
func LoadDir(dir string) ([]Observation, error) {
	fnames, err := filepath.Glob(filepath.Join(dir, "*.done"))
	if err != nil {
		return nil, fmt.Errorf("globbing ocr dir: %w", err)
	}
	sort.Strings(fnames)

	var rows []Observation
	for _, fname := range fnames {
		fileRows, err := LoadTranscript(fname)
		if err != nil {
			return nil, err
		}
		rows = append(rows, fileRows...)
	}
	log.Printf("[OCR] %d transcripts, %d observations", len(fnames), len(rows))
	return rows, nil
}

// LoadTranscript parses one transcript file. Each line is
// "<float time> <json>", where the JSON is a single-element array holding
// either null (no detections in that frame, skipped) or the frame's
// detection list. Any other array length means the upstream OCR tool
// changed its output format and is a hard error.
func LoadTranscript(fname string) ([]Observation, error) {
	fp, err := os.Open(fname)
	if err != nil {
		return nil, fmt.Errorf("opening transcript %s: %w", fname, err)
	}
	defer fp.Close()

	var rows []Observation
	scanner := bufio.NewScanner(fp)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		sep := strings.IndexAny(line, " \t")
		if sep < 0 {
			return nil, fmt.Errorf("%s:%d: missing detection payload", fname, lineNum)
		}
		frameTime, err := strconv.ParseFloat(line[:sep], 64)
		if err != nil {
			return nil, fmt.Errorf("%s:%d: bad timestamp: %w", fname, lineNum, err)
		}

		var outer []json.RawMessage
		if err := json.Unmarshal([]byte(line[sep+1:]), &outer); err != nil {
			return nil, fmt.Errorf("%s:%d: bad detection json: %w", fname, lineNum, err)
		}
		if len(outer) != 1 {
			return nil, fmt.Errorf("%s:%d: detection array has %d elements, want 1", fname, lineNum, len(outer))
		}

		var detections []detection
		if err := json.Unmarshal(outer[0], &detections); err != nil {
			return nil, fmt.Errorf("%s:%d: bad detection list: %w", fname, lineNum, err)
		}
		for _, det := range detections {
			rows = append(rows, Observation{
				Time:       frameTime,
				Source:     fname,
				Box:        det.Box,
				Text:       det.Text,
				Confidence: det.Confidence,
			})
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading transcript %s: %w", fname, err)
	}
	return rows, nil
}
