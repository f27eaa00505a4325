package correlate

import "path/filepath"

// Transcript basenames encode their provenance at fixed byte offsets: the
// playlist id is the first 34 characters and the video id is 11 characters
// starting at offset 39. This is a collaborator contract with the
// screenshot/OCR tooling, not a derived property.
const (
	playlistIDLen = 34
	videoIDOffset = 39
	videoIDLen    = 11
)

// VideoID extracts the source video id from a transcript path.
func VideoID(source string) string {
	return sliceBase(source, videoIDOffset, videoIDOffset+videoIDLen)
}

// PlaylistID extracts the source playlist id from a transcript path.
func PlaylistID(source string) string {
	return sliceBase(source, 0, playlistIDLen)
}

func sliceBase(source string, from, to int) string {
	base := filepath.Base(source)
	if from > len(base) {
		return ""
	}
	if to > len(base) {
		to = len(base)
	}
	return base[from:to]
}
