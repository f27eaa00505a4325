package book

import (
	"encoding/json"
	"fmt"
	"os"
)

// WriteFile serializes the document to path. Serialization is
// deterministic, so re-running the pipeline on unchanged inputs rewrites
// the file byte-identically.
func (d *Document) WriteFile(path string) error {
	data, err := json.Marshal(d)
	if err != nil {
		return fmt.Errorf("marshaling book: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing book %s: %w", path, err)
	}
	return nil
}
