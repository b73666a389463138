// Line-delimited JSON files for Export and Import.
package sqlite

import (
	"bufio"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
)

// Export file names, one per table.
const (
	clustersJSONL         = "clusters.jsonl"
	fieldDefinitionsJSONL = "field_definitions.jsonl"
	itemsJSONL            = "items.jsonl"
)

// maxRecordSize bounds one line; item field values can be long notes.
const maxRecordSize = 16 << 20

// readRecords decodes every line of path into a T. Blank lines and lines
// that do not decode are dropped. A missing file surfaces os.ErrNotExist.
func readRecords[T any](path string) ([]T, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var (
		out     []T
		dropped int
	)
	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 64<<10), maxRecordSize)
	for sc.Scan() {
		if len(sc.Bytes()) == 0 {
			continue
		}
		var rec T
		if err := json.Unmarshal(sc.Bytes(), &rec); err != nil {
			dropped++
			continue
		}
		out = append(out, rec)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("scan %s: %w", filepath.Base(path), err)
	}
	if dropped > 0 {
		slog.Debug("dropped malformed lines", "file", filepath.Base(path), "count", dropped)
	}
	return out, nil
}

// writeRecords replaces path with one JSON line per value. The file is built
// next to path and renamed into place once synced, so readers never see a
// partial export.
func writeRecords[T any](path string, values []T) (err error) {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+"-*")
	if err != nil {
		return fmt.Errorf("create temp for %s: %w", filepath.Base(path), err)
	}
	defer func() {
		if err != nil {
			tmp.Close()
			os.Remove(tmp.Name())
		}
	}()

	w := bufio.NewWriter(tmp)
	enc := json.NewEncoder(w)
	for _, v := range values {
		if err := enc.Encode(v); err != nil {
			return fmt.Errorf("encode %s record: %w", filepath.Base(path), err)
		}
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("write %s: %w", filepath.Base(path), err)
	}
	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("sync %s: %w", filepath.Base(path), err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close %s: %w", filepath.Base(path), err)
	}
	return os.Rename(tmp.Name(), path)
}
