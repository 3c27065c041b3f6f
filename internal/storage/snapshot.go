// Package storage holds flat-file JSON snapshots of process-wide records.
// Each store loads its file once at startup and rewrites it in full,
// synchronously, after every mutation. A crash mid-write can corrupt the
// durable copy; that risk is accepted rather than masked.
package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/kobuta23/telegram-minter/internal/errs"
)

// ReadSnapshot decodes the JSON file at path into v. A missing file is not an
// error; v is left untouched and ok is false.
func ReadSnapshot(path string, v any) (ok bool, err error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("read %s: %w", path, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return false, fmt.Errorf("decode %s: %w", path, err)
	}
	return true, nil
}

// WriteSnapshot rewrites the file at path with the JSON encoding of v.
// Failures are classified as persistence errors; the caller's in-memory state
// stays authoritative but the triggering operation must not report success.
func WriteSnapshot(path string, v any) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("%w: mkdir %s: %v", errs.ErrPersistence, dir, err)
		}
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("%w: encode %s: %v", errs.ErrPersistence, path, err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("%w: write %s: %v", errs.ErrPersistence, path, err)
	}
	return nil
}
