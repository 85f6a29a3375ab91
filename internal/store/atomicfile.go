// Package store implements the atomic JSON write helpers, the cross-process
// index-file lock, and the file-backed conversation store (one file per
// conversation plus an index file for fast listings). Documents and vectors
// are persisted by docregistry, chunkstore, and vectorindex. Every JSON
// write here goes through WriteJSONAtomic so a crash mid-write never corrupts
// the previous, still-valid file.
package store

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"

	"github.com/viant/ragvault/internal/apperrors"
)

// WriteJSONAtomic marshals v as indented JSON to a temp file beside path,
// fsyncs it, then renames it over path — the write is atomic from a
// reader's perspective, mirroring the manifest-write discipline vector
// storage uses for its own on-disk state.
func WriteJSONAtomic(path string, v any) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return apperrors.PersistenceFailed("create directory "+dir, err)
	}
	tmp := path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return apperrors.PersistenceFailed("create temp file "+tmp, err)
	}
	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		_ = f.Close()
		_ = os.Remove(tmp)
		return apperrors.PersistenceFailed("encode "+path, err)
	}
	if err := f.Sync(); err != nil {
		_ = f.Close()
		_ = os.Remove(tmp)
		return apperrors.PersistenceFailed("sync "+tmp, err)
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(tmp)
		return apperrors.PersistenceFailed("close "+tmp, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return apperrors.PersistenceFailed("rename "+tmp+" to "+path, err)
	}
	return nil
}

// ReadJSON unmarshals the file at path into v. A missing file returns
// os.ErrNotExist unwrapped so callers can distinguish "not created yet"
// from a genuine decode failure.
func ReadJSON(path string, v any) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(b, v); err != nil {
		return apperrors.PersistenceFailed("decode "+path, err)
	}
	return nil
}

// WithIndexLock guards concurrent index.json writers across process
// boundaries (server plus any future CLI tool) using an flock-based file
// lock alongside the in-process mutex each store already holds. The lock
// file lives beside the index file it protects, with a ".lock" suffix so
// it never collides with the index itself.
func WithIndexLock(indexPath string, fn func() error) error {
	fl := flock.New(indexPath + ".lock")
	if err := fl.Lock(); err != nil {
		return apperrors.PersistenceFailed("acquire lock "+indexPath, err)
	}
	defer fl.Unlock()
	return fn()
}
