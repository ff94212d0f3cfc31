package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
)

// Logical persistence keys. Each maps to one independently-written JSON
// document; there is no transactionality across them.
const (
	keyProfile = "profile"
	keyToday   = "today_ledger"
	keyWeights = "weight_series"
	keyHistory = "history"
)

// errMalformedState marks stored JSON that failed to parse or validate.
// Recovery policy is always discard-and-default, never propagate.
var errMalformedState = errors.New("malformed persisted state")

// stateStore is the persistence collaborator: best-effort load/save of raw
// JSON documents by logical key.
type stateStore interface {
	Load(key string) (raw []byte, found bool, err error)
	Save(key string, raw []byte) error
}

// loadInto reads and decodes one key into dst. Missing key leaves dst
// untouched and returns false. Malformed JSON is logged and treated the same
// as missing — the caller falls back to defaults.
func loadInto(s stateStore, key string, dst any) bool {
	raw, found, err := s.Load(key)
	if err != nil {
		log.Printf("[store] load %s: %v", key, err)
		return false
	}
	if !found {
		return false
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		log.Printf("[store] discarding %s: %v", key, fmt.Errorf("%w: %v", errMalformedState, err))
		return false
	}
	return true
}

// saveJSON encodes and writes one key. Persistence is fire-and-forget: a
// failure is logged, never returned to the operation that triggered it.
func saveJSON(s stateStore, key string, v any) {
	raw, err := json.Marshal(v)
	if err != nil {
		log.Printf("[store] encode %s: %v", key, err)
		return
	}
	if err := s.Save(key, raw); err != nil {
		log.Printf("[store] save %s: %v", key, err)
	}
}

/* ─── File-backed store ──────────────────────────────────────────────── */

// fileStore keeps each key as <dir>/<key>.json. Writes go through a temp
// file and rename so a crash mid-write can't leave a half-written document.
type fileStore struct {
	dir string
}

func newFileStore(dir string) (*fileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	return &fileStore{dir: dir}, nil
}

func (f *fileStore) path(key string) string {
	return filepath.Join(f.dir, key+".json")
}

func (f *fileStore) Load(key string) ([]byte, bool, error) {
	raw, err := os.ReadFile(f.path(key))
	if errors.Is(err, os.ErrNotExist) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return raw, true, nil
}

func (f *fileStore) Save(key string, raw []byte) error {
	tmp := f.path(key) + ".tmp"
	if err := os.WriteFile(tmp, raw, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, f.path(key))
}
