package stores

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/colonyops/quill/internal/core/kv"
	"github.com/colonyops/quill/internal/data/db"
)

// KVStore implements kv.KV on the kv_store table. Values are stored as JSON.
type KVStore struct {
	db *db.DB
}

var _ kv.KV = (*KVStore)(nil)

func NewKVStore(db *db.DB) *KVStore {
	return &KVStore{db: db}
}

// Get decodes the value stored under key into dest. A missing key is an
// error wrapping kv.ErrNotFound.
func (s *KVStore) Get(ctx context.Context, key string, dest any) error {
	var raw []byte
	err := s.db.Conn().QueryRowContext(ctx, `SELECT value FROM kv_store WHERE key = ?`, key).Scan(&raw)
	if IsNotFoundError(err) {
		return fmt.Errorf("kv get %q: %w", key, kv.ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("kv get %q: %w", key, err)
	}

	if err := json.Unmarshal(raw, dest); err != nil {
		return fmt.Errorf("kv get %q: decode: %w", key, err)
	}
	return nil
}

// Set stores value under key, replacing any previous value.
func (s *KVStore) Set(ctx context.Context, key string, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("kv set %q: encode: %w", key, err)
	}

	err = execRetry(ctx, s.db.Conn(), `
		INSERT INTO kv_store (key, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT (key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		key, raw, time.Now().UnixNano(),
	)
	if err != nil {
		return fmt.Errorf("kv set %q: %w", key, err)
	}
	return nil
}

// Delete removes key. Deleting a missing key is not an error.
func (s *KVStore) Delete(ctx context.Context, key string) error {
	if _, err := s.db.Conn().ExecContext(ctx, `DELETE FROM kv_store WHERE key = ?`, key); err != nil {
		return fmt.Errorf("kv delete %q: %w", key, err)
	}
	return nil
}
