// Package kv defines a small persistent key-value store for application
// state that outlives a single command, such as the last posts directory.
package kv

import (
	"context"
	"errors"
)

// ErrNotFound is returned by Get for keys that were never set or were
// deleted.
var ErrNotFound = errors.New("kv: key not found")

// KV stores JSON-encodable values under string keys.
type KV interface {
	Get(ctx context.Context, key string, dest any) error
	Set(ctx context.Context, key string, value any) error
	Delete(ctx context.Context, key string) error
}
