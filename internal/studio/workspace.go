package studio

import (
	"context"

	"github.com/colonyops/quill/internal/core/kv"
)

const lastPostsDirKey = "last_posts_dir"

// Workspace keeps state that carries over between runs.
type Workspace struct {
	values *kv.TypedKV[string]
}

// NewWorkspace creates a Workspace backed by store.
func NewWorkspace(store kv.KV) *Workspace {
	return &Workspace{values: kv.Scoped[string](store, "workspace")}
}

// RememberPostsDir stores dir as the most recently used posts directory.
func (w *Workspace) RememberPostsDir(ctx context.Context, dir string) error {
	return w.values.Set(ctx, lastPostsDirKey, dir)
}

// LastPostsDir returns the most recently used posts directory, or "" when
// none was stored.
func (w *Workspace) LastPostsDir(ctx context.Context) (string, error) {
	return w.values.GetOr(ctx, lastPostsDirKey, "")
}

// ForgetPostsDir drops the remembered posts directory.
func (w *Workspace) ForgetPostsDir(ctx context.Context) error {
	return w.values.Delete(ctx, lastPostsDirKey)
}
