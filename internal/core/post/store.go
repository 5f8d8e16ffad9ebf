package post

import (
	"context"
	"errors"
)

var (
	// ErrNotFound is returned when a post file does not exist.
	ErrNotFound = errors.New("post not found")
	// ErrExists is returned when a rename target is already taken.
	ErrExists = errors.New("post already exists")
)

// Store defines the interface for post persistence.
type Store interface {
	// Save writes the post to its FileName, replacing any existing content.
	Save(ctx context.Context, p Post) error

	// Load reads a single post by file name.
	// Returns ErrNotFound if the file does not exist.
	Load(ctx context.Context, fileName string) (Post, error)

	// List returns all posts ordered by CreatedAt descending.
	List(ctx context.Context) ([]Post, error)

	// Delete removes a post file. Deleting a missing file is not an error.
	Delete(ctx context.Context, fileName string) error

	// Rename moves a post file. Renaming to the same name or from a
	// missing file is a no-op. Returns ErrExists if newName is taken.
	Rename(ctx context.Context, oldName, newName string) error
}

// Filter selects posts in List results.
type Filter struct {
	Tag       string
	Category  string
	Drafts    bool // only drafts
	Published bool // only posts with a remote version
}

// Match reports whether p passes the filter.
func (f Filter) Match(p Post) bool {
	if f.Tag != "" && !p.Meta.HasTag(f.Tag) {
		return false
	}
	if f.Category != "" && !p.Meta.HasCategory(f.Category) {
		return false
	}
	if f.Drafts && !p.Meta.Draft {
		return false
	}
	if f.Published && !p.Published() {
		return false
	}
	return true
}
