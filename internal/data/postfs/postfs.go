// Package postfs stores posts as Markdown files in a directory tree.
package postfs

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/colonyops/quill/internal/core/logging"
	"github.com/colonyops/quill/internal/core/post"
)

// DefaultPattern matches every Markdown file below the root.
const DefaultPattern = "**/*.md"

// FileStore implements post.Store on top of a posts directory. File names
// are slash-separated paths relative to the root.
type FileStore struct {
	root    string
	pattern string
	mu      sync.RWMutex
}

var _ post.Store = (*FileStore)(nil)

// New returns a store rooted at dir. An empty pattern means DefaultPattern.
func New(dir, pattern string) *FileStore {
	if pattern == "" {
		pattern = DefaultPattern
	}
	return &FileStore{root: dir, pattern: pattern}
}

// Path returns the absolute location of fileName on disk.
func (s *FileStore) Path(fileName string) (string, error) {
	clean := path.Clean(filepath.ToSlash(fileName))
	if !fs.ValidPath(clean) || clean == "." {
		return "", fmt.Errorf("invalid post file name %q", fileName)
	}
	return filepath.Join(s.root, filepath.FromSlash(clean)), nil
}

// Save writes the post to its FileName atomically.
func (s *FileStore) Save(ctx context.Context, p post.Post) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	dest, err := s.Path(p.FileName)
	if err != nil {
		return err
	}

	if err := writeAtomic(dest, []byte(p.Markdown())); err != nil {
		return fmt.Errorf("save %s: %w", p.FileName, err)
	}

	logging.Component("postfs").Debug().Ctx(ctx).Str("file", p.FileName).Msg("saved post")
	return nil
}

// Load reads and parses a single post.
func (s *FileStore) Load(ctx context.Context, fileName string) (post.Post, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.load(fileName)
}

// List returns every file matching the pattern, newest CreatedAt first.
// Files that cannot be read are logged and skipped.
func (s *FileStore) List(ctx context.Context) ([]post.Post, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if _, err := os.Stat(s.root); errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}

	matches, err := doublestar.Glob(os.DirFS(s.root), s.pattern, doublestar.WithFilesOnly())
	if err != nil {
		return nil, fmt.Errorf("list posts in %s: %w", s.root, err)
	}

	logger := logging.Component("postfs")

	posts := make([]post.Post, 0, len(matches))
	for _, name := range matches {
		if isHidden(name) {
			continue
		}
		p, err := s.load(name)
		if err != nil {
			logger.Warn().Ctx(ctx).Err(err).Str("file", name).Msg("skipping unreadable post")
			continue
		}
		posts = append(posts, p)
	}

	sort.SliceStable(posts, func(i, j int) bool {
		if posts[i].CreatedAt.Equal(posts[j].CreatedAt) {
			return posts[i].FileName > posts[j].FileName
		}
		return posts[i].CreatedAt.After(posts[j].CreatedAt)
	})

	return posts, nil
}

// Delete removes a post file. A missing file is not an error.
func (s *FileStore) Delete(ctx context.Context, fileName string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, err := s.Path(fileName)
	if err != nil {
		return err
	}

	if err := os.Remove(p); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("delete %s: %w", fileName, err)
	}
	return nil
}

// Rename moves oldName to newName. Renaming to the same name or from a
// missing file does nothing. A taken destination returns post.ErrExists.
func (s *FileStore) Rename(ctx context.Context, oldName, newName string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	from, err := s.Path(oldName)
	if err != nil {
		return err
	}
	to, err := s.Path(newName)
	if err != nil {
		return err
	}
	if from == to {
		return nil
	}

	logger := logging.Component("postfs")

	fromInfo, err := os.Stat(from)
	if errors.Is(err, fs.ErrNotExist) {
		logger.Warn().Ctx(ctx).Str("from", oldName).Str("to", newName).Msg("rename source missing")
		return nil
	}
	if err != nil {
		return fmt.Errorf("rename %s: %w", oldName, err)
	}

	// On case-insensitive file systems the destination may be the source.
	if toInfo, err := os.Stat(to); err == nil && !os.SameFile(fromInfo, toInfo) {
		return fmt.Errorf("rename %s to %s: %w", oldName, newName, post.ErrExists)
	}

	if err := os.MkdirAll(filepath.Dir(to), 0o755); err != nil {
		return fmt.Errorf("rename %s: %w", oldName, err)
	}
	if err := os.Rename(from, to); err != nil {
		return fmt.Errorf("rename %s to %s: %w", oldName, newName, err)
	}

	logger.Info().Ctx(ctx).Str("from", oldName).Str("to", newName).Msg("renamed post")
	return nil
}

func (s *FileStore) load(fileName string) (post.Post, error) {
	p, err := s.Path(fileName)
	if err != nil {
		return post.Post{}, err
	}

	info, err := os.Stat(p)
	if errors.Is(err, fs.ErrNotExist) {
		return post.Post{}, fmt.Errorf("%s: %w", fileName, post.ErrNotFound)
	}
	if err != nil {
		return post.Post{}, fmt.Errorf("stat %s: %w", fileName, err)
	}
	if info.IsDir() {
		return post.Post{}, fmt.Errorf("%s is a directory", fileName)
	}

	data, err := os.ReadFile(p)
	if err != nil {
		return post.Post{}, fmt.Errorf("read %s: %w", fileName, err)
	}

	name := path.Clean(filepath.ToSlash(fileName))
	return post.FromMarkdown(name, string(data), info.ModTime()), nil
}

// writeAtomic writes data to a hidden temp file next to dest and renames it
// into place.
func writeAtomic(dest string, data []byte) error {
	dir := filepath.Dir(dest)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, ".quill-*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return err
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		_ = os.Remove(tmpName)
		return err
	}

	return os.Rename(tmpName, dest)
}

func isHidden(name string) bool {
	for _, part := range strings.Split(name, "/") {
		if strings.HasPrefix(part, ".") {
			return true
		}
	}
	return false
}
