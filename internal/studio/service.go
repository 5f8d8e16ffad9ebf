// Package studio implements the post workflows behind the CLI: creating,
// editing, renaming, publishing and deleting posts.
package studio

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/colonyops/quill/internal/core/logging"
	"github.com/colonyops/quill/internal/core/post"
	"github.com/colonyops/quill/internal/core/publog"
	"github.com/colonyops/quill/pkg/executil"
	"github.com/rs/zerolog"
)

// Publisher pushes posts to a remote repository.
type Publisher interface {
	// Publish uploads p and returns the sha of the new remote version.
	Publish(ctx context.Context, p post.Post) (string, error)
	// Delete removes the remote version of p.
	Delete(ctx context.Context, p post.Post) error
}

// FileStore is a post.Store whose posts live on disk.
type FileStore interface {
	post.Store
	Path(fileName string) (string, error)
}

// CreateOptions describes a new post.
type CreateOptions struct {
	Title      string
	Tags       []string
	Categories []string
	Draft      bool
	Body       string
	Now        time.Time // zero means time.Now
}

// Service orchestrates post operations.
type Service struct {
	posts     FileStore
	publisher Publisher
	history   publog.Store
	executor  executil.Executor
	editor    string
	log       zerolog.Logger
}

// NewService creates a new Service. editor is a command line such as
// "code --wait"; the post path is appended as the last argument.
func NewService(
	posts FileStore,
	publisher Publisher,
	history publog.Store,
	exec executil.Executor,
	editor string,
	log zerolog.Logger,
) *Service {
	return &Service{
		posts:     posts,
		publisher: publisher,
		history:   history,
		executor:  exec,
		editor:    editor,
		log:       log.With().Str("component", "studio").Logger().Hook(logging.ContextHook{}),
	}
}

// Create writes a new post. It fails with post.ErrExists when a post with
// the same file name is already on disk.
func (s *Service) Create(ctx context.Context, opts CreateOptions) (post.Post, error) {
	now := opts.Now
	if now.IsZero() {
		now = time.Now()
	}

	p := post.New(opts.Title, now)
	p.Meta.Tags = opts.Tags
	p.Meta.Categories = opts.Categories
	p.Meta.Draft = opts.Draft
	p.Body = opts.Body

	ctx = logging.WithPostFile(ctx, p.FileName)

	if _, err := s.posts.Load(ctx, p.FileName); err == nil {
		return post.Post{}, fmt.Errorf("create %s: %w", p.FileName, post.ErrExists)
	} else if !errors.Is(err, post.ErrNotFound) {
		return post.Post{}, fmt.Errorf("create %s: %w", p.FileName, err)
	}

	if err := s.posts.Save(ctx, p); err != nil {
		return post.Post{}, err
	}

	s.log.Info().Ctx(ctx).Str("title", p.Title()).Msg("created post")
	return p, nil
}

// Get loads a single post.
func (s *Service) Get(ctx context.Context, fileName string) (post.Post, error) {
	return s.posts.Load(ctx, fileName)
}

// List returns posts matching filter, newest first.
func (s *Service) List(ctx context.Context, filter post.Filter) ([]post.Post, error) {
	all, err := s.posts.List(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]post.Post, 0, len(all))
	for _, p := range all {
		if filter.Match(p) {
			out = append(out, p)
		}
	}
	return out, nil
}

// Update loads a post, applies mutate and writes it back. When the title or
// date change the file is renamed first so a failed rename leaves the old
// file untouched.
func (s *Service) Update(ctx context.Context, fileName string, mutate func(*post.Post)) (post.Post, error) {
	ctx = logging.WithPostFile(ctx, fileName)

	p, err := s.posts.Load(ctx, fileName)
	if err != nil {
		return post.Post{}, err
	}

	if mutate != nil {
		mutate(&p)
	}
	if created, ok := post.ParseDate(p.Meta.Date); ok {
		p.CreatedAt = created
	}
	p.UpdatedAt = time.Now().UTC()

	if err := s.rename(ctx, &p); err != nil {
		return post.Post{}, err
	}

	if err := s.posts.Save(ctx, p); err != nil {
		return post.Post{}, err
	}

	return p, nil
}

// Sync renames a post file to match its title and date. The content is not
// rewritten.
func (s *Service) Sync(ctx context.Context, fileName string) (post.Post, error) {
	ctx = logging.WithPostFile(ctx, fileName)

	p, err := s.posts.Load(ctx, fileName)
	if err != nil {
		return post.Post{}, err
	}

	if err := s.rename(ctx, &p); err != nil {
		return post.Post{}, err
	}
	return p, nil
}

// Format rewrites a post in canonical frontmatter form. It reports whether
// the file content changed.
func (s *Service) Format(ctx context.Context, fileName string) (bool, error) {
	ctx = logging.WithPostFile(ctx, fileName)

	before, err := s.Source(fileName)
	if err != nil {
		return false, fmt.Errorf("format %s: %w", fileName, err)
	}

	p, err := s.posts.Load(ctx, fileName)
	if err != nil {
		return false, err
	}

	if p.Markdown() == before {
		return false, nil
	}

	if err := s.posts.Save(ctx, p); err != nil {
		return false, err
	}

	s.log.Debug().Ctx(ctx).Msg("formatted post")
	return true, nil
}

// Source returns a post file exactly as stored on disk.
func (s *Service) Source(fileName string) (string, error) {
	path, err := s.posts.Path(fileName)
	if err != nil {
		return "", err
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return "", fmt.Errorf("%s: %w", fileName, post.ErrNotFound)
	}
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// Edit opens the post in the configured editor and syncs its file name
// once the editor exits.
func (s *Service) Edit(ctx context.Context, fileName string) (post.Post, error) {
	ctx = logging.WithPostFile(ctx, fileName)

	path, err := s.posts.Path(fileName)
	if err != nil {
		return post.Post{}, err
	}
	if _, err := s.posts.Load(ctx, fileName); err != nil {
		return post.Post{}, err
	}

	cmd, args, err := executil.SplitCommand(s.editor)
	if err != nil {
		return post.Post{}, fmt.Errorf("editor: %w", err)
	}

	s.log.Debug().Ctx(ctx).Str("editor", cmd).Msg("opening editor")
	if err := s.executor.RunInteractive(ctx, filepath.Dir(path), cmd, append(args, path)...); err != nil {
		return post.Post{}, fmt.Errorf("run editor: %w", err)
	}

	return s.Sync(ctx, fileName)
}

// Publish uploads a post and records the returned sha in its frontmatter.
func (s *Service) Publish(ctx context.Context, fileName string) (post.Post, error) {
	ctx = logging.WithPostFile(ctx, fileName)

	p, err := s.posts.Load(ctx, fileName)
	if err != nil {
		return post.Post{}, err
	}

	sha, err := s.publisher.Publish(ctx, p)
	if err != nil {
		return post.Post{}, fmt.Errorf("publish %s: %w", fileName, err)
	}

	p.Meta.SHA = sha
	if err := s.posts.Save(ctx, p); err != nil {
		return post.Post{}, fmt.Errorf("publish %s: remote updated to %s but saving sha failed: %w", fileName, sha, err)
	}

	s.record(ctx, p, publog.ActionPublish)
	s.log.Info().Ctx(ctx).Str("sha", sha).Msg("published post")
	return p, nil
}

// Delete removes a post. With remote set, a published post is deleted from
// the remote repository first and the local file is kept if that fails.
func (s *Service) Delete(ctx context.Context, fileName string, remote bool) error {
	ctx = logging.WithPostFile(ctx, fileName)

	p, err := s.posts.Load(ctx, fileName)
	if err != nil {
		return err
	}

	if remote {
		if p.Published() {
			if err := s.publisher.Delete(ctx, p); err != nil {
				return fmt.Errorf("delete remote %s: %w", fileName, err)
			}
			s.record(ctx, p, publog.ActionDelete)
		} else {
			s.log.Warn().Ctx(ctx).Msg("post was never published, deleting local file only")
		}
	}

	if err := s.posts.Delete(ctx, fileName); err != nil {
		return err
	}

	s.log.Info().Ctx(ctx).Bool("remote", remote).Msg("deleted post")
	return nil
}

// History returns publish log entries for a post, or for all posts when
// fileName is empty.
func (s *Service) History(ctx context.Context, fileName string, limit int) ([]publog.Entry, error) {
	return s.history.List(ctx, fileName, limit)
}

func (s *Service) rename(ctx context.Context, p *post.Post) error {
	want := p.ExpectedFileName()
	if want == p.FileName {
		return nil
	}

	if err := s.posts.Rename(ctx, p.FileName, want); err != nil {
		return err
	}

	s.log.Info().Ctx(ctx).Str("from", p.FileName).Str("to", want).Msg("renamed post")
	p.FileName = want
	return nil
}

// record appends to the publish log. The remote operation already
// succeeded, so failures are logged rather than returned.
func (s *Service) record(ctx context.Context, p post.Post, action publog.Action) {
	err := s.history.Record(ctx, publog.Entry{
		FileName: p.FileName,
		Action:   action,
		SHA:      p.Meta.SHA,
		Title:    p.Title(),
	})
	if err != nil {
		s.log.Warn().Ctx(ctx).Err(err).Str("action", string(action)).Msg("failed to record publish log")
	}
}
