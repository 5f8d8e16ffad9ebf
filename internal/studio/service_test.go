package studio

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/colonyops/quill/internal/core/frontmatter"
	"github.com/colonyops/quill/internal/core/post"
	"github.com/colonyops/quill/internal/core/publog"
	"github.com/colonyops/quill/internal/data/db"
	"github.com/colonyops/quill/internal/data/postfs"
	"github.com/colonyops/quill/internal/data/stores"
	"github.com/colonyops/quill/pkg/executil"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePublisher struct {
	mu        sync.Mutex
	published []post.Post
	deleted   []post.Post
	sha       string
	err       error
}

func (f *fakePublisher) Publish(ctx context.Context, p post.Post) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return "", f.err
	}
	f.published = append(f.published, p)
	return f.sha, nil
}

func (f *fakePublisher) Delete(ctx context.Context, p post.Post) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.deleted = append(f.deleted, p)
	return nil
}

type testEnv struct {
	svc       *Service
	root      string
	publisher *fakePublisher
	exec      *executil.RecordingExecutor
}

func newTestService(t *testing.T) testEnv {
	t.Helper()

	database, err := db.Open(t.TempDir(), db.DefaultOpenOptions())
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close() })

	root := t.TempDir()
	pub := &fakePublisher{sha: "sha-1"}
	rec := &executil.RecordingExecutor{}

	svc := NewService(
		postfs.New(root, ""),
		pub,
		stores.NewPublishLogStore(database),
		rec,
		"code --wait",
		zerolog.Nop(),
	)

	return testEnv{svc: svc, root: root, publisher: pub, exec: rec}
}

func (e testEnv) read(t *testing.T, name string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(e.root, name))
	require.NoError(t, err)
	return string(data)
}

func (e testEnv) exists(name string) bool {
	_, err := os.Stat(filepath.Join(e.root, name))
	return err == nil
}

var day = time.Date(2024, 2, 10, 9, 30, 0, 0, time.UTC)

func TestService_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("writes file", func(t *testing.T) {
		env := newTestService(t)

		p, err := env.svc.Create(ctx, CreateOptions{
			Title: "First Post",
			Tags:  []string{"go"},
			Draft: true,
			Now:   day,
		})
		require.NoError(t, err)
		assert.Equal(t, "2024-02-10-first-post.md", p.FileName)

		meta, body := frontmatter.Parse(env.read(t, p.FileName))
		assert.Equal(t, "First Post", meta.Title)
		assert.Equal(t, "2024-02-10 09:30:00", meta.Date)
		assert.Equal(t, []string{"go"}, meta.Tags)
		assert.True(t, meta.Draft)
		assert.Empty(t, body)
	})

	t.Run("duplicate title same day", func(t *testing.T) {
		env := newTestService(t)

		_, err := env.svc.Create(ctx, CreateOptions{Title: "Same", Now: day})
		require.NoError(t, err)

		_, err = env.svc.Create(ctx, CreateOptions{Title: "Same", Now: day})
		assert.ErrorIs(t, err, post.ErrExists)
	})

	t.Run("untitled posts get distinct names", func(t *testing.T) {
		env := newTestService(t)

		a, err := env.svc.Create(ctx, CreateOptions{Now: day})
		require.NoError(t, err)
		b, err := env.svc.Create(ctx, CreateOptions{Now: day})
		require.NoError(t, err)

		assert.NotEqual(t, a.FileName, b.FileName)
		assert.Contains(t, a.FileName, "2024-02-10-untitled-")
	})
}

func TestService_Update(t *testing.T) {
	ctx := context.Background()

	t.Run("retitle renames file", func(t *testing.T) {
		env := newTestService(t)
		p, err := env.svc.Create(ctx, CreateOptions{Title: "Draft Name", Now: day})
		require.NoError(t, err)

		got, err := env.svc.Update(ctx, p.FileName, func(p *post.Post) {
			p.Meta.Title = "Final Name"
			p.Body = "done\n"
		})
		require.NoError(t, err)

		assert.Equal(t, "2024-02-10-final-name.md", got.FileName)
		assert.False(t, env.exists(p.FileName))

		meta, body := frontmatter.Parse(env.read(t, got.FileName))
		assert.Equal(t, "Final Name", meta.Title)
		assert.Equal(t, "done\n", body)
	})

	t.Run("date change moves file date", func(t *testing.T) {
		env := newTestService(t)
		p, err := env.svc.Create(ctx, CreateOptions{Title: "Dated", Now: day})
		require.NoError(t, err)

		got, err := env.svc.Update(ctx, p.FileName, func(p *post.Post) {
			p.Meta.Date = "2023-12-31 23:00:00"
		})
		require.NoError(t, err)
		assert.Equal(t, "2023-12-31-dated.md", got.FileName)
	})

	t.Run("rename collision keeps old file", func(t *testing.T) {
		env := newTestService(t)
		_, err := env.svc.Create(ctx, CreateOptions{Title: "Taken", Now: day})
		require.NoError(t, err)
		p, err := env.svc.Create(ctx, CreateOptions{Title: "Other", Now: day})
		require.NoError(t, err)

		_, err = env.svc.Update(ctx, p.FileName, func(p *post.Post) {
			p.Meta.Title = "Taken"
		})
		require.ErrorIs(t, err, post.ErrExists)

		meta, _ := frontmatter.Parse(env.read(t, p.FileName))
		assert.Equal(t, "Other", meta.Title)
	})

	t.Run("missing post", func(t *testing.T) {
		env := newTestService(t)

		_, err := env.svc.Update(ctx, "nope.md", nil)
		assert.ErrorIs(t, err, post.ErrNotFound)
	})
}

func TestService_Sync(t *testing.T) {
	ctx := context.Background()
	env := newTestService(t)

	content := "---\ntitle: Edited Outside\ndate: 2024-02-10 09:30:00\n---\n\nbody\n"
	require.NoError(t, os.WriteFile(filepath.Join(env.root, "scratch.md"), []byte(content), 0o644))

	p, err := env.svc.Sync(ctx, "scratch.md")
	require.NoError(t, err)
	assert.Equal(t, "2024-02-10-edited-outside.md", p.FileName)
	assert.Equal(t, content, env.read(t, p.FileName), "sync does not rewrite content")

	again, err := env.svc.Sync(ctx, p.FileName)
	require.NoError(t, err)
	assert.Equal(t, p.FileName, again.FileName)
}

func TestService_Format(t *testing.T) {
	ctx := context.Background()
	env := newTestService(t)

	messy := "---\r\ntags: b , a,,\r\ntitle:  Messy \r\ndate: 2024-02-10 09:30:00\r\n---\r\n\r\nbody\r\n"
	require.NoError(t, os.WriteFile(filepath.Join(env.root, "messy.md"), []byte(messy), 0o644))

	changed, err := env.svc.Format(ctx, "messy.md")
	require.NoError(t, err)
	assert.True(t, changed)

	want := "---\ntitle: Messy\ndate: 2024-02-10 09:30:00\ntags: b, a\ncategories:\ndraft: false\n---\n\nbody\n"
	assert.Equal(t, want, env.read(t, "messy.md"))

	changed, err = env.svc.Format(ctx, "messy.md")
	require.NoError(t, err)
	assert.False(t, changed)
}

func TestService_KeepsUnreadHeaderLines(t *testing.T) {
	ctx := context.Background()

	const name = "2024-02-10-keep.md"
	source := "---\n" +
		"title: Keep\n" +
		"date: 2024-02-10 09:30:00\n" +
		"author: Jane\n" +
		"layout: post\n" +
		"a free line without separator\n" +
		"---\n\n" +
		"body\n"

	tests := []struct {
		name string
		run  func(env testEnv) error
	}{
		{
			name: "format",
			run: func(env testEnv) error {
				_, err := env.svc.Format(ctx, name)
				return err
			},
		},
		{
			name: "update",
			run: func(env testEnv) error {
				_, err := env.svc.Update(ctx, name, func(p *post.Post) {
					p.Meta.Tags = []string{"go"}
				})
				return err
			},
		},
		{
			name: "publish",
			run: func(env testEnv) error {
				_, err := env.svc.Publish(ctx, name)
				return err
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestService(t)
			require.NoError(t, os.WriteFile(filepath.Join(env.root, name), []byte(source), 0o644))

			require.NoError(t, tt.run(env))

			got := env.read(t, name)
			assert.Contains(t, got, "\nauthor: Jane\n")
			assert.Contains(t, got, "\nlayout: post\n")
			assert.Contains(t, got, "\na free line without separator\n")
			assert.True(t, strings.HasSuffix(got, "---\n\nbody\n"))

			meta, _ := frontmatter.Parse(got)
			assert.Equal(t, "Keep", meta.Title)
		})
	}
}

func TestService_FormatHorizontalRuleDocument(t *testing.T) {
	ctx := context.Background()
	env := newTestService(t)

	const name = "2024-02-10-rule.md"
	source := "---\n\nIntro paragraph of the post.\n\n---\n\nrest\n"
	require.NoError(t, os.WriteFile(filepath.Join(env.root, name), []byte(source), 0o644))

	changed, err := env.svc.Format(ctx, name)
	require.NoError(t, err)
	assert.True(t, changed)

	got := env.read(t, name)
	assert.Contains(t, got, "\nIntro paragraph of the post.\n")
	assert.True(t, strings.HasSuffix(got, "---\n\nrest\n"))

	changed, err = env.svc.Format(ctx, name)
	require.NoError(t, err)
	assert.False(t, changed)
}

func TestService_UndatedPostKeepsFileDate(t *testing.T) {
	ctx := context.Background()

	const name = "2023-05-01-hello.md"
	source := "---\ntitle: Hello\n---\n\nbody\n"

	tests := []struct {
		name string
		run  func(env testEnv) (post.Post, error)
	}{
		{
			name: "sync",
			run: func(env testEnv) (post.Post, error) {
				return env.svc.Sync(ctx, name)
			},
		},
		{
			name: "update",
			run: func(env testEnv) (post.Post, error) {
				return env.svc.Update(ctx, name, func(p *post.Post) {
					p.Body = "edited\n"
				})
			},
		},
		{
			name: "format",
			run: func(env testEnv) (post.Post, error) {
				if _, err := env.svc.Format(ctx, name); err != nil {
					return post.Post{}, err
				}
				return env.svc.Get(ctx, name)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestService(t)
			path := filepath.Join(env.root, name)
			require.NoError(t, os.WriteFile(path, []byte(source), 0o644))
			require.NoError(t, os.Chtimes(path, day, day))

			p, err := tt.run(env)
			require.NoError(t, err)
			assert.Equal(t, name, p.FileName)
			assert.True(t, env.exists(name))
			assert.False(t, env.exists("2024-02-10-hello.md"))
		})
	}
}

func TestService_Edit(t *testing.T) {
	ctx := context.Background()
	env := newTestService(t)

	p, err := env.svc.Create(ctx, CreateOptions{Title: "Before", Now: day})
	require.NoError(t, err)

	env.exec.OnRun = func(rc executil.RecordedCommand) error {
		path := rc.Args[len(rc.Args)-1]
		edited := frontmatter.Generate(frontmatter.Metadata{Title: "After", Date: "2024-02-10 09:30:00"}, "new body\n")
		return os.WriteFile(path, []byte(edited), 0o644)
	}

	got, err := env.svc.Edit(ctx, p.FileName)
	require.NoError(t, err)
	assert.Equal(t, "2024-02-10-after.md", got.FileName)

	require.Len(t, env.exec.Commands, 1)
	cmd := env.exec.Commands[0]
	assert.Equal(t, "code", cmd.Cmd)
	assert.Equal(t, env.root, cmd.Dir)
	assert.Equal(t, []string{"--wait", filepath.Join(env.root, p.FileName)}, cmd.Args)
}

func TestService_EditorFailure(t *testing.T) {
	ctx := context.Background()
	env := newTestService(t)

	p, err := env.svc.Create(ctx, CreateOptions{Title: "Stay", Now: day})
	require.NoError(t, err)

	env.exec.Errors = map[string]error{"code": errors.New("exit status 1")}

	_, err = env.svc.Edit(ctx, p.FileName)
	require.Error(t, err)
	assert.True(t, env.exists(p.FileName))
}

func TestService_Publish(t *testing.T) {
	ctx := context.Background()

	t.Run("stores sha and logs", func(t *testing.T) {
		env := newTestService(t)
		p, err := env.svc.Create(ctx, CreateOptions{Title: "Ship It", Now: day})
		require.NoError(t, err)

		got, err := env.svc.Publish(ctx, p.FileName)
		require.NoError(t, err)
		assert.Equal(t, "sha-1", got.Meta.SHA)

		meta, _ := frontmatter.Parse(env.read(t, p.FileName))
		assert.Equal(t, "sha-1", meta.SHA)

		entries, err := env.svc.History(ctx, p.FileName, 0)
		require.NoError(t, err)
		require.Len(t, entries, 1)
		assert.Equal(t, publog.ActionPublish, entries[0].Action)
		assert.Equal(t, "sha-1", entries[0].SHA)
		assert.Equal(t, "Ship It", entries[0].Title)
	})

	t.Run("republish sends previous sha", func(t *testing.T) {
		env := newTestService(t)
		p, err := env.svc.Create(ctx, CreateOptions{Title: "Again", Now: day})
		require.NoError(t, err)

		_, err = env.svc.Publish(ctx, p.FileName)
		require.NoError(t, err)
		env.publisher.sha = "sha-2"
		_, err = env.svc.Publish(ctx, p.FileName)
		require.NoError(t, err)

		require.Len(t, env.publisher.published, 2)
		assert.Empty(t, env.publisher.published[0].Meta.SHA)
		assert.Equal(t, "sha-1", env.publisher.published[1].Meta.SHA)

		meta, _ := frontmatter.Parse(env.read(t, p.FileName))
		assert.Equal(t, "sha-2", meta.SHA)
	})

	t.Run("remote failure leaves file alone", func(t *testing.T) {
		env := newTestService(t)
		p, err := env.svc.Create(ctx, CreateOptions{Title: "Broken", Now: day})
		require.NoError(t, err)
		before := env.read(t, p.FileName)

		env.publisher.err = errors.New("conflict")
		_, err = env.svc.Publish(ctx, p.FileName)
		require.Error(t, err)
		assert.Equal(t, before, env.read(t, p.FileName))

		entries, err := env.svc.History(ctx, "", 0)
		require.NoError(t, err)
		assert.Empty(t, entries)
	})
}

func TestService_Delete(t *testing.T) {
	ctx := context.Background()

	t.Run("local only", func(t *testing.T) {
		env := newTestService(t)
		p, err := env.svc.Create(ctx, CreateOptions{Title: "Gone", Now: day})
		require.NoError(t, err)
		_, err = env.svc.Publish(ctx, p.FileName)
		require.NoError(t, err)

		require.NoError(t, env.svc.Delete(ctx, p.FileName, false))
		assert.False(t, env.exists(p.FileName))
		assert.Empty(t, env.publisher.deleted)
	})

	t.Run("remote and local", func(t *testing.T) {
		env := newTestService(t)
		p, err := env.svc.Create(ctx, CreateOptions{Title: "Gone", Now: day})
		require.NoError(t, err)
		_, err = env.svc.Publish(ctx, p.FileName)
		require.NoError(t, err)

		require.NoError(t, env.svc.Delete(ctx, p.FileName, true))
		assert.False(t, env.exists(p.FileName))
		require.Len(t, env.publisher.deleted, 1)
		assert.Equal(t, "sha-1", env.publisher.deleted[0].Meta.SHA)

		entries, err := env.svc.History(ctx, p.FileName, 1)
		require.NoError(t, err)
		require.Len(t, entries, 1)
		assert.Equal(t, publog.ActionDelete, entries[0].Action)
	})

	t.Run("remote failure keeps local file", func(t *testing.T) {
		env := newTestService(t)
		p, err := env.svc.Create(ctx, CreateOptions{Title: "Stays", Now: day})
		require.NoError(t, err)
		_, err = env.svc.Publish(ctx, p.FileName)
		require.NoError(t, err)

		env.publisher.err = errors.New("unauthorized")
		require.Error(t, env.svc.Delete(ctx, p.FileName, true))
		assert.True(t, env.exists(p.FileName))
	})

	t.Run("unpublished with remote deletes locally", func(t *testing.T) {
		env := newTestService(t)
		p, err := env.svc.Create(ctx, CreateOptions{Title: "Local", Now: day})
		require.NoError(t, err)

		require.NoError(t, env.svc.Delete(ctx, p.FileName, true))
		assert.False(t, env.exists(p.FileName))
		assert.Empty(t, env.publisher.deleted)
	})
}

func TestService_List(t *testing.T) {
	ctx := context.Background()
	env := newTestService(t)

	_, err := env.svc.Create(ctx, CreateOptions{Title: "Go Tips", Tags: []string{"go"}, Now: day})
	require.NoError(t, err)
	_, err = env.svc.Create(ctx, CreateOptions{Title: "Draft", Draft: true, Now: day.Add(time.Hour)})
	require.NoError(t, err)
	pub, err := env.svc.Create(ctx, CreateOptions{Title: "Live", Categories: []string{"news"}, Now: day.Add(2 * time.Hour)})
	require.NoError(t, err)
	_, err = env.svc.Publish(ctx, pub.FileName)
	require.NoError(t, err)

	all, err := env.svc.List(ctx, post.Filter{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "Live", all[0].Meta.Title)

	tagged, err := env.svc.List(ctx, post.Filter{Tag: "GO"})
	require.NoError(t, err)
	require.Len(t, tagged, 1)
	assert.Equal(t, "Go Tips", tagged[0].Meta.Title)

	drafts, err := env.svc.List(ctx, post.Filter{Drafts: true})
	require.NoError(t, err)
	require.Len(t, drafts, 1)

	published, err := env.svc.List(ctx, post.Filter{Published: true, Category: "news"})
	require.NoError(t, err)
	require.Len(t, published, 1)
}

func TestService_Source(t *testing.T) {
	ctx := context.Background()
	env := newTestService(t)

	raw := "no header\r\n"
	require.NoError(t, os.WriteFile(filepath.Join(env.root, "raw.md"), []byte(raw), 0o644))

	got, err := env.svc.Source("raw.md")
	require.NoError(t, err)
	assert.Equal(t, raw, got)

	_, err = env.svc.Source("missing.md")
	assert.ErrorIs(t, err, post.ErrNotFound)

	_, err = env.svc.Format(ctx, "missing.md")
	assert.ErrorIs(t, err, post.ErrNotFound)
}
