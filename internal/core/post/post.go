// Package post defines the blog post domain model and its storage contract.
package post

import (
	"path"
	"strings"
	"time"

	"github.com/araddon/dateparse"
	"github.com/colonyops/quill/internal/core/frontmatter"
	"github.com/google/uuid"
)

// DateLayout is the format written to the date field of new posts. Dates
// are always written in UTC.
const DateLayout = "2006-01-02 15:04:05"

// Post is a Markdown document on disk together with its parsed header.
type Post struct {
	ID        string               `json:"id"`
	Meta      frontmatter.Metadata `json:"meta"`
	Body      string               `json:"-"`
	FileName  string               `json:"file_name"`
	CreatedAt time.Time            `json:"created_at"`
	UpdatedAt time.Time            `json:"updated_at"`
}

// New creates an empty post dated now.
func New(title string, now time.Time) Post {
	now = now.UTC()
	id := uuid.NewString()
	return Post{
		ID: id,
		Meta: frontmatter.Metadata{
			Title: title,
			Date:  now.Format(DateLayout),
		},
		FileName:  FileName(title, now, id),
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// FromMarkdown builds a Post from the contents of fileName. The creation
// time comes from the date field when it can be read, then from a
// yyyy-MM-dd prefix on the base name, and only then from modTime.
func FromMarkdown(fileName, content string, modTime time.Time) Post {
	meta, body := frontmatter.Parse(content)
	created, ok := ParseDate(meta.Date)
	if !ok {
		created, ok = fileNameDate(fileName)
	}
	if !ok {
		created = modTime.UTC()
	}

	return Post{
		ID:        uuid.NewString(),
		Meta:      meta,
		Body:      body,
		FileName:  fileName,
		CreatedAt: created,
		UpdatedAt: modTime.UTC(),
	}
}

// fileNameDate reads the yyyy-MM-dd prefix of the base name of fileName.
func fileNameDate(fileName string) (time.Time, bool) {
	base := path.Base(fileName)
	if len(base) < len(fileDateLayout) {
		return time.Time{}, false
	}
	t, err := time.ParseInLocation(fileDateLayout, base[:len(fileDateLayout)], time.UTC)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// ParseDate reads a date field. DateLayout is tried first; other common
// formats are accepted, and values without a zone are taken as UTC.
func ParseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	if t, err := time.ParseInLocation(DateLayout, s, time.UTC); err == nil {
		return t, true
	}
	t, err := dateparse.ParseIn(s, time.UTC)
	if err != nil {
		return time.Time{}, false
	}
	return t.UTC(), true
}

// Markdown renders the post as a document with a frontmatter header.
func (p Post) Markdown() string {
	return frontmatter.Generate(p.Meta, p.Body)
}

// Published reports whether the post has a remote version.
func (p Post) Published() bool {
	return p.Meta.SHA != ""
}

// Title returns the post title or a placeholder for untitled posts.
func (p Post) Title() string {
	if t := strings.TrimSpace(p.Meta.Title); t != "" {
		return t
	}
	return "Untitled"
}

// ExpectedFileName returns the file name the post should have for its
// current title and creation date, in the same directory as FileName. An
// untitled post keeps its current name when that name is already an untitled
// name for the same date, so repeated syncs do not churn the random suffix.
func (p Post) ExpectedFileName() string {
	dir, current := path.Split(p.FileName)
	want := FileName(p.Meta.Title, p.CreatedAt, p.ID)
	if blankSlug(Slugify(p.Meta.Title)) {
		prefix := p.CreatedAt.UTC().Format(fileDateLayout) + "-" + untitledPrefix
		if strings.HasPrefix(current, prefix) && strings.HasSuffix(current, ".md") {
			return p.FileName
		}
	}
	return dir + want
}
