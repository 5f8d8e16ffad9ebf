package stores

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/colonyops/quill/internal/core/publog"
	"github.com/colonyops/quill/internal/data/db"
	"github.com/google/uuid"
)

// PublishLogStore implements publog.Store using SQLite.
type PublishLogStore struct {
	db *db.DB
}

var _ publog.Store = (*PublishLogStore)(nil)

// NewPublishLogStore creates a new SQLite-backed publish log.
func NewPublishLogStore(db *db.DB) *PublishLogStore {
	return &PublishLogStore{db: db}
}

// Record inserts an entry, generating an ID and timestamp when unset.
func (s *PublishLogStore) Record(ctx context.Context, e publog.Entry) error {
	if !e.Action.IsValid() {
		return fmt.Errorf("record publish log: invalid action %q", e.Action)
	}
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now()
	}

	err := execRetry(ctx, s.db.Conn(), `
		INSERT INTO publish_log (id, file_name, action, sha, title, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		e.ID, e.FileName, string(e.Action), e.SHA, e.Title, e.CreatedAt.UnixNano(),
	)
	if isUniqueConstraintError(err) {
		return fmt.Errorf("record publish log: entry %s already exists", e.ID)
	}
	if err != nil {
		return fmt.Errorf("record publish log: %w", err)
	}
	return nil
}

// List returns entries newest first, optionally for a single file.
func (s *PublishLogStore) List(ctx context.Context, fileName string, limit int) ([]publog.Entry, error) {
	var (
		query strings.Builder
		args  []any
	)

	query.WriteString(`SELECT id, file_name, action, sha, title, created_at FROM publish_log`)
	if fileName != "" {
		query.WriteString(` WHERE file_name = ?`)
		args = append(args, fileName)
	}
	query.WriteString(` ORDER BY created_at DESC, rowid DESC`)
	if limit > 0 {
		query.WriteString(` LIMIT ?`)
		args = append(args, limit)
	}

	rows, err := s.db.Conn().QueryContext(ctx, query.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("list publish log: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var entries []publog.Entry
	for rows.Next() {
		var (
			e       publog.Entry
			action  string
			created int64
		)
		if err := rows.Scan(&e.ID, &e.FileName, &action, &e.SHA, &e.Title, &created); err != nil {
			return nil, fmt.Errorf("list publish log scan: %w", err)
		}
		e.Action = publog.Action(action)
		e.CreatedAt = time.Unix(0, created)
		entries = append(entries, e)
	}

	return entries, rows.Err()
}
