// Package publog records remote publish and delete operations so the CLI
// can show when a post last went out and with which content hash.
package publog

import (
	"context"
	"time"
)

// Action is the kind of remote operation recorded.
type Action string

const (
	ActionPublish Action = "publish"
	ActionDelete  Action = "delete"
)

// IsValid reports whether a is a known action.
func (a Action) IsValid() bool {
	switch a {
	case ActionPublish, ActionDelete:
		return true
	default:
		return false
	}
}

// Entry is a single log record.
type Entry struct {
	ID        string    `json:"id"`
	FileName  string    `json:"file_name"`
	Action    Action    `json:"action"`
	SHA       string    `json:"sha,omitempty"`
	Title     string    `json:"title"`
	CreatedAt time.Time `json:"created_at"`
}

// Store persists log entries.
type Store interface {
	// Record appends an entry. Empty ID and zero CreatedAt are filled in.
	Record(ctx context.Context, e Entry) error

	// List returns entries newest first. An empty fileName lists all posts;
	// limit <= 0 means no limit.
	List(ctx context.Context, fileName string, limit int) ([]Entry, error)
}
