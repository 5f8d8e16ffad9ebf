// Package logging carries request-scoped fields from a context into zerolog
// events.
package logging

import "context"

type contextKey string

const (
	postFileKey contextKey = "post"
	commandKey  contextKey = "command"
)

// WithPostFile adds the file name of the post being worked on to the context.
func WithPostFile(ctx context.Context, fileName string) context.Context {
	return context.WithValue(ctx, postFileKey, fileName)
}

// WithCommand adds the CLI command name to the context.
func WithCommand(ctx context.Context, name string) context.Context {
	return context.WithValue(ctx, commandKey, name)
}

// GetPostFile retrieves the post file name from the context.
// Returns empty string if not present.
func GetPostFile(ctx context.Context) string {
	if v, ok := ctx.Value(postFileKey).(string); ok {
		return v
	}
	return ""
}

// GetCommand retrieves the command name from the context.
// Returns empty string if not present.
func GetCommand(ctx context.Context) string {
	if v, ok := ctx.Value(commandKey).(string); ok {
		return v
	}
	return ""
}
