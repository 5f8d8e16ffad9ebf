package logging

import (
	"context"

	"github.com/rs/zerolog"
)

// ContextHook copies the post file and command name from the event context
// into log events.
type ContextHook struct{}

// Run adds contextual fields to the zerolog event.
func (h ContextHook) Run(e *zerolog.Event, level zerolog.Level, msg string) {
	ctx := e.GetCtx()
	if ctx == nil || ctx == context.Background() {
		return
	}

	if file := GetPostFile(ctx); file != "" {
		e.Str("post", file)
	}

	if cmd := GetCommand(ctx); cmd != "" {
		e.Str("command", cmd)
	}
}
