package executil

import (
	"context"
	"sync"
)

// RecordedCommand is one call made through a RecordingExecutor.
type RecordedCommand struct {
	Dir  string
	Cmd  string
	Args []string
}

// RecordingExecutor records commands instead of running them.
type RecordingExecutor struct {
	mu       sync.Mutex
	Commands []RecordedCommand

	// Errors maps a command name to the error returned for it.
	Errors map[string]error

	// OnRun, when set, is called after a command is recorded and its error
	// is returned. Tests use it to stand in for an editor changing a file.
	OnRun func(cmd RecordedCommand) error
}

var _ Executor = (*RecordingExecutor)(nil)

func (e *RecordingExecutor) RunInteractive(_ context.Context, dir, cmd string, args ...string) error {
	rc := RecordedCommand{Dir: dir, Cmd: cmd, Args: args}

	e.mu.Lock()
	e.Commands = append(e.Commands, rc)
	err := e.Errors[cmd]
	onRun := e.OnRun
	e.mu.Unlock()

	if err != nil || onRun == nil {
		return err
	}
	return onRun(rc)
}

// Reset forgets recorded commands.
func (e *RecordingExecutor) Reset() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.Commands = nil
}
