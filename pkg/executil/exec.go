// Package executil runs external programs such as the user's editor.
package executil

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
)

// Executor runs external commands attached to a terminal.
type Executor interface {
	// RunInteractive runs cmd in dir (empty means the current directory) with
	// stdio attached and waits for it to exit.
	RunInteractive(ctx context.Context, dir, cmd string, args ...string) error
}

// SplitCommand splits a command line such as "code --wait" into the program
// and its leading arguments. Quoting is not supported.
func SplitCommand(line string) (string, []string, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return "", nil, fmt.Errorf("empty command")
	}
	return fields[0], fields[1:], nil
}

// RealExecutor runs commands with os/exec.
type RealExecutor struct {
	// Nil streams mean the process's own stdin, stdout and stderr.
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
}

var _ Executor = (*RealExecutor)(nil)

// RunInteractive runs the command to completion. A non-zero exit keeps the
// *exec.ExitError in the chain.
func (e *RealExecutor) RunInteractive(ctx context.Context, dir, cmd string, args ...string) error {
	c := exec.CommandContext(ctx, cmd, args...)
	c.Dir = dir
	c.Stdin, c.Stdout, c.Stderr = e.Stdin, e.Stdout, e.Stderr
	if c.Stdin == nil {
		c.Stdin = os.Stdin
	}
	if c.Stdout == nil {
		c.Stdout = os.Stdout
	}
	if c.Stderr == nil {
		c.Stderr = os.Stderr
	}

	if err := c.Run(); err != nil {
		return fmt.Errorf("exec %s: %w", cmd, err)
	}
	return nil
}
