// Package printer writes styled status lines for CLI commands.
package printer

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
)

var (
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#9ece6a")).Bold(true)
	infoStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#7aa2f7")).Bold(true)
	warnStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#e0af68")).Bold(true)
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#f7768e")).Bold(true)
	mutedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#565f89"))
)

// Printer writes human readable output. Status lines go to out, errors and
// warnings to errOut.
type Printer struct {
	out    io.Writer
	errOut io.Writer
}

// New creates a Printer.
func New(out, errOut io.Writer) *Printer {
	return &Printer{out: out, errOut: errOut}
}

type ctxKey struct{}

// NewContext stores p in ctx.
func NewContext(ctx context.Context, p *Printer) context.Context {
	return context.WithValue(ctx, ctxKey{}, p)
}

// Ctx returns the Printer stored in ctx, or one writing to the process
// streams.
func Ctx(ctx context.Context) *Printer {
	if p, ok := ctx.Value(ctxKey{}).(*Printer); ok && p != nil {
		return p
	}
	return New(os.Stdout, os.Stderr)
}

// Success prints a check mark line with an optional muted detail.
func (p *Printer) Success(title, detail string) {
	line := successStyle.Render("✔") + " " + title
	if detail != "" {
		line += " " + mutedStyle.Render(detail)
	}
	_, _ = fmt.Fprintln(p.out, line)
}

// Successf prints a formatted success line.
func (p *Printer) Successf(format string, args ...any) {
	p.Success(fmt.Sprintf(format, args...), "")
}

// Infof prints a formatted informational line.
func (p *Printer) Infof(format string, args ...any) {
	_, _ = fmt.Fprintln(p.out, infoStyle.Render("•")+" "+fmt.Sprintf(format, args...))
}

// Warnf prints a formatted warning line.
func (p *Printer) Warnf(format string, args ...any) {
	_, _ = fmt.Fprintln(p.errOut, warnStyle.Render("!")+" "+fmt.Sprintf(format, args...))
}

// Errorf prints a formatted error line.
func (p *Printer) Errorf(format string, args ...any) {
	_, _ = fmt.Fprintln(p.errOut, errorStyle.Render("✘")+" "+fmt.Sprintf(format, args...))
}

// Printf prints a plain formatted line.
func (p *Printer) Printf(format string, args ...any) {
	_, _ = fmt.Fprintln(p.out, fmt.Sprintf(format, args...))
}
