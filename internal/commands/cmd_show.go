package commands

import (
	"context"
	"fmt"
	"os"

	"github.com/charmbracelet/glamour"
	"github.com/colonyops/quill/internal/core/frontmatter"
	"github.com/colonyops/quill/internal/printer"
	"github.com/colonyops/quill/internal/studio"
	"github.com/colonyops/quill/pkg/iojson"
	"github.com/urfave/cli/v3"
	"golang.org/x/term"
)

const defaultRenderWidth = 80

type ShowCmd struct {
	flags *Flags
	app   *studio.App

	meta   bool
	render bool
	strict bool
}

// NewShowCmd creates a new show command
func NewShowCmd(flags *Flags, app *studio.App) *ShowCmd {
	return &ShowCmd{flags: flags, app: app}
}

// Register adds the show command to the application
func (cmd *ShowCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "show",
		Usage:     "Print a post",
		UsageText: "quill show <file> [--meta] [--render] [--strict]",
		Description: `Prints the post file as stored on disk.

--meta prints the parsed metadata as JSON and --render renders the body as
styled Markdown for the terminal. --strict parses the header as YAML and
reports headers that are not valid YAML.`,
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:        "meta",
				Aliases:     []string{"m"},
				Usage:       "print metadata as JSON",
				Destination: &cmd.meta,
			},
			&cli.BoolFlag{
				Name:        "render",
				Aliases:     []string{"r"},
				Usage:       "render the body for the terminal",
				Destination: &cmd.render,
			},
			&cli.BoolFlag{
				Name:        "strict",
				Usage:       "decode the header as YAML",
				Destination: &cmd.strict,
			},
		},
		Action: cmd.run,
	})

	return app
}

func (cmd *ShowCmd) run(ctx context.Context, c *cli.Command) error {
	fileName, err := requireFile(c)
	if err != nil {
		return err
	}

	src, err := cmd.app.Posts.Source(fileName)
	if err != nil {
		return err
	}

	out := c.Root().Writer

	var doc frontmatter.Document
	if cmd.strict {
		doc = frontmatter.ParseStrict(src)
		if doc.Raw != "" {
			p := printer.Ctx(ctx)
			p.Warnf("header is not valid YAML, showing it unparsed")
			_, _ = fmt.Fprintln(out, doc.Raw)
			return nil
		}
	} else {
		doc.Meta, doc.Body = frontmatter.Parse(src)
	}

	switch {
	case cmd.meta:
		return iojson.WriteWith(out, c.Root().ErrWriter, doc.Meta)
	case cmd.render:
		rendered, err := renderMarkdown(doc.Body)
		if err != nil {
			return fmt.Errorf("render: %w", err)
		}
		_, err = fmt.Fprint(out, rendered)
		return err
	default:
		_, err = fmt.Fprint(out, src)
		return err
	}
}

func renderMarkdown(body string) (string, error) {
	width := defaultRenderWidth
	if w, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil && w > 0 {
		width = w
	}

	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return "", err
	}

	return r.Render(body)
}
