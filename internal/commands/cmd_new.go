package commands

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/charmbracelet/huh"
	"github.com/colonyops/quill/internal/printer"
	"github.com/colonyops/quill/internal/studio"
	"github.com/urfave/cli/v3"
	"golang.org/x/term"
)

type NewCmd struct {
	flags *Flags
	app   *studio.App

	// Command-specific flags
	title      string
	tags       []string
	categories []string
	draft      bool
	edit       bool
}

// NewNewCmd creates a new new command
func NewNewCmd(flags *Flags, app *studio.App) *NewCmd {
	return &NewCmd{flags: flags, app: app}
}

// Register adds the new command to the application
func (cmd *NewCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "new",
		Usage:     "Create a new post",
		UsageText: "quill new [options]",
		Description: `Creates a Markdown file with a frontmatter header in the posts directory.

The file is named yyyy-MM-dd-<slug>.md from today's date and the title.
When --title is omitted and stdin is a terminal, an interactive form
prompts for the title, tags and draft state.`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "title",
				Aliases:     []string{"t"},
				Usage:       "post title",
				Destination: &cmd.title,
			},
			&cli.StringSliceFlag{
				Name:        "tag",
				Usage:       "tag to add (repeatable, comma separated)",
				Destination: &cmd.tags,
			},
			&cli.StringSliceFlag{
				Name:        "category",
				Usage:       "category to add (repeatable, comma separated)",
				Destination: &cmd.categories,
			},
			&cli.BoolFlag{
				Name:        "draft",
				Usage:       "mark the post as a draft",
				Destination: &cmd.draft,
			},
			&cli.BoolFlag{
				Name:        "edit",
				Aliases:     []string{"e"},
				Usage:       "open the new post in the editor",
				Destination: &cmd.edit,
			},
		},
		Action: cmd.run,
	})

	return app
}

func (cmd *NewCmd) run(ctx context.Context, c *cli.Command) error {
	p := printer.Ctx(ctx)

	if cmd.title == "" && term.IsTerminal(int(os.Stdin.Fd())) {
		if err := cmd.runForm(); err != nil {
			if errors.Is(err, huh.ErrUserAborted) {
				return nil
			}
			return fmt.Errorf("form: %w", err)
		}
	}

	created, err := cmd.app.Posts.Create(ctx, studio.CreateOptions{
		Title:      cmd.title,
		Tags:       splitList(cmd.tags),
		Categories: splitList(cmd.categories),
		Draft:      cmd.draft,
	})
	if err != nil {
		return fmt.Errorf("create post: %w", err)
	}

	p.Success("Post created", created.FileName)

	if cmd.edit {
		edited, err := cmd.app.Posts.Edit(ctx, created.FileName)
		if err != nil {
			return err
		}
		if edited.FileName != created.FileName {
			p.Success("Renamed", edited.FileName)
		}
	}

	return nil
}

func (cmd *NewCmd) runForm() error {
	tags := ""
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Title").
				Description("Leave empty for an untitled post").
				Value(&cmd.title),
			huh.NewInput().
				Title("Tags").
				Description("Comma separated").
				Value(&tags),
			huh.NewConfirm().
				Title("Draft?").
				Value(&cmd.draft),
		),
	)

	if err := form.Run(); err != nil {
		return err
	}

	if tags != "" {
		cmd.tags = append(cmd.tags, tags)
	}
	return nil
}
