package commands

import (
	"context"
	"fmt"

	"github.com/colonyops/quill/internal/core/post"
	"github.com/colonyops/quill/internal/printer"
	"github.com/colonyops/quill/internal/studio"
	"github.com/colonyops/quill/pkg/iojson"
	"github.com/urfave/cli/v3"
)

// metaPatch is a partial metadata update. Nil fields are left unchanged.
type metaPatch struct {
	Title      *string   `json:"title"`
	Date       *string   `json:"date"`
	Tags       *[]string `json:"tags"`
	Categories *[]string `json:"categories"`
	Draft      *bool     `json:"draft"`
}

func (m metaPatch) apply(p *post.Post) {
	if m.Title != nil {
		p.Meta.Title = *m.Title
	}
	if m.Date != nil {
		p.Meta.Date = *m.Date
	}
	if m.Tags != nil {
		p.Meta.Tags = splitList(*m.Tags)
	}
	if m.Categories != nil {
		p.Meta.Categories = splitList(*m.Categories)
	}
	if m.Draft != nil {
		p.Meta.Draft = *m.Draft
	}
}

type SetCmd struct {
	flags *Flags
	app   *studio.App

	title      string
	date       string
	tags       []string
	categories []string
	draft      bool
	reader     iojson.FileReader[metaPatch]
}

// NewSetCmd creates a new set command
func NewSetCmd(flags *Flags, app *studio.App) *SetCmd {
	return &SetCmd{flags: flags, app: app}
}

// Register adds the set command to the application
func (cmd *SetCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "set",
		Usage:     "Change post metadata",
		UsageText: "quill set <file> [--title t] [--date d] [--tags a,b] [--categories c] [--draft=bool] [-f patch.json]",
		Description: `Updates header fields of a post and renames the file when the title or
date change. Only the given fields are touched; --tags and --categories
replace the whole list (pass an empty value to clear it).

A JSON patch with the same field names can be given with --file, or piped
on stdin with --file -. Flags are applied after the patch.`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "title",
				Destination: &cmd.title,
			},
			&cli.StringFlag{
				Name:        "date",
				Usage:       "date in " + post.DateLayout + " form",
				Destination: &cmd.date,
			},
			&cli.StringSliceFlag{
				Name:        "tags",
				Destination: &cmd.tags,
			},
			&cli.StringSliceFlag{
				Name:        "categories",
				Destination: &cmd.categories,
			},
			&cli.BoolFlag{
				Name:        "draft",
				Destination: &cmd.draft,
			},
			cmd.reader.Flag(),
		},
		Action: cmd.run,
	})

	return app
}

func (cmd *SetCmd) run(ctx context.Context, c *cli.Command) error {
	fileName, err := requireFile(c)
	if err != nil {
		return err
	}

	var patch metaPatch
	if cmd.reader.IsSet() {
		patch, err = cmd.reader.Read()
		if err != nil {
			return err
		}
	}

	if c.IsSet("title") {
		patch.Title = &cmd.title
	}
	if c.IsSet("date") {
		if _, ok := post.ParseDate(cmd.date); !ok {
			return fmt.Errorf("invalid date %q", cmd.date)
		}
		patch.Date = &cmd.date
	}
	if c.IsSet("tags") {
		patch.Tags = &cmd.tags
	}
	if c.IsSet("categories") {
		patch.Categories = &cmd.categories
	}
	if c.IsSet("draft") {
		patch.Draft = &cmd.draft
	}

	updated, err := cmd.app.Posts.Update(ctx, fileName, patch.apply)
	if err != nil {
		return fmt.Errorf("update %s: %w", fileName, err)
	}

	printer.Ctx(ctx).Success("Updated", updated.FileName)
	return nil
}
