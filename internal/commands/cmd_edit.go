package commands

import (
	"context"

	"github.com/colonyops/quill/internal/printer"
	"github.com/colonyops/quill/internal/studio"
	"github.com/urfave/cli/v3"
)

type EditCmd struct {
	flags *Flags
	app   *studio.App
}

// NewEditCmd creates a new edit command
func NewEditCmd(flags *Flags, app *studio.App) *EditCmd {
	return &EditCmd{flags: flags, app: app}
}

// Register adds the edit command to the application
func (cmd *EditCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:        "edit",
		Usage:       "Open a post in the editor",
		UsageText:   "quill edit <file>",
		Description: "Opens the post in the configured editor ($EDITOR by default) and renames it afterwards if the title or date changed.",
		Action:      cmd.run,
	})

	return app
}

func (cmd *EditCmd) run(ctx context.Context, c *cli.Command) error {
	fileName, err := requireFile(c)
	if err != nil {
		return err
	}

	edited, err := cmd.app.Posts.Edit(ctx, fileName)
	if err != nil {
		return err
	}

	if edited.FileName != fileName {
		printer.Ctx(ctx).Success("Renamed", edited.FileName)
	}
	return nil
}
