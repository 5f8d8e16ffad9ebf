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

type RmCmd struct {
	flags *Flags
	app   *studio.App

	remote bool
	yes    bool
}

// NewRmCmd creates a new rm command
func NewRmCmd(flags *Flags, app *studio.App) *RmCmd {
	return &RmCmd{flags: flags, app: app}
}

// Register adds the rm command to the application
func (cmd *RmCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "rm",
		Usage:     "Delete a post",
		UsageText: "quill rm <file> [--remote] [--yes]",
		Description: `Deletes the post file. With --remote a published post is first deleted
from GitHub; the local file is kept when that fails.`,
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:        "remote",
				Usage:       "also delete the published copy",
				Destination: &cmd.remote,
			},
			&cli.BoolFlag{
				Name:        "yes",
				Aliases:     []string{"y"},
				Usage:       "do not ask for confirmation",
				Destination: &cmd.yes,
			},
		},
		Action: cmd.run,
	})

	return app
}

func (cmd *RmCmd) run(ctx context.Context, c *cli.Command) error {
	fileName, err := requireFile(c)
	if err != nil {
		return err
	}

	if !cmd.yes && term.IsTerminal(int(os.Stdin.Fd())) {
		confirmed := false
		title := fmt.Sprintf("Delete %s?", fileName)
		if cmd.remote {
			title = fmt.Sprintf("Delete %s locally and on GitHub?", fileName)
		}
		err := huh.NewConfirm().Title(title).Value(&confirmed).Run()
		if errors.Is(err, huh.ErrUserAborted) || (err == nil && !confirmed) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("confirm: %w", err)
		}
	}

	if err := cmd.app.Posts.Delete(ctx, fileName, cmd.remote); err != nil {
		return err
	}

	printer.Ctx(ctx).Success("Deleted", fileName)
	return nil
}
