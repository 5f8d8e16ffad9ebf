package commands

import (
	"context"
	"errors"
	"fmt"

	"github.com/colonyops/quill/internal/core/post"
	"github.com/colonyops/quill/internal/printer"
	"github.com/colonyops/quill/internal/studio"
	"github.com/urfave/cli/v3"
)

type SyncCmd struct {
	flags *Flags
	app   *studio.App

	all bool
}

// NewSyncCmd creates a new sync command
func NewSyncCmd(flags *Flags, app *studio.App) *SyncCmd {
	return &SyncCmd{flags: flags, app: app}
}

// Register adds the sync command to the application
func (cmd *SyncCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "sync",
		Usage:     "Rename post files to match their titles",
		UsageText: "quill sync <file...> | quill sync --all",
		Description: `Renames each post to yyyy-MM-dd-<slug>.md from its date and title. File
contents are not changed. Posts whose target name is taken are reported and
left in place.`,
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:        "all",
				Aliases:     []string{"a"},
				Usage:       "sync every post",
				Destination: &cmd.all,
			},
		},
		Action: cmd.run,
	})

	return app
}

func (cmd *SyncCmd) run(ctx context.Context, c *cli.Command) error {
	p := printer.Ctx(ctx)

	files, err := targetFiles(ctx, cmd.app, c, cmd.all)
	if err != nil {
		return err
	}

	conflicts := 0
	for _, f := range files {
		synced, err := cmd.app.Posts.Sync(ctx, f)
		if errors.Is(err, post.ErrExists) {
			conflicts++
			p.Warnf("%s: %v", f, err)
			continue
		}
		if err != nil {
			return fmt.Errorf("sync %s: %w", f, err)
		}
		if synced.FileName != f {
			p.Success("Renamed "+f, synced.FileName)
		}
	}

	if conflicts > 0 {
		return fmt.Errorf("%d post(s) could not be renamed", conflicts)
	}
	return nil
}
