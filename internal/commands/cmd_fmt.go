package commands

import (
	"context"
	"fmt"

	"github.com/colonyops/quill/internal/printer"
	"github.com/colonyops/quill/internal/studio"
	"github.com/urfave/cli/v3"
)

type FmtCmd struct {
	flags *Flags
	app   *studio.App

	all bool
}

// NewFmtCmd creates a new fmt command
func NewFmtCmd(flags *Flags, app *studio.App) *FmtCmd {
	return &FmtCmd{flags: flags, app: app}
}

// Register adds the fmt command to the application
func (cmd *FmtCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "fmt",
		Usage:     "Rewrite posts with a canonical header",
		UsageText: "quill fmt <file...> | quill fmt --all",
		Description: `Rewrites each post with its header fields in canonical order, list values
normalized and LF line endings. The body is left as is. Files without a
header get one.`,
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:        "all",
				Aliases:     []string{"a"},
				Usage:       "format every post",
				Destination: &cmd.all,
			},
		},
		Action: cmd.run,
	})

	return app
}

func (cmd *FmtCmd) run(ctx context.Context, c *cli.Command) error {
	p := printer.Ctx(ctx)

	files, err := targetFiles(ctx, cmd.app, c, cmd.all)
	if err != nil {
		return err
	}

	changed := 0
	for _, f := range files {
		ok, err := cmd.app.Posts.Format(ctx, f)
		if err != nil {
			return fmt.Errorf("format %s: %w", f, err)
		}
		if ok {
			changed++
			p.Success("Formatted", f)
		}
	}

	p.Infof("%d of %d file(s) changed", changed, len(files))
	return nil
}
