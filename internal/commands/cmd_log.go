package commands

import (
	"context"
	"fmt"
	"text/tabwriter"

	"github.com/colonyops/quill/internal/printer"
	"github.com/colonyops/quill/internal/studio"
	"github.com/colonyops/quill/pkg/iojson"
	"github.com/dustin/go-humanize"
	"github.com/urfave/cli/v3"
)

type LogCmd struct {
	flags *Flags
	app   *studio.App

	limit      int
	jsonOutput bool
}

// NewLogCmd creates a new log command
func NewLogCmd(flags *Flags, app *studio.App) *LogCmd {
	return &LogCmd{flags: flags, app: app}
}

// Register adds the log command to the application
func (cmd *LogCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:        "log",
		Usage:       "Show publish history",
		UsageText:   "quill log [file] [--limit n] [--json]",
		Description: "Lists recorded publish and remote delete operations, newest first.",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:        "limit",
				Aliases:     []string{"n"},
				Usage:       "maximum entries to show (0 for all)",
				Value:       20,
				Destination: &cmd.limit,
			},
			&cli.BoolFlag{
				Name:        "json",
				Usage:       "output as JSON lines",
				Destination: &cmd.jsonOutput,
			},
		},
		Action: cmd.run,
	})

	return app
}

func (cmd *LogCmd) run(ctx context.Context, c *cli.Command) error {
	entries, err := cmd.app.Posts.History(ctx, c.Args().First(), cmd.limit)
	if err != nil {
		return fmt.Errorf("read publish log: %w", err)
	}

	out := c.Root().Writer

	if cmd.jsonOutput {
		for _, e := range entries {
			if err := iojson.WriteLine(out, e); err != nil {
				return err
			}
		}
		return nil
	}

	if len(entries) == 0 {
		printer.Ctx(ctx).Infof("No publish history")
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "WHEN\tACTION\tFILE\tSHA\tTITLE")
	for _, e := range entries {
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
			humanize.Time(e.CreatedAt),
			e.Action,
			e.FileName,
			shortSHA(e.SHA),
			e.Title,
		)
	}
	return w.Flush()
}
