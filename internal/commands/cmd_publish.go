package commands

import (
	"context"
	"fmt"

	"github.com/colonyops/quill/internal/printer"
	"github.com/colonyops/quill/internal/studio"
	"github.com/urfave/cli/v3"
)

type PublishCmd struct {
	flags *Flags
	app   *studio.App
}

// NewPublishCmd creates a new publish command
func NewPublishCmd(flags *Flags, app *studio.App) *PublishCmd {
	return &PublishCmd{flags: flags, app: app}
}

// Register adds the publish command to the application
func (cmd *PublishCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "publish",
		Usage:     "Upload a post to GitHub",
		UsageText: "quill publish <file>",
		Description: `Creates or updates the post in the configured GitHub repository through
the contents API. The sha of the uploaded version is stored in the post
header and is required for later updates and deletes.`,
		Action: cmd.run,
	})

	return app
}

func (cmd *PublishCmd) run(ctx context.Context, c *cli.Command) error {
	fileName, err := requireFile(c)
	if err != nil {
		return err
	}

	published, err := cmd.app.Posts.Publish(ctx, fileName)
	if err != nil {
		return err
	}

	gh := cmd.app.Config.GitHub
	printer.Ctx(ctx).Success(
		fmt.Sprintf("Published to %s/%s@%s", gh.Owner, gh.Repo, gh.BranchOrDefault()),
		shortSHA(published.Meta.SHA),
	)
	return nil
}
