package commands

import (
	"context"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/colonyops/quill/internal/core/frontmatter"
	"github.com/colonyops/quill/internal/core/post"
	"github.com/colonyops/quill/internal/printer"
	"github.com/colonyops/quill/internal/studio"
	"github.com/colonyops/quill/pkg/iojson"
	"github.com/dustin/go-humanize"
	"github.com/urfave/cli/v3"
)

type LsCmd struct {
	flags *Flags
	app   *studio.App

	// flags
	tag        string
	category   string
	drafts     bool
	published  bool
	jsonOutput bool
}

// NewLsCmd creates a new ls command
func NewLsCmd(flags *Flags, app *studio.App) *LsCmd {
	return &LsCmd{flags: flags, app: app}
}

// Register adds the ls command to the application
func (cmd *LsCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:        "ls",
		Usage:       "List posts",
		UsageText:   "quill ls [--tag t] [--category c] [--drafts|--published] [--json]",
		Description: "Displays a table of posts, newest first, with their status and last modification time.",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "tag",
				Usage:       "only posts with this tag (case-insensitive)",
				Destination: &cmd.tag,
			},
			&cli.StringFlag{
				Name:        "category",
				Usage:       "only posts in this category (case-insensitive)",
				Destination: &cmd.category,
			},
			&cli.BoolFlag{
				Name:        "drafts",
				Usage:       "only drafts",
				Destination: &cmd.drafts,
			},
			&cli.BoolFlag{
				Name:        "published",
				Usage:       "only posts that have been published",
				Destination: &cmd.published,
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

// postInfo is the JSON output format for quill ls --json.
type postInfo struct {
	FileName  string               `json:"file_name"`
	Status    string               `json:"status"`
	Meta      frontmatter.Metadata `json:"meta"`
	CreatedAt string               `json:"created_at"`
	UpdatedAt string               `json:"updated_at"`
}

func (cmd *LsCmd) run(ctx context.Context, c *cli.Command) error {
	posts, err := cmd.app.Posts.List(ctx, post.Filter{
		Tag:       cmd.tag,
		Category:  cmd.category,
		Drafts:    cmd.drafts,
		Published: cmd.published,
	})
	if err != nil {
		return fmt.Errorf("list posts: %w", err)
	}

	out := c.Root().Writer

	if cmd.jsonOutput {
		for _, p := range posts {
			info := postInfo{
				FileName:  p.FileName,
				Status:    status(p),
				Meta:      p.Meta,
				CreatedAt: p.CreatedAt.Format(post.DateLayout),
				UpdatedAt: p.UpdatedAt.Format(post.DateLayout),
			}
			if err := iojson.WriteLine(out, info); err != nil {
				return fmt.Errorf("encode post: %w", err)
			}
		}
		return nil
	}

	if len(posts) == 0 {
		printer.Ctx(ctx).Infof("No posts found in %s", cmd.app.Config.PostsDir)
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "FILE\tTITLE\tSTATUS\tTAGS\tUPDATED")
	for _, p := range posts {
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
			p.FileName,
			p.Title(),
			status(p),
			strings.Join(p.Meta.Tags, ", "),
			humanize.Time(p.UpdatedAt),
		)
	}

	return w.Flush()
}
