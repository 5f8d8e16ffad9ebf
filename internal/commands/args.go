package commands

import (
	"context"
	"fmt"
	"strings"

	"github.com/colonyops/quill/internal/core/post"
	"github.com/colonyops/quill/internal/studio"
	"github.com/urfave/cli/v3"
)

// targetFiles returns the file arguments, or every post when all is set.
func targetFiles(ctx context.Context, app *studio.App, c *cli.Command, all bool) ([]string, error) {
	if all {
		posts, err := app.Posts.List(ctx, post.Filter{})
		if err != nil {
			return nil, fmt.Errorf("list posts: %w", err)
		}
		names := make([]string, len(posts))
		for i, p := range posts {
			names[i] = p.FileName
		}
		return names, nil
	}

	if c.Args().Len() == 0 {
		return nil, fmt.Errorf("at least one file is required (or use --all)")
	}
	return c.Args().Slice(), nil
}

// requireFile returns the single file argument.
func requireFile(c *cli.Command) (string, error) {
	if c.Args().Len() != 1 {
		return "", fmt.Errorf("expected exactly one file argument")
	}
	return c.Args().First(), nil
}

// splitList splits comma separated flag values into trimmed, non-empty
// items, so --tag a,b and --tag a --tag b are equivalent.
func splitList(values []string) []string {
	var out []string
	for _, v := range values {
		for _, item := range strings.Split(v, ",") {
			if item = strings.TrimSpace(item); item != "" {
				out = append(out, item)
			}
		}
	}
	return out
}

func shortSHA(sha string) string {
	if len(sha) > 7 {
		return sha[:7]
	}
	return sha
}

func status(p post.Post) string {
	switch {
	case p.Meta.Draft:
		return "draft"
	case p.Published():
		return "published"
	default:
		return "local"
	}
}
