package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime/debug"

	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"

	"github.com/colonyops/quill/internal/commands"
	"github.com/colonyops/quill/internal/core/config"
	"github.com/colonyops/quill/internal/core/logging"
	"github.com/colonyops/quill/internal/data/db"
	"github.com/colonyops/quill/internal/data/postfs"
	"github.com/colonyops/quill/internal/data/stores"
	"github.com/colonyops/quill/internal/printer"
	"github.com/colonyops/quill/internal/publish/github"
	"github.com/colonyops/quill/internal/studio"
	"github.com/colonyops/quill/pkg/executil"
	"github.com/colonyops/quill/pkg/logutils"
)

// Set with -ldflags at release time.
var (
	version = "dev"
	commit  = ""
)

// versionString reports the release version, falling back to the module
// version and VCS revision recorded by `go install`.
func versionString() string {
	v, rev := version, commit

	if info, ok := debug.ReadBuildInfo(); ok {
		if v == "dev" && info.Main.Version != "" && info.Main.Version != "(devel)" {
			v = info.Main.Version
		}
		for _, setting := range info.Settings {
			if setting.Key == "vcs.revision" && rev == "" {
				rev = setting.Value
			}
		}
	}

	if len(rev) > 7 {
		rev = rev[:7]
	}
	if rev == "" {
		return v
	}
	return v + " (" + rev + ")"
}

func main() {
	ctx := context.Background()

	var (
		logCloser func()
		quillApp  = &studio.App{}
	)

	flags := &commands.Flags{}

	app := &cli.Command{
		Name:      "quill",
		Usage:     "Write, organize and publish Markdown blog posts",
		UsageText: "quill [global options] command [command options]",
		Description: `Quill manages a folder of Markdown posts with frontmatter headers.

It creates posts with dated, slugged file names, keeps file names in sync
with titles, normalizes headers, and publishes posts to a GitHub repository
through the contents API.`,
		Version: versionString(),
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "log-level",
				Usage:       "log level (debug, info, warn, error, fatal, panic)",
				Sources:     cli.EnvVars("QUILL_LOG_LEVEL"),
				Value:       "info",
				Destination: &flags.LogLevel,
			},
			&cli.StringFlag{
				Name:        "log-file",
				Usage:       "path to log file (defaults to <data-dir>/quill.log, - for stderr)",
				Sources:     cli.EnvVars("QUILL_LOG_FILE"),
				Destination: &flags.LogFile,
			},
			&cli.StringFlag{
				Name:        "config",
				Aliases:     []string{"c"},
				Usage:       "path to config file",
				Sources:     cli.EnvVars("QUILL_CONFIG"),
				Value:       commands.DefaultConfigPath(),
				Destination: &flags.ConfigPath,
			},
			&cli.StringFlag{
				Name:        "data-dir",
				Usage:       "path to data directory",
				Sources:     cli.EnvVars("QUILL_DATA_DIR"),
				Value:       commands.DefaultDataDir(),
				Destination: &flags.DataDir,
			},
			&cli.StringFlag{
				Name:        "posts-dir",
				Aliases:     []string{"d"},
				Usage:       "directory holding the posts (overrides posts_dir in the config)",
				Sources:     cli.EnvVars("QUILL_POSTS_DIR"),
				Destination: &flags.PostsDir,
			},
		},
		Before: func(ctx context.Context, c *cli.Command) (context.Context, error) {
			// Always log to a file; use explicit path or default to <datadir>/quill.log
			logFile := flags.LogFile
			if logFile == "" {
				logFile = filepath.Join(flags.DataDir, "quill.log")
			}

			logger, closer, err := logutils.New(flags.LogLevel, logFile)
			if err != nil {
				return ctx, fmt.Errorf("setup logger: %w", err)
			}
			log.Logger = logger
			logCloser = closer

			ctx = logging.WithCommand(ctx, c.Args().First())
			ctx = printer.NewContext(ctx, printer.New(os.Stdout, os.Stderr))

			cfg, err := config.Load(flags.ConfigPath, flags.DataDir)
			if err != nil {
				return ctx, fmt.Errorf("load config: %w", err)
			}

			// Open database connection
			dbOpts := db.OpenOptions{
				MaxOpenConns: cfg.Database.MaxOpenConns,
				MaxIdleConns: cfg.Database.MaxIdleConns,
				BusyTimeout:  cfg.Database.BusyTimeout,
			}
			if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
				return ctx, fmt.Errorf("create data dir: %w", err)
			}
			database, err := db.Open(cfg.DataDir, dbOpts)
			if err != nil {
				return ctx, fmt.Errorf("open database: %w", err)
			}

			// Create stores
			kvStore := stores.NewKVStore(database)
			logStore := stores.NewPublishLogStore(database)

			workspace := studio.NewWorkspace(kvStore)

			postsDir, err := resolvePostsDir(ctx, workspace, flags.PostsDir, cfg.PostsDir)
			if err != nil {
				_ = database.Close()
				return ctx, err
			}
			cfg.PostsDir = postsDir

			// Create service
			var (
				exec      = &executil.RealExecutor{}
				publisher = github.New(cfg.GitHub)
				postStore = postfs.New(cfg.PostsDir, cfg.Pattern)
			)

			svc := studio.NewService(postStore, publisher, logStore, exec, cfg.EditorCommand(), log.Logger)

			// Populate the pre-allocated App struct (commands already hold a pointer to it)
			*quillApp = *studio.NewApp(svc, workspace, cfg, database)

			return ctx, nil
		},
		After: func(ctx context.Context, c *cli.Command) error {
			defer func() {
				if logCloser != nil {
					logCloser()
				}
			}()

			if err := quillApp.Close(); err != nil {
				log.Error().Err(err).Msg("close database")
				return err
			}
			return nil
		},
	}

	app = commands.NewNewCmd(flags, quillApp).Register(app)
	app = commands.NewLsCmd(flags, quillApp).Register(app)
	app = commands.NewShowCmd(flags, quillApp).Register(app)
	app = commands.NewEditCmd(flags, quillApp).Register(app)
	app = commands.NewSetCmd(flags, quillApp).Register(app)
	app = commands.NewFmtCmd(flags, quillApp).Register(app)
	app = commands.NewSyncCmd(flags, quillApp).Register(app)
	app = commands.NewPublishCmd(flags, quillApp).Register(app)
	app = commands.NewRmCmd(flags, quillApp).Register(app)
	app = commands.NewLogCmd(flags, quillApp).Register(app)
	app = commands.NewConfigValidateCmd(flags, quillApp).Register(app)

	if err := app.Run(ctx, os.Args); err != nil {
		printer.New(os.Stdout, os.Stderr).Errorf("%v", err)
		os.Exit(1)
	}
}

// resolvePostsDir picks the posts directory: the --posts-dir flag, then the
// configured directory, then the last directory used when the configured one
// does not exist. The result is remembered for the next run.
func resolvePostsDir(ctx context.Context, ws *studio.Workspace, flagDir, configDir string) (string, error) {
	dir := configDir
	if flagDir != "" {
		dir = flagDir
	} else if !isDir(configDir) {
		last, err := ws.LastPostsDir(ctx)
		if err != nil {
			log.Debug().Err(err).Msg("read last posts dir")
		}
		switch {
		case last == "":
		case isDir(last):
			log.Info().Str("dir", last).Msg("using last posts directory")
			dir = last
		default:
			if err := ws.ForgetPostsDir(ctx); err != nil {
				log.Debug().Err(err).Msg("forget posts dir")
			}
		}
	}

	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("resolve posts dir: %w", err)
	}

	if isDir(abs) {
		if err := ws.RememberPostsDir(ctx, abs); err != nil {
			log.Debug().Err(err).Msg("remember posts dir")
		}
	}

	return abs, nil
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
