package main

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/letmevibethatforyou/hnsearch/internal/config"
	"github.com/letmevibethatforyou/hnsearch/internal/tui"
	"github.com/urfave/cli/v2"
)

func main() {
	if os.Getenv("AWS_LAMBDA_RUNTIME_API") != "" || os.Getenv("AWS_REGION") != "" {
		slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, nil)))
	}

	if err := newApp().Run(os.Args); err != nil {
		slog.Error("Application failed", "error", err)
		os.Exit(1)
	}
}

func newApp() *cli.App {
	defaultConfig, err := config.DefaultPath()
	if err != nil {
		defaultConfig = "hnsearch.toml"
	}

	return &cli.App{
		Name:  "hnsearch",
		Usage: "Search Hacker News stories",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to the TOML config file",
				EnvVars: []string{"HNSEARCH_CONFIG"},
				Value:   defaultConfig,
			},
			&cli.StringFlag{
				Name:    "base-url",
				Usage:   "Base URL of the search API",
				EnvVars: []string{"HNSEARCH_BASE_URL"},
			},
			&cli.StringFlag{
				Name:    "transport",
				Aliases: []string{"t"},
				Usage:   "Search backend: http, algolia or memory",
				EnvVars: []string{"HNSEARCH_TRANSPORT"},
			},
			&cli.StringFlag{
				Name:    "algolia-index",
				Usage:   "Algolia index name for the algolia transport",
				EnvVars: []string{"ALGOLIA_INDEX"},
			},
			&cli.StringFlag{
				Name:    "algolia-secret-arn",
				Usage:   "ARN of AWS Secrets Manager secret containing Algolia credentials",
				EnvVars: []string{"ALGOLIA_SECRET_ARN"},
			},
			&cli.StringFlag{
				Name:    "store",
				Usage:   "Where the search term is kept: memory, sqlite or dynamodb",
				EnvVars: []string{"HNSEARCH_STORE"},
			},
			&cli.StringFlag{
				Name:    "db",
				Usage:   "SQLite database path for the sqlite store",
				EnvVars: []string{"HNSEARCH_DB"},
			},
			&cli.StringFlag{
				Name:    "table",
				Usage:   "DynamoDB table for the dynamodb store",
				EnvVars: []string{"HNSEARCH_TABLE"},
			},
			&cli.DurationFlag{
				Name:  "timeout",
				Usage: "Timeout for each search request",
			},
			&cli.IntFlag{
				Name:  "generate",
				Usage: "Add this many random stories to the memory transport",
			},
			&cli.StringFlag{
				Name:  "log-level",
				Usage: "Log level: debug, info, warn or error",
				Value: "info",
			},
			&cli.StringFlag{
				Name:  "log-file",
				Usage: "Write logs to this file; the interactive UI discards logs otherwise",
			},
		},
		Commands: []*cli.Command{
			queryCommand(),
			seedCommand(),
			{
				Name:   "tui",
				Usage:  "Search interactively (default)",
				Action: tuiAction,
			},
			{
				Name:  "init",
				Usage: "Write a config file with the default settings",
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "force", Usage: "Overwrite an existing file"},
				},
				Action: initAction,
			},
		},
		Action: tuiAction,
	}
}

func tuiAction(c *cli.Context) error {
	ctx := c.Context

	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}

	logger, closeLog, err := newLogger(c, io.Discard)
	if err != nil {
		return err
	}
	defer closeLog()

	session, closeStore, err := newSession(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeStore()

	return tui.Run(ctx, session, cfg.Timeout.Duration)
}

func initAction(c *cli.Context) error {
	path := c.String("config")
	if _, err := os.Stat(path); err == nil && !c.Bool("force") {
		return errors.Newf("%s already exists; use --force to overwrite", path)
	}

	cfg, err := config.GetDefaultConfig()
	if err != nil {
		return err
	}
	if err := cfg.SaveConfig(path); err != nil {
		return errors.Wrap(err, "failed to write config")
	}

	slog.InfoContext(c.Context, "wrote config", "path", path)
	return nil
}

// newLogger builds the session logger. Logs go to --log-file when set and to
// fallback otherwise. The returned func closes the log file.
func newLogger(c *cli.Context, fallback io.Writer) (*slog.Logger, func(), error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(c.String("log-level")))); err != nil {
		return nil, nil, errors.Wrap(err, "invalid log level")
	}
	opts := &slog.HandlerOptions{Level: level}

	path := c.String("log-file")
	if path == "" {
		return slog.New(slog.NewTextHandler(fallback, opts)), func() {}, nil
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return nil, nil, errors.Wrapf(err, "failed to open log file %s", path)
	}
	return slog.New(slog.NewJSONHandler(f, opts)), func() { f.Close() }, nil
}
