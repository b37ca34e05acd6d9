package main

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/thomaskoefod/feedmee/internal/config"
	"github.com/thomaskoefod/feedmee/internal/database"
	"github.com/thomaskoefod/feedmee/internal/feed"
	"github.com/thomaskoefod/feedmee/internal/logging"
)

// app holds what every command needs once the config is loaded.
type app struct {
	cfgFile string
	verbose bool

	cfg    *config.Config
	logger *slog.Logger
	logs   io.Closer
	db     *database.DB
	engine *feed.Engine
}

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:   "feedmee",
		Short: "A feed reader for the terminal",
		Long: `feedmee subscribes to RSS, Atom and JSON feeds, and to plain websites that
have no feed at all, and keeps their articles in a local database.

Example usage:
  feedmee                              # Open the reader
  feedmee add https://go.dev/blog      # Subscribe; the feed is discovered
  feedmee refresh-all                  # Fetch new articles for every feed
  feedmee content https://go.dev/blog/iter --markdown`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.init(cmd.Name() != "tui" && cmd.Name() != "feedmee")
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return a.close()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runTUI(cmd)
		},
	}

	root.PersistentFlags().StringVar(&a.cfgFile, "config", "", "config file (default is ~/.config/feedmee/config.yaml)")
	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "debug logging")

	root.AddCommand(
		newTUICmd(a),
		newAddCmd(a),
		newRefreshCmd(a),
		newRefreshAllCmd(a),
		newContentCmd(a),
		newFeedsCmd(a),
		newImportOPMLCmd(a),
		newExportOPMLCmd(a),
	)

	return root
}

// init loads the config, opens the log and the database and builds the
// engine. console controls whether log records also go to stderr.
func (a *app) init(console bool) error {
	path := a.cfgFile
	if path == "" {
		path = config.DefaultConfigPath()
	}

	cfg, err := config.LoadOrCreate(path)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	a.cfg = cfg

	level := cfg.Log.Level
	if a.verbose {
		level = "debug"
	}
	logger, logs, err := logging.New(level, cfg.Log.File, console)
	if err != nil {
		return fmt.Errorf("setting up logging: %w", err)
	}
	a.logger = logger
	a.logs = logs

	db, err := database.New(cfg.Database.Path)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	a.db = db

	timeout, err := cfg.Fetch.GetTimeout()
	if err != nil {
		return fmt.Errorf("parsing fetch timeout: %w", err)
	}
	fetcher := feed.NewHTTPFetcher(feed.FetcherConfig{
		Timeout:      timeout,
		UserAgent:    cfg.Fetch.UserAgent,
		MaxBodyBytes: cfg.Fetch.MaxBodyBytes,
	})
	a.engine = feed.NewEngine(db, fetcher, logger)

	logger.Debug("configuration loaded",
		"config", path,
		"database", cfg.Database.Path,
		"timeout", timeout)

	return nil
}

func (a *app) close() error {
	var dbErr error
	if a.db != nil {
		dbErr = a.db.Close()
		a.db = nil
	}
	if a.logs != nil {
		_ = a.logs.Close()
		a.logs = nil
	}
	if dbErr != nil {
		return fmt.Errorf("closing database: %w", dbErr)
	}
	return nil
}
