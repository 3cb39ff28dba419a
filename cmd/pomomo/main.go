package main

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	txStdLib "github.com/Thiht/transactor/stdlib"
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/benjamonnguyen/pomomo-focus"
	"github.com/benjamonnguyen/pomomo-focus/sessionlog"
	"github.com/benjamonnguyen/pomomo-focus/sqlite"
)

const (
	RepoURL = "https://github.com/benjamonnguyen/pomomo-focus"
	Version = "0.1.0"
)

type rootOptions struct {
	isProd bool
	dbPath string
}

func main() {
	topCtx, topCtxC := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM, os.Interrupt)
	defer topCtxC()

	if err := newRootCmd().ExecuteContext(topCtx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	rootCmd := &cobra.Command{
		Use:     "pomomo",
		Short:   "Pomodoro timer with local session history",
		Version: Version,
	}
	rootCmd.SilenceUsage = true
	rootCmd.SilenceErrors = true
	rootCmd.PersistentFlags().BoolVarP(&opts.isProd, "prod", "p", false, "load .env instead of .env.dev")
	rootCmd.PersistentFlags().StringVar(&opts.dbPath, "db", "", "database path (overrides POMOMO_DB_PATH)")

	rootCmd.AddCommand(
		newServeCmd(opts),
		newRunCmd(opts),
		newStatsCmd(opts),
		newHistoryCmd(opts),
		newResetCmd(opts),
		newPresetsCmd(opts),
	)
	return rootCmd
}

// app holds the process-wide collaborators shared by commands.
type app struct {
	cfg      pomomo.Config
	db       *sql.DB
	sessions *sessionlog.Log
	presets  []pomomo.Preset
	l        *log.Logger
}

func newApp(ctx context.Context, opts *rootOptions) (*app, error) {
	// config
	cfg, err := pomomo.LoadConfig(opts.isProd)
	if err != nil {
		return nil, err
	}
	if opts.dbPath != "" {
		cfg.DatabaseURL = opts.dbPath
	}

	// logger
	level, err := log.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("invalid POMOMO_LOG_LEVEL: %w", err)
	}
	log.SetLevel(level)
	log.SetReportCaller(level == log.DebugLevel)
	logger := log.Default()

	presets, err := pomomo.LoadPresets(cfg.PresetsPath)
	if err != nil {
		logger.Warn("using default presets", "path", cfg.PresetsPath, "err", err)
	}

	// db
	logger.Debug("opening db", "path", cfg.DatabaseURL)
	db, err := sqlite.Open(cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}
	if err := sqlite.RunMigrations(db); err != nil {
		_ = db.Close()
		return nil, err
	}

	tx, dbGetter := txStdLib.NewTransactor(
		db,
		txStdLib.NestedTransactionsSavepoints,
	)
	store := sqlite.NewDocumentRepo(dbGetter, logger.WithPrefix("sqlite"))
	sessions := sessionlog.New(ctx, store,
		sessionlog.WithTransactor(tx),
		sessionlog.WithLogger(logger.WithPrefix("sessionlog")),
	)

	return &app{
		cfg:      cfg,
		db:       db,
		sessions: sessions,
		presets:  presets,
		l:        logger,
	}, nil
}

func (a *app) Close() {
	if err := a.db.Close(); err != nil {
		a.l.Error("failed to close db", "err", err)
	}
}
