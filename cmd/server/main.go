// Package main is the entry point for the cars API server.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/vyrodovalexey/cars-api/internal/config"
	"github.com/vyrodovalexey/cars-api/internal/server"
	"github.com/vyrodovalexey/cars-api/internal/store"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// flagOptions holds command-line overrides for environment configuration.
type flagOptions struct {
	port        int
	dbPath      string
	storeDriver string
	logLevel    string
}

// newRootCommand creates the root command. Without a subcommand it serves.
func newRootCommand() *cobra.Command {
	opts := &flagOptions{}

	cmd := &cobra.Command{
		Use:           "cars-api",
		Short:         "Cars REST API server",
		Long:          "A CRUD HTTP service for car records backed by SQLite.",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd, opts)
		},
	}

	opts.bind(cmd)

	cmd.AddCommand(newServeCommand(opts))
	cmd.AddCommand(newMigrateCommand(opts))

	return cmd
}

// bind registers the override flags as persistent flags of cmd.
func (o *flagOptions) bind(cmd *cobra.Command) {
	flags := cmd.PersistentFlags()
	flags.IntVar(&o.port, "port", config.DefaultServerPort, "HTTP listen port")
	flags.StringVar(&o.dbPath, "db", config.DefaultDBPath, "path to SQLite database")
	flags.StringVar(&o.storeDriver, "store", config.DefaultStoreDriver, "store driver (sqlite|memory)")
	flags.StringVar(&o.logLevel, "log-level", config.DefaultLogLevel, "log level (debug|info|warn|error)")
}

func newServeCommand(opts *flagOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd, opts)
		},
	}
}

func newMigrateCommand(opts *flagOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create the car table if it does not exist",
		Long: `Open the SQLite database, creating the file if needed, and apply the schema.

Example:
  cars-api migrate --db ./cars.db`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runMigrate(cmd, opts)
		},
	}
}

// loadConfig reads environment configuration and applies explicitly set flags.
func loadConfig(cmd *cobra.Command, opts *flagOptions) (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	applyFlags(cmd, opts, cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// applyFlags copies flags the user set on the command line into cfg.
func applyFlags(cmd *cobra.Command, opts *flagOptions, cfg *config.Config) {
	flags := cmd.Flags()

	if flags.Changed("port") {
		cfg.ServerPort = opts.port
	}
	if flags.Changed("db") {
		cfg.DBPath = opts.dbPath
	}
	if flags.Changed("store") {
		cfg.StoreDriver = opts.storeDriver
	}
	if flags.Changed("log-level") {
		cfg.LogLevel = opts.logLevel
	}
}

func runServe(cmd *cobra.Command, opts *flagOptions) error {
	cfg, err := loadConfig(cmd, opts)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	logger, err := initLogger(cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer func() {
		_ = logger.Sync()
	}()

	logger.Info("configuration loaded",
		zap.Int("server_port", cfg.ServerPort),
		zap.String("log_level", cfg.LogLevel),
		zap.Duration("shutdown_timeout", cfg.ShutdownTimeout),
		zap.Bool("metrics_enabled", cfg.MetricsEnabled),
		zap.Bool("events_enabled", cfg.EventsEnabled),
		zap.String("store_driver", cfg.StoreDriver),
		zap.String("db_path", cfg.DBPath),
	)

	carStore, closeStore, err := openStore(cfg)
	if err != nil {
		logger.Error("failed to open store", zap.Error(err))
		return err
	}
	defer func() {
		if err := closeStore(); err != nil {
			logger.Error("failed to close store", zap.Error(err))
		}
	}()

	srv := server.New(cfg, logger, carStore)

	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- srv.Start()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(shutdown)

	select {
	case err := <-serverErrors:
		logger.Error("server error", zap.Error(err))
		return err
	case sig := <-shutdown:
		logger.Info("shutdown signal received", zap.String("signal", sig.String()))

		ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			logger.Error("graceful shutdown failed", zap.Error(err))
			return err
		}
	}

	logger.Info("server stopped")
	return nil
}

func runMigrate(cmd *cobra.Command, opts *flagOptions) error {
	cfg, err := loadConfig(cmd, opts)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	logger, err := initLogger(cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer func() {
		_ = logger.Sync()
	}()

	s, err := store.OpenSQLite(cfg.DBPath)
	if err != nil {
		return err
	}
	if err := s.Close(); err != nil {
		return fmt.Errorf("closing database: %w", err)
	}

	logger.Info("schema applied", zap.String("db_path", cfg.DBPath))
	return nil
}

// openStore opens the configured car store. The returned function releases
// it and is never nil on success.
func openStore(cfg *config.Config) (store.Store, func() error, error) {
	var (
		carStore store.Store
		closer   = func() error { return nil }
	)

	switch cfg.StoreDriver {
	case config.StoreDriverSQLite:
		s, err := store.OpenSQLite(cfg.DBPath)
		if err != nil {
			return nil, nil, err
		}
		carStore = s
		closer = s.Close
	case config.StoreDriverMemory:
		carStore = store.NewMemoryStore()
	default:
		return nil, nil, fmt.Errorf("%w: %s", config.ErrInvalidStoreDriver, cfg.StoreDriver)
	}

	if cfg.MetricsEnabled {
		carStore = store.NewInstrumentedStore(carStore)
	}

	return carStore, closer, nil
}

// initLogger initializes a zap logger with the specified log level.
func initLogger(level string) (*zap.Logger, error) {
	var zapLevel zapcore.Level
	if err := zapLevel.UnmarshalText([]byte(level)); err != nil {
		zapLevel = zapcore.InfoLevel
	}

	zapConfig := zap.Config{
		Level:       zap.NewAtomicLevelAt(zapLevel),
		Development: false,
		Sampling: &zap.SamplingConfig{
			Initial:    100,
			Thereafter: 100,
		},
		Encoding: "json",
		EncoderConfig: zapcore.EncoderConfig{
			TimeKey:        "timestamp",
			LevelKey:       "level",
			NameKey:        "logger",
			CallerKey:      "caller",
			FunctionKey:    zapcore.OmitKey,
			MessageKey:     "message",
			StacktraceKey:  "stacktrace",
			LineEnding:     zapcore.DefaultLineEnding,
			EncodeLevel:    zapcore.LowercaseLevelEncoder,
			EncodeTime:     zapcore.ISO8601TimeEncoder,
			EncodeDuration: zapcore.SecondsDurationEncoder,
			EncodeCaller:   zapcore.ShortCallerEncoder,
		},
		OutputPaths:      []string{"stdout"},
		ErrorOutputPaths: []string{"stderr"},
	}

	return zapConfig.Build()
}
