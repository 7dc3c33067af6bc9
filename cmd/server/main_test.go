package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vyrodovalexey/cars-api/internal/config"
	"github.com/vyrodovalexey/cars-api/internal/model"
	"github.com/vyrodovalexey/cars-api/internal/store"
)

func TestInitLogger(t *testing.T) {
	tests := []struct {
		name  string
		level string
	}{
		{"debug level", "debug"},
		{"info level", "info"},
		{"warn level", "warn"},
		{"error level", "error"},
		{"invalid level defaults to info", "invalid"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Act
			logger, err := initLogger(tt.level)

			// Assert
			if err != nil {
				t.Fatalf("initLogger() error = %v", err)
			}
			if logger == nil {
				t.Error("initLogger() returned nil logger")
			}
		})
	}
}

func TestApplyFlags(t *testing.T) {
	tests := []struct {
		name  string
		args  []string
		check func(*testing.T, *config.Config)
	}{
		{
			name: "no flags keeps config",
			args: nil,
			check: func(t *testing.T, cfg *config.Config) {
				assert.Equal(t, 7070, cfg.ServerPort)
				assert.Equal(t, "env.db", cfg.DBPath)
				assert.Equal(t, config.StoreDriverSQLite, cfg.StoreDriver)
				assert.Equal(t, "warn", cfg.LogLevel)
			},
		},
		{
			name: "flags override config",
			args: []string{"--port", "9000", "--db", "flag.db", "--store", "memory", "--log-level", "debug"},
			check: func(t *testing.T, cfg *config.Config) {
				assert.Equal(t, 9000, cfg.ServerPort)
				assert.Equal(t, "flag.db", cfg.DBPath)
				assert.Equal(t, config.StoreDriverMemory, cfg.StoreDriver)
				assert.Equal(t, "debug", cfg.LogLevel)
			},
		},
		{
			name: "only set flags apply",
			args: []string{"--port", "9001"},
			check: func(t *testing.T, cfg *config.Config) {
				assert.Equal(t, 9001, cfg.ServerPort)
				assert.Equal(t, "env.db", cfg.DBPath)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Arrange
			cmd, opts := newFlagCommand()
			require.NoError(t, cmd.ParseFlags(tt.args))
			cfg := config.Default()
			cfg.ServerPort = 7070
			cfg.DBPath = "env.db"
			cfg.LogLevel = "warn"

			// Act
			applyFlags(cmd, opts, cfg)

			// Assert
			tt.check(t, cfg)
		})
	}
}

func TestLoadConfig_InvalidFlag(t *testing.T) {
	// Arrange
	isolateEnv(t)
	cmd, opts := newFlagCommand()
	require.NoError(t, cmd.ParseFlags([]string{"--store", "postgres"}))

	// Act
	_, err := loadConfig(cmd, opts)

	// Assert
	require.ErrorIs(t, err, config.ErrInvalidStoreDriver)
}

func TestOpenStore(t *testing.T) {
	tests := []struct {
		name           string
		driver         string
		metricsEnabled bool
		wantType       any
	}{
		{"memory", config.StoreDriverMemory, false, &store.MemoryStore{}},
		{"sqlite", config.StoreDriverSQLite, false, &store.SQLiteStore{}},
		{"instrumented", config.StoreDriverSQLite, true, &store.InstrumentedStore{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Arrange
			cfg := config.Default()
			cfg.StoreDriver = tt.driver
			cfg.DBPath = filepath.Join(t.TempDir(), "cars.db")
			cfg.MetricsEnabled = tt.metricsEnabled

			// Act
			carStore, closeStore, err := openStore(cfg)

			// Assert
			require.NoError(t, err)
			require.NotNil(t, closeStore)
			defer func() { assert.NoError(t, closeStore()) }()
			assert.IsType(t, tt.wantType, carStore)

			car, err := carStore.Create(context.Background(), &model.CarInput{Make: "Ford", Model: "Focus", Year: 2015})
			require.NoError(t, err)
			assert.Equal(t, int64(1), car.ID)
		})
	}
}

func TestOpenStore_UnknownDriver(t *testing.T) {
	cfg := config.Default()
	cfg.StoreDriver = "postgres"

	_, _, err := openStore(cfg)

	require.ErrorIs(t, err, config.ErrInvalidStoreDriver)
}

func TestMigrateCommand(t *testing.T) {
	// Arrange
	isolateEnv(t)
	path := filepath.Join(t.TempDir(), "cars.db")
	cmd := newRootCommand()
	cmd.SetArgs([]string{"migrate", "--db", path, "--log-level", "error"})

	// Act
	err := cmd.Execute()

	// Assert
	require.NoError(t, err)
	_, statErr := os.Stat(path)
	require.NoError(t, statErr)

	s, err := store.OpenSQLite(path)
	require.NoError(t, err)
	defer s.Close()
	cars, err := s.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, cars)
}

func TestMigrateCommand_RejectsArgs(t *testing.T) {
	isolateEnv(t)
	cmd := newRootCommand()
	cmd.SetArgs([]string{"migrate", "extra"})

	require.Error(t, cmd.Execute())
}

// isolateEnv keeps the developer's environment and .env file out of a test.
func isolateEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		config.EnvServerPort,
		config.EnvLogLevel,
		config.EnvShutdownTimeout,
		config.EnvMetricsEnabled,
		config.EnvEventsEnabled,
		config.EnvStoreDriver,
		config.EnvDBPath,
	} {
		t.Setenv(key, "")
		require.NoError(t, os.Unsetenv(key))
	}
	t.Setenv(config.EnvEnvFile, filepath.Join(t.TempDir(), "missing.env"))
}

func newFlagCommand() (*cobra.Command, *flagOptions) {
	opts := &flagOptions{}
	cmd := &cobra.Command{Use: "test"}
	opts.bind(cmd)
	return cmd, opts
}
