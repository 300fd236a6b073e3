package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/vk/ednavoyage/internal/config"
	"github.com/vk/ednavoyage/internal/ctxlog"
	"github.com/vk/ednavoyage/internal/mockanalysis"
)

// App encapsulates the application's dependencies, configuration, and lifecycle.
type App struct {
	ctx       context.Context
	outW      io.Writer
	logger    *slog.Logger
	logCloser io.Closer
	appConfig *Config
	config    *config.Model

	screen     tcell.Screen
	ingestTick time.Duration
	processing time.Duration

	httpServer *http.Server
}

// Option customizes an App, mostly for tests.
type Option func(*App)

// WithScreen makes the terminal modes draw on screen instead of the real
// terminal. The app still calls Init and Fini on it.
func WithScreen(screen tcell.Screen) Option {
	return func(a *App) {
		a.screen = screen
	}
}

// WithIngestTimings overrides the simulated upload tick and processing time.
func WithIngestTimings(tick, processing time.Duration) Option {
	return func(a *App) {
		a.ingestTick = tick
		a.processing = processing
	}
}

// NewApp is the constructor for the main application. It returns a fully
// initialized App instance with its own isolated logger. Configuration
// errors are fatal startup errors and panic.
func NewApp(outW io.Writer, appConfig *Config, loader config.Loader, opts ...Option) *App {
	logW, logCloser, err := logWriter(appConfig, outW)
	if err != nil {
		panic(err)
	}
	logger := newLogger(appConfig.LogLevel, appConfig.LogFormat, logW)
	ctx := ctxlog.WithLogger(context.Background(), logger)
	logger.Debug("Logger configured successfully.")

	var configPaths []string
	if appConfig.ConfigPath != "" {
		configPaths = append(configPaths, appConfig.ConfigPath)
	}

	cfgModel, err := loader.Load(ctx, configPaths...)
	if err != nil {
		panic(fmt.Errorf("failed to load configuration: %w", err))
	}
	applyOverrides(cfgModel, appConfig)
	if err := cfgModel.Validate(); err != nil {
		panic(fmt.Errorf("failed to load configuration: %w", err))
	}
	logger.Debug("Configuration loaded.", "mode", appConfig.Mode, "store", cfgModel.Storage.Driver, "listen", cfgModel.Server.Listen)

	a := &App{
		ctx:        ctx,
		outW:       outW,
		logger:     logger,
		logCloser:  logCloser,
		appConfig:  appConfig,
		config:     cfgModel,
		ingestTick: mockanalysis.DefaultTick,
		processing: mockanalysis.DefaultProcessing,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

func applyOverrides(m *config.Model, c *Config) {
	if c.Listen != "" {
		m.Server.Listen = c.Listen
	}
	if c.StoreDriver != "" && c.StoreDriver != m.Storage.Driver {
		m.Storage.Driver = c.StoreDriver
		// a path configured for another driver does not carry over
		m.Storage.Path = ""
	}
	if c.StorePath != "" {
		m.Storage.Path = c.StorePath
	}
}

// Model returns the effective configuration. This is primarily for testing.
func (a *App) Model() *config.Model {
	return a.config
}
