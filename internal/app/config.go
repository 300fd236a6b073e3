package app

import (
	"errors"
	"fmt"
	"slices"
)

// Mode selects what Run does.
type Mode string

const (
	ModeRender Mode = "render"
	ModeServe  Mode = "serve"
	ModeTUI    Mode = "tui"
	ModeWatch  Mode = "watch"
	ModeIngest Mode = "ingest"
	ModeConfig Mode = "config"
)

// Modes lists every run mode.
func Modes() []Mode {
	return []Mode{ModeRender, ModeServe, ModeTUI, ModeWatch, ModeIngest, ModeConfig}
}

// DefaultWatchURL is the live feed watched when no URL is given.
const DefaultWatchURL = "http://localhost:8080/socket.io/"

// Config holds all the necessary configuration for an App instance to run.
type Config struct {
	ConfigPath string // hcl file or directory, empty for defaults
	Mode       Mode

	// Overrides applied on top of the loaded configuration when set.
	Listen      string
	StoreDriver string
	StorePath   string

	WatchURL string
	Files    []string // ingest inputs

	LogFormat       string
	LogLevel        string
	LogFile         string
	HealthcheckPort int
}

func NewConfig(cfg Config) (*Config, error) {
	if cfg.Mode == "" {
		cfg.Mode = ModeRender
	}
	if !slices.Contains(Modes(), cfg.Mode) {
		return nil, fmt.Errorf("unknown mode %q, want one of %v", cfg.Mode, Modes())
	}
	if cfg.Mode == ModeIngest && len(cfg.Files) == 0 {
		return nil, errors.New("ingest mode needs at least one sample file")
	}
	if cfg.Mode != ModeIngest && len(cfg.Files) > 0 {
		return nil, fmt.Errorf("unexpected arguments for %s mode: %v", cfg.Mode, cfg.Files)
	}
	if cfg.Mode == ModeWatch && cfg.WatchURL == "" {
		cfg.WatchURL = DefaultWatchURL
	}
	if cfg.HealthcheckPort < 0 {
		return nil, errors.New("healthcheck port cannot be negative")
	}
	return &cfg, nil
}
