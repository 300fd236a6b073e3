package app

import (
	"context"
	"fmt"

	"github.com/vk/ednavoyage/internal/ctxlog"
	"github.com/vk/ednavoyage/internal/hcl"
)

// Run executes the selected mode until it finishes or ctx is done.
func (a *App) Run(ctx context.Context) error {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	a.ctx = ctx
	a.logger.Debug("App.Run method started.", "mode", a.appConfig.Mode)
	if a.logCloser != nil {
		defer a.logCloser.Close()
	}

	if a.appConfig.HealthcheckPort > 0 {
		a.healthCheckServer()
		defer a.closeHealthCheckServer()
	}

	var err error
	switch a.appConfig.Mode {
	case ModeRender:
		err = a.runRender(ctx)
	case ModeServe:
		err = a.runServe(ctx)
	case ModeTUI:
		err = a.runTUI(ctx)
	case ModeWatch:
		err = a.runWatch(ctx)
	case ModeIngest:
		err = a.runIngest(ctx)
	case ModeConfig:
		err = a.printConfig()
	default:
		err = fmt.Errorf("unknown mode %q", a.appConfig.Mode)
	}
	if err != nil {
		return fmt.Errorf("%s failed: %w", a.appConfig.Mode, err)
	}

	a.logger.Debug("App.Run method finished.")
	return nil
}

// printConfig writes the effective configuration as HCL.
func (a *App) printConfig() error {
	src, err := hcl.Encode(a.config)
	if err != nil {
		return err
	}
	_, err = a.outW.Write(src)
	return err
}
