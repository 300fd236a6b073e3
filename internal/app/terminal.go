package app

import (
	"context"
	"fmt"

	"github.com/gdamore/tcell/v2"
	"github.com/vk/ednavoyage/internal/live"
	"github.com/vk/ednavoyage/internal/sequencer"
	"github.com/vk/ednavoyage/internal/terminal"
)

const viewTitle = "eDNA Voyage zone analysis"

// runTUI drives the terminal view from a local sequencer.
func (a *App) runTUI(ctx context.Context) error {
	seq, err := sequencer.New(a.config.SequencerConfig(), sequencer.WithLogger(a.logger))
	if err != nil {
		return err
	}
	defer seq.Cancel()

	seq.Start(ctx)
	return a.runView(ctx, terminal.NewLocal(ctx, seq), viewTitle)
}

// runWatch drives the terminal view from a remote hub.
func (a *App) runWatch(ctx context.Context) error {
	remote, err := live.DialRemote(ctx, live.ClientOptions{URL: a.appConfig.WatchURL})
	if err != nil {
		return err
	}
	defer remote.Close()

	return a.runView(ctx, remote, fmt.Sprintf("%s (%s)", viewTitle, a.appConfig.WatchURL))
}

func (a *App) runView(ctx context.Context, ctrl terminal.Controller, title string) error {
	screen := a.screen
	if screen == nil {
		s, err := tcell.NewScreen()
		if err != nil {
			return fmt.Errorf("failed to create screen: %w", err)
		}
		screen = s
	}
	if err := screen.Init(); err != nil {
		return fmt.Errorf("failed to initialize screen: %w", err)
	}
	defer screen.Fini()

	return terminal.New(screen, ctrl, title).Run(ctx)
}
