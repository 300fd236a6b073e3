package app

import (
	"context"
	"fmt"
	"time"

	"github.com/vk/ednavoyage/internal/mockanalysis"
	"github.com/vk/ednavoyage/internal/records"
)

// runIngest records each sample file and prints one line per result.
func (a *App) runIngest(ctx context.Context) error {
	store, err := openStore(ctx, a.config.Storage)
	if err != nil {
		return err
	}
	defer func() {
		if err := store.Close(); err != nil {
			a.logger.Error("Failed to close document store.", "error", err)
		}
	}()

	gen := mockanalysis.NewGenerator(uint64(time.Now().UnixNano()), nil)
	in := mockanalysis.NewIngestor(records.NewAnalysis(store), gen, nil)
	in.Tick = a.ingestTick
	in.Processing = a.processing

	for _, path := range a.appConfig.Files {
		result, err := in.IngestFile(ctx, path)
		if err != nil {
			return err
		}
		if _, err := fmt.Fprintf(a.outW, "%s\t%s\t%.1f%%\t%s\n",
			result.FileName, result.Species, result.Confidence, result.Quality); err != nil {
			return err
		}
	}
	a.logger.Info("Ingest finished.", "files", len(a.appConfig.Files))
	return nil
}
