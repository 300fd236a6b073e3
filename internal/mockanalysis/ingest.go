package mockanalysis

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/vk/ednavoyage/internal/clock"
	"github.com/vk/ednavoyage/internal/ctxlog"
	"github.com/vk/ednavoyage/internal/records"
)

const (
	// DefaultTick is the interval between upload progress updates.
	DefaultTick = 200 * time.Millisecond
	// DefaultProcessing is how long the simulated analysis takes.
	DefaultProcessing = 5 * time.Second
)

// Ingestor registers sample files and produces their results.
type Ingestor struct {
	Analysis   *records.Analysis
	Generator  *Generator
	Clock      clock.Clock
	Tick       time.Duration
	Processing time.Duration
	NewID      func() string
}

// NewIngestor returns an ingestor with the stock timings.
func NewIngestor(analysis *records.Analysis, gen *Generator, c clock.Clock) *Ingestor {
	if c == nil {
		c = clock.New()
	}
	return &Ingestor{
		Analysis:   analysis,
		Generator:  gen,
		Clock:      c,
		Tick:       DefaultTick,
		Processing: DefaultProcessing,
		NewID:      uuid.NewString,
	}
}

// IngestFile records the file at path as uploaded, runs the upload
// simulation and stores the generated result.
func (in *Ingestor) IngestFile(ctx context.Context, path string) (records.AnalysisResult, error) {
	info, err := os.Stat(path)
	if err != nil {
		return records.AnalysisResult{}, fmt.Errorf("failed to stat sample %s: %w", path, err)
	}
	if info.IsDir() {
		return records.AnalysisResult{}, fmt.Errorf("sample %s is a directory", path)
	}
	name := filepath.Base(path)
	if !Accepts(name) {
		return records.AnalysisResult{}, fmt.Errorf("sample %s: unsupported format, want one of %v", name, AcceptedExtensions)
	}
	return in.Ingest(ctx, records.UploadedFile{
		ID:   in.NewID(),
		Name: name,
		Size: FormatSize(info.Size()),
		Type: MIMEType(name),
	})
}

// Ingest stores f, advances its upload progress to 100, waits for the
// processing delay and stores the generated result.
func (in *Ingestor) Ingest(ctx context.Context, f records.UploadedFile) (records.AnalysisResult, error) {
	logger := ctxlog.FromContext(ctx).With("file", f.ID, "name", f.Name)

	f.UploadProgress = 0
	if err := in.Analysis.AddUploadedFile(ctx, f); err != nil {
		return records.AnalysisResult{}, err
	}
	logger.Info("Sample registered.", "size", f.Size, "type", f.Type)

	err := SimulateUpload(ctx, in.Clock, in.Generator, in.Tick, func(p float64) error {
		_, err := in.Analysis.UpdateUploadedFile(ctx, f.ID, records.FileUpdate{UploadProgress: &p})
		logger.Debug("Upload progress.", "progress", p)
		return err
	})
	if err != nil {
		return records.AnalysisResult{}, err
	}

	if err := sleep(ctx, in.Clock, in.Processing); err != nil {
		return records.AnalysisResult{}, err
	}

	f.UploadProgress = 100
	result := in.Generator.Analyze(f)
	if err := in.Analysis.AddAnalysisResult(ctx, result); err != nil {
		return records.AnalysisResult{}, err
	}
	logger.Info("Analysis complete.", "species", result.Species, "confidence", result.Confidence)
	return result, nil
}

// SimulateUpload reports increasing progress every tick until it reaches
// 100. It stops early when ctx is done or report fails.
func SimulateUpload(ctx context.Context, c clock.Clock, g *Generator, tick time.Duration, report func(float64) error) error {
	progress := 0.0
	for progress < 100 {
		if err := sleep(ctx, c, tick); err != nil {
			return err
		}
		progress = g.NextProgress(progress)
		if err := report(progress); err != nil {
			return err
		}
	}
	return nil
}

func sleep(ctx context.Context, c clock.Clock, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	fired := make(chan struct{})
	t := c.AfterFunc(d, func() { close(fired) })
	select {
	case <-ctx.Done():
		t.Stop()
		return ctx.Err()
	case <-fired:
		return nil
	}
}
