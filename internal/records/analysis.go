package records

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/vk/ednavoyage/internal/docstore"
)

// GeoTag is where and when a sample was taken.
type GeoTag struct {
	Latitude  float64   `json:"latitude"`
	Longitude float64   `json:"longitude"`
	Address   string    `json:"address,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// UploadedFile is a sample file registered for analysis.
type UploadedFile struct {
	ID             string  `json:"id"`
	Name           string  `json:"name"`
	Size           string  `json:"size"`
	Type           string  `json:"type"`
	UploadProgress float64 `json:"uploadProgress"`
	Location       *GeoTag `json:"location,omitempty"`
}

// FileUpdate is a partial file record; nil fields are left unchanged.
type FileUpdate struct {
	Name           *string  `json:"name,omitempty"`
	UploadProgress *float64 `json:"uploadProgress,omitempty"`
	Location       *GeoTag  `json:"location,omitempty"`
}

// Quality grades a sequencing result.
type Quality string

const (
	QualityHigh   Quality = "High"
	QualityMedium Quality = "Medium"
	QualityLow    Quality = "Low"
)

// Valid reports whether q is a defined grade.
func (q Quality) Valid() bool {
	return q == QualityHigh || q == QualityMedium || q == QualityLow
}

// ResultStatus is the processing state of a result.
type ResultStatus string

const (
	StatusProcessing ResultStatus = "Processing"
	StatusComplete   ResultStatus = "Complete"
	StatusError      ResultStatus = "Error"
)

// Valid reports whether s is a defined status.
func (s ResultStatus) Valid() bool {
	return s == StatusProcessing || s == StatusComplete || s == StatusError
}

// AnalysisResult is the outcome of analysing one uploaded file.
type AnalysisResult struct {
	ID             string       `json:"id"`
	FileName       string       `json:"fileName"`
	Species        string       `json:"species"`
	Confidence     float64      `json:"confidence"`
	Sequence       string       `json:"sequence"`
	Quality        Quality      `json:"quality"`
	Status         ResultStatus `json:"status"`
	Timestamp      time.Time    `json:"timestamp"`
	TotalSequences int          `json:"totalSequences"`
	KnownSpecies   int          `json:"knownSpecies"`
	NovelSpecies   int          `json:"novelSpecies"`
	Location       string       `json:"location,omitempty"`
	Date           string       `json:"date,omitempty"`
}

// ResultUpdate is a partial result record; nil fields are left unchanged.
type ResultUpdate struct {
	Species    *string       `json:"species,omitempty"`
	Confidence *float64      `json:"confidence,omitempty"`
	Quality    *Quality      `json:"quality,omitempty"`
	Status     *ResultStatus `json:"status,omitempty"`
	Location   *string       `json:"location,omitempty"`
}

// ResultID is the id of the result derived from the file with fileID.
func ResultID(fileID string) string {
	return "result-" + fileID
}

// Analysis manages uploaded files and their analysis results.
type Analysis struct {
	mu      sync.Mutex
	files   *docstore.Document[[]UploadedFile]
	results *docstore.Document[[]AnalysisResult]
}

// NewAnalysis returns an analysis record service over store.
func NewAnalysis(store docstore.Store) *Analysis {
	return &Analysis{
		files:   docstore.NewDocument[[]UploadedFile](store, KeyUploadedFiles, nil),
		results: docstore.NewDocument[[]AnalysisResult](store, KeyAnalysisResults, nil),
	}
}

// Files returns the uploaded files, oldest first.
func (a *Analysis) Files(ctx context.Context) []UploadedFile {
	a.mu.Lock()
	defer a.mu.Unlock()
	files, _ := a.files.Load(ctx)
	return files
}

// Results returns the analysis results, oldest first.
func (a *Analysis) Results(ctx context.Context) []AnalysisResult {
	a.mu.Lock()
	defer a.mu.Unlock()
	results, _ := a.results.Load(ctx)
	return results
}

// Result returns the result with id.
func (a *Analysis) Result(ctx context.Context, id string) (AnalysisResult, bool) {
	for _, r := range a.Results(ctx) {
		if r.ID == id {
			return r, true
		}
	}
	return AnalysisResult{}, false
}

// AddUploadedFile appends f.
func (a *Analysis) AddUploadedFile(ctx context.Context, f UploadedFile) error {
	if f.ID == "" {
		return fmt.Errorf("%w: id", ErrMissingField)
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	files, _ := a.files.Load(ctx)
	return a.files.Save(ctx, append(files, f))
}

// UpdateUploadedFile applies update to the file with id.
func (a *Analysis) UpdateUploadedFile(ctx context.Context, id string, update FileUpdate) (UploadedFile, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	files, _ := a.files.Load(ctx)
	i := slices.IndexFunc(files, func(f UploadedFile) bool { return f.ID == id })
	if i < 0 {
		return UploadedFile{}, ErrNotFound
	}
	f := &files[i]
	if update.Name != nil {
		f.Name = *update.Name
	}
	if update.UploadProgress != nil {
		f.UploadProgress = *update.UploadProgress
	}
	if update.Location != nil {
		loc := *update.Location
		f.Location = &loc
	}
	if err := a.files.Save(ctx, files); err != nil {
		return UploadedFile{}, err
	}
	return *f, nil
}

// RemoveUploadedFile deletes the file with id together with its derived
// result. The result is dropped even when the file itself is absent.
func (a *Analysis) RemoveUploadedFile(ctx context.Context, id string) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	files, _ := a.files.Load(ctx)
	kept := slices.DeleteFunc(slices.Clone(files), func(f UploadedFile) bool { return f.ID == id })

	results, _ := a.results.Load(ctx)
	resultID := ResultID(id)
	keptResults := slices.DeleteFunc(slices.Clone(results), func(r AnalysisResult) bool { return r.ID == resultID })
	if len(keptResults) != len(results) {
		if err := a.results.Save(ctx, keptResults); err != nil {
			return err
		}
	}

	if len(kept) == len(files) {
		return ErrNotFound
	}
	return a.files.Save(ctx, kept)
}

// AddAnalysisResult appends r.
func (a *Analysis) AddAnalysisResult(ctx context.Context, r AnalysisResult) error {
	if r.ID == "" {
		return fmt.Errorf("%w: id", ErrMissingField)
	}
	if r.Quality != "" && !r.Quality.Valid() {
		return fmt.Errorf("%w: quality %q", ErrInvalidValue, r.Quality)
	}
	if r.Status != "" && !r.Status.Valid() {
		return fmt.Errorf("%w: status %q", ErrInvalidValue, r.Status)
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	results, _ := a.results.Load(ctx)
	return a.results.Save(ctx, append(results, r))
}

// UpdateAnalysisResult applies update to the result with id.
func (a *Analysis) UpdateAnalysisResult(ctx context.Context, id string, update ResultUpdate) (AnalysisResult, error) {
	if update.Quality != nil && !update.Quality.Valid() {
		return AnalysisResult{}, fmt.Errorf("%w: quality %q", ErrInvalidValue, *update.Quality)
	}
	if update.Status != nil && !update.Status.Valid() {
		return AnalysisResult{}, fmt.Errorf("%w: status %q", ErrInvalidValue, *update.Status)
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	results, _ := a.results.Load(ctx)
	i := slices.IndexFunc(results, func(r AnalysisResult) bool { return r.ID == id })
	if i < 0 {
		return AnalysisResult{}, ErrNotFound
	}
	r := &results[i]
	if update.Species != nil {
		r.Species = *update.Species
	}
	if update.Confidence != nil {
		r.Confidence = *update.Confidence
	}
	if update.Quality != nil {
		r.Quality = *update.Quality
	}
	if update.Status != nil {
		r.Status = *update.Status
	}
	if update.Location != nil {
		r.Location = *update.Location
	}
	if err := a.results.Save(ctx, results); err != nil {
		return AnalysisResult{}, err
	}
	return *r, nil
}

// ClearAll empties both collections.
func (a *Analysis) ClearAll(ctx context.Context) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if err := a.files.Save(ctx, []UploadedFile{}); err != nil {
		return err
	}
	return a.results.Save(ctx, []AnalysisResult{})
}
