package records

import (
	"errors"

	"github.com/google/uuid"
	"github.com/vk/ednavoyage/internal/clock"
)

// Storage keys. They match the keys the browser build wrote to local storage
// so exported data stays interchangeable.
const (
	KeySessionUser     = "e-dna-user"
	KeySessionAuth     = "e-dna-auth"
	KeyUsers           = "e-dna-users"
	KeyUploadedFiles   = "e-dna-uploaded-files"
	KeyAnalysisResults = "e-dna-analysis-results"
	KeyProjects        = "e-dna-projects"
	KeyRemovedProjects = "e-dna-projects-removed"
)

var (
	ErrNotFound         = errors.New("record not found")
	ErrMissingField     = errors.New("required field missing")
	ErrInvalidValue     = errors.New("invalid field value")
	ErrEmailTaken       = errors.New("email already registered")
	ErrUnknownUser      = errors.New("no user with that email")
	ErrNotAuthenticated = errors.New("not signed in")
)

// Option customizes a record service.
type Option func(*deps)

type deps struct {
	clock clock.Clock
	newID func() string
}

func newDeps(opts []Option) deps {
	d := deps{clock: clock.New(), newID: uuid.NewString}
	for _, opt := range opts {
		opt(&d)
	}
	return d
}

// WithClock sets the clock used for timestamps.
func WithClock(c clock.Clock) Option {
	return func(d *deps) { d.clock = c }
}

// WithIDGenerator sets the function producing the unique part of new ids.
func WithIDGenerator(fn func() string) Option {
	return func(d *deps) { d.newID = fn }
}
