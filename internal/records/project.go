package records

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/vk/ednavoyage/internal/ctxlog"
	"github.com/vk/ednavoyage/internal/docstore"
)

// ProjectStatus is the lifecycle state of a project.
type ProjectStatus string

const (
	ProjectStatusActive    ProjectStatus = "active"
	ProjectStatusCompleted ProjectStatus = "completed"
	ProjectStatusDraft     ProjectStatus = "draft"
)

// Valid reports whether s is a defined status.
func (s ProjectStatus) Valid() bool {
	return s == ProjectStatusActive || s == ProjectStatusCompleted || s == ProjectStatusDraft
}

// ProjectDraft holds the caller-supplied fields of a project.
type ProjectDraft struct {
	Name               string        `json:"name"`
	Description        string        `json:"description"`
	Location           string        `json:"location"`
	StartDate          string        `json:"startDate"`
	EndDate            string        `json:"endDate"`
	Status             ProjectStatus `json:"status"`
	Collaborators      int           `json:"collaborators"`
	Samples            int           `json:"samples"`
	NovelSpecies       int           `json:"novelSpecies"`
	Image              string        `json:"image"`
	Tags               []string      `json:"tags"`
	RelatedFiles       []string      `json:"relatedFiles"`
	CollaboratorEmails []string      `json:"collaboratorEmails"`
}

// Project is a research project.
type Project struct {
	ID string `json:"id"`
	ProjectDraft
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// ProjectUpdate is a partial project; nil fields are left unchanged.
type ProjectUpdate struct {
	Name               *string        `json:"name,omitempty"`
	Description        *string        `json:"description,omitempty"`
	Location           *string        `json:"location,omitempty"`
	StartDate          *string        `json:"startDate,omitempty"`
	EndDate            *string        `json:"endDate,omitempty"`
	Status             *ProjectStatus `json:"status,omitempty"`
	Collaborators      *int           `json:"collaborators,omitempty"`
	Samples            *int           `json:"samples,omitempty"`
	NovelSpecies       *int           `json:"novelSpecies,omitempty"`
	Image              *string        `json:"image,omitempty"`
	Tags               []string       `json:"tags,omitempty"`
	RelatedFiles       []string       `json:"relatedFiles,omitempty"`
	CollaboratorEmails []string       `json:"collaboratorEmails,omitempty"`
}

func (u ProjectUpdate) validate() error {
	if u.Name != nil && strings.TrimSpace(*u.Name) == "" {
		return fmt.Errorf("%w: name", ErrMissingField)
	}
	if u.Status != nil && !u.Status.Valid() {
		return fmt.Errorf("%w: status %q", ErrInvalidValue, *u.Status)
	}
	return nil
}

func (u ProjectUpdate) apply(d *ProjectDraft) {
	setStr := func(dst, src *string) {
		if src != nil {
			*dst = *src
		}
	}
	setInt := func(dst, src *int) {
		if src != nil {
			*dst = *src
		}
	}
	setStr(&d.Name, u.Name)
	setStr(&d.Description, u.Description)
	setStr(&d.Location, u.Location)
	setStr(&d.StartDate, u.StartDate)
	setStr(&d.EndDate, u.EndDate)
	setStr(&d.Image, u.Image)
	setInt(&d.Collaborators, u.Collaborators)
	setInt(&d.Samples, u.Samples)
	setInt(&d.NovelSpecies, u.NovelSpecies)
	if u.Status != nil {
		d.Status = *u.Status
	}
	if u.Tags != nil {
		d.Tags = slices.Clone(u.Tags)
	}
	if u.RelatedFiles != nil {
		d.RelatedFiles = slices.Clone(u.RelatedFiles)
	}
	if u.CollaboratorEmails != nil {
		d.CollaboratorEmails = slices.Clone(u.CollaboratorEmails)
	}
}

// Projects manages the project list. Seed projects are merged after the
// stored ones unless their id is already stored or was deleted.
type Projects struct {
	deps
	mu      sync.Mutex
	seeds   []Project
	saved   *docstore.Document[[]Project]
	removed *docstore.Document[[]string]
}

// NewProjects returns a project service over store using the bundled seed
// projects. Pass nil seeds to use SeedProjects.
func NewProjects(store docstore.Store, seeds []Project, opts ...Option) *Projects {
	if seeds == nil {
		seeds = SeedProjects()
	}
	return &Projects{
		deps:    newDeps(opts),
		seeds:   seeds,
		saved:   docstore.NewDocument[[]Project](store, KeyProjects, nil),
		removed: docstore.NewDocument[[]string](store, KeyRemovedProjects, nil),
	}
}

// List returns every project, newest additions first.
func (p *Projects) List(ctx context.Context) []Project {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.listLocked(ctx)
}

func (p *Projects) listLocked(ctx context.Context) []Project {
	saved, _ := p.saved.Load(ctx)
	removed, _ := p.removed.Load(ctx)

	out := slices.Clone(saved)
	for _, seed := range p.seeds {
		if slices.ContainsFunc(saved, func(s Project) bool { return s.ID == seed.ID }) {
			continue
		}
		if slices.Contains(removed, seed.ID) {
			continue
		}
		out = append(out, seed)
	}
	return out
}

// Get returns the project with id.
func (p *Projects) Get(ctx context.Context, id string) (Project, bool) {
	for _, pr := range p.List(ctx) {
		if pr.ID == id {
			return pr, true
		}
	}
	return Project{}, false
}

// Add creates a project from draft and places it first. An empty status
// becomes draft.
func (p *Projects) Add(ctx context.Context, draft ProjectDraft) (Project, error) {
	draft.Name = strings.TrimSpace(draft.Name)
	if draft.Name == "" {
		return Project{}, fmt.Errorf("%w: name", ErrMissingField)
	}
	if draft.Status == "" {
		draft.Status = ProjectStatusDraft
	}
	if !draft.Status.Valid() {
		return Project{}, fmt.Errorf("%w: status %q", ErrInvalidValue, draft.Status)
	}
	draft.Tags = nonNil(draft.Tags)
	draft.RelatedFiles = nonNil(draft.RelatedFiles)
	draft.CollaboratorEmails = nonNil(draft.CollaboratorEmails)

	p.mu.Lock()
	defer p.mu.Unlock()

	now := p.clock.Now().UTC()
	project := Project{ID: "proj-" + p.newID(), ProjectDraft: draft, CreatedAt: now, UpdatedAt: now}
	list := append([]Project{project}, p.listLocked(ctx)...)
	if err := p.saved.Save(ctx, list); err != nil {
		return Project{}, err
	}
	ctxlog.FromContext(ctx).Info("Project created.", "project", project.ID)
	return project, nil
}

// Update applies update to the project with id and refreshes its update time.
func (p *Projects) Update(ctx context.Context, id string, update ProjectUpdate) (Project, error) {
	if err := update.validate(); err != nil {
		return Project{}, err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	list := p.listLocked(ctx)
	i := slices.IndexFunc(list, func(pr Project) bool { return pr.ID == id })
	if i < 0 {
		return Project{}, ErrNotFound
	}
	update.apply(&list[i].ProjectDraft)
	list[i].UpdatedAt = p.clock.Now().UTC()
	if err := p.saved.Save(ctx, list); err != nil {
		return Project{}, err
	}
	return list[i], nil
}

// Delete removes the project with id. A deleted seed project stays deleted.
func (p *Projects) Delete(ctx context.Context, id string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	list := p.listLocked(ctx)
	kept := slices.DeleteFunc(slices.Clone(list), func(pr Project) bool { return pr.ID == id })
	if len(kept) == len(list) {
		return ErrNotFound
	}
	if err := p.saved.Save(ctx, kept); err != nil {
		return err
	}

	if slices.ContainsFunc(p.seeds, func(s Project) bool { return s.ID == id }) {
		removed, _ := p.removed.Load(ctx)
		if err := p.removed.Save(ctx, append(removed, id)); err != nil {
			return err
		}
	}
	ctxlog.FromContext(ctx).Info("Project deleted.", "project", id)
	return nil
}
