package records

import (
	_ "embed"
	"fmt"
	"time"

	"gopkg.in/yaml.v3"
)

//go:embed seed/projects.yaml
var seedProjectsYAML []byte

type seedProject struct {
	ID            string        `yaml:"id"`
	Name          string        `yaml:"name"`
	Description   string        `yaml:"description"`
	Location      string        `yaml:"location"`
	StartDate     string        `yaml:"startDate"`
	EndDate       string        `yaml:"endDate"`
	Status        ProjectStatus `yaml:"status"`
	Collaborators int           `yaml:"collaborators"`
	Samples       int           `yaml:"samples"`
	NovelSpecies  int           `yaml:"novelSpecies"`
	Image         string        `yaml:"image"`
	Tags          []string      `yaml:"tags"`
	CreatedAt     string        `yaml:"createdAt"`
	UpdatedAt     string        `yaml:"updatedAt"`
}

// ParseSeedProjects decodes a YAML list of projects.
func ParseSeedProjects(data []byte) ([]Project, error) {
	var raw []seedProject
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to decode seed projects: %w", err)
	}

	projects := make([]Project, 0, len(raw))
	for i, s := range raw {
		if s.ID == "" || s.Name == "" {
			return nil, fmt.Errorf("seed project %d: %w: id and name", i, ErrMissingField)
		}
		if !s.Status.Valid() {
			return nil, fmt.Errorf("seed project %q: %w: status %q", s.ID, ErrInvalidValue, s.Status)
		}
		created, err := time.Parse(time.RFC3339, s.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("seed project %q: createdAt: %w", s.ID, err)
		}
		updated, err := time.Parse(time.RFC3339, s.UpdatedAt)
		if err != nil {
			return nil, fmt.Errorf("seed project %q: updatedAt: %w", s.ID, err)
		}
		projects = append(projects, Project{
			ID: s.ID,
			ProjectDraft: ProjectDraft{
				Name:               s.Name,
				Description:        s.Description,
				Location:           s.Location,
				StartDate:          s.StartDate,
				EndDate:            s.EndDate,
				Status:             s.Status,
				Collaborators:      s.Collaborators,
				Samples:            s.Samples,
				NovelSpecies:       s.NovelSpecies,
				Image:              s.Image,
				Tags:               nonNil(s.Tags),
				RelatedFiles:       []string{},
				CollaboratorEmails: []string{},
			},
			CreatedAt: created,
			UpdatedAt: updated,
		})
	}
	return projects, nil
}

// SeedProjects returns the sample projects bundled with the binary.
func SeedProjects() []Project {
	projects, err := ParseSeedProjects(seedProjectsYAML)
	if err != nil {
		panic(err)
	}
	return projects
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
