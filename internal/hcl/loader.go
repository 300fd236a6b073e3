package hcl

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/vk/ednavoyage/internal/config"
	"github.com/vk/ednavoyage/internal/ctxlog"
)

// Loader is the HCL-specific implementation of the config.Loader interface.
type Loader struct {
	environ func() []string
}

var _ config.Loader = (*Loader)(nil)

// NewLoader creates a new HCL configuration loader reading the process
// environment.
func NewLoader() *Loader {
	return &Loader{environ: processEnviron}
}

// NewLoaderWithEnv creates a loader whose `env` object holds exactly environ.
func NewLoaderWithEnv(environ []string) *Loader {
	return &Loader{environ: func() []string { return environ }}
}

// Load parses every .hcl file found under paths, in order, and merges the
// decoded blocks over config.Default. Paths that do not exist are skipped.
func (l *Loader) Load(ctx context.Context, paths ...string) (*config.Model, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("HCL loader started.", "path_count", len(paths))

	model := config.Default()

	hclFiles, err := findAllHCLFiles(paths)
	if err != nil {
		return nil, err
	}
	logger.Debug("Discovered HCL files.", "count", len(hclFiles))

	parser := hclparse.NewParser()
	evalCtx := newEvalContext(l.environ())

	for _, file := range hclFiles {
		hclFile, diags := parser.ParseHCLFile(file)
		if diags.HasErrors() {
			return nil, fmt.Errorf("failed to parse HCL file %s: %w", file, diags)
		}
		if err := decodeInto(model, hclFile.Body, evalCtx); err != nil {
			return nil, fmt.Errorf("failed to decode HCL file %s: %w", file, err)
		}
	}

	if err := model.Validate(); err != nil {
		return nil, err
	}
	logger.Debug("HCL loading complete.",
		"grid_size", model.Grid.Size,
		"level", model.Sequence.Level,
		"levels", model.Levels(),
		"storage", model.Storage.Driver,
		"listen", model.Server.Listen,
	)
	return model, nil
}

// LoadString decodes a single in-memory document over the defaults. It is
// used for inline configuration and in tests.
func (l *Loader) LoadString(filename, src string) (*config.Model, error) {
	hclFile, diags := hclsyntax.ParseConfig([]byte(src), filename, hcl.InitialPos)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL %s: %w", filename, diags)
	}
	model := config.Default()
	if err := decodeInto(model, hclFile.Body, newEvalContext(l.environ())); err != nil {
		return nil, fmt.Errorf("failed to decode HCL %s: %w", filename, err)
	}
	if err := model.Validate(); err != nil {
		return nil, err
	}
	return model, nil
}

// decodeInto translates one file body into model.
func decodeInto(model *config.Model, body hcl.Body, evalCtx *hcl.EvalContext) error {
	var root fileRoot
	if diags := gohcl.DecodeBody(body, evalCtx, &root); diags.HasErrors() {
		return diags
	}

	if g := root.Grid; g != nil && g.Size != nil {
		model.Grid.Size = *g.Size
	}
	if s := root.Sequence; s != nil {
		if s.Holds != nil {
			holds, err := parseHolds(s.Holds)
			if err != nil {
				return err
			}
			model.Sequence.Holds = holds
		}
		if s.Level != nil {
			model.Sequence.Level = *s.Level
		}
	}
	for _, a := range root.Aggregations {
		model.Aggregations[a.Name] = a.Indices
	}
	if s := root.Storage; s != nil {
		if s.Driver != nil {
			model.Storage.Driver = *s.Driver
		}
		if s.Path != nil {
			model.Storage.Path = *s.Path
		}
	}
	if s := root.Server; s != nil && s.Listen != nil {
		model.Server.Listen = *s.Listen
	}
	return nil
}

func parseHolds(raw []string) ([]time.Duration, error) {
	holds := make([]time.Duration, len(raw))
	for i, r := range raw {
		d, err := time.ParseDuration(r)
		if err != nil {
			return nil, fmt.Errorf("sequence hold %d: %w", i, err)
		}
		holds[i] = d
	}
	return holds, nil
}

// findAllHCLFiles walks all given paths and returns a flat list of all .hcl files found.
func findAllHCLFiles(paths []string) ([]string, error) {
	var allFiles []string
	seen := make(map[string]struct{})
	add := func(p string) {
		if _, wasSeen := seen[p]; !wasSeen {
			allFiles = append(allFiles, p)
			seen[p] = struct{}{}
		}
	}

	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			if os.IsNotExist(err) {
				continue // It's not an error if a configured path doesn't exist.
			}
			return nil, fmt.Errorf("error accessing path %s: %w", path, err)
		}

		if !info.IsDir() {
			if filepath.Ext(path) == ".hcl" {
				add(path)
			}
			continue
		}
		err = filepath.WalkDir(path, func(p string, d os.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if !d.IsDir() && filepath.Ext(p) == ".hcl" {
				add(p)
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
	}
	return allFiles, nil
}
