package mockanalysis

import (
	"fmt"
	"math/rand/v2"
	"strings"
	"sync"

	"github.com/vk/ednavoyage/internal/clock"
	"github.com/vk/ednavoyage/internal/records"
)

// Species are the candidate identifications.
var Species = []string{
	"Bathypelagic Cephalopod SP-001",
	"Hadal Xenophyophore SP-002",
	"Abyssal Polychaete SP-003",
	"Deep Sea Copepod SP-004",
	"Bathynomus giganteus",
	"Pseudoliparis swirei",
	"Hirondellea gigas",
}

const (
	// MaxProgressStep bounds the progress added per upload tick.
	MaxProgressStep = 30.0
	sequenceLength  = 60
)

// Generator draws synthetic values from a seeded source. It is safe for
// concurrent use.
type Generator struct {
	mu    sync.Mutex
	rng   *rand.Rand
	clock clock.Clock
}

// NewGenerator returns a generator seeded with seed.
func NewGenerator(seed uint64, c clock.Clock) *Generator {
	if c == nil {
		c = clock.New()
	}
	return &Generator{rng: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)), clock: c}
}

// NextProgress advances an upload percentage by a random amount in
// [0, MaxProgressStep), capped at 100.
func (g *Generator) NextProgress(p float64) float64 {
	g.mu.Lock()
	p += g.rng.Float64() * MaxProgressStep
	g.mu.Unlock()
	return min(p, 100)
}

// Analyze fabricates the analysis result for f.
func (g *Generator) Analyze(f records.UploadedFile) records.AnalysisResult {
	g.mu.Lock()
	defer g.mu.Unlock()

	now := g.clock.Now().UTC()
	confidence := float64(850+g.rng.IntN(150)) / 10
	return records.AnalysisResult{
		ID:             records.ResultID(f.ID),
		FileName:       f.Name,
		Species:        Species[g.rng.IntN(len(Species))],
		Confidence:     confidence,
		Sequence:       g.sequence(sequenceLength),
		Quality:        qualityFor(confidence),
		Status:         records.StatusComplete,
		Timestamp:      now,
		TotalSequences: 50_000 + g.rng.IntN(200_000),
		KnownSpecies:   40 + g.rng.IntN(80),
		NovelSpecies:   5 + g.rng.IntN(30),
		Location:       describeLocation(f.Location),
		Date:           now.Format("2006-01-02"),
	}
}

func (g *Generator) sequence(n int) string {
	const bases = "ACGT"
	var b strings.Builder
	b.Grow(n)
	for range n {
		b.WriteByte(bases[g.rng.IntN(len(bases))])
	}
	return b.String()
}

func qualityFor(confidence float64) records.Quality {
	switch {
	case confidence >= 95:
		return records.QualityHigh
	case confidence >= 90:
		return records.QualityMedium
	}
	return records.QualityLow
}

func describeLocation(loc *records.GeoTag) string {
	if loc == nil {
		return ""
	}
	if loc.Address != "" {
		return loc.Address
	}
	return fmt.Sprintf("%.4f°N, %.4f°E", loc.Latitude, loc.Longitude)
}
