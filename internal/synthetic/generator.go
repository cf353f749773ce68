package synthetic

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"strings"

	"github.com/jonboulle/clockwork"

	"leadscout/pkg/contracts/domain"
)

const (
	// MinCount and MaxCount bound the number of records one call may produce
	MinCount = 1
	MaxCount = 10000

	// DefaultCount matches the size of the demo dataset
	DefaultCount = 50

	// LookbackDays is how far back in time generated headlines may be dated
	LookbackDays = 30
)

// ErrInvalidCount is returned for a record count outside [MinCount, MaxCount]
var ErrInvalidCount = errors.New("invalid record count")

var companies = []string{
	"TechNova", "CloudForge", "DataSphere", "QuantumLeap", "CyberShield",
	"AI Dynamics", "ByteCraft", "NexaTech", "FutureSystems", "DigitalPulse",
	"SecureNet", "VisionAI", "RoboWorks", "BioTech Innovations", "EcoSolutions",
}

var industries = []string{"AI/ML", "Cybersecurity", "Biotech", "Fintech", "Clean Energy", "SaaS", "IoT"}

type template struct {
	newsType domain.NewsType
	phrases  []string
}

// Ordered so that a seed always maps to the same category sequence
var templates = []template{
	{domain.NewsTypeFunding, []string{"raised $%d million", "secured funding", "closed Series %s"}},
	{domain.NewsTypeProduct, []string{"launched new platform", "introduced breakthrough", "released innovative"}},
	{domain.NewsTypeHire, []string{"appointed new CEO", "hired industry veteran", "expanded leadership team"}},
	{domain.NewsTypeLayoff, []string{"announced layoffs", "downsizing workforce", "restructuring operations"}},
	{domain.NewsTypeScandal, []string{"facing investigation", "controversy over", "accused of"}},
	{domain.NewsTypeNeutral, []string{"partnered with", "expanded to", "won award for"}},
}

var fundingRounds = []string{"A", "B", "C", "D"}

// Companies returns the names used by the generator
func Companies() []string {
	return append([]string(nil), companies...)
}

// Industries returns the industries used by the generator
func Industries() []string {
	return append([]string(nil), industries...)
}

// Generator produces demo news records for a fixed set of companies
type Generator struct {
	clock  clockwork.Clock
	seed   int64
	count  int
	logger *slog.Logger
}

// Option configures a Generator
type Option func(*Generator)

// WithClock sets the clock used to date headlines
func WithClock(clock clockwork.Clock) Option {
	return func(g *Generator) {
		if clock != nil {
			g.clock = clock
		}
	}
}

// WithSeed fixes the random seed. Zero means a time based seed.
func WithSeed(seed int64) Option {
	return func(g *Generator) {
		g.seed = seed
	}
}

// WithCount sets how many records LoadRecords produces
func WithCount(n int) Option {
	return func(g *Generator) {
		g.count = n
	}
}

// WithLogger sets the generator logger
func WithLogger(logger *slog.Logger) Option {
	return func(g *Generator) {
		if logger != nil {
			g.logger = logger
		}
	}
}

// NewGenerator creates a generator using the real clock and DefaultCount records
func NewGenerator(opts ...Option) *Generator {
	g := &Generator{
		clock:  clockwork.NewRealClock(),
		count:  DefaultCount,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(g)
	}
	g.logger = g.logger.With(slog.String("component", "synthetic"))
	return g
}

// Count returns how many records LoadRecords produces
func (g *Generator) Count() int {
	return g.count
}

// Generate produces n records using the configured seed
func (g *Generator) Generate(n int) ([]domain.NewsRecord, error) {
	return g.GenerateWithSeed(n, g.seed)
}

// GenerateWithSeed produces n records. The same seed and calendar day always give
// the same records.
func (g *Generator) GenerateWithSeed(n int, seed int64) ([]domain.NewsRecord, error) {
	if n < MinCount || n > MaxCount {
		return nil, fmt.Errorf("%w: %d not in [%d, %d]", ErrInvalidCount, n, MinCount, MaxCount)
	}

	now := g.clock.Now()
	if seed == 0 {
		seed = now.UnixNano()
	}
	rng := rand.New(rand.NewSource(seed))
	today := domain.DateOf(now)

	records := make([]domain.NewsRecord, 0, n)
	for i := 0; i < n; i++ {
		company := companies[rng.Intn(len(companies))]
		date := today.AddDays(-rng.Intn(LookbackDays + 1))
		industry := industries[rng.Intn(len(industries))]
		tmpl := templates[rng.Intn(len(templates))]
		phrase := fillPhrase(rng, tmpl.phrases[rng.Intn(len(tmpl.phrases))])

		records = append(records, domain.NewsRecord{
			Date:     date,
			Company:  company,
			Headline: fmt.Sprintf("%s %s in %s sector", company, phrase, industry),
			NewsType: tmpl.newsType,
			Industry: industry,
		})
	}

	g.logger.Debug("Generated synthetic news",
		slog.Int("count", n),
		slog.Int64("seed", seed))

	return records, nil
}

// LoadRecords implements leads.RecordSource
func (g *Generator) LoadRecords(ctx context.Context) ([]domain.NewsRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return g.Generate(g.count)
}

func fillPhrase(rng *rand.Rand, phrase string) string {
	switch {
	case strings.Contains(phrase, "%d"):
		return fmt.Sprintf(phrase, 5+rng.Intn(196))
	case strings.Contains(phrase, "%s"):
		return fmt.Sprintf(phrase, fundingRounds[rng.Intn(len(fundingRounds))])
	}
	return phrase
}
