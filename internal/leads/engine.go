package leads

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"leadscout/internal/sentiment"
	"leadscout/pkg/contracts/domain"
)

const defaultBatchSize = 64

// BaseScore returns the base lead score of a known news type.
// The second result is false for categories outside the known set.
func BaseScore(t domain.NewsType) (float64, bool) {
	switch t {
	case domain.NewsTypeFunding:
		return 3, true
	case domain.NewsTypeProduct:
		return 2, true
	case domain.NewsTypeHire:
		return 1, true
	case domain.NewsTypeLayoff:
		return -2, true
	case domain.NewsTypeScandal:
		return -2, true
	case domain.NewsTypeNeutral:
		return 0, true
	}
	return 0, false
}

// ScoreRecord computes the lead score of a news type and sentiment under cfg
func ScoreRecord(cfg ScoringConfig, newsType domain.NewsType, polarity float64) (float64, error) {
	base, ok := BaseScore(newsType)
	if !ok {
		if cfg.OnUnknownCategory != UnknownCategoryNeutral {
			return 0, fmt.Errorf("%w: %q", ErrInvalidCategory, string(newsType))
		}
		base = 0
	}

	if cfg.WeightingMode == WeightingWeighted {
		return base + polarity*cfg.SentimentWeight, nil
	}
	return base + polarity, nil
}

// Engine scores news records. It holds configuration only; every call works on
// the records it is given and returns new values.
type Engine struct {
	config    ScoringConfig
	scorer    sentiment.Scorer
	workers   int
	batchSize int
	logger    *slog.Logger
}

// Option configures an Engine
type Option func(*Engine)

// WithWorkers sets the maximum number of batches scored concurrently
func WithWorkers(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.workers = n
		}
	}
}

// WithBatchSize sets how many records one worker scores per batch
func WithBatchSize(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.batchSize = n
		}
	}
}

// WithLogger sets the engine logger
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// NewEngine creates a scoring engine. A nil scorer selects the lexicon scorer.
func NewEngine(cfg ScoringConfig, scorer sentiment.Scorer, opts ...Option) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid scoring config: %w", err)
	}
	if scorer == nil {
		scorer = sentiment.NewLexicon()
	}

	e := &Engine{
		config:    cfg,
		scorer:    scorer,
		workers:   runtime.GOMAXPROCS(0),
		batchSize: defaultBatchSize,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	e.logger = e.logger.With(slog.String("component", "leads.engine"))

	return e, nil
}

// Config returns the scoring policy of the engine
func (e *Engine) Config() ScoringConfig {
	return e.config
}

// WithConfig returns a copy of the engine using a different scoring policy
func (e *Engine) WithConfig(cfg ScoringConfig) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid scoring config: %w", err)
	}
	clone := *e
	clone.config = cfg
	return &clone, nil
}

// ScoreRecord computes the lead score of a news type and sentiment
func (e *Engine) ScoreRecord(newsType domain.NewsType, polarity float64) (float64, error) {
	return ScoreRecord(e.config, newsType, polarity)
}

// ScoreAll validates and scores every record.
//
// Validation runs first and sequentially so that the reported error always
// belongs to the lowest offending index. Sentiment is then computed in parallel
// batches; the call returns only after every batch finished. The input slice is
// never modified. An empty input yields an empty, non-nil result.
func (e *Engine) ScoreAll(ctx context.Context, records []domain.NewsRecord) ([]domain.ScoredRecord, error) {
	out := make([]domain.ScoredRecord, len(records))
	if len(records) == 0 {
		return out, nil
	}

	start := time.Now()

	for i, rec := range records {
		scored, err := e.prepare(i, rec)
		if err != nil {
			e.logger.WarnContext(ctx, "Rejected news record",
				slog.Int("index", i),
				slog.String("error", err.Error()))
			return nil, err
		}
		out[i] = scored
	}

	if err := e.scoreSentiment(ctx, out); err != nil {
		return nil, err
	}

	// Runs after the barrier in scoreSentiment
	for i := range out {
		score, err := ScoreRecord(e.config, out[i].NewsType, out[i].Sentiment)
		if err != nil {
			return nil, &RecordError{Index: i, Field: "news_type", Value: string(out[i].NewsType), Err: err}
		}
		out[i].LeadScore = score
		out[i].Tier = ClassifyHeadline(score)
	}

	e.logger.InfoContext(ctx, "Scored news records",
		slog.Int("records", len(out)),
		slog.String("weighting_mode", string(e.config.WeightingMode)),
		slog.Duration("duration", time.Since(start)))

	return out, nil
}

// prepare checks the required fields of one record and applies the unknown
// category policy
func (e *Engine) prepare(index int, rec domain.NewsRecord) (domain.ScoredRecord, error) {
	if strings.TrimSpace(rec.Company) == "" {
		return domain.ScoredRecord{}, NewMalformedError(index, "company", "", "company is required")
	}
	if rec.Date.IsZero() {
		return domain.ScoredRecord{}, NewMalformedError(index, "date", "", "date is required")
	}
	if rec.NewsType == "" {
		return domain.ScoredRecord{}, NewMalformedError(index, "news_type", "", "news type is required")
	}

	scored := domain.ScoredRecord{NewsRecord: rec}
	if !rec.NewsType.IsValid() {
		if e.config.OnUnknownCategory != UnknownCategoryNeutral {
			return domain.ScoredRecord{}, NewInvalidCategoryError(index, string(rec.NewsType))
		}
		scored.RawNewsType = string(rec.NewsType)
		scored.NewsType = domain.NewsTypeNeutral
	}
	return scored, nil
}

// scoreSentiment fills Sentiment for every record, batch by batch, and waits for
// all batches before returning
func (e *Engine) scoreSentiment(ctx context.Context, out []domain.ScoredRecord) error {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.workers)

	for lo := 0; lo < len(out); lo += e.batchSize {
		hi := min(lo+e.batchSize, len(out))
		g.Go(func() error {
			for i := lo; i < hi; i++ {
				if err := gctx.Err(); err != nil {
					return err
				}
				polarity, err := e.scorer.Score(gctx, out[i].Headline)
				if err != nil {
					return &RecordError{Index: i, Field: "headline", Err: err}
				}
				out[i].Sentiment = sentiment.Clamp(polarity)
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		e.logger.ErrorContext(ctx, "Sentiment scoring failed", slog.String("error", err.Error()))
		return err
	}
	return nil
}
