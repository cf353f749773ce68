package services

import (
	"context"

	"leadscout/internal/infrastructure"
	"leadscout/internal/sentiment"
)

// meteredScorer counts every sentiment call and its failures
type meteredScorer struct {
	next     sentiment.Scorer
	provider string
	metrics  *infrastructure.BusinessMetrics
}

// NewMeteredScorer wraps next so each Score call is recorded under provider.
// A nil metrics set returns next unchanged.
func NewMeteredScorer(next sentiment.Scorer, provider string, metrics *infrastructure.BusinessMetrics) sentiment.Scorer {
	if metrics == nil {
		return next
	}
	return &meteredScorer{next: next, provider: provider, metrics: metrics}
}

// Score implements sentiment.Scorer
func (m *meteredScorer) Score(ctx context.Context, text string) (float64, error) {
	polarity, err := m.next.Score(ctx, text)
	m.metrics.RecordSentimentCall(ctx, m.provider, err)
	return polarity, err
}
