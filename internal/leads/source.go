package leads

import (
	"context"

	"leadscout/pkg/contracts/domain"
)

// RecordSource produces the news records fed into the engine
type RecordSource interface {
	LoadRecords(ctx context.Context) ([]domain.NewsRecord, error)
}

// SourceFunc adapts a plain function to the RecordSource interface
type SourceFunc func(ctx context.Context) ([]domain.NewsRecord, error)

// LoadRecords calls f(ctx)
func (f SourceFunc) LoadRecords(ctx context.Context) ([]domain.NewsRecord, error) {
	return f(ctx)
}
