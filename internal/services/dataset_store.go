package services

import (
	"sync"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"

	"leadscout/internal/leads"
	"leadscout/pkg/contracts/domain"
)

// Dataset is a published, fully scored snapshot. It is never modified after
// publication.
type Dataset struct {
	Info     domain.DatasetInfo
	Analysis *leads.Analysis
}

// DatasetStore holds the currently served dataset
type DatasetStore struct {
	mu      sync.RWMutex
	current *Dataset
	clock   clockwork.Clock
}

// NewDatasetStore creates an empty store. A nil clock means the real clock.
func NewDatasetStore(clock clockwork.Clock) *DatasetStore {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &DatasetStore{clock: clock}
}

// Publish replaces the served dataset with analysis and returns its metadata
func (s *DatasetStore) Publish(source string, analysis *leads.Analysis) domain.DatasetInfo {
	ds := &Dataset{
		Info: domain.DatasetInfo{
			Version:  uuid.NewString(),
			Source:   source,
			Records:  len(analysis.Records),
			LoadedAt: s.clock.Now().UTC(),
		},
		Analysis: analysis,
	}

	s.mu.Lock()
	s.current = ds
	s.mu.Unlock()

	return ds.Info
}

// Current returns the served dataset or ErrNoDataset
func (s *DatasetStore) Current() (*Dataset, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.current == nil {
		return nil, ErrNoDataset
	}
	return s.current, nil
}

// Loaded reports whether a dataset has been published
func (s *DatasetStore) Loaded() bool {
	_, err := s.Current()
	return err == nil
}
