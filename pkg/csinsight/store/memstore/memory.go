package memstore

import (
	"context"
	"sync"

	"github.com/cognicore/csinsight/pkg/csinsight/dataset"
	"github.com/cognicore/csinsight/pkg/csinsight/internalerr"
	"github.com/cognicore/csinsight/pkg/csinsight/store"
)

// Store is an in-memory implementation of store.Store.
type Store struct {
	mu       sync.RWMutex
	datasets map[string]*dataset.Dataset
	reports  map[string]map[store.CacheKey]store.Entry
}

// New creates an empty in-memory store.
func New() *Store {
	return &Store{
		datasets: make(map[string]*dataset.Dataset),
		reports:  make(map[string]map[store.CacheKey]store.Entry),
	}
}

// Close implements store.Store.
func (s *Store) Close() error { return nil }

// PutDataset replaces the session's dataset.
func (s *Store) PutDataset(ctx context.Context, sessionID string, ds *dataset.Dataset) error {
	if ds == nil {
		return internalerr.ErrInvalidInput
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.datasets[sessionID] = copyDataset(ds)
	return nil
}

// Dataset returns the session's dataset.
func (s *Store) Dataset(ctx context.Context, sessionID string) (*dataset.Dataset, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ds, ok := s.datasets[sessionID]
	if !ok {
		return nil, internalerr.ErrNotFound
	}
	return copyDataset(ds), nil
}

// PutReport caches e under its key.
func (s *Store) PutReport(ctx context.Context, sessionID string, e store.Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.reports[sessionID] == nil {
		s.reports[sessionID] = make(map[store.CacheKey]store.Entry)
	}
	s.reports[sessionID][e.Key] = e
	return nil
}

// Report looks up a cached report.
func (s *Store) Report(ctx context.Context, sessionID string, key store.CacheKey) (store.Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.reports[sessionID][key]
	if !ok {
		return store.Entry{}, internalerr.ErrNotFound
	}
	return e, nil
}

// InvalidateDataset drops the session's cached reports.
func (s *Store) InvalidateDataset(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.reports, sessionID)
	return nil
}

// Clear drops the session's dataset and reports.
func (s *Store) Clear(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.reports, sessionID)
	delete(s.datasets, sessionID)
	return nil
}

func copyDataset(ds *dataset.Dataset) *dataset.Dataset {
	out := *ds
	out.Records = append([]string(nil), ds.Records...)
	return &out
}
