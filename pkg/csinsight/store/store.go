// Package store holds per-session dataset snapshots and the report cache.
package store

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/cognicore/csinsight/pkg/csinsight/dataset"
	"github.com/cognicore/csinsight/pkg/csinsight/report"
)

// Store is the persistence interface used by the analysis engine. Lookups
// that miss return internalerr.ErrNotFound.
type Store interface {
	Close() error

	// Datasets
	PutDataset(ctx context.Context, sessionID string, ds *dataset.Dataset) error
	Dataset(ctx context.Context, sessionID string) (*dataset.Dataset, error)

	// Report cache
	PutReport(ctx context.Context, sessionID string, e Entry) error
	Report(ctx context.Context, sessionID string, key CacheKey) (Entry, error)

	// InvalidateDataset drops every cached report of the session.
	InvalidateDataset(ctx context.Context, sessionID string) error
	// Clear drops the session's dataset and cached reports.
	Clear(ctx context.Context, sessionID string) error
}

// CacheKey identifies a report by dataset and finalized prompt.
type CacheKey struct {
	DatasetID  string
	PromptHash string
}

// NewCacheKey hashes prompt and pairs it with the dataset ID.
func NewCacheKey(datasetID, prompt string) CacheKey {
	sum := sha256.Sum256([]byte(prompt))
	return CacheKey{DatasetID: datasetID, PromptHash: hex.EncodeToString(sum[:])}
}

// Entry is one cached report.
type Entry struct {
	Key       CacheKey
	Markdown  string
	Report    *report.Report
	CreatedAt time.Time
}
