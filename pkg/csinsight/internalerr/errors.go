package internalerr

import "errors"

// Sentinel errors for common cases
var (
	ErrNotFound      = errors.New("not found")
	ErrInvalidInput  = errors.New("invalid input")
	ErrInvalidConfig = errors.New("invalid configuration")
	ErrNoData        = errors.New("no data to analyze")
	ErrNoDataset     = errors.New("no dataset loaded")
	ErrMissingColumn = errors.New("missing required column")
	ErrEmptyCorpus   = errors.New("empty corpus")
	ErrNoFeatures    = errors.New("no features extracted")
)
