// Package csinsight analyses batches of customer-service conversation
// summaries and keeps per-session chat, dataset and report state.
package csinsight

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/cognicore/csinsight/internal/events"
	"github.com/cognicore/csinsight/internal/llm"
	"github.com/cognicore/csinsight/pkg/csinsight/dataset"
	"github.com/cognicore/csinsight/pkg/csinsight/internalerr"
	"github.com/cognicore/csinsight/pkg/csinsight/report"
	"github.com/cognicore/csinsight/pkg/csinsight/store"
	"github.com/cognicore/csinsight/pkg/csinsight/store/memstore"
)

// User-facing messages.
const (
	MsgNoDataset     = "No CSV file has been loaded yet."
	MsgMissingColumn = "CSV file must contain a 'conversation_summary' column."
	MsgNoData        = "The loaded CSV file contains no conversation summaries to analyze."
	msgAnalysisError = "Error during analysis: %s\n\nPlease try again or contact support if the issue persists."
)

// Chatter is the chat collaborator. *llm.Client satisfies it.
type Chatter interface {
	Chat(ctx context.Context, system string, history []llm.Message, user string) (string, error)
}

// Options configures an Engine. Zero values select defaults.
type Options struct {
	Store   store.Store
	Builder *report.Builder
	Chat    Chatter
	Events  events.Publisher
	Logger  *slog.Logger
	Now     func() time.Time
}

// Engine is the analysis facade.
type Engine struct {
	store   store.Store
	builder *report.Builder
	chat    Chatter
	events  events.Publisher
	logger  *slog.Logger
	now     func() time.Time
}

// New creates an Engine with the given dependencies.
func New(opts Options) *Engine {
	e := &Engine{
		store:   opts.Store,
		builder: opts.Builder,
		chat:    opts.Chat,
		events:  opts.Events,
		logger:  opts.Logger,
		now:     opts.Now,
	}
	if e.logger == nil {
		e.logger = slog.Default()
	}
	if e.store == nil {
		e.store = memstore.New()
	}
	if e.builder == nil {
		e.builder = report.NewBuilder(report.Options{Logger: e.logger})
	}
	if e.events == nil {
		e.events = events.Nop{}
	}
	if e.now == nil {
		e.now = time.Now
	}
	return e
}

// Close releases the store and the event publisher.
func (e *Engine) Close() error {
	e.events.Close()
	return e.store.Close()
}

// LoadDataset parses a CSV upload into the session, replacing any previous
// dataset and its cached reports, and returns the upload summary.
func (e *Engine) LoadDataset(ctx context.Context, s *Session, name string, r io.Reader) (string, error) {
	s.work.Lock()
	defer s.work.Unlock()

	ds, err := dataset.Load(r, name)
	if err != nil {
		if errors.Is(err, internalerr.ErrMissingColumn) {
			return MsgMissingColumn, err
		}
		return "", fmt.Errorf("loading %s: %w", name, err)
	}
	if err := e.store.InvalidateDataset(ctx, s.ID); err != nil {
		return "", fmt.Errorf("invalidating reports: %w", err)
	}
	if err := e.store.PutDataset(ctx, s.ID, ds); err != nil {
		return "", fmt.Errorf("storing dataset: %w", err)
	}
	e.logger.Info("dataset loaded", "session", s.ID, "dataset", ds.ID, "name", name, "records", len(ds.Records))
	e.publish(events.SubjectDatasetLoaded, events.DatasetLoaded{
		SessionID: s.ID,
		DatasetID: ds.ID,
		Name:      ds.Name,
		Records:   len(ds.Records),
		LoadedAt:  ds.LoadedAt,
	})
	return ds.Summary(), nil
}

// Analyze returns the Markdown report for the session's dataset. Failures
// are rendered as user-facing text; nothing is returned from a failed build.
func (e *Engine) Analyze(ctx context.Context, s *Session) string {
	entry, err := e.analyze(ctx, s)
	switch {
	case err == nil:
		return entry.Markdown
	case errors.Is(err, internalerr.ErrNoDataset):
		return MsgNoDataset
	case errors.Is(err, internalerr.ErrNoData):
		return MsgNoData
	default:
		e.logger.Error("analysis failed", "session", s.ID, "err", err)
		return fmt.Sprintf(msgAnalysisError, err)
	}
}

// AnalyzeReport returns the structured report for the session's dataset.
// It shares the cache with Analyze.
func (e *Engine) AnalyzeReport(ctx context.Context, s *Session) (*report.Report, error) {
	entry, err := e.analyze(ctx, s)
	if err != nil {
		return nil, err
	}
	return entry.Report, nil
}

func (e *Engine) analyze(ctx context.Context, s *Session) (store.Entry, error) {
	s.work.Lock()
	defer s.work.Unlock()

	ds, err := e.store.Dataset(ctx, s.ID)
	if errors.Is(err, internalerr.ErrNotFound) {
		return store.Entry{}, internalerr.ErrNoDataset
	}
	if err != nil {
		return store.Entry{}, fmt.Errorf("reading dataset: %w", err)
	}

	prompt := s.Prompt()
	key := store.NewCacheKey(ds.ID, prompt)
	entry, err := e.store.Report(ctx, s.ID, key)
	if err == nil {
		e.logger.Debug("report cache hit", "session", s.ID, "dataset", ds.ID)
		return entry, nil
	}
	if !errors.Is(err, internalerr.ErrNotFound) {
		return store.Entry{}, fmt.Errorf("reading report cache: %w", err)
	}
	e.logger.Debug("report cache miss", "session", s.ID, "dataset", ds.ID)

	rep, md, err := e.build(ctx, ds, prompt)
	if err != nil {
		return store.Entry{}, err
	}
	entry = store.Entry{Key: key, Markdown: md, Report: rep, CreatedAt: e.now()}
	if err := e.store.PutReport(ctx, s.ID, entry); err != nil {
		return store.Entry{}, fmt.Errorf("caching report: %w", err)
	}
	e.publish(events.SubjectReportBuilt, events.ReportBuilt{
		SessionID: s.ID,
		DatasetID: ds.ID,
		ReportID:  rep.ID,
		Records:   rep.Records,
	})
	return entry, nil
}

// build runs the report builder, converting panics into errors so a broken
// collaborator cannot take the session down.
func (e *Engine) build(ctx context.Context, ds *dataset.Dataset, prompt string) (rep *report.Report, md string, err error) {
	defer func() {
		if r := recover(); r != nil {
			rep, md, err = nil, "", fmt.Errorf("%v", r)
		}
	}()
	rep, err = e.builder.Build(ctx, ds.Texts(), prompt)
	if err != nil {
		return nil, "", err
	}
	return rep, rep.Markdown(), nil
}

// ClearHistory drops the conversation history and the finalized prompt.
func (e *Engine) ClearHistory(s *Session) {
	s.clearHistory()
}

// ClearCaches resets the session: cached reports, dataset, history, mode and
// learned patterns.
func (e *Engine) ClearCaches(ctx context.Context, s *Session) error {
	s.work.Lock()
	defer s.work.Unlock()
	if err := e.store.Clear(ctx, s.ID); err != nil {
		return fmt.Errorf("clearing store: %w", err)
	}
	s.reset()
	e.logger.Info("caches cleared", "session", s.ID)
	e.publish(events.SubjectCachesCleared, events.CachesCleared{SessionID: s.ID})
	return nil
}

// Forget drops everything stored for a session that no longer exists.
func (e *Engine) Forget(ctx context.Context, sessionID string) error {
	if err := e.store.Clear(ctx, sessionID); err != nil {
		return fmt.Errorf("clearing store: %w", err)
	}
	e.logger.Debug("session forgotten", "session", sessionID)
	return nil
}

func (e *Engine) publish(subject string, data any) {
	if err := e.events.Publish(subject, data); err != nil {
		e.logger.Warn("publish failed", "subject", subject, "err", err)
	}
}
