package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"
	_ "modernc.org/sqlite"

	"github.com/cognicore/csinsight/pkg/csinsight/dataset"
	"github.com/cognicore/csinsight/pkg/csinsight/internalerr"
	"github.com/cognicore/csinsight/pkg/csinsight/report"
	"github.com/cognicore/csinsight/pkg/csinsight/store"
)

// MemoryDSN keeps the database inside the process.
const MemoryDSN = ":memory:"

// sqliteStore implements store.Store using SQLite.
type sqliteStore struct {
	db *sql.DB
}

// Open opens a SQLite database. An empty path or MemoryDSN opens an
// in-memory database pinned to a single connection; file paths use WAL.
func Open(ctx context.Context, path string) (store.Store, error) {
	if path == "" {
		path = MemoryDSN
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	if isMemory(path) {
		// every pooled connection would otherwise get its own empty database
		db.SetMaxOpenConns(1)
	} else if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, err
	}

	if err := initSchema(ctx, db); err != nil {
		db.Close()
		return nil, err
	}
	return &sqliteStore{db: db}, nil
}

func isMemory(path string) bool {
	return path == MemoryDSN || strings.Contains(path, "mode=memory")
}

// Close closes the database connection.
func (s *sqliteStore) Close() error {
	return s.db.Close()
}

func initSchema(ctx context.Context, db *sql.DB) error {
	schema := `
CREATE TABLE IF NOT EXISTS datasets (
	session_id TEXT PRIMARY KEY,
	id TEXT NOT NULL,
	name TEXT,
	records TEXT NOT NULL,
	loaded_at TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS reports (
	session_id TEXT NOT NULL,
	dataset_id TEXT NOT NULL,
	prompt_hash TEXT NOT NULL,
	markdown TEXT NOT NULL,
	report_json TEXT,
	created_at TEXT NOT NULL,
	PRIMARY KEY(session_id, dataset_id, prompt_hash)
);
`
	_, err := db.ExecContext(ctx, schema)
	return err
}

// PutDataset replaces the session's dataset.
func (s *sqliteStore) PutDataset(ctx context.Context, sessionID string, ds *dataset.Dataset) error {
	if ds == nil {
		return internalerr.ErrInvalidInput
	}
	records, err := json.Marshal(ds.Records)
	if err != nil {
		return err
	}
	query, args, err := sq.Insert("datasets").
		Columns("session_id", "id", "name", "records", "loaded_at").
		Values(sessionID, ds.ID, ds.Name, string(records), ds.LoadedAt.UTC().Format(time.RFC3339Nano)).
		Suffix("ON CONFLICT(session_id) DO UPDATE SET id = excluded.id, name = excluded.name, " +
			"records = excluded.records, loaded_at = excluded.loaded_at").
		ToSql()
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, query, args...)
	return err
}

// Dataset returns the session's dataset.
func (s *sqliteStore) Dataset(ctx context.Context, sessionID string) (*dataset.Dataset, error) {
	query, args, err := sq.Select("id", "name", "records", "loaded_at").
		From("datasets").
		Where(sq.Eq{"session_id": sessionID}).
		ToSql()
	if err != nil {
		return nil, err
	}
	var (
		ds       dataset.Dataset
		name     sql.NullString
		records  string
		loadedAt string
	)
	err = s.db.QueryRowContext(ctx, query, args...).Scan(&ds.ID, &name, &records, &loadedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, internalerr.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	ds.Name = name.String
	if err := json.Unmarshal([]byte(records), &ds.Records); err != nil {
		return nil, fmt.Errorf("decode records: %w", err)
	}
	if ds.LoadedAt, err = time.Parse(time.RFC3339Nano, loadedAt); err != nil {
		return nil, fmt.Errorf("decode loaded_at: %w", err)
	}
	return &ds, nil
}

// PutReport caches e under its key.
func (s *sqliteStore) PutReport(ctx context.Context, sessionID string, e store.Entry) error {
	var reportJSON sql.NullString
	if e.Report != nil {
		raw, err := json.Marshal(e.Report)
		if err != nil {
			return err
		}
		reportJSON = sql.NullString{String: string(raw), Valid: true}
	}
	query, args, err := sq.Insert("reports").
		Columns("session_id", "dataset_id", "prompt_hash", "markdown", "report_json", "created_at").
		Values(sessionID, e.Key.DatasetID, e.Key.PromptHash, e.Markdown, reportJSON,
			e.CreatedAt.UTC().Format(time.RFC3339Nano)).
		Suffix("ON CONFLICT(session_id, dataset_id, prompt_hash) DO UPDATE SET " +
			"markdown = excluded.markdown, report_json = excluded.report_json, created_at = excluded.created_at").
		ToSql()
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, query, args...)
	return err
}

// Report looks up a cached report.
func (s *sqliteStore) Report(ctx context.Context, sessionID string, key store.CacheKey) (store.Entry, error) {
	query, args, err := sq.Select("markdown", "report_json", "created_at").
		From("reports").
		Where(sq.Eq{
			"session_id":  sessionID,
			"dataset_id":  key.DatasetID,
			"prompt_hash": key.PromptHash,
		}).
		ToSql()
	if err != nil {
		return store.Entry{}, err
	}
	var (
		e          = store.Entry{Key: key}
		reportJSON sql.NullString
		createdAt  string
	)
	err = s.db.QueryRowContext(ctx, query, args...).Scan(&e.Markdown, &reportJSON, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return store.Entry{}, internalerr.ErrNotFound
	}
	if err != nil {
		return store.Entry{}, err
	}
	if reportJSON.Valid {
		var rep report.Report
		if err := json.Unmarshal([]byte(reportJSON.String), &rep); err != nil {
			return store.Entry{}, fmt.Errorf("decode report: %w", err)
		}
		e.Report = &rep
	}
	if e.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt); err != nil {
		return store.Entry{}, fmt.Errorf("decode created_at: %w", err)
	}
	return e, nil
}

// InvalidateDataset drops the session's cached reports.
func (s *sqliteStore) InvalidateDataset(ctx context.Context, sessionID string) error {
	query, args, err := sq.Delete("reports").Where(sq.Eq{"session_id": sessionID}).ToSql()
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, query, args...)
	return err
}

// Clear drops the session's dataset and reports.
func (s *sqliteStore) Clear(ctx context.Context, sessionID string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, table := range []string{"reports", "datasets"} {
		query, args, err := sq.Delete(table).Where(sq.Eq{"session_id": sessionID}).ToSql()
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return err
		}
	}
	return tx.Commit()
}
