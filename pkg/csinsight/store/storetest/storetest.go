// Package storetest exercises store.Store implementations.
package storetest

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/cognicore/csinsight/pkg/csinsight/dataset"
	"github.com/cognicore/csinsight/pkg/csinsight/internalerr"
	"github.com/cognicore/csinsight/pkg/csinsight/report"
	"github.com/cognicore/csinsight/pkg/csinsight/store"
)

// Run checks the behaviour every Store must share. newStore must return an
// empty store.
func Run(t *testing.T, newStore func(t *testing.T) store.Store) {
	t.Run("DatasetRoundTrip", func(t *testing.T) { testDataset(t, newStore(t)) })
	t.Run("ReportCache", func(t *testing.T) { testReports(t, newStore(t)) })
	t.Run("Invalidate", func(t *testing.T) { testInvalidate(t, newStore(t)) })
	t.Run("Clear", func(t *testing.T) { testClear(t, newStore(t)) })
}

func sampleDataset() *dataset.Dataset {
	return &dataset.Dataset{
		ID:       "01HQ0000000000000000000000",
		Name:     "calls.csv",
		Records:  []string{"SSL error", "", "refund please"},
		LoadedAt: time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC),
	}
}

func testDataset(t *testing.T, s store.Store) {
	ctx := context.Background()
	defer s.Close()

	if _, err := s.Dataset(ctx, "s1"); !errors.Is(err, internalerr.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	ds := sampleDataset()
	if err := s.PutDataset(ctx, "s1", ds); err != nil {
		t.Fatalf("PutDataset: %v", err)
	}
	got, err := s.Dataset(ctx, "s1")
	if err != nil {
		t.Fatalf("Dataset: %v", err)
	}
	if got.ID != ds.ID || got.Name != ds.Name || !reflect.DeepEqual(got.Records, ds.Records) {
		t.Fatalf("got %+v, want %+v", got, ds)
	}
	if !got.LoadedAt.Equal(ds.LoadedAt) {
		t.Fatalf("loaded at %v, want %v", got.LoadedAt, ds.LoadedAt)
	}
	got.Records[0] = "mutated"
	again, _ := s.Dataset(ctx, "s1")
	if again.Records[0] != "SSL error" {
		t.Fatal("store must not alias caller slices")
	}
	if _, err := s.Dataset(ctx, "s2"); !errors.Is(err, internalerr.ErrNotFound) {
		t.Fatalf("sessions must be isolated, got %v", err)
	}
}

func sampleEntry(datasetID, prompt string) store.Entry {
	return store.Entry{
		Key:      store.NewCacheKey(datasetID, prompt),
		Markdown: "# Conversation Summary Analysis\n",
		Report: &report.Report{
			ID:      "01HQ0000000000000000000001",
			Records: 3,
			Prompt:  prompt,
		},
		CreatedAt: time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC),
	}
}

func testReports(t *testing.T, s store.Store) {
	ctx := context.Background()
	defer s.Close()

	e := sampleEntry("d1", "")
	if _, err := s.Report(ctx, "s1", e.Key); !errors.Is(err, internalerr.ErrNotFound) {
		t.Fatalf("expected miss, got %v", err)
	}
	if err := s.PutReport(ctx, "s1", e); err != nil {
		t.Fatalf("PutReport: %v", err)
	}
	got, err := s.Report(ctx, "s1", e.Key)
	if err != nil {
		t.Fatalf("Report: %v", err)
	}
	if got.Markdown != e.Markdown || got.Report == nil || got.Report.ID != e.Report.ID || got.Report.Records != 3 {
		t.Fatalf("got %+v", got)
	}

	other := store.NewCacheKey("d1", "focus on billing")
	if _, err := s.Report(ctx, "s1", other); !errors.Is(err, internalerr.ErrNotFound) {
		t.Fatalf("different prompt must miss, got %v", err)
	}

	e.Markdown = "updated"
	if err := s.PutReport(ctx, "s1", e); err != nil {
		t.Fatalf("PutReport overwrite: %v", err)
	}
	got, _ = s.Report(ctx, "s1", e.Key)
	if got.Markdown != "updated" {
		t.Fatalf("overwrite not applied: %q", got.Markdown)
	}
}

func testInvalidate(t *testing.T, s store.Store) {
	ctx := context.Background()
	defer s.Close()

	_ = s.PutDataset(ctx, "s1", sampleDataset())
	e := sampleEntry("d1", "")
	_ = s.PutReport(ctx, "s1", e)
	_ = s.PutReport(ctx, "s2", e)

	if err := s.InvalidateDataset(ctx, "s1"); err != nil {
		t.Fatalf("InvalidateDataset: %v", err)
	}
	if _, err := s.Report(ctx, "s1", e.Key); !errors.Is(err, internalerr.ErrNotFound) {
		t.Fatalf("report should be gone, got %v", err)
	}
	if _, err := s.Report(ctx, "s2", e.Key); err != nil {
		t.Fatalf("other session affected: %v", err)
	}
	if _, err := s.Dataset(ctx, "s1"); err != nil {
		t.Fatalf("dataset should survive invalidation: %v", err)
	}
}

func testClear(t *testing.T, s store.Store) {
	ctx := context.Background()
	defer s.Close()

	_ = s.PutDataset(ctx, "s1", sampleDataset())
	_ = s.PutReport(ctx, "s1", sampleEntry("d1", ""))
	if err := s.Clear(ctx, "s1"); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	if _, err := s.Dataset(ctx, "s1"); !errors.Is(err, internalerr.ErrNotFound) {
		t.Fatalf("dataset should be gone, got %v", err)
	}
	if err := s.Clear(ctx, "missing"); err != nil {
		t.Fatalf("clearing an unknown session should succeed: %v", err)
	}
}
