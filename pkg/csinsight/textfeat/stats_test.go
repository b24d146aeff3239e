package textfeat

import (
	"errors"
	"math"
	"reflect"
	"testing"

	"github.com/cognicore/csinsight/pkg/csinsight/internalerr"
)

func TestStats(t *testing.T) {
	st, err := Stats([]string{"one two three. four five", "one"})
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if st.AvgWords != 3 || st.StdWords != 2 {
		t.Fatalf("word stats = %v/%v, want 3/2", st.AvgWords, st.StdWords)
	}
	if st.AvgSentences != 1.5 || st.StdSentences != 0.5 {
		t.Fatalf("sentence stats = %v/%v, want 1.5/0.5", st.AvgSentences, st.StdSentences)
	}
	if st.MinWords != 1 || st.MaxWords != 5 {
		t.Fatalf("min/max = %d/%d, want 1/5", st.MinWords, st.MaxWords)
	}
}

func TestStatsSingle(t *testing.T) {
	st, err := Stats([]string{"just four words here"})
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if st.StdWords != 0 || math.IsNaN(st.StdSentences) {
		t.Fatalf("single text should have zero spread, got %+v", st)
	}
}

func TestStatsEmpty(t *testing.T) {
	if _, err := Stats(nil); !errors.Is(err, internalerr.ErrEmptyCorpus) {
		t.Fatalf("expected ErrEmptyCorpus, got %v", err)
	}
}

func TestRepresentativeSamples(t *testing.T) {
	texts := []string{"a b c d e f", "a", "a b c", "a b", "a b c d"}
	if got := RepresentativeSamples(texts, 10); !reflect.DeepEqual(got, texts) {
		t.Fatalf("small corpus should be returned whole, got %v", got)
	}
	got := RepresentativeSamples(texts, 2)
	want := []string{"a", "a b c"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	if RepresentativeSamples(texts, 0) != nil {
		t.Fatalf("n=0 should return nil")
	}
}
