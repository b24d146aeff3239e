package topics

import (
	"errors"
	"reflect"
	"testing"

	"github.com/cognicore/csinsight/pkg/csinsight/internalerr"
)

func TestCounterDocumentFrequency(t *testing.T) {
	c := NewCounter(2, 2)
	c.Process([]string{"ssl", "cert", "ssl", "cert"})
	c.Process([]string{"ssl", "cert"})
	st := c.Snapshot()
	if st.TotalDocs != 2 {
		t.Fatalf("total docs = %d", st.TotalDocs)
	}
	if st.DF["ssl cert"] != 2 || st.Occurrences["ssl cert"] != 3 {
		t.Fatalf("ssl cert df=%d occ=%d", st.DF["ssl cert"], st.Occurrences["ssl cert"])
	}
	if st.DF["cert ssl"] != 1 {
		t.Fatalf("cert ssl df=%d", st.DF["cert ssl"])
	}
}

func TestStatsFeaturesWindow(t *testing.T) {
	st := Stats{
		TotalDocs: 10,
		DF:        map[string]int{"b a": 2, "a b": 5, "rare": 1, "everywhere": 10},
	}
	got := st.Features(2, 0.9)
	want := []string{"a b", "b a"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	// max ratio below min df yields nothing
	small := Stats{TotalDocs: 2, DF: map[string]int{"a b": 2}}
	if got := small.Features(2, 0.9); got != nil {
		t.Fatalf("expected no features, got %v", got)
	}
}

func TestMineEmpty(t *testing.T) {
	got := Mine(nil, 5)
	if got == nil || len(got) != 0 {
		t.Fatalf("expected empty non-nil slice, got %#v", got)
	}
}

func TestMineSmallCorpusFallsBackToPhrases(t *testing.T) {
	texts := []string{
		"SSL certificate error on our site, very urgent",
		"Our SSL cert keeps expiring, annoying",
	}
	if _, err := NewMiner(nil).NGrams(texts); !errors.Is(err, internalerr.ErrNoFeatures) {
		t.Fatalf("expected ErrNoFeatures for 2 docs, got %v", err)
	}
	got := Mine(texts, 10)
	want := []Topic{{Phrase: "ssl certificate error", Count: 1}, {Phrase: "our site", Count: 1}}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %#v, want %#v", got, want)
	}
}

func TestMineMergesAndSums(t *testing.T) {
	texts := []string{
		"The login page error happens daily.",
		"Login page error again. Login page broken",
		"Password reset emails arrive late",
		"Refund processed for the customer",
	}
	got := Mine(texts, 3)
	if len(got) != 3 {
		t.Fatalf("expected 3 topics, got %#v", got)
	}
	// two indicator sentences count the phrase twice, plus two n-gram hits
	if got[0] != (Topic{Phrase: "login page error", Count: 4}) {
		t.Fatalf("unexpected leader %#v", got)
	}
	if got[1] != (Topic{Phrase: "login page", Count: 3}) {
		t.Fatalf("unexpected runner-up %#v", got)
	}
	for i := 1; i < len(got); i++ {
		if got[i].Count > got[i-1].Count {
			t.Fatalf("topics not sorted by count: %#v", got)
		}
	}
}

func TestMineTopNDefault(t *testing.T) {
	texts := []string{
		"billing error today", "billing error again", "billing error now",
		"slow site today", "slow site again", "other thing",
	}
	got := Mine(texts, 0)
	if len(got) == 0 || len(got) > DefaultTopN {
		t.Fatalf("unexpected topic count %d", len(got))
	}
	found := false
	for _, tp := range got {
		if tp.Phrase == "billing error" {
			found = true
			// three phrase hits plus three n-gram occurrences
			if tp.Count != 6 {
				t.Fatalf("billing error count = %d, want 6", tp.Count)
			}
		}
	}
	if !found {
		t.Fatalf("billing error missing from %#v", got)
	}
}

func TestIndicatorTypographicApostrophe(t *testing.T) {
	m := NewMiner(nil)
	if !m.isIndicator("i can’t reach the control panel") {
		t.Fatal("typographic apostrophe should match can't")
	}
	if m.isIndicator("thanks for the quick reply") {
		t.Fatal("neutral sentence flagged as indicator")
	}
}
