package categorize

import (
	"errors"
	"reflect"
	"testing"

	"pgregory.net/rapid"

	"github.com/cognicore/csinsight/pkg/csinsight/internalerr"
)

func TestCategorizeDefaultRules(t *testing.T) {
	c := NewDefault()
	cases := []struct {
		text      string
		category  string
		sub       string
		issueType string
		severity  Severity
		urgent    bool
	}{
		{"SSL certificate error on our site, very urgent", "hosting", "ssl", "hosting_ssl", SeverityHigh, true},
		{"Our SSL cert keeps expiring, annoying", "hosting", "ssl", "hosting_ssl", SeverityMedium, false},
		{"Great support, resolved my billing question fast", "billing", "general", "billing_general", SeverityMedium, false},
		{"Customer wants a refund for a minor charge", "billing", "refund", "billing_refund", SeverityLow, false},
		{"Website is down, production down since morning", "hosting", "availability", "hosting_availability", SeverityMedium, true},
		{"Password reset link never arrives", "account", "password", "account_password", SeverityMedium, false},
		{"Asked about our opening hours", "other", "general", "other_general", SeverityMedium, false},
	}
	for _, tc := range cases {
		got := c.Categorize(tc.text)
		if got.Category != tc.category || got.Subcategory != tc.sub || got.IssueType != tc.issueType {
			t.Errorf("%q: got %s/%s (%s), want %s/%s (%s)", tc.text,
				got.Category, got.Subcategory, got.IssueType, tc.category, tc.sub, tc.issueType)
		}
		if got.Severity != tc.severity {
			t.Errorf("%q: severity %s, want %s", tc.text, got.Severity, tc.severity)
		}
		if got.Urgent != tc.urgent {
			t.Errorf("%q: urgent %v, want %v", tc.text, got.Urgent, tc.urgent)
		}
	}
}

func TestCategorizeFirstMatchWins(t *testing.T) {
	// email precedes domain in rule order
	got := NewDefault().Categorize("Email on my domain bounces")
	if got.Category != CategoryEmail {
		t.Fatalf("expected email to win, got %s", got.Category)
	}
	if got.Subcategory != "delivery" {
		t.Fatalf("expected delivery subcategory, got %s", got.Subcategory)
	}
}

func TestCategorizeMatchedKeywordsSorted(t *testing.T) {
	got := NewDefault().Categorize("SSL cert on site")
	want := []string{"cert", "site", "ssl"}
	if !reflect.DeepEqual(got.MatchedKeywords, want) {
		t.Fatalf("matched = %v, want %v", got.MatchedKeywords, want)
	}
}

func TestCategorizeCaseInsensitive(t *testing.T) {
	got := NewDefault().Categorize("DNS NAMESERVER TRANSFER")
	if got.IssueType != "domain_transfer" {
		t.Fatalf("got %s", got.IssueType)
	}
}

func TestCategoriesOrder(t *testing.T) {
	want := []string{"email", "domain", "hosting", "billing", "account", "other"}
	if got := NewDefault().Categories(); !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestNewRejectsBadRules(t *testing.T) {
	bad := []Rules{
		{},
		{Categories: []Rule{{Category: "", Triggers: []string{"x"}}}},
		{Categories: []Rule{{Category: "a"}}},
		{Categories: []Rule{{Category: "a", Triggers: []string{"x"}}, {Category: "a", Triggers: []string{"y"}}}},
	}
	for i, r := range bad {
		if _, err := New(r); !errors.Is(err, internalerr.ErrInvalidConfig) {
			t.Errorf("case %d: expected ErrInvalidConfig, got %v", i, err)
		}
	}
}

func TestNewDoesNotMutateInput(t *testing.T) {
	rules := Rules{Categories: []Rule{{Category: "Shipping", Triggers: []string{"PARCEL"}}}}
	c, err := New(rules)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if rules.Categories[0].Triggers[0] != "PARCEL" {
		t.Fatalf("input rules were modified")
	}
	if got := c.Categorize("my parcel is late"); got.Category != "Shipping" {
		t.Fatalf("custom rule not applied: %+v", got)
	}
}

func TestCategorizeDeterministic(t *testing.T) {
	c := NewDefault()
	words := []string{"ssl", "email", "refund", "dns", "login", "urgent", "minor", "down", "slow", "the", "site", "bounce"}
	rapid.Check(t, func(t *rapid.T) {
		parts := rapid.SliceOfN(rapid.SampledFrom(words), 0, 8).Draw(t, "words")
		text := ""
		for _, p := range parts {
			text += p + " "
		}
		a, b := c.Categorize(text), c.Categorize(text)
		if !reflect.DeepEqual(a, b) {
			t.Fatalf("non-deterministic: %+v vs %+v", a, b)
		}
		if a.IssueType != a.Category+"_"+a.Subcategory {
			t.Fatalf("issue type mismatch: %+v", a)
		}
	})
}
