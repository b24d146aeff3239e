package ingest

import (
	"reflect"
	"strings"
	"testing"

	"github.com/cognicore/csinsight/pkg/csinsight/stoplist"
)

func TestTokenizerBasic(t *testing.T) {
	tokenizer := NewTokenizer(stoplist.NewManager([]string{"the", "a", "and", "of", "on", "our"}))

	tokens := tokenizer.Tokenize("The SSL certificate error on our site")

	expected := []string{"ssl", "certificate", "error", "site"}
	if !reflect.DeepEqual(tokens, expected) {
		t.Errorf("Tokenize = %v, want %v", tokens, expected)
	}
}

func TestTokenizerHyphensAndApostrophes(t *testing.T) {
	tokenizer := NewTokenizer(nil)

	tokens := tokenizer.Tokenize("Customer can't reach the e-mail --inbox-- ")
	want := []string{"customer", "can't", "reach", "the", "e-mail", "inbox"}
	if !reflect.DeepEqual(tokens, want) {
		t.Errorf("Tokenize = %v, want %v", tokens, want)
	}
}

func TestTokenizerCurlyApostrophe(t *testing.T) {
	words := Words("Customer can’t log in")
	if len(words) < 2 || words[1] != "can't" {
		t.Errorf("curly apostrophe should normalize, got %v", words)
	}
}

func TestTokenizerCaseNormalization(t *testing.T) {
	tokenizer := NewTokenizer(nil)

	for _, tok := range tokenizer.Tokenize("DNS Nameserver SMTP") {
		if tok != strings.ToLower(tok) {
			t.Errorf("Token %s should be lowercased", tok)
		}
	}
}

func TestTokenizerNumeric(t *testing.T) {
	tokenizer := NewTokenizer(nil)

	tokens := tokenizer.Tokenize("error 404 on http2 port 8080")
	want := []string{"error", "on", "http2", "port"}
	if !reflect.DeepEqual(tokens, want) {
		t.Errorf("numeric tokens should be dropped by default, got %v", tokens)
	}

	tokenizer.KeepNumeric(true)
	tokens = tokenizer.Tokenize("error 404")
	if !reflect.DeepEqual(tokens, []string{"error", "404"}) {
		t.Errorf("KeepNumeric should retain numbers, got %v", tokens)
	}
}

func TestTokenizerKeepNumericChained(t *testing.T) {
	tokenizer := NewTokenizer(nil).KeepNumeric(true)
	if tokenizer == nil {
		t.Fatal("KeepNumeric should return the tokenizer")
	}
	tokens := tokenizer.Tokenize("port 8080 refused")
	if !reflect.DeepEqual(tokens, []string{"port", "8080", "refused"}) {
		t.Errorf("chained KeepNumeric should retain numbers, got %v", tokens)
	}

	tokenizer.KeepNumeric(false)
	if tokens := tokenizer.Tokenize("port 8080"); !reflect.DeepEqual(tokens, []string{"port"}) {
		t.Errorf("KeepNumeric(false) should drop numbers again, got %v", tokens)
	}
}

func TestTokenizerSingleRune(t *testing.T) {
	tokenizer := NewTokenizer(nil)
	if got := tokenizer.Tokenize("a b c"); len(got) != 0 {
		t.Errorf("single-rune tokens should be dropped, got %v", got)
	}
}

func TestSplitSentences(t *testing.T) {
	cases := []struct {
		in   string
		want []string
	}{
		{"", nil},
		{"hello", []string{"hello"}},
		{"Site is down. Customer upset!! Fixed?", []string{"Site is down.", "Customer upset!!", "Fixed?"}},
		{"Version 2.5 failed. Retry", []string{"Version 2.5 failed.", "Retry"}},
		{"line one\nline two", []string{"line one", "line two"}},
		{"... !!!", nil},
	}
	for _, tc := range cases {
		got := SplitSentences(tc.in)
		if !reflect.DeepEqual(got, tc.want) {
			t.Errorf("SplitSentences(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestStripMarkup(t *testing.T) {
	got := Normalize("<p>Customer&#39;s inbox</p><br>is full &amp; bouncing<script>x()</script>")
	want := "Customer's inbox is full & bouncing"
	if got != want {
		t.Errorf("Normalize = %q, want %q", got, want)
	}

	plain := "no markup here"
	if StripMarkup(plain) != plain {
		t.Error("plain text should pass through unchanged")
	}
}
