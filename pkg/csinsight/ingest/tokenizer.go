package ingest

import (
	"strings"
	"unicode"

	"github.com/cognicore/csinsight/pkg/csinsight/stoplist"
)

// Tokenizer handles text tokenization and normalization
type Tokenizer struct {
	stops       *stoplist.Manager
	keepNumeric bool
}

// NewTokenizer creates a new tokenizer with the given stoplist.
// A nil stoplist disables stop-word filtering.
func NewTokenizer(stops *stoplist.Manager) *Tokenizer {
	if stops == nil {
		stops = stoplist.NewManager(nil)
	}
	return &Tokenizer{stops: stops}
}

// KeepNumeric controls whether pure-numeric tokens such as "404" survive.
// It returns t so it can be chained after NewTokenizer.
func (t *Tokenizer) KeepNumeric(keep bool) *Tokenizer {
	t.keepNumeric = keep
	return t
}

// Stoplist exposes the stop words used by the tokenizer.
func (t *Tokenizer) Stoplist() *stoplist.Manager {
	return t.stops
}

// Tokenize splits text into normalized tokens, removing stopwords.
func (t *Tokenizer) Tokenize(text string) []string {
	words := Words(text)
	tokens := words[:0]
	for _, w := range words {
		if word := t.processToken(w); word != "" {
			tokens = append(tokens, word)
		}
	}
	return tokens
}

// processToken applies length, numeric and stopword filtering.
func (t *Tokenizer) processToken(word string) string {
	if len([]rune(word)) <= 1 {
		return ""
	}

	// Mixed tokens like "http2", "tls-1" are kept.
	if !t.keepNumeric && isNumericOnly(word) {
		return ""
	}

	if t.stops.IsStop(word) {
		return ""
	}
	return word
}

// Words splits text into lower-cased words without stop-word filtering.
// Letters, digits, inner hyphens and inner apostrophes form words, so
// "can't" and "e-mail" survive as single words.
func Words(text string) []string {
	var words []string
	var current strings.Builder

	flush := func() {
		if current.Len() == 0 {
			return
		}
		if word := cleanToken(current.String()); word != "" {
			words = append(words, word)
		}
		current.Reset()
	}

	for _, r := range text {
		switch {
		case unicode.IsLetter(r) || unicode.IsNumber(r) || r == '-' || r == '_':
			current.WriteRune(unicode.ToLower(r))
		case r == '\'' || r == '’':
			current.WriteRune('\'')
		default:
			flush()
		}
	}
	flush()

	return words
}

// cleanToken strips leading/trailing hyphens and apostrophes and normalizes
// consecutive hyphens
func cleanToken(token string) string {
	token = strings.Trim(token, "-'")

	for strings.Contains(token, "--") {
		token = strings.ReplaceAll(token, "--", "-")
	}

	return token
}

// isNumericOnly returns true if the token contains only digits and hyphens.
func isNumericOnly(s string) bool {
	for _, r := range s {
		if !unicode.IsDigit(r) && r != '-' {
			return false
		}
	}
	return true
}
