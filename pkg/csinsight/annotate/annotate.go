// Package annotate turns raw summaries into classified, scored records.
package annotate

import (
	"github.com/cognicore/csinsight/pkg/csinsight/categorize"
	"github.com/cognicore/csinsight/pkg/csinsight/ingest"
	"github.com/cognicore/csinsight/pkg/csinsight/textfeat"
)

// Classifier assigns a category annotation to a text.
type Classifier interface {
	Categorize(text string) categorize.Annotation
}

// Record is one non-empty summary with its derived features.
type Record struct {
	Index      int                   `json:"index"`
	Text       string                `json:"text"`
	Annotation categorize.Annotation `json:"annotation"`
	Sentiment  textfeat.Score        `json:"sentiment"`
	Words      int                   `json:"words"`
}

// Pipeline annotates corpora with a classifier and the sentiment lexicon.
type Pipeline struct {
	classifier Classifier
}

// NewPipeline returns a pipeline. Nil classifier uses the default rules.
func NewPipeline(c Classifier) *Pipeline {
	if c == nil {
		c = categorize.NewDefault()
	}
	return &Pipeline{classifier: c}
}

// Clean normalises texts (markup stripped, entities unescaped, whitespace
// collapsed) and drops empty ones, preserving order.
func Clean(texts []string) []string {
	out := make([]string, 0, len(texts))
	for _, t := range texts {
		if t = ingest.Normalize(t); t != "" {
			out = append(out, t)
		}
	}
	return out
}

// Annotate classifies and scores each non-empty text. Index refers to the
// position in the cleaned corpus.
func (p *Pipeline) Annotate(texts []string) []Record {
	cleaned := Clean(texts)
	out := make([]Record, len(cleaned))
	for i, t := range cleaned {
		out[i] = Record{
			Index:      i,
			Text:       t,
			Annotation: p.classifier.Categorize(t),
			Sentiment:  textfeat.Sentiment(t),
			Words:      textfeat.WordCount(t),
		}
	}
	return out
}

// Texts extracts record texts.
func Texts(records []Record) []string {
	out := make([]string, len(records))
	for i, r := range records {
		out[i] = r.Text
	}
	return out
}

// Group buckets records by key, returning keys in first-seen order.
func Group(records []Record, key func(Record) string) ([]string, map[string][]Record) {
	var order []string
	groups := make(map[string][]Record)
	for _, r := range records {
		k := key(r)
		if _, ok := groups[k]; !ok {
			order = append(order, k)
		}
		groups[k] = append(groups[k], r)
	}
	return order, groups
}

// ByCategory keys records by category.
func ByCategory(r Record) string { return r.Annotation.Category }

// ByIssueType keys records by issue type.
func ByIssueType(r Record) string { return r.Annotation.IssueType }
