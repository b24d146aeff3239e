package textfeat

import (
	"math"
	"sort"
	"strings"

	"github.com/cognicore/csinsight/pkg/csinsight/ingest"
	"github.com/cognicore/csinsight/pkg/csinsight/internalerr"
)

// TextStats summarises length over a corpus.
type TextStats struct {
	AvgWords     float64 `json:"avg_words"`
	StdWords     float64 `json:"std_words"`
	AvgSentences float64 `json:"avg_sentences"`
	StdSentences float64 `json:"std_sentences"`
	MinWords     int     `json:"min_words"`
	MaxWords     int     `json:"max_words"`
}

// WordCount counts whitespace-separated words.
func WordCount(text string) int {
	return len(strings.Fields(text))
}

// Stats computes population statistics for texts.
func Stats(texts []string) (TextStats, error) {
	if len(texts) == 0 {
		return TextStats{}, internalerr.ErrEmptyCorpus
	}
	words := make([]float64, len(texts))
	sentences := make([]float64, len(texts))
	st := TextStats{MinWords: math.MaxInt}
	for i, t := range texts {
		wc := WordCount(t)
		words[i] = float64(wc)
		sentences[i] = float64(len(ingest.SplitSentences(t)))
		if wc < st.MinWords {
			st.MinWords = wc
		}
		if wc > st.MaxWords {
			st.MaxWords = wc
		}
	}
	st.AvgWords, st.StdWords = meanStd(words)
	st.AvgSentences, st.StdSentences = meanStd(sentences)
	return st, nil
}

func meanStd(xs []float64) (float64, float64) {
	sum := 0.0
	for _, x := range xs {
		sum += x
	}
	mean := sum / float64(len(xs))
	variance := 0.0
	for _, x := range xs {
		d := x - mean
		variance += d * d
	}
	return mean, math.Sqrt(variance / float64(len(xs)))
}

// RepresentativeSamples picks up to n texts spread across the word-count
// distribution. When there are n or fewer texts all are returned.
func RepresentativeSamples(texts []string, n int) []string {
	if n <= 0 {
		return nil
	}
	if len(texts) <= n {
		return append([]string(nil), texts...)
	}
	idx := make([]int, len(texts))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(i, j int) bool {
		return WordCount(texts[idx[i]]) < WordCount(texts[idx[j]])
	})
	step := len(texts) / n
	out := make([]string, 0, n)
	for i := 0; i < len(idx) && len(out) < n; i += step {
		out = append(out, texts[idx[i]])
	}
	return out
}
