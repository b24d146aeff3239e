package topics

import (
	"fmt"
	"sort"
	"strings"

	"github.com/cognicore/csinsight/pkg/csinsight/ingest"
	"github.com/cognicore/csinsight/pkg/csinsight/internalerr"
	"github.com/cognicore/csinsight/pkg/csinsight/stoplist"
	"github.com/cognicore/csinsight/pkg/csinsight/textfeat"
)

// DefaultTopN is the number of topics returned when topN <= 0.
const DefaultTopN = 10

// DefaultIndicators flag sentences that describe a problem.
var DefaultIndicators = []string{
	"issue", "problem", "error", "difficult", "cant", "can't",
	"fail", "bug", "broken", "slow", "confusing",
}

// Topic is a recurring phrase and how often it appeared.
type Topic struct {
	Phrase string `json:"phrase"`
	Count  int    `json:"count"`
}

// Miner extracts recurring issue phrases from a corpus.
type Miner struct {
	Indicators []string
	MinN, MaxN int
	MinDF      int
	MaxDFRatio float64

	tok *ingest.Tokenizer
}

// NewMiner returns a miner with bigram/trigram counting, min document
// frequency 2 and max document ratio 0.9. Nil stops uses English.
func NewMiner(stops *stoplist.Manager) *Miner {
	if stops == nil {
		stops = stoplist.NewEnglish()
	}
	return &Miner{
		Indicators: DefaultIndicators,
		MinN:       2,
		MaxN:       3,
		MinDF:      2,
		MaxDFRatio: 0.9,
		tok:        ingest.NewTokenizer(stops).KeepNumeric(true),
	}
}

var defaultMiner = NewMiner(nil)

// Mine runs the default miner.
func Mine(texts []string, topN int) []Topic {
	return defaultMiner.Mine(texts, topN)
}

// Mine returns up to topN topics: indicator-sentence key phrases first, then
// frequent n-grams, with counts summed when both sources yield a phrase.
func (m *Miner) Mine(texts []string, topN int) []Topic {
	if topN <= 0 {
		topN = DefaultTopN
	}
	if len(texts) == 0 {
		return []Topic{}
	}

	merged := m.phraseCounts(texts)
	index := make(map[string]int, len(merged))
	for i, t := range merged {
		index[t.Phrase] = i
	}

	grams, err := m.NGrams(texts)
	if err == nil {
		for _, g := range grams {
			if i, ok := index[g.Phrase]; ok {
				merged[i].Count += g.Count
				continue
			}
			index[g.Phrase] = len(merged)
			merged = append(merged, g)
		}
	}

	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].Count > merged[j].Count
	})
	if len(merged) > topN {
		merged = merged[:topN]
	}
	return merged
}

// phraseCounts collects key phrases of every text once per indicator
// sentence, ordered by count desc then first appearance.
func (m *Miner) phraseCounts(texts []string) []Topic {
	var out []Topic
	index := make(map[string]int)
	for _, text := range texts {
		hits := 0
		for _, sentence := range ingest.SplitSentences(text) {
			if m.isIndicator(strings.ToLower(sentence)) {
				hits++
			}
		}
		if hits == 0 {
			continue
		}
		phrases := textfeat.KeyPhrases(text)
		for k := 0; k < hits; k++ {
			for _, p := range phrases {
				if i, ok := index[p]; ok {
					out[i].Count++
					continue
				}
				index[p] = len(out)
				out = append(out, Topic{Phrase: p, Count: 1})
			}
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Count > out[j].Count
	})
	return out
}

func (m *Miner) isIndicator(lowerSentence string) bool {
	lowerSentence = strings.ReplaceAll(lowerSentence, "’", "'")
	for _, ind := range m.Indicators {
		if strings.Contains(lowerSentence, ind) {
			return true
		}
	}
	return false
}

// NGrams counts corpus n-grams within the document-frequency window and
// returns them in lexical order with total occurrence counts. It returns
// ErrNoFeatures when nothing survives.
func (m *Miner) NGrams(texts []string) ([]Topic, error) {
	counter := NewCounter(m.MinN, m.MaxN)
	for _, text := range texts {
		counter.Process(m.tok.Tokenize(text))
	}
	stats := counter.Snapshot()
	features := stats.Features(m.MinDF, m.MaxDFRatio)
	if len(features) == 0 {
		return nil, fmt.Errorf("%w: %d documents", internalerr.ErrNoFeatures, stats.TotalDocs)
	}
	out := make([]Topic, len(features))
	for i, f := range features {
		out[i] = Topic{Phrase: f, Count: stats.Occurrences[f]}
	}
	return out, nil
}
