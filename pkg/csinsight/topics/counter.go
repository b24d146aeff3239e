package topics

import (
	"sort"
	"strings"
)

// Counter accumulates n-gram document frequencies and occurrence counts
// over a stream of token sequences.
type Counter struct {
	minN, maxN  int
	totalDocs   int
	df          map[string]int
	occurrences map[string]int
}

// NewCounter counts n-grams with minN <= n <= maxN.
func NewCounter(minN, maxN int) *Counter {
	if minN < 1 {
		minN = 1
	}
	if maxN < minN {
		maxN = minN
	}
	return &Counter{
		minN:        minN,
		maxN:        maxN,
		df:          make(map[string]int),
		occurrences: make(map[string]int),
	}
}

// Process consumes one document's tokens.
func (c *Counter) Process(tokens []string) {
	c.totalDocs++
	seen := make(map[string]struct{})
	for n := c.minN; n <= c.maxN; n++ {
		for i := 0; i+n <= len(tokens); i++ {
			gram := strings.Join(tokens[i:i+n], " ")
			c.occurrences[gram]++
			if _, ok := seen[gram]; ok {
				continue
			}
			seen[gram] = struct{}{}
			c.df[gram]++
		}
	}
}

// Stats is a point-in-time copy of the counter.
type Stats struct {
	TotalDocs   int
	DF          map[string]int
	Occurrences map[string]int
}

// Snapshot returns a copy of the accumulated statistics.
func (c *Counter) Snapshot() Stats {
	df := make(map[string]int, len(c.df))
	for k, v := range c.df {
		df[k] = v
	}
	occ := make(map[string]int, len(c.occurrences))
	for k, v := range c.occurrences {
		occ[k] = v
	}
	return Stats{TotalDocs: c.totalDocs, DF: df, Occurrences: occ}
}

// Features returns the n-grams whose document frequency lies in
// [minDF, maxDFRatio*TotalDocs], in lexical order.
func (s Stats) Features(minDF int, maxDFRatio float64) []string {
	maxDF := maxDFRatio * float64(s.TotalDocs)
	if maxDF < float64(minDF) {
		return nil
	}
	var out []string
	for gram, df := range s.DF {
		if df >= minDF && float64(df) <= maxDF {
			out = append(out, gram)
		}
	}
	sort.Strings(out)
	return out
}
