// Package cluster groups near-duplicate texts with a greedy single pass.
package cluster

import (
	"sort"

	"github.com/cognicore/csinsight/pkg/csinsight/textfeat"
)

// DefaultThreshold is the similarity a text must exceed to join a cluster.
const DefaultThreshold = 0.70

// SimilarityFunc scores two texts in [0,1].
type SimilarityFunc func(a, b string) float64

// Cluster is a group of near-duplicate texts. Representative is the index of
// the first member.
type Cluster struct {
	Representative int   `json:"representative"`
	Members        []int `json:"members"`
}

// Size is the number of members.
func (c Cluster) Size() int { return len(c.Members) }

// Engine runs greedy clustering.
type Engine struct {
	Threshold  float64
	Similarity SimilarityFunc
	// MaxCandidates limits comparisons to the largest clusters so far.
	// Zero compares against every cluster.
	MaxCandidates int
}

// NewEngine returns an engine with the default threshold and TF-IDF cosine.
func NewEngine() *Engine {
	return &Engine{Threshold: DefaultThreshold, Similarity: textfeat.Similarity}
}

// Cluster assigns each text to the first existing cluster, in creation
// order, whose representative scores strictly above the threshold. Otherwise
// the text starts a new cluster.
func (e *Engine) Cluster(texts []string) []Cluster {
	sim := e.Similarity
	if sim == nil {
		sim = textfeat.Similarity
	}
	var clusters []Cluster
	for i, text := range texts {
		joined := false
		for _, ci := range e.candidates(clusters) {
			if sim(text, texts[clusters[ci].Representative]) > e.Threshold {
				clusters[ci].Members = append(clusters[ci].Members, i)
				joined = true
				break
			}
		}
		if !joined {
			clusters = append(clusters, Cluster{Representative: i, Members: []int{i}})
		}
	}
	return clusters
}

// candidates returns cluster indexes to compare against, in creation order.
func (e *Engine) candidates(clusters []Cluster) []int {
	idx := make([]int, len(clusters))
	for i := range idx {
		idx[i] = i
	}
	if e.MaxCandidates <= 0 || len(clusters) <= e.MaxCandidates {
		return idx
	}
	sort.SliceStable(idx, func(a, b int) bool {
		return clusters[idx[a]].Size() > clusters[idx[b]].Size()
	})
	idx = idx[:e.MaxCandidates]
	sort.Ints(idx)
	return idx
}

// SortBySize orders clusters by size desc, keeping creation order on ties.
func SortBySize(clusters []Cluster) []Cluster {
	out := append([]Cluster(nil), clusters...)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Size() > out[j].Size()
	})
	return out
}

// BestExample returns the longest member text, the earliest on ties.
func BestExample(c Cluster, texts []string) string {
	best := ""
	for _, m := range c.Members {
		if len(texts[m]) > len(best) {
			best = texts[m]
		}
	}
	return best
}
