package textfeat

import (
	"math"
	"sort"
	"strings"

	"github.com/cognicore/csinsight/pkg/csinsight/ingest"
	"github.com/cognicore/csinsight/pkg/csinsight/stoplist"
)

// snapEpsilon pulls floating noise around 1.0 back to exactly 1.
const snapEpsilon = 1e-9

// Vectorizer computes pairwise TF-IDF cosine similarity over unigrams and
// bigrams with stop words removed.
type Vectorizer struct {
	tok *ingest.Tokenizer
}

// NewVectorizer builds a vectorizer. Nil stops uses the English stoplist.
func NewVectorizer(stops *stoplist.Manager) *Vectorizer {
	if stops == nil {
		stops = stoplist.NewEnglish()
	}
	return &Vectorizer{tok: ingest.NewTokenizer(stops).KeepNumeric(true)}
}

var defaultVectorizer = NewVectorizer(nil)

// Similarity scores a against b with the default English vectorizer.
func Similarity(a, b string) float64 {
	return defaultVectorizer.Similarity(a, b)
}

// Similarity returns the cosine similarity of a and b in [0,1], fitting the
// IDF weights to the two-document corpus {a, b}. When both texts have no
// terms left after filtering it falls back to character-trigram Jaccard.
func (v *Vectorizer) Similarity(a, b string) float64 {
	ta, tb := v.terms(a), v.terms(b)
	if len(ta) == 0 && len(tb) == 0 {
		return snap(trigramJaccard(a, b))
	}
	if len(ta) == 0 || len(tb) == 0 {
		return 0
	}

	wa, wb := tfidf(ta, tb), tfidf(tb, ta)
	keys := make([]string, 0, len(wa))
	for k := range wa {
		if _, ok := wb[k]; ok {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)

	dot := 0.0
	for _, k := range keys {
		dot += wa[k] * wb[k]
	}
	return snap(dot)
}

func (v *Vectorizer) terms(text string) map[string]int {
	tokens := v.tok.Tokenize(text)
	counts := make(map[string]int, len(tokens)*2)
	for i, t := range tokens {
		counts[t]++
		if i > 0 {
			counts[tokens[i-1]+" "+t]++
		}
	}
	return counts
}

// tfidf weights doc against the two-document corpus {doc, other} with
// smoothed idf and returns the l2-normalised vector.
func tfidf(doc, other map[string]int) map[string]float64 {
	const n = 2.0
	keys := make([]string, 0, len(doc))
	for k := range doc {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make(map[string]float64, len(doc))
	norm := 0.0
	for _, k := range keys {
		df := 1.0
		if _, ok := other[k]; ok {
			df = 2.0
		}
		w := float64(doc[k]) * (math.Log((1+n)/(1+df)) + 1)
		out[k] = w
		norm += w * w
	}
	norm = math.Sqrt(norm)
	if norm == 0 {
		return out
	}
	for k, w := range out {
		out[k] = w / norm
	}
	return out
}

func trigramJaccard(a, b string) float64 {
	ga, gb := trigrams(a), trigrams(b)
	if len(ga) == 0 || len(gb) == 0 {
		return 0
	}
	inter := 0
	for g := range ga {
		if _, ok := gb[g]; ok {
			inter++
		}
	}
	union := len(ga) + len(gb) - inter
	return float64(inter) / float64(union)
}

func trigrams(text string) map[string]struct{} {
	norm := []rune(strings.ToLower(ingest.Normalize(text)))
	grams := make(map[string]struct{})
	if len(norm) == 0 {
		return grams
	}
	if len(norm) < 3 {
		grams[string(norm)] = struct{}{}
		return grams
	}
	for i := 0; i+3 <= len(norm); i++ {
		grams[string(norm[i:i+3])] = struct{}{}
	}
	return grams
}

func snap(v float64) float64 {
	if v > 1-snapEpsilon {
		return 1
	}
	return clamp(v, 0, 1)
}
