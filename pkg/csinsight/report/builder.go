package report

import (
	"context"
	"crypto/rand"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/oklog/ulid/v2"

	"github.com/cognicore/csinsight/pkg/csinsight/annotate"
	"github.com/cognicore/csinsight/pkg/csinsight/categorize"
	"github.com/cognicore/csinsight/pkg/csinsight/cluster"
	"github.com/cognicore/csinsight/pkg/csinsight/internalerr"
	"github.com/cognicore/csinsight/pkg/csinsight/narrative"
	"github.com/cognicore/csinsight/pkg/csinsight/textfeat"
	"github.com/cognicore/csinsight/pkg/csinsight/topics"
)

// Section sizes.
const (
	DefaultTopIssues   = 3
	DefaultTopTopics   = topics.DefaultTopN
	DefaultTopClusters = 5
	maxQuotes          = 2
	maxKeyProblems     = 3
	maxSimilarCases    = 2
	maxWorkingWell     = 3
	workingWellCutoff  = 0.5
	quoteLimit         = 150
	trendStart         = 3
	trendEnd           = 6
)

// Static closing sections.
var (
	NotFound = []string{
		"Exact resolution times",
		"Customer follow-up data",
	}
	Uncertainties = []string{
		"Root cause determination for complex issues",
		"Long-term impact assessment",
	}
)

// TopicMiner mines recurring phrases.
type TopicMiner interface {
	Mine(texts []string, topN int) []topics.Topic
}

type categoryLister interface {
	Categories() []string
}

// Options configures a Builder. Zero values select defaults.
type Options struct {
	Classifier      annotate.Classifier
	Miner           TopicMiner
	Clusterer       *cluster.Engine
	Narrator        narrative.Generator
	Recommendations map[string]Recommendation
	TopIssues       int
	TopTopics       int
	TopClusters     int
	Logger          *slog.Logger
	Now             func() time.Time
}

// Builder assembles reports.
type Builder struct {
	pipeline   *annotate.Pipeline
	order      map[string]int
	miner      TopicMiner
	clusterer  *cluster.Engine
	narrator   narrative.Generator
	recs       map[string]Recommendation
	topIssues  int
	topTopics  int
	topCluster int
	logger     *slog.Logger
	now        func() time.Time

	mu      sync.Mutex
	entropy *ulid.MonotonicEntropy
}

// NewBuilder returns a builder with opts applied over the defaults.
func NewBuilder(opts Options) *Builder {
	if opts.Classifier == nil {
		opts.Classifier = categorize.NewDefault()
	}
	b := &Builder{
		pipeline:   annotate.NewPipeline(opts.Classifier),
		order:      make(map[string]int),
		miner:      opts.Miner,
		clusterer:  opts.Clusterer,
		narrator:   opts.Narrator,
		recs:       opts.Recommendations,
		topIssues:  opts.TopIssues,
		topTopics:  opts.TopTopics,
		topCluster: opts.TopClusters,
		logger:     opts.Logger,
		now:        opts.Now,
		entropy:    ulid.Monotonic(rand.Reader, 0),
	}
	if l, ok := opts.Classifier.(categoryLister); ok {
		for i, c := range l.Categories() {
			b.order[c] = i
		}
	}
	if b.miner == nil {
		b.miner = topics.NewMiner(nil)
	}
	if b.clusterer == nil {
		b.clusterer = cluster.NewEngine()
	}
	if b.narrator == nil {
		b.narrator = narrative.Heuristic{}
	}
	if b.recs == nil {
		b.recs = DefaultRecommendations()
	}
	if b.topIssues <= 0 {
		b.topIssues = DefaultTopIssues
	}
	if b.topTopics <= 0 {
		b.topTopics = DefaultTopTopics
	}
	if b.topCluster <= 0 {
		b.topCluster = DefaultTopClusters
	}
	if b.logger == nil {
		b.logger = slog.Default()
	}
	if b.now == nil {
		b.now = time.Now
	}
	return b
}

// Build analyses texts and returns the report. Empty and whitespace-only
// texts are ignored; ErrNoData is returned when none remain.
func (b *Builder) Build(ctx context.Context, texts []string, prompt string) (*Report, error) {
	records := b.pipeline.Annotate(texts)
	if len(records) == 0 {
		return nil, internalerr.ErrNoData
	}
	cleaned := annotate.Texts(records)
	total := len(records)

	rep := &Report{
		ID:            b.newID(),
		GeneratedAt:   b.now().UTC(),
		Prompt:        prompt,
		Records:       total,
		NotFound:      append([]string(nil), NotFound...),
		Uncertainties: append([]string(nil), Uncertainties...),
	}

	groups := b.groupCategories(records)
	rep.Categories = categoryTable(groups, total)
	rep.Topics = b.miner.Mine(cleaned, b.topTopics)
	if rep.Topics == nil {
		rep.Topics = []topics.Topic{}
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	rep.Clusters = b.clusterSummaries(cleaned, records)
	metrics, err := buildMetrics(cleaned, records)
	if err != nil {
		return nil, fmt.Errorf("metrics: %w", err)
	}
	rep.Metrics = metrics
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	ranked := rankCategories(groups)
	for i, g := range ranked {
		if i >= b.topIssues {
			break
		}
		issue, err := b.buildIssue(ctx, i+1, g, total)
		if err != nil {
			return nil, fmt.Errorf("top issue %s: %w", g.name, err)
		}
		rep.TopIssues = append(rep.TopIssues, issue)
		rep.Recommendations = append(rep.Recommendations, RecommendationEntry{
			Category:       g.name,
			Recommendation: lookupRecommendation(b.recs, g.name),
		})
	}

	rep.WorkingWell = workingWell(records)
	for i := trendStart; i < trendEnd && i < len(ranked); i++ {
		rep.Trends = append(rep.Trends, Trend{
			Category:        ranked[i].name,
			Count:           len(ranked[i].records),
			CommonIssueType: ranked[i].dominantIssueType(),
		})
	}

	b.logger.Debug("report built", "id", rep.ID, "records", total, "categories", len(groups))
	return rep, nil
}

func (b *Builder) newID() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return ulid.MustNew(ulid.Timestamp(b.now()), b.entropy).String()
}

type categoryGroup struct {
	name    string
	records []annotate.Record
	urgent  int
	meanPol float64
}

func (g categoryGroup) dominantIssueType() string {
	order, groups := annotate.Group(g.records, annotate.ByIssueType)
	best := ""
	for _, k := range order {
		if best == "" || len(groups[k]) > len(groups[best]) {
			best = k
		}
	}
	return best
}

// groupCategories buckets records by category in rule order. Categories the
// classifier does not list follow in first-seen order.
func (b *Builder) groupCategories(records []annotate.Record) []categoryGroup {
	order, byCat := annotate.Group(records, annotate.ByCategory)
	sort.SliceStable(order, func(i, j int) bool {
		return b.rank(order[i]) < b.rank(order[j])
	})
	out := make([]categoryGroup, 0, len(order))
	for _, name := range order {
		recs := byCat[name]
		g := categoryGroup{name: name, records: recs}
		sum := 0.0
		for _, r := range recs {
			if r.Annotation.Urgent {
				g.urgent++
			}
			sum += r.Sentiment.Polarity
		}
		g.meanPol = sum / float64(len(recs))
		out = append(out, g)
	}
	return out
}

func (b *Builder) rank(category string) int {
	if i, ok := b.order[category]; ok {
		return i
	}
	return len(b.order)
}

func categoryTable(groups []categoryGroup, total int) []CategoryRow {
	rows := make([]CategoryRow, len(groups))
	for i, g := range groups {
		rows[i] = CategoryRow{
			Category:   g.name,
			Count:      len(g.records),
			Percentage: percent(len(g.records), total),
			Quote:      truncate(longest(annotate.Texts(g.records)), quoteLimit),
		}
	}
	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].Count > rows[j].Count
	})
	return rows
}

// rankCategories orders by frequency, then urgent count, then the most
// negative mean polarity.
func rankCategories(groups []categoryGroup) []categoryGroup {
	out := append([]categoryGroup(nil), groups...)
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if len(a.records) != len(b.records) {
			return len(a.records) > len(b.records)
		}
		if a.urgent != b.urgent {
			return a.urgent > b.urgent
		}
		return a.meanPol < b.meanPol
	})
	return out
}

func (b *Builder) buildIssue(ctx context.Context, rank int, g categoryGroup, total int) (Issue, error) {
	texts := annotate.Texts(g.records)
	pct := percent(len(g.records), total)
	issue := Issue{
		Rank:         rank,
		Category:     g.name,
		IssueType:    g.dominantIssueType(),
		Count:        len(g.records),
		Percentage:   pct,
		Severity:     SeverityBand(pct),
		Impact:       ImpactBand(pct),
		UrgentCount:  g.urgent,
		Urgent:       g.urgent > 0,
		MeanPolarity: g.meanPol,
		Sentiment:    textfeat.SentimentLabel(g.meanPol),
		Quotes:       quotes(texts, maxQuotes),
	}

	clusters := cluster.SortBySize(b.clusterer.Cluster(texts))
	for i, c := range clusters {
		if i >= maxKeyProblems {
			break
		}
		issue.KeyProblems = append(issue.KeyProblems, Problem{
			Example:     cluster.BestExample(c, texts),
			Occurrences: c.Size(),
		})
	}

	text, err := b.narrator.Narrate(ctx, narrative.Issue{
		Category:    g.name,
		IssueType:   issue.IssueType,
		Count:       issue.Count,
		Total:       total,
		Percentage:  pct,
		Severity:    issue.Severity,
		Impact:      issue.Impact,
		UrgentCount: issue.UrgentCount,
		Sentiment:   issue.Sentiment,
		Examples:    texts,
	})
	if err != nil {
		return Issue{}, err
	}
	issue.Narrative = text
	return issue, nil
}

func (b *Builder) clusterSummaries(texts []string, records []annotate.Record) []ClusterSummary {
	clusters := cluster.SortBySize(b.clusterer.Cluster(texts))
	var out []ClusterSummary
	for i, c := range clusters {
		if i >= b.topCluster {
			break
		}
		sum := 0.0
		for _, m := range c.Members {
			sum += records[m].Sentiment.Polarity
		}
		cs := ClusterSummary{
			Count:       c.Size(),
			Percentage:  percent(c.Size(), len(texts)),
			MainExample: texts[c.Representative],
			Sentiment:   textfeat.SentimentLabel(sum / float64(c.Size())),
		}
		for _, m := range c.Members[1:] {
			if len(cs.SimilarCases) == maxSimilarCases {
				break
			}
			cs.SimilarCases = append(cs.SimilarCases, texts[m])
		}
		out = append(out, cs)
	}
	return out
}

func buildMetrics(texts []string, records []annotate.Record) (Metrics, error) {
	st, err := textfeat.Stats(texts)
	if err != nil {
		return Metrics{}, err
	}
	var pol, subj float64
	for _, r := range records {
		pol += r.Sentiment.Polarity
		subj += r.Sentiment.Subjectivity
	}
	n := float64(len(records))
	return Metrics{
		AvgWords:        st.AvgWords,
		StdWords:        st.StdWords,
		AvgSentences:    st.AvgSentences,
		MinWords:        st.MinWords,
		MaxWords:        st.MaxWords,
		AvgPolarity:     pol / n,
		Satisfaction:    textfeat.SentimentLabel(pol / n),
		AvgSubjectivity: subj / n,
		Subjectivity:    textfeat.SubjectivityLabel(subj / n),
	}, nil
}

func workingWell(records []annotate.Record) []string {
	out := []string{}
	for _, r := range records {
		if r.Sentiment.Polarity > workingWellCutoff {
			out = append(out, truncate(r.Text, quoteLimit))
			if len(out) == maxWorkingWell {
				break
			}
		}
	}
	return out
}

// quotes returns up to n texts, longest first, stable on ties.
func quotes(texts []string, n int) []string {
	sorted := append([]string(nil), texts...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return len(sorted[i]) > len(sorted[j])
	})
	if len(sorted) > n {
		sorted = sorted[:n]
	}
	return sorted
}

func longest(texts []string) string {
	best := ""
	for _, t := range texts {
		if len(t) > len(best) {
			best = t
		}
	}
	return best
}

func percent(count, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(count) / float64(total) * 100
}

// truncate cuts s to limit runes, marking the cut with "...".
func truncate(s string, limit int) string {
	if utf8.RuneCountInString(s) <= limit {
		return s
	}
	return string([]rune(s)[:limit]) + "..."
}
