// Package report aggregates annotated summaries into the analysis report.
package report

import (
	"encoding/json"
	"time"

	"github.com/invopop/jsonschema"

	"github.com/cognicore/csinsight/pkg/csinsight/topics"
)

// Report is the structured analysis of one dataset.
type Report struct {
	ID              string                `json:"id" jsonschema:"description=ULID of this report"`
	GeneratedAt     time.Time             `json:"generated_at"`
	Prompt          string                `json:"prompt,omitempty"`
	Records         int                   `json:"records"`
	Categories      []CategoryRow         `json:"categories"`
	Topics          []topics.Topic        `json:"topics"`
	Clusters        []ClusterSummary      `json:"clusters"`
	Metrics         Metrics               `json:"metrics"`
	TopIssues       []Issue               `json:"top_issues"`
	Recommendations []RecommendationEntry `json:"recommendations"`
	WorkingWell     []string              `json:"working_well"`
	Trends          []Trend               `json:"trends"`
	NotFound        []string              `json:"not_found"`
	Uncertainties   []string              `json:"uncertainties"`
}

// CategoryRow is one line of the category distribution table.
type CategoryRow struct {
	Category   string  `json:"category"`
	Count      int     `json:"count"`
	Percentage float64 `json:"percentage"`
	Quote      string  `json:"quote"`
}

// ClusterSummary describes a group of near-duplicate summaries.
type ClusterSummary struct {
	Count        int      `json:"count"`
	Percentage   float64  `json:"percentage"`
	MainExample  string   `json:"main_example"`
	SimilarCases []string `json:"similar_cases,omitempty"`
	Sentiment    string   `json:"sentiment"`
}

// Metrics are corpus-wide length and sentiment figures.
type Metrics struct {
	AvgWords        float64 `json:"avg_words"`
	StdWords        float64 `json:"std_words"`
	AvgSentences    float64 `json:"avg_sentences"`
	MinWords        int     `json:"min_words"`
	MaxWords        int     `json:"max_words"`
	AvgPolarity     float64 `json:"avg_polarity"`
	Satisfaction    string  `json:"satisfaction"`
	AvgSubjectivity float64 `json:"avg_subjectivity"`
	Subjectivity    string  `json:"subjectivity"`
}

// Issue is one ranked category in the top issues section.
type Issue struct {
	Rank         int       `json:"rank"`
	Category     string    `json:"category"`
	IssueType    string    `json:"issue_type"`
	Count        int       `json:"count"`
	Percentage   float64   `json:"percentage"`
	Severity     string    `json:"severity" jsonschema:"enum=Critical,enum=High,enum=Medium,enum=Low"`
	Impact       string    `json:"impact" jsonschema:"enum=Global,enum=Wide,enum=Moderate,enum=Limited"`
	UrgentCount  int       `json:"urgent_count"`
	Urgent       bool      `json:"urgent"`
	MeanPolarity float64   `json:"mean_polarity"`
	Sentiment    string    `json:"sentiment"`
	Quotes       []string  `json:"quotes"`
	KeyProblems  []Problem `json:"key_problems"`
	Narrative    string    `json:"narrative"`
}

// Problem is a recurring complaint inside a category.
type Problem struct {
	Example     string `json:"example"`
	Occurrences int    `json:"occurrences"`
}

// RecommendationEntry pairs a category with its recommended action.
type RecommendationEntry struct {
	Category string `json:"category"`
	Recommendation
}

// Trend summarises a lower-ranked category.
type Trend struct {
	Category        string `json:"category"`
	Count           int    `json:"count"`
	CommonIssueType string `json:"common_issue_type"`
}

// Band labels.
const (
	SeverityCritical = "Critical"
	SeverityHigh     = "High"
	SeverityMedium   = "Medium"
	SeverityLow      = "Low"

	ImpactGlobal   = "Global"
	ImpactWide     = "Wide"
	ImpactModerate = "Moderate"
	ImpactLimited  = "Limited"
)

// SeverityBand maps an occurrence percentage to a severity label.
func SeverityBand(pct float64) string {
	switch {
	case pct >= 50:
		return SeverityCritical
	case pct >= 25:
		return SeverityHigh
	case pct >= 10:
		return SeverityMedium
	}
	return SeverityLow
}

// ImpactBand maps an occurrence percentage to an impact scope label.
func ImpactBand(pct float64) string {
	switch {
	case pct >= 75:
		return ImpactGlobal
	case pct >= 50:
		return ImpactWide
	case pct >= 25:
		return ImpactModerate
	}
	return ImpactLimited
}

var bandNotes = map[string]string{
	SeverityCritical: "Affects majority of users",
	SeverityHigh:     "Affects significant portion of users",
	SeverityMedium:   "Affects moderate number of users",
	SeverityLow:      "Affects small number of users",
}

var impactNotes = map[string]string{
	ImpactGlobal:   "Affects most users",
	ImpactWide:     "Affects many users",
	ImpactModerate: "Affects some users",
	ImpactLimited:  "Affects few users",
}

// Schema returns the JSON schema of Report.
func Schema() ([]byte, error) {
	reflector := jsonschema.Reflector{
		AllowAdditionalProperties: false,
		DoNotReference:            true,
	}
	schema := reflector.Reflect(&Report{})
	schema.Title = "Conversation Summary Analysis"
	return json.MarshalIndent(schema, "", "  ")
}
