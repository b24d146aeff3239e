package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/cognicore/csinsight/pkg/csinsight/categorize"
	"github.com/cognicore/csinsight/pkg/csinsight/internalerr"
	"github.com/cognicore/csinsight/pkg/csinsight/report"
)

// Rules is the YAML rule file. Omitted sections keep the built-in tables.
type Rules struct {
	Categories      []categorize.Rule                `yaml:"categories"`
	Fallback        string                           `yaml:"fallback"`
	Severity        []categorize.SeverityRule        `yaml:"severity"`
	DefaultSeverity categorize.Severity              `yaml:"default_severity"`
	Urgency         []string                         `yaml:"urgency"`
	Recommendations map[string]report.Recommendation `yaml:"recommendations"`
	Stopwords       []string                         `yaml:"stopwords"`
}

// LoadRules loads a rule file from path.
func LoadRules(path string) (*Rules, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var r Rules
	if err := yaml.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", internalerr.ErrInvalidConfig, path, err)
	}
	return &r, nil
}

// CategorizerRules merges the file over categorize.DefaultRules.
func (r *Rules) CategorizerRules() categorize.Rules {
	out := categorize.DefaultRules()
	if r == nil {
		return out
	}
	if len(r.Categories) > 0 {
		out.Categories = r.Categories
	}
	if r.Fallback != "" {
		out.Fallback = r.Fallback
	}
	if len(r.Severity) > 0 {
		out.Severity = r.Severity
	}
	if r.DefaultSeverity != "" {
		out.DefaultSeverity = r.DefaultSeverity
	}
	if len(r.Urgency) > 0 {
		out.Urgency = r.Urgency
	}
	return out
}

// RecommendationTable overlays file entries on the built-in lookup.
func (r *Rules) RecommendationTable() map[string]report.Recommendation {
	out := report.DefaultRecommendations()
	if r == nil {
		return out
	}
	for k, v := range r.Recommendations {
		out[k] = v
	}
	return out
}
