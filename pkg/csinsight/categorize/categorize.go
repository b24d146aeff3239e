package categorize

import (
	"fmt"
	"sort"
	"strings"

	"github.com/cognicore/csinsight/pkg/csinsight/internalerr"
)

// Annotation is the classification of a single summary.
type Annotation struct {
	Category        string   `json:"category"`
	Subcategory     string   `json:"subcategory"`
	IssueType       string   `json:"issue_type"`
	Severity        Severity `json:"severity"`
	Urgent          bool     `json:"urgent"`
	MatchedKeywords []string `json:"matched_keywords,omitempty"`
}

// Categorizer evaluates an ordered rule table against text.
type Categorizer struct {
	rules Rules
	order []string
}

// New validates rules and returns a categorizer.
func New(rules Rules) (*Categorizer, error) {
	if len(rules.Categories) == 0 {
		return nil, fmt.Errorf("%w: no categories", internalerr.ErrInvalidConfig)
	}
	if rules.Fallback == "" {
		rules.Fallback = CategoryOther
	}
	if rules.DefaultSeverity == "" {
		rules.DefaultSeverity = SeverityMedium
	}
	rules.Categories = append([]Rule(nil), rules.Categories...)
	rules.Severity = append([]SeverityRule(nil), rules.Severity...)
	seen := make(map[string]bool, len(rules.Categories)+1)
	order := make([]string, 0, len(rules.Categories)+1)
	for i, r := range rules.Categories {
		name := strings.TrimSpace(r.Category)
		if name == "" {
			return nil, fmt.Errorf("%w: category %d has no name", internalerr.ErrInvalidConfig, i)
		}
		if len(r.Triggers) == 0 {
			return nil, fmt.Errorf("%w: category %q has no triggers", internalerr.ErrInvalidConfig, name)
		}
		if seen[name] {
			return nil, fmt.Errorf("%w: duplicate category %q", internalerr.ErrInvalidConfig, name)
		}
		seen[name] = true
		order = append(order, name)
		rules.Categories[i] = lowerRule(r)
	}
	if !seen[rules.Fallback] {
		order = append(order, rules.Fallback)
	}
	for i, s := range rules.Severity {
		rules.Severity[i].Keywords = lowerAll(s.Keywords)
	}
	rules.Urgency = lowerAll(rules.Urgency)
	return &Categorizer{rules: rules, order: order}, nil
}

// NewDefault returns a categorizer over DefaultRules.
func NewDefault() *Categorizer {
	c, err := New(DefaultRules())
	if err != nil {
		panic(err)
	}
	return c
}

// Categories lists category labels in rule order, fallback last.
func (c *Categorizer) Categories() []string {
	return append([]string(nil), c.order...)
}

// Rules returns a copy of the active rule table.
func (c *Categorizer) Rules() Rules {
	return c.rules
}

// Categorize classifies text. Matching is case-insensitive substring search.
func (c *Categorizer) Categorize(text string) Annotation {
	lower := strings.ToLower(text)
	ann := Annotation{
		Category:    c.rules.Fallback,
		Subcategory: SubcategoryGeneral,
		Severity:    c.rules.DefaultSeverity,
		Urgent:      len(matchAll(lower, c.rules.Urgency)) > 0,
	}

	for _, rule := range c.rules.Categories {
		hits := matchAll(lower, rule.Triggers)
		if len(hits) == 0 {
			continue
		}
		ann.Category = rule.Category
		for _, sub := range rule.Subrules {
			if subHits := matchAll(lower, sub.Keywords); len(subHits) > 0 {
				ann.Subcategory = sub.Name
				hits = append(hits, subHits...)
				break
			}
		}
		ann.MatchedKeywords = dedupeSorted(hits)
		break
	}

	for _, s := range c.rules.Severity {
		if len(matchAll(lower, s.Keywords)) > 0 {
			ann.Severity = s.Level
			break
		}
	}

	ann.IssueType = ann.Category + "_" + ann.Subcategory
	return ann
}

func matchAll(lower string, keywords []string) []string {
	var hits []string
	for _, kw := range keywords {
		if kw != "" && strings.Contains(lower, kw) {
			hits = append(hits, kw)
		}
	}
	return hits
}

func dedupeSorted(words []string) []string {
	sort.Strings(words)
	out := words[:0]
	for _, w := range words {
		if len(out) > 0 && out[len(out)-1] == w {
			continue
		}
		out = append(out, w)
	}
	return out
}

func lowerRule(r Rule) Rule {
	out := Rule{
		Category: strings.TrimSpace(r.Category),
		Triggers: lowerAll(r.Triggers),
		Subrules: make([]SubRule, len(r.Subrules)),
	}
	for i, s := range r.Subrules {
		out.Subrules[i] = SubRule{Name: s.Name, Keywords: lowerAll(s.Keywords)}
	}
	return out
}

func lowerAll(words []string) []string {
	out := make([]string, 0, len(words))
	for _, w := range words {
		if w = strings.ToLower(strings.TrimSpace(w)); w != "" {
			out = append(out, w)
		}
	}
	return out
}
