// Package narrative produces the prose analysis attached to each top issue.
package narrative

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
)

// Issue is the profile of one top issue handed to a generator.
type Issue struct {
	Category    string   `json:"category"`
	IssueType   string   `json:"issue_type"`
	Count       int      `json:"count"`
	Total       int      `json:"total"`
	Percentage  float64  `json:"percentage"`
	Severity    string   `json:"severity"`
	Impact      string   `json:"impact"`
	UrgentCount int      `json:"urgent_count"`
	Sentiment   string   `json:"sentiment"`
	Examples    []string `json:"examples"`
}

// Generator writes a narrative for an issue.
type Generator interface {
	Narrate(ctx context.Context, issue Issue) (string, error)
}

// Heuristic builds a deterministic narrative from the issue profile.
type Heuristic struct{}

// Narrate implements Generator.
func (Heuristic) Narrate(_ context.Context, issue Issue) (string, error) {
	var b strings.Builder
	fmt.Fprintf(&b, "%s issues appear in %d of %d conversations (%.1f%%).",
		title(issue.Category), issue.Count, issue.Total, issue.Percentage)
	if sub := subcategory(issue); sub != "" {
		fmt.Fprintf(&b, " Most of them concern %s.", sub)
	}
	switch issue.UrgentCount {
	case 0:
		b.WriteString(" None were flagged urgent.")
	case 1:
		b.WriteString(" 1 case was flagged urgent.")
	default:
		fmt.Fprintf(&b, " %d cases were flagged urgent.", issue.UrgentCount)
	}
	if issue.Sentiment != "" {
		fmt.Fprintf(&b, " Customer sentiment is %s.", strings.ToLower(issue.Sentiment))
	}
	return b.String(), nil
}

func subcategory(issue Issue) string {
	sub := strings.TrimPrefix(issue.IssueType, issue.Category+"_")
	if sub == issue.IssueType || sub == "general" {
		return ""
	}
	return strings.ReplaceAll(sub, "_", " ")
}

func title(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// Completer is the chat collaborator used by LLM.
type Completer interface {
	Complete(ctx context.Context, system, user string) (string, error)
}

// DefaultMaxExamples bounds the examples sent in one prompt.
const DefaultMaxExamples = 5

const systemPrompt = `You are an expert business analyst specializing in customer service analytics. Your analysis must:
1. Use clear section headers with ### for major sections
2. Provide specific, actionable insights
3. Include quantitative metrics whenever possible
4. Support findings with specific examples and quotes
5. Be thorough but concise in each section`

// LLM asks a chat model for the narrative.
type LLM struct {
	Client      Completer
	MaxExamples int
}

// Narrate sends the issue profile and examples to the model.
func (g LLM) Narrate(ctx context.Context, issue Issue) (string, error) {
	if g.Client == nil {
		return "", errors.New("narrative: no llm client")
	}
	prompt, err := g.prompt(issue)
	if err != nil {
		return "", err
	}
	out, err := g.Client.Complete(ctx, systemPrompt, prompt)
	if err != nil {
		return "", fmt.Errorf("narrative: %w", err)
	}
	out = strings.TrimSpace(out)
	if out == "" {
		return "", errors.New("narrative: empty completion")
	}
	return out, nil
}

func (g LLM) prompt(issue Issue) (string, error) {
	limit := g.MaxExamples
	if limit <= 0 {
		limit = DefaultMaxExamples
	}
	examples := issue.Examples
	if len(examples) > limit {
		examples = examples[:limit]
	}
	raw, err := json.MarshalIndent(examples, "", "  ")
	if err != nil {
		return "", err
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Analyze these customer service issues in the %s category.\n\n", issue.Category)
	fmt.Fprintf(&b, "Frequency: %d of %d conversations (%.1f%%)\n", issue.Count, issue.Total, issue.Percentage)
	fmt.Fprintf(&b, "Severity: %s\nImpact: %s\nUrgent cases: %d\n\n", issue.Severity, issue.Impact, issue.UrgentCount)
	b.WriteString("Cover the problem profile, root causes, customer impact and immediate actions.\n\n")
	fmt.Fprintf(&b, "Issues to analyze:\n%s\n", raw)
	return b.String(), nil
}

// Fallback tries Primary and uses Secondary when it fails.
type Fallback struct {
	Primary   Generator
	Secondary Generator
	Logger    *slog.Logger
}

// Narrate implements Generator.
func (f Fallback) Narrate(ctx context.Context, issue Issue) (string, error) {
	if f.Primary != nil {
		out, err := f.Primary.Narrate(ctx, issue)
		if err == nil {
			return out, nil
		}
		if f.Logger != nil {
			f.Logger.Warn("narrative fallback", "category", issue.Category, "error", err)
		}
	}
	secondary := f.Secondary
	if secondary == nil {
		secondary = Heuristic{}
	}
	return secondary.Narrate(ctx, issue)
}

// Select returns a Fallback over the LLM when client is set, else Heuristic.
func Select(client Completer, logger *slog.Logger) Generator {
	if client == nil {
		return Heuristic{}
	}
	return Fallback{Primary: LLM{Client: client}, Secondary: Heuristic{}, Logger: logger}
}
