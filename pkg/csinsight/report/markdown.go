package report

import (
	"fmt"
	"strings"
)

// Markdown renders the report as a Markdown document.
func (r *Report) Markdown() string {
	var b strings.Builder
	b.WriteString("# Conversation Summary Analysis\n\n")
	fmt.Fprintf(&b, "Records analyzed: %d\n", r.Records)
	if p := strings.TrimSpace(r.Prompt); p != "" {
		b.WriteString("\n")
		for _, line := range strings.Split(p, "\n") {
			fmt.Fprintf(&b, "> %s\n", strings.TrimRight(line, "\r"))
		}
	}

	r.writeQuantitative(&b)
	r.writeTopIssues(&b)
	r.writeRecommendations(&b)

	b.WriteString("\n## What's Working Well\n\n")
	if len(r.WorkingWell) == 0 {
		b.WriteString("- No strongly positive conversations were identified.\n")
	}
	for _, t := range r.WorkingWell {
		fmt.Fprintf(&b, "- %s\n", t)
	}

	b.WriteString("\n## Additional Insights\n\n")
	if len(r.Trends) == 0 {
		b.WriteString("No further categories to report.\n")
	} else {
		b.WriteString("| Category | Key Observations |\n")
		b.WriteString("|----------|------------------|\n")
		for _, t := range r.Trends {
			fmt.Fprintf(&b, "| %s | Most common issue: %s |\n", title(t.Category), humanize(t.CommonIssueType))
		}
	}

	writeList(&b, "Not Found", r.NotFound)
	writeList(&b, "Uncertainties", r.Uncertainties)
	return b.String()
}

func (r *Report) writeQuantitative(b *strings.Builder) {
	b.WriteString("\n## Quantitative Analysis\n\n")
	b.WriteString("### Issue Categories\n\n")
	b.WriteString("| Category | Count | Percentage | Representative Quote |\n")
	b.WriteString("|----------|-------|------------|----------------------|\n")
	for _, row := range r.Categories {
		fmt.Fprintf(b, "| %s | %d | %.1f%% | %s |\n", title(row.Category), row.Count, row.Percentage, cell(row.Quote))
	}

	b.WriteString("\n### Common Topics\n\n")
	if len(r.Topics) == 0 {
		b.WriteString("No recurring topics detected.\n")
	} else {
		b.WriteString("| Topic | Mentions |\n")
		b.WriteString("|-------|----------|\n")
		for _, t := range r.Topics {
			fmt.Fprintf(b, "| %s | %d |\n", cell(t.Phrase), t.Count)
		}
	}

	b.WriteString("\n### Issue Clusters\n")
	for i, c := range r.Clusters {
		fmt.Fprintf(b, "\n#### Issue %d: %d occurrences (%.1f%%)\n\n", i+1, c.Count, c.Percentage)
		fmt.Fprintf(b, "**Main Example:**\n- %s\n", c.MainExample)
		if len(c.SimilarCases) > 0 {
			b.WriteString("\n**Similar Cases:**\n")
			for j, s := range c.SimilarCases {
				fmt.Fprintf(b, "%d. %s\n", j+1, s)
			}
		}
		fmt.Fprintf(b, "\n**Customer Sentiment:** %s\n", c.Sentiment)
	}

	m := r.Metrics
	b.WriteString("\n### Performance Metrics\n\n")
	b.WriteString("| Metric | Value | Notes |\n")
	b.WriteString("|--------|-------|-------|\n")
	fmt.Fprintf(b, "| Average Summary Length | %.1f words | Range %d-%d words |\n", m.AvgWords, m.MinWords, m.MaxWords)
	fmt.Fprintf(b, "| Average Sentences | %.1f | Per summary |\n", m.AvgSentences)
	fmt.Fprintf(b, "| Customer Satisfaction | %s | Based on sentiment analysis |\n", m.Satisfaction)
	fmt.Fprintf(b, "| Subjectivity | %s | Opinion versus fact in summaries |\n", m.Subjectivity)
}

func (r *Report) writeTopIssues(b *strings.Builder) {
	b.WriteString("\n## Top Issues\n")
	for _, is := range r.TopIssues {
		fmt.Fprintf(b, "\n### Issue %d: %s\n\n", is.Rank, issueHeading(is))
		fmt.Fprintf(b, "- **Frequency**: %d occurrences (%.1f%%)\n", is.Count, is.Percentage)
		fmt.Fprintf(b, "- **Severity**: %s - %s\n", is.Severity, bandNotes[is.Severity])
		fmt.Fprintf(b, "- **Impact Scope**: %s Impact - %s\n", is.Impact, impactNotes[is.Impact])
		if is.Urgent {
			fmt.Fprintf(b, "- **Urgent**: yes (%d %s)\n", is.UrgentCount, plural(is.UrgentCount, "case", "cases"))
		} else {
			b.WriteString("- **Urgent**: no\n")
		}
		fmt.Fprintf(b, "- **Customer Sentiment**: %s\n", is.Sentiment)

		b.WriteString("\n**Representative Quotes:**\n")
		for _, q := range is.Quotes {
			fmt.Fprintf(b, "> %s\n", q)
		}
		if len(is.KeyProblems) > 0 {
			b.WriteString("\n**Key Problems:**\n")
			for i, p := range is.KeyProblems {
				fmt.Fprintf(b, "%d. %s (%d similar %s)\n", i+1, p.Example, p.Occurrences,
					plural(p.Occurrences, "occurrence", "occurrences"))
			}
		}
		if is.Narrative != "" {
			fmt.Fprintf(b, "\n**Analysis:**\n%s\n", is.Narrative)
		}
	}
}

func (r *Report) writeRecommendations(b *strings.Builder) {
	b.WriteString("\n## Recommendations\n")
	for _, rec := range r.Recommendations {
		fmt.Fprintf(b, "\n### For %s Issues\n\n", title(rec.Category))
		fmt.Fprintf(b, "- **Action**: %s\n", rec.Action)
		fmt.Fprintf(b, "- **Expected Impact**: %s\n", rec.ExpectedImpact)
		fmt.Fprintf(b, "- **Timeline**: %s\n", rec.Timeline)
	}
}

func writeList(b *strings.Builder, heading string, items []string) {
	fmt.Fprintf(b, "\n## %s\n\n", heading)
	for _, it := range items {
		fmt.Fprintf(b, "- %s\n", it)
	}
}

func issueHeading(is Issue) string {
	sub := strings.TrimPrefix(is.IssueType, is.Category+"_")
	if sub == is.IssueType || sub == "" {
		return title(is.Category)
	}
	return fmt.Sprintf("%s (%s)", title(is.Category), humanize(sub))
}

func humanize(s string) string {
	return strings.ReplaceAll(s, "_", " ")
}

func title(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// cell flattens text for a table cell.
func cell(s string) string {
	s = strings.Join(strings.Fields(s), " ")
	return strings.ReplaceAll(s, "|", `\|`)
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
