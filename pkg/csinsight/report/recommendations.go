package report

// Recommendation is the suggested follow-up for a category.
type Recommendation struct {
	Action         string `yaml:"action" json:"action"`
	ExpectedImpact string `yaml:"expected_impact" json:"expected_impact"`
	Timeline       string `yaml:"timeline" json:"timeline"`
}

// GenericRecommendation applies to categories without an entry.
var GenericRecommendation = Recommendation{
	Action:         "Review the recurring cases with the owning team and document a standard resolution path",
	ExpectedImpact: "Fewer repeat contacts for this category",
	Timeline:       "2-3 months",
}

// DefaultRecommendations returns the built-in per-category lookup.
func DefaultRecommendations() map[string]Recommendation {
	return map[string]Recommendation{
		"email": {
			Action:         "Publish step-by-step mail client setup guides and add deliverability checks to onboarding",
			ExpectedImpact: "Lower volume of delivery and configuration contacts",
			Timeline:       "1-2 months",
		},
		"domain": {
			Action:         "Send proactive renewal reminders and add DNS propagation status to the dashboard",
			ExpectedImpact: "Fewer lapsed domains and DNS confusion tickets",
			Timeline:       "1-2 months",
		},
		"hosting": {
			Action:         "Automate certificate renewal alerts and expose uptime and performance monitoring to customers",
			ExpectedImpact: "Reduced outage and SSL escalations",
			Timeline:       "2-3 months",
		},
		"billing": {
			Action:         "Clarify invoices and renewal pricing and streamline the refund workflow",
			ExpectedImpact: "Fewer billing disputes and faster refunds",
			Timeline:       "1 month",
		},
		"account": {
			Action:         "Improve self-service password reset and add clearer two-factor recovery options",
			ExpectedImpact: "Lower lockout volume and better account security",
			Timeline:       "1-2 months",
		},
	}
}

func lookupRecommendation(recs map[string]Recommendation, category string) Recommendation {
	if r, ok := recs[category]; ok {
		return r
	}
	return GenericRecommendation
}
