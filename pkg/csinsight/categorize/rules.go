package categorize

// Default category labels.
const (
	CategoryEmail   = "email"
	CategoryDomain  = "domain"
	CategoryHosting = "hosting"
	CategoryBilling = "billing"
	CategoryAccount = "account"
	CategoryOther   = "other"
)

// SubcategoryGeneral is assigned when no sub-rule matches.
const SubcategoryGeneral = "general"

// Severity levels.
type Severity string

const (
	SeverityLow    Severity = "low"
	SeverityMedium Severity = "medium"
	SeverityHigh   Severity = "high"
)

// Rule maps trigger keywords to a category. Sub-rules are checked in order
// once the category matches.
type Rule struct {
	Category string    `yaml:"category" json:"category"`
	Triggers []string  `yaml:"triggers" json:"triggers"`
	Subrules []SubRule `yaml:"subrules" json:"subrules,omitempty"`
}

// SubRule names a subcategory and its keywords.
type SubRule struct {
	Name     string   `yaml:"name" json:"name"`
	Keywords []string `yaml:"keywords" json:"keywords"`
}

// SeverityRule assigns a level when any keyword matches.
type SeverityRule struct {
	Level    Severity `yaml:"level" json:"level"`
	Keywords []string `yaml:"keywords" json:"keywords"`
}

// Rules is the full ordered rule table. First match wins at every level.
type Rules struct {
	Categories      []Rule         `yaml:"categories" json:"categories"`
	Fallback        string         `yaml:"fallback" json:"fallback"`
	Severity        []SeverityRule `yaml:"severity" json:"severity"`
	DefaultSeverity Severity       `yaml:"default_severity" json:"default_severity"`
	Urgency         []string       `yaml:"urgency" json:"urgency"`
}

// DefaultRules returns the built-in support taxonomy.
func DefaultRules() Rules {
	return Rules{
		Categories: []Rule{
			{
				Category: CategoryEmail,
				Triggers: []string{"email", "smtp", "mail", "inbox"},
				Subrules: []SubRule{
					{Name: "delivery", Keywords: []string{"delivery", "bounce"}},
					{Name: "configuration", Keywords: []string{"setup", "configuration"}},
					{Name: "spam", Keywords: []string{"spam", "filter"}},
				},
			},
			{
				Category: CategoryDomain,
				Triggers: []string{"domain", "dns", "nameserver"},
				Subrules: []SubRule{
					{Name: "transfer", Keywords: []string{"transfer"}},
					{Name: "dns", Keywords: []string{"dns", "nameserver"}},
					{Name: "renewal", Keywords: []string{"renew", "expir"}},
				},
			},
			{
				Category: CategoryHosting,
				Triggers: []string{"host", "server", "website", "site", "ssl", "cert"},
				Subrules: []SubRule{
					{Name: "availability", Keywords: []string{"down", "unavailable"}},
					{Name: "performance", Keywords: []string{"slow", "performance"}},
					{Name: "ssl", Keywords: []string{"ssl", "certificate", "cert"}},
				},
			},
			{
				Category: CategoryBilling,
				Triggers: []string{"bill", "payment", "charge", "refund"},
				Subrules: []SubRule{
					{Name: "refund", Keywords: []string{"refund"}},
					{Name: "billing_error", Keywords: []string{"overcharge", "wrong"}},
					{Name: "cancellation", Keywords: []string{"cancel"}},
				},
			},
			{
				Category: CategoryAccount,
				Triggers: []string{"login", "password", "access", "account"},
				Subrules: []SubRule{
					{Name: "password", Keywords: []string{"password", "reset"}},
					{Name: "access", Keywords: []string{"login", "access"}},
					{Name: "security", Keywords: []string{"security", "hack"}},
				},
			},
		},
		Fallback: CategoryOther,
		Severity: []SeverityRule{
			{Level: SeverityHigh, Keywords: []string{"urgent", "critical", "emergency", "immediate", "serious"}},
			{Level: SeverityMedium, Keywords: []string{"important", "significant", "moderate"}},
			{Level: SeverityLow, Keywords: []string{"minor", "small", "trivial"}},
		},
		DefaultSeverity: SeverityMedium,
		Urgency: []string{
			"urgent", "asap", "emergency", "critical", "immediate", "blocking", "production down",
		},
	}
}
