package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/cognicore/csinsight/pkg/csinsight/categorize"
	"github.com/cognicore/csinsight/pkg/csinsight/internalerr"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadRules(t *testing.T) {
	path := writeFile(t, "rules.yaml", `categories:
  - category: shipping
    triggers: [parcel, courier]
    subrules:
      - name: delay
        keywords: [late, delay]
urgency: [asap]
recommendations:
  shipping:
    action: Partner with a second courier
    expected_impact: Fewer late parcels
    timeline: 1 quarter
stopwords: [parcel]
`)
	r, err := LoadRules(path)
	if err != nil {
		t.Fatalf("LoadRules: %v", err)
	}
	rules := r.CategorizerRules()
	if len(rules.Categories) != 1 || rules.Categories[0].Category != "shipping" {
		t.Fatalf("categories = %+v", rules.Categories)
	}
	if len(rules.Severity) == 0 || rules.Fallback != categorize.CategoryOther {
		t.Fatalf("omitted sections should keep defaults: %+v", rules)
	}
	c, err := categorize.New(rules)
	if err != nil {
		t.Fatalf("categorize.New: %v", err)
	}
	got := c.Categorize("Courier is late, need it ASAP")
	if got.IssueType != "shipping_delay" || !got.Urgent {
		t.Fatalf("got %+v", got)
	}

	recs := r.RecommendationTable()
	if recs["shipping"].Timeline != "1 quarter" || recs["billing"].Action == "" {
		t.Fatalf("recommendations = %+v", recs)
	}
	if len(r.Stopwords) != 1 || r.Stopwords[0] != "parcel" {
		t.Fatalf("stopwords = %v", r.Stopwords)
	}
}

func TestLoadRulesErrors(t *testing.T) {
	if _, err := LoadRules(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatal("expected error for missing file")
	}
	bad := writeFile(t, "bad.yaml", "categories: [unterminated")
	if _, err := LoadRules(bad); !errors.Is(err, internalerr.ErrInvalidConfig) {
		t.Fatalf("expected ErrInvalidConfig, got %v", err)
	}
}

func TestNilRulesUseDefaults(t *testing.T) {
	var r *Rules
	if len(r.CategorizerRules().Categories) != 5 {
		t.Fatal("nil rules should return defaults")
	}
	if _, ok := r.RecommendationTable()["hosting"]; !ok {
		t.Fatal("nil rules should return default recommendations")
	}
}

func TestLoadDefaults(t *testing.T) {
	t.Chdir(t.TempDir())
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Listen != ":8080" || cfg.StoreDriver != DriverMemory || cfg.SimilarityThreshold != 0.70 {
		t.Fatalf("unexpected defaults %+v", cfg)
	}
	if cfg.LLMTimeout != 30*time.Second || cfg.TopTopics != 10 {
		t.Fatalf("unexpected defaults %+v", cfg)
	}
	if cfg.SessionTTL != 30*time.Minute || cfg.MaxSessions != 1000 {
		t.Fatalf("session limits = %v %d", cfg.SessionTTL, cfg.MaxSessions)
	}
}

func TestLoadFileAndEnv(t *testing.T) {
	path := writeFile(t, "csinsight.yaml", `log:
  level: debug
server:
  listen: ":9090"
  session_ttl: 5m
  max_sessions: 50
store:
  driver: sqlite
analysis:
  similarity_threshold: 0.8
  top_topics: 5
llm:
  timeout: 5s
`)
	t.Setenv("CSINSIGHT_SERVER_LISTEN", ":7070")
	t.Setenv("OPENAI_API_KEY", "sk-test")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.LogLevel != "debug" || cfg.StoreDriver != DriverSQLite || cfg.SimilarityThreshold != 0.8 || cfg.TopTopics != 5 {
		t.Fatalf("file values not applied: %+v", cfg)
	}
	if cfg.Listen != ":7070" {
		t.Fatalf("env override not applied: %q", cfg.Listen)
	}
	if cfg.SessionTTL != 5*time.Minute || cfg.MaxSessions != 50 {
		t.Fatalf("session limits = %v %d", cfg.SessionTTL, cfg.MaxSessions)
	}
	if cfg.LLMAPIKey != "sk-test" || cfg.LLMTimeout != 5*time.Second {
		t.Fatalf("llm settings = %q %v", cfg.LLMAPIKey, cfg.LLMTimeout)
	}
}

func TestLoadValidation(t *testing.T) {
	path := writeFile(t, "csinsight.yaml", "analysis:\n  similarity_threshold: 1.5\n")
	if _, err := Load(path); !errors.Is(err, internalerr.ErrInvalidConfig) {
		t.Fatalf("expected ErrInvalidConfig, got %v", err)
	}
	path = writeFile(t, "csinsight.yaml", "store:\n  driver: redis\n")
	if _, err := Load(path); !errors.Is(err, internalerr.ErrInvalidConfig) {
		t.Fatalf("expected ErrInvalidConfig, got %v", err)
	}
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatal("explicit missing file should fail")
	}
}
