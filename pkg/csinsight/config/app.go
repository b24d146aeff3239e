package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/cognicore/csinsight/pkg/csinsight/internalerr"
)

// Store drivers.
const (
	DriverMemory = "memory"
	DriverSQLite = "sqlite"
)

// App is the service configuration.
type App struct {
	LogLevel  string
	LogFormat string
	Listen    string
	RulesPath string

	SessionTTL  time.Duration
	MaxSessions int

	StoreDriver string
	StoreDSN    string

	LLMBaseURL string
	LLMModel   string
	LLMAPIKey  string
	LLMTimeout time.Duration

	NATSURL   string
	NATSToken string

	SimilarityThreshold float64
	MaxCandidates       int
	TopTopics           int
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
	v.SetDefault("server.listen", ":8080")
	v.SetDefault("server.session_ttl", "30m")
	v.SetDefault("server.max_sessions", 1000)
	v.SetDefault("rules", "")
	v.SetDefault("store.driver", DriverMemory)
	v.SetDefault("store.dsn", "")
	v.SetDefault("llm.base_url", "")
	v.SetDefault("llm.model", "gpt-4o-mini")
	v.SetDefault("llm.api_key", "")
	v.SetDefault("llm.timeout", "30s")
	v.SetDefault("nats.url", "")
	v.SetDefault("nats.token", "")
	v.SetDefault("analysis.similarity_threshold", 0.70)
	v.SetDefault("analysis.max_candidates", 0)
	v.SetDefault("analysis.top_topics", 10)
}

// Load reads configuration from path, or from csinsight.yaml in the working
// directory when path is empty. A missing default file yields defaults.
// CSINSIGHT_* environment variables override file values.
func Load(path string) (*App, error) {
	v := viper.New()
	v.SetConfigType("yaml")
	setDefaults(v)

	v.SetEnvPrefix("CSINSIGHT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	if err := v.BindEnv("llm.api_key", "CSINSIGHT_LLM_API_KEY", "OPENAI_API_KEY"); err != nil {
		return nil, err
	}

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("csinsight")
		v.AddConfigPath(".")
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	cfg := &App{
		LogLevel:            v.GetString("log.level"),
		LogFormat:           v.GetString("log.format"),
		Listen:              v.GetString("server.listen"),
		RulesPath:           v.GetString("rules"),
		SessionTTL:          v.GetDuration("server.session_ttl"),
		MaxSessions:         v.GetInt("server.max_sessions"),
		StoreDriver:         strings.ToLower(v.GetString("store.driver")),
		StoreDSN:            v.GetString("store.dsn"),
		LLMBaseURL:          v.GetString("llm.base_url"),
		LLMModel:            v.GetString("llm.model"),
		LLMAPIKey:           v.GetString("llm.api_key"),
		LLMTimeout:          v.GetDuration("llm.timeout"),
		NATSURL:             v.GetString("nats.url"),
		NATSToken:           v.GetString("nats.token"),
		SimilarityThreshold: v.GetFloat64("analysis.similarity_threshold"),
		MaxCandidates:       v.GetInt("analysis.max_candidates"),
		TopTopics:           v.GetInt("analysis.top_topics"),
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks value ranges.
func (c *App) Validate() error {
	if c.SimilarityThreshold < 0 || c.SimilarityThreshold > 1 {
		return fmt.Errorf("%w: similarity threshold %v outside [0,1]", internalerr.ErrInvalidConfig, c.SimilarityThreshold)
	}
	switch c.StoreDriver {
	case DriverMemory, DriverSQLite:
	default:
		return fmt.Errorf("%w: unknown store driver %q", internalerr.ErrInvalidConfig, c.StoreDriver)
	}
	if c.TopTopics < 0 || c.MaxCandidates < 0 {
		return fmt.Errorf("%w: negative analysis limits", internalerr.ErrInvalidConfig)
	}
	if c.SessionTTL <= 0 || c.MaxSessions <= 0 {
		return fmt.Errorf("%w: session ttl and max sessions must be positive", internalerr.ErrInvalidConfig)
	}
	if c.LLMTimeout <= 0 {
		return fmt.Errorf("%w: llm timeout must be positive", internalerr.ErrInvalidConfig)
	}
	return nil
}
