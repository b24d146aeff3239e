package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/cognicore/csinsight/internal/events"
	"github.com/cognicore/csinsight/internal/llm"
	"github.com/cognicore/csinsight/internal/logging"
	"github.com/cognicore/csinsight/pkg/csinsight"
	"github.com/cognicore/csinsight/pkg/csinsight/categorize"
	"github.com/cognicore/csinsight/pkg/csinsight/cluster"
	"github.com/cognicore/csinsight/pkg/csinsight/config"
	"github.com/cognicore/csinsight/pkg/csinsight/narrative"
	"github.com/cognicore/csinsight/pkg/csinsight/report"
	"github.com/cognicore/csinsight/pkg/csinsight/stoplist"
	"github.com/cognicore/csinsight/pkg/csinsight/store"
	"github.com/cognicore/csinsight/pkg/csinsight/store/memstore"
	"github.com/cognicore/csinsight/pkg/csinsight/store/sqlite"
	"github.com/cognicore/csinsight/pkg/csinsight/textfeat"
	"github.com/cognicore/csinsight/pkg/csinsight/topics"
)

// settings is the resolved configuration for one command run.
type settings struct {
	app    *config.App
	rules  *config.Rules
	logger *slog.Logger
}

// loadSettings reads the app config, applies flag overrides and loads the
// rule file when one is configured.
func loadSettings(g *globalFlags) (*settings, error) {
	app, err := config.Load(g.configPath)
	if err != nil {
		return nil, err
	}
	if g.rulesPath != "" {
		app.RulesPath = g.rulesPath
	}
	if g.logLevel != "" {
		app.LogLevel = g.logLevel
	}

	s := &settings{app: app, logger: logging.New(app.LogLevel, app.LogFormat)}
	if app.RulesPath != "" {
		rules, err := config.LoadRules(app.RulesPath)
		if err != nil {
			return nil, fmt.Errorf("loading rules: %w", err)
		}
		s.rules = rules
	}
	return s, nil
}

func (s *settings) stopwords() *stoplist.Manager {
	if s.rules == nil {
		return stoplist.NewEnglish()
	}
	return stoplist.NewEnglish(s.rules.Stopwords...)
}

func (s *settings) miner() *topics.Miner {
	return topics.NewMiner(s.stopwords())
}

// buildEngine wires store, events, LLM and report builder from settings.
// The returned cleanup closes everything the engine owns.
func buildEngine(ctx context.Context, s *settings) (*csinsight.Engine, func(), error) {
	classifier, err := categorize.New(s.rules.CategorizerRules())
	if err != nil {
		return nil, nil, err
	}

	st, err := openStore(ctx, s.app)
	if err != nil {
		return nil, nil, fmt.Errorf("opening store: %w", err)
	}

	var pub events.Publisher = events.Nop{}
	if s.app.NATSURL != "" {
		nc, err := events.Connect(ctx, s.app.NATSURL, s.app.NATSToken, s.logger)
		if err != nil {
			st.Close()
			return nil, nil, fmt.Errorf("connecting to nats: %w", err)
		}
		pub = nc
	}

	var client *llm.Client
	if s.app.LLMAPIKey != "" {
		client, err = llm.New(llm.Config{
			BaseURL: s.app.LLMBaseURL,
			APIKey:  s.app.LLMAPIKey,
			Model:   s.app.LLMModel,
			Timeout: s.app.LLMTimeout,
			Logger:  s.logger,
		})
		if err != nil {
			pub.Close()
			st.Close()
			return nil, nil, err
		}
	}

	stops := s.stopwords()
	vec := textfeat.NewVectorizer(stops)
	opts := report.Options{
		Classifier: classifier,
		Miner:      topics.NewMiner(stops),
		Clusterer: &cluster.Engine{
			Threshold:     s.app.SimilarityThreshold,
			Similarity:    vec.Similarity,
			MaxCandidates: s.app.MaxCandidates,
		},
		Recommendations: s.rules.RecommendationTable(),
		TopTopics:       s.app.TopTopics,
		Logger:          s.logger,
	}

	engineOpts := csinsight.Options{
		Store:  st,
		Events: pub,
		Logger: s.logger,
	}
	if client != nil {
		opts.Narrator = narrative.Select(client, s.logger)
		engineOpts.Chat = client
	}
	engineOpts.Builder = report.NewBuilder(opts)

	engine := csinsight.New(engineOpts)
	cleanup := func() {
		if err := engine.Close(); err != nil {
			s.logger.Warn("closing engine", "err", err)
		}
	}
	return engine, cleanup, nil
}

func openStore(ctx context.Context, app *config.App) (store.Store, error) {
	switch app.StoreDriver {
	case config.DriverSQLite:
		return sqlite.Open(ctx, app.StoreDSN)
	default:
		return memstore.New(), nil
	}
}
