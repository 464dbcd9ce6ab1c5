package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/abhisek/skillmap/internal/assessment"
	"github.com/abhisek/skillmap/internal/config"
	"github.com/abhisek/skillmap/internal/embedding"
	"github.com/abhisek/skillmap/internal/gaps"
	"github.com/abhisek/skillmap/internal/irt"
	"github.com/abhisek/skillmap/internal/llm"
	"github.com/abhisek/skillmap/internal/logger"
	"github.com/abhisek/skillmap/internal/ontology"
	"github.com/abhisek/skillmap/internal/oracle"
	"github.com/abhisek/skillmap/internal/pathplan"
	"github.com/abhisek/skillmap/internal/store"
	"github.com/abhisek/skillmap/internal/vector"
)

// env holds everything a command needs. Commands that only read the
// database use openStore instead.
type env struct {
	cfg   config.Config
	log   *logger.Logger
	store *store.Store

	oracle  oracle.ContentOracle
	vectors vector.Store

	assessments *assessment.Engine
	proficiency *irt.Estimator
	gaps        *gaps.Scorer
	paths       *pathplan.Scheduler
	ontology    *ontology.Matcher
}

func (e *env) Close() {
	if e.store != nil {
		e.store.Close()
	}
	e.log.Sync()
}

func loadConfig(cmd *cobra.Command) (config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return cfg, fmt.Errorf("load config: %w", err)
	}
	if p, _ := cmd.Flags().GetString("db"); p != "" {
		cfg.Database.Driver = "sqlite"
		cfg.Database.DSN = p
	}
	return cfg, nil
}

// openStore resolves the database in priority order: --db flag,
// database.dsn, then SKILLMAP_DB or the default XDG path.
func openStore(cfg config.Config) (*store.Store, error) {
	dsn := cfg.Database.DSN
	if cfg.Database.Driver == "sqlite" {
		if dsn == "" {
			p, err := store.DefaultDBPath()
			if err != nil {
				return nil, fmt.Errorf("resolve DB path: %w", err)
			}
			dsn = p
		} else if err := store.EnsureDir(dsn); err != nil {
			return nil, fmt.Errorf("create DB dir: %w", err)
		}
	}
	st, err := store.Open(cfg.Database.Driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	return st, nil
}

func newLogger(cfg config.Config) (*logger.Logger, error) {
	return logger.New(logger.Options{
		Mode:       cfg.Log.Mode,
		Level:      cfg.Log.Level,
		File:       cfg.Log.File,
		MaxSizeMB:  cfg.Log.MaxSizeMB,
		MaxBackups: cfg.Log.MaxBackups,
		MaxAgeDays: cfg.Log.MaxAgeDays,
		HashIDs:    cfg.Log.HashIDs,
	})
}

// openEnv opens the store and builds the services.
func openEnv(cmd *cobra.Command) (*env, error) {
	ctx := cmd.Context()
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	log, err := newLogger(cfg)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}
	e := &env{cfg: cfg, log: log}

	e.store, err = openStore(cfg)
	if err != nil {
		e.Close()
		return nil, err
	}

	switch cfg.Oracle.Mode {
	case "fixture":
		e.oracle = oracle.NewFixture()
	default:
		provider, err := llm.NewProvider(ctx, cfg.LLM, e.store.LLMCalls(), log)
		if err != nil {
			if !errors.Is(err, llm.ErrNotConfigured) {
				e.Close()
				return nil, err
			}
			fmt.Fprintln(os.Stderr, "LLM provider not configured:", err)
			fmt.Fprintln(os.Stderr, "AI features will be unavailable.")
		}
		ocfg := oracle.DefaultConfig()
		if cfg.LLM.Timeout > 0 {
			ocfg.Timeout = cfg.LLM.Timeout
		}
		e.oracle = oracle.NewLive(provider, ocfg, log)
	}

	embedder, err := embedding.New(ctx, embeddingOptions(cfg), log)
	if err != nil {
		e.Close()
		return nil, fmt.Errorf("init embedder: %w", err)
	}

	switch cfg.Vector.Backend {
	case "qdrant":
		q, err := vector.NewQdrant(log, vector.QdrantConfig{
			URL:        cfg.Vector.QdrantURL,
			Collection: cfg.Vector.Collection,
			APIKey:     cfg.Vector.APIKey,
			Dimension:  embedder.Dimension(),
		})
		if err != nil {
			e.Close()
			return nil, err
		}
		if err := q.EnsureCollection(ctx); err != nil {
			e.Close()
			return nil, fmt.Errorf("ensure qdrant collection: %w", err)
		}
		e.vectors = q
	default:
		e.vectors = vector.NewMemory()
	}

	e.proficiency = irt.NewEstimator(e.store.Employees(), log)
	e.assessments = assessment.NewEngine(e.store, e.oracle, log)
	e.gaps = gaps.NewScorer(e.store, e.vectors, e.oracle, log)
	e.paths = pathplan.NewScheduler(e.store, e.gaps, e.oracle, log)
	e.ontology = ontology.NewMatcher(e.store, e.vectors, embedder, e.oracle, log).
		WithThresholds(cfg.Matching.GoalThreshold, cfg.Matching.EmployeeThreshold)

	// The in-memory index starts empty in every process.
	if cfg.Vector.Backend != "qdrant" {
		if _, err := e.ontology.Reindex(ctx); err != nil {
			e.Close()
			return nil, fmt.Errorf("warm vector index: %w", err)
		}
	}
	return e, nil
}

func embeddingOptions(cfg config.Config) embedding.Options {
	opts := embedding.Options{
		Provider:  cfg.Embedding.Provider,
		Model:     cfg.Embedding.Model,
		Dimension: cfg.Embedding.Dimension,
		Cache:     cfg.Embedding.Cache,
		RedisURL:  cfg.Embedding.RedisURL,
		CacheTTL:  cfg.Embedding.CacheTTL,
	}
	switch cfg.Embedding.Provider {
	case "openai":
		opts.APIKey = cfg.LLM.OpenAI.APIKey
		opts.BaseURL = cfg.LLM.OpenAI.BaseURL
	case "gemini":
		opts.APIKey = cfg.LLM.Gemini.APIKey
	}
	return opts
}
