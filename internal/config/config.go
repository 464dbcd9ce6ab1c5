// Package config loads skillmap settings from defaults, an optional YAML
// file and SKILLMAP_* environment variables, in that order.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/abhisek/skillmap/internal/llm"
)

type Config struct {
	Database  DatabaseConfig  `yaml:"database"`
	LLM       llm.Config      `yaml:"llm"`
	Embedding EmbeddingConfig `yaml:"embedding"`
	Vector    VectorConfig    `yaml:"vector"`
	Oracle    OracleConfig    `yaml:"oracle"`
	Server    ServerConfig    `yaml:"server"`
	Log       LogConfig       `yaml:"log"`
	Matching  MatchingConfig  `yaml:"matching"`
}

type DatabaseConfig struct {
	Driver string `yaml:"driver"` // sqlite or postgres
	DSN    string `yaml:"dsn"`
}

type EmbeddingConfig struct {
	Provider  string        `yaml:"provider"` // hash, openai, gemini
	Model     string        `yaml:"model"`
	Dimension int           `yaml:"dimension"`
	Cache     string        `yaml:"cache"` // none, memory, redis
	RedisURL  string        `yaml:"redis_url"`
	CacheTTL  time.Duration `yaml:"cache_ttl"`
}

type VectorConfig struct {
	Backend    string `yaml:"backend"` // memory or qdrant
	QdrantURL  string `yaml:"qdrant_url"`
	Collection string `yaml:"collection"`
	APIKey     string `yaml:"api_key"`
}

type OracleConfig struct {
	Mode string `yaml:"mode"` // live or fixture
}

type ServerConfig struct {
	Addr        string   `yaml:"addr"`
	CORSOrigins []string `yaml:"cors_origins"`
}

type LogConfig struct {
	Mode       string `yaml:"mode"`
	Level      string `yaml:"level"`
	File       string `yaml:"file"`
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
	MaxAgeDays int    `yaml:"max_age_days"`
	HashIDs    bool   `yaml:"hash_ids"`
}

// MatchingConfig holds the ontology reuse thresholds.
type MatchingConfig struct {
	GoalThreshold     float64 `yaml:"goal_threshold"`
	EmployeeThreshold float64 `yaml:"employee_threshold"`
}

func Default() Config {
	return Config{
		Database:  DatabaseConfig{Driver: "sqlite"},
		LLM:       llm.DefaultConfig(),
		Embedding: EmbeddingConfig{Provider: "hash", Dimension: 256, Cache: "memory", CacheTTL: 24 * time.Hour},
		Vector:    VectorConfig{Backend: "memory", Collection: "skills"},
		Oracle:    OracleConfig{Mode: "live"},
		Server:    ServerConfig{Addr: ":8080", CORSOrigins: []string{"*"}},
		Log:       LogConfig{Mode: "dev", Level: "info"},
		Matching:  MatchingConfig{GoalThreshold: 0.7, EmployeeThreshold: 0.75},
	}
}

// Load builds the configuration. path may be empty; a missing file at an
// explicit path is an error. A .env file in the working directory is
// loaded first when present.
func Load(path string) (Config, error) {
	_ = godotenv.Load()

	cfg := Default()
	if path == "" {
		path = os.Getenv("SKILLMAP_CONFIG")
	}
	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(raw, &cfg); err != nil {
			return cfg, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	applyEnv(&cfg)
	llm.ApplyEnv(&cfg.LLM)

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config) {
	str := func(dst *string, key string) {
		if v := strings.TrimSpace(os.Getenv(key)); v != "" {
			*dst = v
		}
	}
	num := func(dst *int, key string) {
		if v := strings.TrimSpace(os.Getenv(key)); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				*dst = n
			}
		}
	}
	flt := func(dst *float64, key string) {
		if v := strings.TrimSpace(os.Getenv(key)); v != "" {
			if f, err := strconv.ParseFloat(v, 64); err == nil {
				*dst = f
			}
		}
	}

	str(&cfg.Database.Driver, "SKILLMAP_DB_DRIVER")
	str(&cfg.Database.DSN, "SKILLMAP_DB_DSN")
	str(&cfg.Embedding.Provider, "SKILLMAP_EMBEDDING_PROVIDER")
	str(&cfg.Embedding.Model, "SKILLMAP_EMBEDDING_MODEL")
	num(&cfg.Embedding.Dimension, "SKILLMAP_EMBEDDING_DIMENSION")
	str(&cfg.Embedding.Cache, "SKILLMAP_EMBEDDING_CACHE")
	str(&cfg.Embedding.RedisURL, "SKILLMAP_REDIS_URL")
	str(&cfg.Vector.Backend, "SKILLMAP_VECTOR_BACKEND")
	str(&cfg.Vector.QdrantURL, "SKILLMAP_QDRANT_URL")
	str(&cfg.Vector.Collection, "SKILLMAP_QDRANT_COLLECTION")
	str(&cfg.Vector.APIKey, "SKILLMAP_QDRANT_API_KEY")
	str(&cfg.Oracle.Mode, "SKILLMAP_ORACLE_MODE")
	str(&cfg.Server.Addr, "SKILLMAP_ADDR")
	if v := strings.TrimSpace(os.Getenv("SKILLMAP_CORS_ORIGINS")); v != "" {
		cfg.Server.CORSOrigins = splitList(v)
	}
	str(&cfg.Log.Mode, "SKILLMAP_LOG_MODE")
	str(&cfg.Log.Level, "SKILLMAP_LOG_LEVEL")
	str(&cfg.Log.File, "SKILLMAP_LOG_FILE")
	if v := os.Getenv("SKILLMAP_LOG_HASH_IDS"); v != "" {
		cfg.Log.HashIDs, _ = strconv.ParseBool(v)
	}
	flt(&cfg.Matching.GoalThreshold, "SKILLMAP_GOAL_MATCH_THRESHOLD")
	flt(&cfg.Matching.EmployeeThreshold, "SKILLMAP_EMPLOYEE_MATCH_THRESHOLD")
}

func (c Config) Validate() error {
	var errs []error
	switch c.Database.Driver {
	case "sqlite", "postgres":
	default:
		errs = append(errs, fmt.Errorf("database.driver must be sqlite or postgres, got %q", c.Database.Driver))
	}
	if c.Database.Driver == "postgres" && c.Database.DSN == "" {
		errs = append(errs, errors.New("database.dsn is required for postgres"))
	}
	switch c.Embedding.Provider {
	case "hash", "openai", "gemini":
	default:
		errs = append(errs, fmt.Errorf("embedding.provider must be hash, openai or gemini, got %q", c.Embedding.Provider))
	}
	if c.Embedding.Dimension <= 0 {
		errs = append(errs, errors.New("embedding.dimension must be positive"))
	}
	switch c.Embedding.Cache {
	case "", "none", "memory":
	case "redis":
		if c.Embedding.RedisURL == "" {
			errs = append(errs, errors.New("embedding.redis_url is required for the redis cache"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown embedding.cache %q", c.Embedding.Cache))
	}
	switch c.Vector.Backend {
	case "memory":
	case "qdrant":
		if c.Vector.QdrantURL == "" {
			errs = append(errs, errors.New("vector.qdrant_url is required for the qdrant backend"))
		}
	default:
		errs = append(errs, fmt.Errorf("vector.backend must be memory or qdrant, got %q", c.Vector.Backend))
	}
	switch c.Oracle.Mode {
	case "live", "fixture":
	default:
		errs = append(errs, fmt.Errorf("oracle.mode must be live or fixture, got %q", c.Oracle.Mode))
	}
	for name, v := range map[string]float64{
		"matching.goal_threshold":     c.Matching.GoalThreshold,
		"matching.employee_threshold": c.Matching.EmployeeThreshold,
	} {
		if v < -1 || v > 1 {
			errs = append(errs, fmt.Errorf("%s must be in [-1,1], got %g", name, v))
		}
	}
	if err := c.LLM.Validate(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
