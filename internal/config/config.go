package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"interview-session-service/internal/domain"
)

// Snapshot store backends.
const (
	StoreMemory   = "memory"
	StoreRedis    = "redis"
	StorePostgres = "postgres"
)

type Config struct {
	Server struct {
		Port           string   `yaml:"port"`
		AllowedOrigins []string `yaml:"allowed_origins"`
	} `yaml:"server"`
	Log struct {
		Level       string `yaml:"level"`
		Development bool   `yaml:"development"`
	} `yaml:"log"`
	Redis struct {
		Addr     string `yaml:"addr"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
		TTL      string `yaml:"ttl"`
	} `yaml:"redis"`
	Postgres struct {
		URL string `yaml:"url"`
	} `yaml:"postgres"`
	Interview struct {
		Workspace    string `yaml:"workspace"`
		Store        string `yaml:"store"`
		TickInterval string `yaml:"tick_interval"`
		// SnapshotTTL expires the persisted state in Redis. Empty or zero
		// keeps it until overwritten.
		SnapshotTTL string `yaml:"snapshot_ttl"`
		Catalog     struct {
			ID        string                      `yaml:"id"`
			TTL       string                      `yaml:"ttl"`
			Questions []domain.QuestionDefinition `yaml:"questions"`
		} `yaml:"catalog"`
	} `yaml:"interview"`
}

// Load reads YAML config from path and fills defaults.
func Load(path string) (Config, error) {
	cfg := Config{}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, err
	}
	cfg.applyDefaults()
	if err := cfg.validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Interview.Workspace == "" {
		c.Interview.Workspace = "default"
	}
	if c.Interview.Store == "" {
		c.Interview.Store = StoreMemory
	}
	if c.Interview.Catalog.ID == "" {
		c.Interview.Catalog.ID = domain.ReferenceCatalogID
	}
}

func (c *Config) validate() error {
	switch c.Interview.Store {
	case StoreMemory:
	case StoreRedis:
		if c.Redis.Addr == "" {
			return fmt.Errorf("interview.store is redis but redis.addr is empty")
		}
	case StorePostgres:
		if c.Postgres.URL == "" {
			return fmt.Errorf("interview.store is postgres but postgres.url is empty")
		}
	default:
		return fmt.Errorf("unknown interview.store %q", c.Interview.Store)
	}
	durations := []struct{ key, raw string }{
		{"redis.ttl", c.Redis.TTL},
		{"interview.tick_interval", c.Interview.TickInterval},
		{"interview.snapshot_ttl", c.Interview.SnapshotTTL},
		{"interview.catalog.ttl", c.Interview.Catalog.TTL},
	}
	for _, d := range durations {
		if d.raw == "" {
			continue
		}
		v, err := time.ParseDuration(d.raw)
		if err != nil {
			return fmt.Errorf("%s: %w", d.key, err)
		}
		if v < 0 {
			return fmt.Errorf("%s: negative duration %q", d.key, d.raw)
		}
	}
	if len(c.Interview.Catalog.Questions) > 0 {
		if err := c.InlineCatalog().Validate(); err != nil {
			return err
		}
	}
	return nil
}

// InlineCatalog returns the catalog declared in the config file, if any.
func (c Config) InlineCatalog() domain.Catalog {
	return domain.Catalog{ID: c.Interview.Catalog.ID, Questions: c.Interview.Catalog.Questions}
}

// TTLDuration parses a duration string or returns the fallback if empty.
func TTLDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}
	if d, err := time.ParseDuration(raw); err == nil {
		return d
	}
	return fallback
}
