// Package config loads and validates application configuration from YAML files
// with environment-variable overrides. It provides typed structs for every
// subsystem (Server, Catalog, Browse, Postgres, Redis, Kafka, etc.).
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the top-level application configuration.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Catalog  CatalogConfig  `yaml:"catalog"`
	Browse   BrowseConfig   `yaml:"browse"`
	Postgres PostgresConfig `yaml:"postgres"`
	Redis    RedisConfig    `yaml:"redis"`
	Kafka    KafkaConfig    `yaml:"kafka"`
	Logging  LoggingConfig  `yaml:"logging"`
	Metrics  MetricsConfig  `yaml:"metrics"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port            int           `yaml:"port"`
	ReadTimeout     time.Duration `yaml:"readTimeout"`
	WriteTimeout    time.Duration `yaml:"writeTimeout"`
	ShutdownTimeout time.Duration `yaml:"shutdownTimeout"`
}

// CatalogConfig controls where the catalog snapshot is loaded from and how
// locked records resolve their action targets.
type CatalogConfig struct {
	// Source selects the snapshot backend: "file" or "postgres".
	Source          string `yaml:"source"`
	PapersPath      string `yaml:"papersPath"`
	TopicsPath      string `yaml:"topicsPath"`
	CollectionsPath string `yaml:"collectionsPath"`
	BlacklistPath   string `yaml:"blacklistPath"`
	// NoticeTarget is the substitute URL returned for locked records.
	NoticeTarget string `yaml:"noticeTarget"`
	// ReadURL and DownloadURL are templates for unlocked records; the
	// record's source locator replaces the %s verb.
	ReadURL     string `yaml:"readUrl"`
	DownloadURL string `yaml:"downloadUrl"`
}

// BrowseConfig controls the filter pipeline's policy knobs.
type BrowseConfig struct {
	// QueryMode selects multi-word free-text semantics: "or" (any term
	// matches) or "and" (every term must match).
	QueryMode string `yaml:"queryMode"`
	// GroupBy selects the overview grouping: "category", "size", or
	// "collection".
	GroupBy     string `yaml:"groupBy"`
	PageSize    int    `yaml:"pageSize"`
	MaxPageSize int    `yaml:"maxPageSize"`
}

// PostgresConfig holds PostgreSQL connection parameters.
type PostgresConfig struct {
	Host            string        `yaml:"host"`
	Port            int           `yaml:"port"`
	Database        string        `yaml:"database"`
	User            string        `yaml:"user"`
	Password        string        `yaml:"password"`
	SSLMode         string        `yaml:"sslMode"`
	MaxOpenConns    int           `yaml:"maxOpenConns"`
	MaxIdleConns    int           `yaml:"maxIdleConns"`
	ConnMaxLifetime time.Duration `yaml:"connMaxLifetime"`
}

// DSN returns a lib/pq-compatible data source name.
func (p PostgresConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		p.Host, p.Port, p.User, p.Password, p.Database, p.SSLMode,
	)
}

// RedisConfig holds Redis connection and caching parameters.
type RedisConfig struct {
	Addr     string        `yaml:"addr"`
	Password string        `yaml:"password"`
	DB       int           `yaml:"db"`
	PoolSize int           `yaml:"poolSize"`
	CacheTTL time.Duration `yaml:"cacheTTL"`
}

// KafkaConfig holds Kafka broker and topic settings.
type KafkaConfig struct {
	Brokers       []string    `yaml:"brokers"`
	ConsumerGroup string      `yaml:"consumerGroup"`
	Topics        KafkaTopics `yaml:"topics"`
}

// KafkaTopics maps logical topic names to their Kafka topic strings.
type KafkaTopics struct {
	BrowseEvents    string `yaml:"browseEvents"`
	CacheInvalidate string `yaml:"cacheInvalidate"`
}

// LoggingConfig controls structured logging level and output format.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// MetricsConfig controls the Prometheus metrics server.
type MetricsConfig struct {
	Enabled bool `yaml:"enabled"`
	Port    int  `yaml:"port"`
}

// Load reads a YAML config file (if provided) and applies environment-variable
// overrides. It returns a Config populated with sensible defaults for any
// missing values.
func Load(path string) (*Config, error) {
	cfg := defaultConfig()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parsing config file %s: %w", path, err)
		}
	}
	applyEnvOverrides(cfg)
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.Browse.QueryMode {
	case "or", "and":
	default:
		return fmt.Errorf("browse.queryMode must be \"or\" or \"and\", got %q", c.Browse.QueryMode)
	}
	switch c.Browse.GroupBy {
	case "category", "size", "collection":
	default:
		return fmt.Errorf("browse.groupBy must be \"category\", \"size\", or \"collection\", got %q", c.Browse.GroupBy)
	}
	switch c.Catalog.Source {
	case "file", "postgres":
	default:
		return fmt.Errorf("catalog.source must be \"file\" or \"postgres\", got %q", c.Catalog.Source)
	}
	if c.Browse.PageSize < 1 {
		return fmt.Errorf("browse.pageSize must be positive, got %d", c.Browse.PageSize)
	}
	return nil
}

// defaultConfig returns a Config with production-ready defaults for local
// development.
func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            8080,
			ReadTimeout:     30 * time.Second,
			WriteTimeout:    30 * time.Second,
			ShutdownTimeout: 15 * time.Second,
		},
		Catalog: CatalogConfig{
			Source:          "file",
			PapersPath:      "data/papers.json",
			TopicsPath:      "data/topics.json",
			CollectionsPath: "data/collections.json",
			BlacklistPath:   "data/blacklist.json",
			NoticeTarget:    "",
			ReadURL:         "https://drive.google.com/file/d/%s/preview",
			DownloadURL:     "https://drive.google.com/uc?export=download&id=%s",
		},
		Browse: BrowseConfig{
			QueryMode:   "or",
			GroupBy:     "category",
			PageSize:    48,
			MaxPageSize: 200,
		},
		Postgres: PostgresConfig{
			Host:            "localhost",
			Port:            5432,
			Database:        "papershelf",
			User:            "papershelf",
			Password:        "localdev",
			SSLMode:         "disable",
			MaxOpenConns:    25,
			MaxIdleConns:    5,
			ConnMaxLifetime: 5 * time.Minute,
		},
		Redis: RedisConfig{
			Addr:     "localhost:6379",
			Password: "",
			DB:       0,
			PoolSize: 10,
			CacheTTL: 60 * time.Second,
		},
		Kafka: KafkaConfig{
			Brokers:       []string{"localhost:9092"},
			ConsumerGroup: "papershelf-group",
			Topics: KafkaTopics{
				BrowseEvents:    "browse-events",
				CacheInvalidate: "cache-invalidate",
			},
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
		Metrics: MetricsConfig{
			Enabled: true,
			Port:    9090,
		},
	}
}

// applyEnvOverrides reads PS_* environment variables and overrides the
// corresponding config fields.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("PS_SERVER_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		}
	}
	if v := os.Getenv("PS_CATALOG_SOURCE"); v != "" {
		cfg.Catalog.Source = v
	}
	if v := os.Getenv("PS_CATALOG_PAPERS_PATH"); v != "" {
		cfg.Catalog.PapersPath = v
	}
	if v := os.Getenv("PS_CATALOG_TOPICS_PATH"); v != "" {
		cfg.Catalog.TopicsPath = v
	}
	if v := os.Getenv("PS_CATALOG_NOTICE_TARGET"); v != "" {
		cfg.Catalog.NoticeTarget = v
	}
	if v := os.Getenv("PS_BROWSE_QUERY_MODE"); v != "" {
		cfg.Browse.QueryMode = v
	}
	if v := os.Getenv("PS_BROWSE_GROUP_BY"); v != "" {
		cfg.Browse.GroupBy = v
	}
	if v := os.Getenv("PS_BROWSE_PAGE_SIZE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Browse.PageSize = n
		}
	}
	if v := os.Getenv("PS_POSTGRES_HOST"); v != "" {
		cfg.Postgres.Host = v
	}
	if v := os.Getenv("PS_POSTGRES_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Postgres.Port = port
		}
	}
	if v := os.Getenv("PS_POSTGRES_DATABASE"); v != "" {
		cfg.Postgres.Database = v
	}
	if v := os.Getenv("PS_POSTGRES_USER"); v != "" {
		cfg.Postgres.User = v
	}
	if v := os.Getenv("PS_POSTGRES_PASSWORD"); v != "" {
		cfg.Postgres.Password = v
	}
	if v := os.Getenv("PS_POSTGRES_SSLMODE"); v != "" {
		cfg.Postgres.SSLMode = v
	}
	if v := os.Getenv("PS_REDIS_ADDR"); v != "" {
		cfg.Redis.Addr = v
	}
	if v := os.Getenv("PS_REDIS_PASSWORD"); v != "" {
		cfg.Redis.Password = v
	}
	if v := os.Getenv("PS_KAFKA_BROKERS"); v != "" {
		cfg.Kafka.Brokers = strings.Split(v, ",")
	}
	if v := os.Getenv("PS_LOGGING_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("PS_LOGGING_FORMAT"); v != "" {
		cfg.Logging.Format = v
	}
}
