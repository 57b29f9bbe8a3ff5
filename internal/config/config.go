package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/MikeSquared-Agency/Destinasi/internal/scoring"
)

type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Events   EventsConfig   `yaml:"events"`
	Dataset  DatasetConfig  `yaml:"dataset"`
	Scoring  ScoringConfig  `yaml:"scoring"`
	History  HistoryConfig  `yaml:"history"`
	Logging  LoggingConfig  `yaml:"logging"`
}

type ServerConfig struct {
	Port              int    `yaml:"port"`
	MetricsPort       int    `yaml:"metrics_port"`
	AdminToken        string `yaml:"admin_token"`
	RequestsPerMinute int    `yaml:"requests_per_minute"`
}

type DatabaseConfig struct {
	URL string `yaml:"url"`
}

type EventsConfig struct {
	URL string `yaml:"url"`
}

type DatasetConfig struct {
	Path     string `yaml:"path"`
	IDColumn string `yaml:"id_column"`
}

type ScoringConfig struct {
	DefaultMethod    string             `yaml:"default_method"`
	WeightTolerance  float64            `yaml:"weight_tolerance"`
	DegeneratePolicy string             `yaml:"degenerate_policy"`
	TOPSISWeighted   bool               `yaml:"topsis_weighted"`
	ParetoEnabled    bool               `yaml:"pareto_enabled"`
	DefaultWeights   map[string]float64 `yaml:"default_weights"`
}

type HistoryConfig struct {
	Enabled bool   `yaml:"enabled"`
	Dir     string `yaml:"dir"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// ScoringOptions converts the scoring section into engine options.
func (c *Config) ScoringOptions() (scoring.Options, error) {
	policy, err := scoring.ParseDegeneratePolicy(c.Scoring.DegeneratePolicy)
	if err != nil {
		return scoring.Options{}, err
	}
	return scoring.Options{
		WeightTolerance:  c.Scoring.WeightTolerance,
		DegeneratePolicy: policy,
		TOPSISUnweighted: !c.Scoring.TOPSISWeighted,
	}, nil
}

// Validate checks values that cannot be defaulted.
func (c *Config) Validate() error {
	if _, err := scoring.ParseMethod(c.Scoring.DefaultMethod); err != nil {
		return fmt.Errorf("scoring.default_method: %w", err)
	}
	if _, err := c.ScoringOptions(); err != nil {
		return fmt.Errorf("scoring.degenerate_policy: %w", err)
	}
	if len(c.Scoring.DefaultWeights) > 0 {
		if err := scoring.Weights(c.Scoring.DefaultWeights).Validate(c.Scoring.WeightTolerance); err != nil {
			return fmt.Errorf("scoring.default_weights: %w", err)
		}
	}
	return nil
}

func Load(path string) (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Port:              8700,
			MetricsPort:       8701,
			RequestsPerMinute: 120,
		},
		Dataset: DatasetConfig{
			Path:     "data/destinasi.csv",
			IDColumn: scoring.IDColumn,
		},
		Scoring: ScoringConfig{
			DefaultMethod:    string(scoring.MethodAHP),
			WeightTolerance:  scoring.DefaultWeightTolerance,
			DegeneratePolicy: string(scoring.PolicyFail),
			TOPSISWeighted:   true,
			ParetoEnabled:    true,
		},
		History: HistoryConfig{
			Enabled: true,
			Dir:     "data",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	// yaml.v3 merges into a non-nil map, so defaults go in afterwards.
	if cfg.Scoring.DefaultWeights == nil {
		cfg.Scoring.DefaultWeights = defaultWeights()
	}

	applyEnv(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func defaultWeights() map[string]float64 {
	return map[string]float64{
		"Biaya Harian":          0.20,
		"Biaya Perjalanan":      0.15,
		"Tingkat Keamanan":      0.20,
		"Stabilitas Politik":    0.10,
		"Kemudahan Visa":        0.10,
		"Transportasi Publik":   0.10,
		"Keberagaman Aktivitas": 0.15,
	}
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("DESTINASI_PORT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = n
		}
	}
	if v := os.Getenv("DESTINASI_METRICS_PORT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Server.MetricsPort = n
		}
	}
	if v := os.Getenv("DESTINASI_ADMIN_TOKEN"); v != "" {
		cfg.Server.AdminToken = v
	}
	if v := os.Getenv("DESTINASI_DATABASE_URL"); v != "" {
		cfg.Database.URL = v
	}
	if v := os.Getenv("DESTINASI_EVENTS_URL"); v != "" {
		cfg.Events.URL = v
	}
	if v := os.Getenv("DESTINASI_DATASET_PATH"); v != "" {
		cfg.Dataset.Path = v
	}
	if v := os.Getenv("DESTINASI_DEFAULT_METHOD"); v != "" {
		cfg.Scoring.DefaultMethod = v
	}
	if v := os.Getenv("DESTINASI_DEGENERATE_POLICY"); v != "" {
		cfg.Scoring.DegeneratePolicy = v
	}
	if v := os.Getenv("DESTINASI_TOPSIS_WEIGHTED"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.Scoring.TOPSISWeighted = b
		}
	}
	if v := os.Getenv("DESTINASI_HISTORY_ENABLED"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.History.Enabled = b
		}
	}
	if v := os.Getenv("DESTINASI_HISTORY_DIR"); v != "" {
		cfg.History.Dir = v
	}
	if v := os.Getenv("DESTINASI_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("DESTINASI_LOG_FORMAT"); v != "" {
		cfg.Logging.Format = v
	}
}
