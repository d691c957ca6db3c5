package config

import (
	"fmt"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"
)

// Config represents the complete pipeline configuration. Values come
// from defaults, an optional YAML file, and PROPS_* environment
// variables, in increasing order of precedence.
type Config struct {
	Search     SearchConfig    `yaml:"search" envconfig:"SEARCH"`
	Fetcher    FetcherConfig   `yaml:"fetcher" envconfig:"FETCHER"`
	Output     OutputConfig    `yaml:"output" envconfig:"OUTPUT"`
	Thresholds ThresholdConfig `yaml:"thresholds" envconfig:"THRESHOLDS"`
	Logging    LoggingConfig   `yaml:"logging" envconfig:"LOGGING"`
	Paths      PathsConfig     `yaml:"paths" envconfig:"PATHS"`
}

// SearchConfig carries the catalog search parameters. Values outside
// the documented enums are passed through to the URL verbatim; the
// source site is the authority on what is accepted.
type SearchConfig struct {
	PropertyType  string `yaml:"property_type" envconfig:"PROPERTY_TYPE"`
	OperationType string `yaml:"operation_type" envconfig:"OPERATION_TYPE"`
	Location      string `yaml:"location" envconfig:"LOCATION"`
	PriceFrom     int    `yaml:"price_from" envconfig:"PRICE_FROM"`
	PriceTo       int    `yaml:"price_to" envconfig:"PRICE_TO"`
	Currency      string `yaml:"currency" envconfig:"CURRENCY"`
	MaxPages      int    `yaml:"max_pages" envconfig:"MAX_PAGES" validate:"min=1"`
	SortBy        string `yaml:"sort_by" envconfig:"SORT_BY"`
}

// FetcherConfig controls page fetching behavior.
type FetcherConfig struct {
	BaseURL        string        `yaml:"base_url" envconfig:"BASE_URL" validate:"url"`
	MinDelay       time.Duration `yaml:"min_delay" envconfig:"MIN_DELAY"`
	Timeout        time.Duration `yaml:"timeout" envconfig:"TIMEOUT" validate:"min=1ms"`
	MaxAttempts    int           `yaml:"max_attempts" envconfig:"MAX_ATTEMPTS" validate:"min=1"`
	BackoffBase    time.Duration `yaml:"backoff_base" envconfig:"BACKOFF_BASE"`
	BackoffMax     time.Duration `yaml:"backoff_max" envconfig:"BACKOFF_MAX"`
	MaxConcurrency int           `yaml:"max_concurrency" envconfig:"MAX_CONCURRENCY" validate:"min=1"`
	AbortThreshold int           `yaml:"abort_threshold" envconfig:"ABORT_THRESHOLD" validate:"min=1"`
}

// OutputConfig selects which artifact formats the loader writes.
type OutputConfig struct {
	Formats []string `yaml:"formats" envconfig:"FORMATS"`
}

// ThresholdConfig holds the run acceptance thresholds checked by the
// validation stage.
type ThresholdConfig struct {
	MinRecords        int     `yaml:"min_records" envconfig:"MIN_RECORDS" validate:"min=0"`
	MinAverageQuality float64 `yaml:"min_average_quality" envconfig:"MIN_AVERAGE_QUALITY" validate:"min=0,max=100"`
}

// LoggingConfig contains logging configuration.
type LoggingConfig struct {
	Level    string `yaml:"level" envconfig:"LEVEL"`
	Format   string `yaml:"format" envconfig:"FORMAT"`
	Output   string `yaml:"output" envconfig:"OUTPUT"`
	FilePath string `yaml:"file_path" envconfig:"FILE_PATH"`
}

// PathsConfig contains the base directories for artifacts and logs.
type PathsConfig struct {
	DataDir string `yaml:"data_dir" envconfig:"DATA_DIR"`
	LogsDir string `yaml:"logs_dir" envconfig:"LOGS_DIR"`
}

// Load reads configuration from the optional YAML file and PROPS_*
// environment variables, then validates the result.
func Load() (*Config, error) {
	cfg := Default()

	if path := findConfigFile(); path != "" {
		if err := loadFromFile(path, cfg); err != nil {
			return nil, fmt.Errorf("failed to load config from %s: %w", path, err)
		}
	}

	if err := envconfig.Process("PROPS", cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from env: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Default returns the built-in configuration, mirroring the documented
// defaults of the daily run.
func Default() *Config {
	return &Config{
		Search: SearchConfig{
			PropertyType:  "departamentos",
			OperationType: "venta",
			Location:      "capital-federal",
			PriceFrom:     50000,
			PriceTo:       200000,
			Currency:      "dolares",
			MaxPages:      5,
			SortBy:        "masnuevos",
		},
		Fetcher: FetcherConfig{
			BaseURL:        "https://www.argenprop.com",
			MinDelay:       1500 * time.Millisecond,
			Timeout:        15 * time.Second,
			MaxAttempts:    3,
			BackoffBase:    time.Second,
			BackoffMax:     30 * time.Second,
			MaxConcurrency: 1,
			AbortThreshold: 2,
		},
		Output: OutputConfig{
			Formats: []string{"csv", "json", "parquet", "xlsx"},
		},
		Thresholds: ThresholdConfig{
			MinRecords:        1,
			MinAverageQuality: 30,
		},
		Logging: LoggingConfig{
			Level:    "info",
			Format:   "json",
			Output:   "both",
			FilePath: "logs/etl.log",
		},
		Paths: PathsConfig{
			DataDir: "data",
			LogsDir: "logs",
		},
	}
}

// Validate checks structural constraints on the configuration.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return err
	}
	if c.Search.PriceFrom < 0 || (c.Search.PriceTo > 0 && c.Search.PriceTo < c.Search.PriceFrom) {
		return fmt.Errorf("invalid price range: %d-%d", c.Search.PriceFrom, c.Search.PriceTo)
	}
	if c.Fetcher.BackoffMax < c.Fetcher.BackoffBase {
		return fmt.Errorf("backoff_max %s must be >= backoff_base %s", c.Fetcher.BackoffMax, c.Fetcher.BackoffBase)
	}
	for _, f := range c.Output.Formats {
		switch f {
		case "csv", "json", "parquet", "xlsx":
		default:
			return fmt.Errorf("unknown output format: %s", f)
		}
	}
	return nil
}

func loadFromFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, cfg)
}

func findConfigFile() string {
	locations := []string{
		"config.yaml",
		"configs/config.yaml",
	}
	for _, location := range locations {
		if _, err := os.Stat(location); err == nil {
			return location
		}
	}
	return ""
}
