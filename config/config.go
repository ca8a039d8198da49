package config

import (
	"fmt"
	"os"
	"regexp"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the full application configuration. Every knob the pipeline
// depends on (smoothing constant, winsor window, inference fill
// defaults, split parameters, artifact paths) lives here so tests can
// vary them without process-wide state.
type Config struct {
	Priceflow PriceflowConfig `yaml:"priceflow"`
	Pipeline  PipelineConfig  `yaml:"pipeline"`
	Training  TrainingConfig  `yaml:"training"`
	Storage   StorageConfig   `yaml:"storage"`
	API       APIConfig       `yaml:"api"`
	Logging   LoggingConfig   `yaml:"logging"`
}

type PriceflowConfig struct {
	Name    string `yaml:"name"`
	Version string `yaml:"version"`
}

type PipelineConfig struct {
	// TargetSmoothing is the m constant of the smoothed target encoding:
	// enc = (count*mean + m*global_mean) / (count + m).
	TargetSmoothing float64 `yaml:"target_smoothing"`
	// WinsorLower/WinsorUpper bound the percentile window used to clip
	// monetary columns before the log1p transform.
	WinsorLower float64        `yaml:"winsor_lower"`
	WinsorUpper float64        `yaml:"winsor_upper"`
	Defaults    DefaultsConfig `yaml:"defaults"`
}

// DefaultsConfig holds the values filled into inference payloads for
// required-but-absent fields before the feature chain runs.
type DefaultsConfig struct {
	ListingDuration       time.Duration `yaml:"listing_duration"`
	ListingType           string        `yaml:"listing_type"`
	Currency              string        `yaml:"currency"`
	ShippingCost          float64       `yaml:"shipping_cost"`
	Watchers              int64         `yaml:"watchers"`
	Bids                  int64         `yaml:"bids"`
	SellerFeedbackScore   int64         `yaml:"seller_feedback_score"`
	SellerPositivePercent float64       `yaml:"seller_positive_percent"`
}

type TrainingConfig struct {
	TestSize  float64        `yaml:"test_size"`
	Seed      int64          `yaml:"seed"`
	Threshold float64        `yaml:"threshold"`
	Boosting  BoostingConfig `yaml:"boosting"`
}

type BoostingConfig struct {
	Estimators   int     `yaml:"estimators"`
	LearningRate float64 `yaml:"learning_rate"`
	MaxDepth     int     `yaml:"max_depth"`
}

type StorageConfig struct {
	ProcessedDir string   `yaml:"processed_dir"`
	ArtifactsDir string   `yaml:"artifacts_dir"`
	S3           S3Config `yaml:"s3"`
}

type S3Config struct {
	Enabled         bool   `yaml:"enabled"`
	Bucket          string `yaml:"bucket"`
	Prefix          string `yaml:"prefix"`
	Region          string `yaml:"region"`
	AccessKeyID     string `yaml:"access_key_id"`
	SecretAccessKey string `yaml:"secret_access_key"`
}

type APIConfig struct {
	Enabled bool   `yaml:"enabled"`
	Address string `yaml:"address"`
	// RateLimit is requests per second across all clients; zero disables
	// the limiter.
	RateLimit float64 `yaml:"rate_limit"`
	RateBurst int     `yaml:"rate_burst"`
}

type LoggingConfig struct {
	Level      string           `yaml:"level"`
	Format     string           `yaml:"format"`
	Output     string           `yaml:"output"`
	MaxAge     int              `yaml:"max_age"`
	CloudWatch CloudWatchConfig `yaml:"cloudwatch"`
}

// CloudWatchConfig enables metric publishing from the logger.
type CloudWatchConfig struct {
	Enabled   bool   `yaml:"enabled"`
	Region    string `yaml:"region"`
	Namespace string `yaml:"namespace"`
}

var envPattern = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)\}`)

// expandEnv replaces ${VAR} references with environment values; unset
// variables expand to the empty string.
func expandEnv(raw []byte) []byte {
	return envPattern.ReplaceAllFunc(raw, func(m []byte) []byte {
		name := envPattern.FindSubmatch(m)[1]
		return []byte(os.Getenv(string(name)))
	})
}

// LoadConfig reads, expands and validates a YAML configuration file.
func LoadConfig(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	cfg := &Config{}
	if err := yaml.Unmarshal(expandEnv(raw), cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}

	cfg.applyDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Default returns a configuration with every field at its built-in
// default, usable directly by tests.
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

func (c *Config) applyDefaults() {
	if c.Priceflow.Name == "" {
		c.Priceflow.Name = "priceflow"
	}
	if c.Pipeline.TargetSmoothing == 0 {
		c.Pipeline.TargetSmoothing = 10.0
	}
	if c.Pipeline.WinsorLower == 0 {
		c.Pipeline.WinsorLower = 0.01
	}
	if c.Pipeline.WinsorUpper == 0 {
		c.Pipeline.WinsorUpper = 0.99
	}
	d := &c.Pipeline.Defaults
	if d.ListingDuration == 0 {
		d.ListingDuration = 24 * time.Hour
	}
	if d.ListingType == "" {
		d.ListingType = "Auction"
	}
	if d.Currency == "" {
		d.Currency = "USD"
	}
	if d.SellerPositivePercent == 0 {
		d.SellerPositivePercent = 100.0
	}
	if c.Training.TestSize == 0 {
		c.Training.TestSize = 0.2
	}
	if c.Training.Seed == 0 {
		c.Training.Seed = 42
	}
	if c.Training.Threshold == 0 {
		c.Training.Threshold = 0.5
	}
	if c.Training.Boosting.Estimators == 0 {
		c.Training.Boosting.Estimators = 100
	}
	if c.Training.Boosting.LearningRate == 0 {
		c.Training.Boosting.LearningRate = 0.1
	}
	if c.Training.Boosting.MaxDepth == 0 {
		c.Training.Boosting.MaxDepth = 3
	}
	if c.Storage.ProcessedDir == "" {
		c.Storage.ProcessedDir = "data/processed"
	}
	if c.Storage.ArtifactsDir == "" {
		c.Storage.ArtifactsDir = "data/artifacts/models"
	}
	if c.API.Address == "" {
		c.API.Address = ":8080"
	}
	if c.API.RateBurst == 0 {
		c.API.RateBurst = 20
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Logging.Format == "" {
		c.Logging.Format = "json"
	}
	if c.Logging.Output == "" {
		c.Logging.Output = "stdout"
	}
}

func (c *Config) validate() error {
	if c.Pipeline.WinsorLower < 0 || c.Pipeline.WinsorUpper > 1 ||
		c.Pipeline.WinsorLower >= c.Pipeline.WinsorUpper {
		return fmt.Errorf("invalid winsor window [%v, %v]", c.Pipeline.WinsorLower, c.Pipeline.WinsorUpper)
	}
	if c.Training.TestSize <= 0 || c.Training.TestSize >= 1 {
		return fmt.Errorf("test_size must be in (0, 1), got %v", c.Training.TestSize)
	}
	if c.Storage.S3.Enabled && c.Storage.S3.Bucket == "" {
		return fmt.Errorf("storage.s3.bucket is required when S3 is enabled")
	}
	return nil
}
