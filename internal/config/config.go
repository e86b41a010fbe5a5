// Package config loads the service configuration from config/{ENV}.yaml.
package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds the NMR backend configuration.
type Config struct {
	HTTP        HTTPConfig        `yaml:"http"`
	Database    DatabaseConfig    `yaml:"database"`
	Storage     StorageConfig     `yaml:"storage"`
	ObjectStore ObjectStoreConfig `yaml:"object_store"`
	Engine      EngineConfig      `yaml:"engine"`
	Media       MediaConfig       `yaml:"media"`
	Features    FeaturesConfig    `yaml:"features"`
	Auth        AuthConfig        `yaml:"auth"`
	Logging     LoggingConfig     `yaml:"logging"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error (default: determined by env)
}

// AuthConfig holds API authentication settings.
type AuthConfig struct {
	APIKeys []string `yaml:"api_keys"`
}

// HTTPConfig holds HTTP server settings.
type HTTPConfig struct {
	Port            int `yaml:"port"`
	ReadTimeoutSec  int `yaml:"read_timeout_sec"`
	WriteTimeoutSec int `yaml:"write_timeout_sec"` // 0 disables, videos stream for long
	ShutdownSec     int `yaml:"shutdown_timeout_sec"`
}

// DatabaseConfig holds the descriptor store connection.
type DatabaseConfig struct {
	Addrs            []string `yaml:"addrs"`
	Username         string   `yaml:"username"`
	Password         string   `yaml:"password"`
	DB               int      `yaml:"db"`
	ReadinessTimeout int      `yaml:"readiness_timeout_sec"`
}

// StorageConfig holds the key layout.
type StorageConfig struct {
	Schema    string `yaml:"schema"`
	KeyPrefix string `yaml:"key_prefix"` // default: "{schema}:"
}

// ObjectStoreConfig holds the S3-compatible asset store.
type ObjectStoreConfig struct {
	Endpoint     string `yaml:"endpoint"`
	AccessKey    string `yaml:"access_key"`
	SecretKey    string `yaml:"secret_key"`
	Region       string `yaml:"region"`
	UseSSL       bool   `yaml:"use_ssl"`
	AssetsBucket string `yaml:"assets_bucket"`
}

// EngineConfig holds the pipeline engine connection.
type EngineConfig struct {
	Address        string `yaml:"address"`
	Namespace      string `yaml:"namespace"`
	TaskQueue      string `yaml:"task_queue"`
	Workflow       string `yaml:"workflow"`
	DialTimeoutSec int    `yaml:"dial_timeout_sec"`
}

// MediaConfig holds the local media and thumbnail settings.
type MediaConfig struct {
	Root            string `yaml:"root"`
	Thumbnails      string `yaml:"thumbnails"`
	ThumbnailSize   int    `yaml:"thumbnail_size"`
	JPEGQuality     int    `yaml:"jpeg_quality"`
	FFmpeg          string `yaml:"ffmpeg"`
	FrameTimeoutSec int    `yaml:"frame_timeout_sec"`
}

// FeaturesConfig holds the descriptor entities and the text encoder.
type FeaturesConfig struct {
	ClipDimensions  int             `yaml:"clip_dimensions"`
	ClipDistance    string          `yaml:"clip_distance"` // COSINE, IP, L2
	HNSWM           int             `yaml:"hnsw_m"`
	HNSWEFConstruct int             `yaml:"hnsw_ef_construction"`
	AutoCreateIndex bool            `yaml:"auto_create_index"`
	Extractor       ExtractorConfig `yaml:"extractor"`
}

// ExtractorConfig holds the CLIP text encoder. An empty BaseURL disables
// semantic text queries.
type ExtractorConfig struct {
	BaseURL    string `yaml:"base_url"`
	APIKey     string `yaml:"api_key"`
	Model      string `yaml:"model"`
	TimeoutSec int    `yaml:"timeout_sec"`
	// Query vectors are cached in the store for this long. Negative disables the cache.
	CacheTTLSec int `yaml:"cache_ttl_sec"`
}

// Load reads configuration from a YAML file by environment name (local, dev, prod).
func Load(env string) (Config, error) {
	configPath := findConfigPath(env)

	data, err := os.ReadFile(filepath.Clean(configPath))
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", configPath, err)
	}
	return Parse(data)
}

// Parse decodes YAML, expands ${VAR} references, applies defaults and validates.
func Parse(data []byte) (Config, error) {
	data = expandEnvVars(data)

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// GetEnv returns the current environment from the ENV variable, defaulting to "local".
func GetEnv() string {
	if env := os.Getenv("ENV"); env != "" {
		return env
	}
	return "local"
}

// ApplyDefaults fills empty fields with default values.
func (c *Config) ApplyDefaults() {
	if c.HTTP.Port == 0 {
		c.HTTP.Port = 7070
	}
	if c.HTTP.ReadTimeoutSec <= 0 {
		c.HTTP.ReadTimeoutSec = 30
	}
	if c.HTTP.ShutdownSec <= 0 {
		c.HTTP.ShutdownSec = 10
	}
	if c.Database.ReadinessTimeout <= 0 {
		c.Database.ReadinessTimeout = 10
	}
	if c.Storage.Schema == "" {
		c.Storage.Schema = "xreco"
	}
	if c.Storage.KeyPrefix == "" {
		c.Storage.KeyPrefix = c.Storage.Schema + ":"
	}
	if c.ObjectStore.AssetsBucket == "" {
		c.ObjectStore.AssetsBucket = "assets"
	}
	if c.Engine.Namespace == "" {
		c.Engine.Namespace = "default"
	}
	if c.Engine.TaskQueue == "" {
		c.Engine.TaskQueue = "nmr-ingest"
	}
	if c.Engine.Workflow == "" {
		c.Engine.Workflow = "IngestWorkflow"
	}
	if c.Engine.DialTimeoutSec <= 0 {
		c.Engine.DialTimeoutSec = 5
	}
	if c.Media.Root == "" {
		c.Media.Root = "."
	}
	if c.Media.Thumbnails == "" {
		c.Media.Thumbnails = "../thumbnails"
	}
	if c.Media.ThumbnailSize <= 0 {
		c.Media.ThumbnailSize = 320
	}
	if c.Media.JPEGQuality <= 0 {
		c.Media.JPEGQuality = 85
	}
	if c.Media.FFmpeg == "" {
		c.Media.FFmpeg = "ffmpeg"
	}
	if c.Media.FrameTimeoutSec <= 0 {
		c.Media.FrameTimeoutSec = 20
	}
	if c.Features.ClipDimensions <= 0 {
		c.Features.ClipDimensions = 512
	}
	if c.Features.ClipDistance == "" {
		c.Features.ClipDistance = "COSINE"
	}
	c.Features.ClipDistance = strings.ToUpper(c.Features.ClipDistance)
	if c.Features.HNSWM <= 0 {
		c.Features.HNSWM = 16
	}
	if c.Features.HNSWEFConstruct <= 0 {
		c.Features.HNSWEFConstruct = 200
	}
	if c.Features.Extractor.Model == "" {
		c.Features.Extractor.Model = "clip-vit-base-patch32"
	}
	if c.Features.Extractor.TimeoutSec <= 0 {
		c.Features.Extractor.TimeoutSec = 10
	}
	if c.Features.Extractor.CacheTTLSec == 0 {
		c.Features.Extractor.CacheTTLSec = 86400
	}
}

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("http.port must be between 1 and 65535, got %d", c.HTTP.Port)
	}
	if len(c.Database.Addrs) == 0 {
		return fmt.Errorf("database.addrs is required")
	}
	if c.ObjectStore.Endpoint == "" {
		return fmt.Errorf("object_store.endpoint is required")
	}
	if c.Engine.Address == "" {
		return fmt.Errorf("engine.address is required")
	}
	if c.Media.JPEGQuality > 100 {
		return fmt.Errorf("media.jpeg_quality must be at most 100, got %d", c.Media.JPEGQuality)
	}
	switch c.Features.ClipDistance {
	case "COSINE", "IP", "L2":
	default:
		return fmt.Errorf("features.clip_distance must be COSINE, IP or L2, got %q", c.Features.ClipDistance)
	}
	if u := c.Features.Extractor.BaseURL; u != "" {
		if p, err := url.Parse(u); err != nil || p.Scheme == "" || p.Host == "" {
			return fmt.Errorf("features.extractor.base_url must be an absolute URL, got %q", u)
		}
	}
	return nil
}

// findConfigPath locates the config file.
func findConfigPath(env string) string {
	filename := fmt.Sprintf("%s.yaml", env)

	if path := filepath.Join("config", filename); fileExists(path) {
		return path
	}

	// Relative to the source file, for tests run from package directories.
	_, b, _, _ := runtime.Caller(0)
	projectRoot := filepath.Dir(filepath.Dir(filepath.Dir(b)))
	if path := filepath.Join(projectRoot, "config", filename); fileExists(path) {
		return path
	}

	return filepath.Join("config", filename)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// envVarRegex matches ${VAR} and ${VAR:-default}.
var envVarRegex = regexp.MustCompile(`\$\{([^}]+)\}`)

func expandEnvVars(data []byte) []byte {
	return envVarRegex.ReplaceAllFunc(data, func(match []byte) []byte {
		expr := string(match[2 : len(match)-1])
		varName, defaultVal, hasDefault := strings.Cut(expr, ":-")
		val := os.Getenv(varName)
		if val == "" && hasDefault {
			val = defaultVal
		}
		return []byte(val)
	})
}
