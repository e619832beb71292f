package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"

	"os"
)

// Storage backend identifiers accepted into the catalog configuration.
const (
	BackendBolt  = "bolt"
	BackendRedis = "redis"
)

// Config defines the structure of the configuration file.
type Config struct {
	GitCommit          string        `yaml:"git_commit" envconfig:"SHELF_GIT_COMMIT"`
	GitTag             string        `yaml:"git_tag" envconfig:"SHELF_GIT_TAG"`
	BuildTime          string        `yaml:"build_time" envconfig:"SHELF_BUILD_TIME"`
	IsProduction       bool          `yaml:"is_production" envconfig:"SHELF_IS_PRODUCTION"`
	LogLevel           zapcore.Level `yaml:"log_level" envconfig:"SHELF_LOG_LEVEL"`
	LogFolder          string        `yaml:"log_folder" envconfig:"SHELF_LOG_FOLDER"`
	LogMaxSize         int           `yaml:"log_max_size" envconfig:"SHELF_LOG_MAX_SIZE"`
	ProfilerEnable     bool          `yaml:"profiler_enable" envconfig:"SHELF_PROFILER_ENABLE"`
	OpsEndpointsEnable bool          `yaml:"ops_endpoints_enable" envconfig:"SHELF_OPS_ENDPOINTS_ENABLE"`
	Server             ServerConfig  `yaml:"server"`
	Catalog            CatalogConfig `yaml:"catalog"`
	Redis              RedisConfig   `yaml:"redis"`
	BoltDB             BoltDBConfig  `yaml:"boltdb"`
	Gemini             GeminiConfig  `yaml:"gemini"`
}

type ServerConfig struct {
	Host            string        `yaml:"host" envconfig:"SHELF_SERVER_HOST"`
	Port            string        `yaml:"port" envconfig:"SHELF_SERVER_PORT"`
	ReadTimeout     time.Duration `yaml:"read_timeout" envconfig:"SHELF_SERVER_READ_TIMEOUT"`
	WriteTimeout    time.Duration `yaml:"write_timeout" envconfig:"SHELF_SERVER_WRITE_TIMEOUT"`
	RequestTimeout  time.Duration `yaml:"request_timeout" envconfig:"SHELF_SERVER_REQUEST_TIMEOUT"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" envconfig:"SHELF_SERVER_SHUTDOWN_TIMEOUT"`
}

// CatalogConfig groups the settings owned by the catalog core: the shared
// admin secret, session lifetime, the delete confirmation window, the
// bootstrap dataset and the snapshot persistence backend.
type CatalogConfig struct {
	AdminSecret         string        `yaml:"admin_secret" envconfig:"SHELF_CATALOG_ADMIN_SECRET"`
	SessionTTL          time.Duration `yaml:"session_ttl" envconfig:"SHELF_CATALOG_SESSION_TTL"`
	DeleteConfirmWindow time.Duration `yaml:"delete_confirm_window" envconfig:"SHELF_CATALOG_DELETE_CONFIRM_WINDOW"`
	BootstrapFile       string        `yaml:"bootstrap_file" envconfig:"SHELF_CATALOG_BOOTSTRAP_FILE"`
	StorageBackend      string        `yaml:"storage_backend" envconfig:"SHELF_CATALOG_STORAGE_BACKEND"`
	MirrorEnable        bool          `yaml:"mirror_enable" envconfig:"SHELF_CATALOG_MIRROR_ENABLE"`
}

type RedisConfig struct {
	Host          string        `yaml:"host" envconfig:"SHELF_REDIS_HOST"`
	Port          string        `yaml:"port" envconfig:"SHELF_REDIS_PORT"`
	DialTimeout   time.Duration `yaml:"dial_timeout" envconfig:"SHELF_REDIS_DIAL_TIMEOUT"`
	ReadTimeout   time.Duration `yaml:"read_timeout" envconfig:"SHELF_REDIS_READ_TIMEOUT"`
	WriteTimeout  time.Duration `yaml:"write_timeout" envconfig:"SHELF_REDIS_WRITE_TIMEOUT"`
	PoolSize      int           `yaml:"pool_size" envconfig:"SHELF_REDIS_POOL_SIZE"`
	PoolTimeout   time.Duration `yaml:"pool_timeout" envconfig:"SHELF_REDIS_POOL_TIMEOUT"`
	Username      string        `yaml:"username" envconfig:"SHELF_REDIS_USERNAME"`
	Password      string        `yaml:"password" envconfig:"SHELF_REDIS_PASSWORD"`
	DatabaseIndex int           `yaml:"db_index" envconfig:"SHELF_REDIS_DATABASE_INDEX"`
	SnapshotKey   string        `yaml:"snapshot_key" envconfig:"SHELF_REDIS_SNAPSHOT_KEY"`
}

type BoltDBConfig struct {
	FilePath    string        `yaml:"filepath" envconfig:"SHELF_BOLTDB_FILE_PATH"`
	Timeout     time.Duration `yaml:"timeout" envconfig:"SHELF_BOLTDB_TIMEOUT"`
	BucketName  string        `yaml:"bucket_name" envconfig:"SHELF_BOLTDB_BUCKET_NAME"`
	SnapshotKey string        `yaml:"snapshot_key" envconfig:"SHELF_BOLTDB_SNAPSHOT_KEY"`
}

// GeminiConfig holds the settings of the external enrichment service.
// An empty api key disables the enrichment endpoints.
type GeminiConfig struct {
	APIKey     string        `yaml:"api_key" envconfig:"SHELF_GEMINI_API_KEY"`
	BaseURL    string        `yaml:"base_url" envconfig:"SHELF_GEMINI_BASE_URL"`
	TextModel  string        `yaml:"text_model" envconfig:"SHELF_GEMINI_TEXT_MODEL"`
	ImageModel string        `yaml:"image_model" envconfig:"SHELF_GEMINI_IMAGE_MODEL"`
	Timeout    time.Duration `yaml:"timeout" envconfig:"SHELF_GEMINI_TIMEOUT"`
}

// LoadConfigFile provides an instance of config structure for the all application.
func LoadConfigFile(configFile string) (*Config, error) {
	file, err := os.Open(configFile)
	if err != nil {
		return nil, err
	}
	defer file.Close()
	cfg := &Config{}
	yd := yaml.NewDecoder(file)
	err = yd.Decode(cfg)
	if err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadConfigEnvs reads the environments variables and overrides the App config.
func LoadConfigEnvs(prefix string, config *Config) error {
	return envconfig.Process(prefix, config)
}

// InitConfig setup defaults values for non provided parameters
// and configures build tags values to be used if provided.
func InitConfig(config *Config, gitCommit, gitTag, buildTime string) error {
	if len(gitCommit) != 0 {
		config.GitCommit = gitCommit
	}

	if len(gitTag) != 0 {
		config.GitTag = gitTag
	}

	if len(buildTime) != 0 {
		config.BuildTime = buildTime
	}

	if len(config.Server.Host) == 0 || len(config.Server.Port) == 0 {
		return errors.New("make sure to set valid server address and port in configuration file")
	}

	if len(config.Catalog.AdminSecret) == 0 {
		return errors.New("make sure to set the catalog admin secret in configuration file or environment")
	}

	switch config.Catalog.StorageBackend {
	case BackendBolt, BackendRedis:
	case "":
		config.Catalog.StorageBackend = BackendBolt
	default:
		return fmt.Errorf("unknown catalog storage backend: %q", config.Catalog.StorageBackend)
	}

	if config.Catalog.StorageBackend == BackendRedis || config.Catalog.MirrorEnable {
		if len(config.Redis.Host) == 0 || len(config.Redis.Port) == 0 {
			return errors.New("make sure to set valid redis address and port in configuration file")
		}
	}

	if len(config.BoltDB.FilePath) == 0 {
		return errors.New("make sure to set valid boltdb file path in configuration file")
	}

	if config.Catalog.SessionTTL <= 0 {
		config.Catalog.SessionTTL = 12 * time.Hour
	}

	if config.Catalog.DeleteConfirmWindow <= 0 {
		config.Catalog.DeleteConfirmWindow = 3 * time.Second
	}

	if len(config.Gemini.BaseURL) == 0 {
		config.Gemini.BaseURL = "https://generativelanguage.googleapis.com"
	}

	if config.Gemini.Timeout <= 0 {
		config.Gemini.Timeout = 30 * time.Second
	}

	return nil
}

// LoadAndInitConfigs loads in order the configs from various predefined sources
// then build the App configuration data.
func LoadAndInitConfigs(gitCommit, gitTag, buildTime string) (*Config, error) {
	// Setup the yaml configuration from file.
	config, err := LoadConfigFile("./config.yml")
	if err != nil {
		return config, fmt.Errorf("failed to load configurations from file: %s", err)
	}

	// Set the environment configuration. The env file is optional.
	if err = godotenv.Load("./config.env"); err != nil && !os.IsNotExist(err) {
		return config, fmt.Errorf("failed to set environment configurations: %s", err)
	}

	// Use environment variables with prefix `SHELF`.
	err = LoadConfigEnvs("SHELF", config)
	if err != nil {
		return config, fmt.Errorf("failed to load configurations from environment: %s", err)
	}

	err = InitConfig(config, gitCommit, gitTag, buildTime)
	if err != nil {
		return config, fmt.Errorf("failed to initialize configurations: %s", err)
	}
	return config, nil
}
