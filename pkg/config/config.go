package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config represents the application configuration
type Config struct {
	Server   ServerConfig   `yaml:"server" validate:"required"`
	Database DatabaseConfig `yaml:"database" validate:"required"`
	Logging  LoggingConfig  `yaml:"logging" validate:"required"`
	Pipeline PipelineConfig `yaml:"pipeline" validate:"required"`
}

// ServerConfig represents the public API and admin listener configuration
type ServerConfig struct {
	Host            string        `yaml:"host"`
	Port            int           `yaml:"port" validate:"min=1,max=65535"`
	AdminPort       int           `yaml:"admin_port" validate:"min=0,max=65535"`
	Env             string        `yaml:"env" validate:"oneof=development production test"`
	ReadTimeout     time.Duration `yaml:"read_timeout" validate:"gt=0"`
	WriteTimeout    time.Duration `yaml:"write_timeout" validate:"gt=0"`
	IdleTimeout     time.Duration `yaml:"idle_timeout" validate:"gt=0"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" validate:"gt=0"`
}

// DatabaseConfig represents database configuration
type DatabaseConfig struct {
	Type         string `yaml:"type" validate:"oneof=sqlite postgres"`
	Path         string `yaml:"path" validate:"required_if=Type sqlite"`
	Host         string `yaml:"host" validate:"required_if=Type postgres"`
	Port         int    `yaml:"port" validate:"min=0,max=65535"`
	User         string `yaml:"user"`
	Password     string `yaml:"password"`
	Name         string `yaml:"name" validate:"required_if=Type postgres"`
	SSLMode      string `yaml:"ssl_mode"`
	MaxIdleConns int    `yaml:"max_idle_conns" validate:"min=0"`
	MaxOpenConns int    `yaml:"max_open_conns" validate:"min=1"`
	LogQueries   bool   `yaml:"log_queries"`
}

// LoggingConfig represents logging configuration
type LoggingConfig struct {
	Level  string `yaml:"level" validate:"oneof=debug info warn error"`
	Format string `yaml:"format" validate:"oneof=json console"`
}

// PipelineConfig holds the tunables of the recommendation pipeline.
type PipelineConfig struct {
	MasteryThreshold        float64 `yaml:"mastery_threshold" validate:"gte=0,lte=100"`
	ClassifierMinSamples    int     `yaml:"classifier_min_samples" validate:"min=2"`
	ClassifierTestRatio     float64 `yaml:"classifier_test_ratio" validate:"gt=0,lt=1"`
	ClassifierMaxIter       int     `yaml:"classifier_max_iter" validate:"min=1"`
	Seed                    int64   `yaml:"seed"`
	Clusters                int     `yaml:"clusters" validate:"min=1"`
	ClusterRestarts         int     `yaml:"cluster_restarts" validate:"min=1"`
	SimilarTopK             int     `yaml:"similar_top_k" validate:"min=1"`
	PeerStrengthThreshold   float64 `yaml:"peer_strength_threshold" validate:"gte=0,lte=100"`
	SelfSufficientThreshold float64 `yaml:"self_sufficient_threshold" validate:"gte=0,lte=100"`
	ContentPerConcept       int     `yaml:"content_per_concept" validate:"min=1"`
	ContentLimit            int     `yaml:"content_limit" validate:"min=1"`
	PlanRecommendations     int     `yaml:"plan_recommendations" validate:"min=1"`
	ScheduleSlots           int     `yaml:"schedule_slots" validate:"min=0"`
	TargetMastery           float64 `yaml:"target_mastery" validate:"gte=0,lte=100"`
	SearchLimit             int     `yaml:"search_limit" validate:"min=1"`
}

var validate = validator.New()

// Load builds the configuration from defaults, an optional YAML file, a .env
// file and LEARNPATH_* environment variables, in that order.
func Load() (*Config, error) {
	cfg := Default()

	configPath := getConfigPath()
	if _, err := os.Stat(configPath); err == nil {
		data, err := os.ReadFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	// .env is optional
	_ = godotenv.Load()

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Default returns a configuration with default values
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Host:            "0.0.0.0",
			Port:            8080,
			AdminPort:       9090,
			Env:             "development",
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    15 * time.Second,
			IdleTimeout:     60 * time.Second,
			ShutdownTimeout: 10 * time.Second,
		},
		Database: DatabaseConfig{
			Type:         "sqlite",
			Path:         "./data/learnpath.db",
			Host:         "localhost",
			Port:         5432,
			User:         "postgres",
			Name:         "learnpath",
			SSLMode:      "disable",
			MaxIdleConns: 5,
			MaxOpenConns: 10,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
		Pipeline: PipelineConfig{
			MasteryThreshold:        70,
			ClassifierMinSamples:    5,
			ClassifierTestRatio:     0.2,
			ClassifierMaxIter:       500,
			Seed:                    42,
			Clusters:                4,
			ClusterRestarts:         10,
			SimilarTopK:             5,
			PeerStrengthThreshold:   70,
			SelfSufficientThreshold: 80,
			ContentPerConcept:       3,
			ContentLimit:            10,
			PlanRecommendations:     5,
			ScheduleSlots:           7,
			TargetMastery:           80,
			SearchLimit:             20,
		},
	}
}

func getConfigPath() string {
	if path := os.Getenv("LEARNPATH_CONFIG"); path != "" {
		return path
	}
	return "config.yaml"
}

// applyEnv overrides configuration with environment variables
func (c *Config) applyEnv() {
	envString("LEARNPATH_SERVER_HOST", &c.Server.Host)
	envInt("LEARNPATH_SERVER_PORT", &c.Server.Port)
	envInt("LEARNPATH_SERVER_ADMIN_PORT", &c.Server.AdminPort)
	envString("LEARNPATH_ENV", &c.Server.Env)
	envDuration("LEARNPATH_SERVER_READ_TIMEOUT", &c.Server.ReadTimeout)
	envDuration("LEARNPATH_SERVER_WRITE_TIMEOUT", &c.Server.WriteTimeout)

	envString("LEARNPATH_DB_TYPE", &c.Database.Type)
	envString("LEARNPATH_SQLITE_PATH", &c.Database.Path)
	envString("LEARNPATH_DB_HOST", &c.Database.Host)
	envInt("LEARNPATH_DB_PORT", &c.Database.Port)
	envString("LEARNPATH_DB_USER", &c.Database.User)
	envString("LEARNPATH_DB_PASSWORD", &c.Database.Password)
	envString("LEARNPATH_DB_NAME", &c.Database.Name)
	envString("LEARNPATH_DB_SSLMODE", &c.Database.SSLMode)

	envString("LEARNPATH_LOG_LEVEL", &c.Logging.Level)
	envString("LEARNPATH_LOG_FORMAT", &c.Logging.Format)

	envFloat("LEARNPATH_MASTERY_THRESHOLD", &c.Pipeline.MasteryThreshold)
	envInt64("LEARNPATH_SEED", &c.Pipeline.Seed)
	envInt("LEARNPATH_CLUSTERS", &c.Pipeline.Clusters)
	envInt("LEARNPATH_SIMILAR_TOP_K", &c.Pipeline.SimilarTopK)
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		if verrs, ok := err.(validator.ValidationErrors); ok {
			msgs := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				msgs = append(msgs, fmt.Sprintf("%s failed on '%s'", fe.Namespace(), fe.Tag()))
			}
			return fmt.Errorf("%s", strings.Join(msgs, "; "))
		}
		return err
	}
	return nil
}

// DSN returns the driver connection string for the configured database.
func (d DatabaseConfig) DSN() string {
	if d.Type == "postgres" {
		return fmt.Sprintf(
			"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
			d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode,
		)
	}
	return d.Path + "?_busy_timeout=5000"
}

// Addr returns host:port for the public API listener.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// AdminAddr returns host:port for the admin listener.
func (s ServerConfig) AdminAddr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.AdminPort)
}

// String returns a string representation of the configuration (without secrets)
func (c *Config) String() string {
	return fmt.Sprintf(
		"Config{Server: %s, Env: %s, Database: %s, Logging: %s/%s}",
		c.Server.Addr(), c.Server.Env, c.Database.Type, c.Logging.Level, c.Logging.Format,
	)
}

func envString(key string, dst *string) {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		*dst = v
	}
}

func envInt(key string, dst *int) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func envInt64(key string, dst *int64) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			*dst = n
		}
	}
}

func envFloat(key string, dst *float64) {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			*dst = f
		}
	}
}

func envDuration(key string, dst *time.Duration) {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			*dst = d
		}
	}
}
