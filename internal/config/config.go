package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Config aggregates application configuration values.
type Config struct {
	HTTP    HTTPConfig    `yaml:"http"`
	Graph   GraphConfig   `yaml:"graph"`
	Batch   BatchConfig   `yaml:"batch"`
	Logging LoggingConfig `yaml:"logging"`
	Metrics MetricsConfig `yaml:"metrics"`

	// SchemaPath points at the YAML schema catalog.
	SchemaPath string `yaml:"schema"`
}

// HTTPConfig governs HTTP server behaviour.
type HTTPConfig struct {
	Host            string        `yaml:"host"`
	Port            int           `yaml:"port" validate:"min=1,max=65535"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	IdleTimeout     time.Duration `yaml:"idle_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	MaxBodyBytes    int64         `yaml:"max_body_bytes" validate:"min=0"`
	// AllowedOrigins enables CORS for the listed origins; "*" allows any.
	AllowedOrigins   []string `yaml:"allowed_origins"`
	AllowCredentials bool     `yaml:"allow_credentials"`
}

// GraphConfig describes connectivity to the graph server.
type GraphConfig struct {
	Driver         string        `yaml:"driver" validate:"oneof=nebula neo4j memory"`
	Hosts          []string      `yaml:"hosts" validate:"required_unless=Driver memory"`
	Space          string        `yaml:"space" validate:"required_if=Driver nebula"`
	Username       string        `yaml:"username"`
	Password       string        `yaml:"password"`
	MinConnections int           `yaml:"min_connections" validate:"min=0"`
	MaxConnections int           `yaml:"max_connections" validate:"min=1"`
	IdleTime       time.Duration `yaml:"idle_time"`
	Timeout        time.Duration `yaml:"timeout"`
}

// BatchConfig controls statement generation and submission.
type BatchConfig struct {
	// Size caps entities per statement; 0 puts a whole label group in one.
	Size int `yaml:"size" validate:"min=0"`
	// Workers is the number of label groups ingested in parallel.
	Workers int `yaml:"workers" validate:"min=1"`
	// Concurrency is the number of statements of one group in flight.
	Concurrency int    `yaml:"concurrency" validate:"min=1"`
	RawStrings  bool   `yaml:"raw_strings"`
	Dialect     string `yaml:"dialect" validate:"omitempty,oneof=ngql cypher"`
}

// LoggingConfig controls structured logging settings.
type LoggingConfig struct {
	Level         string `yaml:"level" validate:"omitempty,oneof=debug info warn warning error"`
	Format        string `yaml:"format" validate:"oneof=text json"` // text|json
	IncludeCaller bool   `yaml:"include_caller"`
}

// MetricsConfig controls the Prometheus endpoint.
type MetricsConfig struct {
	Enabled   bool   `yaml:"enabled"`
	Namespace string `yaml:"namespace"`
	Path      string `yaml:"path" validate:"startswith=/"`
}

const (
	defaultHost             = "0.0.0.0"
	defaultPort             = 8080
	defaultReadTimeout      = 10 * time.Second
	defaultWriteTimeout     = 15 * time.Second
	defaultIdleTimeout      = 60 * time.Second
	defaultShutdownTimeout  = 10 * time.Second
	defaultMaxBodyBytes     = 16 << 20
	defaultLoggingLevel     = "info"
	defaultLoggingFormat    = "text"
	defaultGraphDriver      = "nebula"
	defaultGraphHost        = "127.0.0.1:9669"
	defaultGraphSpace       = "graphbatch"
	defaultGraphUser        = "root"
	defaultGraphPassword    = "nebula"
	defaultGraphMaxSessions = 10
	defaultGraphTimeout     = 30 * time.Second
	defaultGraphIdleTime    = 8 * time.Hour
	defaultBatchWorkers     = 4
	defaultBatchConcurrency = 2
	defaultMetricsNamespace = "graphbatch"
	defaultMetricsPath      = "/metrics"
	defaultSchemaPath       = "schema.yaml"
)

// ErrInvalidConfig is wrapped by every validation failure.
var ErrInvalidConfig = errors.New("invalid configuration")

var validate = validator.New()

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		HTTP: HTTPConfig{
			Host:            defaultHost,
			Port:            defaultPort,
			ReadTimeout:     defaultReadTimeout,
			WriteTimeout:    defaultWriteTimeout,
			IdleTimeout:     defaultIdleTimeout,
			ShutdownTimeout: defaultShutdownTimeout,
			MaxBodyBytes:    defaultMaxBodyBytes,
		},
		Graph: GraphConfig{
			Driver:         defaultGraphDriver,
			Hosts:          []string{defaultGraphHost},
			Space:          defaultGraphSpace,
			Username:       defaultGraphUser,
			Password:       defaultGraphPassword,
			MaxConnections: defaultGraphMaxSessions,
			IdleTime:       defaultGraphIdleTime,
			Timeout:        defaultGraphTimeout,
		},
		Batch: BatchConfig{
			Workers:     defaultBatchWorkers,
			Concurrency: defaultBatchConcurrency,
		},
		Logging: LoggingConfig{
			Level:  defaultLoggingLevel,
			Format: defaultLoggingFormat,
		},
		Metrics: MetricsConfig{
			Enabled:   true,
			Namespace: defaultMetricsNamespace,
			Path:      defaultMetricsPath,
		},
		SchemaPath: defaultSchemaPath,
	}
}

// Load reads the file named by GRAPHBATCH_CONFIG, if any, then applies
// environment overrides.
func Load() (Config, error) {
	return LoadFile(os.Getenv("GRAPHBATCH_CONFIG"))
}

// LoadFile layers defaults, the YAML file at path (skipped when empty) and
// environment variables, in that order, and validates the result.
func LoadFile(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	if err := applyEnv(&cfg); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config) error {
	var err error

	cfg.HTTP.Host = valueOrDefault("SERVER_HOST", cfg.HTTP.Host)
	if cfg.HTTP.Port, err = parsePort("SERVER_PORT", cfg.HTTP.Port); err != nil {
		return err
	}
	if v := os.Getenv("SERVER_ALLOWED_ORIGINS"); v != "" {
		cfg.HTTP.AllowedOrigins = splitCSV(v)
	}
	cfg.HTTP.AllowCredentials = parseBoolWithDefault("SERVER_ALLOW_CREDENTIALS", cfg.HTTP.AllowCredentials)
	for key, dst := range map[string]*time.Duration{
		"SERVER_READ_TIMEOUT":     &cfg.HTTP.ReadTimeout,
		"SERVER_WRITE_TIMEOUT":    &cfg.HTTP.WriteTimeout,
		"SERVER_IDLE_TIMEOUT":     &cfg.HTTP.IdleTimeout,
		"SERVER_SHUTDOWN_TIMEOUT": &cfg.HTTP.ShutdownTimeout,
		"GRAPH_IDLE_TIME":         &cfg.Graph.IdleTime,
		"GRAPH_TIMEOUT":           &cfg.Graph.Timeout,
	} {
		if *dst, err = parseDuration(key, *dst); err != nil {
			return err
		}
	}

	cfg.Graph.Driver = strings.ToLower(valueOrDefault("GRAPH_DRIVER", cfg.Graph.Driver))
	if v := os.Getenv("GRAPH_HOSTS"); v != "" {
		cfg.Graph.Hosts = splitCSV(v)
	}
	cfg.Graph.Space = strings.TrimSpace(valueOrDefault("GRAPH_SPACE", cfg.Graph.Space))
	cfg.Graph.Username = valueOrDefault("GRAPH_USERNAME", cfg.Graph.Username)
	cfg.Graph.Password = valueOrDefault("GRAPH_PASSWORD", cfg.Graph.Password)
	cfg.Graph.MinConnections = parseIntWithDefault("GRAPH_MIN_CONNECTIONS", cfg.Graph.MinConnections)
	cfg.Graph.MaxConnections = parseIntWithDefault("GRAPH_MAX_CONNECTIONS", cfg.Graph.MaxConnections)

	cfg.Batch.Size = parseIntWithDefault("BATCH_SIZE", cfg.Batch.Size)
	cfg.Batch.Workers = parseIntWithDefault("BATCH_WORKERS", cfg.Batch.Workers)
	cfg.Batch.Concurrency = parseIntWithDefault("BATCH_CONCURRENCY", cfg.Batch.Concurrency)
	cfg.Batch.RawStrings = parseBoolWithDefault("BATCH_RAW_STRINGS", cfg.Batch.RawStrings)
	cfg.Batch.Dialect = strings.ToLower(valueOrDefault("BATCH_DIALECT", cfg.Batch.Dialect))

	cfg.Logging.Level = valueOrDefault("LOG_LEVEL", cfg.Logging.Level)
	cfg.Logging.Format = strings.ToLower(valueOrDefault("LOG_FORMAT", cfg.Logging.Format))
	cfg.Logging.IncludeCaller = parseBoolWithDefault("LOG_INCLUDE_CALLER", cfg.Logging.IncludeCaller)

	cfg.Metrics.Enabled = parseBoolWithDefault("METRICS_ENABLED", cfg.Metrics.Enabled)
	cfg.Metrics.Namespace = valueOrDefault("METRICS_NAMESPACE", cfg.Metrics.Namespace)
	cfg.Metrics.Path = valueOrDefault("METRICS_PATH", cfg.Metrics.Path)

	cfg.SchemaPath = valueOrDefault("SCHEMA_PATH", cfg.SchemaPath)
	return nil
}

// Validate checks field constraints and the driver/dialect pairing.
func (c Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return formatValidationError(err)
	}
	if c.Graph.Driver == "neo4j" && c.Batch.Dialect == "ngql" {
		return fmt.Errorf("%w: the neo4j driver cannot run ngql statements", ErrInvalidConfig)
	}
	if c.Graph.Driver == "nebula" && c.Batch.Dialect == "cypher" {
		return fmt.Errorf("%w: the nebula driver cannot run cypher statements", ErrInvalidConfig)
	}
	return nil
}

// Dialect returns the statement dialect, derived from the driver when unset.
func (c Config) Dialect() string {
	if c.Batch.Dialect != "" {
		return c.Batch.Dialect
	}
	if c.Graph.Driver == "neo4j" {
		return "cypher"
	}
	return "ngql"
}

func formatValidationError(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	e := verrs[0]
	switch e.Tag() {
	case "required_if", "required_unless":
		return fmt.Errorf("%w: %s is required", ErrInvalidConfig, e.Namespace())
	case "oneof":
		return fmt.Errorf("%w: %s must be one of [%s], got %q", ErrInvalidConfig, e.Namespace(), e.Param(), e.Value())
	case "min", "max":
		return fmt.Errorf("%w: %s must be %s %s", ErrInvalidConfig, e.Namespace(), e.Tag(), e.Param())
	default:
		return fmt.Errorf("%w: %s failed %q", ErrInvalidConfig, e.Namespace(), e.Tag())
	}
}

func valueOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func parseBoolWithDefault(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		val, err := strconv.ParseBool(v)
		if err != nil {
			return fallback
		}
		return val
	}
	return fallback
}

func parseIntWithDefault(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if val, err := strconv.Atoi(v); err == nil {
			return val
		}
	}
	return fallback
}

func parseDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}

func parsePort(key string, fallback int) (int, error) {
	if v := os.Getenv(key); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return 0, fmt.Errorf("invalid %s value %q: %w", key, v, err)
		}
		if port <= 0 || port > 65535 {
			return 0, fmt.Errorf("port %d is out of range", port)
		}
		return port, nil
	}
	return fallback, nil
}

func splitCSV(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
