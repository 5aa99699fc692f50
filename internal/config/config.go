// Package config provides configuration loading and validation for the
// feed generator. It uses koanf to merge environment variables with
// optional file overrides.
package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Config holds all configuration values for the feed generator.
type Config struct {
	// Server settings
	Host string `koanf:"host"`
	Port int    `koanf:"port"`
	Env  string `koanf:"env"`

	// Feed generator identity
	Hostname     string `koanf:"hostname"`      // Public hostname the service is reachable at
	ServiceDID   string `koanf:"service_did"`   // DID of this service; defaults to did:web:<hostname>
	PublisherDID string `koanf:"publisher_did"` // DID of the account publishing the feed
	FeedName     string `koanf:"feed_name"`     // Record key of the feed generator record

	// Ranking
	CalibrationPath string `koanf:"calibration_path"` // Optional JSON weight calibration file

	// Tracing
	TracingEnabled      bool    `koanf:"tracing_enabled"`
	TracingExporterType string  `koanf:"tracing_exporter_type"` // otlp-http or otlp-grpc
	TracingEndpoint     string  `koanf:"tracing_endpoint"`
	TracingSamplingRate float64 `koanf:"tracing_sampling_rate"`
	TracingInsecure     bool    `koanf:"tracing_insecure"`
}

// Configuration validation errors.
var (
	ErrMissingHostname     = errors.New("HOSTNAME is required")
	ErrMissingPublisherDID = errors.New("PUBLISHER_DID is required")
	ErrMissingFeedName     = errors.New("FEED_NAME is required")
	ErrInvalidPort         = errors.New("PORT must be a valid integer")
	ErrInvalidSamplingRate = errors.New("TRACING_SAMPLING_RATE must be between 0 and 1")
)

// Default values for non-secret configuration.
const (
	DefaultHost                = "0.0.0.0"
	DefaultPort                = 5000
	DefaultEnv                 = "development"
	DefaultFeedName            = "personalized"
	DefaultTracingSamplingRate = 1.0
)

// Load reads configuration from environment variables and an optional
// config file. Environment variables take precedence over file values.
// Returns the loaded config and a slice of validation errors (empty if
// valid). If a config file path is provided and the file cannot be
// loaded, an error is returned.
func Load(configFilePath string) (*Config, []error) {
	k := koanf.New(".")
	var loadErrs []error

	// Load from YAML file first if provided (lower precedence)
	if configFilePath != "" {
		if err := k.Load(file.Provider(configFilePath), yaml.Parser()); err != nil {
			return nil, []error{fmt.Errorf("failed to load config file %s: %w", configFilePath, err)}
		}
	}

	port, portErr := getEnvIntOrDefault("PORT", k.Int("port"), DefaultPort)
	if portErr != nil {
		loadErrs = append(loadErrs, portErr)
	}

	samplingRate, rateErr := getEnvFloatOrDefault("TRACING_SAMPLING_RATE", k.Float64("tracing_sampling_rate"), DefaultTracingSamplingRate)
	if rateErr != nil {
		loadErrs = append(loadErrs, rateErr)
	}

	cfg := &Config{
		Host:                getEnvOrDefault("HOST", k.String("host"), DefaultHost),
		Port:                port,
		Env:                 getEnvOrDefaultMulti([]string{"SKYFEED_ENV", "ENV", "GO_ENV"}, k.String("env"), DefaultEnv),
		Hostname:            getEnvOrKoanf("HOSTNAME", k, "hostname"),
		ServiceDID:          getEnvOrKoanf("SERVICE_DID", k, "service_did"),
		PublisherDID:        getEnvOrKoanf("PUBLISHER_DID", k, "publisher_did"),
		FeedName:            getEnvOrDefault("FEED_NAME", k.String("feed_name"), DefaultFeedName),
		CalibrationPath:     getEnvOrKoanf("CALIBRATION_PATH", k, "calibration_path"),
		TracingEnabled:      getEnvBoolOrDefault("TRACING_ENABLED", k, "tracing_enabled", false),
		TracingExporterType: getEnvOrKoanf("TRACING_EXPORTER_TYPE", k, "tracing_exporter_type"),
		TracingEndpoint:     getEnvOrKoanf("TRACING_ENDPOINT", k, "tracing_endpoint"),
		TracingSamplingRate: samplingRate,
		TracingInsecure:     getEnvBoolOrDefault("TRACING_INSECURE", k, "tracing_insecure", false),
	}

	// Service DID defaults to the did:web form of the public hostname.
	if cfg.ServiceDID == "" && cfg.Hostname != "" {
		cfg.ServiceDID = "did:web:" + cfg.Hostname
	}

	errs := cfg.Validate()
	errs = append(loadErrs, errs...)

	return cfg, errs
}

// getEnvOrKoanf returns the environment variable value if set, otherwise the koanf value.
func getEnvOrKoanf(envKey string, k *koanf.Koanf, koanfKey string) string {
	if val := os.Getenv(envKey); val != "" {
		return val
	}
	return k.String(koanfKey)
}

// getEnvOrDefault returns the environment variable value if set, otherwise the koanf value, or default.
func getEnvOrDefault(envKey string, koanfVal string, defaultVal string) string {
	if val := os.Getenv(envKey); val != "" {
		return val
	}
	if koanfVal != "" {
		return koanfVal
	}
	return defaultVal
}

// getEnvOrDefaultMulti tries multiple environment variable keys in order.
// Returns the first non-empty value found, otherwise the koanf value, or default.
func getEnvOrDefaultMulti(envKeys []string, koanfVal string, defaultVal string) string {
	for _, key := range envKeys {
		if val := os.Getenv(key); val != "" {
			return val
		}
	}
	if koanfVal != "" {
		return koanfVal
	}
	return defaultVal
}

// getEnvIntOrDefault returns the environment variable as int if set, otherwise the koanf value, or default.
// Returns an error if the environment variable is set but cannot be parsed as an integer.
func getEnvIntOrDefault(envKey string, koanfVal int, defaultVal int) (int, error) {
	if val := os.Getenv(envKey); val != "" {
		i, err := strconv.Atoi(val)
		if err != nil {
			return 0, fmt.Errorf("%s must be a valid integer: %w", envKey, ErrInvalidPort)
		}
		return i, nil
	}
	if koanfVal != 0 {
		return koanfVal, nil
	}
	return defaultVal, nil
}

// getEnvFloatOrDefault returns the environment variable as float64 if set, otherwise the koanf value, or default.
// Returns an error if the environment variable is set but cannot be parsed as a float.
func getEnvFloatOrDefault(envKey string, koanfVal float64, defaultVal float64) (float64, error) {
	if val := os.Getenv(envKey); val != "" {
		f, err := strconv.ParseFloat(val, 64)
		if err != nil {
			return 0, fmt.Errorf("%s must be a valid float: %w", envKey, err)
		}
		return f, nil
	}
	if koanfVal != 0 {
		return koanfVal, nil
	}
	return defaultVal, nil
}

// getEnvBoolOrDefault returns the environment variable as bool if set,
// otherwise the koanf value if the key exists, or default.
func getEnvBoolOrDefault(envKey string, k *koanf.Koanf, koanfKey string, defaultVal bool) bool {
	if val := os.Getenv(envKey); val != "" {
		switch strings.ToLower(val) {
		case "true", "1", "yes", "on":
			return true
		case "false", "0", "no", "off":
			return false
		}
	}
	if k.Exists(koanfKey) {
		return k.Bool(koanfKey)
	}
	return defaultVal
}

// Validate checks that all required configuration values are present and
// well-formed. Returns a slice of validation errors (empty if valid).
func (c *Config) Validate() []error {
	var errs []error

	if c.Hostname == "" {
		errs = append(errs, ErrMissingHostname)
	}
	if c.PublisherDID == "" {
		errs = append(errs, ErrMissingPublisherDID)
	}
	if c.FeedName == "" {
		errs = append(errs, ErrMissingFeedName)
	}
	if c.Port <= 0 || c.Port > 65535 {
		errs = append(errs, ErrInvalidPort)
	}
	if c.TracingSamplingRate < 0 || c.TracingSamplingRate > 1 {
		errs = append(errs, ErrInvalidSamplingRate)
	}

	return errs
}

// Addr returns the host:port the server should bind to.
func (c *Config) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

// FeedURI returns the at:// URI of the published feed generator record:
// at://<publisher-did>/app.bsky.feed.generator/<feed-name>.
func (c *Config) FeedURI() string {
	return fmt.Sprintf("at://%s/app.bsky.feed.generator/%s", c.PublisherDID, c.FeedName)
}

// LogSummary returns a summary of the configuration suitable for logging.
func (c *Config) LogSummary() map[string]string {
	return map[string]string{
		"host":                  c.Host,
		"port":                  fmt.Sprintf("%d", c.Port),
		"env":                   c.Env,
		"hostname":              c.Hostname,
		"service_did":           c.ServiceDID,
		"publisher_did":         c.PublisherDID,
		"feed_name":             c.FeedName,
		"feed_uri":              c.FeedURI(),
		"calibration_path":      orNotSet(c.CalibrationPath),
		"tracing_enabled":       fmt.Sprintf("%t", c.TracingEnabled),
		"tracing_endpoint":      orNotSet(c.TracingEndpoint),
		"tracing_sampling_rate": fmt.Sprintf("%.2f", c.TracingSamplingRate),
	}
}

// orNotSet replaces an empty value with a readable placeholder.
func orNotSet(s string) string {
	if s == "" {
		return "<not set>"
	}
	return s
}
