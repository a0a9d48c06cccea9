package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// CredentialPrefix is the literal prefix every upstream API key carries.
const CredentialPrefix = "sk-"

var (
	ErrCredentialMissing   = errors.New("OPENAI_API_KEY environment variable is not set")
	ErrCredentialMalformed = errors.New("OPENAI_API_KEY appears to be invalid (should start with " + CredentialPrefix + ")")
)

const (
	ProviderOpenAI = "openai"
	ProviderEcho   = "echo"
)

// DefaultBaseURL is the upstream endpoint used when none is configured.
const DefaultBaseURL = "https://api.openai.com/v1/"

type Config struct {
	APIKey       string           `mapstructure:"api_key" yaml:"api_key"`
	Port         int              `mapstructure:"port" yaml:"port"`
	Env          string           `mapstructure:"env" yaml:"env"`
	TelemetryURL string           `mapstructure:"telemetry_url" yaml:"telemetry_url"`
	Server       ServerConfig     `mapstructure:"server" yaml:"server"`
	Upstream     UpstreamConfig   `mapstructure:"upstream" yaml:"upstream"`
	CORS         CORSConfig       `mapstructure:"cors" yaml:"cors"`
	RateLimit    RateLimitConfig  `mapstructure:"rate_limit" yaml:"rate_limit"`
	Guardrails   GuardrailsConfig `mapstructure:"guardrails" yaml:"guardrails"`
	Log          LogConfig        `mapstructure:"log" yaml:"log"`
}

type UpstreamConfig struct {
	Provider    string        `mapstructure:"provider" yaml:"provider"`
	BaseURL     string        `mapstructure:"base_url" yaml:"base_url"`
	Model       string        `mapstructure:"model" yaml:"model"`
	Temperature float64       `mapstructure:"temperature" yaml:"temperature"`
	MaxTokens   int           `mapstructure:"max_tokens" yaml:"max_tokens"`
	Timeout     time.Duration `mapstructure:"timeout" yaml:"-"`
}

// MarshalYAML renders the timeout as a duration string instead of nanoseconds.
func (u UpstreamConfig) MarshalYAML() (interface{}, error) {
	return struct {
		Provider    string  `yaml:"provider"`
		BaseURL     string  `yaml:"base_url"`
		Model       string  `yaml:"model"`
		Temperature float64 `yaml:"temperature"`
		MaxTokens   int     `yaml:"max_tokens"`
		Timeout     string  `yaml:"timeout"`
	}{u.Provider, u.BaseURL, u.Model, u.Temperature, u.MaxTokens, u.Timeout.String()}, nil
}

type ServerConfig struct {
	// MaxBodyBytes caps inbound request bodies; zero disables the cap.
	MaxBodyBytes int64 `mapstructure:"max_body_bytes" yaml:"max_body_bytes"`
}

type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins" yaml:"allowed_origins"`
}

type RateLimitConfig struct {
	RequestsPerSecond float64 `mapstructure:"requests_per_second" yaml:"requests_per_second"`
	Burst             int     `mapstructure:"burst" yaml:"burst"`
}

type GuardrailsConfig struct {
	MaxContentBytes int `mapstructure:"max_content_bytes" yaml:"max_content_bytes"`
}

type LogConfig struct {
	Level  string `mapstructure:"level" yaml:"level"`
	Format string `mapstructure:"format" yaml:"format"`
}

var defaults = map[string]interface{}{
	"api_key":                        "",
	"port":                           3001,
	"env":                            "development",
	"telemetry_url":                  "",
	"upstream.provider":              ProviderOpenAI,
	"upstream.base_url":              DefaultBaseURL,
	"server.max_body_bytes":          100 << 10,
	"upstream.model":                 "gpt-4-turbo-preview",
	"upstream.temperature":           0.7,
	"upstream.max_tokens":            1000,
	"upstream.timeout":               "2m",
	"cors.allowed_origins":           []string{"http://localhost:3000", "https://mariaiontseva.github.io"},
	"rate_limit.requests_per_second": 0,
	"rate_limit.burst":               10,
	"guardrails.max_content_bytes":   0,
	"log.level":                      "info",
	"log.format":                     "json",
}

// envName returns the environment variable bound to a config key. Well-known
// variables keep their bare names.
func envName(key string) string {
	switch key {
	case "api_key":
		return "OPENAI_API_KEY"
	case "port":
		return "PORT"
	case "env":
		return "NODE_ENV"
	}
	return "AIGW_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
}

// Load reads configuration from an optional config.yaml, an optional .env
// file and the process environment, in increasing order of precedence.
// When no search paths are given, "." and "./config" are used.
func Load(paths ...string) (*Config, error) {
	if len(paths) == 0 {
		paths = []string{".", "./config"}
	}

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	for _, p := range paths {
		v.AddConfigPath(p)
	}

	// allow environment variables like AIGW_UPSTREAM_MODEL
	v.SetEnvPrefix("AIGW")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	for key, val := range defaults {
		v.SetDefault(key, val)
		if err := v.BindEnv(key, envName(key)); err != nil {
			return nil, fmt.Errorf("binding %s: %w", key, err)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		// don't fail if config file is missing, allow env-only config
		var nf viper.ConfigFileNotFoundError
		if !errors.As(err, &nf) {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	if v.GetString("env") != "production" {
		if err := mergeDotenv(v, filepath.Join(paths[0], ".env")); err != nil {
			return nil, err
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshalling config: %w", err)
	}
	if err := c.check(); err != nil {
		return nil, err
	}
	return &c, nil
}

// mergeDotenv fills keys from a dotenv file when the real environment does
// not already provide them.
func mergeDotenv(v *viper.Viper, path string) error {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("stat %s: %w", path, err)
	}

	d := viper.New()
	d.SetConfigFile(path)
	d.SetConfigType("env")
	if err := d.ReadInConfig(); err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}

	for key := range defaults {
		env := envName(key)
		if _, ok := os.LookupEnv(env); ok {
			continue
		}
		if d.IsSet(strings.ToLower(env)) {
			v.Set(key, d.GetString(strings.ToLower(env)))
		}
	}
	return nil
}

// check rejects configuration the server cannot start with.
func (c *Config) check() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("port %d out of range", c.Port)
	}
	switch c.Upstream.Provider {
	case ProviderOpenAI, ProviderEcho:
	default:
		return fmt.Errorf("unknown upstream provider %q", c.Upstream.Provider)
	}
	if c.Upstream.BaseURL == "" {
		return errors.New("upstream.base_url must not be empty")
	}
	if c.Server.MaxBodyBytes < 0 {
		return fmt.Errorf("server.max_body_bytes %d is negative", c.Server.MaxBodyBytes)
	}
	if len(c.CORS.AllowedOrigins) == 0 {
		return errors.New("cors.allowed_origins must not be empty")
	}
	for _, o := range c.CORS.AllowedOrigins {
		if o == "*" {
			continue
		}
		if !strings.HasPrefix(o, "http://") && !strings.HasPrefix(o, "https://") {
			return fmt.Errorf("cors origin %q must start with http:// or https://", o)
		}
	}
	return nil
}

// Validate checks configuration for questionable values and returns warnings.
func (c *Config) Validate() []string {
	var warnings []string

	if c.Upstream.Temperature < 0 || c.Upstream.Temperature > 2.0 {
		warnings = append(warnings, fmt.Sprintf("upstream temperature %.2f is outside recommended range [0.0, 2.0]", c.Upstream.Temperature))
	}
	if c.Upstream.MaxTokens < 0 {
		warnings = append(warnings, fmt.Sprintf("upstream max_tokens %d is negative", c.Upstream.MaxTokens))
	}
	if c.Upstream.Timeout <= 0 {
		warnings = append(warnings, "upstream timeout is not positive; upstream calls are bounded only by the client")
	}
	if c.RateLimit.RequestsPerSecond > 0 && c.RateLimit.Burst <= 0 {
		warnings = append(warnings, "rate_limit.burst must be positive when rate limiting is enabled; every request will be rejected")
	}
	return warnings
}

// Address is the listen address derived from Port.
func (c *Config) Address() string {
	return fmt.Sprintf(":%d", c.Port)
}

// Diagnostic reports whether credential metadata may be exposed.
func (c *Config) Diagnostic() bool {
	return c.Env != "production"
}

// RequiresCredential reports whether the configured upstream needs an API key.
func (c *Config) RequiresCredential() bool {
	return c.Upstream.Provider != ProviderEcho
}

// CheckCredential verifies the API key is present and superficially
// well-formed.
func (c *Config) CheckCredential() error {
	if !c.RequiresCredential() {
		return nil
	}
	if c.APIKey == "" {
		return ErrCredentialMissing
	}
	if !strings.HasPrefix(c.APIKey, CredentialPrefix) {
		return ErrCredentialMalformed
	}
	return nil
}

// CredentialPrefixHint returns at most the first four characters of the key,
// and never more than half of it.
func (c *Config) CredentialPrefixHint() string {
	n := 4
	if half := len(c.APIKey) / 2; half < n {
		n = half
	}
	if n == 0 {
		return "none"
	}
	return c.APIKey[:n]
}

// Redacted returns a copy safe to print.
func (c *Config) Redacted() *Config {
	r := *c
	r.CORS.AllowedOrigins = append([]string(nil), c.CORS.AllowedOrigins...)
	if r.APIKey != "" {
		r.APIKey = "<redacted>"
	}
	return &r
}

// WriteYAML renders the configuration as YAML.
func (c *Config) WriteYAML(w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(c); err != nil {
		return err
	}
	return enc.Close()
}
