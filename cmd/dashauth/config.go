package main

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/MrEthical07/dashauth"
	"github.com/MrEthical07/dashauth/token"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// Config is the CLI configuration file.
type Config struct {
	BaseURL     string                 `yaml:"base_url"`
	Clusters    []string               `yaml:"clusters"`
	Runtime     dashauth.RuntimeConfig `yaml:"runtime"`
	Token       TokenConfig            `yaml:"token"`
	Redis       RedisConfig            `yaml:"redis"`
	Logging     LoggingConfig          `yaml:"logging"`
	Transitions TransitionsConfig      `yaml:"transitions"`
	Serve       ServeConfig            `yaml:"serve"`
}

type TokenConfig struct {
	TTL               time.Duration `yaml:"ttl"`
	FallbackNamespace string        `yaml:"fallback_namespace"`
	Verify            VerifyConfig  `yaml:"verify"`
}

// VerifyConfig enables local signature checks before the cluster probe.
type VerifyConfig struct {
	SigningMethod string `yaml:"signing_method"`
	KeyFile       string `yaml:"key_file"`
	Issuer        string `yaml:"issuer"`
	Audience      string `yaml:"audience"`
}

// RedisConfig selects the Redis token store. An empty Addr keeps tokens in
// process memory.
type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	Prefix   string `yaml:"prefix"`
	ClientID string `yaml:"client_id"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

type TransitionsConfig struct {
	// Log writes every transition as a JSON line to stderr.
	Log        bool `yaml:"log"`
	BufferSize int  `yaml:"buffer_size"`
}

type ServeConfig struct {
	Listen string `yaml:"listen"`
	// OTel adds /metrics/otel, a JSON dump of an OpenTelemetry reader that
	// carries the authenticate duration histogram.
	OTel bool `yaml:"otel"`
}

// LoadConfig reads path (optional), then applies DASHAUTH_* overrides and
// validates the result.
func LoadConfig(path string) (*Config, error) {
	cfg := defaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}
	return cfg, nil
}

func defaultConfig() *Config {
	core := dashauth.DefaultConfig()
	return &Config{
		BaseURL:  "http://localhost:8080",
		Clusters: core.Clusters,
		Token: TokenConfig{
			FallbackNamespace: core.Token.FallbackNamespace,
		},
		Redis: RedisConfig{
			Prefix:   "dashauth",
			ClientID: "default",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
		Transitions: TransitionsConfig{
			BufferSize: core.Transitions.BufferSize,
		},
		Serve: ServeConfig{
			Listen: "127.0.0.1:9464",
		},
	}
}

// applyEnvOverrides follows the pattern DASHAUTH_SECTION_KEY.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("DASHAUTH_BASE_URL"); v != "" {
		cfg.BaseURL = v
	}
	if v := os.Getenv("DASHAUTH_CLUSTERS"); v != "" {
		cfg.Clusters = splitList(v)
	}
	if v := os.Getenv("DASHAUTH_OAUTH_LOGOUT_URI"); v != "" {
		cfg.Runtime.OAuthLogoutURI = v
	}

	if v := os.Getenv("DASHAUTH_SERVE_OTEL"); v != "" {
		if on, err := strconv.ParseBool(v); err == nil {
			cfg.Serve.OTel = on
		}
	}

	// Redis
	if v := os.Getenv("DASHAUTH_REDIS_ADDR"); v != "" {
		cfg.Redis.Addr = v
	}
	if v := os.Getenv("DASHAUTH_REDIS_PASSWORD"); v != "" {
		cfg.Redis.Password = v
	}
	if v := os.Getenv("DASHAUTH_REDIS_DB"); v != "" {
		if db, err := strconv.Atoi(v); err == nil {
			cfg.Redis.DB = db
		}
	}

	// Logging
	if v := os.Getenv("DASHAUTH_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("DASHAUTH_LOG_FORMAT"); v != "" {
		cfg.Logging.Format = v
	}
}

func splitList(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func (c *Config) Validate() error {
	var errs []string

	if strings.TrimSpace(c.BaseURL) == "" {
		errs = append(errs, "base_url is required")
	}
	if _, err := zap.ParseAtomicLevel(c.Logging.Level); err != nil {
		errs = append(errs, fmt.Sprintf("logging.level %q is invalid", c.Logging.Level))
	}
	if c.Logging.Format != "json" && c.Logging.Format != "console" {
		errs = append(errs, "logging.format must be json or console")
	}
	if c.Redis.DB < 0 {
		errs = append(errs, "redis.db must be >= 0")
	}
	if c.Token.Verify.SigningMethod != "" && c.Token.Verify.KeyFile == "" {
		errs = append(errs, "token.verify.key_file is required with a signing method")
	}
	core := c.Core()
	if err := core.Validate(); err != nil {
		errs = append(errs, err.Error())
	}

	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}
	return nil
}

// Core maps the file onto the controller configuration.
func (c *Config) Core() dashauth.Config {
	core := dashauth.DefaultConfig()
	core.Clusters = append([]string(nil), c.Clusters...)
	core.Runtime = c.Runtime
	core.Token.TTL = c.Token.TTL
	core.Token.FallbackNamespace = c.Token.FallbackNamespace
	core.Transitions.Enabled = c.Transitions.Log
	core.Transitions.BufferSize = c.Transitions.BufferSize
	core.Metrics.EnableLatencyHistograms = true
	return core
}

// Verifier builds the optional local token verifier.
func (c *Config) Verifier() (*token.Verifier, error) {
	v := c.Token.Verify
	if v.SigningMethod == "" {
		return nil, nil
	}
	key, err := os.ReadFile(v.KeyFile)
	if err != nil {
		return nil, fmt.Errorf("reading verify key: %w", err)
	}
	return token.NewVerifier(token.Config{
		SigningMethod: token.SigningMethod(strings.ToLower(v.SigningMethod)),
		Key:           key,
		Issuer:        v.Issuer,
		Audience:      v.Audience,
	})
}

// Logger builds the zap logger described by Logging. Output goes to stderr.
func (c *Config) Logger() (*zap.Logger, error) {
	level, err := zap.ParseAtomicLevel(c.Logging.Level)
	if err != nil {
		return nil, err
	}
	zc := zap.NewProductionConfig()
	if c.Logging.Format == "console" {
		zc = zap.NewDevelopmentConfig()
	}
	zc.Level = level
	zc.OutputPaths = []string{"stderr"}
	zc.ErrorOutputPaths = []string{"stderr"}
	return zc.Build()
}
