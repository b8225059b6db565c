package dashauth

import (
	"errors"
	"strings"
	"time"
)

// Config configures a Controller. Start from DefaultConfig.
type Config struct {
	Clusters    []string
	Runtime     RuntimeConfig
	Token       TokenConfig
	Transitions TransitionConfig
	Metrics     MetricsConfig
}

/*
====================================
TOKEN CONFIG
====================================
*/

// TokenConfig bounds how long a persisted token record lives.
type TokenConfig struct {
	// TTL of a stored token record. Zero keeps it until logout.
	TTL time.Duration
	// FallbackNamespace replaces NamespaceAll when the cluster lists nothing.
	FallbackNamespace string
}

/*
====================================
TRANSITION CONFIG
====================================
*/

// TransitionConfig controls the asynchronous transition stream.
type TransitionConfig struct {
	Enabled    bool
	BufferSize int
	DropIfFull bool
}

/*
====================================
METRICS CONFIG
====================================
*/

// MetricsConfig toggles counters and the authenticate latency histogram.
type MetricsConfig struct {
	Enabled                 bool
	EnableLatencyHistograms bool
}

// DefaultConfig returns the configuration used by New.
func DefaultConfig() Config {
	return Config{
		Clusters: []string{"default"},
		Token: TokenConfig{
			FallbackNamespace: NamespaceAll,
		},
		Transitions: TransitionConfig{
			Enabled:    false,
			BufferSize: 256,
			DropIfFull: true,
		},
		Metrics: MetricsConfig{
			Enabled: true,
		},
	}
}

func cloneConfig(cfg Config) Config {
	out := cfg
	out.Clusters = append([]string(nil), cfg.Clusters...)
	return out
}

// Validate reports the first invalid field.
func (c *Config) Validate() error {
	if len(c.Clusters) == 0 {
		return errors.New("at least one cluster must be configured")
	}
	seen := make(map[string]struct{}, len(c.Clusters))
	for _, name := range c.Clusters {
		if strings.TrimSpace(name) == "" {
			return errors.New("cluster names must not be empty")
		}
		if _, dup := seen[name]; dup {
			return errors.New("duplicate cluster " + name)
		}
		seen[name] = struct{}{}
	}
	if c.Token.TTL < 0 {
		return errors.New("Token.TTL must be >= 0")
	}
	if strings.TrimSpace(c.Token.FallbackNamespace) == "" {
		return errors.New("Token.FallbackNamespace must not be empty")
	}
	if c.Transitions.Enabled && c.Transitions.BufferSize <= 0 {
		return errors.New("Transitions.BufferSize must be > 0 when enabled")
	}
	if uri := c.Runtime.OAuthLogoutURI; uri != "" && !strings.HasPrefix(uri, "/") && !strings.Contains(uri, "://") {
		return errors.New("Runtime.OAuthLogoutURI must be an absolute path or URL")
	}
	return nil
}
