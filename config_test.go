package dashauth

import (
	"errors"
	"testing"
	"time"
)

func TestDefaultConfigValid(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
}

func TestConfigValidateRejects(t *testing.T) {
	cases := map[string]func(*Config){
		"no clusters":         func(c *Config) { c.Clusters = nil },
		"empty cluster":       func(c *Config) { c.Clusters = []string{" "} },
		"duplicate cluster":   func(c *Config) { c.Clusters = []string{"a", "a"} },
		"negative ttl":        func(c *Config) { c.Token.TTL = -time.Second },
		"empty fallback":      func(c *Config) { c.Token.FallbackNamespace = "" },
		"zero buffer":         func(c *Config) { c.Transitions.Enabled = true; c.Transitions.BufferSize = 0 },
		"relative logout uri": func(c *Config) { c.Runtime.OAuthLogoutURI = "oauth2/sign_out" },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			cfg := DefaultConfig()
			mutate(&cfg)
			if err := cfg.Validate(); err == nil {
				t.Fatal("expected validation error")
			}
		})
	}
}

func TestRuntimeConfigLogoutURI(t *testing.T) {
	if got := (RuntimeConfig{}).LogoutURI(); got != DefaultOAuthLogoutURI {
		t.Fatalf("expected default, got %q", got)
	}
	if got := (RuntimeConfig{OAuthLogoutURI: "https://idp/logout"}).LogoutURI(); got != "https://idp/logout" {
		t.Fatalf("unexpected %q", got)
	}
}

func TestBuilderRequiresCollaborators(t *testing.T) {
	if _, err := New().WithNamespaces(&fakeNamespaces{}).Build(); !errors.Is(err, ErrMissingAuthenticator) {
		t.Fatalf("expected ErrMissingAuthenticator, got %v", err)
	}
	if _, err := New().WithAuthenticator(newFakeAuth()).Build(); !errors.Is(err, ErrMissingNamespaces) {
		t.Fatalf("expected ErrMissingNamespaces, got %v", err)
	}
}

func TestBuilderSingleUse(t *testing.T) {
	b := New().WithAuthenticator(newFakeAuth()).WithNamespaces(&fakeNamespaces{})
	ctrl, err := b.Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	defer ctrl.Close()

	if _, err := b.Build(); !errors.Is(err, ErrBuilderUsed) {
		t.Fatalf("expected ErrBuilderUsed, got %v", err)
	}
}

func TestBuilderSharesStore(t *testing.T) {
	st := NewStore(InitialState(RuntimeConfig{}, "default"))
	ctrl, err := New().
		WithAuthenticator(newFakeAuth()).
		WithNamespaces(&fakeNamespaces{}).
		WithStore(st).
		Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	defer ctrl.Close()

	if ctrl.Store() != st {
		t.Fatal("expected the provided store")
	}
}

func TestWithConfigClonesClusters(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Clusters = []string{"a"}
	b := New().WithConfig(cfg)
	cfg.Clusters[0] = "mutated"

	ctrl, err := b.WithAuthenticator(newFakeAuth()).WithNamespaces(&fakeNamespaces{}).Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	defer ctrl.Close()

	if _, ok := ctrl.State().Clusters.Clusters["a"]; !ok {
		t.Fatalf("builder config aliased caller slice: %+v", ctrl.State().Clusters)
	}
}
