package main

import (
	"context"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func TestPhasesAgainstFakeDashboard(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewUniversalClient(&redis.UniversalOptions{Addrs: []string{mr.Addr()}})
	t.Cleanup(func() { _ = rdb.Close() })

	srv := httptest.NewServer(fakeDashboard())
	t.Cleanup(srv.Close)

	states := make([]session, 3)
	for i := range states {
		ctrl, err := buildSession(srv.URL, srv.Client(), rdb, "lt", string(rune('a'+i)))
		if err != nil {
			t.Fatalf("buildSession: %v", err)
		}
		t.Cleanup(ctrl.Close)
		states[i] = session{ctrl: ctrl}
	}

	ctx := context.Background()
	stats := runPhase(states, 12, 4, func(s *session) error {
		return s.ctrl.Authenticate(ctx, "default", loadToken, false)
	})
	if stats.ops != 12 || stats.failures != 0 {
		t.Fatalf("unexpected authenticate stats: %+v", stats)
	}
	for i, s := range states {
		if auth := s.ctrl.State().Auth; !auth.Authenticated || auth.DefaultNamespace != "default" {
			t.Fatalf("session %d not authenticated: %+v", i, auth)
		}
	}

	stats = runPhase(states, 3, 3, func(s *session) error { return s.ctrl.Logout(ctx) })
	if stats.failures != 0 {
		t.Fatalf("logout failures: %+v", stats)
	}
	if keys := mr.Keys(); len(keys) != 0 {
		t.Fatalf("expected token keys removed, got %v", keys)
	}
}

func TestPercentile(t *testing.T) {
	samples := []time.Duration{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}
	if got := percentile(samples, 50); got != 5 {
		t.Fatalf("p50 = %d", got)
	}
	if got := percentile(samples, 100); got != 10 {
		t.Fatalf("p100 = %d", got)
	}
	if got := percentile(nil, 50); got != 0 {
		t.Fatalf("empty = %d", got)
	}
}
