// Command dashauth-loadtest measures authenticate, restore and logout
// latency across many independent sessions sharing one Redis token store.
//
// Without -base-url it serves a fake dashboard API in process; without
// -redis-addr (or REDIS_ADDR) it starts miniredis.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/MrEthical07/dashauth"
	"github.com/MrEthical07/dashauth/dashboard"
	"github.com/MrEthical07/dashauth/namespace"
	"github.com/MrEthical07/dashauth/tokenstore"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

const loadToken = "load-token"

type session struct {
	ctrl *dashauth.Controller
}

func main() {
	var (
		sessions    = flag.Int("sessions", 1000, "number of independent sessions")
		concurrency = flag.Int("concurrency", 64, "number of concurrent workers")
		ops         = flag.Int("ops", 20000, "operations per phase")
		redisAddr   = flag.String("redis-addr", "", "redis address; if empty, REDIS_ADDR env or miniredis is used")
		prefix      = flag.String("prefix", "dashauth-load", "token key prefix")
		baseURL     = flag.String("base-url", "", "dashboard API; if empty, an in-process fake is served")
		token       = flag.String("token", loadToken, "bearer token to log in with")
	)
	flag.Parse()

	if *sessions <= 0 || *concurrency <= 0 || *ops <= 0 {
		fmt.Fprintln(os.Stderr, "sessions, concurrency, and ops must be > 0")
		os.Exit(2)
	}

	ctx := context.Background()

	addr := *redisAddr
	if addr == "" {
		addr = os.Getenv("REDIS_ADDR")
	}

	var cleanup []func()
	defer func() {
		for i := len(cleanup) - 1; i >= 0; i-- {
			cleanup[i]()
		}
	}()

	if addr == "" {
		mr, err := miniredis.Run()
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to start miniredis: %v\n", err)
			os.Exit(1)
		}
		addr = mr.Addr()
		cleanup = append(cleanup, mr.Close)
		fmt.Printf("using miniredis at %s\n", addr)
	} else {
		fmt.Printf("using redis at %s\n", addr)
	}
	client := redis.NewUniversalClient(&redis.UniversalOptions{
		Addrs:    []string{addr},
		PoolSize: *concurrency,
	})
	cleanup = append(cleanup, func() { _ = client.Close() })

	base := *baseURL
	if base == "" {
		srv := httptest.NewServer(fakeDashboard())
		base = srv.URL
		cleanup = append(cleanup, srv.Close)
		fmt.Printf("using fake dashboard at %s\n", base)
	}

	httpClient := &http.Client{
		Timeout: dashboard.DefaultTimeout,
		Transport: &http.Transport{
			MaxIdleConns:        *concurrency,
			MaxIdleConnsPerHost: *concurrency,
		},
	}

	fmt.Printf("building %d sessions...\n", *sessions)
	states := make([]session, *sessions)
	for i := range states {
		ctrl, err := buildSession(base, httpClient, client, *prefix, fmt.Sprintf("load-%d", i))
		if err != nil {
			fmt.Fprintf(os.Stderr, "build session %d: %v\n", i, err)
			os.Exit(1)
		}
		states[i] = session{ctrl: ctrl}
		cleanup = append(cleanup, ctrl.Close)
	}

	authStats := runPhase(states, *ops, *concurrency, func(s *session) error {
		return s.ctrl.Authenticate(ctx, "default", *token, false)
	})
	restoreStats := runPhase(states, *ops, *concurrency, func(s *session) error {
		return s.ctrl.Restore(ctx)
	})
	logoutStats := runPhase(states, *ops, *concurrency, func(s *session) error {
		return s.ctrl.Logout(ctx)
	})

	fmt.Println("---- results ----")
	printStats("authenticate", authStats)
	printStats("restore", restoreStats)
	printStats("logout", logoutStats)
}

func buildSession(base string, httpClient *http.Client, rdb redis.UniversalClient, prefix, clientID string) (*dashauth.Controller, error) {
	tokens := tokenstore.NewRedisStore(rdb, prefix, clientID)
	auth, err := dashboard.New(dashboard.Options{BaseURL: base, HTTPClient: httpClient, Tokens: tokens})
	if err != nil {
		return nil, err
	}
	lister, err := namespace.NewLister(base, httpClient, auth)
	if err != nil {
		return nil, err
	}
	return dashauth.New().
		WithAuthenticator(auth).
		WithNamespaces(lister).
		WithLatencyHistograms(true).
		Build()
}

func fakeDashboard() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer "+loadToken {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		switch r.URL.Path {
		case "/api/clusters/default/":
			w.WriteHeader(http.StatusOK)
		case "/api/clusters/default/api/v1/namespaces":
			_, _ = io.WriteString(w, `{"items":[{"metadata":{"name":"default"}},{"metadata":{"name":"load"}}]}`)
		default:
			http.NotFound(w, r)
		}
	})
}

func runPhase(states []session, ops, concurrency int, op func(*session) error) phaseStats {
	var (
		wg        sync.WaitGroup
		cursor    int64
		failures  int64
		latencies = make([]time.Duration, 0, ops)
		mu        sync.Mutex
	)

	start := time.Now()
	for w := 0; w < concurrency; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				i := int(atomic.AddInt64(&cursor, 1)) - 1
				if i >= ops {
					return
				}
				t0 := time.Now()
				err := op(&states[i%len(states)])
				d := time.Since(t0)
				if err != nil {
					atomic.AddInt64(&failures, 1)
				}
				mu.Lock()
				latencies = append(latencies, d)
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	total := time.Since(start)
	return computeStats(total, latencies, failures)
}

type phaseStats struct {
	total    time.Duration
	ops      int
	failures int64
	p50      time.Duration
	p95      time.Duration
	p99      time.Duration
	opsPerS  float64
}

func computeStats(total time.Duration, samples []time.Duration, failures int64) phaseStats {
	if len(samples) == 0 {
		return phaseStats{total: total}
	}
	sort.Slice(samples, func(i, j int) bool { return samples[i] < samples[j] })
	return phaseStats{
		total:    total,
		ops:      len(samples),
		failures: failures,
		p50:      percentile(samples, 50),
		p95:      percentile(samples, 95),
		p99:      percentile(samples, 99),
		opsPerS:  float64(len(samples)) / total.Seconds(),
	}
}

func percentile(samples []time.Duration, p int) time.Duration {
	if len(samples) == 0 {
		return 0
	}
	if p <= 0 {
		return samples[0]
	}
	if p >= 100 {
		return samples[len(samples)-1]
	}
	idx := (len(samples) - 1) * p / 100
	return samples[idx]
}

func printStats(name string, s phaseStats) {
	fmt.Printf("%s: ops=%d failures=%d total=%s ops/sec=%.0f p50=%s p95=%s p99=%s\n",
		name,
		s.ops,
		s.failures,
		s.total.Round(time.Millisecond),
		s.opsPerS,
		s.p50.Round(time.Microsecond),
		s.p95.Round(time.Microsecond),
		s.p99.Round(time.Microsecond),
	)
}
