package main

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/MrEthical07/dashauth"
	"github.com/MrEthical07/dashauth/metrics/export/prometheus"
	"github.com/MrEthical07/dashauth/middleware"
	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	"go.uber.org/zap"
)

type cli struct {
	configPath string
	cluster    string
	app        *app
}

// newRootCmd returns the command tree and a cleanup that releases whatever
// the executed command wired. Cobra skips post-run hooks when RunE fails, so
// callers run cleanup themselves.
func newRootCmd() (*cobra.Command, func() error) {
	c := &cli{}

	root := &cobra.Command{
		Use:   "dashauth",
		Short: "Manage dashboard authentication state",
		Long: `Authenticate against a Kubernetes dashboard API and inspect the
resulting session state.

Configuration comes from --config (YAML) and DASHAUTH_* environment
variables. Sessions persist across invocations only with a Redis token
store (redis.addr or DASHAUTH_REDIS_ADDR).`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: c.setup,
	}
	root.PersistentFlags().StringVar(&c.configPath, "config", os.Getenv("DASHAUTH_CONFIG"), "path to a YAML config file")
	root.PersistentFlags().StringVar(&c.cluster, "cluster", "", "cluster to authenticate against (default: first configured)")

	root.AddCommand(
		c.loginCmd(),
		c.cookieLoginCmd(),
		c.logoutCmd(),
		c.expireCmd(),
		c.statusCmd(),
		c.serveCmd(),
	)
	return root, c.teardown
}

func (c *cli) setup(cmd *cobra.Command, _ []string) error {
	cfg, err := LoadConfig(c.configPath)
	if err != nil {
		return err
	}
	logger, err := cfg.Logger()
	if err != nil {
		return err
	}
	a, err := newApp(cfg, logger, cmd.ErrOrStderr())
	if err != nil {
		_ = logger.Sync()
		return err
	}
	c.app = a
	if c.cluster == "" {
		c.cluster = a.ctrl.State().Clusters.Current
	}
	return nil
}

func (c *cli) teardown() error {
	if c.app == nil {
		return nil
	}
	err := c.app.Close()
	_ = c.app.logger.Sync()
	c.app = nil
	return err
}

func (c *cli) loginCmd() *cobra.Command {
	var (
		tokenFlag string
		tokenFile string
		oidc      bool
	)
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in with a bearer token",
		Long: `Validate a service account or OIDC token against the cluster, store it,
and resolve the default namespace.

The token comes from --token, --token-file ("-" reads stdin), or
DASHAUTH_TOKEN. With --oidc the token is stored without validation.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			raw, err := readToken(cmd.InOrStdin(), tokenFlag, tokenFile)
			if err != nil {
				return err
			}
			if raw == "" && !oidc {
				return errors.New("a token is required: use --token, --token-file or DASHAUTH_TOKEN")
			}
			authErr := c.app.ctrl.Authenticate(cmd.Context(), c.cluster, raw, oidc)
			if err := printState(cmd.OutOrStdout(), c.app.ctrl.State()); err != nil {
				return err
			}
			return authErr
		},
	}
	cmd.Flags().StringVar(&tokenFlag, "token", "", "bearer token")
	cmd.Flags().StringVar(&tokenFile, "token-file", "", "file holding the bearer token, - for stdin")
	cmd.Flags().BoolVar(&oidc, "oidc", false, "treat the token as an OIDC id token")
	return cmd
}

func (c *cli) cookieLoginCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "cookie-login",
		Short: "Check for an auth proxy session",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ok, err := c.app.ctrl.CheckCookieAuthentication(cmd.Context(), c.cluster)
			if perr := printState(cmd.OutOrStdout(), c.app.ctrl.State()); perr != nil {
				return perr
			}
			if err != nil {
				return err
			}
			if !ok {
				c.app.logger.Info("no proxy session", zap.String("cluster", c.cluster))
			}
			return nil
		},
	}
}

func (c *cli) logoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "End the current session",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := c.app.ctrl.Restore(cmd.Context()); err != nil {
				return err
			}
			if err := c.app.ctrl.Logout(cmd.Context()); err != nil {
				return err
			}
			return printState(cmd.OutOrStdout(), c.app.ctrl.State())
		},
	}
}

func (c *cli) expireCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "expire",
		Short: "Mark the session expired and log out",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := c.app.ctrl.Restore(cmd.Context()); err != nil {
				return err
			}
			if err := c.app.ctrl.ExpireSession(cmd.Context()); err != nil {
				return err
			}
			return printState(cmd.OutOrStdout(), c.app.ctrl.State())
		},
	}
}

func (c *cli) statusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Print the restored session state",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := c.app.ctrl.Restore(cmd.Context()); err != nil {
				return err
			}
			return printState(cmd.OutOrStdout(), c.app.ctrl.State())
		},
	}
}

func (c *cli) serveCmd() *cobra.Command {
	var listen string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve metrics and the session state over HTTP",
		Long: `Restore the stored session and serve:

  /metrics       Prometheus exposition of the controller counters
  /metrics/otel  OpenTelemetry metrics as JSON (serve.otel only)
  /state         the auth state, 401 unless authenticated
  /healthz       liveness`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			if err := c.app.ctrl.Restore(ctx); err != nil {
				return err
			}
			if listen == "" {
				listen = c.app.cfg.Serve.Listen
			}

			srv := &http.Server{
				Handler:           c.mux(),
				ReadHeaderTimeout: 5 * time.Second,
			}
			ln, err := net.Listen("tcp", listen)
			if err != nil {
				return err
			}
			c.app.logger.Info("serving", zap.String("addr", ln.Addr().String()))

			errCh := make(chan error, 1)
			go func() { errCh <- srv.Serve(ln) }()

			select {
			case err := <-errCh:
				return err
			case <-ctx.Done():
			}

			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				return err
			}
			if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&listen, "listen", "", "listen address (default from serve.listen)")
	return cmd
}

func (c *cli) mux() *http.ServeMux {
	ctrl := c.app.ctrl
	mux := http.NewServeMux()
	mux.Handle("/metrics", prometheus.NewExporter(ctrl).Handler())
	mux.Handle("/state", middleware.RequireAuthenticated(ctrl)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = printState(w, ctrl.State())
	})))
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, "ok\n")
	})
	if reader := c.app.otelReader; reader != nil {
		mux.HandleFunc("/metrics/otel", func(w http.ResponseWriter, r *http.Request) {
			var rm metricdata.ResourceMetrics
			if err := reader.Collect(r.Context(), &rm); err != nil {
				http.Error(w, err.Error(), http.StatusInternalServerError)
				return
			}
			w.Header().Set("Content-Type", "application/json")
			_ = json.NewEncoder(w).Encode(rm.ScopeMetrics)
		})
	}
	return mux
}

func readToken(stdin io.Reader, flagValue, path string) (string, error) {
	switch {
	case flagValue != "":
		return strings.TrimSpace(flagValue), nil
	case path == "-":
		line, err := bufio.NewReader(stdin).ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return "", fmt.Errorf("reading token from stdin: %w", err)
		}
		return strings.TrimSpace(line), nil
	case path != "":
		data, err := os.ReadFile(path)
		if err != nil {
			return "", fmt.Errorf("reading token file: %w", err)
		}
		return strings.TrimSpace(string(data)), nil
	default:
		return strings.TrimSpace(os.Getenv("DASHAUTH_TOKEN")), nil
	}
}

func printState(w io.Writer, st dashauth.State) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(st)
}
