package cli

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/matzehuels/overflow/pkg/api"
	"github.com/matzehuels/overflow/pkg/cache"
	"github.com/matzehuels/overflow/pkg/observability"
	"github.com/matzehuels/overflow/pkg/scenario"
)

const (
	defaultAddr    = ":8080"
	defaultMongoDB = "overflow"
	shutdownGrace  = 10 * time.Second
)

// serveConfig holds the service settings. Each field falls back to an
// environment variable when its flag is not given.
type serveConfig struct {
	addr     string
	redisURL string
	mongoURI string
	mongoDB  string
	metrics  bool
	noCache  bool
}

// envDefault returns the value of key, or def when it is unset or empty.
func envDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// serveCommand creates the serve command.
func (c *CLI) serveCommand() *cobra.Command {
	var cfg serveConfig

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP fitting service",
		Long: `Serve exposes the fitting engine over HTTP: one-shot scenario fits,
named scenario storage and live engine sessions.

Results are cached in Redis when --redis-url is set, otherwise on disk.
Named scenarios are stored in MongoDB when --mongo-uri is set, otherwise in
memory.

Environment:
  OVERFLOW_ADDR        listen address
  OVERFLOW_REDIS_URL   Redis URL for the result cache
  OVERFLOW_MONGO_URI   MongoDB URI for scenario storage
  OVERFLOW_MONGO_DB    MongoDB database name`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.serve(cmd.Context(), cfg)
		},
	}

	cmd.Flags().StringVar(&cfg.addr, "addr", envDefault("OVERFLOW_ADDR", defaultAddr), "listen address")
	cmd.Flags().StringVar(&cfg.redisURL, "redis-url", os.Getenv("OVERFLOW_REDIS_URL"), "Redis URL for the result cache")
	cmd.Flags().StringVar(&cfg.mongoURI, "mongo-uri", os.Getenv("OVERFLOW_MONGO_URI"), "MongoDB URI for scenario storage")
	cmd.Flags().StringVar(&cfg.mongoDB, "mongo-db", envDefault("OVERFLOW_MONGO_DB", defaultMongoDB), "MongoDB database name")
	cmd.Flags().BoolVar(&cfg.metrics, "metrics", true, "expose Prometheus metrics at /metrics")
	cmd.Flags().BoolVar(&cfg.noCache, "no-cache", false, "disable the result cache")

	return cmd
}

func (c *CLI) serve(ctx context.Context, cfg serveConfig) error {
	logger := loggerFromContext(ctx)

	opts := []api.Option{api.WithLogger(logger.WithPrefix("http"))}

	if cfg.metrics {
		opts = append(opts, api.WithMetrics(registerMetrics()))
	}

	rc, err := openResultCache(ctx, cfg)
	if err != nil {
		return err
	}
	defer rc.Close()
	opts = append(opts, api.WithCache(rc))
	if cfg.redisURL != "" {
		opts = append(opts, api.WithKeyer(cache.NewScopedKeyer(cache.NewDefaultKeyer(), appName)))
	}

	if cfg.mongoURI != "" {
		sp := newSpinner(ctx, "Connecting to MongoDB...")
		sp.Start()
		store, err := scenario.NewMongoStore(ctx, cfg.mongoURI, cfg.mongoDB)
		if err != nil {
			sp.StopWithError("MongoDB unavailable")
			return fmt.Errorf("connect mongo: %w", err)
		}
		sp.StopWithSuccess("Scenarios stored in MongoDB database " + StyleValue.Render(cfg.mongoDB))
		defer func() {
			closeCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
			defer cancel()
			_ = store.Close(closeCtx)
		}()
		opts = append(opts, api.WithStore(store))
	} else {
		printWarning("Scenarios are kept in memory and lost on exit")
	}

	handler := api.New(opts...)
	defer handler.Close()

	srv := &http.Server{
		Addr:              cfg.addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}
	return listenAndServe(ctx, srv, logger)
}

// openResultCache connects the configured result cache.
func openResultCache(ctx context.Context, cfg serveConfig) (cache.Cache, error) {
	if cfg.redisURL == "" || cfg.noCache {
		return newCache(cfg.noCache)
	}

	sp := newSpinner(ctx, "Connecting to Redis...")
	sp.Start()
	rc, err := cache.NewRedisCache(ctx, cfg.redisURL)
	if err != nil {
		sp.StopWithError("Redis unavailable")
		return nil, fmt.Errorf("connect redis: %w", err)
	}
	sp.StopWithSuccess("Results cached in Redis")
	return rc, nil
}

// registerMetrics installs Prometheus hooks globally and returns the
// handler serving them.
func registerMetrics() http.Handler {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	p := observability.NewPrometheus(reg, appName)
	observability.SetFitHooks(p)
	observability.SetCacheHooks(p)
	observability.SetHTTPHooks(p)

	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg})
}

// listenAndServe runs srv until ctx is done, then shuts it down gracefully.
func listenAndServe(ctx context.Context, srv *http.Server, logger *log.Logger) error {
	errc := make(chan error, 1)
	go func() {
		errc <- srv.ListenAndServe()
	}()

	printSuccess("Listening on %s", StyleLink.Render("http://"+displayAddr(srv.Addr)))
	logger.Debug("server started", "addr", srv.Addr)

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

// displayAddr turns a listen address into something a browser accepts.
func displayAddr(addr string) string {
	host, port, err := net.SplitHostPort(addr)
	if err != nil {
		return addr
	}
	if host == "" || host == "0.0.0.0" || host == "::" {
		host = "localhost"
	}
	return net.JoinHostPort(host, port)
}
