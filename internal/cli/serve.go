package cli

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"github.com/matzehuels/gridder/internal/server"
	"github.com/matzehuels/gridder/pkg/config"
	"github.com/matzehuels/gridder/pkg/observability"
)

const (
	defaultAddr     = ":8080"
	shutdownTimeout = 10 * time.Second
)

// serveOpts holds the command-line flags for the serve command.
type serveOpts struct {
	config   string
	addr     string
	redis    string
	noCache  bool
	store    string
	storeDir string
	mongoURI string
}

// serveCommand creates the serve command running the HTTP API.
func (c *CLI) serveCommand() *cobra.Command {
	var opts serveOpts

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the grid HTTP API",
		Example: `  gridder serve
  gridder serve --addr :9000 --redis localhost:6379 --store mongo --mongo-uri mongodb://localhost:27017`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := opts.resolve(cmd)
			if err != nil {
				return err
			}
			return c.runServe(cmd.Context(), f)
		},
	}

	cmd.Flags().StringVar(&opts.config, "config", "", "run file with [server], [cache] and [store] sections")
	cmd.Flags().StringVar(&opts.addr, "addr", defaultAddr, "listen address")
	cmd.Flags().StringVar(&opts.redis, "redis", "", "Redis address for the shared cache (default: local file cache)")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable the result cache")
	cmd.Flags().StringVar(&opts.store, "store", storeFile, "grid store: file or mongo")
	cmd.Flags().StringVar(&opts.storeDir, "store-dir", "", "directory of the file store (default: XDG data dir)")
	cmd.Flags().StringVar(&opts.mongoURI, "mongo-uri", "", "MongoDB connection string for the mongo store")

	return cmd
}

func (o *serveOpts) resolve(cmd *cobra.Command) (*config.File, error) {
	f := &config.File{}
	if o.config != "" {
		var err error
		if f, err = config.Load(o.config); err != nil {
			return nil, err
		}
	}
	set := cmd.Flags().Changed
	if set("addr") || f.Server.Addr == "" {
		f.Server.Addr = o.addr
	}
	if set("redis") {
		f.Cache.Redis = o.redis
	}
	if set("no-cache") {
		f.Cache.Disabled = o.noCache
	}
	if set("store") || f.Store.Backend == "" {
		f.Store.Backend = o.store
	}
	if set("store-dir") {
		f.Store.Dir = o.storeDir
	}
	if set("mongo-uri") {
		f.Store.MongoURI = o.mongoURI
	}
	return f, f.Validate()
}

func (c *CLI) runServe(ctx context.Context, f *config.File) error {
	logger := loggerFromContext(ctx)

	runner, err := c.newRunner(ctx, f.Cache.Disabled, f.Cache.Redis)
	if err != nil {
		return err
	}
	defer runner.Close()

	store, err := newStore(ctx, f.Store.Backend, f.Store.Dir, f.Store.MongoURI)
	if err != nil {
		return err
	}
	defer store.Close()

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	observability.NewMetrics(reg).Install()
	defer observability.Reset()

	srv := server.New(runner, store, logger)
	srv.Gatherer = reg

	httpServer := &http.Server{
		Addr:              f.Server.Addr,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- httpServer.ListenAndServe()
	}()

	printSuccess("Serving on %s", StyleLink.Render(displayURL(f.Server.Addr)))
	printKeyValue("Store", f.Store.Backend)
	printKeyValue("Metrics", "/metrics")

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("listen %s: %w", f.Server.Addr, err)
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

// displayURL returns a clickable URL for a listen address.
func displayURL(addr string) string {
	host, port, err := net.SplitHostPort(addr)
	if err != nil {
		return "http://" + addr
	}
	if host == "" {
		host = "localhost"
	}
	return "http://" + net.JoinHostPort(host, port)
}
