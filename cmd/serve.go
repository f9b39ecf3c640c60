package cmd

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/tastetrail/tastetrail/pkg/api"
	"github.com/tastetrail/tastetrail/pkg/cache"
	"github.com/tastetrail/tastetrail/pkg/db"
	"github.com/tastetrail/tastetrail/pkg/favorites"
	"github.com/tastetrail/tastetrail/pkg/logging"
	"github.com/tastetrail/tastetrail/pkg/pipeline"
	"github.com/tastetrail/tastetrail/pkg/recommendations"
	"github.com/tastetrail/tastetrail/pkg/restaurants"
	"github.com/tastetrail/tastetrail/pkg/videos"
)

// shutdownGrace bounds how long in-flight requests get on shutdown.
const shutdownGrace = 15 * time.Second

func newServeCommand() *cobra.Command {
	var migrateFirst bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the TasteTrail REST API server",
		Long: `Run the TasteTrail REST API server.

Serves video and restaurant reads, restaurant search, user favorites, and the
admin processing console. Health is exposed at /healthz and Prometheus
metrics at /metrics.

Examples:
  tastetrail serve
  tastetrail serve --migrate
  TT_LISTEN_ADDR=:9090 tastetrail serve`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), migrateFirst)
		},
	}

	cmd.Flags().BoolVar(&migrateFirst, "migrate", false, "apply pending migrations before serving")
	return cmd
}

func runServe(ctx context.Context, migrateFirst bool) error {
	rt, err := newRuntime(ctx)
	if err != nil {
		return err
	}
	defer rt.close()

	if migrateFirst {
		if err := db.Migrate(ctx, rt.pool); err != nil {
			return err
		}
	}

	prometheus.MustRegister(db.NewPoolStatsCollector(rt.pool, "tastetrail", "api"))
	metrics := pipeline.NewMetrics(prometheus.DefaultRegisterer)

	searchCache := cache.New(cache.Config{
		Addr:     rt.cfg.Redis.Addr,
		Password: rt.cfg.Redis.Password,
		DB:       rt.cfg.Redis.DB,
		TTL:      rt.cfg.Redis.SearchCacheTTL,
	}, rt.log)
	defer searchCache.Close()

	server := api.NewServer(api.Deps{
		Videos:          videos.NewRepository(rt.pool),
		Restaurants:     restaurants.NewRepository(rt.pool),
		Recommendations: recommendations.NewRepository(rt.pool),
		Favorites:       favorites.NewRepository(rt.pool),
		Processor:       rt.buildPipeline(metrics),
		Cache:           searchCache,
		Pool:            rt.pool,
		Log:             rt.log,
	})

	go func() {
		<-ctx.Done()
		rt.log.Info("shutting down api server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			rt.log.Error("shutdown failed", logging.Err(err))
		}
	}()

	return server.Listen(rt.cfg.Server.ListenAddr)
}
