package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/tastetrail/tastetrail/config"
	"github.com/tastetrail/tastetrail/pkg/db"
	"github.com/tastetrail/tastetrail/pkg/extraction"
	"github.com/tastetrail/tastetrail/pkg/logging"
	"github.com/tastetrail/tastetrail/pkg/pipeline"
	"github.com/tastetrail/tastetrail/pkg/recommendations"
	"github.com/tastetrail/tastetrail/pkg/restaurants"
	"github.com/tastetrail/tastetrail/pkg/transcripts"
	"github.com/tastetrail/tastetrail/pkg/videos"
)

// defaultConfigPath is tried when --config is not given.
const defaultConfigPath = "tastetrail.yaml"

// runtime bundles the pieces every command needs: loaded configuration, a
// logger, and a database pool.
type runtime struct {
	cfg  *config.Config
	log  logging.Logger
	pool *pgxpool.Pool
}

// newRuntime loads configuration, builds the logger, and connects to the
// database with retry. Callers must call close when done.
func newRuntime(ctx context.Context) (*runtime, error) {
	path := cfgFile
	if path == "" {
		path = defaultConfigPath
	}

	cfg, err := config.Load(path)
	if err != nil {
		return nil, fmt.Errorf("loading configuration: %w", err)
	}
	if logLevel != "" {
		cfg.LogLevel = logLevel
	}

	log := logging.NewLogger(&logging.Config{
		Level:       logging.Level(cfg.LogLevel),
		ServiceName: "tastetrail",
		Environment: cfg.Environment,
		JSONFormat:  cfg.LogJSON,
	})

	pool, err := db.ConnectWithRetry(ctx, db.FromAppConfig(cfg.Database), 5, 2*time.Second)
	if err != nil {
		return nil, fmt.Errorf("connecting to database: %w", err)
	}

	return &runtime{cfg: cfg, log: log, pool: pool}, nil
}

func (r *runtime) close() {
	db.Close(r.pool)
}

// buildPipeline wires the full processing pipeline: repositories, transcript
// acquisition, LLM extraction, and restaurant resolution. Metrics are
// optional; one-shot commands skip them.
func (r *runtime) buildPipeline(metrics *pipeline.Metrics) *pipeline.Pipeline {
	videoRepo := videos.NewRepository(r.pool)
	edgeRepo := recommendations.NewRepository(r.pool)
	restaurantRepo := restaurants.NewRepository(r.pool)

	primaryOpts := []transcripts.TimedTextOption{}
	if r.cfg.YouTube.BaseURL != "" {
		primaryOpts = append(primaryOpts, transcripts.WithTimedTextBaseURL(r.cfg.YouTube.BaseURL))
	}
	primary := transcripts.NewTimedTextClient(r.cfg.YouTube.RequestTimeout, primaryOpts...)

	var fallback transcripts.FallbackProvider
	if r.cfg.YouTube.FallbackURL != "" {
		fallback = transcripts.NewFallbackClient(r.cfg.YouTube.FallbackURL, r.cfg.YouTube.APIKey, r.cfg.YouTube.RequestTimeout)
	}
	acquirer := transcripts.NewAcquirer(primary, fallback, r.log)

	llm := extraction.NewGatewayClient(extraction.GatewayClientConfig{
		URL:            r.cfg.LLM.GatewayURL,
		APIKey:         r.cfg.LLM.APIKey,
		RequestTimeout: r.cfg.LLM.RequestTimeout,
		MaxRetryTime:   r.cfg.LLM.MaxRetryTime,
	})
	extractor := extraction.NewExtractor(llm, r.log, extraction.WithExtractorConfig(extraction.ExtractorConfig{
		Model:              r.cfg.LLM.Model,
		MaxTokens:          r.cfg.LLM.MaxTokens,
		Temperature:        r.cfg.LLM.Temperature,
		MaxTranscriptChars: r.cfg.Pipeline.MaxTranscriptChars,
	}))

	resolver := restaurants.NewResolver(restaurantRepo, r.log)

	opts := []pipeline.Option{
		pipeline.WithConfig(pipeline.Config{
			BatchLimit:         r.cfg.Pipeline.BatchLimit,
			MinDurationSeconds: r.cfg.Pipeline.MinDurationSeconds,
		}),
	}
	if metrics != nil {
		opts = append(opts, pipeline.WithMetrics(metrics))
	}

	return pipeline.New(videoRepo, edgeRepo, acquirer, extractor, resolver, r.log, opts...)
}
