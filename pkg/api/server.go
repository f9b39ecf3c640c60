// Package api exposes the REST surface: video and restaurant reads,
// restaurant search, user favorites, and the admin processing console.
package api

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/adaptor"
	"github.com/gofiber/fiber/v3/middleware/recover"
	"github.com/gofiber/fiber/v3/middleware/requestid"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tastetrail/tastetrail/pkg/cache"
	"github.com/tastetrail/tastetrail/pkg/db"
	"github.com/tastetrail/tastetrail/pkg/favorites"
	"github.com/tastetrail/tastetrail/pkg/logging"
	"github.com/tastetrail/tastetrail/pkg/pipeline"
	"github.com/tastetrail/tastetrail/pkg/recommendations"
	"github.com/tastetrail/tastetrail/pkg/restaurants"
	"github.com/tastetrail/tastetrail/pkg/videos"
)

// validate is the shared request validator.
var validate = validator.New()

// VideoStore is the video persistence surface the API needs.
type VideoStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*videos.Video, error)
	List(ctx context.Context, limit, offset int) ([]*videos.Video, error)
	Create(ctx context.Context, v *videos.Video) error
	Delete(ctx context.Context, id uuid.UUID) error
	ResetProcessing(ctx context.Context, id uuid.UUID) error
}

// RestaurantStore is the restaurant persistence surface the API needs.
type RestaurantStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*restaurants.Restaurant, error)
	Search(ctx context.Context, f restaurants.SearchFilter) ([]*restaurants.Restaurant, error)
}

// RecommendationStore reads recommendation edges.
type RecommendationStore interface {
	ListForVideo(ctx context.Context, videoID uuid.UUID) ([]*recommendations.Recommendation, error)
	ListForRestaurant(ctx context.Context, restaurantID uuid.UUID) ([]*recommendations.Recommendation, error)
}

// FavoriteStore is the favorites persistence surface.
type FavoriteStore interface {
	Add(ctx context.Context, f *favorites.Favorite) error
	Remove(ctx context.Context, userID string, restaurantID uuid.UUID) error
	ListForUser(ctx context.Context, userID string) ([]*favorites.Favorite, error)
}

// Processor triggers pipeline runs from the admin endpoints.
type Processor interface {
	ProcessVideo(ctx context.Context, videoID uuid.UUID) (*pipeline.Result, error)
	ProcessBatch(ctx context.Context, limit int) (*pipeline.BatchReport, error)
}

// Deps bundles the server's collaborators.
type Deps struct {
	Videos          VideoStore
	Restaurants     RestaurantStore
	Recommendations RecommendationStore
	Favorites       FavoriteStore
	Processor       Processor
	Cache           *cache.Cache
	Pool            *pgxpool.Pool
	Log             logging.Logger
}

// Server is the HTTP API server.
type Server struct {
	app  *fiber.App
	deps Deps
	log  logging.Logger
}

// NewServer builds the Fiber app and registers all routes.
func NewServer(deps Deps) *Server {
	log := deps.Log
	if log == nil {
		log = logging.NewNopLogger()
	}

	app := fiber.New(fiber.Config{
		AppName:      "TasteTrail API",
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
	})

	app.Use(recover.New())
	app.Use(requestid.New())

	s := &Server{app: app, deps: deps, log: log}
	s.registerRoutes()
	return s
}

// App exposes the underlying Fiber app, used by tests.
func (s *Server) App() *fiber.App {
	return s.app
}

// Listen starts serving on the given address, blocking until shutdown.
func (s *Server) Listen(addr string) error {
	s.log.Info("api server listening", logging.F("addr", addr))
	return s.app.Listen(addr)
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.app.ShutdownWithContext(ctx)
}

func (s *Server) registerRoutes() {
	s.app.Get("/healthz", s.handleHealthz)
	s.app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	api := s.app.Group("/api")

	api.Get("/videos", s.handleListVideos)
	api.Get("/videos/:id", s.handleGetVideo)

	api.Get("/restaurants", s.handleSearchRestaurants)
	api.Get("/restaurants/:id", s.handleGetRestaurant)

	api.Get("/favorites", s.handleListFavorites)
	api.Post("/favorites", s.handleAddFavorite)
	api.Delete("/favorites/:restaurantId", s.handleRemoveFavorite)

	admin := api.Group("/admin")
	admin.Post("/videos", s.handleAdminAddVideo)
	admin.Post("/videos/:id/process", s.handleAdminProcessVideo)
	admin.Post("/videos/:id/reset", s.handleAdminResetVideo)
	admin.Delete("/videos/:id", s.handleAdminDeleteVideo)
	admin.Post("/process-batch", s.handleAdminProcessBatch)
}

func (s *Server) handleHealthz(c fiber.Ctx) error {
	if s.deps.Pool != nil {
		status := db.Check(c.Context(), s.deps.Pool)
		if !status.Healthy {
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
				"status": "unhealthy",
				"error":  status.Error.Error(),
			})
		}
		return c.JSON(fiber.Map{
			"status":     "ok",
			"db_latency": status.Latency.String(),
		})
	}
	return c.JSON(fiber.Map{"status": "ok"})
}
