package api

import (
	"strconv"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"

	"github.com/tastetrail/tastetrail/pkg/cache"
	"github.com/tastetrail/tastetrail/pkg/favorites"
	"github.com/tastetrail/tastetrail/pkg/logging"
	"github.com/tastetrail/tastetrail/pkg/restaurants"

	tterrors "github.com/tastetrail/tastetrail/pkg/errors"
)

// userIDHeader carries the caller identity. Token verification happens at
// the gateway in front of this service; the header is trusted here.
const userIDHeader = "X-User-ID"

func (s *Server) handleListVideos(c fiber.Ctx) error {
	limit := queryInt(c, "limit", 20, 100)
	offset := queryInt(c, "offset", 0, 1<<30)

	vids, err := s.deps.Videos.List(c.Context(), limit, offset)
	if err != nil {
		return s.respondError(c, err)
	}

	out := make([]videoResponse, 0, len(vids))
	for _, v := range vids {
		out = append(out, toVideoResponse(v))
	}
	return c.JSON(fiber.Map{"videos": out})
}

func (s *Server) handleGetVideo(c fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return badRequest(c, "invalid video id")
	}

	v, err := s.deps.Videos.GetByID(c.Context(), id)
	if err != nil {
		return s.respondError(c, err)
	}

	recs, err := s.deps.Recommendations.ListForVideo(c.Context(), id)
	if err != nil {
		return s.respondError(c, err)
	}

	return c.JSON(fiber.Map{
		"video":           toVideoResponse(v),
		"recommendations": toRecommendationResponses(recs),
	})
}

func (s *Server) handleSearchRestaurants(c fiber.Ctx) error {
	filter := restaurants.SearchFilter{
		Query:   c.Query("q"),
		City:    c.Query("city"),
		Cuisine: c.Query("cuisine"),
		Limit:   queryInt(c, "limit", 20, 100),
		Offset:  queryInt(c, "offset", 0, 1<<30),
	}

	key := cache.Key("search",
		filter.Query, filter.City, filter.Cuisine,
		strconv.Itoa(filter.Limit), strconv.Itoa(filter.Offset))

	var cached []restaurantResponse
	if s.deps.Cache != nil {
		if err := s.deps.Cache.Get(c.Context(), key, &cached); err == nil {
			return c.JSON(fiber.Map{"restaurants": cached, "cached": true})
		}
	}

	results, err := s.deps.Restaurants.Search(c.Context(), filter)
	if err != nil {
		return s.respondError(c, err)
	}

	out := make([]restaurantResponse, 0, len(results))
	for _, r := range results {
		out = append(out, toRestaurantResponse(r))
	}

	if s.deps.Cache != nil {
		s.deps.Cache.Set(c.Context(), key, out)
	}
	return c.JSON(fiber.Map{"restaurants": out})
}

func (s *Server) handleGetRestaurant(c fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return badRequest(c, "invalid restaurant id")
	}

	r, err := s.deps.Restaurants.GetByID(c.Context(), id)
	if err != nil {
		return s.respondError(c, err)
	}

	recs, err := s.deps.Recommendations.ListForRestaurant(c.Context(), id)
	if err != nil {
		return s.respondError(c, err)
	}

	return c.JSON(fiber.Map{
		"restaurant":      toRestaurantResponse(r),
		"recommendations": toRecommendationResponses(recs),
	})
}

func (s *Server) handleListFavorites(c fiber.Ctx) error {
	userID := c.Get(userIDHeader)
	if userID == "" {
		return unauthorized(c)
	}

	favs, err := s.deps.Favorites.ListForUser(c.Context(), userID)
	if err != nil {
		return s.respondError(c, err)
	}

	out := make([]fiber.Map, 0, len(favs))
	for _, f := range favs {
		out = append(out, fiber.Map{
			"restaurant_id": f.RestaurantID.String(),
			"created_at":    f.CreatedAt,
		})
	}
	return c.JSON(fiber.Map{"favorites": out})
}

func (s *Server) handleAddFavorite(c fiber.Ctx) error {
	userID := c.Get(userIDHeader)
	if userID == "" {
		return unauthorized(c)
	}

	var req addFavoriteRequest
	if err := c.Bind().Body(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	if err := validate.Struct(req); err != nil {
		return badRequest(c, err.Error())
	}

	restaurantID, err := uuid.Parse(req.RestaurantID)
	if err != nil {
		return badRequest(c, "invalid restaurant id")
	}

	fav := &favorites.Favorite{UserID: userID, RestaurantID: restaurantID}
	if err := s.deps.Favorites.Add(c.Context(), fav); err != nil {
		return s.respondError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"restaurant_id": fav.RestaurantID.String(),
		"created_at":    fav.CreatedAt,
	})
}

func (s *Server) handleRemoveFavorite(c fiber.Ctx) error {
	userID := c.Get(userIDHeader)
	if userID == "" {
		return unauthorized(c)
	}

	restaurantID, err := uuid.Parse(c.Params("restaurantId"))
	if err != nil {
		return badRequest(c, "invalid restaurant id")
	}

	if err := s.deps.Favorites.Remove(c.Context(), userID, restaurantID); err != nil {
		return s.respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// respondError maps domain errors onto HTTP statuses.
func (s *Server) respondError(c fiber.Ctx, err error) error {
	switch {
	case tterrors.IsNotFound(err):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "not found"})
	case tterrors.IsAlreadyProcessed(err), tterrors.IsAlreadyExists(err), tterrors.IsConflict(err):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": err.Error()})
	case tterrors.IsValidation(err):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	default:
		s.log.Error("request failed",
			logging.F("path", c.Path()),
			logging.Err(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal error"})
	}
}

func badRequest(c fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": msg})
}

func unauthorized(c fiber.Ctx) error {
	return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "missing user identity"})
}

func queryInt(c fiber.Ctx, name string, def, max int) int {
	raw := c.Query(name)
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return def
	}
	if n > max {
		return max
	}
	return n
}
