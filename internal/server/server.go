// Package server assembles the Fiber application: middleware, handlers and
// their dependencies.
package server

import (
	"context"
	"strings"
	"time"

	"recipeapp/internal/config"
	"recipeapp/internal/database"
	"recipeapp/internal/handlers"
	"recipeapp/internal/media"
	"recipeapp/internal/metrics"
	"recipeapp/internal/middleware"
	"recipeapp/internal/repositories"
	"recipeapp/internal/services"

	sentryfiber "github.com/getsentry/sentry-go/fiber"
	"github.com/goccy/go-json"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// Deps are the external resources the application runs on.
type Deps struct {
	DB     *gorm.DB
	Store  media.Store
	Events services.EventPublisher // nil disables recipe events
}

// NewApp builds the Fiber application with every route registered.
func NewApp(cfg *config.Config, deps Deps) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:      "recipeapp",
		BodyLimit:    int(cfg.MaxUploadBytes) + 1<<20, // room for multipart framing
		JSONEncoder:  json.Marshal,
		JSONDecoder:  json.Unmarshal,
		ErrorHandler: errorHandler,
	})

	if cfg.SentryDSN != "" {
		app.Use(sentryfiber.New(sentryfiber.Options{
			Repanic:         true,
			WaitForDelivery: false,
		}))
	}
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(fiberlogger.New(fiberlogger.Config{
		Format: "${status} | ${latency} | ${ip} | ${method} | ${path} | ${locals:requestid}",
		Output: log.Logger,
	}))
	app.Use(metrics.Middleware())
	app.Use(cors.New(cors.Config{
		AllowOrigins: cfg.CORSOrigins,
		AllowHeaders: "Origin, Content-Type, Authorization, Accept",
		AllowMethods: "GET, POST, PUT, DELETE, PATCH, OPTIONS",
	}))

	// --- Repositories ---
	userRepo := repositories.NewGORMUserRepository(deps.DB)
	tagRepo := repositories.NewGORMTagRepository(deps.DB)
	ingredientRepo := repositories.NewGORMIngredientRepository(deps.DB)
	recipeRepo := repositories.NewGORMRecipeRepository(deps.DB)

	// --- Services ---
	authService := services.NewAuthService(userRepo, cfg.JWTSecret, cfg.TokenTTL)
	tagService := services.NewTagService(tagRepo)
	ingredientService := services.NewIngredientService(ingredientRepo)
	recipeService := services.NewRecipeService(recipeRepo, tagRepo, ingredientRepo, deps.Store, deps.Events)

	// --- Routes ---
	app.Get("/health", healthCheck(deps.DB))
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))
	if prefix, ok := staticPrefix(cfg); ok {
		app.Use(prefix, helmet.New(helmet.Config{
			CrossOriginResourcePolicy: "cross-origin",
		}))
		app.Static(prefix, cfg.MediaRoot)
	}

	api := app.Group("/api")
	authRequired := middleware.AuthRequired(authService)
	handlers.NewAuthHandler(authService).RegisterRoutes(api, authRequired, rateLimiter(cfg.AuthRateLimit))

	recipeAPI := api.Group("/recipe", authRequired)
	handlers.NewTagHandler(tagService).RegisterRoutes(recipeAPI)
	handlers.NewIngredientHandler(ingredientService).RegisterRoutes(recipeAPI)
	handlers.NewRecipeHandler(recipeService, cfg.MediaURL, cfg.MaxUploadBytes).RegisterRoutes(recipeAPI)

	return app
}

// staticPrefix reports the route under which local media is served.
func staticPrefix(cfg *config.Config) (string, bool) {
	if cfg.MediaBackend != "fs" || !strings.HasPrefix(cfg.MediaURL, "/") {
		return "", false
	}
	prefix := strings.TrimRight(cfg.MediaURL, "/")
	return prefix, prefix != ""
}

func rateLimiter(perMinute int) fiber.Handler {
	if perMinute <= 0 {
		return func(c *fiber.Ctx) error { return c.Next() }
	}
	return limiter.New(limiter.Config{
		Max:               perMinute,
		Expiration:        time.Minute,
		LimiterMiddleware: limiter.SlidingWindow{},
		KeyGenerator:      func(c *fiber.Ctx) string { return c.IP() },
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"message": "Request was throttled.",
			})
		},
	})
}

func healthCheck(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
		defer cancel()

		if err := database.Ping(ctx, db); err != nil {
			log.Error().Err(err).Msg("health check: database unreachable")
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
				"status":   "unhealthy",
				"database": "unreachable",
			})
		}
		return c.JSON(fiber.Map{
			"status":   "healthy",
			"time":     time.Now().Format(time.RFC3339),
			"database": "ok",
		})
	}
}

// errorHandler renders errors that escape handlers, including recovered panics.
func errorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "Internal server error"
	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
		message = e.Message
	}

	if code >= fiber.StatusInternalServerError {
		log.Error().Err(err).Str("method", c.Method()).Str("path", c.Path()).Msg("unhandled server error")
		if hub := sentryfiber.GetHubFromContext(c); hub != nil {
			hub.CaptureException(err)
		}
		message = "Internal server error"
	}

	return c.Status(code).JSON(fiber.Map{"message": message})
}
