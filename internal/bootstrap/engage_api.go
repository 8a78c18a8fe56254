package bootstrap

import (
	"strings"

	"engage_server/adapter/in/http"
	"engage_server/config"
	"engage_server/infra/middleware"
	"engage_server/pkg/logger"
	"engage_server/pkg/ratelimit"

	"github.com/goccy/go-json"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/cors"
)

func NewAPI(cfg *config.Config) (*fiber.App, func(), error) {
	logLevel := logger.LevelInfo
	if cfg.IsDevelopment() {
		logLevel = logger.LevelDebug
	}
	logger.Init(logger.Config{
		Level:   logLevel,
		Service: "engage-api",
	})

	deps, cleanup, err := NewDependencies(cfg)
	if err != nil {
		logger.WithError(err).Error("Failed to initialize dependencies")
		return nil, nil, err
	}

	app := fiber.New(fiber.Config{
		ErrorHandler:          middleware.ErrorHandler(),
		DisableStartupMessage: cfg.IsProduction(),

		// go-json is noticeably faster than encoding/json for the message
		// heavy endpoints.
		JSONEncoder: json.Marshal,
		JSONDecoder: json.Unmarshal,

		BodyLimit:    2 * 1024 * 1024,
		ServerHeader: "",
	})

	// Global middleware stack (order matters)
	app.Use(middleware.Recover())
	app.Use(middleware.RequestID())
	app.Use(middleware.RequestLogger())

	app.Use(compress.New(compress.Config{
		Level: compress.LevelBestSpeed,
	}))

	// CORS: credentials require explicit origins
	allowOrigins := strings.Join(cfg.AllowedOrigins, ",")
	allowCredentials := true
	if allowOrigins == "" || allowOrigins == "*" {
		if cfg.IsProduction() {
			allowOrigins = ""
			allowCredentials = false
		} else {
			allowOrigins = "http://localhost:3000,http://localhost:5173"
		}
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins:     allowOrigins,
		AllowMethods:     "GET,POST,PUT,DELETE,PATCH,OPTIONS",
		AllowHeaders:     "Origin,Content-Type,Accept,Authorization,X-Request-ID",
		ExposeHeaders:    "X-Request-ID",
		AllowCredentials: allowCredentials,
		MaxAge:           86400,
	}))

	// Health check (no auth required)
	healthHandler := http.NewHealthHandler(deps.DB, deps.Redis, deps.MongoDB)
	healthHandler.Register(app)

	// API routes (with auth)
	api := app.Group("/api/v1")
	api.Use(middleware.JWTAuth(cfg.JWTSecret))

	// Per tenant rate limit, fails open without Redis
	var limiter *ratelimit.SlidingWindowLimiter
	if deps.Redis != nil {
		limiter = ratelimit.NewSlidingWindowLimiter(deps.Redis, cfg.RateLimitPerSec, cfg.RateLimitBurst)
	}
	api.Use(middleware.TenantRateLimit(limiter))

	http.NewTemplateHandler(deps.TemplateService).Register(api)
	http.NewModelConfigHandler(deps.ModelConfigService).Register(api)
	http.NewContactHandler(deps.ContactService).Register(api)
	http.NewConversationHandler(deps.ConversationService, deps.SuggestionService).Register(api)

	return app, cleanup, nil
}
