package bootstrap

import (
	"context"
	"time"

	"engage_server/adapter/out/llm"
	"engage_server/adapter/out/messaging"
	"engage_server/adapter/out/mongodb"
	"engage_server/adapter/out/persistence"
	"engage_server/config"
	"engage_server/core/port/out"
	"engage_server/core/service/assemble"
	"engage_server/core/service/contact"
	"engage_server/core/service/conversation"
	"engage_server/core/service/feedback"
	"engage_server/core/service/learning"
	"engage_server/core/service/match"
	"engage_server/core/service/modelconfig"
	"engage_server/core/service/pattern"
	"engage_server/core/service/suggestion"
	"engage_server/core/service/template"
	"engage_server/infra/database"
	"engage_server/pkg/cache"
	"engage_server/pkg/logger"
	"engage_server/pkg/metrics"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
)

type Dependencies struct {
	Config  *config.Config
	DB      *pgxpool.Pool
	SQLDB   *sqlx.DB
	Redis   *redis.Client
	MongoDB *mongo.Client

	// Repositories
	TemplateRepo     out.TemplateRepository
	BindingRepo      out.BindingRepository
	ModelConfigRepo  out.ModelConfigRepository
	ConversationRepo out.ConversationRepository
	ContactRepo      out.ContactRepository
	SuggestionRepo   out.SuggestionRepository
	FeedbackRepo     out.FeedbackRepository
	PatternRepo      out.PatternRepository
	CatalogRepo      out.CatalogRepository
	TenantRepo       out.TenantRepository
	KnowledgeStore   out.KnowledgeStore

	// Messaging
	MessageProducer out.MessageProducer
	Delivery        out.Delivery

	// Generation
	Generator out.Generator

	// Services
	TemplateService     *template.Service
	ModelConfigService  *modelconfig.Service
	ContactService      *contact.Service
	ConversationService *conversation.Service
	SuggestionService   *suggestion.Service
	FeedbackCollector   *feedback.Collector
	LearningJob         *learning.Job
	PatternExtractor    *pattern.Extractor
}

func NewDependencies(cfg *config.Config) (*Dependencies, func(), error) {
	deps := &Dependencies{Config: cfg}
	var cleanups []func()

	// Database (pgxpool for health checks, sqlx for the adapters)
	db, err := database.NewPostgres(cfg.DatabaseURL)
	if err != nil {
		return nil, nil, err
	}
	deps.DB = db
	cleanups = append(cleanups, func() { db.Close() })

	sqlDB, err := database.NewSQLX(cfg.DatabaseURL)
	if err != nil {
		for i := len(cleanups) - 1; i >= 0; i-- {
			cleanups[i]()
		}
		return nil, nil, err
	}
	deps.SQLDB = sqlDB
	cleanups = append(cleanups, func() { sqlDB.Close() })
	metrics.RegisterPool("postgres", sqlDB.DB)

	// Redis
	redisClient, err := database.NewRedis(cfg.RedisURL)
	if err != nil {
		logger.Warn("Redis connection failed: %v", err)
	} else {
		deps.Redis = redisClient
		cleanups = append(cleanups, func() { redisClient.Close() })
		deps.MessageProducer = messaging.NewRedisProducer(redisClient)
		deps.Delivery = messaging.NewRedisDelivery(redisClient)
	}

	// MongoDB (knowledge base)
	if cfg.MongoDBURL != "" {
		mongoClient, err := mongodb.NewClient(cfg.MongoDBURL)
		if err != nil {
			logger.Warn("MongoDB connection failed: %v", err)
		} else {
			deps.MongoDB = mongoClient
			cleanups = append(cleanups, func() {
				mongoClient.Disconnect(context.Background())
			})

			knowledge := mongodb.NewKnowledgeAdapter(mongoClient.Database(cfg.MongoDBName))
			if err := knowledge.EnsureIndexes(context.Background()); err != nil {
				logger.Warn("Failed to ensure knowledge indexes: %v", err)
			}
			deps.KnowledgeStore = knowledge
		}
	}

	// Repositories
	deps.TemplateRepo = persistence.NewTemplateAdapter(sqlDB)
	deps.BindingRepo = persistence.NewBindingAdapter(sqlDB)
	deps.ModelConfigRepo = persistence.NewModelConfigAdapter(sqlDB)
	if deps.Redis != nil {
		deps.ModelConfigRepo = persistence.NewCachedModelConfigRepository(
			deps.ModelConfigRepo, cache.NewRedisCache(deps.Redis))
	}
	deps.ConversationRepo = persistence.NewConversationAdapter(sqlDB)
	deps.ContactRepo = persistence.NewContactAdapter(sqlDB)
	deps.SuggestionRepo = persistence.NewSuggestionAdapter(sqlDB)
	deps.FeedbackRepo = persistence.NewFeedbackAdapter(sqlDB)
	deps.PatternRepo = persistence.NewPatternAdapter(sqlDB)
	deps.CatalogRepo = persistence.NewCatalogAdapter(sqlDB)
	deps.TenantRepo = persistence.NewTenantAdapter(sqlDB)

	// Generation client
	if cfg.OpenAIAPIKey != "" {
		deps.Generator = llm.NewClient(llm.ClientConfig{
			APIKey:  cfg.OpenAIAPIKey,
			BaseURL: cfg.OpenAIBaseURL,
			Model:   cfg.LLMModel,
			Timeout: time.Duration(cfg.LLMTimeoutSec) * time.Second,
		})
	} else {
		logger.Warn("OPENAI_API_KEY not set, generative fallback disabled")
	}

	// Services
	deps.TemplateService = template.NewService(deps.TemplateRepo, deps.BindingRepo)
	deps.ModelConfigService = modelconfig.NewService(deps.ModelConfigRepo)
	deps.ContactService = contact.NewService(deps.ContactRepo)

	deps.FeedbackCollector = feedback.NewCollector(
		deps.SuggestionRepo,
		deps.FeedbackRepo,
		deps.ConversationRepo,
		deps.ModelConfigRepo,
		deps.MessageProducer,
	)

	deps.ConversationService = conversation.NewService(
		deps.ConversationRepo,
		deps.ContactRepo,
		deps.SuggestionRepo,
		deps.FeedbackCollector,
		deps.Delivery,
	)

	matcher := match.NewMatcher(deps.BindingRepo)
	assembler := assemble.NewAssembler(deps.CatalogRepo, deps.PatternRepo)
	deps.SuggestionService = suggestion.NewService(
		matcher,
		assembler,
		deps.Generator,
		deps.ConversationRepo,
		deps.ContactRepo,
		deps.TemplateRepo,
		deps.BindingRepo,
		deps.SuggestionRepo,
		deps.ModelConfigRepo,
		deps.TenantRepo,
	)

	deps.LearningJob = learning.NewJob(deps.ModelConfigRepo, deps.FeedbackRepo, deps.ConversationRepo)
	deps.PatternExtractor = pattern.NewExtractor(deps.ConversationRepo, deps.PatternRepo, deps.KnowledgeStore)

	cleanup := func() {
		for i := len(cleanups) - 1; i >= 0; i-- {
			cleanups[i]()
		}
	}

	return deps, cleanup, nil
}

func (d *Dependencies) HealthCheck(ctx context.Context) error {
	if err := d.DB.Ping(ctx); err != nil {
		return err
	}

	if d.Redis != nil {
		if err := d.Redis.Ping(ctx).Err(); err != nil {
			return err
		}
	}

	return nil
}
