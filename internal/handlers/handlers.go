package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"vidlink/api/internal/clock"
	"vidlink/api/internal/config"
	"vidlink/api/internal/identity"
	"vidlink/api/internal/middleware"
	"vidlink/api/internal/repository"
	"vidlink/api/internal/service"
	"vidlink/api/internal/storage"
)

type HandlerSet struct {
	log            zerolog.Logger
	cfg            *config.AppConfig
	provider       identity.Provider
	authService    *service.AuthService
	sessionService *service.SessionService
	webhookService *service.WebhookService
	db             *pgxpool.Pool
	cache          *redis.Client
}

func NewHandlerSet(
	log zerolog.Logger,
	db *pgxpool.Pool,
	cache *redis.Client,
	archive *storage.ObjectStore,
	provider identity.Provider,
	cfg *config.AppConfig,
) HandlerSet {
	userRepo := repository.NewUserRepository(db)
	sessionRepo := repository.NewSessionRepository(db)
	usageRepo := repository.NewUsageRepository(db)
	clk := clock.New()

	usage := service.NewUsageAggregator(usageRepo, clk)
	quota := service.NewQuotaPolicy(usage, cfg.Quota)
	lifecycle := service.NewSessionLifecycle(sessionRepo, clk)
	sessions := service.NewSessionService(quota, lifecycle, usage, sessionRepo, log)
	auth := service.NewAuthService(userRepo, provider, log)
	webhooks := service.NewWebhookService(cfg.Payments, cache, archive, log)

	return HandlerSet{
		log:            log,
		cfg:            cfg,
		provider:       provider,
		authService:    auth,
		sessionService: sessions,
		webhookService: webhooks,
		db:             db,
		cache:          cache,
	}
}

func (h HandlerSet) Register(router *gin.RouterGroup) {
	router.GET("/healthz", h.Health)

	v1 := router.Group("/v1")
	{
		auth := v1.Group("/auth")
		auth.POST("/signup", h.Signup)
		auth.POST("/login", h.Login)

		sessions := v1.Group("/sessions")
		sessions.POST("/start", middleware.OptionalIdentity(h.provider, h.authService), h.StartSession)
		sessions.POST("/:id/end", h.EndSession)

		payments := v1.Group("/payments")
		payments.POST("/webhook", h.PaymentWebhook)

		chat := v1.Group("/chat")
		chat.GET("/messages", h.ChatMessages)
		chat.POST("/send", h.ChatSend)
	}
}
