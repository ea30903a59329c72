package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"relation-service/internal/config"
	"relation-service/internal/db"
	grpcsvc "relation-service/internal/grpc"
	"relation-service/internal/handlers"
	"relation-service/internal/metrics"
	"relation-service/internal/middleware"
	"relation-service/internal/moderation"
	"relation-service/internal/observability"
	"relation-service/internal/rabbitmq"
	"relation-service/internal/repositories"
	"relation-service/internal/services"
	"relation-service/internal/telemetry"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := newLogger(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	database, err := db.Connect(cfg.DBDSN, db.PoolOptions{
		MaxOpenConns:    cfg.DBMaxOpenConns,
		MaxIdleConns:    cfg.DBMaxIdleConns,
		ConnMaxLifetime: cfg.DBConnMaxLifetime,
	})
	if err != nil {
		logger.Fatal("failed to connect to database", zap.Error(err))
	}
	defer database.Close()

	publisher := newPublisher(cfg.AMQPURL, cfg.EventsExchange, "event", logger)
	defer publisher.Close()

	auditPublisher := newPublisher(cfg.AMQPURL, cfg.LogsExchange, "audit", logger)
	defer auditPublisher.Close()

	wordFilter, err := moderation.LoadWordFilter(cfg.SensitiveWordsFile)
	if err != nil {
		logger.Fatal("failed to load sensitive words", zap.String("path", cfg.SensitiveWordsFile), zap.Error(err))
	}
	logger.Info("sensitive word filter loaded", zap.Int("terms", wordFilter.Len()))

	observability.InitMetrics(prometheus.DefaultRegisterer)
	metrics.RegisterRelationMetrics()

	relationRepo := repositories.NewRelationshipRepository(database, publisher, logger)
	conversationRepo := repositories.NewConversationRepository(database, publisher, logger)
	userService := services.NewUserService(repositories.NewUserRepository(database))

	friendService := services.NewFriendService(relationRepo, userService)
	blacklistService := services.NewBlacklistService(relationRepo, userService)
	messageService := services.NewMessageService(relationRepo, conversationRepo, userService, wordFilter)

	auditEmitter := telemetry.NewAuditEmitter(auditPublisher, cfg.ServiceName, cfg.Environment, logger)
	friendHandler := handlers.NewFriendHandler(friendService, userService, auditEmitter, logger)
	blacklistHandler := handlers.NewBlacklistHandler(blacklistService, userService, auditEmitter, logger)
	messageHandler := handlers.NewMessageHandler(messageService, userService, auditEmitter, logger)

	relationGRPC := grpcsvc.NewRelationGRPCServer(friendService, blacklistService, logger)
	if _, err := grpcsvc.StartGRPCServer(ctx, cfg.GRPCAddr, relationGRPC, logger); err != nil {
		logger.Fatal("failed to start gRPC server", zap.Error(err))
	}

	sendLimiter := middleware.NewUserRateLimiter(cfg.SendRatePerSec, cfg.SendRateBurst)
	go sweepLimiters(ctx, sendLimiter)

	if !cfg.IsLocal() {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(middleware.Recovery(logger), middleware.RequestLogger(logger), middleware.Metrics())
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	auth := r.Group("", middleware.JWTAuth(cfg.JWTSecret))
	handlers.Register(auth, sendLimiter.Middleware(), friendHandler, blacklistHandler, messageHandler)

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: r,
	}

	go func() {
		logger.Info("HTTP server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server error", zap.Error(err))
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP server shutdown error", zap.Error(err))
	}
}

func newLogger(cfg config.Config) (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, err
	}

	zcfg := zap.NewProductionConfig()
	if cfg.IsLocal() {
		zcfg = zap.NewDevelopmentConfig()
	}
	zcfg.Level = zap.NewAtomicLevelAt(level)

	logger, err := zcfg.Build()
	if err != nil {
		return nil, err
	}
	return logger.With(zap.String("service", cfg.ServiceName), zap.String("env", cfg.Environment)), nil
}

func newPublisher(amqpURL, exchange, purpose string, logger *zap.Logger) rabbitmq.Publisher {
	if amqpURL == "" {
		logger.Warn("AMQP_URL not set; publishing disabled", zap.String("publisher", purpose))
		return rabbitmq.NewNoopPublisher(logger)
	}
	pub, err := rabbitmq.NewPublisher(amqpURL, exchange)
	if err != nil {
		logger.Warn("failed to initialize RabbitMQ publisher", zap.String("publisher", purpose), zap.Error(err))
		return rabbitmq.NewNoopPublisher(logger)
	}
	return pub
}

func sweepLimiters(ctx context.Context, l *middleware.UserRateLimiter) {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			l.Sweep()
		}
	}
}
