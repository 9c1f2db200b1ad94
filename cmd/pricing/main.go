package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/wyfcoding/optionpricing/internal/pricing/application"
	"github.com/wyfcoding/optionpricing/internal/pricing/domain"
	"github.com/wyfcoding/optionpricing/internal/pricing/infrastructure"
	"github.com/wyfcoding/optionpricing/internal/pricing/infrastructure/client"
	"github.com/wyfcoding/optionpricing/internal/pricing/infrastructure/persistence/mysql"
	httphandler "github.com/wyfcoding/optionpricing/internal/pricing/interfaces/http"
	"github.com/wyfcoding/optionpricing/pkg/mq"
	"github.com/wyfcoding/pkg/app"
	"github.com/wyfcoding/pkg/cache"
	"github.com/wyfcoding/pkg/config"
	"github.com/wyfcoding/pkg/database"
	"github.com/wyfcoding/pkg/limiter"
	"github.com/wyfcoding/pkg/logging"
	"github.com/wyfcoding/pkg/messagequeue/outbox"
	"github.com/wyfcoding/pkg/metrics"
	"github.com/wyfcoding/pkg/middleware"
)

// BootstrapName 服务唯一标识
const BootstrapName = "pricing"

// Config 服务扩展配置
type Config struct {
	config.Config `mapstructure:",squash"`
	Pricing       struct {
		UseMockMarketData bool     `mapstructure:"use_mock_market_data" toml:"use_mock_market_data"`
		KafkaBrokers      []string `mapstructure:"kafka_brokers" toml:"kafka_brokers"`
	} `mapstructure:"pricing" toml:"pricing"`
}

// AppContext 应用上下文
type AppContext struct {
	Config       *Config
	CmdService   *application.PricingCommandService
	QueryService *application.PricingQueryService
	HTTPHandler  *httphandler.PricingHandler
	Limiter      limiter.Limiter
	Metrics      *metrics.Metrics
}

func main() {
	if err := app.NewBuilder[*Config, *AppContext](BootstrapName).
		WithConfig(&Config{}).
		WithService(initService).
		WithGin(registerGin).
		WithGinMiddleware(
			middleware.CORS(),
			middleware.TimeoutMiddleware(30*time.Second),
		).
		Build().
		Run(); err != nil {
		slog.Error("service bootstrap failed", "error", err)
	}
}

func registerGin(e *gin.Engine, ctx *AppContext) {
	if ctx.Config.Server.Environment == "prod" {
		gin.SetMode(gin.ReleaseMode)
	}
	if ctx.Limiter != nil {
		e.Use(middleware.RateLimitWithLimiter(ctx.Limiter))
	}
	api := e.Group("/api/v1")
	{
		ctx.HTTPHandler.RegisterRoutes(api)
	}
	e.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":    "healthy",
			"service":   BootstrapName,
			"timestamp": time.Now().Unix(),
		})
	})
}

func initService(cfg *Config, m *metrics.Metrics) (*AppContext, func(), error) {
	bootLog := slog.With("module", "bootstrap")
	logger := logging.Default()

	// 1. 数据库
	dbWrapper, err := database.NewDB(cfg.Data.Database, cfg.CircuitBreaker, logger, m)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to init db: %w", err)
	}
	db := dbWrapper.RawDB()

	// 自动迁移
	if err := db.AutoMigrate(&mysql.PricingResultModel{}, &outbox.Message{}); err != nil {
		return nil, nil, fmt.Errorf("failed to migrate tables: %w", err)
	}

	// 2. 消息队列 & Outbox（处理器在全部初始化成功后才启动）
	producer, err := mq.NewProducer(mq.KafkaConfig{Brokers: cfg.Pricing.KafkaBrokers})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to init kafka producer: %w", err)
	}
	outboxMgr := outbox.NewManager(db, logger.Logger)
	outboxProc := outbox.NewProcessor(outboxMgr, func(ctx context.Context, topic, key string, payload []byte) error {
		return producer.PublishRaw(ctx, topic, key, payload)
	}, 100, 5*time.Second)

	// 3. Redis：行情读取与限流
	redisCache, err := cache.NewRedisCache(&cfg.Data.Redis, cfg.CircuitBreaker, logger, m)
	if err != nil {
		producer.Close()
		return nil, nil, fmt.Errorf("failed to init redis: %w", err)
	}
	rateLimiter := limiter.NewRedisLimiter(redisCache.GetClient(), cfg.RateLimit.Rate, cfg.RateLimit.Burst)

	var marketData domain.MarketDataClient
	if cfg.Pricing.UseMockMarketData {
		marketData = infrastructure.NewMockMarketDataClient()
	} else {
		marketData = client.NewRedisMarketDataClient(redisCache.GetClient())
	}

	// 4. 仓储与服务
	repo := mysql.NewPricingRepository(db)
	publisher := outbox.NewPublisher(outboxMgr)
	cmdService := application.NewPricingCommandService(repo, publisher, marketData)
	queryService := application.NewPricingQueryService(repo)

	// 5. Handler
	httpHandler := httphandler.NewPricingHandler(cmdService, queryService)

	outboxProc.Start()

	cleanup := func() {
		bootLog.Info("shutting down...")
		outboxProc.Stop()
		if producer != nil {
			producer.Close()
		}
		redisCache.Close()
		if sqlDB, err := db.DB(); err == nil && sqlDB != nil {
			sqlDB.Close()
		}
	}

	return &AppContext{
		Config:       cfg,
		CmdService:   cmdService,
		QueryService: queryService,
		HTTPHandler:  httpHandler,
		Limiter:      rateLimiter,
		Metrics:      m,
	}, cleanup, nil
}
