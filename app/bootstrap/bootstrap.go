package bootstrap

import (
	"context"
	"log"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"go.uber.org/zap"

	"github.com/farmchat/backend-go/internal/cerebras"
	"github.com/farmchat/backend-go/internal/config"
	"github.com/farmchat/backend-go/internal/consul"
	"github.com/farmchat/backend-go/internal/database"
	"github.com/farmchat/backend-go/internal/deepgram"
	"github.com/farmchat/backend-go/internal/kafka"
	"github.com/farmchat/backend-go/internal/logger"
	"github.com/farmchat/backend-go/internal/mcp"
	"github.com/farmchat/backend-go/internal/storage"
	"github.com/farmchat/backend-go/internal/vision"
)

// App encapsulates lifecycle resources that need to be cleaned up on shutdown.
type App struct {
	cleanupTasks    []func() error
	consulClient    *consul.Client
	serviceRegistry *consul.ServiceRegistry
	healthChecker   *database.HealthChecker
	cancelHealth    context.CancelFunc
}

// Global app instance for controllers to access
var globalApp *App

// GetApp returns the global app instance
func GetApp() *App {
	return globalApp
}

// SetGlobalApp sets the global app instance
func SetGlobalApp(app *App) {
	globalApp = app
}

// HealthChecker returns the background dependency checker, nil before Init.
func (a *App) HealthChecker() *database.HealthChecker {
	if a == nil {
		return nil
	}
	return a.healthChecker
}

// Init bootstraps configuration, logger, database connections and other shared
// infrastructure components required by the Beego application.
func Init() (*App, error) {
	// Load environment variables from .env if present (non-fatal if missing).
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}

	// Initialize structured logger.
	if err := logger.InitLogger(); err != nil {
		return nil, err
	}

	// Load dynamic configuration.
	if err := config.LoadConfig(); err != nil {
		return nil, err
	}
	cfg := config.AppConfig

	app := &App{}

	// Initialize database.
	db, err := database.InitDB()
	if err != nil {
		return nil, err
	}
	app.cleanupTasks = append(app.cleanupTasks, func() error {
		return database.CloseDB()
	})

	// Initialize Redis (optional). Failure shouldn't block the app.
	if _, err := database.InitRedis(); err != nil {
		logger.Warn("Failed to initialize Redis", zap.Error(err))
	} else {
		app.cleanupTasks = append(app.cleanupTasks, func() error {
			return database.CloseRedis()
		})
	}

	// Background connectivity watcher for postgres and redis.
	if sqlDB, err := db.DB(); err == nil {
		app.healthChecker = database.NewHealthChecker(sqlDB, database.RedisClient, logrus.StandardLogger())
		healthCtx, cancel := context.WithCancel(context.Background())
		app.cancelHealth = cancel
		go app.healthChecker.Start(healthCtx)
		app.cleanupTasks = append(app.cleanupTasks, func() error {
			cancel()
			app.healthChecker.Stop()
			return nil
		})
	}

	// Connection pool gauges for Prometheus.
	if cfg.Prometheus.Enabled {
		if sqlDB, err := db.DB(); err == nil {
			collector := database.NewMetricsCollector(sqlDB, logrus.StandardLogger())
			collector.Start()
			app.cleanupTasks = append(app.cleanupTasks, func() error {
				collector.Stop()
				return nil
			})
		}
	}

	// Initialize MinIO (optional). Failure shouldn't block the app.
	if err := storage.InitMinIO(&cfg.Storage); err != nil {
		logger.Warn("Failed to initialize MinIO", zap.Error(err))
	}

	// 初始化Cerebras LLM客户端
	if cfg.AI.CerebrasAPIKey != "" {
		cerebras.InitGlobalService(&cfg.AI)
		logger.Info("Cerebras LLM service initialized", zap.String("model", cfg.AI.DefaultModel))
	} else {
		logger.Warn("Cerebras API key not configured, chat completions will not be available")
	}

	// 初始化MCP工具网关客户端
	mcp.InitGlobalClient(&cfg.MCP)
	logger.Info("MCP gateway client initialized", zap.String("gateway", cfg.MCP.GatewayURL))

	// 初始化Deepgram语音客户端（可选）
	if cfg.Voice.DeepgramAPIKey != "" {
		deepgram.InitGlobalClient(&cfg.Voice)
		logger.Info("Deepgram voice client initialized", zap.String("model", cfg.Voice.Model))
	} else {
		logger.Warn("Deepgram API key not configured, voice transcription will not be available")
	}

	// 初始化OpenRouter视觉客户端（可选）
	if cfg.Vision.OpenRouterAPIKey != "" {
		vision.InitGlobalClient(&cfg.Vision)
		logger.Info("Vision client initialized", zap.String("model", cfg.Vision.Model))
	} else {
		logger.Warn("OpenRouter API key not configured, image analysis will not be available")
	}

	// Initialize Kafka (optional). Failure shouldn't block the app.
	if cfg.Kafka.Enabled {
		if err := kafka.InitProducer(cfg.Kafka.Brokers, cfg.Kafka.Topic); err != nil {
			logger.Warn("Failed to initialize Kafka producer", zap.Error(err))
		} else {
			app.cleanupTasks = append(app.cleanupTasks, func() error {
				if producer := kafka.GetProducer(); producer != nil {
					return producer.Close()
				}
				return nil
			})
		}

		// 审计消费者：落一条结构化日志，供下游审计检索
		if err := kafka.InitConsumer(cfg.Kafka.Brokers, cfg.Kafka.GroupID, cfg.Kafka.Topic, auditChatEvent); err != nil {
			logger.Warn("Failed to initialize Kafka consumer", zap.Error(err))
		} else if consumer := kafka.GetConsumer(); consumer != nil {
			app.cleanupTasks = append(app.cleanupTasks, func() error {
				return consumer.Close()
			})
		}
	}

	// Register service with Consul
	if cfg.Consul.Enabled {
		consulClient, err := consul.NewClient(cfg.Consul.Address, cfg.Consul.Enabled, logger.Logger)
		if err != nil {
			logger.Warn("Failed to initialize Consul client", zap.Error(err))
		} else {
			app.consulClient = consulClient
			serviceRegistry := consul.NewServiceRegistry(
				consulClient,
				cfg.Consul.ServiceID,
				cfg.Consul.ServiceName,
				logger.Logger,
			)
			if err := serviceRegistry.Register(cfg); err != nil {
				logger.Warn("Failed to register service with Consul", zap.Error(err))
			} else {
				app.serviceRegistry = serviceRegistry
				app.cleanupTasks = append(app.cleanupTasks, func() error {
					return serviceRegistry.Deregister()
				})
				logger.Info("Service registered with Consul",
					zap.String("service_id", cfg.Consul.ServiceID),
					zap.String("service_name", cfg.Consul.ServiceName))
			}
		}
	}

	return app, nil
}

// auditChatEvent 对话事件审计处理器
func auditChatEvent(ctx context.Context, event *kafka.ChatEvent) error {
	logger.Info("chat event",
		zap.String("conversation_id", event.ConversationID),
		zap.Uint("user_id", event.UserID),
		zap.String("query_type", event.QueryType),
		zap.String("language", event.Language),
		zap.Strings("tools_used", event.ToolsUsed))
	return nil
}

// Shutdown runs registered cleanup tasks in reverse order.
func (a *App) Shutdown() {
	for i := len(a.cleanupTasks) - 1; i >= 0; i-- {
		if err := a.cleanupTasks[i](); err != nil {
			logger.Error("Cleanup task failed", zap.Error(err))
		}
	}
	logger.Sync()
}
