package wire

import (
	"fmt"

	"github.com/google/wire"
	"github.com/rs/zerolog"
	"github.com/thev1ndu/xp/auth"
	"github.com/thev1ndu/xp/config"
	"github.com/thev1ndu/xp/db/redis"
	"github.com/thev1ndu/xp/docs"
	"github.com/thev1ndu/xp/events/kafka"
	"github.com/thev1ndu/xp/logging"
	"github.com/thev1ndu/xp/pkg/providers"
	"github.com/thev1ndu/xp/provider"
	"github.com/thev1ndu/xp/server"
	"github.com/thev1ndu/xp/shop"
)

// ProvideLogger provides a zerolog.Logger
func ProvideLogger(cfg *config.Config) zerolog.Logger {
	return logging.New(cfg.Logging)
}

// ProvideRedisClient provides a Redis client, or nil when tokens are kept in memory
func ProvideRedisClient(cfg *config.Config) (*redis.Client, func(), error) {
	if cfg.TokenStore.Driver != "redis" {
		return nil, func() {}, nil
	}
	client, err := redis.New(cfg.Redis)
	if err != nil {
		return nil, nil, err
	}
	return client, func() { _ = client.Close() }, nil
}

// ProvideTokenStore provides the token store selected by token_store.driver
func ProvideTokenStore(cfg *config.Config, redisClient *redis.Client, logger zerolog.Logger) (providers.TokenStore, error) {
	switch cfg.TokenStore.Driver {
	case "memory":
		return provider.NewMemoryTokenStore(), nil
	case "redis":
		if redisClient == nil {
			return nil, fmt.Errorf("redis token store requires a redis client")
		}
		return provider.NewRedisTokenStore(redisClient, cfg.TokenStore.KeyPrefix, logger), nil
	default:
		return nil, fmt.Errorf("unknown token store driver %q", cfg.TokenStore.Driver)
	}
}

// ProvideCommandExecutor provides the RCON command executor
func ProvideCommandExecutor(cfg *config.Config, logger zerolog.Logger) providers.CommandExecutor {
	return provider.NewRCONProvider(cfg.RCON, logger)
}

// ProvideKafkaProducer provides a Kafka producer, or nil when no brokers are configured
func ProvideKafkaProducer(cfg *config.Config, logger zerolog.Logger) (*kafka.Producer, func()) {
	producer := kafka.NewProducer(kafka.ProducerConfig{
		Brokers: cfg.Kafka.Brokers,
		Logger:  logger,
	})
	if producer == nil {
		return nil, func() {}
	}
	return producer, func() { _ = producer.Close() }
}

// ProvideAuditPublisher provides the purchase audit publisher
func ProvideAuditPublisher(cfg *config.Config, producer *kafka.Producer, logger zerolog.Logger) providers.AuditPublisher {
	// a nil *kafka.Producer must not become a non-nil interface
	var publisher provider.Publisher
	if producer != nil {
		publisher = producer
	}
	return provider.NewAuditProvider(publisher, cfg.Kafka.AuditTopic(), logger)
}

// ProvideCatalog provides the skill catalog
func ProvideCatalog(cfg *config.Config) (*shop.Catalog, error) {
	return shop.NewCatalog(cfg.Shop.Skills)
}

// ProvideShopService provides the shop service
func ProvideShopService(
	cfg *config.Config,
	executor providers.CommandExecutor,
	store providers.TokenStore,
	catalog *shop.Catalog,
	audit providers.AuditPublisher,
	logger zerolog.Logger,
) *shop.Service {
	return shop.NewService(shop.Options{
		Executor:      executor,
		Store:         store,
		Catalog:       catalog,
		Commands:      shop.NewCommands(cfg.RCON.Commands),
		Audit:         audit,
		RefundTimeout: cfg.RCON.Timeout,
		Logger:        logger,
	})
}

// ProvideSessionManager provides the site session manager
func ProvideSessionManager(cfg *config.Config, logger zerolog.Logger) (*auth.SessionManager, error) {
	return auth.NewSessionManager(cfg.Site, logger)
}

// ProvideServerOptions provides server options
func ProvideServerOptions(cfg *config.Config, logger zerolog.Logger, service *shop.Service, sessions *auth.SessionManager) server.Options {
	return server.Options{
		Config:   cfg,
		Logger:   logger,
		Shop:     service,
		Sessions: sessions,
	}
}

// ProvideApp provides the main application with routes registered
func ProvideApp(opts server.Options) (*server.App, error) {
	app, err := server.New(opts)
	if err != nil {
		return nil, err
	}
	app.UseCommonMiddlewares()
	app.RegisterHealthCheck()
	app.RegisterShopRoutes()
	app.RegisterSwagger(server.SwaggerInfo{
		Title:       "XP Shop API",
		Description: "Spend in-game currency on skill XP.",
		Version:     "1.0",
		BasePath:    "/",
	}, func(info server.SwaggerInfo) {
		docs.SwaggerInfo.Title = info.Title
		docs.SwaggerInfo.Description = info.Description
		docs.SwaggerInfo.Version = info.Version
		docs.SwaggerInfo.BasePath = info.BasePath
	})

	opts.Logger.Info().
		Str("token_store", opts.Config.TokenStore.Driver).
		Bool("kafka_audit", len(opts.Config.Kafka.Brokers) > 0).
		Msg("Application assembled")

	return app, nil
}

// LoggingSet is the wire provider set for logging
var LoggingSet = wire.NewSet(
	ProvideLogger,
)

// StorageSet is the wire provider set for the token store
var StorageSet = wire.NewSet(
	ProvideRedisClient,
	ProvideTokenStore,
)

// EventsSet is the wire provider set for audit events
var EventsSet = wire.NewSet(
	ProvideKafkaProducer,
	ProvideAuditPublisher,
)

// ShopSet is the wire provider set for the shop domain
var ShopSet = wire.NewSet(
	ProvideCommandExecutor,
	ProvideCatalog,
	ProvideShopService,
)

// ServerSet is the wire provider set for server
var ServerSet = wire.NewSet(
	ProvideSessionManager,
	ProvideServerOptions,
	ProvideApp,
)

// AppSet builds the app from a config and an existing logger
var AppSet = wire.NewSet(
	StorageSet,
	EventsSet,
	ShopSet,
	ServerSet,
)

// FullSet includes every provider needed to build the app from a config
var FullSet = wire.NewSet(
	LoggingSet,
	AppSet,
)
