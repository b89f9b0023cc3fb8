package di

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	awseventbridge "github.com/aws/aws-sdk-go-v2/service/eventbridge"
	"go.uber.org/zap"

	"recipebook/application/commands"
	"recipebook/application/commands/bus"
	commandhandlers "recipebook/application/commands/handlers"
	"recipebook/application/ports"
	"recipebook/application/queries"
	querybus "recipebook/application/queries/bus"
	queryhandlers "recipebook/application/queries/handlers"
	domainconfig "recipebook/domain/config"
	"recipebook/infrastructure/cache"
	"recipebook/infrastructure/config"
	"recipebook/infrastructure/messaging"
	"recipebook/infrastructure/persistence"
	"recipebook/infrastructure/persistence/dynamodb"
	"recipebook/infrastructure/persistence/gormstore"
	"recipebook/interfaces/http/openapi"
	"recipebook/interfaces/http/rest"
	"recipebook/interfaces/http/rest/handlers"
	"recipebook/interfaces/http/rest/middleware"
	"recipebook/pkg/auth"
	pkgerrors "recipebook/pkg/errors"
	"recipebook/pkg/observability"
)

// ProvideLogger creates a new logger instance
func ProvideLogger(cfg *config.Config) (*zap.Logger, func(), error) {
	var zcfg zap.Config
	if cfg.IsProduction() {
		zcfg = zap.NewProductionConfig()
	} else {
		zcfg = zap.NewDevelopmentConfig()
	}

	if cfg.LogLevel != "" {
		level, err := zap.ParseAtomicLevel(cfg.LogLevel)
		if err != nil {
			return nil, nil, fmt.Errorf("invalid LOG_LEVEL: %w", err)
		}
		zcfg.Level = level
	}

	logger, err := zcfg.Build()
	if err != nil {
		return nil, nil, err
	}

	return logger, func() { _ = logger.Sync() }, nil
}

// ProvideDomainConfig selects the business rules for the environment
func ProvideDomainConfig(cfg *config.Config) *domainconfig.DomainConfig {
	return domainconfig.LoadDomainConfig(cfg.Environment)
}

// loadAWSConfig creates AWS configuration
func loadAWSConfig(ctx context.Context, cfg *config.Config) (aws.Config, error) {
	return awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.AWSRegion),
	)
}

// ProvideTracing starts span export when OTEL_EXPORTER_OTLP_ENDPOINT is set
func ProvideTracing(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*observability.TracerProvider, func(), error) {
	tp, err := observability.InitTracing(ctx, cfg.ServiceName, cfg.Environment, cfg.OTELEndpoint)
	if err != nil {
		return nil, nil, err
	}
	cleanup := func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tp.Shutdown(shutdownCtx); err != nil {
			logger.Warn("Failed to flush traces", zap.Error(err))
		}
	}
	return tp, cleanup, nil
}

// ProvideRecipeRepository opens the store selected by STORAGE_DRIVER
func ProvideRecipeRepository(ctx context.Context, cfg *config.Config, tp *observability.TracerProvider, logger *zap.Logger) (ports.RecipeRepository, func(), error) {
	repo, cleanup, err := openRecipeRepository(ctx, cfg, logger)
	if err != nil {
		return nil, nil, err
	}
	return persistence.TraceRepository(repo, tp.Tracer(), cfg.StorageDriver), cleanup, nil
}

func openRecipeRepository(ctx context.Context, cfg *config.Config, logger *zap.Logger) (ports.RecipeRepository, func(), error) {
	switch cfg.StorageDriver {
	case config.StorageSQLite, config.StoragePostgres:
		db, err := gormstore.Open(gormstore.Options{
			Driver:       cfg.StorageDriver,
			DSN:          cfg.DatabaseDSN,
			MaxOpenConns: cfg.DatabaseMaxConns,
			LogQueries:   cfg.DatabaseLogQueries,
		}, logger)
		if err != nil {
			return nil, nil, err
		}
		cleanup := func() {
			if err := gormstore.Close(db); err != nil {
				logger.Warn("Failed to close database", zap.Error(err))
			}
		}
		return gormstore.NewRecipeRepository(db, logger), cleanup, nil

	case config.StorageDynamoDB:
		client, err := dynamodb.NewClient(ctx, cfg.AWSRegion, cfg.DynamoDBEndpoint)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create DynamoDB client: %w", err)
		}
		return dynamodb.NewRecipeRepository(client, cfg.DynamoDBTable, logger), func() {}, nil

	default:
		return nil, nil, fmt.Errorf("unknown storage driver %q", cfg.StorageDriver)
	}
}

// ProvideEventPublisher publishes to EventBridge when a bus is configured
// and to the log otherwise
func ProvideEventPublisher(ctx context.Context, cfg *config.Config, logger *zap.Logger) (ports.EventPublisher, error) {
	if cfg.EventBusName == "" {
		return messaging.NewLogPublisher(logger), nil
	}

	awsCfg, err := loadAWSConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}
	publisher := messaging.NewEventBridgePublisher(awseventbridge.NewFromConfig(awsCfg), cfg.EventBusName, logger)
	return messaging.NewBreakerPublisher(publisher, messaging.DefaultBreakerConfig("eventbridge"), logger), nil
}

// ProvideMetrics creates the Prometheus metrics
func ProvideMetrics() *observability.Metrics {
	return observability.NewMetrics()
}

// ProvideQueryCache creates the query result cache, or nil when QUERY_CACHE_TTL is 0
func ProvideQueryCache(cfg *config.Config) (*cache.InMemoryCache, func()) {
	if cfg.QueryCacheTTL <= 0 {
		return nil, func() {}
	}
	c := cache.NewInMemoryCache(time.Minute)
	return c, func() { _ = c.Close() }
}

// ProvideRateLimiter creates the per-client limiter, or nil when RATE_LIMIT_RPS is 0
func ProvideRateLimiter(cfg *config.Config) (*auth.TokenBucketLimiter, func()) {
	if cfg.RateLimitRPS <= 0 {
		return nil, func() {}
	}
	l := auth.NewTokenBucketLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst, 10*time.Minute)
	return l, func() { _ = l.Close() }
}

// commandMetrics adapts the Prometheus metrics to the command bus
type commandMetrics struct {
	metrics *observability.Metrics
}

func (m commandMetrics) StartTimer(metric, label string) bus.Timer {
	return m.metrics.StartTimer(metric, label)
}

func (m commandMetrics) Increment(metric, label string) {
	m.metrics.Increment(metric, label)
}

// queryMetrics adapts the Prometheus metrics to the query bus
type queryMetrics struct {
	metrics *observability.Metrics
}

func (m queryMetrics) StartTimer(metric, label string) querybus.Timer {
	return m.metrics.StartTimer(metric, label)
}

func (m queryMetrics) Increment(metric, label string) {
	m.metrics.Increment(metric, label)
}

// ProvideCommandBus creates and configures the command bus
func ProvideCommandBus(
	repo ports.RecipeRepository,
	publisher ports.EventPublisher,
	domainCfg *domainconfig.DomainConfig,
	queryCache *cache.InMemoryCache,
	metrics *observability.Metrics,
	logger *zap.Logger,
) (*bus.CommandBus, error) {
	sugar := logger.Sugar()

	middlewares := []bus.Middleware{
		bus.LoggingMiddleware(sugar),
		bus.MetricsMiddleware(commandMetrics{metrics: metrics}),
	}
	if queryCache != nil {
		middlewares = append(middlewares, bus.InvalidationMiddleware(queryCache, sugar))
	}

	commandBus := bus.NewCommandBus(middlewares...)

	registrations := []struct {
		cmd     bus.Command
		handler bus.CommandHandler
	}{
		{commands.CreateRecipeCommand{}, commandhandlers.NewCreateRecipeHandler(repo, publisher, domainCfg, logger)},
		{commands.ReplaceRecipeCommand{}, commandhandlers.NewReplaceRecipeHandler(repo, publisher, domainCfg, logger)},
		{commands.DeleteRecipeCommand{}, commandhandlers.NewDeleteRecipeHandler(repo, publisher, logger)},
	}
	for _, reg := range registrations {
		if err := commandBus.Register(reg.cmd, reg.handler); err != nil {
			return nil, fmt.Errorf("failed to register command handler: %w", err)
		}
	}

	return commandBus, nil
}

// ProvideQueryBus creates and configures the query bus
func ProvideQueryBus(
	repo ports.RecipeRepository,
	queryCache *cache.InMemoryCache,
	metrics *observability.Metrics,
	cfg *config.Config,
	logger *zap.Logger,
) (*querybus.QueryBus, error) {
	middlewares := []querybus.Middleware{
		querybus.LoggingMiddleware(logger.Sugar()),
		querybus.NewMetricsMiddleware(queryMetrics{metrics: metrics}).Wrap,
	}
	if queryCache != nil {
		middlewares = append(middlewares, querybus.NewCachingMiddleware(queryCache, cfg.QueryCacheTTL).Wrap)
	}

	queryBus := querybus.NewQueryBus(middlewares...)

	registrations := []struct {
		query   querybus.Query
		handler querybus.QueryHandler
	}{
		{queries.GetRecipeQuery{}, queryhandlers.NewGetRecipeHandler(repo, logger)},
		{queries.ListRecipesQuery{}, queryhandlers.NewListRecipesHandler(repo, logger)},
		{queries.ListTagsQuery{}, queryhandlers.NewListTagsHandler(repo, logger)},
	}
	for _, reg := range registrations {
		if err := queryBus.Register(reg.query, reg.handler); err != nil {
			return nil, fmt.Errorf("failed to register query handler: %w", err)
		}
	}

	return queryBus, nil
}

// ProvideErrorHandler creates the HTTP error renderer
func ProvideErrorHandler(cfg *config.Config, logger *zap.Logger) *pkgerrors.ErrorHandler {
	return pkgerrors.NewErrorHandler(logger, cfg.IsDevelopment())
}

// ProvideRecipeHandler creates the recipe HTTP handlers
func ProvideRecipeHandler(
	commandBus *bus.CommandBus,
	queryBus *querybus.QueryBus,
	domainCfg *domainconfig.DomainConfig,
	errHandler *pkgerrors.ErrorHandler,
	cfg *config.Config,
	logger *zap.Logger,
) *handlers.RecipeHandler {
	return handlers.NewRecipeHandler(commandBus, queryBus, domainCfg, errHandler, cfg.MaxBodyBytes, logger)
}

// ProvideDispatcher builds the OpenAPI dispatcher and binds every operation
func ProvideDispatcher(
	ctx context.Context,
	cfg *config.Config,
	recipeHandler *handlers.RecipeHandler,
	errHandler *pkgerrors.ErrorHandler,
	logger *zap.Logger,
) (*openapi.Dispatcher, error) {
	opts := []openapi.Option{
		openapi.WithResponseValidation(cfg.ValidateResponses),
		openapi.WithMaxBodyBytes(cfg.MaxBodyBytes),
	}

	if cfg.AuthEnabled() {
		validator, err := auth.NewJWTValidator(cfg.JWTSecret, cfg.JWTIssuer)
		if err != nil {
			return nil, err
		}
		opts = append(opts, openapi.WithAuthenticator(middleware.NewBearerAuthenticator(validator, logger)))
	} else {
		logger.Warn("JWT_SECRET is not set, mutating operations are open")
	}

	dispatcher, err := openapi.NewDispatcher(ctx, openapi.Document(), errHandler, logger, opts...)
	if err != nil {
		return nil, err
	}
	if err := recipeHandler.Register(dispatcher); err != nil {
		return nil, err
	}
	if err := dispatcher.Verify(); err != nil {
		return nil, err
	}

	return dispatcher, nil
}

// ProvideRouter creates the HTTP router
func ProvideRouter(
	dispatcher *openapi.Dispatcher,
	repo ports.RecipeRepository,
	metrics *observability.Metrics,
	limiter *auth.TokenBucketLimiter,
	errHandler *pkgerrors.ErrorHandler,
	cfg *config.Config,
	logger *zap.Logger,
) *rest.Router {
	return rest.NewRouter(dispatcher, repo, metrics, limiter, errHandler, rest.RouterConfig{
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
		EnableCORS:         cfg.EnableCORS,
		EnableMetrics:      cfg.EnableMetrics,
	}, logger)
}
