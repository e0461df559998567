package di

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	awsdynamodb "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	awseventbridge "github.com/aws/aws-sdk-go-v2/service/eventbridge"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/1CEs/xams-sub001/application/ports"
	"github.com/1CEs/xams-sub001/application/services"
	"github.com/1CEs/xams-sub001/infrastructure/config"
	"github.com/1CEs/xams-sub001/infrastructure/messaging"
	"github.com/1CEs/xams-sub001/infrastructure/messaging/eventbridge"
	"github.com/1CEs/xams-sub001/infrastructure/persistence/dynamodb"
	"github.com/1CEs/xams-sub001/infrastructure/persistence/memory"
	"github.com/1CEs/xams-sub001/infrastructure/remote"
	"github.com/1CEs/xams-sub001/interfaces/http/rest"
	"github.com/1CEs/xams-sub001/pkg/observability"
)

// ProvideLogger creates a new logger instance
func ProvideLogger(cfg *config.Config) (*zap.Logger, error) {
	var zcfg zap.Config
	if cfg.IsProduction() {
		zcfg = zap.NewProductionConfig()
	} else {
		zcfg = zap.NewDevelopmentConfig()
	}

	level, err := zapcore.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("invalid LOG_LEVEL %q: %w", cfg.LogLevel, err)
	}
	zcfg.Level = zap.NewAtomicLevelAt(level)

	return zcfg.Build()
}

// ProvideMetrics creates metrics instance
func ProvideMetrics(cfg *config.Config) *observability.Metrics {
	if !cfg.EnableMetrics {
		return nil
	}
	return observability.NewMetrics("banks")
}

// ProvideAWSConfig creates AWS configuration
func ProvideAWSConfig(ctx context.Context, cfg *config.Config) (aws.Config, error) {
	return awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.AWSRegion),
	)
}

// ProvideDynamoDBClient creates a DynamoDB client
func ProvideDynamoDBClient(awsCfg aws.Config) *awsdynamodb.Client {
	return awsdynamodb.NewFromConfig(awsCfg)
}

// ProvideEventBridgeClient creates an EventBridge client
func ProvideEventBridgeClient(awsCfg aws.Config) *awseventbridge.Client {
	return awseventbridge.NewFromConfig(awsCfg)
}

// ProvideRootRepository selects the tree storage backend
func ProvideRootRepository(cfg *config.Config, client *awsdynamodb.Client, logger *zap.Logger) ports.RootRepository {
	if cfg.StoreBackend == config.StoreDynamoDB {
		logger.Info("Using DynamoDB bank store",
			zap.String("table", cfg.DynamoDBTable),
			zap.String("ownerIndex", cfg.OwnerIndex),
		)
		return dynamodb.NewRootRepository(client, cfg.DynamoDBTable, cfg.OwnerIndex, logger)
	}
	logger.Info("Using in-memory bank store")
	return memory.NewRootRepository()
}

// ProvideEventPublisher publishes to EventBridge when events are enabled and
// to the log otherwise.
func ProvideEventPublisher(cfg *config.Config, client *awseventbridge.Client, logger *zap.Logger) ports.EventPublisher {
	if cfg.EnableEvents {
		return eventbridge.NewPublisher(client, cfg.EventBusName, logger)
	}
	return messaging.NewLogPublisher(logger)
}

// ProvideTreeStore creates the server-side bank store
func ProvideTreeStore(repo ports.RootRepository, publisher ports.EventPublisher, logger *zap.Logger) *services.TreeStore {
	return services.NewTreeStore(repo, publisher, logger)
}

// ProvideBankStore exposes the tree store through the port
func ProvideBankStore(store *services.TreeStore) ports.BankStore {
	return store
}

// ProvideRouter creates the REST router
func ProvideRouter(store ports.BankStore, metrics *observability.Metrics, logger *zap.Logger, cfg *config.Config) *rest.Router {
	return rest.NewRouter(store, metrics, logger, rest.Options{
		EnableCORS:    cfg.EnableCORS,
		EnableMetrics: cfg.EnableMetrics,
		Debug:         cfg.IsDevelopment(),
	})
}

// ProvideRemoteClient creates the HTTP client of a remote bank store
func ProvideRemoteClient(cfg *config.Config, logger *zap.Logger, metrics *observability.Metrics) *remote.Client {
	return remote.NewClient(remote.Config{
		BaseURL:          cfg.BanksAPIURL,
		Timeout:          cfg.RemoteTimeout,
		BreakerFailures:  uint32(max(cfg.BreakerFailures, 1)),
		BreakerOpenDelay: cfg.BreakerOpenDelay,
	}, nil, logger, metrics)
}

// ProvideRemoteBankStore exposes the remote client through the port
func ProvideRemoteBankStore(client *remote.Client) ports.BankStore {
	return client
}
