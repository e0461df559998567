package di

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/1CEs/xams-sub001/infrastructure/config"
	"github.com/1CEs/xams-sub001/infrastructure/messaging"
	"github.com/1CEs/xams-sub001/infrastructure/persistence/memory"
)

func testConfig() *config.Config {
	return &config.Config{
		Environment:   "development",
		StoreBackend:  config.StoreMemory,
		AWSRegion:     "us-west-2",
		LogLevel:      "warn",
		EnableMetrics: true,
		BanksAPIURL:   "http://localhost:8080/api/v1",
	}
}

func TestProvideLoggerRejectsUnknownLevel(t *testing.T) {
	cfg := testConfig()
	cfg.LogLevel = "chatty"
	_, err := ProvideLogger(cfg)
	assert.Error(t, err)
}

func TestMemoryBackendSelection(t *testing.T) {
	cfg := testConfig()
	repo := ProvideRootRepository(cfg, nil, zap.NewNop())
	assert.IsType(t, &memory.RootRepository{}, repo)

	publisher := ProvideEventPublisher(cfg, nil, zap.NewNop())
	assert.IsType(t, &messaging.LogPublisher{}, publisher)
}

func TestInitializeContainer(t *testing.T) {
	t.Setenv("AWS_ACCESS_KEY_ID", "test")
	t.Setenv("AWS_SECRET_ACCESS_KEY", "test")

	container, err := InitializeContainer(context.Background(), testConfig())
	require.NoError(t, err)
	assert.NotNil(t, container.Router)
	assert.NotNil(t, container.Metrics)
	assert.NotNil(t, container.Store)
}

func TestInitializeClientContainer(t *testing.T) {
	cfg := testConfig()
	cfg.EnableMetrics = false

	container, err := InitializeClientContainer(cfg)
	require.NoError(t, err)
	assert.Nil(t, container.Metrics)
	assert.NotNil(t, container.Store)
}
