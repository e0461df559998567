//go:build wireinject
// +build wireinject

package di

import (
	"context"

	"github.com/google/wire"

	"github.com/1CEs/xams-sub001/infrastructure/config"
)

// ServerSet wires the bank store service behind the REST API
var ServerSet = wire.NewSet(
	ProvideLogger,
	ProvideMetrics,
	ProvideAWSConfig,
	ProvideDynamoDBClient,
	ProvideEventBridgeClient,
	ProvideRootRepository,
	ProvideEventPublisher,
	ProvideTreeStore,
	ProvideBankStore,
	ProvideRouter,
	wire.Struct(new(Container), "*"),
)

// ClientSet wires a client of a remote bank store
var ClientSet = wire.NewSet(
	ProvideLogger,
	ProvideMetrics,
	ProvideRemoteClient,
	ProvideRemoteBankStore,
	wire.Struct(new(ClientContainer), "*"),
)

// InitializeContainer creates a fully wired server container
func InitializeContainer(ctx context.Context, cfg *config.Config) (*Container, error) {
	wire.Build(ServerSet)
	return nil, nil // Wire will replace this
}

// InitializeClientContainer creates a container for talking to a remote store
func InitializeClientContainer(cfg *config.Config) (*ClientContainer, error) {
	wire.Build(ClientSet)
	return nil, nil // Wire will replace this
}
