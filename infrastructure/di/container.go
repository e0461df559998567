package di

import (
	"go.uber.org/zap"

	"github.com/1CEs/xams-sub001/application/ports"
	"github.com/1CEs/xams-sub001/infrastructure/config"
	"github.com/1CEs/xams-sub001/interfaces/http/rest"
	"github.com/1CEs/xams-sub001/pkg/observability"
)

// Container holds the server's dependencies
type Container struct {
	Config     *config.Config
	Logger     *zap.Logger
	Metrics    *observability.Metrics
	Repository ports.RootRepository
	Publisher  ports.EventPublisher
	Store      ports.BankStore
	Router     *rest.Router
}

// ClientContainer holds what a client of a remote bank store needs
type ClientContainer struct {
	Config  *config.Config
	Logger  *zap.Logger
	Metrics *observability.Metrics
	Store   ports.BankStore
}
