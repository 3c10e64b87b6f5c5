//go:build wireinject
// +build wireinject

package di

import (
	"SignalPulse/pkg/config"
	"SignalPulse/pkg/server"

	"github.com/google/wire"
)

// InitializeApp wires up all dependencies and returns the application.
// Wire will generate the implementation of this function.
func InitializeApp(cfg *config.Config) (*server.App, error) {
	wire.Build(
		ProvideLogger,
		ProvideMetrics,
		ProvideCache,

		// Infrastructure clients
		ProvideClickHouseClient,
		ProvideKafkaProducer,

		// Repositories
		ProvideSignalStore,
		ProvideSignalPublisher,

		// Market data and macro context
		ProvideCandleProvider,
		ProvideMoodProvider,
		ProvideKlineStream,

		// Core
		ProvideClassifier,
		ProvideProcessor,
		ProvideScanUseCase,

		// HTTP
		ProvideHandler,

		// Application server
		ProvideApp,
	)
	return &server.App{}, nil
}
