//go:build wireinject
// +build wireinject

package di

import (
	"PerfScope/pkg/config"
	"PerfScope/pkg/server"

	"github.com/google/wire"
)

// InitializeApp wires up all dependencies and returns the application.
// Wire will generate the implementation of this function.
func InitializeApp(cfg *config.Config) (*server.App, func(), error) {
	wire.Build(
		// Ambient
		ProvideLogger,
		ProvideMetrics,

		// Infrastructure clients
		ProvideCache,
		ProvideClickHouseClient,
		ProvideReportPublisher,

		// Repositories
		ProvidePriceProvider,

		// Use cases
		ProvideBacktester,

		// Application server
		ProvideHTTPHandler,
		ProvideApp,
	)
	return nil, nil, nil
}
