//go:build wireinject
// +build wireinject

package di

import (
	"github.com/google/wire"

	"MoverScan/pkg/config"
	"MoverScan/pkg/server"
)

// InitializeApp builds the full application graph from config.
func InitializeApp(cfg *config.Config) (*server.App, error) {
	wire.Build(
		ProvideLogger,
		ProvideCache,
		ProvideLimiter,
		ProvideMonitor,
		ProvideMetrics,
		ProvideMarketDataClient,
		ProvideUniverse,
		ProvideNews,
		ProvideMarketContext,
		ProvideClickHouseClient,
		ProvideKafkaProducer,
		ProvideSinks,
		ProvideDefaultPolicy,
		ProvideScanner,
		ProvideSessionClock,
		ProvideScheduler,
		ProvideHandler,
		ProvideApp,
	)
	return nil, nil
}
