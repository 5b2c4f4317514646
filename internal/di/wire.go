//go:build wireinject
// +build wireinject

package di

import (
	"github.com/google/wire"

	"github.com/43ravens/ECget/internal/cli"
	"github.com/43ravens/ECget/pkg/config"
)

// InitializeApp wires up all dependencies and returns the application.
// Wire will generate the implementation of this function.
func InitializeApp(cfg *config.Config) (*cli.App, error) {
	wire.Build(
		// Ambient services
		ProvideLogger,
		ProvideMetrics,
		ProvideOutput,

		// Data sources
		ProvideDischargeSource,
		ProvideSWOBFetcher,
		ProvideWeatherConfig,
		ProvideBuoyClient,

		// Sub-commands and dispatcher
		ProvideCommands,
		ProvideApp,
	)
	return &cli.App{}, nil
}
