package di

import (
	"io"
	"os"

	"github.com/43ravens/ECget/internal/buoy"
	"github.com/43ravens/ECget/internal/cli"
	"github.com/43ravens/ECget/internal/river"
	"github.com/43ravens/ECget/internal/swob"
	"github.com/43ravens/ECget/internal/wateroffice"
	"github.com/43ravens/ECget/internal/weather"
	"github.com/43ravens/ECget/pkg/config"
	"github.com/43ravens/ECget/pkg/logger"
	"github.com/43ravens/ECget/pkg/metrics"
)

// ProvideLogger creates the structured logger.
func ProvideLogger(cfg *config.Config) (*logger.Logger, error) {
	return logger.New(&logger.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Output: cfg.Logging.Output,
	})
}

// ProvideMetrics creates a Prometheus metrics recorder. Counters register
// unconditionally; the /metrics listener is gated on config.
func ProvideMetrics() *metrics.Recorder {
	return metrics.New()
}

// ProvideOutput is where the sub-commands write their data lines.
func ProvideOutput() io.Writer {
	return os.Stdout
}

// ProvideDischargeSource creates the wateroffice scraper behind the
// river-flow command.
func ProvideDischargeSource(cfg *config.Config, log *logger.Logger, rec *metrics.Recorder) river.DischargeSource {
	return wateroffice.NewClient(wateroffice.Config{
		DisclaimerURL:   cfg.WaterOffice.DisclaimerURL,
		DataURL:         cfg.WaterOffice.DataURL,
		DisclaimerDelay: cfg.WaterOffice.DisclaimerDelay,
		Timeout:         cfg.WaterOffice.Timeout,
	}, log, rec)
}

// ProvideSWOBFetcher creates the SWOB-ML document fetcher shared by the
// weather commands.
func ProvideSWOBFetcher(cfg *config.Config, log *logger.Logger, rec *metrics.Recorder) *swob.Fetcher {
	return swob.NewFetcher(cfg.Datamart.Timeout, log, rec)
}

// ProvideWeatherConfig maps the Datamart config onto the weather commands'
// consumer settings.
func ProvideWeatherConfig(cfg *config.Config) weather.Config {
	return weather.Config{
		BrokerURL:   cfg.DatamartURL(),
		Exchange:    cfg.Datamart.Exchange,
		QueuesDir:   cfg.Datamart.QueuesDir,
		QueueExpiry: cfg.Datamart.QueueExpiry,
		Lifetime:    cfg.Datamart.Lifetime,
	}
}

// ProvideBuoyClient creates the Fraser River buoy page scraper.
func ProvideBuoyClient(cfg *config.Config, log *logger.Logger, rec *metrics.Recorder) *buoy.Client {
	return buoy.NewClient(buoy.Config{
		DataURL: cfg.Buoy.DataURL,
		Timeout: cfg.Buoy.Timeout,
	}, log, rec)
}

// ProvideCommands assembles the full sub-command set.
func ProvideCommands(
	wcfg weather.Config,
	fetcher *swob.Fetcher,
	rec *metrics.Recorder,
	out io.Writer,
	log *logger.Logger,
	discharge river.DischargeSource,
	buoyClient *buoy.Client,
) []cli.Command {
	return []cli.Command{
		river.NewFlowCommand(discharge, out, log),
		weather.NewSandHeadsWind(wcfg, fetcher, rec, out, log),
		weather.NewYVRAirTemperature(wcfg, fetcher, rec, out, log),
		weather.NewYVRCloudFraction(wcfg, fetcher, rec, out, log),
		weather.NewYVRRelativeHumidity(wcfg, fetcher, rec, out, log),
		buoy.NewCommand(buoyClient, out, log),
	}
}

// ProvideApp creates the command dispatcher.
func ProvideApp(cfg *config.Config, log *logger.Logger, out io.Writer, commands []cli.Command) *cli.App {
	return cli.New(cfg, log, out, commands)
}
