package das

import (
	"context"

	logging "github.com/ipfs/go-log/v2"
	"go.uber.org/fx"

	"github.com/lightdas/light-node/das"
)

var log = logging.Logger("module/das")

// ConstructModule collects the sampling components.
func ConstructModule(cfg *Config) fx.Option {
	// sanitize config values before constructing module
	cfgErr := cfg.Validate()

	return fx.Module(
		"das",
		fx.Supply(*cfg),
		fx.Error(cfgErr),
		fx.Provide(func(c Config) []das.Option {
			return c.options()
		}),
		fx.Provide(newConfidenceStore),
		fx.Provide(func(s *das.ConfidenceStore) das.ConfidenceReader {
			return s
		}),
		fx.Provide(newVerifier),
		fx.Provide(fx.Annotate(
			newDASer,
			fx.OnStart(func(ctx context.Context, daser *das.DASer) error {
				return daser.Start(ctx)
			}),
			fx.OnStop(func(ctx context.Context, daser *das.DASer) error {
				return daser.Stop(ctx)
			}),
		)),
		fx.Invoke(consumeNotifications),
	)
}

// WithMetrics enables metrics of the DASer.
func WithMetrics() fx.Option {
	return fx.Invoke(func(d *das.DASer) error {
		return d.WithMetrics()
	})
}
