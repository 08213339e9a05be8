package p2p

import (
	logging "github.com/ipfs/go-log/v2"
	"go.uber.org/fx"

	"github.com/lightdas/light-node/das"
	"github.com/lightdas/light-node/p2p"
)

var log = logging.Logger("module/p2p")

// ConstructModule collects all the components and services related to p2p.
func ConstructModule(cfg *Config) fx.Option {
	// sanitize config values before constructing module
	cfgErr := cfg.Validate()

	return fx.Module(
		"p2p",
		fx.Supply(*cfg),
		fx.Error(cfgErr),
		fx.Provide(host),
		fx.Provide(newDHT),
		fx.Provide(newNetwork),
		fx.Provide(func(n *p2p.Network) *p2p.Client {
			return n.Client()
		}),
		fx.Provide(func(c *p2p.Client) das.CellNetwork {
			return c
		}),
		// network must start before anything subscribes to it
		fx.Invoke(networkLifecycle),
		fx.Invoke(logEvents),
	)
}

// WithMetrics enables metrics of the network event loop.
func WithMetrics() fx.Option {
	return fx.Invoke(func(n *p2p.Network) error {
		return n.WithMetrics()
	})
}
