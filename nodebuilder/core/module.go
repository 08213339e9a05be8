package core

import (
	"context"

	"go.uber.org/fx"

	"github.com/lightdas/light-node/core"
	"github.com/lightdas/light-node/das"
	"github.com/lightdas/light-node/header"
	"github.com/lightdas/light-node/header/ws"
)

// ConstructModule collects the components talking to the full node.
func ConstructModule(cfg *Config) fx.Option {
	// sanitize config values before constructing module
	cfgErr := cfg.Validate()

	return fx.Module(
		"core",
		fx.Supply(*cfg),
		fx.Error(cfgErr),
		fx.Provide(
			func(ctx context.Context, lc fx.Lifecycle) (*core.ProofFetcher, error) {
				fetcher, err := core.NewProofFetcher(ctx, cfg.RPCEndpoint)
				if err != nil {
					return nil, err
				}
				lc.Append(fx.Hook{OnStop: func(context.Context) error {
					fetcher.Close()
					return nil
				}})
				return fetcher, nil
			},
		),
		fx.Provide(func(f *core.ProofFetcher) das.ProofGetter {
			return f
		}),
		fx.Provide(func() header.Subscriber {
			return ws.NewSubscriber(cfg.WSEndpoint)
		}),
	)
}
