package nodebuilder

import (
	"context"

	"go.uber.org/fx"

	"github.com/lightdas/light-node/nodebuilder/core"
	"github.com/lightdas/light-node/nodebuilder/das"
	"github.com/lightdas/light-node/nodebuilder/node"
	"github.com/lightdas/light-node/nodebuilder/p2p"
)

// ConstructModule assembles the light client components over the given Store.
func ConstructModule(cfg *Config, store Store, build *node.BuildInfo) fx.Option {
	baseComponents := fx.Options(
		fx.Provide(func(lc fx.Lifecycle) context.Context {
			return withLifecycle(context.Background(), lc)
		}),
		fx.Supply(cfg),
		fx.Supply(build),
		fx.Provide(store.Datastore),
		fx.Provide(store.Key),
		// modules provided by the node
		p2p.ConstructModule(&cfg.P2P),
		core.ConstructModule(&cfg.Core),
		das.ConstructModule(&cfg.DASer),
	)

	return fx.Module(
		"node",
		baseComponents,
	)
}

// withLifecycle wraps a context to be canceled when the lifecycle stops.
func withLifecycle(ctx context.Context, lc fx.Lifecycle) context.Context {
	ctx, cancel := context.WithCancel(ctx)
	lc.Append(fx.Hook{
		OnStop: func(context.Context) error {
			cancel()
			return nil
		},
	})
	return ctx
}
