package p2p

import (
	"context"

	"go.uber.org/fx"

	"github.com/lightdas/light-node/p2p"
)

// logEvents reports the connection and routing events of the network.
func logEvents(lc fx.Lifecycle, client *p2p.Client) {
	ctx, cancel := context.WithCancel(context.Background())
	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			events, err := client.Events(ctx)
			if err != nil {
				return err
			}
			go func() {
				for evt := range events {
					switch evt.Type {
					case p2p.RoutingUpdated:
						log.Infow("routing table updated", "size", evt.RoutingTableSize)
					default:
						log.Debugw("network event", "type", evt.Type.String(), "peer", evt.Peer.String())
					}
				}
			}()
			return nil
		},
		OnStop: func(context.Context) error {
			cancel()
			return nil
		},
	})
}
