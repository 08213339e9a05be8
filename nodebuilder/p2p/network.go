package p2p

import (
	"context"
	"fmt"

	dht "github.com/libp2p/go-libp2p-kad-dht"
	hst "github.com/libp2p/go-libp2p/core/host"
	"go.uber.org/fx"

	"github.com/lightdas/light-node/p2p"
)

func newNetwork(cfg Config, host hst.Host, d *dht.IpfsDHT) (*p2p.Network, error) {
	return p2p.NewNetwork(
		p2p.NewKadRouter(host, d),
		p2p.WithCommandQueueSize(cfg.CommandQueueSize),
		p2p.WithParallelismLimit(cfg.ParallelismLimit),
		p2p.WithRecordTTL(cfg.recordTTL()),
	)
}

// startNetwork starts the event loop, listens on the configured addresses and joins the DHT
// through the bootstrap peers, if any.
func startNetwork(ctx context.Context, cfg Config, network *p2p.Network) error {
	if err := network.Start(ctx); err != nil {
		return err
	}
	client := network.Client()

	addrs, err := cfg.listenAddrs()
	if err != nil {
		return err
	}
	for _, addr := range addrs {
		if err = client.StartListening(ctx, addr); err != nil {
			return err
		}
	}

	peers, err := cfg.bootstrappers()
	if err != nil {
		return err
	}
	if len(peers) == 0 {
		log.Warn("no bootstrap peers configured, waiting for inbound connections")
		return nil
	}
	if err = client.Bootstrap(ctx, peers...); err != nil {
		return fmt.Errorf("p2p: bootstrapping: %w", err)
	}
	return nil
}

func networkLifecycle(lc fx.Lifecycle, cfg Config, network *p2p.Network) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			return startNetwork(ctx, cfg, network)
		},
		OnStop: network.Stop,
	})
}
