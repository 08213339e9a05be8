package p2p

import (
	"context"

	"github.com/ipfs/go-datastore"
	"github.com/ipfs/go-datastore/namespace"
	dht "github.com/libp2p/go-libp2p-kad-dht"
	hst "github.com/libp2p/go-libp2p/core/host"
	"go.uber.org/fx"

	"github.com/lightdas/light-node/p2p"
)

var dhtPrefix = datastore.NewKey("dht")

func newDHT(
	ctx context.Context,
	lc fx.Lifecycle,
	cfg Config,
	host hst.Host,
	dataStore datastore.Batching,
) (*dht.IpfsDHT, error) {
	mode, err := cfg.mode()
	if err != nil {
		return nil, err
	}

	d, err := p2p.NewDHT(ctx, host, namespace.Wrap(dataStore, dhtPrefix), cfg.recordTTL(), mode)
	if err != nil {
		return nil, err
	}
	lc.Append(fx.Hook{
		OnStop: func(context.Context) error {
			return d.Close()
		},
	})
	return d, nil
}
