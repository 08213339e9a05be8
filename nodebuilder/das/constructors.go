package das

import (
	"context"
	"path/filepath"

	"github.com/ipfs/go-datastore"
	"github.com/mitchellh/go-homedir"
	"go.uber.org/fx"

	"github.com/lightdas/light-node/das"
	"github.com/lightdas/light-node/header"
	"github.com/lightdas/light-node/proof"
)

func newConfidenceStore(lc fx.Lifecycle, ds datastore.Batching) *das.ConfidenceStore {
	store := das.NewPersistentConfidenceStore(ds)
	lc.Append(fx.Hook{OnStart: store.Load})
	return store
}

func newVerifier(cfg Config) (proof.Verifier, error) {
	path, err := homedir.Expand(filepath.Clean(cfg.SRSPath))
	if err != nil {
		return nil, err
	}
	return proof.LoadKZGVerifier(path)
}

func newDASer(
	hsub header.Subscriber,
	getter das.ProofGetter,
	network das.CellNetwork,
	verifier proof.Verifier,
	store *das.ConfidenceStore,
	options []das.Option,
) (*das.DASer, error) {
	return das.NewDASer(hsub, getter, network, verifier, store, options...)
}

// consumeNotifications reports every sampled block until sampling is over.
func consumeNotifications(lc fx.Lifecycle, daser *das.DASer) {
	ctx, cancel := context.WithCancel(context.Background())
	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			go func() {
				for {
					select {
					case msg := <-daser.Notifications():
						log.Infow("block sampled",
							"block", msg.BlockNumber,
							"rows", msg.MaxRows,
							"cols", msg.MaxCols,
						)
					case <-daser.Done():
						return
					case <-ctx.Done():
						return
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
