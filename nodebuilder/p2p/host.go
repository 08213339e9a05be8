package p2p

import (
	"context"
	"fmt"

	"github.com/libp2p/go-libp2p"
	"github.com/libp2p/go-libp2p/core/crypto"
	hst "github.com/libp2p/go-libp2p/core/host"
	"go.uber.org/fx"

	"github.com/lightdas/light-node/nodebuilder/node"
)

// host returns constructor for Host.
func host(lc fx.Lifecycle, key crypto.PrivKey, build *node.BuildInfo) (hst.Host, error) {
	h, err := libp2p.New(
		libp2p.Identity(key),
		libp2p.NoListenAddrs, // listening is driven by the network event loop
		libp2p.UserAgent(fmt.Sprintf("das-light/%s/%s", build.GetSemanticVersion(), build.CommitShortSha())),
		libp2p.DisableRelay(),
	)
	if err != nil {
		return nil, err
	}

	lc.Append(fx.Hook{OnStop: func(context.Context) error {
		return h.Close()
	}})
	log.Infow("p2p host constructed", "id", h.ID().String())
	return h, nil
}
