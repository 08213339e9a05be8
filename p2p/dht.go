package p2p

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ipfs/go-datastore"
	dht "github.com/libp2p/go-libp2p-kad-dht"
	"github.com/libp2p/go-libp2p/core/event"
	"github.com/libp2p/go-libp2p/core/host"
	"github.com/libp2p/go-libp2p/core/peer"
	"github.com/libp2p/go-libp2p/core/peerstore"
	"github.com/libp2p/go-libp2p/core/protocol"
	"github.com/libp2p/go-libp2p/core/routing"
	ma "github.com/multiformats/go-multiaddr"

	"github.com/lightdas/light-node/cell"
)

// ProtocolPrefix namespaces the Kademlia protocol of the cell DHT.
const ProtocolPrefix = "/avail"

// Router is the DHT and swarm surface driven by the Network event loop.
type Router interface {
	// Listen starts listening on the given address.
	Listen(ma.Multiaddr) error
	// AddAddr records a known address of a peer.
	AddAddr(peer.ID, ma.Multiaddr)
	// Connect dials a peer on its known addresses.
	Connect(context.Context, peer.ID) error
	// Refresh populates the routing table.
	Refresh(context.Context) error
	// GetValue returns the values found under the key. Missing records are not an error.
	GetValue(ctx context.Context, key string, q Quorum) ([][]byte, error)
	// PutValue stores the value under the key on the closest peers.
	// kad-dht puts do not take a quorum, implementations may ignore it.
	PutValue(ctx context.Context, key string, value []byte, q Quorum) error
	// EventBus is the source of connection events.
	EventBus() event.Bus
	// RoutingTableSize is the amount of peers in the routing table.
	RoutingTableSize() int
}

// NewDHT constructs a Kademlia DHT storing cells as records under the cell namespace.
func NewDHT(
	ctx context.Context,
	host host.Host,
	dataStore datastore.Batching,
	recordTTL time.Duration,
	mode dht.ModeOpt,
) (*dht.IpfsDHT, error) {
	opts := []dht.Option{
		dht.ProtocolPrefix(protocol.ID(ProtocolPrefix)),
		dht.Datastore(dataStore),
		dht.Mode(mode),
		dht.NamespacedValidator(cell.Namespace, Validator{}),
		dht.MaxRecordAge(recordTTL),
		dht.DisableProviders(),
	}

	return dht.New(ctx, host, opts...)
}

// KadRouter implements Router over a libp2p host and its Kademlia DHT.
type KadRouter struct {
	host host.Host
	dht  *dht.IpfsDHT
}

// NewKadRouter wraps the given host and DHT.
func NewKadRouter(h host.Host, d *dht.IpfsDHT) *KadRouter {
	return &KadRouter{host: h, dht: d}
}

func (r *KadRouter) Listen(addr ma.Multiaddr) error {
	return r.host.Network().Listen(addr)
}

func (r *KadRouter) AddAddr(p peer.ID, addr ma.Multiaddr) {
	r.host.Peerstore().AddAddr(p, addr, peerstore.PermanentAddrTTL)
}

func (r *KadRouter) Connect(ctx context.Context, p peer.ID) error {
	return r.host.Connect(ctx, peer.AddrInfo{ID: p})
}

func (r *KadRouter) Refresh(ctx context.Context) error {
	select {
	case err := <-r.dht.RefreshRoutingTable():
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (r *KadRouter) GetValue(ctx context.Context, key string, q Quorum) ([][]byte, error) {
	val, err := r.dht.GetValue(ctx, key, dht.Quorum(int(q)))
	switch {
	case errors.Is(err, routing.ErrNotFound):
		return nil, nil
	case err != nil:
		return nil, fmt.Errorf("getting value: %w", err)
	}
	return [][]byte{val}, nil
}

func (r *KadRouter) PutValue(ctx context.Context, key string, value []byte, _ Quorum) error {
	return r.dht.PutValue(ctx, key, value)
}

func (r *KadRouter) EventBus() event.Bus {
	return r.host.EventBus()
}

func (r *KadRouter) RoutingTableSize() int {
	return r.dht.RoutingTable().Size()
}
