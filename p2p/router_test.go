package p2p

import (
	"context"
	"errors"
	"sync"

	"github.com/libp2p/go-libp2p/core/event"
	"github.com/libp2p/go-libp2p/core/peer"
	"github.com/libp2p/go-libp2p/p2p/host/eventbus"
	ma "github.com/multiformats/go-multiaddr"
)

var errUnreachable = errors.New("unreachable")

// memRouter is an in-memory Router for exercising the event loop.
type memRouter struct {
	bus event.Bus

	lk        sync.Mutex
	values    map[string][]byte
	failGet   map[string]bool
	failPut   map[string]bool
	failDial  map[peer.ID]bool
	addrs     map[peer.ID][]ma.Multiaddr
	listening []ma.Multiaddr
	refreshed int
}

func newMemRouter() *memRouter {
	return &memRouter{
		bus:      eventbus.NewBus(),
		values:   make(map[string][]byte),
		failGet:  make(map[string]bool),
		failPut:  make(map[string]bool),
		failDial: make(map[peer.ID]bool),
		addrs:    make(map[peer.ID][]ma.Multiaddr),
	}
}

func (r *memRouter) Listen(addr ma.Multiaddr) error {
	r.lk.Lock()
	defer r.lk.Unlock()
	r.listening = append(r.listening, addr)
	return nil
}

func (r *memRouter) AddAddr(p peer.ID, addr ma.Multiaddr) {
	r.lk.Lock()
	defer r.lk.Unlock()
	r.addrs[p] = append(r.addrs[p], addr)
}

func (r *memRouter) Connect(_ context.Context, p peer.ID) error {
	r.lk.Lock()
	defer r.lk.Unlock()
	if len(r.addrs[p]) == 0 || r.failDial[p] {
		return errUnreachable
	}
	return nil
}

func (r *memRouter) Refresh(context.Context) error {
	r.lk.Lock()
	defer r.lk.Unlock()
	r.refreshed++
	return nil
}

func (r *memRouter) GetValue(_ context.Context, key string, _ Quorum) ([][]byte, error) {
	r.lk.Lock()
	defer r.lk.Unlock()
	if r.failGet[key] {
		return nil, errUnreachable
	}
	v, ok := r.values[key]
	if !ok {
		return nil, nil
	}
	return [][]byte{v}, nil
}

func (r *memRouter) PutValue(_ context.Context, key string, value []byte, _ Quorum) error {
	r.lk.Lock()
	defer r.lk.Unlock()
	if r.failPut[key] {
		return errUnreachable
	}
	r.values[key] = value
	return nil
}

func (r *memRouter) EventBus() event.Bus {
	return r.bus
}

func (r *memRouter) RoutingTableSize() int {
	r.lk.Lock()
	defer r.lk.Unlock()
	return len(r.addrs)
}
