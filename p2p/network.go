package p2p

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"

	logging "github.com/ipfs/go-log/v2"
	"github.com/libp2p/go-libp2p/core/event"
	"github.com/libp2p/go-libp2p/core/network"
	"github.com/libp2p/go-libp2p/core/peer"
	"github.com/libp2p/go-libp2p/p2p/host/eventbus"
	ma "github.com/multiformats/go-multiaddr"
)

var log = logging.Logger("p2p")

var (
	// ErrNetworkStopped is returned for commands issued to or pending on a stopped Network.
	ErrNetworkStopped = errors.New("p2p: network stopped")
	// ErrNoKnownPeers is returned by bootstrap when no peer address was added or none is reachable.
	ErrNoKnownPeers = errors.New("p2p: no known peers")
	// ErrRecordExpired is returned when inserting a record past its expiry.
	ErrRecordExpired = errors.New("p2p: record expired")
)

// Network is the event loop owning the DHT. Commands are consumed one at a time from a bounded
// queue; long-running queries are spawned off the loop and hand their outcome back to it, so
// replies and events are only ever sent from the loop goroutine.
type Network struct {
	router Router
	params *Parameters

	cmds      chan command
	completed chan func()

	// owned by the loop goroutine
	known       map[peer.ID][]ma.Multiaddr
	subscribers map[*subscriber]struct{}

	subscriberCount atomic.Int64
	metrics         *metrics

	cancel  context.CancelFunc
	stopped chan struct{}
}

type subscriber struct {
	ctx    context.Context
	events chan Event
}

// NewNetwork constructs an unstarted Network over the given Router.
func NewNetwork(r Router, opts ...Option) (*Network, error) {
	params := DefaultParameters()
	for _, opt := range opts {
		opt(params)
	}
	if err := params.Validate(); err != nil {
		return nil, err
	}

	return &Network{
		router:      r,
		params:      params,
		cmds:        make(chan command, params.CommandQueueSize),
		completed:   make(chan func(), params.CommandQueueSize),
		known:       make(map[peer.ID][]ma.Multiaddr),
		subscribers: make(map[*subscriber]struct{}),
		stopped:     make(chan struct{}),
	}, nil
}

// Client returns a handle submitting commands to the Network. Handles are cheap and may be
// shared between goroutines.
func (n *Network) Client() *Client {
	return &Client{net: n}
}

// Start subscribes to connection events and launches the event loop.
func (n *Network) Start(context.Context) error {
	sub, err := n.router.EventBus().Subscribe(
		[]interface{}{
			new(event.EvtPeerConnectednessChanged),
			new(event.EvtPeerIdentificationCompleted),
		},
		eventbus.BufSize(64),
	)
	if err != nil {
		return fmt.Errorf("p2p: subscribing for connection events: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	n.cancel = cancel
	go n.run(ctx, sub)
	return nil
}

// Stop terminates the event loop. Commands pending in the queue are dropped and their callers
// observe ErrNetworkStopped.
func (n *Network) Stop(ctx context.Context) error {
	if n.cancel == nil {
		return nil
	}
	n.cancel()
	select {
	case <-n.stopped:
	case <-ctx.Done():
		return ctx.Err()
	}
	return n.metrics.close()
}

func (n *Network) run(ctx context.Context, sub event.Subscription) {
	defer func() {
		if err := sub.Close(); err != nil {
			log.Warnw("closing event subscription", "err", err)
		}
		for s := range n.subscribers {
			n.unsubscribe(s)
		}
		close(n.stopped)
		n.drain()
		log.Info("network event loop stopped")
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case cmd := <-n.cmds:
			n.handleCommand(ctx, cmd)
		case fn := <-n.completed:
			fn()
		case evt, ok := <-sub.Out():
			if !ok {
				return
			}
			n.handleSwarmEvent(evt)
		}
	}
}

func (n *Network) handleCommand(ctx context.Context, cmd command) {
	switch cmd := cmd.(type) {
	case *startListening:
		err := n.router.Listen(cmd.addr)
		if err != nil {
			err = fmt.Errorf("p2p: listening on %s: %w", cmd.addr, err)
		} else {
			log.Infow("listening", "addr", cmd.addr)
		}
		cmd.resp <- err
	case *addAddress:
		n.router.AddAddr(cmd.peer, cmd.addr)
		n.known[cmd.peer] = append(n.known[cmd.peer], cmd.addr)
		cmd.resp <- nil
	case *bootstrap:
		n.bootstrap(ctx, cmd)
	case *stream:
		n.subscribe(ctx, cmd)
	case *getRecord:
		go n.getRecord(ctx, cmd)
	case *putRecord:
		if exp := cmd.record.Expires; !exp.IsZero() && n.params.clock.Now().After(exp) {
			cmd.resp <- ErrRecordExpired
			return
		}
		go n.putRecord(ctx, cmd)
	default:
		log.Errorw("unknown command", "type", fmt.Sprintf("%T", cmd))
	}
}

// drain discards commands left in the queue once the loop stopped. Their callers observe
// ErrNetworkStopped.
func (n *Network) drain() {
	for {
		select {
		case cmd := <-n.cmds:
			if s, ok := cmd.(*stream); ok {
				close(s.events)
			}
		default:
			return
		}
	}
}

// deliver hands a completed query back to the loop. Outcomes of queries finishing after the loop
// stopped are dropped, as their callers already observe ErrNetworkStopped.
func (n *Network) deliver(ctx context.Context, fn func()) {
	select {
	case n.completed <- fn:
	case <-ctx.Done():
	}
}

func (n *Network) bootstrap(ctx context.Context, cmd *bootstrap) {
	if len(n.known) == 0 {
		cmd.resp <- ErrNoKnownPeers
		return
	}
	peers := make([]peer.ID, 0, len(n.known))
	for p := range n.known {
		peers = append(peers, p)
	}

	go func() {
		qctx, cancel := mergeContexts(ctx, cmd.ctx)
		defer cancel()

		var connected int
		for _, p := range peers {
			if err := n.router.Connect(qctx, p); err != nil {
				log.Warnw("connecting to bootstrap peer", "peer", p.String(), "err", err)
				continue
			}
			connected++
		}
		var err error
		if connected == 0 {
			err = fmt.Errorf("%w: none of %d known peers is reachable", ErrNoKnownPeers, len(peers))
		} else if err = n.router.Refresh(qctx); err != nil {
			err = fmt.Errorf("p2p: refreshing routing table: %w", err)
		}

		n.deliver(ctx, func() {
			cmd.resp <- err
			if err != nil {
				return
			}
			size := n.router.RoutingTableSize()
			log.Infow("bootstrap complete", "connected", connected, "routing_table", size)
			n.emit(Event{Type: RoutingUpdated, RoutingTableSize: size})
		})
	}()
}

func (n *Network) getRecord(ctx context.Context, cmd *getRecord) {
	qctx, cancel := mergeContexts(ctx, cmd.ctx)
	defer cancel()

	values, err := n.router.GetValue(qctx, cmd.key, cmd.quorum)
	res := getRecordResult{err: err}
	switch {
	case err != nil:
		n.metrics.observeGet(qctx, statusErr)
	case len(values) == 0:
		n.metrics.observeGet(qctx, statusNotFound)
	default:
		n.metrics.observeGet(qctx, statusFound)
		res.records = make([]Record, len(values))
		for i, v := range values {
			res.records[i] = Record{Key: []byte(cmd.key), Value: v}
		}
	}
	n.deliver(ctx, func() { cmd.resp <- res })
}

func (n *Network) putRecord(ctx context.Context, cmd *putRecord) {
	qctx, cancel := mergeContexts(ctx, cmd.ctx)
	defer cancel()

	err := n.router.PutValue(qctx, string(cmd.record.Key), cmd.record.Value, cmd.quorum)
	n.metrics.observePut(qctx, err != nil)
	n.deliver(ctx, func() { cmd.resp <- err })
}

func (n *Network) subscribe(ctx context.Context, cmd *stream) {
	s := &subscriber{ctx: cmd.ctx, events: cmd.events}
	n.subscribers[s] = struct{}{}
	n.subscriberCount.Add(1)
	cmd.resp <- nil

	go func() {
		select {
		case <-s.ctx.Done():
			n.deliver(ctx, func() { n.unsubscribe(s) })
		case <-ctx.Done():
		}
	}()
}

func (n *Network) unsubscribe(s *subscriber) {
	if _, ok := n.subscribers[s]; !ok {
		return
	}
	delete(n.subscribers, s)
	n.subscriberCount.Add(-1)
	close(s.events)
}

func (n *Network) handleSwarmEvent(evt interface{}) {
	switch evt := evt.(type) {
	case event.EvtPeerConnectednessChanged:
		switch evt.Connectedness {
		case network.Connected:
			n.emit(Event{Type: ConnectionEstablished, Peer: evt.Peer})
		case network.NotConnected:
			n.emit(Event{Type: ConnectionClosed, Peer: evt.Peer})
		}
	case event.EvtPeerIdentificationCompleted:
		n.emit(Event{Type: PeerIdentified, Peer: evt.Peer})
	}
}

// emit fans the event out to every subscriber without blocking the loop.
func (n *Network) emit(evt Event) {
	for s := range n.subscribers {
		if s.ctx.Err() != nil {
			n.unsubscribe(s)
			continue
		}
		select {
		case s.events <- evt:
		default:
			log.Warnw("event subscriber is full, dropping event", "event", evt.String())
		}
	}
}

// mergeContexts returns a context canceled when either of the parents is.
func mergeContexts(loop, caller context.Context) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(caller)
	stop := context.AfterFunc(loop, cancel)
	return ctx, func() {
		stop()
		cancel()
	}
}
