package p2p

import (
	"context"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/libp2p/go-libp2p/core/event"
	"github.com/libp2p/go-libp2p/core/network"
	"github.com/libp2p/go-libp2p/core/peer"
	ma "github.com/multiformats/go-multiaddr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testAddr = ma.StringCast("/ip4/127.0.0.1/udp/4001/quic-v1")

func startNetwork(t *testing.T, r Router, opts ...Option) *Network {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second*10)
	t.Cleanup(cancel)

	n, err := NewNetwork(r, opts...)
	require.NoError(t, err)
	require.NoError(t, n.Start(ctx))
	t.Cleanup(func() {
		require.NoError(t, n.Stop(ctx))
	})
	return n
}

func TestNetwork_ListenAndAddAddress(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second*5)
	t.Cleanup(cancel)

	r := newMemRouter()
	c := startNetwork(t, r).Client()

	require.NoError(t, c.StartListening(ctx, testAddr))
	require.NoError(t, c.AddPeers(ctx, []peer.AddrInfo{{ID: "peer-a", Addrs: []ma.Multiaddr{testAddr}}}))

	r.lk.Lock()
	defer r.lk.Unlock()
	assert.Len(t, r.listening, 1)
	assert.Len(t, r.addrs["peer-a"], 1)
}

func TestNetwork_BootstrapNoKnownPeers(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second*5)
	t.Cleanup(cancel)

	c := startNetwork(t, newMemRouter()).Client()
	require.ErrorIs(t, c.Bootstrap(ctx), ErrNoKnownPeers)
}

func TestNetwork_BootstrapEmitsRoutingUpdated(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second*5)
	t.Cleanup(cancel)

	r := newMemRouter()
	c := startNetwork(t, r).Client()

	events, err := c.Events(ctx)
	require.NoError(t, err)
	require.NoError(t, c.AddAddress(ctx, "peer-a", testAddr))
	require.NoError(t, c.Bootstrap(ctx))

	select {
	case evt := <-events:
		assert.Equal(t, RoutingUpdated, evt.Type)
		assert.Equal(t, 1, evt.RoutingTableSize)
	case <-ctx.Done():
		t.Fatal("no routing event")
	}

	r.lk.Lock()
	defer r.lk.Unlock()
	assert.Equal(t, 1, r.refreshed)
}

func TestNetwork_EventsFanOut(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second*5)
	t.Cleanup(cancel)

	r := newMemRouter()
	c := startNetwork(t, r).Client()

	first, err := c.Events(ctx)
	require.NoError(t, err)
	second, err := c.Events(ctx)
	require.NoError(t, err)
	// commands are handled in order, so both subscriptions are registered after this returns
	require.NoError(t, c.AddAddress(ctx, "peer-a", testAddr))

	emitter, err := r.bus.Emitter(new(event.EvtPeerConnectednessChanged))
	require.NoError(t, err)
	t.Cleanup(func() { _ = emitter.Close() })

	err = emitter.Emit(event.EvtPeerConnectednessChanged{Peer: "peer-a", Connectedness: network.Connected})
	require.NoError(t, err)
	err = emitter.Emit(event.EvtPeerConnectednessChanged{Peer: "peer-a", Connectedness: network.NotConnected})
	require.NoError(t, err)

	for _, events := range []<-chan Event{first, second} {
		for _, expected := range []EventType{ConnectionEstablished, ConnectionClosed} {
			select {
			case evt := <-events:
				assert.Equal(t, expected, evt.Type)
				assert.Equal(t, peer.ID("peer-a"), evt.Peer)
			case <-ctx.Done():
				t.Fatal("missing event")
			}
		}
	}
}

func TestNetwork_EventsUnsubscribe(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second*5)
	t.Cleanup(cancel)

	n := startNetwork(t, newMemRouter())
	subCtx, subCancel := context.WithCancel(ctx)
	events, err := n.Client().Events(subCtx)
	require.NoError(t, err)

	subCancel()
	require.Eventually(t, func() bool {
		select {
		case _, ok := <-events:
			return !ok
		default:
			return false
		}
	}, time.Second, time.Millisecond*10)
	assert.Zero(t, n.subscriberCount.Load())
}

func TestNetwork_CommandQueueBackpressure(t *testing.T) {
	const size = 4

	// the loop is not started, so nothing drains the queue
	n, err := NewNetwork(newMemRouter(), WithCommandQueueSize(size))
	require.NoError(t, err)
	c := n.Client()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second*5)
	t.Cleanup(cancel)

	newCmd := func() command {
		return &addAddress{peer: "peer-a", addr: testAddr, resp: make(chan error, 1)}
	}
	for range size {
		require.NoError(t, c.send(ctx, newCmd()))
	}

	blockedCtx, blockedCancel := context.WithTimeout(ctx, time.Millisecond*50)
	defer blockedCancel()
	require.ErrorIs(t, c.send(blockedCtx, newCmd()), context.DeadlineExceeded)

	sent := make(chan error, 1)
	go func() {
		sent <- c.send(ctx, newCmd())
	}()
	select {
	case <-sent:
		t.Fatal("send must block on a full queue")
	case <-time.After(time.Millisecond * 50):
	}

	<-n.cmds
	select {
	case err := <-sent:
		require.NoError(t, err)
	case <-ctx.Done():
		t.Fatal("send did not proceed after the queue was drained")
	}
}

func TestNetwork_Stopped(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second*5)
	t.Cleanup(cancel)

	n, err := NewNetwork(newMemRouter())
	require.NoError(t, err)
	require.NoError(t, n.Start(ctx))
	events, err := n.Client().Events(ctx)
	require.NoError(t, err)
	require.NoError(t, n.Stop(ctx))

	_, err = n.Client().GetRecord(ctx, "/avail/1:0:0", QuorumOne)
	require.ErrorIs(t, err, ErrNetworkStopped)

	_, ok := <-events
	assert.False(t, ok)
}

func TestNetwork_EventsAfterStop(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second*5)
	t.Cleanup(cancel)

	n, err := NewNetwork(newMemRouter())
	require.NoError(t, err)
	require.NoError(t, n.Start(ctx))
	require.NoError(t, n.Stop(ctx))

	events, err := n.Client().Events(ctx)
	require.ErrorIs(t, err, ErrNetworkStopped)
	assert.Nil(t, events)
}

func TestNetwork_BootstrapUnreachablePeers(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second*5)
	t.Cleanup(cancel)

	r := newMemRouter()
	r.failDial["peer-a"] = true
	r.failDial["peer-b"] = true
	c := startNetwork(t, r).Client()

	err := c.Bootstrap(ctx,
		peer.AddrInfo{ID: "peer-a", Addrs: []ma.Multiaddr{testAddr}},
		peer.AddrInfo{ID: "peer-b", Addrs: []ma.Multiaddr{testAddr}},
	)
	require.ErrorIs(t, err, ErrNoKnownPeers)
	assert.Contains(t, err.Error(), "none of 2 known peers")

	r.lk.Lock()
	defer r.lk.Unlock()
	assert.Zero(t, r.refreshed)
}

func TestNetwork_BootstrapAddsGivenPeers(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second*5)
	t.Cleanup(cancel)

	r := newMemRouter()
	c := startNetwork(t, r).Client()
	require.NoError(t, c.Bootstrap(ctx, peer.AddrInfo{ID: "peer-a", Addrs: []ma.Multiaddr{testAddr}}))

	r.lk.Lock()
	defer r.lk.Unlock()
	assert.Len(t, r.addrs["peer-a"], 1)
	assert.Equal(t, 1, r.refreshed)
}

func TestNetwork_PutRecordExpired(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second*5)
	t.Cleanup(cancel)

	clk := clock.NewMock()
	clk.Add(time.Hour)
	r := newMemRouter()
	c := startNetwork(t, r, WithClock(clk)).Client()

	rec := Record{Key: []byte("/avail/1:0:0"), Value: []byte{1}, Expires: clk.Now().Add(-time.Minute)}
	require.ErrorIs(t, c.PutRecord(ctx, rec, QuorumOne), ErrRecordExpired)

	rec.Expires = clk.Now().Add(time.Minute)
	require.NoError(t, c.PutRecord(ctx, rec, QuorumOne))

	recs, err := c.GetRecord(ctx, "/avail/1:0:0", QuorumOne)
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, []byte{1}, recs[0].Value)
}

func TestParameters_Validate(t *testing.T) {
	require.NoError(t, DefaultParameters().Validate())

	_, err := NewNetwork(newMemRouter(), WithCommandQueueSize(0))
	require.Error(t, err)
	_, err = NewNetwork(newMemRouter(), WithParallelismLimit(-1))
	require.Error(t, err)
	_, err = NewNetwork(newMemRouter(), WithRecordTTL(0))
	require.Error(t, err)
	_, err = NewNetwork(newMemRouter(), WithEventBufferSize(0))
	require.Error(t, err)
}
