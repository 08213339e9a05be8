package p2p

import (
	"fmt"

	"github.com/libp2p/go-libp2p/core/peer"
)

// EventType classifies network Events.
type EventType int

const (
	// ConnectionEstablished is emitted when a connection to a peer is opened.
	ConnectionEstablished EventType = iota
	// ConnectionClosed is emitted when the last connection to a peer is closed.
	ConnectionClosed
	// PeerIdentified is emitted once a connected peer's protocols are known.
	PeerIdentified
	// RoutingUpdated is emitted when a routing table bootstrap completes.
	RoutingUpdated
)

func (t EventType) String() string {
	switch t {
	case ConnectionEstablished:
		return "ConnectionEstablished"
	case ConnectionClosed:
		return "ConnectionClosed"
	case PeerIdentified:
		return "PeerIdentified"
	case RoutingUpdated:
		return "RoutingUpdated"
	default:
		return fmt.Sprintf("EventType(%d)", int(t))
	}
}

// Event is a connection or routing notification.
type Event struct {
	Type EventType
	// Peer is empty for RoutingUpdated.
	Peer peer.ID
	// RoutingTableSize is set for RoutingUpdated.
	RoutingTableSize int
}

func (e Event) String() string {
	if e.Type == RoutingUpdated {
		return fmt.Sprintf("%s(size=%d)", e.Type, e.RoutingTableSize)
	}
	return fmt.Sprintf("%s(%s)", e.Type, e.Peer)
}
