package p2p

import (
	"context"
	"time"

	"github.com/libp2p/go-libp2p/core/peer"
	ma "github.com/multiformats/go-multiaddr"
)

// Quorum is the amount of peers that must answer before a DHT query is considered complete.
type Quorum int

// QuorumOne accepts the first answering peer. Cells are verified against the block commitment
// after retrieval, so DHT level agreement is not needed.
const QuorumOne Quorum = 1

// Record is a DHT key/value pair.
type Record struct {
	Key   []byte
	Value []byte
	// Expires is the moment after which the record must not be stored anymore.
	// Zero for records read from the DHT.
	Expires time.Time
}

// command is the closed set of messages accepted by the Network event loop.
// Every command carries a one-shot, single-slot reply channel.
type command interface {
	isCommand()
}

type startListening struct {
	addr ma.Multiaddr
	resp chan error
}

type addAddress struct {
	peer peer.ID
	addr ma.Multiaddr
	resp chan error
}

type bootstrap struct {
	ctx  context.Context
	resp chan error
}

type stream struct {
	ctx    context.Context
	events chan Event
	resp   chan error
}

type getRecord struct {
	ctx    context.Context
	key    string
	quorum Quorum
	resp   chan getRecordResult
}

type getRecordResult struct {
	records []Record
	err     error
}

type putRecord struct {
	ctx    context.Context
	record Record
	quorum Quorum
	resp   chan error
}

func (*startListening) isCommand() {}
func (*addAddress) isCommand()     {}
func (*bootstrap) isCommand()      {}
func (*stream) isCommand()         {}
func (*getRecord) isCommand()      {}
func (*putRecord) isCommand()      {}
