package p2p

import (
	"fmt"
	"time"

	"github.com/benbjohnson/clock"
)

// Parameters is the set of parameters that must be configured for the p2p Network.
type Parameters struct {
	// CommandQueueSize is the capacity of the command queue. Submitting a command to a full queue
	// blocks the caller until the event loop frees a slot.
	CommandQueueSize int
	// EventBufferSize is the capacity of each event subscriber's queue.
	EventBufferSize int
	// ParallelismLimit is the maximum amount of DHT queries in flight per batch operation.
	ParallelismLimit int
	// RecordTTL is the time-to-live of records inserted into the DHT.
	RecordTTL time.Duration

	clock clock.Clock
}

// Option is a function that configures Network Parameters.
type Option func(*Parameters)

// DefaultParameters returns the default Parameters' configuration values for the Network.
func DefaultParameters() *Parameters {
	return &Parameters{
		CommandQueueSize: 1024,
		EventBufferSize:  1000,
		ParallelismLimit: 800,
		RecordTTL:        time.Hour,
		clock:            clock.New(),
	}
}

// Validate validates the values in Parameters.
func (p *Parameters) Validate() error {
	if p.CommandQueueSize <= 0 {
		return fmt.Errorf("p2p: invalid option: value CommandQueueSize %d must be positive", p.CommandQueueSize)
	}
	if p.EventBufferSize <= 0 {
		return fmt.Errorf("p2p: invalid option: value EventBufferSize %d must be positive", p.EventBufferSize)
	}
	if p.ParallelismLimit <= 0 {
		return fmt.Errorf("p2p: invalid option: value ParallelismLimit %d must be positive", p.ParallelismLimit)
	}
	if p.RecordTTL <= 0 {
		return fmt.Errorf("p2p: invalid option: value RecordTTL %s must be positive", p.RecordTTL)
	}
	return nil
}

// WithCommandQueueSize sets the capacity of the command queue.
func WithCommandQueueSize(size int) Option {
	return func(p *Parameters) {
		p.CommandQueueSize = size
	}
}

// WithEventBufferSize sets the capacity of event subscriber queues.
func WithEventBufferSize(size int) Option {
	return func(p *Parameters) {
		p.EventBufferSize = size
	}
}

// WithParallelismLimit sets the maximum amount of concurrent DHT queries per batch operation.
func WithParallelismLimit(limit int) Option {
	return func(p *Parameters) {
		p.ParallelismLimit = limit
	}
}

// WithRecordTTL sets the time-to-live of inserted records.
func WithRecordTTL(ttl time.Duration) Option {
	return func(p *Parameters) {
		p.RecordTTL = ttl
	}
}

// WithClock overrides the clock records' expiry is computed with.
func WithClock(c clock.Clock) Option {
	return func(p *Parameters) {
		p.clock = c
	}
}
