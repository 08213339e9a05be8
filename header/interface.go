package header

import "context"

// Subscriber provides a Subscription to new block headers.
type Subscriber interface {
	Subscribe(context.Context) (Subscription, error)
}

// Subscription streams new block headers.
type Subscription interface {
	// NextHeader returns the next header. Errors wrapping ErrMalformed are per-frame and the
	// subscription stays usable; io.EOF means the stream has ended.
	NextHeader(context.Context) (*BlockHeader, error)
	// Cancel closes the subscription.
	Cancel()
}
