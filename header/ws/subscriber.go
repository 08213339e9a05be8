// Package ws subscribes to new block headers over the full node's websocket endpoint.
package ws

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"sync"

	"github.com/gorilla/websocket"
	logging "github.com/ipfs/go-log/v2"

	"github.com/lightdas/light-node/header"
)

var log = logging.Logger("header/ws")

const subscribeRequest = `{"id":1,"jsonrpc":"2.0","method":"subscribe_newHead"}`

// frameBufferSize bounds the amount of frames read ahead of the consumer.
const frameBufferSize = 16

// Subscriber dials the full node's websocket endpoint and subscribes to new heads.
type Subscriber struct {
	endpoint string
	dialer   *websocket.Dialer
}

// NewSubscriber creates a Subscriber for the given websocket endpoint, e.g. ws://127.0.0.1:9944.
func NewSubscriber(endpoint string) *Subscriber {
	return &Subscriber{
		endpoint: endpoint,
		dialer:   websocket.DefaultDialer,
	}
}

// Subscribe connects, sends the subscription request and discards its acknowledgment.
func (s *Subscriber) Subscribe(ctx context.Context) (header.Subscription, error) {
	conn, _, err := s.dialer.DialContext(ctx, s.endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("ws: dialing %s: %w", s.endpoint, err)
	}

	err = conn.WriteMessage(websocket.TextMessage, []byte(subscribeRequest))
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("ws: sending subscription request: %w", err)
	}

	// the first frame is the subscription acknowledgment
	if _, _, err = conn.ReadMessage(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("ws: reading subscription acknowledgment: %w", err)
	}
	log.Infow("subscribed to new heads", "endpoint", s.endpoint)

	sub := &subscription{
		conn:   conn,
		frames: make(chan frame, frameBufferSize),
		done:   make(chan struct{}),
	}
	go sub.readLoop()
	return sub, nil
}

type frame struct {
	data []byte
	err  error
}

type subscription struct {
	conn   *websocket.Conn
	frames chan frame

	once sync.Once
	done chan struct{}
}

func (s *subscription) readLoop() {
	defer close(s.frames)

	for {
		_, data, err := s.conn.ReadMessage()
		select {
		case s.frames <- frame{data: data, err: err}:
		case <-s.done:
			return
		}
		if err != nil {
			return
		}
	}
}

// NextHeader returns the next parsed header.
func (s *subscription) NextHeader(ctx context.Context) (*header.BlockHeader, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case f, ok := <-s.frames:
		if !ok {
			return nil, io.EOF
		}
		if f.err != nil {
			if isClosed(f.err) {
				return nil, io.EOF
			}
			return nil, fmt.Errorf("ws: reading frame: %w", f.err)
		}
		return header.ParseNotification(f.data)
	}
}

// Cancel closes the connection.
func (s *subscription) Cancel() {
	s.once.Do(func() {
		close(s.done)
		if err := s.conn.Close(); err != nil {
			log.Debugw("closing websocket connection", "err", err)
		}
	})
}

func isClosed(err error) bool {
	return websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) ||
		errors.Is(err, net.ErrClosed) ||
		errors.Is(err, io.EOF) ||
		errors.Is(err, io.ErrUnexpectedEOF)
}
