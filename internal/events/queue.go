package events

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// ErrQueueFull is returned when the queue cannot take another event.
var ErrQueueFull = errors.New("event queue full")

// ErrQueueClosed is returned for events published after Close.
var ErrQueueClosed = errors.New("event queue closed")

// Queue hands events to a background goroutine so callers never wait on
// the broker. Delivery failures are logged, not returned.
type Queue struct {
	next    Publisher
	timeout time.Duration
	events  chan Event
	done    chan struct{}

	mu     sync.RWMutex
	closed bool
}

// NewQueue starts draining into next. Each delivery is bounded by timeout.
func NewQueue(next Publisher, size int, timeout time.Duration) *Queue {
	if size <= 0 {
		size = 1
	}
	q := &Queue{
		next:    next,
		timeout: timeout,
		events:  make(chan Event, size),
		done:    make(chan struct{}),
	}
	go q.run()
	return q
}

// Publish enqueues evt without blocking. The caller's context is not
// carried over since delivery outlives the request.
func (q *Queue) Publish(_ context.Context, evt Event) error {
	q.mu.RLock()
	defer q.mu.RUnlock()

	if q.closed {
		return ErrQueueClosed
	}
	select {
	case q.events <- evt:
		return nil
	default:
		return ErrQueueFull
	}
}

func (q *Queue) run() {
	defer close(q.done)
	for evt := range q.events {
		q.deliver(evt)
	}
}

func (q *Queue) deliver(evt Event) {
	ctx := context.Background()
	if q.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, q.timeout)
		defer cancel()
	}
	if err := q.next.Publish(ctx, evt); err != nil {
		log.Error().Err(err).Str("event_type", evt.Type).Str("key", evt.Key).Msg("deliver event")
	}
}

// Close drains queued events and then closes the underlying publisher.
func (q *Queue) Close() error {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return nil
	}
	q.closed = true
	close(q.events)
	q.mu.Unlock()

	<-q.done
	return q.next.Close()
}
