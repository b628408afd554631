package core

import (
	"context"
	"log"
	"sync"
)

// Subscriber consumes audit events. A returned error is logged and swallowed;
// the audit pipeline is best-effort and must never surface into the business
// operation that produced the event.
type Subscriber interface {
	Name() string
	Handle(ctx context.Context, ev Event) error
}

// EventBus is the in-process pub/sub channel between the allocation engine
// and audit subscribers. Each subscriber gets its own bounded queue and a
// dedicated consumer goroutine, so one subscriber processes events strictly
// in publish order while publication stays non-blocking: a full queue drops
// the event (logged) instead of stalling the producer. There is no retry
// queue; events lost on overflow or process crash are an accepted risk.
type EventBus struct {
	queueSize int

	mu      sync.Mutex
	started bool
	closed  bool
	queues  []chan Event
	subs    []Subscriber
	wg      sync.WaitGroup
}

const defaultAuditQueueSize = 1024

// NewEventBus creates a bus whose per-subscriber queues hold queueSize
// events; zero or negative selects the default.
func NewEventBus(queueSize int) *EventBus {
	if queueSize <= 0 {
		queueSize = defaultAuditQueueSize
	}
	return &EventBus{queueSize: queueSize}
}

// Subscribe registers a subscriber. Must be called before Start.
func (b *EventBus) Subscribe(s Subscriber) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.started {
		panic("event bus: Subscribe after Start")
	}
	b.subs = append(b.subs, s)
	b.queues = append(b.queues, make(chan Event, b.queueSize))
}

// Start launches one consumer goroutine per subscriber.
func (b *EventBus) Start() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.started {
		return
	}
	b.started = true
	for i, sub := range b.subs {
		b.wg.Add(1)
		go b.consume(b.queues[i], sub)
	}
}

func (b *EventBus) consume(queue <-chan Event, sub Subscriber) {
	defer b.wg.Done()
	for ev := range queue {
		// Detached context: the producing request has already returned.
		if err := sub.Handle(context.Background(), ev); err != nil {
			log.Printf("audit bus: subscriber %s failed on %s event %s: %v", sub.Name(), ev.Type, ev.ID, err)
		}
	}
}

// Publish hands an event to every subscriber queue without blocking. Callers
// invoke it only after their transaction has committed. After Close it is a
// no-op; the sends stay under the mutex so a racing Close can never close a
// channel mid-send. The sends never block, so holding the lock is cheap.
func (b *EventBus) Publish(events ...Event) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}

	for _, ev := range events {
		for i, q := range b.queues {
			select {
			case q <- ev:
			default:
				log.Printf("audit bus: queue full for subscriber %s, dropping %s event %s", b.subs[i].Name(), ev.Type, ev.ID)
			}
		}
	}
}

// Close stops accepting events and waits for the consumers to drain their
// queues. Events published after Close are discarded.
func (b *EventBus) Close() {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return
	}
	b.closed = true
	for _, q := range b.queues {
		close(q)
	}
	b.queues = nil
	b.mu.Unlock()
	b.wg.Wait()
}
