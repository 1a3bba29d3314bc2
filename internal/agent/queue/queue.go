package queue

import (
	"context"
	"sync"
	"time"

	"packtrace/internal/logger"
	"packtrace/internal/models"
)

// Sender delivers one event to the central service. Implemented by the
// transport client.
type Sender interface {
	LogEvent(ctx context.Context, ev models.ScanEvent) error
}

// entry wraps an event with delivery bookkeeping. The sequence number is the
// entry's identity inside the queue; head removal after a send must match on
// it, since an eviction may replace the head while the send is in flight.
type entry struct {
	seq        uint64
	event      models.ScanEvent
	enqueuedAt time.Time
}

// DeliveryQueue is a bounded FIFO with ordered, at-least-once delivery.
// Enqueue never blocks: at capacity the oldest entry is evicted. Draining
// attempts entries strictly from the head and stops at the first failure, so
// nothing is ever delivered ahead of a stuck event. A head entry that fails
// forever blocks the whole queue; ordering is chosen over liveness here.
type DeliveryQueue struct {
	sender   Sender
	log      *logger.Logger
	capacity int

	mu       sync.Mutex
	entries  []entry
	nextSeq  uint64
	draining bool
}

func New(sender Sender, capacity int, log *logger.Logger) *DeliveryQueue {
	if capacity <= 0 {
		capacity = 1000
	}
	return &DeliveryQueue{
		sender:   sender,
		log:      log,
		capacity: capacity,
		entries:  make([]entry, 0, 64),
	}
}

// Enqueue appends an event. At capacity the oldest entry is dropped first;
// the loss is logged but never surfaced to the caller.
func (q *DeliveryQueue) Enqueue(ev models.ScanEvent) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.entries) >= q.capacity {
		dropped := q.entries[0]
		q.entries = q.entries[1:]
		q.log.Warnw("queue_full_dropping_oldest",
			"event_type", dropped.event.EventType,
			"order_no", dropped.event.OrderNo,
			"capacity", q.capacity)
	}

	q.nextSeq++
	q.entries = append(q.entries, entry{seq: q.nextSeq, event: ev, enqueuedAt: time.Now()})
	q.log.Debugw("event_enqueued", "queue_size", len(q.entries))
}

// Len returns the current queue depth.
func (q *DeliveryQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.entries)
}

// Run drains the queue on the given interval until ctx is canceled. Ticks
// that fire while a drain is still running are no-ops.
func (q *DeliveryQueue) Run(ctx context.Context, interval time.Duration) {
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			q.Drain(ctx)
		}
	}
}

// Drain attempts delivery from the head, one entry at a time, in order.
// On the first failure it stops and leaves the failed entry (and everything
// behind it) for the next tick. Only one drain runs at a time.
func (q *DeliveryQueue) Drain(ctx context.Context) {
	q.mu.Lock()
	if q.draining || len(q.entries) == 0 {
		q.mu.Unlock()
		return
	}
	q.draining = true
	q.mu.Unlock()

	defer func() {
		q.mu.Lock()
		q.draining = false
		q.mu.Unlock()
	}()

	for {
		q.mu.Lock()
		if len(q.entries) == 0 {
			q.mu.Unlock()
			return
		}
		head := q.entries[0]
		q.mu.Unlock()

		if err := q.sender.LogEvent(ctx, head.event); err != nil {
			q.log.Errorw("event_delivery_failed_will_retry", "err", err,
				"event_type", head.event.EventType, "queue_size", q.Len())
			return
		}

		q.mu.Lock()
		// An enqueue at capacity may have evicted the head while the send
		// was in flight. Only remove the entry that was actually delivered;
		// if it was evicted, its slot already holds a different event that
		// still needs an attempt.
		if len(q.entries) > 0 && q.entries[0].seq == head.seq {
			q.entries = q.entries[1:]
		}
		remaining := len(q.entries)
		q.mu.Unlock()

		q.log.Debugw("event_delivered", "remaining", remaining)
	}
}

// Shutdown makes one bounded best-effort drain of whatever is left. The
// caller must have stopped the drain ticker first (by cancelling the Run
// context) to avoid racing a timer-triggered drain. Entries that still fail
// are lost; the process is terminating.
func (q *DeliveryQueue) Shutdown(ctx context.Context) {
	if n := q.Len(); n > 0 {
		q.log.Infow("flushing_remaining_events", "count", n)
		q.Drain(ctx)
	}
	if n := q.Len(); n > 0 {
		q.log.Warnw("events_lost_at_shutdown", "count", n)
	}
}
