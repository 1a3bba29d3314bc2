package queue

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"packtrace/internal/logger"
	"packtrace/internal/models"
)

// scriptedSender fails delivery for barcodes present in failures until they
// are removed, and records every delivery attempt.
type scriptedSender struct {
	mu       sync.Mutex
	failures map[string]error
	attempts []string
}

func newScriptedSender() *scriptedSender {
	return &scriptedSender{failures: make(map[string]error)}
}

func (s *scriptedSender) fail(barcode string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[barcode] = errors.New("central unreachable")
}

func (s *scriptedSender) recover(barcode string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.failures, barcode)
}

func (s *scriptedSender) LogEvent(ctx context.Context, ev models.ScanEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.attempts = append(s.attempts, ev.BarcodeValue)
	if err, ok := s.failures[ev.BarcodeValue]; ok {
		return err
	}
	return nil
}

func (s *scriptedSender) attempted() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.attempts))
	copy(out, s.attempts)
	return out
}

func event(barcode string) models.ScanEvent {
	return models.ScanEvent{StationUID: "PACK-01", EventType: "ITEM", BarcodeValue: barcode}
}

func TestDeliveryQueue_DrainsInOrder(t *testing.T) {
	t.Parallel()

	sender := newScriptedSender()
	q := New(sender, 10, logger.New(logger.ErrorLevel))

	q.Enqueue(event("a"))
	q.Enqueue(event("b"))
	q.Enqueue(event("c"))

	q.Drain(context.Background())

	got := sender.attempted()
	if len(got) != 3 || got[0] != "a" || got[1] != "b" || got[2] != "c" {
		t.Errorf("delivery order: want [a b c], got %v", got)
	}
	if q.Len() != 0 {
		t.Errorf("queue not empty after drain: %d", q.Len())
	}
}

func TestDeliveryQueue_StopsAtFirstFailure(t *testing.T) {
	t.Parallel()

	sender := newScriptedSender()
	sender.fail("a")
	q := New(sender, 10, logger.New(logger.ErrorLevel))

	q.Enqueue(event("a"))
	q.Enqueue(event("b"))
	q.Enqueue(event("c"))

	// First drain: a fails, b and c are never attempted.
	q.Drain(context.Background())
	if got := sender.attempted(); len(got) != 1 || got[0] != "a" {
		t.Fatalf("want only [a] attempted, got %v", got)
	}
	if q.Len() != 3 {
		t.Fatalf("nothing may leave the queue: want 3, got %d", q.Len())
	}

	// Central recovers: the next drain retries a, then carries straight on.
	sender.recover("a")
	q.Drain(context.Background())
	want := []string{"a", "a", "b", "c"}
	got := sender.attempted()
	if len(got) != len(want) {
		t.Fatalf("attempts: want %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("attempts: want %v, got %v", want, got)
		}
	}
	if q.Len() != 0 {
		t.Errorf("queue not empty after recovery: %d", q.Len())
	}
}

func TestDeliveryQueue_EvictsOldestAtCapacity(t *testing.T) {
	t.Parallel()

	sender := newScriptedSender()
	q := New(sender, 3, logger.New(logger.ErrorLevel))

	for i := 0; i < 5; i++ {
		q.Enqueue(event(fmt.Sprintf("e%d", i)))
	}
	if q.Len() != 3 {
		t.Fatalf("capacity 3: want depth 3, got %d", q.Len())
	}

	q.Drain(context.Background())
	got := sender.attempted()
	if len(got) != 3 || got[0] != "e2" || got[1] != "e3" || got[2] != "e4" {
		t.Errorf("oldest must be evicted first: want [e2 e3 e4], got %v", got)
	}
}

func TestDeliveryQueue_EnqueueDuringStall(t *testing.T) {
	t.Parallel()

	sender := newScriptedSender()
	sender.fail("a")
	q := New(sender, 10, logger.New(logger.ErrorLevel))

	q.Enqueue(event("a"))
	q.Drain(context.Background())

	// New events keep accumulating behind the stuck head.
	q.Enqueue(event("b"))
	if q.Len() != 2 {
		t.Fatalf("want depth 2, got %d", q.Len())
	}

	sender.recover("a")
	q.Drain(context.Background())
	got := sender.attempted()
	if last := got[len(got)-1]; last != "b" {
		t.Errorf("b must deliver after a recovers, attempts: %v", got)
	}
	if q.Len() != 0 {
		t.Errorf("queue not empty: %d", q.Len())
	}
}

// blockingSender holds each delivery until released, so a test can overlap an
// enqueue with an in-flight send.
type blockingSender struct {
	started  chan string
	release  chan struct{}
	mu       sync.Mutex
	attempts []string
}

func newBlockingSender() *blockingSender {
	return &blockingSender{
		started: make(chan string, 8),
		release: make(chan struct{}),
	}
}

func (s *blockingSender) LogEvent(ctx context.Context, ev models.ScanEvent) error {
	s.mu.Lock()
	s.attempts = append(s.attempts, ev.BarcodeValue)
	s.mu.Unlock()
	s.started <- ev.BarcodeValue
	<-s.release
	return nil
}

func (s *blockingSender) attempted() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.attempts))
	copy(out, s.attempts)
	return out
}

func TestDeliveryQueue_EvictionDuringSendKeepsNewHead(t *testing.T) {
	t.Parallel()

	sender := newBlockingSender()
	q := New(sender, 1, logger.New(logger.ErrorLevel))

	q.Enqueue(event("a"))

	done := make(chan struct{})
	go func() {
		q.Drain(context.Background())
		close(done)
	}()

	// Wait until a is in flight, then fill the queue so a is evicted and b
	// takes its slot.
	<-sender.started
	q.Enqueue(event("b"))
	sender.release <- struct{}{}

	// b replaced the evicted head, so the drain must still attempt it rather
	// than dropping it as if it were the delivered entry.
	select {
	case started := <-sender.started:
		if started != "b" {
			t.Fatalf("want b attempted next, got %q", started)
		}
	case <-done:
		t.Fatal("drain finished without attempting b")
	}
	sender.release <- struct{}{}
	<-done

	want := []string{"a", "b"}
	got := sender.attempted()
	if len(got) != len(want) || got[0] != want[0] || got[1] != want[1] {
		t.Errorf("attempts: want %v, got %v", want, got)
	}
	if q.Len() != 0 {
		t.Errorf("queue not empty after drain: %d", q.Len())
	}
}

func TestDeliveryQueue_ShutdownFlushes(t *testing.T) {
	t.Parallel()

	sender := newScriptedSender()
	q := New(sender, 10, logger.New(logger.ErrorLevel))

	q.Enqueue(event("a"))
	q.Enqueue(event("b"))

	q.Shutdown(context.Background())
	if q.Len() != 0 {
		t.Errorf("shutdown must flush deliverable events, %d left", q.Len())
	}
}

func TestDeliveryQueue_ShutdownGivesUpOnFailure(t *testing.T) {
	t.Parallel()

	sender := newScriptedSender()
	sender.fail("a")
	q := New(sender, 10, logger.New(logger.ErrorLevel))

	q.Enqueue(event("a"))
	q.Enqueue(event("b"))

	q.Shutdown(context.Background())
	if q.Len() != 2 {
		t.Errorf("undeliverable events remain and are reported lost: want 2, got %d", q.Len())
	}
	if got := sender.attempted(); len(got) != 1 {
		t.Errorf("only the stuck head may be attempted: %v", got)
	}
}
