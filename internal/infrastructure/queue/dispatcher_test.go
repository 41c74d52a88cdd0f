package queue

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/spoonhq/accounts-api/internal/core/ports"
)

type recordingSender struct {
	mu    sync.Mutex
	sent  []string
	fail  bool
	done  chan struct{}
	count int
	want  int
}

func newRecordingSender(want int) *recordingSender {
	return &recordingSender{done: make(chan struct{}), want: want}
}

func (s *recordingSender) Send(_ context.Context, recipient, _ string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.count++
	if s.count == s.want {
		close(s.done)
	}
	if s.fail {
		return errors.New("smtp unreachable")
	}
	s.sent = append(s.sent, recipient)
	return nil
}

func TestDispatcher_DeliversEnqueuedMail(t *testing.T) {
	sender := newRecordingSender(3)
	d := NewDispatcher(2, sender, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	d.Start(ctx)

	d.Enqueue(ports.ResetMail{Recipient: "a@x.com", Link: "http://l/1"})
	d.Enqueue(ports.ResetMail{Recipient: "b@x.com", Link: "http://l/2"})
	d.Enqueue(ports.ResetMail{Recipient: "a@x.com", Link: "http://l/3"})

	select {
	case <-sender.done:
	case <-time.After(2 * time.Second):
		t.Fatalf("workers did not process all jobs")
	}

	sender.mu.Lock()
	defer sender.mu.Unlock()
	if len(sender.sent) != 3 {
		t.Fatalf("expected 3 deliveries, got %d", len(sender.sent))
	}
}

func TestDispatcher_DeliveryFailureDoesNotStopWorker(t *testing.T) {
	sender := newRecordingSender(2)
	sender.fail = true
	d := NewDispatcher(1, sender, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	d.Start(ctx)

	d.Enqueue(ports.ResetMail{Recipient: "a@x.com", Link: "http://l/1"})
	d.Enqueue(ports.ResetMail{Recipient: "a@x.com", Link: "http://l/2"})

	select {
	case <-sender.done:
	case <-time.After(2 * time.Second):
		t.Fatalf("worker stopped after a delivery failure")
	}
}

func TestDispatcher_ShardIsStablePerRecipient(t *testing.T) {
	d := NewDispatcher(8, newRecordingSender(0), zerolog.Nop())
	first := d.shardIndex("carol@x.com")
	for i := 0; i < 10; i++ {
		if d.shardIndex("carol@x.com") != first {
			t.Fatalf("shard index must be deterministic per recipient")
		}
	}
}
