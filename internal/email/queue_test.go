package email

import (
	"context"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"
)

type captureSender struct {
	mu       sync.Mutex
	messages []Message
}

func (s *captureSender) Send(_ context.Context, msg Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.messages = append(s.messages, msg)
	return nil
}

func (s *captureSender) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.messages)
}

func TestMemoryQueue_Delivers(t *testing.T) {
	sender := &captureSender{}
	queue := NewMemoryQueue(zap.NewNop(), sender, 4)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	queue.Start(ctx)

	if err := queue.Enqueue(ctx, Message{To: "a@x.com", Subject: "hi", Body: "hola"}); err != nil {
		t.Fatalf("enqueue: %v", err)
	}

	deadline := time.Now().Add(2 * time.Second)
	for sender.count() == 0 {
		if time.Now().After(deadline) {
			t.Fatalf("expected message delivered")
		}
		time.Sleep(10 * time.Millisecond)
	}

	sender.mu.Lock()
	defer sender.mu.Unlock()
	if sender.messages[0].To != "a@x.com" || sender.messages[0].Subject != "hi" {
		t.Fatalf("unexpected message: %+v", sender.messages[0])
	}
}

func TestMemoryQueue_FullReturnsError(t *testing.T) {
	sender := &captureSender{}
	// Sin worker corriendo y con buffer de 1, el segundo enqueue no entra.
	queue := NewMemoryQueue(zap.NewNop(), sender, 1)

	if err := queue.Enqueue(context.Background(), Message{To: "a@x.com"}); err != nil {
		t.Fatalf("first enqueue: %v", err)
	}
	if err := queue.Enqueue(context.Background(), Message{To: "b@x.com"}); err == nil {
		t.Fatalf("expected error when queue is full")
	}
}

func TestDisabledSender_AlwaysFails(t *testing.T) {
	sender := NewDisabledSender("smtp not configured")
	if err := sender.Send(context.Background(), Message{To: "a@x.com"}); err == nil {
		t.Fatalf("expected disabled sender to fail")
	}
}
