package events

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/nerrad567/bookshelf/internal/book"
)

type recordingPublisher struct {
	mu   sync.Mutex
	msgs []publishCall
	err  error
}

type publishCall struct {
	topic    string
	payload  []byte
	qos      byte
	retained bool
}

func (p *recordingPublisher) Publish(topic string, payload []byte, qos byte, retained bool) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.msgs = append(p.msgs, publishCall{topic: topic, payload: payload, qos: qos, retained: retained})
	return p.err
}

func (p *recordingPublisher) calls() []publishCall {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]publishCall, len(p.msgs))
	copy(out, p.msgs)
	return out
}

// runForwarder starts f and stops it when the test ends.
func runForwarder(t *testing.T, f *Forwarder) context.CancelFunc {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	go f.Run(ctx)
	t.Cleanup(func() {
		cancel()
		<-f.Done()
	})
	return cancel
}

func TestForwarder_PublishesRegistryEvents(t *testing.T) {
	pub := &recordingPublisher{}
	f := NewForwarder(pub, 1)
	cancel := runForwarder(t, f)

	reg := book.NewRegistry(book.NewMemoryRepository())
	if err := reg.Load(context.Background(), true); err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	reg.Subscribe(f.Handle)

	ctx := context.Background()
	b, err := reg.Create(ctx, book.NewInput("Dune", 1965))
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if _, err := reg.Update(ctx, b.ID, book.NewInput("Dune Messiah", 1969)); err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	if _, err := reg.Delete(ctx, b.ID); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}

	cancel()
	<-f.Done()

	calls := pub.calls()
	wantTopics := []string{
		"bookshelf/events/created",
		"bookshelf/events/updated",
		"bookshelf/events/deleted",
	}
	if len(calls) != len(wantTopics) {
		t.Fatalf("published %d messages, want %d", len(calls), len(wantTopics))
	}
	for i, c := range calls {
		if c.topic != wantTopics[i] {
			t.Errorf("calls[%d].topic = %q, want %q", i, c.topic, wantTopics[i])
		}
		if c.qos != 1 || c.retained {
			t.Errorf("calls[%d] qos=%d retained=%v, want qos 1 not retained", i, c.qos, c.retained)
		}
	}

	var msg Message
	if err := json.Unmarshal(calls[1].payload, &msg); err != nil {
		t.Fatalf("payload is not JSON: %v", err)
	}
	if msg.Type != book.EventUpdated || msg.Book.Name != "Dune Messiah" || msg.Timestamp.IsZero() {
		t.Errorf("message = %+v", msg)
	}
}

func TestForwarder_PublishErrorDoesNotStop(t *testing.T) {
	pub := &recordingPublisher{err: errors.New("not connected")}
	f := NewForwarder(pub, 0)
	cancel := runForwarder(t, f)

	f.Handle(book.Event{Type: book.EventCreated, Book: book.Book{ID: 9, Name: "One", Year: 2000}})
	f.Handle(book.Event{Type: book.EventDeleted, Book: book.Book{ID: 9, Name: "One", Year: 2000}})

	cancel()
	<-f.Done()

	if n := len(pub.calls()); n != 2 {
		t.Errorf("publish attempts = %d, want 2", n)
	}
}

func TestForwarder_HandleNeverBlocks(t *testing.T) {
	f := NewForwarder(&recordingPublisher{}, 0)

	done := make(chan struct{})
	go func() {
		for i := 0; i < queueSize+10; i++ {
			f.Handle(book.Event{Type: book.EventCreated, Book: book.Book{ID: i}})
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Handle blocked with no consumer running")
	}
	if len(f.queue) != queueSize {
		t.Errorf("queued = %d, want %d", len(f.queue), queueSize)
	}
}

func TestForwarder_IgnoresEventsAfterStop(t *testing.T) {
	pub := &recordingPublisher{}
	f := NewForwarder(pub, 0)
	cancel := runForwarder(t, f)

	cancel()
	<-f.Done()

	f.Handle(book.Event{Type: book.EventCreated, Book: book.Book{ID: 1}})
	if len(f.queue) != 0 {
		t.Error("event queued after Run returned")
	}
}
