package events

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/nerrad567/bookshelf/internal/book"
	"github.com/nerrad567/bookshelf/internal/infrastructure/mqtt"
)

// queueSize bounds the events waiting for the broker.
const queueSize = 256

// Publisher is the subset of the MQTT client used by the forwarder.
type Publisher interface {
	Publish(topic string, payload []byte, qos byte, retained bool) error
}

// Logger defines the logging interface used by the Forwarder.
type Logger interface {
	Debug(msg string, args ...any)
	Warn(msg string, args ...any)
}

type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Warn(string, ...any)  {}

// Message is the JSON payload published for each event.
type Message struct {
	Type      book.EventType `json:"type"`
	Book      book.Book      `json:"book"`
	Timestamp time.Time      `json:"timestamp"`
}

// Forwarder publishes book events to MQTT.
type Forwarder struct {
	pub    Publisher
	qos    byte
	logger Logger
	queue  chan Message

	mu      sync.Mutex
	stopped bool
	done    chan struct{}
}

// NewForwarder creates a forwarder publishing through pub with qos.
func NewForwarder(pub Publisher, qos byte) *Forwarder {
	return &Forwarder{
		pub:    pub,
		qos:    qos,
		logger: noopLogger{},
		queue:  make(chan Message, queueSize),
		done:   make(chan struct{}),
	}
}

// SetLogger sets the logger for the forwarder.
func (f *Forwarder) SetLogger(logger Logger) {
	f.logger = logger
}

// Handle queues ev for publication. It never blocks; when the queue is full
// the event is dropped and a warning logged. Handle satisfies book.Listener.
func (f *Forwarder) Handle(ev book.Event) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.stopped {
		return
	}

	msg := Message{Type: ev.Type, Book: ev.Book, Timestamp: time.Now().UTC()}
	select {
	case f.queue <- msg:
	default:
		f.logger.Warn("mqtt event queue full, dropping event", "type", ev.Type, "id", ev.Book.ID)
	}
}

// Run publishes queued events until ctx is cancelled, then drains what is
// already queued and returns.
func (f *Forwarder) Run(ctx context.Context) {
	defer close(f.done)

	for {
		select {
		case msg := <-f.queue:
			f.publish(msg)
		case <-ctx.Done():
			f.mu.Lock()
			f.stopped = true
			f.mu.Unlock()

			for {
				select {
				case msg := <-f.queue:
					f.publish(msg)
				default:
					return
				}
			}
		}
	}
}

// Done is closed when Run has returned.
func (f *Forwarder) Done() <-chan struct{} {
	return f.done
}

func (f *Forwarder) publish(msg Message) {
	payload, err := json.Marshal(msg)
	if err != nil {
		f.logger.Warn("encoding book event", "type", msg.Type, "error", err)
		return
	}

	topic := mqtt.Topics{}.BookEvent(msg.Type.Action())
	if err := f.pub.Publish(topic, payload, f.qos, false); err != nil {
		f.logger.Warn("publishing book event", "topic", topic, "error", err)
		return
	}
	f.logger.Debug("book event published", "topic", topic, "id", msg.Book.ID)
}
