package notification

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/pizoo/pizoo-api/internal/domain"
	"github.com/pizoo/pizoo-api/internal/pkg/id"
)

// Event is a pending inbox notification emitted by swipe and message flows.
type Event struct {
	UserID  string
	Type    string
	Title   string
	Message string
	Data    map[string]string
}

// Notifier accepts notification events. Implementations must never let a
// delivery problem surface to the emitting operation.
type Notifier interface {
	Notify(ctx context.Context, e Event)
}

// Dispatcher decouples notification persistence from the operations that
// trigger it. Events are queued on a channel and written by a background
// worker; a full queue drops the event rather than blocking the caller, and
// store failures are logged, never propagated.
type Dispatcher struct {
	repo   notificationStore
	events chan Event
	done   chan struct{}
	once   sync.Once
}

// writeTimeout bounds each store write so a slow store cannot stall the queue
// indefinitely.
const writeTimeout = 10 * time.Second

func NewDispatcher(repo notificationStore, buffer int) *Dispatcher {
	if buffer < 1 {
		buffer = 256
	}
	return &Dispatcher{
		repo:   repo,
		events: make(chan Event, buffer),
		done:   make(chan struct{}),
	}
}

// Start launches the worker goroutine. Call Close to drain and stop it.
func (d *Dispatcher) Start() {
	go d.run()
}

func (d *Dispatcher) run() {
	defer close(d.done)
	for e := range d.events {
		d.persist(e)
	}
}

func (d *Dispatcher) persist(e Event) {
	ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
	defer cancel()
	n := &domain.Notification{
		NotificationID: id.New(),
		UserID:         e.UserID,
		Type:           e.Type,
		Title:          e.Title,
		Message:        e.Message,
		Data:           e.Data,
		Read:           false,
		CreatedAt:      time.Now().UTC(),
	}
	if err := d.repo.Put(ctx, n); err != nil {
		slog.Warn("failed to persist notification", "user_id", e.UserID, "type", e.Type, "err", err)
	}
}

// Notify enqueues the event. The triggering operation has already succeeded
// by the time this is called, so a full queue sheds the event with a warning
// instead of blocking or failing the caller.
func (d *Dispatcher) Notify(_ context.Context, e Event) {
	select {
	case d.events <- e:
	default:
		slog.Warn("notification queue full, dropping event", "user_id", e.UserID, "type", e.Type)
	}
}

// Close drains queued events and stops the worker.
func (d *Dispatcher) Close() {
	d.once.Do(func() {
		close(d.events)
	})
	<-d.done
}
