package auth

import (
	"context"
	"sync"
	"time"
)

// Topic names for the domain events this module emits and consumes.
const (
	TopicUserActivity = "user.activity.happened"
	TopicUserLoggedIn = "user.logged.in"
)

// Message is a typed event routed by topic.
type Message interface {
	Type() string
}

// UserActivityMessage is emitted on every authenticated request.
type UserActivityMessage struct {
	AccountID    string    `json:"account_id"`
	ActivityTime time.Time `json:"activity_time"`
}

func (UserActivityMessage) Type() string { return TopicUserActivity }

// UserLoggedInMessage is emitted once per successful sign in.
type UserLoggedInMessage struct {
	AccountID string `json:"account_id"`
}

func (UserLoggedInMessage) Type() string { return TopicUserLoggedIn }

// MessageHandler consumes one message. Handlers have no synchronous caller
// to report to; they log their own failures and never panic outward.
type MessageHandler func(ctx context.Context, msg Message)

// Dispatcher is an in-process, per-topic message bus with asynchronous
// at-least-once delivery. Ordering across producers is not guaranteed;
// consumers resolve races with last-write-wins semantics.
type Dispatcher struct {
	mu       sync.RWMutex
	handlers map[string][]MessageHandler
	wg       sync.WaitGroup
	logger   Logger
}

// NewDispatcher creates an empty bus.
func NewDispatcher(logger Logger) *Dispatcher {
	if logger == nil {
		logger = defLogger{}
	}
	return &Dispatcher{
		handlers: map[string][]MessageHandler{},
		logger:   logger,
	}
}

// Subscribe registers a handler for a topic. Safe to call concurrently with
// Emit; a message emitted before Subscribe returns may or may not reach the
// new handler.
func (d *Dispatcher) Subscribe(topic string, handler MessageHandler) {
	if handler == nil {
		return
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.handlers[topic] = append(d.handlers[topic], handler)
}

// Emit delivers the message to every subscriber of its topic, each on its
// own goroutine. Panicking handlers are contained and logged.
func (d *Dispatcher) Emit(ctx context.Context, msg Message) {
	if msg == nil {
		return
	}

	d.mu.RLock()
	subscribers := d.handlers[msg.Type()]
	d.mu.RUnlock()

	for _, handler := range subscribers {
		d.wg.Add(1)
		go func(h MessageHandler) {
			defer d.wg.Done()
			defer func() {
				if r := recover(); r != nil {
					d.logger.Error("event handler panicked", "topic", msg.Type(), "panic", r)
				}
			}()
			h(ctx, msg)
		}(handler)
	}
}

// Wait blocks until every in-flight delivery completes. Used on shutdown
// and by tests that need deterministic delivery.
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}
