package events

import (
	"context"
	"errors"
	"sync"
	"time"

	"dispatchai-pro/pkg/logger"
	"dispatchai-pro/pkg/metrics"
)

// Event types pushed to websocket clients and routed on the exchange
const (
	TypeLoadAssigned       = "load_assigned"
	TypeLogEditProposed    = "log_edit_proposed"
	TypeLogEditResolved    = "log_edit_resolved"
	TypeLogCertified       = "log_certified"
	TypeDutyStatusRecorded = "duty_status_recorded"
	TypeAlertDismissed     = "alert_dismissed"
	TypeTaskUpdated        = "task_updated"
	TypeInvoiceUpdated     = "invoice_updated"
	TypeUnassignedResolved = "unassigned_event_resolved"
)

// Event is a domain change fanned out after it has been committed
type Event struct {
	Type      string      `json:"type"`
	Data      interface{} `json:"data"`
	Timestamp string      `json:"timestamp"`

	// DriverID, when set, also delivers the event to that driver's session.
	// Admin sessions receive every event.
	DriverID string `json:"-"`
}

// New stamps an event with the current time
func New(eventType string, data interface{}, driverID string) Event {
	return Event{
		Type:      eventType,
		Data:      data,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		DriverID:  driverID,
	}
}

// Publisher delivers committed events to one sink
type Publisher interface {
	Publish(ctx context.Context, event Event) error
}

// Notifier sends a push notification to a user's registered device
type Notifier interface {
	NotifyUser(ctx context.Context, userID, title, body string, data map[string]string) error
}

type nop struct{}

func (nop) Publish(context.Context, Event) error { return nil }

func (nop) NotifyUser(context.Context, string, string, string, map[string]string) error {
	return nil
}

// Nop discards events
var Nop Publisher = nop{}

// NopNotifier discards notifications
var NopNotifier Notifier = nop{}

type sink struct {
	name string
	pub  Publisher
}

// Bus publishes each event to every registered sink and records the outcome
type Bus struct {
	sinks   []sink
	log     logger.Logger
	metrics *metrics.Metrics
}

func NewBus(log logger.Logger, m *metrics.Metrics) *Bus {
	return &Bus{log: log, metrics: m}
}

// Add registers a named sink
func (b *Bus) Add(name string, pub Publisher) {
	b.sinks = append(b.sinks, sink{name: name, pub: pub})
}

// Publish tries every sink; failures are joined, one bad sink never blocks the rest
func (b *Bus) Publish(ctx context.Context, event Event) error {
	var errs []error
	for _, s := range b.sinks {
		err := s.pub.Publish(ctx, event)
		result := metrics.ResultSuccess
		if err != nil {
			result = metrics.ResultFailure
			errs = append(errs, err)
			b.log.Warn("⚠️ event delivery failed", "sink", s.name, "type", event.Type, "error", err)
		}
		if b.metrics != nil {
			b.metrics.EventsPublished.WithLabelValues(s.name, result).Inc()
		}
	}
	return errors.Join(errs...)
}

// Recorder keeps published events in memory
type Recorder struct {
	mu     sync.Mutex
	events []Event
	Err    error
}

func (r *Recorder) Publish(_ context.Context, event Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
	return r.Err
}

func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Event{}, r.events...)
}

// Types lists the recorded event types in publish order
func (r *Recorder) Types() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	types := make([]string, len(r.events))
	for i, e := range r.events {
		types[i] = e.Type
	}
	return types
}

// Notification is a push captured by NotifyRecorder
type Notification struct {
	UserID string
	Title  string
	Body   string
	Data   map[string]string
}

// NotifyRecorder keeps sent notifications in memory
type NotifyRecorder struct {
	mu   sync.Mutex
	sent []Notification
	Err  error
}

func (r *NotifyRecorder) NotifyUser(_ context.Context, userID, title, body string, data map[string]string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sent = append(r.sent, Notification{UserID: userID, Title: title, Body: body, Data: data})
	return r.Err
}

func (r *NotifyRecorder) Sent() []Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Notification{}, r.sent...)
}
