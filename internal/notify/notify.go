// Package notify delivers reminder messages and keeps a record of them.
package notify

import (
	"context"
	"sync"
	"time"

	"github.com/dshills/materialcheck/internal/redact"
	"github.com/dshills/materialcheck/internal/schema"
)

// Delivery is one reminder handed to a Sender.
type Delivery struct {
	ProjectID string         `json:"project_id"`
	Recipient string         `json:"recipient"`
	Urgency   schema.Urgency `json:"urgency"`
	Subject   string         `json:"subject"`
	Preview   string         `json:"preview"`
	Body      string         `json:"body"`
	SentAt    time.Time      `json:"sent_at"`
}

// Sender delivers a rendered reminder to its recipient.
type Sender interface {
	Send(ctx context.Context, d Delivery) error
}

// MemorySender stores deliveries in memory for inspection/testing.
type MemorySender struct {
	mu         sync.Mutex
	deliveries []Delivery
}

// NewMemorySender constructs an empty memory sender.
func NewMemorySender() *MemorySender {
	return &MemorySender{}
}

// Send records the delivery.
func (m *MemorySender) Send(_ context.Context, d Delivery) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.deliveries = append(m.deliveries, d)
	return nil
}

// Deliveries returns a copy of deliveries seen so far.
func (m *MemorySender) Deliveries() []Delivery {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Delivery, len(m.deliveries))
	copy(out, m.deliveries)
	return out
}

// LogSender writes deliveries to a logger with contact details redacted.
// It is the default when no outbound channel is configured.
type LogSender struct {
	Logger interface {
		Printf(string, ...any)
	}
	// Full logs the message body line by line as well as the subject.
	Full bool
}

func (l LogSender) Send(_ context.Context, d Delivery) error {
	l.Logger.Printf("reminder project=%s urgency=%s to=%s subject=%q",
		d.ProjectID, d.Urgency, redact.Redact(d.Recipient), redact.Redact(d.Subject))
	if l.Full {
		for _, line := range redact.Lines(d.Body) {
			l.Logger.Printf("  | %s", line)
		}
	}
	return nil
}

// History keeps a bounded list of recent deliveries.
type History struct {
	mu       sync.RWMutex
	capacity int
	entries  []Delivery
}

// NewHistory constructs a history with the provided capacity.
func NewHistory(capacity int) *History {
	if capacity <= 0 {
		capacity = 100
	}
	return &History{capacity: capacity}
}

// Add records a delivery.
func (h *History) Add(d Delivery) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.entries = append(h.entries, d)
	if len(h.entries) > h.capacity {
		h.entries = h.entries[len(h.entries)-h.capacity:]
	}
}

// Recent returns the stored deliveries in chronological order.
func (h *History) Recent() []Delivery {
	h.mu.RLock()
	defer h.mu.RUnlock()
	snapshot := make([]Delivery, len(h.entries))
	copy(snapshot, h.entries)
	return snapshot
}

// NewDelivery builds a Delivery for a project's client contact.
func NewDelivery(p schema.Project, urgency schema.Urgency, msg schema.ReminderMessage, at time.Time) Delivery {
	return Delivery{
		ProjectID: p.ID,
		Recipient: p.Client.ContactEmail,
		Urgency:   urgency,
		Subject:   msg.Subject,
		Preview:   msg.Preview,
		Body:      msg.FullMessage,
		SentAt:    at.UTC(),
	}
}
