package notify

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/dshills/materialcheck/internal/schema"
)

type captureLogger struct{ lines []string }

func (c *captureLogger) Printf(format string, args ...any) {
	c.lines = append(c.lines, fmt.Sprintf(format, args...))
}

func TestLogSender_Redacts(t *testing.T) {
	log := &captureLogger{}
	s := LogSender{Logger: log, Full: true}
	d := Delivery{
		ProjectID: "p-1",
		Recipient: "sam@harbor.test",
		Urgency:   schema.UrgencyUrgent,
		Subject:   "Action needed: 3 items",
		Body:      "Hi Sam,\nCall us at 0912-345-678.",
	}
	if err := s.Send(context.Background(), d); err != nil {
		t.Fatal(err)
	}
	all := strings.Join(log.lines, "\n")
	if strings.Contains(all, "sam@harbor.test") || strings.Contains(all, "0912-345-678") {
		t.Errorf("contact details leaked into log:\n%s", all)
	}
	if len(log.lines) != 3 {
		t.Errorf("expected header plus 2 body lines, got %d", len(log.lines))
	}
}

func TestHistory_Bounded(t *testing.T) {
	h := NewHistory(2)
	for i := 0; i < 3; i++ {
		h.Add(Delivery{ProjectID: fmt.Sprint(i)})
	}
	recent := h.Recent()
	if len(recent) != 2 || recent[0].ProjectID != "1" || recent[1].ProjectID != "2" {
		t.Errorf("Recent = %+v", recent)
	}
}

func TestMemorySender(t *testing.T) {
	m := NewMemorySender()
	p := schema.Project{ID: "p-1", Client: schema.Client{ContactEmail: "sam@harbor.test"}}
	msg := schema.ReminderMessage{Subject: "s", Preview: "p", FullMessage: "body\n"}
	at := time.Date(2026, 10, 18, 9, 0, 0, 0, time.UTC)
	if err := m.Send(context.Background(), NewDelivery(p, schema.UrgencyGentle, msg, at)); err != nil {
		t.Fatal(err)
	}
	got := m.Deliveries()
	if len(got) != 1 || got[0].Recipient != "sam@harbor.test" || got[0].Body != "body\n" || !got[0].SentAt.Equal(at) {
		t.Errorf("Deliveries = %+v", got)
	}
}
