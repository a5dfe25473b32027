package services

import (
	"context"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2/log"
	"github.com/mathwaksu-byte/MathwaV2/model"
)

// Lead event types.
const (
	LeadTypeApplication = "application"
	LeadTypeContact     = "contact"
)

// LeadEvent is the payload sent to external systems when a lead arrives.
type LeadEvent struct {
	Type                    string    `json:"type"`
	ID                      string    `json:"id"`
	Name                    string    `json:"name"`
	Email                   string    `json:"email"`
	Phone                   string    `json:"phone"`
	City                    string    `json:"city,omitempty"`
	Message                 string    `json:"message,omitempty"`
	NEETQualified           bool      `json:"neet_qualified"`
	PreferredUniversitySlug string    `json:"preferred_university_slug,omitempty"`
	PreferredYear           *int      `json:"preferred_year,omitempty"`
	MarksheetURL            string    `json:"marksheet_url,omitempty"`
	CreatedAt               time.Time `json:"created_at"`
}

// ApplicationEvent builds the event for a stored application.
func ApplicationEvent(a *model.Application) LeadEvent {
	return LeadEvent{
		Type:                    LeadTypeApplication,
		ID:                      a.ID,
		Name:                    a.Name,
		Email:                   a.Email,
		Phone:                   a.Phone,
		City:                    a.City,
		NEETQualified:           a.NEETQualified,
		PreferredUniversitySlug: a.PreferredUniversitySlug,
		PreferredYear:           a.PreferredYear,
		MarksheetURL:            a.MarksheetURL,
		CreatedAt:               a.CreatedAt,
	}
}

// ContactEvent builds the event for a stored contact message.
func ContactEvent(m *model.Message) LeadEvent {
	return LeadEvent{
		Type:      LeadTypeContact,
		ID:        m.ID,
		Name:      m.Name,
		Email:     m.Email,
		Phone:     m.Phone,
		Message:   m.Message,
		CreatedAt: m.CreatedAt,
	}
}

// LeadNotifier forwards a lead to one external system.
type LeadNotifier interface {
	NotifyLead(ctx context.Context, event LeadEvent) error
}

// LeadDispatcher fans an event out to every notifier in the background.
// Failures are logged and never retried.
type LeadDispatcher struct {
	notifiers []LeadNotifier
	timeout   time.Duration
	wg        sync.WaitGroup
}

func NewLeadDispatcher(timeout time.Duration, notifiers ...LeadNotifier) *LeadDispatcher {
	active := make([]LeadNotifier, 0, len(notifiers))
	for _, n := range notifiers {
		if n != nil {
			active = append(active, n)
		}
	}
	return &LeadDispatcher{notifiers: active, timeout: timeout}
}

// Dispatch returns immediately.
func (d *LeadDispatcher) Dispatch(event LeadEvent) {
	if d == nil {
		return
	}
	for _, n := range d.notifiers {
		d.wg.Add(1)
		go func(n LeadNotifier) {
			defer d.wg.Done()

			ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
			defer cancel()

			if err := n.NotifyLead(ctx, event); err != nil {
				log.Warnf("lead notification for %s %s failed: %v", event.Type, event.ID, err)
			}
		}(n)
	}
}

// Wait blocks until in-flight notifications finish.
func (d *LeadDispatcher) Wait() {
	if d == nil {
		return
	}
	d.wg.Wait()
}
