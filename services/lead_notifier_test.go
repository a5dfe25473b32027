package services

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"
)

func TestCRMWebhookDelivers(t *testing.T) {
	received := make(chan LeadEvent, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.Header.Get("Content-Type") != "application/json" {
			t.Errorf("unexpected request %s %s", r.Method, r.Header.Get("Content-Type"))
		}
		var ev LeadEvent
		if err := json.NewDecoder(r.Body).Decode(&ev); err != nil {
			t.Errorf("decode: %v", err)
		}
		received <- ev
		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	d := NewLeadDispatcher(time.Second, NewCRMWebhook(srv.URL))
	d.Dispatch(LeadEvent{Type: LeadTypeApplication, ID: "a1", Email: "s@example.com"})
	d.Wait()

	select {
	case ev := <-received:
		if ev.ID != "a1" || ev.Type != LeadTypeApplication {
			t.Errorf("unexpected payload %+v", ev)
		}
	default:
		t.Fatal("webhook was not called")
	}
}

func TestCRMWebhookReportsFailures(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	err := NewCRMWebhook(srv.URL).NotifyLead(context.Background(), LeadEvent{ID: "x"})
	if err == nil || !strings.Contains(err.Error(), "502") {
		t.Fatalf("expected status error, got %v", err)
	}

	if NewCRMWebhook("") != nil {
		t.Error("empty URL should disable the webhook")
	}
}

type countingNotifier struct {
	calls atomic.Int32
	err   error
}

func (n *countingNotifier) NotifyLead(ctx context.Context, event LeadEvent) error {
	n.calls.Add(1)
	return n.err
}

func TestDispatcherSwallowsErrors(t *testing.T) {
	failing := &countingNotifier{err: errors.New("crm down")}
	ok := &countingNotifier{}

	d := NewLeadDispatcher(time.Second, failing, ok, nil)
	d.Dispatch(LeadEvent{ID: "1"})
	d.Dispatch(LeadEvent{ID: "2"})
	d.Wait()

	if failing.calls.Load() != 2 || ok.calls.Load() != 2 {
		t.Fatalf("calls = %d/%d, want 2/2", failing.calls.Load(), ok.calls.Load())
	}

	var nilDispatcher *LeadDispatcher
	nilDispatcher.Dispatch(LeadEvent{})
	nilDispatcher.Wait()
}

func TestBuildLeadEmailBodyEscapes(t *testing.T) {
	body := BuildLeadEmailBody(LeadEvent{Type: LeadTypeContact, Name: "<script>x</script>", Email: "a@b.co"})
	if strings.Contains(body, "<script>") {
		t.Fatal("lead fields must be escaped")
	}
	if strings.Contains(body, "NEET") {
		t.Error("contact leads should not include NEET row")
	}
}
