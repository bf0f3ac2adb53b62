package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/kube-rca/incident-chat/internal/config"
	"github.com/kube-rca/incident-chat/internal/model"
)

func newTestSlackClient(t *testing.T, handler http.HandlerFunc) *SlackClient {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c := NewSlackClient(config.SlackConfig{BotToken: "xoxb-test", ChannelID: "C123"})
	c.apiURL = srv.URL
	return c
}

func TestNotifyIncident(t *testing.T) {
	var got SlackMessage
	var auth string
	c := newTestSlackClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat.postMessage" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		auth = r.Header.Get("Authorization")
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode body: %v", err)
		}
		_, _ = w.Write([]byte(`{"ok":true,"ts":"1.2"}`))
	})

	rec := model.IncidentRecord{
		IncidentID:  "INC-ABCDEF012345",
		Category:    "Equipment Failure",
		Description: "Pump stopped working",
		Status:      model.IncidentStatusReported,
		AssignedTo:  "Safety Team",
		ReportedAt:  time.Date(2026, 5, 6, 7, 8, 0, 0, time.UTC),
	}
	if err := c.NotifyIncident(context.Background(), rec); err != nil {
		t.Fatalf("NotifyIncident() error = %v", err)
	}

	if auth != "Bearer xoxb-test" {
		t.Fatalf("Authorization = %q", auth)
	}
	if got.Channel != "C123" || len(got.Attachments) != 1 {
		t.Fatalf("unexpected message: %+v", got)
	}
	att := got.Attachments[0]
	if att.Title != "🆕 [INC-ABCDEF012345] Equipment Failure" {
		t.Fatalf("Title = %q", att.Title)
	}
	if att.Color != incidentNotificationColor {
		t.Fatalf("Color = %q", att.Color)
	}
	if att.Text != "Pump stopped working" {
		t.Fatalf("Text = %q", att.Text)
	}
	if att.Fields[3].Value != "06-05-2026 07:08" {
		t.Fatalf("Reported On = %q", att.Fields[3].Value)
	}
}

func TestNotifyIncidentSlackError(t *testing.T) {
	c := newTestSlackClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"ok":false,"error":"channel_not_found"}`))
	})

	err := c.NotifyIncident(context.Background(), model.IncidentRecord{IncidentID: "INC-1"})
	if err == nil || err.Error() != "slack API error: channel_not_found" {
		t.Fatalf("expected slack API error, got %v", err)
	}
}

func TestNotifyIncidentNotConfigured(t *testing.T) {
	c := NewSlackClient(config.SlackConfig{BotToken: "xoxb-test"})
	if c.IsConfigured() {
		t.Fatalf("expected unconfigured client")
	}
	if err := c.NotifyIncident(context.Background(), model.IncidentRecord{}); err == nil {
		t.Fatalf("expected error for unconfigured client")
	}
}
