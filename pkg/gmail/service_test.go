package gmail

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"google.golang.org/api/option"
)

type staticProvider struct {
	client *http.Client
	err    error
}

func (p staticProvider) HTTPClient(ctx context.Context) (*http.Client, error) {
	return p.client, p.err
}

func TestActionText(t *testing.T) {
	tests := []struct {
		subject string
		want    string
	}{
		{"RE: [JIRA] Review the deploy plan", "Review the deploy plan"},
		{"Action Required: sign the contract", "sign the contract"},
		{"Fwd: urgent invoice", "urgent invoice"},
		{"[ext] please review PR 12", "please review PR 12"},
	}
	for _, tt := range tests {
		if got := ActionText(tt.subject); got != tt.want {
			t.Errorf("ActionText(%q) = %q, want %q", tt.subject, got, tt.want)
		}
	}
}

func TestDedupeByThread(t *testing.T) {
	got := dedupeByThread([]ActionEmail{
		{ID: "1", ThreadID: "a"},
		{ID: "2", ThreadID: "b"},
		{ID: "3", ThreadID: "a"},
	})
	if len(got) != 2 || got[0].ID != "3" || got[1].ID != "2" {
		t.Errorf("unexpected dedupe result %+v", got)
	}
}

func TestActionEmails(t *testing.T) {
	byQuery := map[string][]map[string]string{
		ActionQueries[0]: {{"id": "m1", "threadId": "t1"}},
		ActionQueries[4]: {{"id": "m2", "threadId": "t1"}, {"id": "m3", "threadId": "t2"}},
	}
	subjects := map[string]string{"m1": "Action required: pay invoice", "m2": "RE: pay invoice", "m3": "Lunch?"}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch {
		case strings.HasSuffix(r.URL.Path, "/users/me/messages"):
			_ = json.NewEncoder(w).Encode(map[string]interface{}{"messages": byQuery[r.URL.Query().Get("q")]})
		case strings.Contains(r.URL.Path, "/users/me/messages/"):
			id := r.URL.Path[strings.LastIndex(r.URL.Path, "/")+1:]
			if r.URL.Query().Get("format") != "metadata" {
				t.Errorf("expected metadata format, got %s", r.URL.RawQuery)
			}
			threads := map[string]string{"m1": "t1", "m2": "t1", "m3": "t2"}
			_ = json.NewEncoder(w).Encode(map[string]interface{}{
				"id":       id,
				"threadId": threads[id],
				"payload": map[string]interface{}{"headers": []map[string]string{
					{"name": "Subject", "value": subjects[id]},
					{"name": "From", "value": "boss@example.com"},
				}},
			})
		default:
			http.NotFound(w, r)
		}
	}))
	defer server.Close()

	svc := NewService(staticProvider{client: server.Client()}, option.WithEndpoint(server.URL+"/"))
	emails, err := svc.ActionEmails(context.Background())
	if err != nil {
		t.Fatalf("ActionEmails failed: %v", err)
	}
	if len(emails) != 2 {
		t.Fatalf("expected 2 threads, got %+v", emails)
	}
	if emails[0].ID != "m2" || emails[0].ActionText != "Respond to: pay invoice" || emails[0].From != "boss@example.com" {
		t.Errorf("unexpected first email %+v", emails[0])
	}
	if emails[1].ActionText != "Respond to: Lunch?" || emails[1].Date != "" || !emails[1].HasAction {
		t.Errorf("unexpected second email %+v", emails[1])
	}
}

func TestActionEmailsNeedsAuth(t *testing.T) {
	denied := errors.New("not authenticated")
	if _, err := NewService(staticProvider{err: denied}).ActionEmails(context.Background()); !errors.Is(err, denied) {
		t.Errorf("expected the provider error, got %v", err)
	}
}
