package n8n

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestExecutionsSummarizes(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("X-N8N-API-KEY") != "key" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		if r.URL.Path != "/api/v1/executions" || r.URL.Query().Get("limit") != "50" {
			t.Errorf("unexpected request %s", r.URL.String())
		}
		_, _ = w.Write([]byte(`{"data":[
			{"workflowId":"w1","status":"success","startedAt":"2026-03-01T09:00:00.000Z","workflowData":{"name":"Backup"}},
			{"workflowId":"w2","status":"running","startedAt":"2026-03-01T10:00:00.000Z"},
			{"workflowId":"w1","status":"error","startedAt":"2026-03-01T11:00:00.000Z","workflowData":{"name":"Backup"}},
			{"workflowId":"w1","status":"success","startedAt":"2026-03-01T08:00:00.000Z"}
		]}`))
	}))
	defer server.Close()

	report, err := NewClient(server.URL+"/", "key").Executions(context.Background())
	if err != nil {
		t.Fatalf("Executions failed: %v", err)
	}
	if len(report.Stats) != 2 || len(report.Raw) == 0 {
		t.Fatalf("unexpected report %+v", report)
	}

	backup := report.Stats[0]
	if backup.WorkflowName != "Backup" || backup.Total != 3 || backup.Success != 2 || backup.Error != 1 {
		t.Errorf("unexpected backup stats %+v", backup)
	}
	if backup.LastRun == nil || *backup.LastRun != "2026-03-01T11:00:00.000Z" {
		t.Errorf("unexpected last run %v", backup.LastRun)
	}
	if other := report.Stats[1]; other.WorkflowName != "Unknown" || other.Running != 1 {
		t.Errorf("unexpected second stats %+v", other)
	}
}

func TestWorkflows(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/workflows" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		_, _ = w.Write([]byte(`{"data":[{"id":"w1","name":"Backup","active":true}]}`))
	}))
	defer server.Close()

	raw, err := NewClient(server.URL, "key").Workflows(context.Background())
	if err != nil || string(raw) != `{"data":[{"id":"w1","name":"Backup","active":true}]}` {
		t.Errorf("Workflows = %s, %v", raw, err)
	}
}

func TestClientErrors(t *testing.T) {
	if _, err := NewClient("http://localhost:5678", "").Workflows(context.Background()); !errors.Is(err, ErrNotConfigured) {
		t.Errorf("expected ErrNotConfigured, got %v", err)
	}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
	}))
	defer server.Close()
	if _, err := NewClient(server.URL, "bad").Executions(context.Background()); err == nil {
		t.Error("expected an API error")
	}
}
