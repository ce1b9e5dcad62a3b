package docker

import (
	"context"
	"encoding/binary"
	"errors"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func newTestEngine(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/_ping", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("OK"))
	})
	mux.HandleFunc("/containers/json", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("all") != "1" {
			t.Errorf("expected all=1, got %s", r.URL.RawQuery)
		}
		_, _ = w.Write([]byte(`[{"Id":"abcdef1234567890","Names":["/npm-app-1"],"Image":"nginx","State":"running","Status":"Up 2 hours","Created":1700000000,"Ports":[{"PrivatePort":80,"PublicPort":8080,"Type":"tcp"}]}]`))
	})
	mux.HandleFunc("/containers/abc/json", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"Id":"abc123","RestartCount":3,"State":{"StartedAt":"2026-03-01T09:00:00Z","Health":{"Status":"healthy"}}}`))
	})
	mux.HandleFunc("/containers/abc/logs", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("tail") != "50" {
			t.Errorf("expected tail=50, got %s", r.URL.RawQuery)
		}
		_, _ = w.Write(frame(1, "line one\n"))
		_, _ = w.Write(frame(2, "line two\n"))
	})
	mux.HandleFunc("/containers/abc/restart", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("expected POST, got %s", r.Method)
		}
		w.WriteHeader(http.StatusNoContent)
	})
	mux.HandleFunc("/containers/gone/stop", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"message":"No such container: gone"}`))
	})
	mux.HandleFunc("/containers/abc/stats", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"cpu_stats":{"cpu_usage":{"total_usage":300},"system_cpu_usage":2000,"online_cpus":2},"precpu_stats":{"cpu_usage":{"total_usage":100},"system_cpu_usage":1000},"memory_stats":{"usage":256,"limit":1024}}`))
	})
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

func frame(stream byte, payload string) []byte {
	header := make([]byte, 8)
	header[0] = stream
	binary.BigEndian.PutUint32(header[4:], uint32(len(payload)))
	return append(header, payload...)
}

func TestClientOverTCP(t *testing.T) {
	server := newTestEngine(t)
	client := NewClient("", "tcp://"+strings.TrimPrefix(server.URL, "http://"))
	ctx := context.Background()

	if err := client.Ping(ctx); err != nil {
		t.Fatalf("Ping failed: %v", err)
	}

	containers, err := client.ListContainers(ctx)
	if err != nil {
		t.Fatalf("ListContainers failed: %v", err)
	}
	if len(containers) != 1 || containers[0].Name() != "npm-app-1" || containers[0].Ports[0].PublicPort != 8080 {
		t.Errorf("unexpected containers %+v", containers)
	}

	details, err := client.InspectContainer(ctx, "abc")
	if err != nil || details.ID != "abc123" || details.RestartCount != 3 || details.HealthStatus() != "healthy" {
		t.Errorf("InspectContainer = %+v, %v", details, err)
	}

	logs, err := client.ContainerLogs(ctx, "abc", 50)
	if err != nil || logs != "line one\nline two\n" {
		t.Errorf("ContainerLogs = %q, %v", logs, err)
	}

	stats, err := client.ContainerStats(ctx, "abc")
	if err != nil {
		t.Fatalf("ContainerStats failed: %v", err)
	}
	if stats.CPUPercent() != 40 || stats.MemoryPercent() != 25 {
		t.Errorf("unexpected percentages cpu=%v mem=%v", stats.CPUPercent(), stats.MemoryPercent())
	}
}

func TestContainerAction(t *testing.T) {
	client := NewClient("", newTestEngine(t).URL)
	ctx := context.Background()

	if err := client.ContainerAction(ctx, "abc", "restart"); err != nil {
		t.Errorf("restart failed: %v", err)
	}
	if err := client.ContainerAction(ctx, "abc", "remove"); !errors.Is(err, ErrInvalidAction) {
		t.Errorf("expected ErrInvalidAction, got %v", err)
	}
	err := client.ContainerAction(ctx, "gone", "stop")
	if err == nil || !strings.Contains(err.Error(), "No such container") {
		t.Errorf("expected engine error message, got %v", err)
	}
}

func TestClientOverUnixSocket(t *testing.T) {
	socket := filepath.Join(t.TempDir(), "docker.sock")
	listener, err := net.Listen("unix", socket)
	if err != nil {
		t.Skipf("unix sockets unavailable: %v", err)
	}
	server := &http.Server{Handler: http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("OK"))
	})}
	go server.Serve(listener)
	defer server.Close()

	if err := NewClient(socket, "").Ping(context.Background()); err != nil {
		t.Errorf("Ping over unix socket failed: %v", err)
	}
}

func TestDemultiplexPassesPlainText(t *testing.T) {
	if got := demultiplex([]byte("tty output\n")); got != "tty output\n" {
		t.Errorf("unexpected %q", got)
	}
}

func TestLoadURLMap(t *testing.T) {
	path := filepath.Join(t.TempDir(), "urls.yaml")
	content := "containers:\n  npm-app-1: https://example.com\n  app-db: null\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	urls, err := LoadURLMap(path)
	if err != nil {
		t.Fatalf("LoadURLMap failed: %v", err)
	}
	if got := urls.Lookup("npm-app-1"); got == nil || *got != "https://example.com" {
		t.Errorf("unexpected url %v", got)
	}
	if urls.Lookup("app-db") != nil || urls.Lookup("unknown") != nil {
		t.Error("expected nil for unset containers")
	}

	missing, err := LoadURLMap(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil || len(missing) != 0 {
		t.Errorf("expected empty map for a missing file, got %v, %v", missing, err)
	}

	_ = os.WriteFile(path, []byte("containers: [not, a, map"), 0o644)
	if _, err := LoadURLMap(path); err == nil {
		t.Error("expected a parse error")
	}
}
