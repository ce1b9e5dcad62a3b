package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func fakeGit(outputs map[string]string) gitRunner {
	return func(dir string, args ...string) (string, error) {
		key := strings.Join(args, " ")
		if out, ok := outputs[key]; ok {
			return out, nil
		}
		return "", errors.New("unexpected git " + key)
	}
}

var headCommit = map[string]string{
	"log -1 --pretty=%s":          "fix #42 login redirect",
	"log -1 --pretty=%h":          "abc1234",
	"rev-parse --show-toplevel":   "/home/me/src/webapp",
	"rev-parse --abbrev-ref HEAD": "main",
	"log -1 --pretty=%an":         "Sam",
}

func run(git gitRunner, args ...string) (string, error) {
	var out bytes.Buffer
	cmd := newRootCmd(git)
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestCommitPostsHeadCommit(t *testing.T) {
	var got CommitPayload
	var auth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/git/commit" || r.Method != http.MethodPost {
			http.NotFound(w, r)
			return
		}
		auth = r.Header.Get("Authorization")
		_ = json.NewDecoder(r.Body).Decode(&got)
		_, _ = w.Write([]byte(`{"matched":1,"tasks":["t-1"]}`))
	}))
	defer srv.Close()

	out, err := run(fakeGit(headCommit), "commit", "--url", srv.URL+"/", "--token", "tok")
	if err != nil {
		t.Fatalf("commit failed: %v", err)
	}
	if auth != "Bearer tok" {
		t.Errorf("unexpected Authorization header %q", auth)
	}
	want := CommitPayload{Message: "fix #42 login redirect", Repo: "webapp", Branch: "main", Hash: "abc1234", Author: "Sam"}
	if got != want {
		t.Errorf("payload = %+v, want %+v", got, want)
	}
	if !strings.Contains(out, "completed 1 task") {
		t.Errorf("unexpected output %q", out)
	}
}

func TestCommitWithoutTokenDoesNothing(t *testing.T) {
	called := false
	git := func(dir string, args ...string) (string, error) {
		called = true
		return "", nil
	}
	if _, err := run(git, "commit", "--token="); err != nil {
		t.Fatalf("expected silent success, got %v", err)
	}
	if called {
		t.Error("git should not run without a token")
	}
}

func TestCommitReportsServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":"Invalid token"}`))
	}))
	defer srv.Close()

	_, err := run(fakeGit(headCommit), "commit", "--url", srv.URL, "--token", "bad")
	if err == nil || !strings.Contains(err.Error(), "401") || !strings.Contains(err.Error(), "Invalid token") {
		t.Errorf("expected 401 error, got %v", err)
	}
}

func TestInstallWritesHook(t *testing.T) {
	repo := t.TempDir()
	git := fakeGit(map[string]string{"rev-parse --git-dir": ".git"})

	if _, err := run(git, "install", "-C", repo); err != nil {
		t.Fatalf("install failed: %v", err)
	}
	path := filepath.Join(repo, ".git", "hooks", "post-commit")
	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if info.Mode().Perm()&0o100 == 0 {
		t.Errorf("hook is not executable: %v", info.Mode())
	}

	// Reinstalling over our own hook is fine
	if _, err := run(git, "install", "-C", repo); err != nil {
		t.Errorf("reinstall failed: %v", err)
	}

	if err := os.WriteFile(path, []byte("#!/bin/sh\necho custom\n"), 0o755); err != nil {
		t.Fatal(err)
	}
	if _, err := run(git, "install", "-C", repo); err == nil {
		t.Error("expected refusal to replace a foreign hook")
	}
	if _, err := run(git, "install", "-C", repo, "--force"); err != nil {
		t.Errorf("forced install failed: %v", err)
	}
	content, _ := os.ReadFile(path)
	if !strings.Contains(string(content), "devtodo-hook commit") {
		t.Errorf("unexpected hook content %q", content)
	}
}
