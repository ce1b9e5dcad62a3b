package delivery

import (
	"bytes"
	"devtodo-backend/internal/git/usecase"
	"devtodo-backend/internal/task/domain"
	"devtodo-backend/internal/task/repository"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
)

type testServer struct {
	router *gin.Engine
	tasks  repository.TaskRepository
	repos  repository.GitRepoRepository
}

func newTestServer() *testServer {
	gin.SetMode(gin.TestMode)
	ts := &testServer{
		router: gin.New(),
		tasks:  repository.NewMemoryTaskRepository(),
		repos:  repository.NewMemoryGitRepoRepository(),
	}
	handler := NewGitHandler(usecase.NewCommitMatcher(ts.tasks, ts.repos), ts.repos)
	handler.RegisterRoutes(ts.router.Group("/api"))
	return ts
}

func (ts *testServer) do(method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	ts.router.ServeHTTP(w, req)
	return w
}

func TestCommitCompletesMatchingTask(t *testing.T) {
	ts := newTestServer()
	task := &domain.Task{Title: "Fix login bug"}
	_ = ts.tasks.Create(task)

	w := ts.do(http.MethodPost, "/api/git/commit", `{"message":"fix login bug and add tests","repo":"devtodo","hash":"abc123"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var resp struct {
		Matched int      `json:"matched"`
		Tasks   []string `json:"tasks"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Matched != 1 || len(resp.Tasks) != 1 || resp.Tasks[0] != task.ID {
		t.Errorf("unexpected response: %+v", resp)
	}

	w = ts.do(http.MethodGet, "/api/git/repos", "")
	if !strings.Contains(w.Body.String(), `"name":"devtodo"`) {
		t.Errorf("expected repo to be listed, got %s", w.Body.String())
	}
}

func TestCommitZeroMatchesIsSuccess(t *testing.T) {
	ts := newTestServer()

	w := ts.do(http.MethodPost, "/api/git/commit", `{"message":"bump deps"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), `"matched":0`) || !strings.Contains(w.Body.String(), `"tasks":[]`) {
		t.Errorf("unexpected body: %s", w.Body.String())
	}
}

func TestCommitWhitespaceMessageIsSuccess(t *testing.T) {
	ts := newTestServer()

	w := ts.do(http.MethodPost, "/api/git/commit", `{"message":"   "}`)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), `"matched":0`) {
		t.Errorf("unexpected body: %s", w.Body.String())
	}
}

func TestCommitRejectsBadMessage(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"missing", `{"repo":"devtodo"}`},
		{"not a string", `{"message":42}`},
		{"empty", `{"message":""}`},
		{"not json", `message=hi`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := newTestServer()
			w := ts.do(http.MethodPost, "/api/git/commit", tt.body)
			if w.Code != http.StatusBadRequest {
				t.Errorf("expected 400, got %d", w.Code)
			}
			repos, _ := ts.repos.List()
			if len(repos) != 0 {
				t.Errorf("repo tracked despite rejected payload")
			}
		})
	}
}

func TestDeleteRepo(t *testing.T) {
	ts := newTestServer()
	ts.do(http.MethodPost, "/api/git/commit", `{"message":"init","repo":"devtodo"}`)

	if w := ts.do(http.MethodDelete, "/api/git/repos/devtodo", ""); w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}
	if w := ts.do(http.MethodDelete, "/api/git/repos/devtodo", ""); w.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", w.Code)
	}
}

func TestHookScript(t *testing.T) {
	ts := newTestServer()

	w := ts.do(http.MethodGet, "/api/git/hook-script", "")
	if w.Code != http.StatusOK || !strings.HasPrefix(w.Body.String(), "#!/bin/sh") {
		t.Fatalf("unexpected hook script response: %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "/api/git/commit") {
		t.Error("hook script does not post to the commit endpoint")
	}
}
