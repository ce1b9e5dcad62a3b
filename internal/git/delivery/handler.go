package delivery

import (
	"devtodo-backend/internal/git/usecase"
	"devtodo-backend/internal/task/repository"
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
)

// GitHandler handles commit hook and repo tracking requests
type GitHandler struct {
	matcher  *usecase.CommitMatcher
	repoRepo repository.GitRepoRepository
}

// NewGitHandler creates a new GitHandler
func NewGitHandler(matcher *usecase.CommitMatcher, repoRepo repository.GitRepoRepository) *GitHandler {
	return &GitHandler{
		matcher:  matcher,
		repoRepo: repoRepo,
	}
}

// RegisterRoutes mounts the git endpoints on the given group
func (h *GitHandler) RegisterRoutes(group *gin.RouterGroup) {
	git := group.Group("/git")
	git.POST("/commit", h.Commit)
	git.GET("/repos", h.ListRepos)
	git.DELETE("/repos/:name", h.DeleteRepo)
	git.GET("/hook-script", h.HookScript)
}

// CommitRequest is the payload sent by the post-commit hook.
// Message is a pointer so a missing field and a non-string field both fail.
type CommitRequest struct {
	Message *string `json:"message"`
	Repo    string  `json:"repo"`
	Branch  string  `json:"branch"`
	Hash    string  `json:"hash"`
	Author  string  `json:"author"`
}

// Commit receives a commit and auto-completes matching tasks
// POST /api/git/commit
func (h *GitHandler) Commit(c *gin.Context) {
	var req CommitRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Message == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "message is required"})
		return
	}

	ids, err := h.matcher.CompleteMatchingTasks(usecase.CommitEvent{
		Message: *req.Message,
		Repo:    req.Repo,
		Branch:  req.Branch,
		Hash:    req.Hash,
		Author:  req.Author,
	})
	if err != nil {
		if errors.Is(err, usecase.ErrInvalidCommit) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "message is required"})
			return
		}
		log.Printf("[CommitMatcher] Error processing commit: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to process commit",
			"matched": len(ids),
			"tasks":   ids,
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"matched": len(ids),
		"tasks":   ids,
	})
}

// ListRepos returns tracked repos, most recent commit first
// GET /api/git/repos
func (h *GitHandler) ListRepos(c *gin.Context) {
	repos, err := h.repoRepo.List()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch repos"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"repos": repos})
}

// DeleteRepo stops tracking a repo
// DELETE /api/git/repos/:name
func (h *GitHandler) DeleteRepo(c *gin.Context) {
	deleted, err := h.repoRepo.DeleteByName(c.Param("name"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete repo"})
		return
	}
	if !deleted {
		c.JSON(http.StatusNotFound, gin.H{"error": "Repo not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"deleted": true})
}

// HookScript returns a post-commit hook that needs only sh and curl
// GET /api/git/hook-script
func (h *GitHandler) HookScript(c *gin.Context) {
	c.Data(http.StatusOK, "text/plain; charset=utf-8", []byte(hookScript))
}

const hookScript = `#!/bin/sh
# DevTodo post-commit hook
# Sends commit info to DevTodo for task auto-completion

DEVTODO_URL="${DEVTODO_URL:-http://localhost:3001}"

# Silently skip if not configured
if [ -z "$DEVTODO_TOKEN" ]; then
  exit 0
fi

MESSAGE=$(git log -1 --pretty=%s)
HASH=$(git log -1 --pretty=%h)
BRANCH=$(git rev-parse --abbrev-ref HEAD)
REPO=$(basename "$(git rev-parse --show-toplevel)")
AUTHOR=$(git log -1 --pretty=%an)

# Fire and forget so the commit is never blocked
curl -s -X POST "$DEVTODO_URL/api/git/commit" \
  -H "Authorization: Bearer $DEVTODO_TOKEN" \
  -H "Content-Type: application/json" \
  -d "{
    \"message\": \"$(echo "$MESSAGE" | sed 's/"/\\"/g')\",
    \"repo\": \"$REPO\",
    \"branch\": \"$BRANCH\",
    \"hash\": \"$HASH\",
    \"author\": \"$AUTHOR\"
  }" > /dev/null 2>&1 &

exit 0
`
