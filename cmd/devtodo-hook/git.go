package main

import (
	"fmt"
	"os/exec"
	"path/filepath"
	"strings"
)

// gitRunner runs git in dir and returns trimmed stdout
type gitRunner func(dir string, args ...string) (string, error)

func execGit(dir string, args ...string) (string, error) {
	cmd := exec.Command("git", args...)
	cmd.Dir = dir
	out, err := cmd.Output()
	if err != nil {
		return "", fmt.Errorf("git %s: %w", strings.Join(args, " "), err)
	}
	return strings.TrimSpace(string(out)), nil
}

// CommitPayload is the body of POST /api/git/commit
type CommitPayload struct {
	Message string `json:"message"`
	Repo    string `json:"repo"`
	Branch  string `json:"branch"`
	Hash    string `json:"hash"`
	Author  string `json:"author"`
}

func readHeadCommit(git gitRunner, dir string) (*CommitPayload, error) {
	message, err := git(dir, "log", "-1", "--pretty=%s")
	if err != nil {
		return nil, err
	}
	hash, err := git(dir, "log", "-1", "--pretty=%h")
	if err != nil {
		return nil, err
	}
	toplevel, err := git(dir, "rev-parse", "--show-toplevel")
	if err != nil {
		return nil, err
	}

	// Detached HEAD and a missing author are not fatal
	branch, _ := git(dir, "rev-parse", "--abbrev-ref", "HEAD")
	author, _ := git(dir, "log", "-1", "--pretty=%an")

	return &CommitPayload{
		Message: message,
		Repo:    filepath.Base(toplevel),
		Branch:  branch,
		Hash:    hash,
		Author:  author,
	}, nil
}
