package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/spf13/cobra"
)

type commitResult struct {
	Matched int      `json:"matched"`
	Tasks   []string `json:"tasks"`
	Error   string   `json:"error"`
}

func commitCmd(git gitRunner) *cobra.Command {
	var (
		url     string
		token   string
		dir     string
		timeout time.Duration
	)

	cmd := &cobra.Command{
		Use:   "commit",
		Short: "Send the HEAD commit to DevTodo",
		Long: `Reads the subject, short hash, branch, repository name and author of
HEAD and posts them to /api/git/commit. Exits quietly when no token is set
so the hook is harmless on machines that are not configured.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if token == "" {
				return nil
			}

			payload, err := readHeadCommit(git, dir)
			if err != nil {
				return err
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()

			result, err := postCommit(ctx, http.DefaultClient, url, token, payload)
			if err != nil {
				return err
			}
			if result.Matched > 0 {
				fmt.Fprintf(cmd.OutOrStdout(), "devtodo: completed %d task(s)\n", result.Matched)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&url, "url", envOr("DEVTODO_URL", "http://localhost:3001"), "DevTodo base URL")
	cmd.Flags().StringVar(&token, "token", envOr("DEVTODO_TOKEN", ""), "API token (defaults to $DEVTODO_TOKEN)")
	cmd.Flags().StringVarP(&dir, "dir", "C", ".", "Repository directory")
	cmd.Flags().DurationVar(&timeout, "timeout", 5*time.Second, "Request timeout")

	return cmd
}

func postCommit(ctx context.Context, client *http.Client, baseURL, token string, payload *CommitPayload) (*commitResult, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, strings.TrimRight(baseURL, "/")+"/api/git/commit", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to reach devtodo: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	var result commitResult
	_ = json.Unmarshal(raw, &result)
	if resp.StatusCode != http.StatusOK {
		if result.Error == "" {
			result.Error = strings.TrimSpace(string(raw))
		}
		return nil, fmt.Errorf("devtodo returned %d: %s", resp.StatusCode, result.Error)
	}
	return &result, nil
}
