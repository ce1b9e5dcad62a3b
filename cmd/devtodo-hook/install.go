package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
)

const hookMarker = "# installed by devtodo-hook"

const postCommitHook = `#!/bin/sh
` + hookMarker + `
# Runs in the background so the commit is never delayed
devtodo-hook commit >/dev/null 2>&1 &
exit 0
`

func installCmd(git gitRunner) *cobra.Command {
	var (
		dir   string
		force bool
	)

	cmd := &cobra.Command{
		Use:   "install",
		Short: "Install the post-commit hook into a repository",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := installHook(git, dir, force)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Installed post-commit hook at %s\n", path)
			return nil
		},
	}

	cmd.Flags().StringVarP(&dir, "dir", "C", ".", "Repository directory")
	cmd.Flags().BoolVarP(&force, "force", "f", false, "Overwrite an existing post-commit hook")

	return cmd
}

func installHook(git gitRunner, dir string, force bool) (string, error) {
	gitDir, err := git(dir, "rev-parse", "--git-dir")
	if err != nil {
		return "", fmt.Errorf("not a git repository: %w", err)
	}
	if !filepath.IsAbs(gitDir) {
		gitDir = filepath.Join(dir, gitDir)
	}

	hooksDir := filepath.Join(gitDir, "hooks")
	if err := os.MkdirAll(hooksDir, 0o755); err != nil {
		return "", err
	}

	path := filepath.Join(hooksDir, "post-commit")
	if existing, err := os.ReadFile(path); err == nil && !force && !strings.Contains(string(existing), hookMarker) {
		return "", fmt.Errorf("%s already exists, use --force to replace it", path)
	}

	if err := os.WriteFile(path, []byte(postCommitHook), 0o755); err != nil {
		return "", err
	}
	// WriteFile keeps the mode of an existing file
	if err := os.Chmod(path, 0o755); err != nil {
		return "", err
	}
	return path, nil
}
