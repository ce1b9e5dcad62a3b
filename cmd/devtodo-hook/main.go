package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var Version = "dev"

func main() {
	if err := newRootCmd(execGit).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd(git gitRunner) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "devtodo-hook",
		Short:         "Report git commits to DevTodo for task auto-completion",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(commitCmd(git))
	rootCmd.AddCommand(installCmd(git))

	return rootCmd
}

func envOr(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
