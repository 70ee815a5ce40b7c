// Package main provides the fxinsight CLI entry point.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/eternisai/fxinsight/internal/generation"
	"github.com/eternisai/fxinsight/internal/presentation"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

const exitCanceled = 130

// Global flags
type rootOptions struct {
	logLevel        string
	credentialsPath string
}

func main() {
	// Load .env file if present (ignore "file not found" errors)
	if err := godotenv.Load(); err != nil {
		if !os.IsNotExist(err) {
			fmt.Fprintf(os.Stderr, "Warning: failed to load .env file: %v\n", err)
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := newRootCmd().ExecuteContext(ctx)
	stop()

	os.Exit(exitCode(os.Stderr, err))
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	rootCmd := &cobra.Command{
		Use:   "fxinsight",
		Short: "Structured insight points for currency and macro questions",
		Long: `Ask a free-form question about currencies or macroeconomics and get an
ordered list of titled insight points.

Answers come from the fxinsight server when one is reachable, otherwise
directly from the model API using the locally stored credential.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "error", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&opts.credentialsPath, "credentials", "", "Credentials file (default $XDG_CONFIG_HOME/fxinsight/credentials.yaml)")

	rootCmd.AddCommand(askCmd(opts))
	rootCmd.AddCommand(demoCmd())
	rootCmd.AddCommand(settingsCmd(opts))

	return rootCmd
}

// exitCode reports err on w and maps it to a process exit code.
func exitCode(w io.Writer, err error) int {
	if err == nil {
		return 0
	}

	if errors.Is(err, generation.ErrCanceled) {
		fmt.Fprintln(w, presentation.Stopped().Message)
		return exitCanceled
	}

	var genErr *generation.GenerationError
	if errors.As(err, &genErr) {
		fmt.Fprintln(w, presentation.Failed().Message)
	}

	fmt.Fprintf(w, "Error: %v\n", err)
	return 1
}
