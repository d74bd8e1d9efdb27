package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/steviee/cdl/internal/cli"
)

// Version information (set by ldflags during build)
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
	builtBy = "unknown"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	rootCmd := cli.NewRootCommand(version, commit, date, builtBy)
	err := rootCmd.ExecuteContext(ctx)
	stop()

	if err != nil {
		cli.PrintError(rootCmd.OutOrStdout(), rootCmd.ErrOrStderr(), err)
		os.Exit(1)
	}
}
