package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/onramp-dev/onramp/internal/proc"
)

// tracker holds every child process the CLI spawns. Cleanup runs once,
// whether the run ends normally or on an interrupt.
var tracker = proc.NewTracker()

var rootCmd = &cobra.Command{
	Use:   "onramp",
	Short: "OnRamp app generator and dev runner",
	Long: "OnRamp scaffolds backend API projects with a React Native frontend\n" +
		"and runs their development servers with file watching and restarts.",
	SilenceUsage: true,
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)

	err := rootCmd.ExecuteContext(ctx)

	stop()
	tracker.Shutdown()

	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	// Scaffolding
	rootCmd.AddCommand(newCmd)

	// Dev servers
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(webCmd)
	rootCmd.AddCommand(iosCmd)
	rootCmd.AddCommand(androidCmd)

	// Database
	rootCmd.AddCommand(prepMigrationsCmd)
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(migrateRollbackCmd)
	rootCmd.AddCommand(migrateStatusCmd)
	rootCmd.AddCommand(seedCmd)
	rootCmd.AddCommand(routeListCmd)

	// Repair
	rootCmd.AddCommand(repairIOSCmd)
}

// projectRoot is the directory commands operate on: the cwd.
func projectRoot() string {
	cwd, err := os.Getwd()
	if err != nil {
		return "."
	}
	return cwd
}
