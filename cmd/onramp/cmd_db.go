package main

// Database commands delegate to the project binary with `go run ./app
// <command>` so the project's own migrations and models are registered
// when they execute. The subprocess exit code is the command result.

import (
	"fmt"
	"os"
	"os/exec"

	"github.com/spf13/cobra"

	"github.com/onramp-dev/onramp/internal/scaffold"
)

// runInProject executes `go run ./app <subcommand>` in the project root.
func runInProject(subcommand string) error {
	c := exec.Command("go", "run", "./app", subcommand)
	c.Dir = projectRoot()
	c.Stdin = os.Stdin
	c.Stdout = os.Stdout
	c.Stderr = os.Stderr
	c.Env = os.Environ()
	return c.Run()
}

// onramp prepmigrations [name]
var prepMigrationsCmd = &cobra.Command{
	Use:   "prepmigrations [name]",
	Short: "Write a new migration stub into app/db/migrations",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := ""
		if len(args) > 0 {
			name = args[0]
		}
		path, err := scaffold.Migration(projectRoot(), name)
		if err != nil {
			fmt.Println("Migration failed")
			return err
		}
		fmt.Printf("Created %s\n", path)
		fmt.Println("Migration prepared successfully")
		return nil
	},
}

// onramp migrate
var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply all pending database migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := runInProject("migrate"); err != nil {
			fmt.Println("Migration failed")
			return err
		}
		fmt.Println("Migration completed successfully")
		return nil
	},
}

// onramp migrate:rollback
var migrateRollbackCmd = &cobra.Command{
	Use:   "migrate:rollback",
	Short: "Rollback the last batch of migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runInProject("migrate:rollback")
	},
}

// onramp migrate:status
var migrateStatusCmd = &cobra.Command{
	Use:   "migrate:status",
	Short: "Show the status of each migration",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runInProject("migrate:status")
	},
}

// onramp seed
var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Run the project's database seeders",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runInProject("seed")
	},
}

// onramp route:list
var routeListCmd = &cobra.Command{
	Use:   "route:list",
	Short: "List the project's registered API routes",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runInProject("route:list")
	},
}
