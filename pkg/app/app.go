// Package app is the runtime entry point of a generated project.
//
// A project's app/main.go is tiny:
//
//	package main
//
//	import (
//	    "github.com/onramp-dev/onramp/pkg/app"
//	    _ "myproject/app/api"
//	    _ "myproject/app/db/migrations"
//	)
//
//	func main() {
//	    app.Run()
//	}
//
// API files register themselves from init(), so blank-importing app/api
// is all the wiring a project needs. The onramp CLI drives sub-commands
// through the same binary:
//
//	go run ./app serve
//	go run ./app migrate
//	go run ./app route:list
package app

import (
	"fmt"
	"os"

	"gorm.io/gorm"

	"github.com/onramp-dev/onramp/config"
	"github.com/onramp-dev/onramp/pkg/database"
	"github.com/onramp-dev/onramp/pkg/migration"
	"github.com/onramp-dev/onramp/pkg/routes"
)

// activeDB is the handle the serving Application opened. Handler code in
// api files reaches it through DB() because registrations happen in
// init(), before any Application exists to thread a handle through.
var activeDB *gorm.DB

// DB returns the open database handle of the running application. It is
// nil until serve has connected, and stays nil for projects that run
// with the backend disabled.
func DB() *gorm.DB { return activeDB }

// SeederFunc seeds the database with fixture data.
type SeederFunc func(db *gorm.DB) error

var globalSeeders []SeederFunc

// RegisterSeeder registers a seeder to be run by the seed command.
// Call this from an init() in your seeder files.
func RegisterSeeder(name string, fn SeederFunc) {
	globalSeeders = append(globalSeeders, fn)
}

// Application carries everything the runtime needs: loaded settings, the
// route registry, and the models to auto-migrate. Build one with New(),
// attach configuration, then call Run.
type Application struct {
	settings *config.Settings
	registry *routes.Registry
	models   []any
	seeders  []SeederFunc
	poolSize int
}

// Option customizes an Application.
type Option func(*Application)

// WithRegistry swaps the route registry. The default is the package-level
// registry that api files register into from init().
func WithRegistry(reg *routes.Registry) Option {
	return func(a *Application) { a.registry = reg }
}

// WithPoolSize bounds the worker pool that runs blocking handlers.
func WithPoolSize(n int) Option {
	return func(a *Application) { a.poolSize = n }
}

// New builds an Application for the project rooted at the current
// directory. Settings come from app/settings.json, falling back to
// defaults when the file is absent.
func New(opts ...Option) *Application {
	root, err := os.Getwd()
	if err != nil {
		root = "."
	}
	settings, err := config.Load(root)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}

	a := &Application{
		settings: settings,
		registry: routes.Default(),
		poolSize: 64,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// AutoMigrate adds GORM models that are auto-migrated on server start.
// Pass model pointers: app.New().AutoMigrate(&User{}, &Post{}).
func (a *Application) AutoMigrate(models ...any) *Application {
	a.models = append(a.models, models...)
	return a
}

// Seeders registers seeder functions inline, as an alternative to the
// init()-based RegisterSeeder.
func (a *Application) Seeders(fns ...SeederFunc) *Application {
	a.seeders = append(a.seeders, fns...)
	return a
}

// Run reads os.Args and dispatches to the matching command. This is the
// only call a generated main() makes.
func (a *Application) Run() {
	cmd := "serve"
	if len(os.Args) > 1 {
		cmd = os.Args[1]
	}

	var err error
	switch cmd {
	case "serve", "start", "run", "s":
		err = a.serve()
	case "migrate":
		err = a.withDB(func(db *gorm.DB) error { return migration.New(db).Run() })
	case "migrate:rollback", "migrate:down":
		err = a.withDB(func(db *gorm.DB) error { return migration.New(db).Rollback() })
	case "migrate:status":
		err = a.withDB(func(db *gorm.DB) error { return migration.New(db).Status() })
	case "seed":
		err = a.seed()
	case "route:list", "routes":
		err = a.routeList()
	case "help", "--help", "-h":
		printHelp()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %q\n\nRun with --help for usage.\n", cmd)
		os.Exit(1)
	}

	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// Run builds a default Application and runs it. Generated main.go files
// call this.
func Run() {
	New().Run()
}

// withDB connects to the configured database and hands it to fn.
func (a *Application) withDB(fn func(*gorm.DB) error) error {
	db, err := database.Connect(a.settings)
	if err != nil {
		return err
	}
	return fn(db)
}

func (a *Application) seed() error {
	seeders := append(a.seeders, globalSeeders...)
	if len(seeders) == 0 {
		fmt.Println("No seeders registered. Use app.RegisterSeeder() or .Seeders() on Application.")
		return nil
	}
	return a.withDB(func(db *gorm.DB) error {
		for _, fn := range seeders {
			if err := fn(db); err != nil {
				return err
			}
		}
		fmt.Printf("Seeding complete (%d seeders ran)\n", len(seeders))
		return nil
	})
}

// routeList prints the route table derived from registered api files.
func (a *Application) routeList() error {
	table := a.registry.Build(nil)
	if len(table) == 0 {
		fmt.Println("No routes registered.")
		return nil
	}

	fmt.Printf("%-10s  %-40s  %s\n", "METHODS", "PATH", "FILE")
	for _, rt := range table {
		methods := ""
		for i, m := range rt.Methods() {
			if i > 0 {
				methods += ","
			}
			methods += m
		}
		fmt.Printf("%-10s  %-40s  app/api/%s.go\n", methods, rt.Path, rt.Name)
	}
	return nil
}

func printHelp() {
	fmt.Print(`onramp project runtime

Usage:
  go run ./app <command>

Commands:
  serve            Start the HTTP server  (aliases: start, run)
  migrate          Run all pending database migrations
  migrate:rollback Rollback the last batch of migrations
  migrate:status   Show migration status
  seed             Run all registered database seeders
  route:list       List registered API routes

`)
}
