// Package migration tracks and runs a project's schema migrations.
//
// Generated projects register migrations from init() functions in
// app/db/migrations and the runtime applies them:
//
//	func init() {
//	    migration.Register("20240101000000_create_widgets_table", &CreateWidgetsTable{})
//	}
//
//	type CreateWidgetsTable struct{}
//	func (m *CreateWidgetsTable) Up(db *gorm.DB) error   { return db.AutoMigrate(&models.Widget{}) }
//	func (m *CreateWidgetsTable) Down(db *gorm.DB) error { return db.Migrator().DropTable("widgets") }
//
// The onramp CLI triggers these through the project binary
// (`onramp prepmigrations` / `onramp migrate`); failures surface as the
// subprocess exit code.
package migration

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/onramp-dev/onramp/pkg/logger"
	"github.com/onramp-dev/onramp/pkg/metrics"
)

// Migration is the interface every migration implements.
type Migration interface {
	// Up applies the migration.
	Up(db *gorm.DB) error
	// Down reverses the migration.
	Down(db *gorm.DB) error
}

// record is the row stored in the tracking table.
type record struct {
	ID    uint      `gorm:"primaryKey;autoIncrement"`
	Name  string    `gorm:"uniqueIndex;size:255;not null"`
	Batch int       `gorm:"not null"`
	RunAt time.Time `gorm:"autoCreateTime"`
}

func (record) TableName() string { return "onramp_migrations" }

type registered struct {
	name string
	m    Migration
}

var registry []registered

// Register adds a migration to the global registry. Names should carry a
// timestamp prefix ("20240101000000_create_widgets_table") so lexical
// order matches chronological order.
func Register(name string, m Migration) {
	registry = append(registry, registered{name: name, m: m})
}

// Runner executes and tracks migrations against one database handle.
type Runner struct {
	db *gorm.DB
}

// New creates a Runner backed by db.
func New(db *gorm.DB) *Runner {
	return &Runner{db: db}
}

// EnsureTable creates the tracking table if it does not exist.
func (r *Runner) EnsureTable() error {
	return r.db.AutoMigrate(&record{})
}

// Pending returns registered migrations that have not been run yet,
// sorted by name.
func (r *Runner) Pending() ([]string, error) {
	ran, err := r.ranSet()
	if err != nil {
		return nil, err
	}

	var pending []string
	for _, reg := range registry {
		if !ran[reg.name] {
			pending = append(pending, reg.name)
		}
	}
	sort.Strings(pending)
	return pending, nil
}

// Run executes all pending migrations in a single batch.
func (r *Runner) Run() error {
	if err := r.EnsureTable(); err != nil {
		return fmt.Errorf("migration: ensure table: %w", err)
	}

	pending, err := r.Pending()
	if err != nil {
		return fmt.Errorf("migration: fetch pending: %w", err)
	}
	if len(pending) == 0 {
		fmt.Println("Nothing to migrate.")
		return nil
	}

	byName := registryByName()
	batch := r.nextBatch()

	for _, name := range pending {
		logger.Info("migration: running", "name", name)
		fmt.Printf("  Migrating: %s\n", name)

		if err := byName[name].Up(r.db); err != nil {
			return fmt.Errorf("migration: %s up: %w", name, err)
		}
		if err := r.db.Create(&record{Name: name, Batch: batch}).Error; err != nil {
			return fmt.Errorf("migration: record %s: %w", name, err)
		}

		fmt.Printf("  Migrated:  %s\n", name)
		metrics.MigrationsApplied.Inc()
	}

	logger.Info("migration: done", "ran", len(pending), "batch", batch)
	return nil
}

// Rollback reverses all migrations from the most recent batch.
func (r *Runner) Rollback() error {
	if err := r.EnsureTable(); err != nil {
		return fmt.Errorf("migration: ensure table: %w", err)
	}

	last := r.lastBatch()
	if last == 0 {
		fmt.Println("Nothing to roll back.")
		return nil
	}

	var records []record
	if err := r.db.Where("batch = ?", last).Order("id desc").Find(&records).Error; err != nil {
		return fmt.Errorf("migration: load batch %d: %w", last, err)
	}

	byName := registryByName()
	for _, rec := range records {
		m, ok := byName[rec.Name]
		if !ok {
			return fmt.Errorf("migration: cannot roll back %s: not registered", rec.Name)
		}

		fmt.Printf("  Rolling back: %s\n", rec.Name)
		if err := m.Down(r.db); err != nil {
			return fmt.Errorf("migration: %s down: %w", rec.Name, err)
		}
		if err := r.db.Delete(&rec).Error; err != nil {
			return fmt.Errorf("migration: delete record %s: %w", rec.Name, err)
		}
	}
	return nil
}

// Status prints every registered migration and whether it has run.
func (r *Runner) Status() error {
	if err := r.EnsureTable(); err != nil {
		return err
	}

	var ran []record
	if err := r.db.Find(&ran).Error; err != nil {
		return err
	}
	ranMap := make(map[string]record, len(ran))
	for _, rec := range ran {
		ranMap[rec.Name] = rec
	}

	fmt.Printf("%-60s  %-8s  %s\n", "Migration", "Status", "Batch")
	fmt.Println(strings.Repeat("-", 80))
	for _, reg := range registry {
		if rec, ok := ranMap[reg.name]; ok {
			fmt.Printf("%-60s  %-8s  %d\n", reg.name, "Ran", rec.Batch)
		} else {
			fmt.Printf("%-60s  %-8s  -\n", reg.name, "Pending")
		}
	}
	return nil
}

func (r *Runner) ranSet() (map[string]bool, error) {
	var ran []record
	if err := r.db.Find(&ran).Error; err != nil {
		return nil, err
	}
	set := make(map[string]bool, len(ran))
	for _, rec := range ran {
		set[rec.Name] = true
	}
	return set, nil
}

func (r *Runner) lastBatch() int {
	var max struct{ Max int }
	r.db.Model(&record{}).Select("MAX(batch) as max").Scan(&max)
	return max.Max
}

func (r *Runner) nextBatch() int {
	return r.lastBatch() + 1
}

func registryByName() map[string]Migration {
	m := make(map[string]Migration, len(registry))
	for _, reg := range registry {
		m[reg.name] = reg.m
	}
	return m
}
