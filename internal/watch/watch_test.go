package watch

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestIgnoredPatternsMatchAnywhere(t *testing.T) {
	w := &Watcher{ignore: DefaultIgnorePatterns}

	ignored := []string{
		"/p/app/db/db.sqlite3-wal",
		"/p/app/db/db.sqlite3-shm",
		"/p/app/db/db.sqlite3-journal",
		"/p/app/.DS_Store",
		"/p/app/Thumbs.db",
		"/p/app/api/.index.go.swp",
		"/p/app/debug.log",
		"/p/app/upload.tmp",
	}
	for _, path := range ignored {
		if !w.ignored(path) {
			t.Errorf("expected %q to be ignored", path)
		}
	}

	kept := []string{
		"/p/app/api/index.go",
		"/p/app/db/db.sqlite3",
		"/p/app/settings.json",
	}
	for _, path := range kept {
		if w.ignored(path) {
			t.Errorf("expected %q to pass the filter", path)
		}
	}
}

func TestWatcherEmitsBatchOnChange(t *testing.T) {
	dir := t.TempDir()
	w, err := New(dir, nil)
	if err != nil {
		t.Fatal(err)
	}
	defer w.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go w.Run(ctx)

	target := filepath.Join(dir, "index.go")
	if err := os.WriteFile(target, []byte("package api\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	select {
	case batch := <-w.Changes():
		found := false
		for _, p := range batch {
			if p == target {
				found = true
			}
		}
		if !found {
			t.Errorf("batch %v missing %s", batch, target)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("no change batch received")
	}
}

func TestWatcherFiltersIgnoredFiles(t *testing.T) {
	dir := t.TempDir()
	w, err := New(dir, nil)
	if err != nil {
		t.Fatal(err)
	}
	defer w.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go w.Run(ctx)

	if err := os.WriteFile(filepath.Join(dir, "db.sqlite3-wal"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	select {
	case batch := <-w.Changes():
		t.Fatalf("expected no batch for ignored file, got %v", batch)
	case <-time.After(time.Second):
	}
}

func TestWatcherSeesNewSubdirectories(t *testing.T) {
	dir := t.TempDir()
	w, err := New(dir, nil)
	if err != nil {
		t.Fatal(err)
	}
	defer w.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go w.Run(ctx)

	sub := filepath.Join(dir, "api")
	if err := os.Mkdir(sub, 0o755); err != nil {
		t.Fatal(err)
	}
	// Creating the directory itself emits a batch; drain it.
	select {
	case <-w.Changes():
	case <-time.After(5 * time.Second):
		t.Fatal("no batch for created directory")
	}

	target := filepath.Join(sub, "users.go")
	if err := os.WriteFile(target, []byte("package api\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	select {
	case batch := <-w.Changes():
		found := false
		for _, p := range batch {
			if p == target {
				found = true
			}
		}
		if !found {
			t.Errorf("batch %v missing %s", batch, target)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("no batch for file in new subdirectory")
	}
}
