// Package devserver runs the backend development loop: it spawns the
// project binary, watches app/ for source changes, restarts the worker
// on each batch, and pushes livereload events to connected clients.
package devserver

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"time"

	"github.com/onramp-dev/onramp/internal/livereload"
	"github.com/onramp-dev/onramp/internal/proc"
	"github.com/onramp-dev/onramp/internal/watch"
	"github.com/onramp-dev/onramp/pkg/logger"
)

// DefaultPort is the backend port offered when none is given.
const DefaultPort = 8000

// LivereloadPort is where the WebSocket reload endpoint listens.
const LivereloadPort = 35729

// IsPortInUse reports whether something is listening on localhost:port.
func IsPortInUse(port int) bool {
	conn, err := net.DialTimeout("tcp", net.JoinHostPort("localhost", strconv.Itoa(port)), 500*time.Millisecond)
	if err != nil {
		return false
	}
	conn.Close()
	return true
}

// FindNextPort returns the first free port at or above start.
func FindNextPort(start int) int {
	port := start
	for IsPortInUse(port) {
		port++
	}
	return port
}

// ResolvePort checks port availability and, when the port is taken,
// asks the user whether to fall back to the next free one. Returns an
// error when the user declines.
func ResolvePort(port int) (int, error) {
	if !IsPortInUse(port) {
		return port, nil
	}

	fmt.Printf("Port %d is already in use.\n", port)
	fmt.Printf("Use next available port (starting from %d)? (y/n): ", port+1)
	reader := bufio.NewReader(os.Stdin)
	line, _ := reader.ReadString('\n')
	if len(line) == 0 || (line[0] != 'y' && line[0] != 'Y') {
		return 0, errors.New("user declined to use another port")
	}

	next := FindNextPort(port + 1)
	fmt.Printf("Using port %d instead.\n", next)
	return next, nil
}

// Server drives the backend watch loop for one project.
type Server struct {
	Root    string
	Tracker *proc.Tracker
	Hub     *livereload.Hub
}

// New builds a Server for the project at root.
func New(root string, tracker *proc.Tracker) *Server {
	return &Server{
		Root:    root,
		Tracker: tracker,
		Hub:     livereload.NewHub(),
	}
}

// workerCmd builds the `go run ./app serve` command for the project.
func (s *Server) workerCmd(ctx context.Context, port int) *exec.Cmd {
	cmd := exec.CommandContext(ctx, "go", "run", "./app", "serve")
	cmd.Dir = s.Root
	cmd.Env = append(os.Environ(),
		"ONRAMP_PORT="+strconv.Itoa(port),
		"ONRAMP_ENV=development",
	)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	return cmd
}

// RunWithWatch starts the backend worker and restarts it whenever app/
// sources change, until ctx is cancelled. The livereload endpoint runs
// for the duration of the loop.
func (s *Server) RunWithWatch(ctx context.Context, port int) error {
	appDir := filepath.Join(s.Root, "app")

	w, err := watch.New(appDir, nil)
	if err != nil {
		return fmt.Errorf("watch %s: %w", appDir, err)
	}
	defer w.Close()
	go w.Run(ctx)

	go s.Hub.Run(ctx)
	s.serveLivereload(ctx)

	fmt.Printf("Dev watch active on %s.\n", appDir)
	worker, err := s.Tracker.Start(s.workerCmd(ctx, port))
	if err != nil {
		return fmt.Errorf("start backend: %w", err)
	}

	for {
		select {
		case <-ctx.Done():
			worker.Stop()
			return nil

		case <-worker.Done():
			// Worker died on its own (compile error, crash). Wait for
			// the next change rather than hot-looping on a broken build.
			logger.Warn("devserver: backend exited", "err", worker.Err())
			fmt.Println("Backend stopped; waiting for changes...")
			select {
			case <-ctx.Done():
				return nil
			case batch := <-w.Changes():
				fmt.Printf("Changes detected: %v\n", batch)
			}
			fmt.Println("Restarting server...")
			worker, err = s.Tracker.Start(s.workerCmd(ctx, port))
			if err != nil {
				return fmt.Errorf("restart backend: %w", err)
			}
			s.Hub.Notify(nil)

		case batch := <-w.Changes():
			fmt.Printf("Changes detected: %v\n", batch)
			fmt.Println("Restarting server...")
			worker.Stop()
			worker, err = s.Tracker.Start(s.workerCmd(ctx, port))
			if err != nil {
				return fmt.Errorf("restart backend: %w", err)
			}
			s.Hub.Notify(batch)
		}
	}
}

// serveLivereload exposes the reload WebSocket on LivereloadPort. A
// bind failure (port taken by another dev server) is logged, not fatal.
func (s *Server) serveLivereload(ctx context.Context) {
	mux := http.NewServeMux()
	mux.Handle("/livereload", s.Hub.Handler())

	srv := &http.Server{
		Addr:    fmt.Sprintf("localhost:%d", LivereloadPort),
		Handler: mux,
	}
	go func() {
		<-ctx.Done()
		shutCtx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		srv.Shutdown(shutCtx)
	}()
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Warn("devserver: livereload unavailable", "err", err)
		}
	}()
}
