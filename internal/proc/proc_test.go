package proc

import (
	"os/exec"
	"testing"
	"time"
)

func TestStartAndWait(t *testing.T) {
	tr := NewTracker()
	p, err := tr.Start(exec.Command("true"))
	if err != nil {
		t.Fatal(err)
	}

	select {
	case <-p.Done():
	case <-time.After(5 * time.Second):
		t.Fatal("process never exited")
	}
	if p.Err() != nil {
		t.Errorf("unexpected wait error: %v", p.Err())
	}
	if p.Alive() {
		t.Error("exited process reported alive")
	}
}

func TestStopTerminatesSleepingProcess(t *testing.T) {
	tr := NewTracker()
	p, err := tr.Start(exec.Command("sleep", "60"))
	if err != nil {
		t.Fatal(err)
	}
	if !p.Alive() {
		t.Fatal("sleep exited immediately")
	}

	start := time.Now()
	p.Stop()
	if p.Alive() {
		t.Error("process still alive after Stop")
	}
	// sleep honours SIGTERM, so Stop should not need the kill path.
	if time.Since(start) > termGrace {
		t.Error("Stop waited past the grace period for a SIGTERM-able process")
	}
}

func TestShutdownStopsEverything(t *testing.T) {
	tr := NewTracker()
	var procs []*Proc
	for n := 0; n < 3; n++ {
		p, err := tr.Start(exec.Command("sleep", "60"))
		if err != nil {
			t.Fatal(err)
		}
		procs = append(procs, p)
	}

	tr.Shutdown()
	for _, p := range procs {
		if p.Alive() {
			t.Error("tracked process survived Shutdown")
		}
	}

	// Second call is a no-op.
	tr.Shutdown()
}

func TestStartFailure(t *testing.T) {
	tr := NewTracker()
	if _, err := tr.Start(exec.Command("/nonexistent-binary-for-test")); err == nil {
		t.Fatal("expected error starting missing binary")
	}
	tr.Shutdown()
}
