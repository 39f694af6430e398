package devserver

import (
	"net"
	"testing"
)

func TestIsPortInUse(t *testing.T) {
	ln, err := net.Listen("tcp", "localhost:0")
	if err != nil {
		t.Fatal(err)
	}
	defer ln.Close()

	port := ln.Addr().(*net.TCPAddr).Port
	if !IsPortInUse(port) {
		t.Errorf("port %d has a listener but was reported free", port)
	}
}

func TestFindNextPortSkipsBusyPort(t *testing.T) {
	ln, err := net.Listen("tcp", "localhost:0")
	if err != nil {
		t.Fatal(err)
	}
	defer ln.Close()

	busy := ln.Addr().(*net.TCPAddr).Port
	got := FindNextPort(busy)
	if got == busy {
		t.Errorf("FindNextPort returned the busy port %d", busy)
	}
	if got < busy {
		t.Errorf("FindNextPort went backwards: %d < %d", got, busy)
	}
	if IsPortInUse(got) {
		t.Errorf("returned port %d is in use", got)
	}
}
