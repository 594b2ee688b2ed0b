package daemon

import (
	"path/filepath"
	"testing"
)

func TestSocketPathPrecedence(t *testing.T) {
	t.Setenv("JVMPROC_SOCKET", "/custom/jvmproc.sock")
	t.Setenv("JVMPROC_RUNTIME_DIR", "/runtime")
	if got := SocketPath(); got != "/custom/jvmproc.sock" {
		t.Fatalf("expected explicit socket, got %q", got)
	}

	t.Setenv("JVMPROC_SOCKET", "")
	if got := SocketPath(); got != filepath.Join("/runtime", SocketBaseName) {
		t.Fatalf("expected runtime dir socket, got %q", got)
	}
	if got := PIDPath(); got != filepath.Join("/runtime", pidFileName) {
		t.Fatalf("unexpected pid path %q", got)
	}
}

func TestPIDFileRoundTrip(t *testing.T) {
	t.Setenv("JVMPROC_SOCKET", "")
	t.Setenv("JVMPROC_RUNTIME_DIR", t.TempDir())

	if err := WritePID(4321); err != nil {
		t.Fatalf("WritePID: %v", err)
	}
	pid, err := RunningPID()
	if err != nil || pid != 4321 {
		t.Fatalf("RunningPID = %d, %v", pid, err)
	}
	if err := RemovePID(); err != nil {
		t.Fatalf("RemovePID: %v", err)
	}
	if err := RemovePID(); err != nil {
		t.Fatalf("second RemovePID: %v", err)
	}
	if IsRunning() {
		t.Fatalf("no daemon should be running")
	}
}

func TestSocketTarget(t *testing.T) {
	if got := socketTarget("/run/user/1/jvmproc.sock"); got != "unix:///run/user/1/jvmproc.sock" {
		t.Fatalf("unexpected target %q", got)
	}
}
