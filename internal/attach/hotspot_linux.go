//go:build linux

package attach

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"golang.org/x/sys/unix"

	"jvmproc/internal/registry"
)

const (
	maxResponse  = 10 << 20
	backoffStep  = 20 * time.Millisecond
	backoffLimit = 500 * time.Millisecond
)

type hotspot struct {
	t      *Transport
	pid    int
	socket string
}

func (h *hotspot) ID() string { return strconv.Itoa(h.pid) }

func (t *Transport) attachHotSpot(ctx context.Context, pid int) (*hotspot, error) {
	st, err := readStatus(pid)
	if err != nil {
		return nil, err
	}
	if euid := os.Geteuid(); euid != 0 && euid != st.UID {
		return nil, fmt.Errorf("%w: pid %d runs as uid %d", registry.ErrAttachAccessDenied, pid, st.UID)
	}

	tmp := t.tmpDirFor(pid)
	socket := filepath.Join(tmp, ".java_pid"+strconv.Itoa(st.NSPID))
	if !isSocket(socket) {
		if !st.catchesQuit() {
			return nil, fmt.Errorf("%w: pid %d does not handle SIGQUIT", registry.ErrAttachUnsupported, pid)
		}
		if err := t.startListener(ctx, pid, st.NSPID, tmp, socket); err != nil {
			return nil, err
		}
	}
	return &hotspot{t: t, pid: pid, socket: socket}, nil
}

// startListener asks the JVM to open its attach socket: create the trigger
// file, send SIGQUIT and wait for the socket to appear.
func (t *Transport) startListener(ctx context.Context, pid, nspid int, tmp, socket string) error {
	trigger, err := createTrigger(pid, nspid, tmp)
	if err != nil {
		return fmt.Errorf("create attach trigger: %w", err)
	}
	defer os.Remove(trigger)

	if err := unix.Kill(pid, unix.SIGQUIT); err != nil {
		if errors.Is(err, unix.EPERM) {
			return fmt.Errorf("%w: signal pid %d: %v", registry.ErrAttachAccessDenied, pid, err)
		}
		return fmt.Errorf("signal pid %d: %w", pid, err)
	}

	deadline := t.deadline(ctx)
	for delay := backoffStep; ; delay += backoffStep {
		if delay > backoffLimit {
			delay = backoffLimit
		}
		wait := time.Until(deadline)
		if wait <= 0 {
			return fmt.Errorf("timeout waiting for %s", socket)
		}
		if delay < wait {
			wait = delay
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(wait):
		}
		if isSocket(socket) {
			return nil
		}
		if err := unix.Kill(pid, 0); errors.Is(err, unix.ESRCH) {
			return fmt.Errorf("pid %d exited during attach", pid)
		}
	}
}

// createTrigger drops .attach_pid<nspid> in the working directory of the
// target, falling back to the temp directory.
func createTrigger(pid, nspid int, tmp string) (string, error) {
	name := ".attach_pid" + strconv.Itoa(nspid)
	cwd := filepath.Join("/proc", strconv.Itoa(pid), "cwd", name)
	if f, err := os.OpenFile(cwd, os.O_CREATE|os.O_WRONLY, 0o660); err == nil {
		f.Close()
		if ownedBy(cwd, os.Geteuid()) {
			return cwd, nil
		}
		os.Remove(cwd)
	}

	path := filepath.Join(tmp, name)
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY, 0o660)
	if err != nil {
		return "", err
	}
	f.Close()
	return path, nil
}

func ownedBy(path string, uid int) bool {
	var st unix.Stat_t
	return unix.Stat(path, &st) == nil && int(st.Uid) == uid
}

func isSocket(path string) bool {
	fi, err := os.Stat(path)
	return err == nil && fi.Mode()&os.ModeSocket != 0
}

// execute runs one command on a fresh connection and returns the raw response.
func (h *hotspot) execute(ctx context.Context, cmd string, args ...string) (string, error) {
	deadline := h.t.deadline(ctx)
	dctx, cancel := context.WithDeadline(ctx, deadline)
	defer cancel()

	var d net.Dialer
	conn, err := d.DialContext(dctx, "unix", h.socket)
	if err != nil {
		return "", fmt.Errorf("connect %s: %w", h.socket, err)
	}
	defer conn.Close()
	conn.SetDeadline(deadline)

	if _, err := conn.Write(request(cmd, args...)); err != nil {
		return "", fmt.Errorf("send %s: %w", cmd, err)
	}
	resp, err := io.ReadAll(io.LimitReader(conn, maxResponse))
	if err != nil {
		return "", fmt.Errorf("read %s response: %w", cmd, err)
	}
	if len(resp) == 0 {
		return "", fmt.Errorf("empty %s response", cmd)
	}
	return string(resp), nil
}

func (h *hotspot) properties(ctx context.Context, agent bool) (map[string]string, error) {
	cmd := "properties"
	if agent {
		cmd = "agentProperties"
	}
	resp, err := h.execute(ctx, cmd)
	if err != nil {
		return nil, err
	}
	body, err := commandResult(resp)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", cmd, err)
	}
	return parseProperties([]byte(body))
}

func (h *hotspot) loadAgent(ctx context.Context, path, options string) error {
	resp, err := h.execute(ctx, "load", "instrument", "false", path+"="+options)
	if err != nil {
		return fmt.Errorf("%w: %v", registry.ErrAgentLoad, err)
	}
	return loadResult(resp)
}

func (h *hotspot) startManagementAgent(ctx context.Context) error {
	resp, err := h.execute(ctx, "jcmd", "ManagementAgent.start_local")
	if err != nil {
		return err
	}
	if _, err := commandResult(resp); err != nil {
		return fmt.Errorf("%w: %v", registry.ErrAgentInit, err)
	}
	return nil
}

// close is a no-op: every command already used its own connection.
func (h *hotspot) close() error {
	return nil
}
