//go:build linux

package attach

import (
	"bufio"
	"context"
	"crypto/rand"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"golang.org/x/sys/unix"

	"jvmproc/internal/registry"
)

type j9 struct {
	t    *Transport
	id   string
	conn net.Conn
	r    *bufio.Reader
}

func (s *j9) ID() string { return s.id }

func (t *Transport) attachJ9(ctx context.Context, id string) (*j9, error) {
	tmp := t.opts.TmpDir
	if pid, err := strconv.Atoi(id); err == nil {
		tmp = t.tmpDirFor(pid)
	}
	root := filepath.Join(tmp, j9Dir)
	vmDir := filepath.Join(root, id)
	if _, err := os.Stat(filepath.Join(vmDir, "attachInfo")); err != nil {
		return nil, fmt.Errorf("%w: %v", registry.ErrAttachUnsupported, err)
	}
	deadline := t.deadline(ctx)

	lock, err := lockFile(ctx, filepath.Join(root, "_attachlock"), deadline)
	if err != nil {
		return nil, fmt.Errorf("attach lock: %w", err)
	}
	defer unlockFile(lock)

	ln, err := net.Listen("tcp4", "127.0.0.1:0")
	if err != nil {
		if ln, err = net.Listen("tcp6", "[::1]:0"); err != nil {
			return nil, err
		}
	}
	defer ln.Close()
	port := ln.Addr().(*net.TCPAddr).Port

	key, err := randomKey()
	if err != nil {
		return nil, err
	}
	reply := filepath.Join(vmDir, "replyInfo")
	if err := os.WriteFile(reply, []byte(fmt.Sprintf("%016x\n%d\n", key, port)), 0o600); err != nil {
		return nil, fmt.Errorf("write replyInfo: %w", err)
	}
	defer os.Remove(reply)

	locks := lockNotifiers(ctx, root, deadline)
	defer func() {
		for _, f := range locks {
			unlockFile(f)
		}
	}()
	if err := notify(root, 1, len(locks)); err != nil {
		return nil, fmt.Errorf("notify: %w", err)
	}
	defer notify(root, -1, len(locks))

	conn, err := accept(ln, key, deadline)
	if err != nil {
		return nil, err
	}
	return &j9{t: t, id: id, conn: conn, r: bufio.NewReader(conn)}, nil
}

func randomKey() (uint64, error) {
	var b [8]byte
	if _, err := rand.Read(b[:]); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(b[:]), nil
}

// lockFile takes an exclusive flock, polling so that ctx and the deadline are honoured.
func lockFile(ctx context.Context, path string, deadline time.Time) (*os.File, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY, 0o666)
	if err != nil {
		return nil, err
	}
	for {
		err := unix.Flock(int(f.Fd()), unix.LOCK_EX|unix.LOCK_NB)
		if err == nil {
			return f, nil
		}
		if !errors.Is(err, unix.EWOULDBLOCK) || time.Now().After(deadline) {
			f.Close()
			return nil, fmt.Errorf("lock %s: %w", path, err)
		}
		select {
		case <-ctx.Done():
			f.Close()
			return nil, ctx.Err()
		case <-time.After(backoffStep):
		}
	}
}

func unlockFile(f *os.File) {
	unix.Flock(int(f.Fd()), unix.LOCK_UN)
	f.Close()
}

// lockNotifiers locks the notification file of every numbered vm directory.
// Directories that cannot be locked are skipped.
func lockNotifiers(ctx context.Context, root string, deadline time.Time) []*os.File {
	entries, err := os.ReadDir(root)
	if err != nil {
		return nil
	}
	var locks []*os.File
	for _, e := range entries {
		name := e.Name()
		if !e.IsDir() || name == "" || name[0] < '1' || name[0] > '9' {
			continue
		}
		f, err := lockFile(ctx, filepath.Join(root, name, "attachNotificationSync"), deadline)
		if err == nil {
			locks = append(locks, f)
		}
	}
	return locks
}

func accept(ln net.Listener, key uint64, deadline time.Time) (net.Conn, error) {
	if tl, ok := ln.(*net.TCPListener); ok {
		tl.SetDeadline(deadline)
	}
	conn, err := ln.Accept()
	if err != nil {
		return nil, fmt.Errorf("jvm did not connect back: %w", err)
	}

	want := fmt.Sprintf("ATTACH_CONNECTED %016x ", key)
	buf := make([]byte, len(want)+1)
	conn.SetReadDeadline(deadline)
	if _, err := io.ReadFull(conn, buf); err != nil {
		conn.Close()
		return nil, fmt.Errorf("read handshake: %w", err)
	}
	if got := strings.TrimRight(string(buf), "\x00"); got != want {
		conn.Close()
		return nil, fmt.Errorf("unexpected handshake %q", got)
	}
	conn.SetDeadline(time.Time{})
	return conn, nil
}

// exchange sends one NUL-terminated command and reads the NUL-terminated reply.
func (s *j9) exchange(ctx context.Context, cmd string) (string, error) {
	s.conn.SetDeadline(s.t.deadline(ctx))
	defer s.conn.SetDeadline(time.Time{})

	if _, err := s.conn.Write(append([]byte(cmd), 0)); err != nil {
		return "", fmt.Errorf("send %s: %w", cmd, err)
	}
	reply, err := s.r.ReadString(0)
	if err != nil {
		return "", fmt.Errorf("read %s reply: %w", cmd, err)
	}
	return strings.TrimSuffix(reply, "\x00"), nil
}

func (s *j9) properties(ctx context.Context, agent bool) (map[string]string, error) {
	cmd := "ATTACH_GETSYSTEMPROPERTIES"
	if agent {
		cmd = "ATTACH_GETAGENTPROPERTIES"
	}
	reply, err := s.exchange(ctx, cmd)
	if err != nil {
		return nil, err
	}
	if strings.HasPrefix(reply, "ATTACH_ERR") {
		return nil, fmt.Errorf("%s: %s", cmd, reply)
	}
	return parseProperties([]byte(reply))
}

func (s *j9) loadAgent(ctx context.Context, path, options string) error {
	reply, err := s.exchange(ctx, fmt.Sprintf("ATTACH_LOADAGENT(instrument,%s=%s)", path, options))
	if err != nil {
		return fmt.Errorf("%w: %v", registry.ErrAgentLoad, err)
	}
	return j9Result(reply)
}

func (s *j9) startManagementAgent(ctx context.Context) error {
	reply, err := s.exchange(ctx, "ATTACH_START_LOCAL_MANAGEMENT_AGENT")
	if err != nil {
		return err
	}
	if strings.HasPrefix(reply, "ATTACH_ERR") {
		return fmt.Errorf("%w: %s", registry.ErrAgentInit, reply)
	}
	return nil
}

func (s *j9) close() error {
	// the reply to a detach is informational only
	s.exchange(context.Background(), "ATTACH_DETACHED")
	return s.conn.Close()
}
