package hsperf

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"jvmproc/internal/registry"
)

const (
	dirPrefix = "hsperfdata_"

	commandKey      = "sun.rt.javaCommand"
	capabilitiesKey = "sun.rt.jvmCapabilities"
)

// Source is the passive discovery source backed by hsperfdata directories.
type Source struct {
	TmpDir string
}

// New returns a source reading <tmpDir>/hsperfdata_*.
func New(tmpDir string) *Source {
	return &Source{TmpDir: tmpDir}
}

func (s *Source) dirs() ([]string, error) {
	dirs, err := filepath.Glob(filepath.Join(s.TmpDir, dirPrefix+"*"))
	if err != nil {
		return nil, err
	}
	sort.Strings(dirs)
	return dirs, nil
}

// ActiveIDs lists the pids that have a perf data file and are still running.
func (s *Source) ActiveIDs(ctx context.Context) ([]int, error) {
	dirs, err := s.dirs()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", registry.ErrMonitor, err)
	}

	seen := make(map[int]struct{})
	var pids []int
	for _, dir := range dirs {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		entries, err := os.ReadDir(dir)
		if err != nil {
			// directories of other users are often unreadable
			continue
		}
		for _, e := range entries {
			pid, err := strconv.Atoi(e.Name())
			if err != nil || pid <= 0 || e.IsDir() {
				continue
			}
			if _, ok := seen[pid]; ok || !alive(pid) {
				continue
			}
			seen[pid] = struct{}{}
			pids = append(pids, pid)
		}
	}
	sort.Ints(pids)
	return pids, nil
}

// Open parses the perf data of pid into a session.
func (s *Source) Open(ctx context.Context, pid int) (registry.Session, error) {
	path, err := s.find(pid)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := parseFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: pid %d: %v", registry.ErrMonitor, pid, err)
	}
	return &session{data: data}, nil
}

func (s *Source) find(pid int) (string, error) {
	dirs, err := s.dirs()
	if err != nil {
		return "", fmt.Errorf("%w: %v", registry.ErrMonitor, err)
	}
	name := strconv.Itoa(pid)
	for _, dir := range dirs {
		path := filepath.Join(dir, name)
		if st, err := os.Stat(path); err == nil && st.Mode().IsRegular() {
			return path, nil
		}
	}
	return "", fmt.Errorf("%w: no perf data for pid %d", registry.ErrMonitor, pid)
}

// HasPerfData reports whether any hsperfdata directory exists under tmpDir.
func HasPerfData(tmpDir string) bool {
	dirs, err := (&Source{TmpDir: tmpDir}).dirs()
	return err == nil && len(dirs) > 0
}

type session struct {
	data *PerfData
}

func (s *session) CommandLine() (string, error) {
	cmd, ok := s.data.String(commandKey)
	if !ok {
		return "Unknown", nil
	}
	return cmd, nil
}

// Attachable reports false when the JVM publishes no capabilities.
func (s *session) Attachable() (bool, error) {
	caps, ok := s.data.String(capabilitiesKey)
	if !ok {
		return false, nil
	}
	return strings.HasPrefix(caps, "1"), nil
}

func (s *session) Close() error {
	s.data = nil
	return nil
}
