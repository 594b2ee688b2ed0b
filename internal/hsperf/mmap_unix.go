//go:build unix

package hsperf

import (
	"fmt"
	"os"

	"golang.org/x/sys/unix"
)

// parseFile maps the file read-only for the duration of the parse.
func parseFile(path string) (*PerfData, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	st, err := f.Stat()
	if err != nil {
		return nil, err
	}
	size := int(st.Size())
	if size == 0 {
		return nil, errTruncated
	}

	buf, err := unix.Mmap(int(f.Fd()), 0, size, unix.PROT_READ, unix.MAP_SHARED)
	if err != nil {
		return nil, fmt.Errorf("mmap %s: %w", path, err)
	}
	defer unix.Munmap(buf)

	return Parse(buf)
}

func alive(pid int) bool {
	return unix.Kill(pid, 0) != unix.ESRCH
}
