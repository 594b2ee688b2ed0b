//go:build linux

package attach

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"jvmproc/internal/registry"
)

func (t *Transport) attach(ctx context.Context, id string) (session, error) {
	if t.opts.Profile == registry.AlternateVendor {
		return t.attachJ9(ctx, id)
	}
	pid, err := strconv.Atoi(id)
	if err != nil || pid <= 0 {
		return nil, fmt.Errorf("%w: vm id %q is not a pid", registry.ErrAttachUnsupported, id)
	}
	return t.attachHotSpot(ctx, pid)
}

// tmpDirFor resolves the attach directory as the target sees it, which
// differs from ours when the JVM runs in another mount namespace.
func (t *Transport) tmpDirFor(pid int) string {
	p := filepath.Join("/proc", strconv.Itoa(pid), "root", t.opts.TmpDir)
	if _, err := os.Stat(p); err == nil {
		return p
	}
	return t.opts.TmpDir
}

func readStatus(pid int) (procStatus, error) {
	f, err := os.Open(filepath.Join("/proc", strconv.Itoa(pid), "status"))
	if err != nil {
		return procStatus{}, err
	}
	defer f.Close()
	return parseStatus(f, pid)
}
