//go:build linux && !(amd64 || arm64)

package attach

import (
	"fmt"
	"runtime"

	"jvmproc/internal/registry"
)

func notify(_ string, _, count int) error {
	if count == 0 {
		return nil
	}
	return fmt.Errorf("%w: attach semaphore on %s", registry.ErrAttachUnsupported, runtime.GOARCH)
}
