//go:build !linux

package attach

import (
	"context"
	"fmt"
	"runtime"

	"jvmproc/internal/registry"
)

func (t *Transport) attach(context.Context, string) (session, error) {
	return nil, fmt.Errorf("%w on %s", registry.ErrAttachUnsupported, runtime.GOOS)
}
