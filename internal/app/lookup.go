package app

import (
	"context"
	"time"

	"google.golang.org/protobuf/types/known/wrapperspb"

	"jvmproc/internal/daemon"
)

// LookupParams selects a single JVM.
type LookupParams struct {
	PID     int
	Timeout time.Duration
	Local   bool
}

// Lookup returns the record for one pid, attaching directly when discovery
// does not report it.
func (a *App) Lookup(ctx context.Context, params LookupParams) (Process, error) {
	if err := validPID(params.PID); err != nil {
		return Process{}, err
	}

	if params.Local {
		reg, err := newLocalRegistry(a.cfgPath)
		if err != nil {
			return Process{}, err
		}
		ctx, cancel := localContext(ctx, params.Timeout)
		defer cancel()
		p, err := reg.Lookup(ctx, params.PID)
		if err != nil {
			return Process{}, err
		}
		return processFromRecord(p), nil
	}

	var proc Process
	err := a.withClient(ctx, params.Timeout, func(ctx context.Context, client daemon.JVMProcClient) error {
		resp, err := client.Lookup(ctx, wrapperspb.Int64(int64(params.PID)))
		if err != nil {
			return rpcError("lookup", err)
		}
		proc, err = processFromStruct(resp)
		return err
	})
	return proc, err
}

func localContext(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout > 0 {
		return context.WithTimeout(ctx, timeout)
	}
	return context.WithCancel(ctx)
}
