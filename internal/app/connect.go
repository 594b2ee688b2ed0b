package app

import (
	"context"
	"time"

	"google.golang.org/protobuf/types/known/wrapperspb"

	"jvmproc/internal/daemon"
)

// ConnectParams selects the JVM whose management agent should be started.
type ConnectParams struct {
	PID     int
	Timeout time.Duration
	Local   bool
}

// Connect makes sure the JMX management agent runs in the JVM and returns
// the record with its connector address.
func (a *App) Connect(ctx context.Context, params ConnectParams) (Process, error) {
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
		if err := reg.EnsureEndpoint(ctx, p); err != nil {
			return Process{}, err
		}
		return processFromRecord(p), nil
	}

	var proc Process
	err := a.withClient(ctx, params.Timeout, func(ctx context.Context, client daemon.JVMProcClient) error {
		resp, err := client.Connect(ctx, wrapperspb.Int64(int64(params.PID)))
		if err != nil {
			return rpcError("connect", err)
		}
		proc, err = processFromStruct(resp)
		return err
	})
	return proc, err
}
