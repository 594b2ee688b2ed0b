package app

import (
	"context"
	"time"

	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"

	"jvmproc/internal/daemon"
	"jvmproc/internal/registry"
)

// ListParams defines filters and timeout.
type ListParams struct {
	Filters ListFilters
	Timeout time.Duration
	// Refresh asks the daemon for a full discovery pass instead of an incremental one.
	Refresh bool
	// Local discovers in-process instead of asking the daemon.
	Local bool
}

// List returns the JVMs matching the filters, sorted by pid.
func (a *App) List(ctx context.Context, params ListParams) ([]Process, error) {
	filter, err := params.Filters.build()
	if err != nil {
		return nil, err
	}

	var snap registry.Snapshot
	if params.Local {
		snap, err = a.discoverLocal(ctx, params.Timeout)
	} else {
		snap, err = a.discoverRemote(ctx, params)
	}
	if err != nil {
		return nil, err
	}

	recs := snap.List(filter)
	procs := make([]Process, 0, len(recs))
	for _, p := range recs {
		procs = append(procs, processFromRecord(p))
	}
	return procs, nil
}

func (a *App) discoverLocal(ctx context.Context, timeout time.Duration) (registry.Snapshot, error) {
	reg, err := newLocalRegistry(a.cfgPath)
	if err != nil {
		return nil, err
	}
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	return reg.DiscoverAll(ctx), nil
}

func (a *App) discoverRemote(ctx context.Context, params ListParams) (registry.Snapshot, error) {
	snap := registry.Snapshot{}
	err := a.withClient(ctx, params.Timeout, func(ctx context.Context, client daemon.JVMProcClient) error {
		call, op := client.List, "list"
		if params.Refresh {
			call, op = client.Refresh, "refresh"
		}
		resp, err := call(ctx, &emptypb.Empty{})
		if err != nil {
			return rpcError(op, err)
		}
		return decodeList(resp, snap)
	})
	return snap, err
}

func decodeList(resp *structpb.ListValue, into registry.Snapshot) error {
	for _, v := range resp.GetValues() {
		p, err := recordFromStruct(v.GetStructValue())
		if err != nil {
			return err
		}
		into[p.PID] = p
	}
	return nil
}
