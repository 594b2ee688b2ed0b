package registry

import (
	"context"
	"fmt"
	"strconv"
)

// mergeActive adds every attachable JVM not already in target or exclude.
func (r *Registry) mergeActive(ctx context.Context, target, exclude Snapshot) {
	descs, err := r.opts.Attach.List(ctx)
	if err != nil {
		r.degrade(SourceActive, -1, err)
		return
	}

	probes := make([]func(context.Context) outcome, 0, len(descs))
	seen := make(map[int]struct{}, len(descs))
	for _, d := range descs {
		pid, ok := parsePID(d.ID)
		if !ok {
			// only numeric vm ids take part in the registry
			continue
		}
		if target.has(pid) || exclude.has(pid) {
			continue
		}
		if _, dup := seen[pid]; dup {
			continue
		}
		seen[pid] = struct{}{}
		name := d.DisplayName
		probes = append(probes, degradeOnFailure(pid, r.activeProbe(pid, d), func() *Proc {
			return NewProc(pid, name, false, "")
		}))
	}

	r.merge(target, SourceActive, r.runProbes(ctx, probes))
}

// activeProbe attaches to read a connector address published by an agent
// that is already running. A failed property read still yields an attachable record.
func (r *Registry) activeProbe(pid int, d Descriptor) probe {
	return func(ctx context.Context) (*Proc, error) {
		var (
			addr     string
			propsErr error
		)
		err := r.withHandle(ctx, d.ID, func(h Handle) error {
			props, err := r.opts.Attach.AgentProperties(ctx, h)
			if err != nil {
				propsErr = fmt.Errorf("read agent properties: %w", err)
				return nil
			}
			addr = props[ConnectorAddressKey]
			return nil
		})
		if err != nil {
			return nil, err
		}
		return NewProc(pid, d.DisplayName, true, addr), propsErr
	}
}

func parsePID(id string) (int, bool) {
	pid, err := strconv.Atoi(id)
	if err != nil || pid < 0 {
		return 0, false
	}
	return pid, true
}
