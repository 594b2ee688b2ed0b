package registry

import (
	"context"
	"fmt"
)

// mergePassive adds every JVM known to the passive source that is not in exclude.
func (r *Registry) mergePassive(ctx context.Context, target, exclude Snapshot) {
	if r.opts.Profile == AlternateVendor || r.opts.Passive == nil {
		return
	}

	ids, err := r.opts.Passive.ActiveIDs(ctx)
	if err != nil {
		r.degrade(SourcePassive, -1, err)
		return
	}

	probes := make([]func(context.Context) outcome, 0, len(ids))
	seen := make(map[int]struct{}, len(ids))
	for _, pid := range ids {
		if pid < 0 || exclude.has(pid) || target.has(pid) {
			continue
		}
		if _, dup := seen[pid]; dup {
			continue
		}
		seen[pid] = struct{}{}
		probes = append(probes, degradeOnFailure(pid, r.passiveProbe(pid), func() *Proc {
			return fallbackProc(pid)
		}))
	}

	r.merge(target, SourcePassive, r.runProbes(ctx, probes))
}

func (r *Registry) passiveProbe(pid int) probe {
	return func(ctx context.Context) (*Proc, error) {
		sess, err := r.opts.Passive.Open(ctx, pid)
		if err != nil {
			return nil, err
		}
		defer sess.Close()

		cmd, err := sess.CommandLine()
		if err != nil {
			return nil, fmt.Errorf("read command line: %w", err)
		}
		attachable, err := sess.Attachable()
		if err != nil {
			// keep the label, drop only the capability
			return NewProc(pid, cmd, false, ""), fmt.Errorf("read capabilities: %w", err)
		}
		return NewProc(pid, cmd, attachable, ""), nil
	}
}
