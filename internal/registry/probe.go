package registry

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// probe inspects a single process. It may return a usable record together with
// an error when only part of the inspection failed.
type probe func(ctx context.Context) (*Proc, error)

// outcome is what a degrading probe produces: always a record, plus the
// absorbed failure, if any, for the caller to report.
type outcome struct {
	pid  int
	proc *Proc
	err  error
}

// degradeOnFailure wraps p so that it never fails: when p yields no record the
// fallback record is used instead.
func degradeOnFailure(pid int, p probe, fallback func() *Proc) func(context.Context) outcome {
	return func(ctx context.Context) outcome {
		proc, err := p(ctx)
		if proc == nil {
			proc = fallback()
		}
		return outcome{pid: pid, proc: proc, err: err}
	}
}

// runProbes runs the probes, at most Concurrency at a time, and returns their
// outcomes in input order. Merging the outcomes is left to the caller.
func (r *Registry) runProbes(ctx context.Context, probes []func(context.Context) outcome) []outcome {
	out := make([]outcome, len(probes))
	if r.opts.Concurrency < 2 || len(probes) < 2 {
		for i, p := range probes {
			out[i] = r.timed(ctx, p)
		}
		return out
	}

	var g errgroup.Group
	g.SetLimit(r.opts.Concurrency)
	for i, p := range probes {
		g.Go(func() error {
			out[i] = r.timed(ctx, p)
			return nil
		})
	}
	_ = g.Wait()
	return out
}

func (r *Registry) timed(ctx context.Context, p func(context.Context) outcome) outcome {
	if r.opts.ProbeTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.opts.ProbeTimeout)
		defer cancel()
	}
	return p(ctx)
}

// merge inserts outcomes into target in order, keeping the first record per pid.
func (r *Registry) merge(target Snapshot, src Source, outcomes []outcome) {
	for _, o := range outcomes {
		if o.err != nil {
			r.degrade(src, o.pid, o.err)
		}
		if target.has(o.pid) {
			continue
		}
		target[o.pid] = o.proc
	}
}
