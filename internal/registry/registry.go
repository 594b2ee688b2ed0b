package registry

import (
	"context"
	"errors"
	"time"
)

// Source names the discovery mechanism a degraded record came from.
type Source string

const (
	SourcePassive Source = "passive"
	SourceActive  Source = "active"
)

// Degraded describes a discovery failure that was absorbed rather than returned.
// PID is -1 when the whole source listing failed.
type Degraded struct {
	Source Source
	PID    int
	Err    error
}

// Options configures a Registry.
type Options struct {
	Profile Profile
	// Passive may be nil when no monitoring source is available on this host.
	Passive PassiveSource
	Attach  AttachTransport

	// ProbeTimeout bounds each per-process probe. Zero means no bound.
	ProbeTimeout time.Duration
	// Concurrency is the number of processes probed in parallel. Values below 2 probe serially.
	Concurrency int

	// OnDegrade, if set, is called from the discovering goroutine for every absorbed failure.
	OnDegrade func(Degraded)
}

// Registry discovers local JVMs and bootstraps their management agents.
// It keeps no state between calls; snapshots belong to the caller.
type Registry struct {
	opts Options
}

// New returns a registry over the given collaborators.
func New(opts Options) (*Registry, error) {
	if opts.Attach == nil {
		return nil, errors.New("attach transport is required")
	}
	if opts.Concurrency < 1 {
		opts.Concurrency = 1
	}
	return &Registry{opts: opts}, nil
}

// Profile returns the transport profile the registry was built with.
func (r *Registry) Profile() Profile {
	return r.opts.Profile
}

// DiscoverAll runs a full discovery pass.
func (r *Registry) DiscoverAll(ctx context.Context) Snapshot {
	snap := make(Snapshot)
	r.mergePassive(ctx, snap, nil)
	r.mergeActive(ctx, snap, nil)
	return snap
}

// DiscoverNew returns existing plus every process not already in it.
// Records of existing are shared, never modified.
func (r *Registry) DiscoverNew(ctx context.Context, existing Snapshot) Snapshot {
	snap := make(Snapshot, len(existing))
	for pid, p := range existing {
		snap[pid] = p
	}
	r.mergePassive(ctx, snap, existing)
	r.mergeActive(ctx, snap, existing)
	return snap
}

func (r *Registry) degrade(src Source, pid int, err error) {
	if r.opts.OnDegrade != nil {
		r.opts.OnDegrade(Degraded{Source: src, PID: pid, Err: err})
	}
}

// withHandle attaches to id, runs fn and always detaches.
func (r *Registry) withHandle(ctx context.Context, id string, fn func(Handle) error) error {
	h, err := r.opts.Attach.Attach(ctx, id)
	if err != nil {
		return err
	}
	defer r.opts.Attach.Detach(h)
	return fn(h)
}
