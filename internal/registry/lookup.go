package registry

import (
	"context"
	"fmt"
	"strconv"
)

// Lookup returns the record for pid, running a full discovery pass first and
// falling back to a direct attach when discovery does not report the process.
//
// The pid is not pinned between the two steps, so a process that exits and
// has its pid reused in between is reported as the new process.
func (r *Registry) Lookup(ctx context.Context, pid int) (*Proc, error) {
	if p, ok := r.DiscoverAll(ctx)[pid]; ok {
		return p, nil
	}

	h, err := r.opts.Attach.Attach(ctx, strconv.Itoa(pid))
	if err != nil {
		return nil, fmt.Errorf("%w: pid %d: %w", ErrProcessNotAttachable, pid, err)
	}
	proc, err := r.Delegate(ctx, h)
	if err != nil {
		return nil, fmt.Errorf("%w: pid %d: %w", ErrProcessNotAttachable, pid, err)
	}
	return proc, nil
}

// Delegate builds a record for a JVM the caller has already attached to,
// then detaches. The handle must not be used afterwards.
func (r *Registry) Delegate(ctx context.Context, h Handle) (*Proc, error) {
	defer r.opts.Attach.Detach(h)

	pid, ok := parsePID(h.ID())
	if !ok {
		return nil, fmt.Errorf("handle id %q is not a pid", h.ID())
	}
	return r.describe(ctx, pid, h)
}

// describe reads the connector address over h. The pid doubles as the label
// because an attached process exposes no command line of its own.
func (r *Registry) describe(ctx context.Context, pid int, h Handle) (*Proc, error) {
	props, err := r.opts.Attach.AgentProperties(ctx, h)
	if err != nil {
		return nil, fmt.Errorf("read agent properties: %w", err)
	}
	return NewProc(pid, strconv.Itoa(pid), true, props[ConnectorAddressKey]), nil
}
