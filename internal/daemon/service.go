package daemon

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"jvmproc/internal/registry"
)

const defaultRefresh = 10 * time.Second

// service implements the JVMProc gRPC service backed by the registry.
// mu serialises all registry use, which also serialises bootstraps.
type service struct {
	reg     *registry.Registry
	metrics *metrics

	mu   sync.Mutex
	snap registry.Snapshot
}

func newService(reg *registry.Registry, m *metrics) *service {
	return &service{reg: reg, metrics: m, snap: registry.Snapshot{}}
}

func (s *service) Ping(ctx context.Context, _ *emptypb.Empty) (*wrapperspb.StringValue, error) {
	return wrapperspb.String("pong"), nil
}

// List returns the snapshot extended with processes started since the last pass.
func (s *service) List(ctx context.Context, _ *emptypb.Empty) (*structpb.ListValue, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.setSnapshot(s.reg.DiscoverNew(ctx, s.snap), "incremental")
	return encodeProcs(s.snap.List(registry.Filter{})), nil
}

// Refresh replaces the snapshot with a full discovery pass.
func (s *service) Refresh(ctx context.Context, _ *emptypb.Empty) (*structpb.ListValue, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.refreshLocked(ctx)
	return encodeProcs(s.snap.List(registry.Filter{})), nil
}

func (s *service) Lookup(ctx context.Context, req *wrapperspb.Int64Value) (*structpb.Struct, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, err := s.lookupLocked(ctx, req.GetValue())
	if err != nil {
		return nil, err
	}
	return encodeProc(p), nil
}

func (s *service) Connect(ctx context.Context, req *wrapperspb.Int64Value) (*structpb.Struct, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, err := s.lookupLocked(ctx, req.GetValue())
	if err != nil {
		return nil, err
	}
	if p.Manageable() {
		return encodeProc(p), nil
	}
	err = s.reg.EnsureEndpoint(ctx, p)
	s.metrics.bootstrap.WithLabelValues(bootstrapResult(err)).Inc()
	if err != nil {
		return nil, statusError(err)
	}
	return encodeProc(p), nil
}

func (s *service) lookupLocked(ctx context.Context, pid int64) (*registry.Proc, error) {
	if pid <= 0 {
		return nil, status.Error(codes.InvalidArgument, "pid must be positive")
	}
	if p, ok := s.snap[int(pid)]; ok {
		return p, nil
	}
	p, err := s.reg.Lookup(ctx, int(pid))
	if err != nil {
		return nil, statusError(err)
	}
	s.snap[p.PID] = p
	s.metrics.processes.Set(float64(len(s.snap)))
	return p, nil
}

// refreshLocked runs a full pass. A connector address known for a pid whose
// command line did not change carries over to the fresh record.
func (s *service) refreshLocked(ctx context.Context) {
	fresh := s.reg.DiscoverAll(ctx)
	for pid, p := range fresh {
		old, ok := s.snap[pid]
		if !ok || old.Command != p.Command {
			continue
		}
		if addr, ok := old.Address(); ok {
			p.AdoptAddress(addr)
		}
	}
	s.setSnapshot(fresh, "full")
}

func (s *service) setSnapshot(snap registry.Snapshot, kind string) {
	s.snap = snap
	s.metrics.passes.WithLabelValues(kind).Inc()
	s.metrics.processes.Set(float64(len(snap)))
}

// run refreshes the snapshot every interval until ctx is done.
func (s *service) run(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = defaultRefresh
	}
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		s.mu.Lock()
		s.refreshLocked(ctx)
		s.mu.Unlock()

		select {
		case <-ctx.Done():
			return
		case <-t.C:
		}
	}
}

func statusError(err error) error {
	var be *registry.BootstrapError
	switch {
	case errors.Is(err, registry.ErrNotAttachable):
		return status.Error(codes.FailedPrecondition, err.Error())
	case errors.Is(err, registry.ErrProcessNotAttachable):
		return status.Error(codes.NotFound, err.Error())
	case errors.As(err, &be):
		return status.Errorf(codes.Unavailable, "%s failed: %v", be.Step, be.Err)
	case errors.Is(err, context.DeadlineExceeded):
		return status.Error(codes.DeadlineExceeded, err.Error())
	case errors.Is(err, context.Canceled):
		return status.Error(codes.Canceled, err.Error())
	default:
		log.Printf("unexpected registry error: %v", err)
		return status.Error(codes.Internal, err.Error())
	}
}
