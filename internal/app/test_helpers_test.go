package app

import (
	"context"
	"errors"
	"io"
	"testing"

	"google.golang.org/grpc"

	"jvmproc/internal/daemon"
	"jvmproc/internal/registry"
)

type fakeConn struct {
	invoke func(ctx context.Context, method string, args interface{}, reply interface{}, opts ...grpc.CallOption) error
}

func (f *fakeConn) Invoke(ctx context.Context, method string, args interface{}, reply interface{}, opts ...grpc.CallOption) error {
	if f.invoke != nil {
		return f.invoke(ctx, method, args, reply, opts...)
	}
	return nil
}

func (f *fakeConn) NewStream(ctx context.Context, desc *grpc.StreamDesc, method string, opts ...grpc.CallOption) (grpc.ClientStream, error) {
	return nil, errors.New("not implemented")
}

func (f *fakeConn) Close() error { return nil }

func stubDaemon(t *testing.T, running bool, dial func(context.Context) (daemon.JVMProcClient, io.Closer, error)) {
	t.Helper()
	resetDaemonDeps()
	daemonIsRunning = func() bool { return running }
	if dial == nil {
		dial = func(context.Context) (daemon.JVMProcClient, io.Closer, error) {
			return nil, nil, errors.New("dial not stubbed")
		}
	}
	dialDaemonClient = dial
	t.Cleanup(resetDaemonDeps)
}

// stubInvoke answers every RPC with fn.
func stubInvoke(t *testing.T, fn func(method string, args, reply interface{}) error) {
	t.Helper()
	stubDaemon(t, true, func(context.Context) (daemon.JVMProcClient, io.Closer, error) {
		conn := &fakeConn{
			invoke: func(ctx context.Context, method string, args interface{}, reply interface{}, opts ...grpc.CallOption) error {
				return fn(method, args, reply)
			},
		}
		return daemon.NewJVMProcClient(conn), conn, nil
	})
}

type fakeHandle string

func (h fakeHandle) ID() string { return string(h) }

// fakeTransport serves a fixed set of JVMs for local mode.
type fakeTransport struct {
	agent   map[string]map[string]string
	started []string
}

func (f *fakeTransport) List(context.Context) ([]registry.Descriptor, error) {
	var out []registry.Descriptor
	for id := range f.agent {
		out = append(out, registry.Descriptor{ID: id, DisplayName: "Main" + id})
	}
	return out, nil
}

func (f *fakeTransport) Attach(_ context.Context, id string) (registry.Handle, error) {
	if _, ok := f.agent[id]; !ok {
		return nil, errors.New("no such process")
	}
	return fakeHandle(id), nil
}

func (f *fakeTransport) AgentProperties(_ context.Context, h registry.Handle) (map[string]string, error) {
	return f.agent[h.ID()], nil
}

func (f *fakeTransport) SystemProperties(context.Context, registry.Handle) (map[string]string, error) {
	return map[string]string{"java.version": "21"}, nil
}

func (f *fakeTransport) LoadAgent(context.Context, registry.Handle, string, string) error {
	return errors.New("unexpected load")
}

func (f *fakeTransport) StartLocalManagementAgent(_ context.Context, h registry.Handle) error {
	f.started = append(f.started, h.ID())
	f.agent[h.ID()][registry.ConnectorAddressKey] = "local-" + h.ID()
	return nil
}

func (f *fakeTransport) Detach(registry.Handle) error { return nil }

func stubLocal(t *testing.T, tr *fakeTransport) {
	t.Helper()
	orig := newLocalRegistry
	newLocalRegistry = func(string) (*registry.Registry, error) {
		return registry.New(registry.Options{Attach: tr})
	}
	t.Cleanup(func() { newLocalRegistry = orig })
}
