package registry

import (
	"context"
	"errors"
	"sync"
)

type fakeHandle string

func (h fakeHandle) ID() string { return string(h) }

type fakeVM struct {
	display    string
	attachErr  error
	agentProps map[string]string
	agentErr   error
	sysProps   map[string]string
	sysErr     error
	loadErr    error
	startErr   error
	// published is copied into the agent (and system) properties once an agent is started.
	published string
}

type fakeTransport struct {
	mu      sync.Mutex
	order   []string
	vms     map[string]*fakeVM
	listErr error

	attaches int
	detaches int
	loads    []string
	starts   int
}

func newFakeTransport() *fakeTransport {
	return &fakeTransport{vms: map[string]*fakeVM{}}
}

func (f *fakeTransport) add(id string, vm *fakeVM) {
	f.order = append(f.order, id)
	f.vms[id] = vm
}

func (f *fakeTransport) List(context.Context) ([]Descriptor, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	out := make([]Descriptor, 0, len(f.order))
	for _, id := range f.order {
		out = append(out, Descriptor{ID: id, DisplayName: f.vms[id].display})
	}
	return out, nil
}

func (f *fakeTransport) vm(h Handle) *fakeVM {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.vms[h.ID()]
}

func (f *fakeTransport) Attach(_ context.Context, id string) (Handle, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.attaches++
	vm, ok := f.vms[id]
	if !ok {
		return nil, errors.New("no such process")
	}
	if vm.attachErr != nil {
		return nil, vm.attachErr
	}
	return fakeHandle(id), nil
}

func (f *fakeTransport) AgentProperties(_ context.Context, h Handle) (map[string]string, error) {
	vm := f.vm(h)
	if vm.agentErr != nil {
		return nil, vm.agentErr
	}
	return vm.agentProps, nil
}

func (f *fakeTransport) SystemProperties(_ context.Context, h Handle) (map[string]string, error) {
	vm := f.vm(h)
	if vm.sysErr != nil {
		return nil, vm.sysErr
	}
	return vm.sysProps, nil
}

func (f *fakeTransport) publish(vm *fakeVM) {
	if vm.published == "" {
		return
	}
	if vm.agentProps == nil {
		vm.agentProps = map[string]string{}
	}
	if vm.sysProps == nil {
		vm.sysProps = map[string]string{}
	}
	vm.agentProps[ConnectorAddressKey] = vm.published
	vm.sysProps[ConnectorAddressKey] = vm.published
}

func (f *fakeTransport) LoadAgent(_ context.Context, h Handle, path, options string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.loads = append(f.loads, path+"="+options)
	vm := f.vms[h.ID()]
	if vm.loadErr != nil {
		return vm.loadErr
	}
	f.publish(vm)
	return nil
}

func (f *fakeTransport) StartLocalManagementAgent(_ context.Context, h Handle) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.starts++
	vm := f.vms[h.ID()]
	if vm.startErr != nil {
		return vm.startErr
	}
	f.publish(vm)
	return nil
}

func (f *fakeTransport) Detach(Handle) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.detaches++
	return nil
}

type fakeSession struct {
	cmd        string
	cmdErr     error
	attachable bool
	capErr     error
}

func (s *fakeSession) CommandLine() (string, error) { return s.cmd, s.cmdErr }
func (s *fakeSession) Attachable() (bool, error)    { return s.attachable, s.capErr }
func (s *fakeSession) Close() error                 { return nil }

type fakePassive struct {
	ids     []int
	listErr error
	open    map[int]*fakeSession
}

func (f *fakePassive) ActiveIDs(context.Context) ([]int, error) {
	return f.ids, f.listErr
}

func (f *fakePassive) Open(_ context.Context, pid int) (Session, error) {
	s, ok := f.open[pid]
	if !ok {
		return nil, ErrMonitor
	}
	return s, nil
}

func newTestRegistry(t interface{ Fatalf(string, ...any) }, opts Options) *Registry {
	r, err := New(opts)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return r
}
