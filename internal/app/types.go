package app

import (
	"errors"
	"fmt"

	"google.golang.org/protobuf/types/known/structpb"

	"jvmproc/internal/daemon"
	"jvmproc/internal/registry"
)

// Process mirrors a registry record.
type Process struct {
	PID        int
	Display    string
	Command    string
	Attachable bool
	// Address is the local JMX connector address, empty until bootstrapped.
	Address string
}

// Manageable reports whether a connector address is known.
func (p Process) Manageable() bool {
	return p.Address != ""
}

func processFromRecord(p *registry.Proc) Process {
	addr, _ := p.Address()
	return Process{
		PID:        p.PID,
		Display:    p.Display,
		Command:    p.Command,
		Attachable: p.Attachable,
		Address:    addr,
	}
}

// recordFromStruct rebuilds a registry record from its wire form.
func recordFromStruct(s *structpb.Struct) (*registry.Proc, error) {
	f := s.GetFields()
	pid, ok := f[daemon.FieldPID]
	if !ok {
		return nil, errors.New("record without pid")
	}
	return registry.NewProc(
		int(pid.GetNumberValue()),
		f[daemon.FieldCommand].GetStringValue(),
		f[daemon.FieldAttachable].GetBoolValue(),
		f[daemon.FieldAddress].GetStringValue(),
	), nil
}

func processFromStruct(s *structpb.Struct) (Process, error) {
	p, err := recordFromStruct(s)
	if err != nil {
		return Process{}, err
	}
	out := processFromRecord(p)
	if d := s.GetFields()[daemon.FieldDisplay].GetStringValue(); d != "" {
		out.Display = d
	}
	return out, nil
}

// ListFilters aggregates selectors shared across commands.
type ListFilters struct {
	PIDs           []int
	AttachableOnly bool
	ManageableOnly bool
	TextSearch     string
}

func (f ListFilters) build() (registry.Filter, error) {
	for _, pid := range f.PIDs {
		if pid <= 0 {
			return registry.Filter{}, fmt.Errorf("invalid pid filter: %d", pid)
		}
	}
	return registry.Filter{
		PIDs:           append([]int(nil), f.PIDs...),
		AttachableOnly: f.AttachableOnly,
		ManageableOnly: f.ManageableOnly,
		TextSearch:     f.TextSearch,
	}, nil
}

func validPID(pid int) error {
	if pid <= 0 {
		return fmt.Errorf("invalid pid: %d", pid)
	}
	return nil
}
