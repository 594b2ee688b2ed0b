package registry

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestEnsureEndpointModernJVM(t *testing.T) {
	transport := newFakeTransport()
	transport.vms["1"] = &fakeVM{
		sysProps:  map[string]string{"java.version": "17.0.2", "java.home": "/jdk"},
		published: "service:jmx:local",
	}
	r := newTestRegistry(t, Options{Attach: transport})
	p := NewProc(1, "Main", true, "")

	if err := r.EnsureEndpoint(context.Background(), p); err != nil {
		t.Fatalf("EnsureEndpoint: %v", err)
	}
	if addr, _ := p.Address(); addr != "service:jmx:local" {
		t.Fatalf("unexpected address %q", addr)
	}
	if transport.starts != 1 || len(transport.loads) != 0 {
		t.Fatalf("expected built-in agent start, got starts=%d loads=%v", transport.starts, transport.loads)
	}

	// second call is a no-op
	if err := r.EnsureEndpoint(context.Background(), p); err != nil {
		t.Fatalf("EnsureEndpoint again: %v", err)
	}
	if transport.attaches != 1 {
		t.Fatalf("expected no further attach, got %d", transport.attaches)
	}
}

func TestEnsureEndpointLegacyJVMLoadsJar(t *testing.T) {
	home := t.TempDir()
	lib := filepath.Join(home, "lib")
	if err := os.MkdirAll(lib, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(lib, agentJar), nil, 0o644); err != nil {
		t.Fatalf("write jar: %v", err)
	}

	transport := newFakeTransport()
	transport.vms["2"] = &fakeVM{
		sysProps:  map[string]string{"java.version": "1.7.0_80", "java.home": home},
		published: "addr",
	}
	r := newTestRegistry(t, Options{Attach: transport})
	p := NewProc(2, "Main", true, "")

	if err := r.EnsureEndpoint(context.Background(), p); err != nil {
		t.Fatalf("EnsureEndpoint: %v", err)
	}
	if len(transport.loads) != 1 || !strings.HasSuffix(transport.loads[0], agentJar+"="+agentOptions) {
		t.Fatalf("unexpected loads %v", transport.loads)
	}
	if !p.Manageable() {
		t.Fatalf("expected address to be recorded")
	}
}

func TestEnsureEndpointMissingArtifact(t *testing.T) {
	transport := newFakeTransport()
	transport.vms["3"] = &fakeVM{sysProps: map[string]string{"java.version": "1.6.0", "java.home": t.TempDir()}}
	r := newTestRegistry(t, Options{Attach: transport})
	p := NewProc(3, "Main", true, "")

	err := r.EnsureEndpoint(context.Background(), p)
	var be *BootstrapError
	if !errors.As(err, &be) || be.Step != StepArtifact {
		t.Fatalf("expected artifact failure, got %v", err)
	}
	if p.Manageable() || transport.detaches != 1 {
		t.Fatalf("record modified or handle leaked")
	}
}

func TestEnsureEndpointFailureSteps(t *testing.T) {
	cases := []struct {
		name string
		vm   *fakeVM
		step Step
	}{
		{"attach", &fakeVM{attachErr: ErrAttachAccessDenied}, StepAttach},
		{"version", &fakeVM{sysProps: map[string]string{"java.version": "unknown"}}, StepAttach},
		{"start", &fakeVM{sysProps: map[string]string{"java.version": "11"}, startErr: ErrAgentInit}, StepInit},
		{"no address", &fakeVM{sysProps: map[string]string{"java.version": "21"}}, StepInit},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			transport := newFakeTransport()
			transport.vms["4"] = tc.vm
			r := newTestRegistry(t, Options{Attach: transport})
			p := NewProc(4, "Main", true, "")

			err := r.EnsureEndpoint(context.Background(), p)
			var be *BootstrapError
			if !errors.As(err, &be) || be.Step != tc.step || be.PID != 4 {
				t.Fatalf("expected %s failure, got %v", tc.step, err)
			}
			if p.Manageable() {
				t.Fatalf("record should stay unmanageable")
			}
		})
	}
}

func TestEnsureEndpointLoadFailure(t *testing.T) {
	home := t.TempDir()
	jre := filepath.Join(home, "jre", "lib")
	if err := os.MkdirAll(jre, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(jre, agentJar), nil, 0o644); err != nil {
		t.Fatalf("write jar: %v", err)
	}
	transport := newFakeTransport()
	transport.vms["6"] = &fakeVM{
		sysProps: map[string]string{"java.version": "1.5.0", "java.home": home},
		loadErr:  ErrAgentLoad,
	}
	r := newTestRegistry(t, Options{Attach: transport})

	err := r.EnsureEndpoint(context.Background(), NewProc(6, "Main", true, ""))
	var be *BootstrapError
	if !errors.As(err, &be) || be.Step != StepLoad || !errors.Is(err, ErrAgentLoad) {
		t.Fatalf("expected load failure, got %v", err)
	}
}

func TestEnsureEndpointNotAttachable(t *testing.T) {
	transport := newFakeTransport()
	r := newTestRegistry(t, Options{Attach: transport})

	err := r.EnsureEndpoint(context.Background(), NewProc(8, "Main", false, ""))
	if !errors.Is(err, ErrNotAttachable) {
		t.Fatalf("expected ErrNotAttachable, got %v", err)
	}
	if transport.attaches != 0 {
		t.Fatalf("transport contacted for non-attachable record")
	}
}

func TestEnsureEndpointAlternateVendorReadsSystemProperties(t *testing.T) {
	transport := newFakeTransport()
	vm := &fakeVM{sysProps: map[string]string{"java.version": "11.0.20"}, published: "j9-addr"}
	transport.vms["9"] = vm
	r := newTestRegistry(t, Options{Profile: AlternateVendor, Attach: transport})
	p := NewProc(9, "Main", true, "")

	if err := r.EnsureEndpoint(context.Background(), p); err != nil {
		t.Fatalf("EnsureEndpoint: %v", err)
	}
	if addr, _ := p.Address(); addr != "j9-addr" {
		t.Fatalf("unexpected address %q", addr)
	}
}
