package tui

import (
	"context"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"jvmproc/internal/app"
)

type stubController struct {
	procs     []app.Process
	connected []int
	listCalls []app.ListParams
}

func (s *stubController) Status() (app.DaemonStatus, error) {
	return app.DaemonStatus{Running: true, PID: 1}, nil
}

func (s *stubController) StartDaemon() (*app.DaemonHandle, error) { return nil, nil }

func (s *stubController) List(_ context.Context, params app.ListParams) ([]app.Process, error) {
	s.listCalls = append(s.listCalls, params)
	return s.procs, nil
}

func (s *stubController) Connect(_ context.Context, params app.ConnectParams) (app.Process, error) {
	s.connected = append(s.connected, params.PID)
	p := s.procs[0]
	p.Address = "service:jmx:local"
	return p, nil
}

func TestModelConnectUpdatesCurrentProcess(t *testing.T) {
	ctrl := &stubController{procs: []app.Process{{PID: 10, Display: "Main", Command: "Main", Attachable: true}}}
	m := New(ctrl)
	m.Update(processesLoadedMsg{processes: ctrl.procs})

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if cmd == nil {
		t.Fatalf("expected connect command")
	}
	m.Update(cmd())

	if len(ctrl.connected) != 1 || ctrl.connected[0] != 10 {
		t.Fatalf("unexpected connect calls %v", ctrl.connected)
	}
	if cur := m.currentProcess(); cur == nil || cur.Address != "service:jmx:local" {
		t.Fatalf("current process not updated: %+v", cur)
	}

	// already manageable: nothing to do
	if _, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter}); cmd != nil {
		if _, ok := cmd().(connectedMsg); ok {
			t.Fatalf("connect issued for manageable process")
		}
	}
}

func TestModelFullRefreshAndFilterToggle(t *testing.T) {
	ctrl := &stubController{}
	m := New(ctrl)

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'R'}})
	cmd()
	_, cmd = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'a'}})
	cmd()

	if len(ctrl.listCalls) != 2 {
		t.Fatalf("expected 2 list calls, got %d", len(ctrl.listCalls))
	}
	if !ctrl.listCalls[0].Refresh || ctrl.listCalls[0].Filters.AttachableOnly {
		t.Fatalf("unexpected first call %+v", ctrl.listCalls[0])
	}
	if ctrl.listCalls[1].Refresh || !ctrl.listCalls[1].Filters.AttachableOnly {
		t.Fatalf("unexpected second call %+v", ctrl.listCalls[1])
	}
}
