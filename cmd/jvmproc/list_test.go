package main

import (
	"context"
	"errors"
	"testing"

	"jvmproc/internal/app"
)

func TestListPrintsProcesses(t *testing.T) {
	var got app.ListParams
	withController(t, &stubController{
		listFunc: func(ctx context.Context, params app.ListParams) ([]app.Process, error) {
			got = params
			return []app.Process{
				{PID: 10, Display: "Main", Attachable: true},
				{PID: 20, Display: "app.jar", Attachable: true, Address: "service:jmx:rmi://x"},
			}, nil
		},
	})
	buf := withOutput(t, cmdList)

	old := listAttachableOnly
	listAttachableOnly = true
	t.Cleanup(func() { listAttachableOnly = old })

	if err := cmdList.RunE(cmdList, nil); err != nil {
		t.Fatalf("RunE error: %v", err)
	}
	if !got.Filters.AttachableOnly {
		t.Fatalf("attachable filter not passed: %+v", got)
	}
	want := "pid=10 attachable=true name=Main\n" +
		"pid=20 attachable=true name=app.jar address=service:jmx:rmi://x\n"
	if buf.String() != want {
		t.Fatalf("unexpected output %q", buf.String())
	}
}

func TestListEmpty(t *testing.T) {
	withController(t, &stubController{
		listFunc: func(context.Context, app.ListParams) ([]app.Process, error) { return nil, nil },
	})
	buf := withOutput(t, cmdList)

	if err := cmdList.RunE(cmdList, nil); err != nil {
		t.Fatalf("RunE error: %v", err)
	}
	if buf.String() != "No JVMs found\n" {
		t.Fatalf("unexpected output %q", buf.String())
	}
}

func TestConnectPrintsAddress(t *testing.T) {
	withController(t, &stubController{
		connectFunc: func(ctx context.Context, params app.ConnectParams) (app.Process, error) {
			if params.PID != 42 {
				t.Fatalf("unexpected pid %d", params.PID)
			}
			return app.Process{PID: 42, Address: "service:jmx:rmi://y"}, nil
		},
	})
	buf := withOutput(t, cmdConnect)

	if err := cmdConnect.RunE(cmdConnect, []string{"42"}); err != nil {
		t.Fatalf("RunE error: %v", err)
	}
	if buf.String() != "service:jmx:rmi://y\n" {
		t.Fatalf("unexpected output %q", buf.String())
	}
}

func TestConnectRejectsBadPID(t *testing.T) {
	withController(t, &stubController{
		connectFunc: func(context.Context, app.ConnectParams) (app.Process, error) {
			return app.Process{}, errors.New("should not be called")
		},
	})
	if err := cmdConnect.RunE(cmdConnect, []string{"abc"}); err == nil || err.Error() != `invalid pid "abc"` {
		t.Fatalf("unexpected error %v", err)
	}
}
