package registry

import (
	"errors"
	"fmt"
)

var (
	// ErrMonitor marks a failure of the passive monitoring source.
	ErrMonitor = errors.New("monitor error")
	// ErrAttachUnsupported means the target declined dynamic attach.
	ErrAttachUnsupported = errors.New("attach not supported")
	// ErrAttachAccessDenied means the target runs under a principal we cannot attach to.
	ErrAttachAccessDenied = errors.New("attach access denied")
	// ErrAgentLoad means the agent library could not be loaded into the target.
	ErrAgentLoad = errors.New("agent load failed")
	// ErrAgentInit means the agent loaded but its initialization failed.
	ErrAgentInit = errors.New("agent initialization failed")
	// ErrNotAttachable is returned by EnsureEndpoint for records that cannot be attached.
	ErrNotAttachable = errors.New("process does not support dynamic attach")
	// ErrProcessNotAttachable is returned by Lookup when a process is neither
	// discoverable nor reachable by a direct attach.
	ErrProcessNotAttachable = errors.New("process not attachable")
	// ErrNoConnectorAddress means the agent started but published no connector address.
	ErrNoConnectorAddress = errors.New("connector address not found")
)

// Step names the bootstrap stage that failed.
type Step string

const (
	StepAttach   Step = "attach"
	StepArtifact Step = "artifact"
	StepLoad     Step = "load"
	StepInit     Step = "init"
)

// BootstrapError reports a failed management agent bootstrap.
type BootstrapError struct {
	PID  int
	Step Step
	Err  error
}

func (e *BootstrapError) Error() string {
	return fmt.Sprintf("bootstrap pid %d: %s: %v", e.PID, e.Step, e.Err)
}

func (e *BootstrapError) Unwrap() error {
	return e.Err
}

func bootstrapErr(pid int, step Step, err error) error {
	return &BootstrapError{PID: pid, Step: step, Err: err}
}
