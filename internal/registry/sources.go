package registry

import "context"

// Descriptor is one entry of the attach transport's process listing.
// ID is usually, but not necessarily, a decimal pid.
type Descriptor struct {
	ID          string
	DisplayName string
}

// Handle is a live attachment to a target JVM.
type Handle interface {
	ID() string
}

// AttachTransport is the platform attach facility.
type AttachTransport interface {
	List(ctx context.Context) ([]Descriptor, error)
	Attach(ctx context.Context, id string) (Handle, error)
	AgentProperties(ctx context.Context, h Handle) (map[string]string, error)
	SystemProperties(ctx context.Context, h Handle) (map[string]string, error)
	LoadAgent(ctx context.Context, h Handle, path, options string) error
	StartLocalManagementAgent(ctx context.Context, h Handle) error
	Detach(h Handle) error
}

// PassiveSource is the shared-memory monitoring facility. It never attaches.
type PassiveSource interface {
	ActiveIDs(ctx context.Context) ([]int, error)
	Open(ctx context.Context, pid int) (Session, error)
}

// Session is a short-lived read-only view of one monitored JVM.
type Session interface {
	CommandLine() (string, error)
	Attachable() (bool, error)
	Close() error
}
