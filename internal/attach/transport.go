// Package attach implements the dynamic attach protocols of HotSpot and
// OpenJ9 JVMs on Linux.
package attach

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"jvmproc/internal/hsperf"
	"jvmproc/internal/registry"
)

const (
	defaultTimeout = 5 * time.Second
	j9Dir          = ".com_ibm_tools_attach"
)

// Options configures a Transport.
type Options struct {
	// TmpDir is the directory the JVMs use for attach files, usually /tmp.
	TmpDir  string
	Timeout time.Duration
	Profile registry.Profile
}

// Transport is a registry.AttachTransport for the local host.
type Transport struct {
	opts Options
}

// New returns a transport with defaults applied.
func New(opts Options) *Transport {
	if opts.TmpDir == "" {
		opts.TmpDir = os.TempDir()
	}
	if opts.Timeout <= 0 {
		opts.Timeout = defaultTimeout
	}
	return &Transport{opts: opts}
}

// DetectProfile guesses the JVM vendor of the host from the attach
// artifacts in tmpDir.
func DetectProfile(tmpDir string) registry.Profile {
	if _, err := os.Stat(filepath.Join(tmpDir, j9Dir)); err == nil && !hsperf.HasPerfData(tmpDir) {
		return registry.AlternateVendor
	}
	return registry.Standard
}

// session is a live attachment. HotSpot sessions dial per command, OpenJ9
// sessions hold their connection until closed.
type session interface {
	registry.Handle
	properties(ctx context.Context, agent bool) (map[string]string, error)
	loadAgent(ctx context.Context, path, options string) error
	startManagementAgent(ctx context.Context) error
	close() error
}

var errForeignHandle = errors.New("handle was not created by this transport")

func sessionOf(h registry.Handle) (session, error) {
	s, ok := h.(session)
	if !ok || s == nil {
		return nil, errForeignHandle
	}
	return s, nil
}

// Attach connects to the JVM with the given id.
func (t *Transport) Attach(ctx context.Context, id string) (registry.Handle, error) {
	s, err := t.attach(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("attach %s: %w", id, err)
	}
	return s, nil
}

func (t *Transport) AgentProperties(ctx context.Context, h registry.Handle) (map[string]string, error) {
	s, err := sessionOf(h)
	if err != nil {
		return nil, err
	}
	return s.properties(ctx, true)
}

func (t *Transport) SystemProperties(ctx context.Context, h registry.Handle) (map[string]string, error) {
	s, err := sessionOf(h)
	if err != nil {
		return nil, err
	}
	return s.properties(ctx, false)
}

func (t *Transport) LoadAgent(ctx context.Context, h registry.Handle, path, options string) error {
	s, err := sessionOf(h)
	if err != nil {
		return err
	}
	return s.loadAgent(ctx, path, options)
}

func (t *Transport) StartLocalManagementAgent(ctx context.Context, h registry.Handle) error {
	s, err := sessionOf(h)
	if err != nil {
		return err
	}
	return s.startManagementAgent(ctx)
}

func (t *Transport) Detach(h registry.Handle) error {
	s, err := sessionOf(h)
	if err != nil {
		return err
	}
	return s.close()
}

// deadline bounds a single exchange by both ctx and the transport timeout.
func (t *Transport) deadline(ctx context.Context) time.Time {
	d := time.Now().Add(t.opts.Timeout)
	if dl, ok := ctx.Deadline(); ok && dl.Before(d) {
		return dl
	}
	return d
}
